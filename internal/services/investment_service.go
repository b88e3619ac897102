package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	stderrors "errors"

	"github.com/Chrissie21/GrowSafeWebApp/internal/infrastructure/kafka"
	"github.com/Chrissie21/GrowSafeWebApp/internal/infrastructure/redis"
	"github.com/Chrissie21/GrowSafeWebApp/internal/models"
	"github.com/Chrissie21/GrowSafeWebApp/internal/repository"
	pkgerrors "github.com/Chrissie21/GrowSafeWebApp/pkg/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// InvestRequest funds a position either against a catalog option (rate and
// minimum come from the option) or with an explicit name and rate.
type InvestRequest struct {
	OptionID        *int64 `json:"option_id,omitempty"`
	Name            string `json:"name,omitempty"`
	Amount          string `json:"amount"`
	DailyReturnRate string `json:"daily_return_rate,omitempty"`
}

type InvestmentService interface {
	Invest(ctx context.Context, userID int64, req InvestRequest) (*models.Investment, *models.UserProfile, error)
	Sell(ctx context.Context, userID, investmentID int64) (*models.UserProfile, error)
	AccrueDailyEarnings(ctx context.Context, userID int64) (*models.UserProfile, error)
	ListOptions(ctx context.Context) ([]models.InvestmentOption, error)
	CreateOption(ctx context.Context, staff *models.TokenClaims, option *models.InvestmentOption) error
}

type investmentService struct {
	profileRepo    repository.ProfileRepository
	investmentRepo repository.InvestmentRepository
	optionRepo     repository.OptionRepository
	txm            repository.TxManager
	redisClient    redis.RedisClient
	producer       kafka.LedgerProducer
}

func NewInvestmentService(
	profileRepo repository.ProfileRepository,
	investmentRepo repository.InvestmentRepository,
	optionRepo repository.OptionRepository,
	txm repository.TxManager,
	redisClient redis.RedisClient,
	producer kafka.LedgerProducer,
) *investmentService {
	return &investmentService{
		profileRepo:    profileRepo,
		investmentRepo: investmentRepo,
		optionRepo:     optionRepo,
		txm:            txm,
		redisClient:    redisClient,
		producer:       producer,
	}
}

func (s *investmentService) publish(event kafka.LedgerEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.producer.Publish(ctx, event); err != nil {
		slog.Error("failed to publish ledger event", "event", event.Event, "user_id", event.UserID, "error", err)
	}
}

// Invest debits the balance and creates the position in one unit of work.
func (s *investmentService) Invest(ctx context.Context, userID int64, req InvestRequest) (*models.Investment, *models.UserProfile, error) {
	tracer := otel.Tracer("investment-service")
	ctx, span := tracer.Start(ctx, "Invest")
	span.SetAttributes(attribute.Int64("user_id", userID))
	defer span.End()

	amount, err := parseAmount(req.Amount)
	if err != nil {
		span.SetStatus(codes.Error, "invalid amount")
		return nil, nil, err
	}

	name := req.Name
	var rate decimal.Decimal
	var optionID *int64
	if req.OptionID != nil {
		option, err := s.optionRepo.GetByID(ctx, *req.OptionID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "option not found")
			return nil, nil, err
		}
		if amount.LessThan(option.MinInvestment) {
			span.SetStatus(codes.Error, "below minimum investment")
			slog.Warn("investment below option minimum", "user_id", userID, "option_id", option.ID, "amount", amount, "min", option.MinInvestment)
			return nil, nil, fmt.Errorf("%w: minimum is %s", pkgerrors.ErrBelowMinInvestment, option.MinInvestment)
		}
		rate = option.ExpectedReturn
		optionID = &option.ID
		if name == "" {
			name = option.Name
		}
	} else {
		rate, err = decimal.NewFromString(req.DailyReturnRate)
		if err != nil || rate.Sign() <= 0 {
			span.SetStatus(codes.Error, "invalid return rate")
			return nil, nil, pkgerrors.ErrInvalidReturnRate
		}
		if name == "" {
			return nil, nil, pkgerrors.ErrNameRequired
		}
	}

	var investment *models.Investment
	var profile *models.UserProfile
	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.profileRepo.GetByUserIDForUpdate(ctx, userID); err != nil {
			return err
		}
		updated, err := s.profileRepo.ApplyDelta(ctx, userID, amount, models.CategoryInvestDebit)
		if err != nil {
			return err
		}
		inv := &models.Investment{
			UserID:          userID,
			OptionID:        optionID,
			Name:            name,
			Amount:          amount,
			DailyReturnRate: rate,
		}
		if err := s.investmentRepo.Create(ctx, inv); err != nil {
			return err
		}
		investment = inv
		profile = updated
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Error("invest failed", "user_id", userID, "amount", amount, "error", err)
		return nil, nil, err
	}

	s.publish(kafka.LedgerEvent{
		Event:  kafka.EventInvestmentCreated,
		UserID: userID,
		Amount: amount.String(),
	})

	slog.Info("investment created", "user_id", userID, "investment_id", investment.ID, "amount", amount, "rate", rate)
	return investment, profile, nil
}

// Sell credits the full committed amount back and removes the position.
// There are no partial sells.
func (s *investmentService) Sell(ctx context.Context, userID, investmentID int64) (*models.UserProfile, error) {
	tracer := otel.Tracer("investment-service")
	ctx, span := tracer.Start(ctx, "Sell")
	span.SetAttributes(attribute.Int64("user_id", userID), attribute.Int64("investment_id", investmentID))
	defer span.End()

	var profile *models.UserProfile
	var sold *models.Investment
	err := s.txm.WithinTx(ctx, func(ctx context.Context) error {
		inv, err := s.investmentRepo.GetByIDAndUser(ctx, investmentID, userID)
		if err != nil {
			return err
		}
		if _, err := s.profileRepo.GetByUserIDForUpdate(ctx, userID); err != nil {
			return err
		}
		updated, err := s.profileRepo.ApplyDelta(ctx, userID, inv.Amount, models.CategorySellCredit)
		if err != nil {
			return err
		}
		if err := s.investmentRepo.Delete(ctx, inv.ID); err != nil {
			return err
		}
		profile = updated
		sold = inv
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Error("sell failed", "user_id", userID, "investment_id", investmentID, "error", err)
		return nil, err
	}

	s.publish(kafka.LedgerEvent{
		Event:  kafka.EventInvestmentSold,
		UserID: userID,
		Amount: sold.Amount.String(),
	})

	slog.Info("investment sold", "user_id", userID, "investment_id", investmentID, "amount", sold.Amount)
	return profile, nil
}

// AccrueDailyEarnings folds sum(amount * daily_return_rate) into the balance
// and records it as the day's earnings. The profile row gates the fold to at
// most once per UTC day, so repeated calls in one day are no-ops.
func (s *investmentService) AccrueDailyEarnings(ctx context.Context, userID int64) (*models.UserProfile, error) {
	tracer := otel.Tracer("investment-service")
	ctx, span := tracer.Start(ctx, "AccrueDailyEarnings")
	span.SetAttributes(attribute.Int64("user_id", userID))
	defer span.End()

	var profile *models.UserProfile
	var applied bool
	var earnings decimal.Decimal
	err := s.txm.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.profileRepo.GetByUserIDForUpdate(ctx, userID); err != nil {
			return err
		}
		sum, err := s.investmentRepo.SumDailyEarnings(ctx, userID)
		if err != nil {
			return err
		}
		updated, ok, err := s.profileRepo.Accrue(ctx, userID, sum)
		if err != nil {
			return err
		}
		profile = updated
		applied = ok
		earnings = sum
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Error("accrual failed", "user_id", userID, "error", err)
		return nil, err
	}

	if applied {
		s.publish(kafka.LedgerEvent{
			Event:  kafka.EventEarningsAccrued,
			UserID: userID,
			Amount: earnings.String(),
		})
		slog.Info("daily earnings accrued", "user_id", userID, "earnings", earnings, "total", profile.Total)
	}
	return profile, nil
}

func (s *investmentService) ListOptions(ctx context.Context) ([]models.InvestmentOption, error) {
	tracer := otel.Tracer("investment-service")
	ctx, span := tracer.Start(ctx, "ListOptions")
	defer span.End()

	cached, err := s.redisClient.CachedOptions(ctx)
	if err == nil {
		var options []models.InvestmentOption
		if uerr := json.Unmarshal([]byte(cached), &options); uerr == nil {
			return options, nil
		} else {
			slog.Error("failed to unmarshal cached options", "error", uerr)
		}
	} else if !stderrors.Is(err, redis.ErrKeyNotFound) {
		slog.Error("failed to get options from Redis", "error", err)
	}

	options, err := s.optionRepo.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if payload, err := json.Marshal(options); err == nil {
		if err := s.redisClient.StoreOptions(ctx, string(payload)); err != nil {
			slog.Error("failed to cache options", "error", err)
		}
	}
	return options, nil
}

func (s *investmentService) CreateOption(ctx context.Context, staff *models.TokenClaims, option *models.InvestmentOption) error {
	if err := requireStaff(staff); err != nil {
		return err
	}
	if option == nil {
		return pkgerrors.ErrOptionNotFound
	}
	if option.MinInvestment.Sign() < 0 || option.ExpectedReturn.Sign() <= 0 {
		return pkgerrors.ErrInvalidAmount
	}

	if err := s.optionRepo.Create(ctx, option); err != nil {
		return err
	}

	// Drop the cached catalog so users never see a stale list.
	if err := s.redisClient.InvalidateOptions(ctx); err != nil {
		slog.Error("failed to invalidate options cache", "error", err)
	}

	slog.Info("investment option created", "option_id", option.ID, "name", option.Name, "staff_id", staff.UserID)
	return nil
}
