package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Chrissie21/GrowSafeWebApp/internal/infrastructure/kafka"
	"github.com/Chrissie21/GrowSafeWebApp/internal/models"
	"github.com/Chrissie21/GrowSafeWebApp/internal/repository"
	pkgerrors "github.com/Chrissie21/GrowSafeWebApp/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ProfileSummary is the authenticated user's account view: balance fields,
// open positions, and the full transaction history.
type ProfileSummary struct {
	Username     string               `json:"username"`
	Email        string               `json:"email"`
	Profile      models.UserProfile   `json:"profile"`
	Investments  []models.Investment  `json:"investments"`
	Transactions []models.Transaction `json:"transactions"`
}

type LedgerService interface {
	CreateTransaction(ctx context.Context, userID int64, kind models.TransactionType, amount, mobileNumber string) (*models.Transaction, error)
	ApproveTransaction(ctx context.Context, staff *models.TokenClaims, id int64) (*models.Transaction, error)
	DeclineTransaction(ctx context.Context, staff *models.TokenClaims, id int64, notes string) (*models.Transaction, error)
	ResetTransaction(ctx context.Context, staff *models.TokenClaims, id int64, notes string) (*models.Transaction, error)
	GetProfile(ctx context.Context, userID int64) (*ProfileSummary, error)
	TransactionStatus(ctx context.Context, userID int64, transactionID uuid.UUID) (*models.Transaction, error)
	ListAllTransactions(ctx context.Context, staff *models.TokenClaims) ([]models.AdminTransaction, error)
	UpdateMobileNumber(ctx context.Context, staff *models.TokenClaims, userID int64, mobileNumber string) error
}

type ledgerService struct {
	userRepo        repository.UserRepository
	profileRepo     repository.ProfileRepository
	transactionRepo repository.TransactionRepository
	investmentRepo  repository.InvestmentRepository
	historyRepo     repository.HistoryRepository
	txm             repository.TxManager
	producer        kafka.LedgerProducer
}

func NewLedgerService(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	transactionRepo repository.TransactionRepository,
	investmentRepo repository.InvestmentRepository,
	historyRepo repository.HistoryRepository,
	txm repository.TxManager,
	producer kafka.LedgerProducer,
) *ledgerService {
	return &ledgerService{
		userRepo:        userRepo,
		profileRepo:     profileRepo,
		transactionRepo: transactionRepo,
		investmentRepo:  investmentRepo,
		historyRepo:     historyRepo,
		txm:             txm,
		producer:        producer,
	}
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.ErrInvalidAmount
	}
	if amount.Sign() <= 0 {
		return decimal.Zero, pkgerrors.ErrInvalidAmount
	}
	return amount, nil
}

func (s *ledgerService) publish(event kafka.LedgerEvent) {
	// Best effort after commit; the ledger itself is already durable.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.producer.Publish(ctx, event); err != nil {
		slog.Error("failed to publish ledger event", "event", event.Event, "user_id", event.UserID, "error", err)
	}
}

// CreateTransaction records a deposit or withdrawal request in PENDING state.
// The withdrawal balance check here is advisory only; the authoritative check
// happens at approval time against the balance of that moment.
func (s *ledgerService) CreateTransaction(ctx context.Context, userID int64, kind models.TransactionType, amount, mobileNumber string) (*models.Transaction, error) {
	tracer := otel.Tracer("ledger-service")
	ctx, span := tracer.Start(ctx, "CreateTransaction")
	span.SetAttributes(attribute.Int64("user_id", userID), attribute.String("type", string(kind)))
	defer span.End()

	if kind != models.TypeDeposit && kind != models.TypeWithdrawal {
		span.SetStatus(codes.Error, "invalid transaction type")
		return nil, fmt.Errorf("invalid transaction type %q", kind)
	}

	parsed, err := parseAmount(amount)
	if err != nil {
		span.SetStatus(codes.Error, "invalid amount")
		slog.Warn("invalid transaction amount", "user_id", userID, "amount", amount)
		return nil, err
	}

	if kind == models.TypeWithdrawal {
		profile, err := s.profileRepo.GetByUserID(ctx, userID)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if profile.Total.LessThan(parsed) {
			span.SetStatus(codes.Error, "insufficient balance")
			slog.Warn("withdrawal request exceeds balance", "user_id", userID, "amount", parsed, "total", profile.Total)
			return nil, pkgerrors.ErrInsufficientFunds
		}
	}

	tx := &models.Transaction{
		TransactionID: uuid.New(),
		UserID:        userID,
		Type:          kind,
		Amount:        parsed,
		Status:        models.StatusPending,
		MobileNumber:  mobileNumber,
	}
	if err := s.transactionRepo.Create(ctx, tx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transaction creation failed")
		return nil, err
	}

	s.publish(kafka.LedgerEvent{
		Event:         kafka.EventTransactionCreated,
		TransactionID: tx.TransactionID.String(),
		UserID:        tx.UserID,
		Type:          string(tx.Type),
		Amount:        tx.Amount.String(),
		Status:        string(tx.Status),
	})

	slog.Info("transaction submitted", "user_id", userID, "transaction_id", tx.TransactionID, "type", kind, "amount", parsed)
	return tx, nil
}

// ApproveTransaction moves a PENDING transaction to APPROVED and applies the
// balance mutation, all in one unit of work. An insufficient withdrawal
// leaves the transaction PENDING and nothing written.
func (s *ledgerService) ApproveTransaction(ctx context.Context, staff *models.TokenClaims, id int64) (*models.Transaction, error) {
	tracer := otel.Tracer("ledger-service")
	ctx, span := tracer.Start(ctx, "ApproveTransaction")
	span.SetAttributes(attribute.Int64("id", id))
	defer span.End()

	if err := requireStaff(staff); err != nil {
		span.SetStatus(codes.Error, "forbidden")
		return nil, err
	}

	var approved *models.Transaction
	err := s.txm.WithinTx(ctx, func(ctx context.Context) error {
		tx, err := s.transactionRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !models.CanTransitionTo(tx.Status, models.StatusApproved) {
			return pkgerrors.ErrAlreadyProcessed
		}

		// Lock the account so concurrent approvals on it serialize.
		if _, err := s.profileRepo.GetByUserIDForUpdate(ctx, tx.UserID); err != nil {
			return err
		}

		category := models.CategoryDepositCredit
		if tx.Type == models.TypeWithdrawal {
			category = models.CategoryWithdrawDebit
		}
		if _, err := s.profileRepo.ApplyDelta(ctx, tx.UserID, tx.Amount, category); err != nil {
			return err
		}

		if err := s.transactionRepo.MarkApproved(ctx, id, staff.UserID); err != nil {
			return err
		}
		if err := s.historyRepo.Append(ctx, &models.StatusHistory{
			TransactionID: tx.ID,
			Status:        models.StatusApproved,
			ChangedBy:     &staff.UserID,
		}); err != nil {
			return err
		}

		tx.Status = models.StatusApproved
		tx.ProcessedBy = &staff.UserID
		approved = tx
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Error("approve failed", "id", id, "staff_id", staff.UserID, "error", err)
		return nil, err
	}

	s.publish(kafka.LedgerEvent{
		Event:         kafka.EventTransactionApproved,
		TransactionID: approved.TransactionID.String(),
		UserID:        approved.UserID,
		Type:          string(approved.Type),
		Amount:        approved.Amount.String(),
		Status:        string(approved.Status),
		ProcessedBy:   approved.ProcessedBy,
	})

	slog.Info("transaction approved", "id", id, "user_id", approved.UserID, "type", approved.Type, "amount", approved.Amount, "staff_id", staff.UserID)
	return approved, nil
}

func (s *ledgerService) DeclineTransaction(ctx context.Context, staff *models.TokenClaims, id int64, notes string) (*models.Transaction, error) {
	tracer := otel.Tracer("ledger-service")
	ctx, span := tracer.Start(ctx, "DeclineTransaction")
	span.SetAttributes(attribute.Int64("id", id))
	defer span.End()

	if err := requireStaff(staff); err != nil {
		span.SetStatus(codes.Error, "forbidden")
		return nil, err
	}

	var declined *models.Transaction
	err := s.txm.WithinTx(ctx, func(ctx context.Context) error {
		tx, err := s.transactionRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !models.CanTransitionTo(tx.Status, models.StatusDeclined) {
			return pkgerrors.ErrAlreadyProcessed
		}

		if err := s.transactionRepo.MarkDeclined(ctx, id, staff.UserID, notes); err != nil {
			return err
		}
		if err := s.historyRepo.Append(ctx, &models.StatusHistory{
			TransactionID: tx.ID,
			Status:        models.StatusDeclined,
			ChangedBy:     &staff.UserID,
			Notes:         notes,
		}); err != nil {
			return err
		}

		tx.Status = models.StatusDeclined
		tx.ProcessedBy = &staff.UserID
		tx.Notes = notes
		declined = tx
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Error("decline failed", "id", id, "staff_id", staff.UserID, "error", err)
		return nil, err
	}

	s.publish(kafka.LedgerEvent{
		Event:         kafka.EventTransactionDeclined,
		TransactionID: declined.TransactionID.String(),
		UserID:        declined.UserID,
		Type:          string(declined.Type),
		Amount:        declined.Amount.String(),
		Status:        string(declined.Status),
		ProcessedBy:   declined.ProcessedBy,
	})

	slog.Info("transaction declined", "id", id, "staff_id", staff.UserID)
	return declined, nil
}

// ResetTransaction reopens a processed transaction. It does not reverse a
// balance mutation applied by a prior approval; an approved withdrawal that
// is reset and later declined keeps the debit. Superuser only.
func (s *ledgerService) ResetTransaction(ctx context.Context, staff *models.TokenClaims, id int64, notes string) (*models.Transaction, error) {
	tracer := otel.Tracer("ledger-service")
	ctx, span := tracer.Start(ctx, "ResetTransaction")
	span.SetAttributes(attribute.Int64("id", id))
	defer span.End()

	if staff == nil || !staff.IsSuperuser {
		span.SetStatus(codes.Error, "forbidden")
		return nil, pkgerrors.ErrForbidden
	}

	var reset *models.Transaction
	err := s.txm.WithinTx(ctx, func(ctx context.Context) error {
		tx, err := s.transactionRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !models.CanTransitionTo(tx.Status, models.StatusPending) {
			return pkgerrors.ErrAlreadyPending
		}

		if err := s.transactionRepo.ResetToPending(ctx, id, notes); err != nil {
			return err
		}
		if err := s.historyRepo.Append(ctx, &models.StatusHistory{
			TransactionID: tx.ID,
			Status:        models.StatusPending,
			ChangedBy:     &staff.UserID,
			Notes:         notes,
		}); err != nil {
			return err
		}

		tx.Status = models.StatusPending
		tx.ProcessedBy = nil
		tx.Notes = notes
		reset = tx
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Error("reset failed", "id", id, "staff_id", staff.UserID, "error", err)
		return nil, err
	}

	s.publish(kafka.LedgerEvent{
		Event:         kafka.EventTransactionReset,
		TransactionID: reset.TransactionID.String(),
		UserID:        reset.UserID,
		Type:          string(reset.Type),
		Amount:        reset.Amount.String(),
		Status:        string(reset.Status),
	})

	slog.Info("transaction reset to pending", "id", id, "staff_id", staff.UserID)
	return reset, nil
}

func (s *ledgerService) GetProfile(ctx context.Context, userID int64) (*ProfileSummary, error) {
	tracer := otel.Tracer("ledger-service")
	ctx, span := tracer.Start(ctx, "GetProfile")
	span.SetAttributes(attribute.Int64("user_id", userID))
	defer span.End()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	investments, err := s.investmentRepo.ListByUserID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	transactions, err := s.transactionRepo.ListByUserID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &ProfileSummary{
		Username:     user.Username,
		Email:        user.Email,
		Profile:      *profile,
		Investments:  investments,
		Transactions: transactions,
	}, nil
}

func (s *ledgerService) TransactionStatus(ctx context.Context, userID int64, transactionID uuid.UUID) (*models.Transaction, error) {
	return s.transactionRepo.GetByTransactionID(ctx, transactionID, userID)
}

func (s *ledgerService) ListAllTransactions(ctx context.Context, staff *models.TokenClaims) ([]models.AdminTransaction, error) {
	if err := requireStaff(staff); err != nil {
		return nil, err
	}
	return s.transactionRepo.ListAll(ctx)
}

func (s *ledgerService) UpdateMobileNumber(ctx context.Context, staff *models.TokenClaims, userID int64, mobileNumber string) error {
	if err := requireStaff(staff); err != nil {
		return err
	}
	if err := s.profileRepo.UpdateMobileNumber(ctx, userID, mobileNumber); err != nil {
		return err
	}
	slog.Info("mobile number updated", "user_id", userID, "staff_id", staff.UserID)
	return nil
}

func requireStaff(staff *models.TokenClaims) error {
	if staff == nil || (!staff.IsStaff && !staff.IsSuperuser) {
		return pkgerrors.ErrForbidden
	}
	return nil
}
