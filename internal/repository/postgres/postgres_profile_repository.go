package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Chrissie21/GrowSafeWebApp/internal/models"
	pkgerrors "github.com/Chrissie21/GrowSafeWebApp/pkg/errors"
	"github.com/shopspring/decimal"
)

const profileColumns = `id, user_id, total, total_deposit, total_withdraw, daily_earnings, mobile_number, last_accrued_at`

type PostgresProfileRepository struct {
	db *sql.DB
}

func NewPostgresProfileRepository(db *sql.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*models.UserProfile, error) {
	var p models.UserProfile
	var lastAccruedAt sql.NullTime
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Total,
		&p.TotalDeposit,
		&p.TotalWithdraw,
		&p.DailyEarnings,
		&p.MobileNumber,
		&lastAccruedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastAccruedAt.Valid {
		t := lastAccruedAt.Time
		p.LastAccruedAt = &t
	}
	return &p, nil
}

func (r *PostgresProfileRepository) Create(ctx context.Context, profile *models.UserProfile) error {
	if profile == nil {
		return pkgerrors.ErrProfileNotFound
	}
	query := `
		INSERT INTO user_profiles (user_id, total, total_deposit, total_withdraw, daily_earnings, mobile_number)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING id
	`
	err := querier(ctx, r.db).QueryRowContext(ctx, query,
		profile.UserID,
		profile.Total,
		profile.TotalDeposit,
		profile.TotalWithdraw,
		profile.DailyEarnings,
		profile.MobileNumber,
	).Scan(&profile.ID)
	if errors.Is(err, sql.ErrNoRows) {
		// Profile already exists; keep create idempotent.
		existing, getErr := r.GetByUserID(ctx, profile.UserID)
		if getErr != nil {
			return getErr
		}
		*profile = *existing
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *PostgresProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE user_id = $1`
	profile, err := scanProfile(querier(ctx, r.db).QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// GetByUserIDForUpdate locks the profile row for the rest of the unit of
// work, so balance-affecting operations on one account serialize.
func (r *PostgresProfileRepository) GetByUserIDForUpdate(ctx context.Context, userID int64) (*models.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE user_id = $1 FOR UPDATE`
	profile, err := scanProfile(querier(ctx, r.db).QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock profile: %w", err)
	}
	return profile, nil
}

// ApplyDelta moves total and the category's cumulative counter in one guarded
// UPDATE. The guard keeps total non-negative; when it rejects the update the
// missing row is disambiguated into not-found vs insufficient funds.
func (r *PostgresProfileRepository) ApplyDelta(ctx context.Context, userID int64, amount decimal.Decimal, category models.BalanceCategory) (*models.UserProfile, error) {
	if amount.Sign() <= 0 {
		return nil, pkgerrors.ErrInvalidAmount
	}

	delta := amount
	depositInc := decimal.Zero
	withdrawInc := decimal.Zero
	switch category {
	case models.CategoryDepositCredit:
		depositInc = amount
	case models.CategoryWithdrawDebit:
		delta = amount.Neg()
		withdrawInc = amount
	case models.CategoryInvestDebit:
		delta = amount.Neg()
	case models.CategorySellCredit:
	default:
		return nil, fmt.Errorf("unknown balance category %q", category)
	}

	query := `
		UPDATE user_profiles
		SET total = total + $1,
		    total_deposit = total_deposit + $2,
		    total_withdraw = total_withdraw + $3
		WHERE user_id = $4 AND total + $1 >= 0
		RETURNING ` + profileColumns
	profile, err := scanProfile(querier(ctx, r.db).QueryRowContext(ctx, query, delta, depositInc, withdrawInc, userID))
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.GetByUserID(ctx, userID); getErr != nil {
			return nil, getErr
		}
		slog.Warn("balance delta rejected", "method", "ApplyDelta", "user_id", userID, "amount", amount, "category", category)
		return nil, pkgerrors.ErrInsufficientFunds
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply balance delta: %w", err)
	}

	slog.Info("balance updated", "method", "ApplyDelta", "user_id", userID, "category", category, "total", profile.Total)
	return profile, nil
}

// Accrue folds earnings into total and records them as the day's earnings, at
// most once per UTC day. When the gate rejects the update the current profile
// is returned unchanged with applied=false.
func (r *PostgresProfileRepository) Accrue(ctx context.Context, userID int64, earnings decimal.Decimal) (*models.UserProfile, bool, error) {
	query := `
		UPDATE user_profiles
		SET daily_earnings = $1,
		    total = total + $1,
		    last_accrued_at = NOW()
		WHERE user_id = $2
		  AND (last_accrued_at IS NULL OR last_accrued_at AT TIME ZONE 'utc' < date_trunc('day', NOW() AT TIME ZONE 'utc'))
		RETURNING ` + profileColumns
	profile, err := scanProfile(querier(ctx, r.db).QueryRowContext(ctx, query, earnings, userID))
	if errors.Is(err, sql.ErrNoRows) {
		current, getErr := r.GetByUserID(ctx, userID)
		if getErr != nil {
			return nil, false, getErr
		}
		return current, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to accrue earnings: %w", err)
	}

	slog.Info("earnings accrued", "method", "Accrue", "user_id", userID, "earnings", earnings, "total", profile.Total)
	return profile, true, nil
}

func (r *PostgresProfileRepository) UpdateMobileNumber(ctx context.Context, userID int64, mobileNumber string) error {
	query := `UPDATE user_profiles SET mobile_number = $1 WHERE user_id = $2`
	result, err := querier(ctx, r.db).ExecContext(ctx, query, mobileNumber, userID)
	if err != nil {
		return fmt.Errorf("failed to update mobile number: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update mobile number: %w", err)
	}
	if affected == 0 {
		return pkgerrors.ErrProfileNotFound
	}
	return nil
}
