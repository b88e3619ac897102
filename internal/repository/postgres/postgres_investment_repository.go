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

type PostgresInvestmentRepository struct {
	db *sql.DB
}

func NewPostgresInvestmentRepository(db *sql.DB) *PostgresInvestmentRepository {
	return &PostgresInvestmentRepository{db: db}
}

func scanInvestment(row rowScanner) (*models.Investment, error) {
	var inv models.Investment
	var optionID sql.NullInt64
	err := row.Scan(
		&inv.ID,
		&inv.UserID,
		&optionID,
		&inv.Name,
		&inv.Amount,
		&inv.DailyReturnRate,
		&inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if optionID.Valid {
		id := optionID.Int64
		inv.OptionID = &id
	}
	return &inv, nil
}

func (r *PostgresInvestmentRepository) Create(ctx context.Context, inv *models.Investment) error {
	if inv == nil {
		return pkgerrors.ErrNilInvestment
	}
	if inv.Amount.Sign() <= 0 {
		return pkgerrors.ErrInvalidAmount
	}
	if inv.DailyReturnRate.Sign() <= 0 {
		return pkgerrors.ErrInvalidReturnRate
	}

	query := `
		INSERT INTO investments (user_id, option_id, name, amount, daily_return_rate)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	var optionID any
	if inv.OptionID != nil {
		optionID = *inv.OptionID
	}
	err := querier(ctx, r.db).QueryRowContext(ctx, query,
		inv.UserID, optionID, inv.Name, inv.Amount, inv.DailyReturnRate,
	).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		slog.Error("failed to create investment", "method", "Create", "user_id", inv.UserID, "error", err)
		return fmt.Errorf("failed to create investment: %w", err)
	}

	slog.Info("investment created", "method", "Create", "id", inv.ID, "user_id", inv.UserID, "amount", inv.Amount, "rate", inv.DailyReturnRate)
	return nil
}

func (r *PostgresInvestmentRepository) GetByIDAndUser(ctx context.Context, id, userID int64) (*models.Investment, error) {
	query := `
		SELECT id, user_id, option_id, name, amount, daily_return_rate, created_at
		FROM investments
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`
	inv, err := scanInvestment(querier(ctx, r.db).QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrInvestmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get investment: %w", err)
	}
	return inv, nil
}

func (r *PostgresInvestmentRepository) ListByUserID(ctx context.Context, userID int64) ([]models.Investment, error) {
	query := `
		SELECT id, user_id, option_id, name, amount, daily_return_rate, created_at
		FROM investments
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := querier(ctx, r.db).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	defer rows.Close()

	var investments []models.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		investments = append(investments, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	return investments, nil
}

func (r *PostgresInvestmentRepository) Delete(ctx context.Context, id int64) error {
	result, err := querier(ctx, r.db).ExecContext(ctx, `DELETE FROM investments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete investment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete investment: %w", err)
	}
	if affected == 0 {
		return pkgerrors.ErrInvestmentNotFound
	}
	return nil
}

// SumDailyEarnings computes sum(amount * daily_return_rate) over the user's
// open positions; the accrual operation folds the result into the balance.
func (r *PostgresInvestmentRepository) SumDailyEarnings(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var earnings decimal.Decimal
	query := `
		SELECT COALESCE(SUM(amount * daily_return_rate), 0) AS earnings
		FROM investments
		WHERE user_id = $1
	`
	if err := querier(ctx, r.db).QueryRowContext(ctx, query, userID).Scan(&earnings); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum daily earnings: %w", err)
	}
	return earnings, nil
}
