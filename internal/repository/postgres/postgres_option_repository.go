package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Chrissie21/GrowSafeWebApp/internal/models"
	pkgerrors "github.com/Chrissie21/GrowSafeWebApp/pkg/errors"
)

type PostgresOptionRepository struct {
	db *sql.DB
}

func NewPostgresOptionRepository(db *sql.DB) *PostgresOptionRepository {
	return &PostgresOptionRepository{db: db}
}

func (r *PostgresOptionRepository) Create(ctx context.Context, option *models.InvestmentOption) error {
	if option == nil {
		return pkgerrors.ErrOptionNotFound
	}
	if option.Name == "" {
		return pkgerrors.ErrNameRequired
	}
	if option.RiskLevel == "" {
		option.RiskLevel = models.RiskMedium
	}

	query := `
		INSERT INTO investment_options (name, min_investment, expected_return, risk_level)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := querier(ctx, r.db).QueryRowContext(ctx, query,
		option.Name, option.MinInvestment, option.ExpectedReturn, option.RiskLevel,
	).Scan(&option.ID, &option.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create investment option: %w", err)
	}
	return nil
}

func (r *PostgresOptionRepository) GetByID(ctx context.Context, id int64) (*models.InvestmentOption, error) {
	query := `
		SELECT id, name, min_investment, expected_return, risk_level, created_at
		FROM investment_options
		WHERE id = $1
	`
	var option models.InvestmentOption
	err := querier(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&option.ID,
		&option.Name,
		&option.MinInvestment,
		&option.ExpectedReturn,
		&option.RiskLevel,
		&option.CreatedAt,
	)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, pkgerrors.ErrOptionNotFound
	case err != nil:
		return nil, fmt.Errorf("failed to get investment option: %w", err)
	}
	return &option, nil
}

func (r *PostgresOptionRepository) List(ctx context.Context) ([]models.InvestmentOption, error) {
	query := `
		SELECT id, name, min_investment, expected_return, risk_level, created_at
		FROM investment_options
		ORDER BY id
	`
	rows, err := querier(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list investment options: %w", err)
	}
	defer rows.Close()

	var options []models.InvestmentOption
	for rows.Next() {
		var option models.InvestmentOption
		err := rows.Scan(
			&option.ID,
			&option.Name,
			&option.MinInvestment,
			&option.ExpectedReturn,
			&option.RiskLevel,
			&option.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment option: %w", err)
		}
		options = append(options, option)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list investment options: %w", err)
	}
	return options, nil
}
