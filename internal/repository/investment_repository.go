package repository

import (
	"context"

	"github.com/Chrissie21/GrowSafeWebApp/internal/models"
	"github.com/shopspring/decimal"
)

type InvestmentRepository interface {
	Create(ctx context.Context, inv *models.Investment) error
	GetByIDAndUser(ctx context.Context, id, userID int64) (*models.Investment, error)
	ListByUserID(ctx context.Context, userID int64) ([]models.Investment, error)
	Delete(ctx context.Context, id int64) error
	SumDailyEarnings(ctx context.Context, userID int64) (decimal.Decimal, error)
}
