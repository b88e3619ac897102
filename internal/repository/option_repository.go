package repository

import (
	"context"

	"github.com/Chrissie21/GrowSafeWebApp/internal/models"
)

type OptionRepository interface {
	Create(ctx context.Context, option *models.InvestmentOption) error
	GetByID(ctx context.Context, id int64) (*models.InvestmentOption, error)
	List(ctx context.Context) ([]models.InvestmentOption, error)
}
