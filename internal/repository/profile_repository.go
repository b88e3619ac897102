package repository

import (
	"context"

	"github.com/Chrissie21/GrowSafeWebApp/internal/models"
	"github.com/shopspring/decimal"
)

// ProfileRepository owns every write to an account balance. ApplyDelta is the
// balance mutator: amount is a positive magnitude, the category decides the
// sign and which cumulative counter moves with it. A debit that would take
// total below zero fails with ErrInsufficientFunds and changes nothing.
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.UserProfile) error
	GetByUserID(ctx context.Context, userID int64) (*models.UserProfile, error)
	GetByUserIDForUpdate(ctx context.Context, userID int64) (*models.UserProfile, error)
	ApplyDelta(ctx context.Context, userID int64, amount decimal.Decimal, category models.BalanceCategory) (*models.UserProfile, error)
	Accrue(ctx context.Context, userID int64, earnings decimal.Decimal) (*models.UserProfile, bool, error)
	UpdateMobileNumber(ctx context.Context, userID int64, mobileNumber string) error
}
