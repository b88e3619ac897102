package repository

import (
	"context"

	"github.com/Chrissie21/GrowSafeWebApp/internal/models"
)

// HistoryRepository is append-only; rows are never updated or deleted.
type HistoryRepository interface {
	Append(ctx context.Context, entry *models.StatusHistory) error
	ListByTransactionID(ctx context.Context, transactionID int64) ([]models.StatusHistory, error)
}
