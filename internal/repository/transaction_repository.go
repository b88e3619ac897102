package repository

import (
	"context"

	"github.com/Chrissie21/GrowSafeWebApp/internal/models"
	"github.com/google/uuid"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id int64) (*models.Transaction, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Transaction, error)
	GetByTransactionID(ctx context.Context, transactionID uuid.UUID, userID int64) (*models.Transaction, error)
	ListByUserID(ctx context.Context, userID int64) ([]models.Transaction, error)
	ListAll(ctx context.Context) ([]models.AdminTransaction, error)
	MarkApproved(ctx context.Context, id, processedBy int64) error
	MarkDeclined(ctx context.Context, id, processedBy int64, notes string) error
	ResetToPending(ctx context.Context, id int64, notes string) error
}
