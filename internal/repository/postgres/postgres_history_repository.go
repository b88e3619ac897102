package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Chrissie21/GrowSafeWebApp/internal/models"
)

type PostgresHistoryRepository struct {
	db *sql.DB
}

func NewPostgresHistoryRepository(db *sql.DB) *PostgresHistoryRepository {
	return &PostgresHistoryRepository{db: db}
}

func (r *PostgresHistoryRepository) Append(ctx context.Context, entry *models.StatusHistory) error {
	query := `
		INSERT INTO transaction_status_history (transaction_id, status, changed_by, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	var changedBy any
	if entry.ChangedBy != nil {
		changedBy = *entry.ChangedBy
	}
	err := querier(ctx, r.db).QueryRowContext(ctx, query,
		entry.TransactionID, entry.Status, changedBy, entry.Notes,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append status history: %w", err)
	}
	return nil
}

func (r *PostgresHistoryRepository) ListByTransactionID(ctx context.Context, transactionID int64) ([]models.StatusHistory, error) {
	query := `
		SELECT id, transaction_id, status, changed_by, notes, created_at
		FROM transaction_status_history
		WHERE transaction_id = $1
		ORDER BY created_at
	`
	rows, err := querier(ctx, r.db).QueryContext(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list status history: %w", err)
	}
	defer rows.Close()

	var entries []models.StatusHistory
	for rows.Next() {
		var entry models.StatusHistory
		var changedBy sql.NullInt64
		err := rows.Scan(&entry.ID, &entry.TransactionID, &entry.Status, &changedBy, &entry.Notes, &entry.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan status history: %w", err)
		}
		if changedBy.Valid {
			id := changedBy.Int64
			entry.ChangedBy = &id
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list status history: %w", err)
	}
	return entries, nil
}
