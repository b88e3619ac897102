package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Chrissie21/GrowSafeWebApp/internal/infrastructure/observability"
	"github.com/Chrissie21/GrowSafeWebApp/internal/models"
	pkgerrors "github.com/Chrissie21/GrowSafeWebApp/pkg/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const transactionColumns = `id, transaction_id, user_id, type, amount, status, mobile_number, processed_by, notes, created_at, updated_at`

type PostgresTransactionRepository struct {
	db *sql.DB
}

func NewPostgresTransactionRepository(db *sql.DB) *PostgresTransactionRepository {
	return &PostgresTransactionRepository{db: db}
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var tx models.Transaction
	var processedBy sql.NullInt64
	err := row.Scan(
		&tx.ID,
		&tx.TransactionID,
		&tx.UserID,
		&tx.Type,
		&tx.Amount,
		&tx.Status,
		&tx.MobileNumber,
		&processedBy,
		&tx.Notes,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if processedBy.Valid {
		id := processedBy.Int64
		tx.ProcessedBy = &id
	}
	return &tx, nil
}

func (r *PostgresTransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	var err error
	tracer := otel.Tracer("transaction-repository")
	ctx, span := tracer.Start(ctx, "CreateTransaction")
	defer span.End()

	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		observability.RepositoryCalls.WithLabelValues("CreateTransaction", status).Inc()
		observability.RepositoryDuration.WithLabelValues("CreateTransaction").Observe(time.Since(start).Seconds())
	}()

	if tx == nil {
		err = pkgerrors.ErrNilTransaction
		slog.Error("failed to create transaction", "method", "Create", "error", err)
		return err
	}
	if tx.Type != models.TypeDeposit && tx.Type != models.TypeWithdrawal {
		err = fmt.Errorf("invalid transaction type %q", tx.Type)
		slog.Error("invalid transaction type", "method", "Create", "type", tx.Type, "error", err)
		return err
	}
	if tx.Amount.Sign() <= 0 {
		err = pkgerrors.ErrInvalidAmount
		slog.Error("amount must be positive", "method", "Create", "amount", tx.Amount, "error", err)
		return err
	}
	if tx.TransactionID == uuid.Nil {
		tx.TransactionID = uuid.New()
	}
	if tx.Status == "" {
		tx.Status = models.StatusPending
	}

	span.SetAttributes(
		attribute.Int64("user_id", tx.UserID),
		attribute.String("transaction_id", tx.TransactionID.String()),
		attribute.String("type", string(tx.Type)),
		attribute.String("amount", tx.Amount.String()),
	)

	query := `
		INSERT INTO transactions (transaction_id, user_id, type, amount, status, mobile_number, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err = querier(ctx, r.db).QueryRowContext(ctx, query,
		tx.TransactionID, tx.UserID, tx.Type, tx.Amount, tx.Status, tx.MobileNumber, tx.Notes,
	).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		slog.Error("failed to create transaction", "method", "Create", "user_id", tx.UserID, "type", tx.Type, "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	slog.Info("transaction created", "method", "Create", "id", tx.ID, "transaction_id", tx.TransactionID, "user_id", tx.UserID, "type", tx.Type, "amount", tx.Amount)
	return nil
}

func (r *PostgresTransactionRepository) GetByID(ctx context.Context, id int64) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	tx, err := scanTransaction(querier(ctx, r.db).QueryRowContext(ctx, query, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction by id: %w", err)
	}
	return tx, nil
}

func (r *PostgresTransactionRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`
	tx, err := scanTransaction(querier(ctx, r.db).QueryRowContext(ctx, query, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock transaction: %w", err)
	}
	return tx, nil
}

func (r *PostgresTransactionRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID, userID int64) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1 AND user_id = $2`
	tx, err := scanTransaction(querier(ctx, r.db).QueryRowContext(ctx, query, transactionID, userID))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

func (r *PostgresTransactionRepository) ListByUserID(ctx context.Context, userID int64) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := querier(ctx, r.db).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}

func (r *PostgresTransactionRepository) ListAll(ctx context.Context) ([]models.AdminTransaction, error) {
	query := `
		SELECT t.id, t.transaction_id, t.user_id, t.type, t.amount, t.status, t.mobile_number,
		       t.processed_by, t.notes, t.created_at, t.updated_at, u.username, COALESCE(p.username, '')
		FROM transactions t
		JOIN users u ON u.id = t.user_id
		LEFT JOIN users p ON p.id = t.processed_by
		ORDER BY t.created_at DESC
	`
	rows, err := querier(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.AdminTransaction
	for rows.Next() {
		var at models.AdminTransaction
		var processedBy sql.NullInt64
		err := rows.Scan(
			&at.ID, &at.TransactionID, &at.UserID, &at.Type, &at.Amount, &at.Status, &at.MobileNumber,
			&processedBy, &at.Notes, &at.CreatedAt, &at.UpdatedAt, &at.Username, &at.ProcessedByName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if processedBy.Valid {
			id := processedBy.Int64
			at.ProcessedBy = &id
		}
		transactions = append(transactions, at)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}

// MarkApproved flips a PENDING transaction to APPROVED. The status guard in
// the WHERE clause is what prevents double-approval under concurrent staff
// action; a rejected update is split into not-found vs already-processed.
func (r *PostgresTransactionRepository) MarkApproved(ctx context.Context, id, processedBy int64) error {
	var err error
	tracer := otel.Tracer("transaction-repository")
	ctx, span := tracer.Start(ctx, "MarkApproved")
	span.SetAttributes(attribute.Int64("id", id), attribute.Int64("processed_by", processedBy))
	defer span.End()

	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		observability.RepositoryCalls.WithLabelValues("MarkApproved", status).Inc()
		observability.RepositoryDuration.WithLabelValues("MarkApproved").Observe(time.Since(start).Seconds())
	}()

	query := `
		UPDATE transactions
		SET status = $1, processed_by = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4
	`
	err = r.guardedStatusUpdate(ctx, query, id, pkgerrors.ErrAlreadyProcessed, models.StatusApproved, processedBy, id, models.StatusPending)
	if err != nil {
		slog.Error("failed to approve transaction", "method", "MarkApproved", "id", id, "error", err)
		return err
	}

	slog.Info("transaction approved", "method", "MarkApproved", "id", id, "processed_by", processedBy)
	return nil
}

func (r *PostgresTransactionRepository) MarkDeclined(ctx context.Context, id, processedBy int64, notes string) error {
	var err error
	tracer := otel.Tracer("transaction-repository")
	ctx, span := tracer.Start(ctx, "MarkDeclined")
	span.SetAttributes(attribute.Int64("id", id), attribute.Int64("processed_by", processedBy))
	defer span.End()

	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		observability.RepositoryCalls.WithLabelValues("MarkDeclined", status).Inc()
		observability.RepositoryDuration.WithLabelValues("MarkDeclined").Observe(time.Since(start).Seconds())
	}()

	query := `
		UPDATE transactions
		SET status = $1, processed_by = $2, notes = $3, updated_at = NOW()
		WHERE id = $4 AND status = $5
	`
	err = r.guardedStatusUpdate(ctx, query, id, pkgerrors.ErrAlreadyProcessed, models.StatusDeclined, processedBy, notes, id, models.StatusPending)
	if err != nil {
		slog.Error("failed to decline transaction", "method", "MarkDeclined", "id", id, "error", err)
		return err
	}

	slog.Info("transaction declined", "method", "MarkDeclined", "id", id, "processed_by", processedBy)
	return nil
}

// ResetToPending reopens a processed transaction and clears the processor.
// It never touches balances; a prior approval's mutation stays applied.
func (r *PostgresTransactionRepository) ResetToPending(ctx context.Context, id int64, notes string) error {
	var err error
	tracer := otel.Tracer("transaction-repository")
	ctx, span := tracer.Start(ctx, "ResetToPending")
	span.SetAttributes(attribute.Int64("id", id))
	defer span.End()

	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		observability.RepositoryCalls.WithLabelValues("ResetToPending", status).Inc()
		observability.RepositoryDuration.WithLabelValues("ResetToPending").Observe(time.Since(start).Seconds())
	}()

	query := `
		UPDATE transactions
		SET status = $1, processed_by = NULL, notes = $2, updated_at = NOW()
		WHERE id = $3 AND status <> $1
	`
	err = r.guardedStatusUpdate(ctx, query, id, pkgerrors.ErrAlreadyPending, models.StatusPending, notes, id)
	if err != nil {
		slog.Error("failed to reset transaction", "method", "ResetToPending", "id", id, "error", err)
		return err
	}

	slog.Info("transaction reset to pending", "method", "ResetToPending", "id", id)
	return nil
}

func (r *PostgresTransactionRepository) guardedStatusUpdate(ctx context.Context, query string, id int64, guardErr error, args ...any) error {
	result, err := querier(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	if affected == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return guardErr
	}
	return nil
}
