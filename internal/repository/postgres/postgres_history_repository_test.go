package repository_test

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/Chrissie21/GrowSafeWebApp/internal/models"
	repository "github.com/Chrissie21/GrowSafeWebApp/internal/repository/postgres"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

const historyInsertQuery = `INSERT INTO transaction_status_history (transaction_id, status, changed_by, notes) VALUES ($1, $2, $3, $4) RETURNING id, created_at`

const historyListQuery = `SELECT id, transaction_id, status, changed_by, notes, created_at FROM transaction_status_history WHERE transaction_id = $1 ORDER BY created_at`

func historyColumns() []string {
	return []string{"id", "transaction_id", "status", "changed_by", "notes", "created_at"}
}

func TestPostgresHistoryRepository_Append(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresHistoryRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		staffID := int64(9)
		entry := &models.StatusHistory{
			TransactionID: 5,
			Status:        models.StatusApproved,
			ChangedBy:     &staffID,
			Notes:         "looks good",
		}
		mock.ExpectQuery(regexp.QuoteMeta(historyInsertQuery)).
			WithArgs(int64(5), models.StatusApproved, staffID, "looks good").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))

		err := repo.Append(ctx, entry)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), entry.ID)
		assert.False(t, entry.CreatedAt.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("SystemChangeHasNoActor", func(t *testing.T) {
		entry := &models.StatusHistory{
			TransactionID: 5,
			Status:        models.StatusPending,
		}
		mock.ExpectQuery(regexp.QuoteMeta(historyInsertQuery)).
			WithArgs(int64(5), models.StatusPending, nil, "").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(2), time.Now()))

		err := repo.Append(ctx, entry)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DatabaseError", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(historyInsertQuery)).
			WillReturnError(fmt.Errorf("connection refused"))

		err := repo.Append(ctx, &models.StatusHistory{TransactionID: 5, Status: models.StatusDeclined})
		assert.Error(t, err)
	})
}

func TestPostgresHistoryRepository_ListByTransactionID(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresHistoryRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		staffID := int64(9)
		mock.ExpectQuery(regexp.QuoteMeta(historyListQuery)).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows(historyColumns()).
				AddRow(int64(1), int64(5), "PENDING", nil, "", time.Now()).
				AddRow(int64(2), int64(5), "APPROVED", staffID, "looks good", time.Now()))

		entries, err := repo.ListByTransactionID(ctx, 5)
		assert.NoError(t, err)
		assert.Len(t, entries, 2)
		assert.Equal(t, models.StatusPending, entries[0].Status)
		assert.Nil(t, entries[0].ChangedBy)
		assert.Equal(t, models.StatusApproved, entries[1].Status)
		assert.NotNil(t, entries[1].ChangedBy)
		assert.Equal(t, staffID, *entries[1].ChangedBy)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(historyListQuery)).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(historyColumns()))

		entries, err := repo.ListByTransactionID(ctx, 7)
		assert.NoError(t, err)
		assert.Empty(t, entries)
	})
}
