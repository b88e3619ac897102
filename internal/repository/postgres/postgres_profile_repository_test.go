package repository_test

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/Chrissie21/GrowSafeWebApp/internal/models"
	repository "github.com/Chrissie21/GrowSafeWebApp/internal/repository/postgres"
	pkgerrors "github.com/Chrissie21/GrowSafeWebApp/pkg/errors"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

const profileSelectQuery = `SELECT id, user_id, total, total_deposit, total_withdraw, daily_earnings, mobile_number, last_accrued_at FROM user_profiles WHERE user_id = $1`

const applyDeltaQuery = `UPDATE user_profiles SET total = total + $1, total_deposit = total_deposit + $2, total_withdraw = total_withdraw + $3 WHERE user_id = $4 AND total + $1 >= 0 RETURNING id, user_id, total, total_deposit, total_withdraw, daily_earnings, mobile_number, last_accrued_at`

const accrueQuery = `UPDATE user_profiles SET daily_earnings = $1, total = total + $1, last_accrued_at = NOW() WHERE user_id = $2 AND (last_accrued_at IS NULL OR last_accrued_at AT TIME ZONE 'utc' < date_trunc('day', NOW() AT TIME ZONE 'utc')) RETURNING id, user_id, total, total_deposit, total_withdraw, daily_earnings, mobile_number, last_accrued_at`

func profileColumns() []string {
	return []string{"id", "user_id", "total", "total_deposit", "total_withdraw", "daily_earnings", "mobile_number", "last_accrued_at"}
}

func TestPostgresProfileRepository_GetByUserID(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresProfileRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		userID := int64(1)
		mock.ExpectQuery(regexp.QuoteMeta(profileSelectQuery)).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(profileColumns()).
				AddRow(int64(10), userID, "250.00", "300.00", "50.00", "0.00", "0712345678", nil))

		profile, err := repo.GetByUserID(ctx, userID)
		assert.NoError(t, err)
		assert.Equal(t, int64(10), profile.ID)
		assert.Equal(t, userID, profile.UserID)
		assert.True(t, profile.Total.Equal(decimal.RequireFromString("250.00")))
		assert.Equal(t, "0712345678", profile.MobileNumber)
		assert.Nil(t, profile.LastAccruedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ProfileNotFound", func(t *testing.T) {
		userID := int64(2)
		mock.ExpectQuery(regexp.QuoteMeta(profileSelectQuery)).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(profileColumns()))

		profile, err := repo.GetByUserID(ctx, userID)
		assert.Nil(t, profile)
		assert.ErrorIs(t, err, pkgerrors.ErrProfileNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DatabaseError", func(t *testing.T) {
		userID := int64(3)
		mock.ExpectQuery(regexp.QuoteMeta(profileSelectQuery)).
			WithArgs(userID).
			WillReturnError(fmt.Errorf("database error"))

		profile, err := repo.GetByUserID(ctx, userID)
		assert.Nil(t, profile)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get profile")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresProfileRepository_ApplyDelta(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresProfileRepository(db)
	ctx := context.Background()

	userID := int64(1)
	amount := decimal.RequireFromString("150.00")

	t.Run("DepositCredit", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(applyDeltaQuery)).
			WithArgs(amount, amount, decimal.Zero, userID).
			WillReturnRows(sqlmock.NewRows(profileColumns()).
				AddRow(int64(10), userID, "250.00", "450.00", "0.00", "0.00", "", nil))

		profile, err := repo.ApplyDelta(ctx, userID, amount, models.CategoryDepositCredit)
		assert.NoError(t, err)
		assert.True(t, profile.Total.Equal(decimal.RequireFromString("250.00")))
		assert.True(t, profile.TotalDeposit.Equal(decimal.RequireFromString("450.00")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("WithdrawDebit", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(applyDeltaQuery)).
			WithArgs(amount.Neg(), decimal.Zero, amount, userID).
			WillReturnRows(sqlmock.NewRows(profileColumns()).
				AddRow(int64(10), userID, "100.00", "450.00", "150.00", "0.00", "", nil))

		profile, err := repo.ApplyDelta(ctx, userID, amount, models.CategoryWithdrawDebit)
		assert.NoError(t, err)
		assert.True(t, profile.Total.Equal(decimal.RequireFromString("100.00")))
		assert.True(t, profile.TotalWithdraw.Equal(decimal.RequireFromString("150.00")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("InsufficientFunds", func(t *testing.T) {
		// Guard rejects the update, the follow-up read finds the profile.
		mock.ExpectQuery(regexp.QuoteMeta(applyDeltaQuery)).
			WithArgs(amount.Neg(), decimal.Zero, amount, userID).
			WillReturnRows(sqlmock.NewRows(profileColumns()))
		mock.ExpectQuery(regexp.QuoteMeta(profileSelectQuery)).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(profileColumns()).
				AddRow(int64(10), userID, "100.00", "450.00", "0.00", "0.00", "", nil))

		profile, err := repo.ApplyDelta(ctx, userID, amount, models.CategoryWithdrawDebit)
		assert.Nil(t, profile)
		assert.ErrorIs(t, err, pkgerrors.ErrInsufficientFunds)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ProfileNotFound", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(applyDeltaQuery)).
			WithArgs(amount, amount, decimal.Zero, userID).
			WillReturnRows(sqlmock.NewRows(profileColumns()))
		mock.ExpectQuery(regexp.QuoteMeta(profileSelectQuery)).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(profileColumns()))

		profile, err := repo.ApplyDelta(ctx, userID, amount, models.CategoryDepositCredit)
		assert.Nil(t, profile)
		assert.ErrorIs(t, err, pkgerrors.ErrProfileNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("InvalidAmount", func(t *testing.T) {
		profile, err := repo.ApplyDelta(ctx, userID, decimal.Zero, models.CategoryDepositCredit)
		assert.Nil(t, profile)
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidAmount)
	})

	t.Run("UnknownCategory", func(t *testing.T) {
		profile, err := repo.ApplyDelta(ctx, userID, amount, models.BalanceCategory("bogus"))
		assert.Nil(t, profile)
		assert.Error(t, err)
	})
}

func TestPostgresProfileRepository_Accrue(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresProfileRepository(db)
	ctx := context.Background()

	userID := int64(1)
	earnings := decimal.RequireFromString("5.00")

	t.Run("Applied", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(regexp.QuoteMeta(accrueQuery)).
			WithArgs(earnings, userID).
			WillReturnRows(sqlmock.NewRows(profileColumns()).
				AddRow(int64(10), userID, "105.00", "100.00", "0.00", "5.00", "", now))

		profile, applied, err := repo.Accrue(ctx, userID, earnings)
		assert.NoError(t, err)
		assert.True(t, applied)
		assert.True(t, profile.Total.Equal(decimal.RequireFromString("105.00")))
		assert.True(t, profile.DailyEarnings.Equal(earnings))
		assert.NotNil(t, profile.LastAccruedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AlreadyAccruedToday", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(regexp.QuoteMeta(accrueQuery)).
			WithArgs(earnings, userID).
			WillReturnRows(sqlmock.NewRows(profileColumns()))
		mock.ExpectQuery(regexp.QuoteMeta(profileSelectQuery)).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(profileColumns()).
				AddRow(int64(10), userID, "105.00", "100.00", "0.00", "5.00", "", now))

		profile, applied, err := repo.Accrue(ctx, userID, earnings)
		assert.NoError(t, err)
		assert.False(t, applied)
		assert.True(t, profile.Total.Equal(decimal.RequireFromString("105.00")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ProfileNotFound", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(accrueQuery)).
			WithArgs(earnings, userID).
			WillReturnRows(sqlmock.NewRows(profileColumns()))
		mock.ExpectQuery(regexp.QuoteMeta(profileSelectQuery)).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(profileColumns()))

		profile, applied, err := repo.Accrue(ctx, userID, earnings)
		assert.Nil(t, profile)
		assert.False(t, applied)
		assert.ErrorIs(t, err, pkgerrors.ErrProfileNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresProfileRepository_UpdateMobileNumber(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresProfileRepository(db)
	ctx := context.Background()

	query := `UPDATE user_profiles SET mobile_number = $1 WHERE user_id = $2`

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(query)).
			WithArgs("0712345678", int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateMobileNumber(ctx, 1, "0712345678")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ProfileNotFound", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(query)).
			WithArgs("0712345678", int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateMobileNumber(ctx, 42, "0712345678")
		assert.ErrorIs(t, err, pkgerrors.ErrProfileNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
