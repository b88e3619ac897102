package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserProfile is the per-user account balance. Total must never go negative;
// the only write path is ProfileRepository.ApplyDelta plus the accrual update.
type UserProfile struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	Total         decimal.Decimal `json:"total"`
	TotalDeposit  decimal.Decimal `json:"total_deposit"`
	TotalWithdraw decimal.Decimal `json:"total_withdraw"`
	DailyEarnings decimal.Decimal `json:"daily_earnings"`
	MobileNumber  string          `json:"mobile_number,omitempty"`
	LastAccruedAt *time.Time      `json:"last_accrued_at,omitempty"`
}

// BalanceCategory names which cumulative counter a balance delta belongs to.
type BalanceCategory string

const (
	CategoryDepositCredit BalanceCategory = "deposit-credit"
	CategoryWithdrawDebit BalanceCategory = "withdraw-debit"
	CategoryInvestDebit   BalanceCategory = "invest-debit"
	CategorySellCredit    BalanceCategory = "sell-credit"
)
