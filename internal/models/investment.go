package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Investment is a funded position. Selling credits the full committed amount
// back to the balance and removes the row.
type Investment struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	OptionID        *int64          `json:"option_id,omitempty"`
	Name            string          `json:"name"`
	Amount          decimal.Decimal `json:"amount"`
	DailyReturnRate decimal.Decimal `json:"daily_return_rate"`
	CreatedAt       time.Time       `json:"created_at"`
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// InvestmentOption is a staff-managed catalog entry, read-only for users.
type InvestmentOption struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	MinInvestment  decimal.Decimal `json:"min_investment"`
	ExpectedReturn decimal.Decimal `json:"expected_return"`
	RiskLevel      RiskLevel       `json:"risk_level"`
	CreatedAt      time.Time       `json:"created_at"`
}
