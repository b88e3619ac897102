package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TypeDeposit    TransactionType = "DEPOSIT"
	TypeWithdrawal TransactionType = "WITHDRAWAL"
)

type TransactionStatus string

const (
	StatusPending  TransactionStatus = "PENDING"
	StatusApproved TransactionStatus = "APPROVED"
	StatusDeclined TransactionStatus = "DECLINED"
)

// ValidStatusTransitions: approval and decline are terminal, except that an
// administrator may reopen a processed transaction back to PENDING.
var ValidStatusTransitions = map[TransactionStatus][]TransactionStatus{
	StatusPending:  {StatusApproved, StatusDeclined},
	StatusApproved: {StatusPending},
	StatusDeclined: {StatusPending},
}

func CanTransitionTo(current, target TransactionStatus) bool {
	for _, s := range ValidStatusTransitions[current] {
		if s == target {
			return true
		}
	}
	return false
}

// Transaction is one deposit or withdrawal request. Amount is immutable after
// creation and rows are never deleted; the table is the audit trail.
type Transaction struct {
	ID            int64             `json:"id"`
	TransactionID uuid.UUID         `json:"transaction_id"`
	UserID        int64             `json:"user_id"`
	Type          TransactionType   `json:"type"`
	Amount        decimal.Decimal   `json:"amount"`
	Status        TransactionStatus `json:"status"`
	MobileNumber  string            `json:"mobile_number,omitempty"`
	ProcessedBy   *int64            `json:"processed_by,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// AdminTransaction is the staff console projection of a transaction with the
// owning and processing usernames resolved.
type AdminTransaction struct {
	Transaction
	Username        string `json:"user"`
	ProcessedByName string `json:"processed_by_name,omitempty"`
}

// StatusHistory is an append-only record of one status change.
type StatusHistory struct {
	ID            int64             `json:"id"`
	TransactionID int64             `json:"transaction_id"`
	Status        TransactionStatus `json:"status"`
	ChangedBy     *int64            `json:"changed_by,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}
