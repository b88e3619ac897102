package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Chrissie21/GrowSafeWebApp/internal/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type transactionRequest struct {
	Amount       string `json:"amount"`
	MobileNumber string `json:"mobile_number,omitempty"`
}

// GetProfile folds the day's earnings into the balance before reading it, so
// the first profile view of the day is what applies the accrual.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	if _, err := h.investments.AccrueDailyEarnings(r.Context(), claims.UserID); err != nil {
		h.writeServiceError(w, err)
		return
	}

	summary, err := h.ledger.GetProfile(r.Context(), claims.UserID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.createTransaction(w, r, models.TypeDeposit)
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.createTransaction(w, r, models.TypeWithdrawal)
}

func (h *Handler) createTransaction(w http.ResponseWriter, r *http.Request, kind models.TransactionType) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	tx, err := h.ledger.CreateTransaction(r.Context(), claims.UserID, kind, req.Amount, req.MobileNumber)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, tx)
}

func (h *Handler) TransactionStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	transactionID, err := uuid.Parse(mux.Vars(r)["transaction_id"])
	if err != nil {
		h.writeError(w, http.StatusBadRequest, errors.New("invalid transaction id"))
		return
	}

	tx, err := h.ledger.TransactionStatus(r.Context(), claims.UserID, transactionID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"transaction_id": tx.TransactionID,
		"type":           tx.Type,
		"amount":         tx.Amount,
		"status":         tx.Status,
		"created_at":     tx.CreatedAt,
		"updated_at":     tx.UpdatedAt,
	})
}
