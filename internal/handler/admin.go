package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Chrissie21/GrowSafeWebApp/internal/models"
	service "github.com/Chrissie21/GrowSafeWebApp/internal/services"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	transactions, err := h.ledger.ListAllTransactions(r.Context(), claims)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, transactions)
}

func (h *Handler) ApproveTransaction(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, errors.New("invalid transaction id"))
		return
	}

	tx, err := h.ledger.ApproveTransaction(r.Context(), claims, id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, tx)
}

func (h *Handler) DeclineTransaction(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, errors.New("invalid transaction id"))
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	// Body is optional for a decline.
	_ = json.NewDecoder(r.Body).Decode(&req)

	tx, err := h.ledger.DeclineTransaction(r.Context(), claims, id, req.Notes)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, tx)
}

func (h *Handler) ResetTransaction(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, errors.New("invalid transaction id"))
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	tx, err := h.ledger.ResetTransaction(r.Context(), claims, id, req.Notes)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, tx)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	users, err := h.auth.ListUsers(r.Context(), claims)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, users)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	var req service.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	user, err := h.auth.CreateUser(r.Context(), claims, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, errors.New("invalid user id"))
		return
	}

	if err := h.auth.DeleteUser(r.Context(), claims, id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"detail": "user deleted"})
}

func (h *Handler) UpdateMobileNumber(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, errors.New("invalid user id"))
		return
	}

	var req struct {
		MobileNumber string `json:"mobile_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.ledger.UpdateMobileNumber(r.Context(), claims, id, req.MobileNumber); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"detail": "mobile number updated"})
}

func (h *Handler) CreateInvestmentOption(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	var req struct {
		Name           string          `json:"name"`
		MinInvestment  decimal.Decimal `json:"min_investment"`
		ExpectedReturn decimal.Decimal `json:"expected_return"`
		RiskLevel      string          `json:"risk_level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Name == "" {
		h.writeError(w, http.StatusBadRequest, errors.New("name is required"))
		return
	}

	risk := models.RiskLevel(req.RiskLevel)
	switch risk {
	case models.RiskLow, models.RiskMedium, models.RiskHigh:
	case "":
		risk = models.RiskMedium
	default:
		h.writeError(w, http.StatusBadRequest, errors.New("invalid risk level"))
		return
	}

	option := &models.InvestmentOption{
		Name:           req.Name,
		MinInvestment:  req.MinInvestment,
		ExpectedReturn: req.ExpectedReturn,
		RiskLevel:      risk,
	}
	if err := h.investments.CreateOption(r.Context(), claims, option); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, option)
}
