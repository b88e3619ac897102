package handler

import (
	"encoding/json"
	"net/http"

	service "github.com/Chrissie21/GrowSafeWebApp/internal/services"
)

func (h *Handler) Invest(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	var req service.InvestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	investment, profile, err := h.investments.Invest(r.Context(), claims.UserID, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"investment": investment,
		"profile":    profile,
	})
}

func (h *Handler) Sell(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	var req struct {
		InvestmentID int64 `json:"investment_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	profile, err := h.investments.Sell(r.Context(), claims.UserID, req.InvestmentID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"profile": profile})
}

func (h *Handler) ListInvestmentOptions(w http.ResponseWriter, r *http.Request) {
	options, err := h.investments.ListOptions(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, options)
}
