package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Chrissie21/GrowSafeWebApp/internal/infrastructure/auth"
	"github.com/Chrissie21/GrowSafeWebApp/internal/models"
	service "github.com/Chrissie21/GrowSafeWebApp/internal/services"
	pkgerrors "github.com/Chrissie21/GrowSafeWebApp/pkg/errors"
	"github.com/gorilla/mux"
)

type Handler struct {
	auth        service.AuthService
	ledger      service.LedgerService
	investments service.InvestmentService
}

func NewHandler(authSvc service.AuthService, ledgerSvc service.LedgerService, investmentSvc service.InvestmentService) *Handler {
	return &Handler{
		auth:        authSvc,
		ledger:      ledgerSvc,
		investments: investmentSvc,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeServiceError maps the service sentinels onto HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrInvalidCredentials), errors.Is(err, pkgerrors.ErrInvalidToken):
		h.writeError(w, http.StatusUnauthorized, err)
	case errors.Is(err, pkgerrors.ErrForbidden):
		h.writeError(w, http.StatusForbidden, err)
	case errors.Is(err, pkgerrors.ErrUserNotFound),
		errors.Is(err, pkgerrors.ErrProfileNotFound),
		errors.Is(err, pkgerrors.ErrTransactionNotFound),
		errors.Is(err, pkgerrors.ErrInvestmentNotFound),
		errors.Is(err, pkgerrors.ErrOptionNotFound):
		h.writeError(w, http.StatusNotFound, err)
	case errors.Is(err, pkgerrors.ErrAlreadyProcessed),
		errors.Is(err, pkgerrors.ErrAlreadyPending),
		errors.Is(err, pkgerrors.ErrUsernameExists),
		errors.Is(err, pkgerrors.ErrEmailExists):
		h.writeError(w, http.StatusConflict, err)
	case errors.Is(err, pkgerrors.ErrInvalidAmount),
		errors.Is(err, pkgerrors.ErrInsufficientFunds),
		errors.Is(err, pkgerrors.ErrInvalidReturnRate),
		errors.Is(err, pkgerrors.ErrBelowMinInvestment),
		errors.Is(err, pkgerrors.ErrNameRequired),
		errors.Is(err, pkgerrors.ErrFieldsRequired),
		errors.Is(err, pkgerrors.ErrPasswordMismatch):
		h.writeError(w, http.StatusBadRequest, err)
	default:
		h.writeError(w, http.StatusInternalServerError, err)
	}
}

func (h *Handler) claims(w http.ResponseWriter, r *http.Request) (*models.TokenClaims, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, errors.New("user not authenticated"))
		return nil, false
	}
	return claims, true
}

func (h *Handler) RegisterPublicRoutes(r *mux.Router) {
	r.HandleFunc("/signup", h.Signup).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/token/refresh", h.RefreshToken).Methods("POST")
}

func (h *Handler) RegisterProtectedRoutes(r *mux.Router) {
	r.HandleFunc("/logout", h.Logout).Methods("POST")
	r.HandleFunc("/profile", h.GetProfile).Methods("GET")
	r.HandleFunc("/deposit", h.Deposit).Methods("POST")
	r.HandleFunc("/withdraw", h.Withdraw).Methods("POST")
	r.HandleFunc("/invest", h.Invest).Methods("POST")
	r.HandleFunc("/sell", h.Sell).Methods("POST")
	r.HandleFunc("/available-investments", h.ListInvestmentOptions).Methods("GET")
	r.HandleFunc("/transaction/{transaction_id}/status", h.TransactionStatus).Methods("GET")
}

func (h *Handler) RegisterAdminRoutes(r *mux.Router) {
	r.HandleFunc("/transactions", h.ListTransactions).Methods("GET")
	r.HandleFunc("/transaction/{id:[0-9]+}/approve", h.ApproveTransaction).Methods("POST")
	r.HandleFunc("/transaction/{id:[0-9]+}/decline", h.DeclineTransaction).Methods("POST")
	r.HandleFunc("/users", h.ListUsers).Methods("GET")
	r.HandleFunc("/users/create", h.CreateUser).Methods("POST")
	r.HandleFunc("/user/{id:[0-9]+}/mobile", h.UpdateMobileNumber).Methods("POST")
	r.HandleFunc("/user/{id:[0-9]+}/delete", h.DeleteUser).Methods("DELETE")
	r.HandleFunc("/investment-options/create", h.CreateInvestmentOption).Methods("POST")
}

func (h *Handler) RegisterSuperuserRoutes(r *mux.Router) {
	r.HandleFunc("/transaction/{id:[0-9]+}/pending", h.ResetTransaction).Methods("POST")
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req service.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	pair, err := h.auth.Signup(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, pair)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	pair, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, pair)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.auth.Logout(r.Context(), claims.UserID, req.Refresh); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"detail": "logged out"})
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	access, err := h.auth.Refresh(r.Context(), req.Refresh)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"access": access})
}
