package handler

import (
	"net/http"
	"strconv"

	"github.com/efreitasn/gotrade/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// AccountHandler serves account registration, sessions and account-scoped
// queries.
type AccountHandler struct {
	accounts *service.AccountService
	trades   *service.TradeService
}

// NewAccountHandler creates an AccountHandler.
func NewAccountHandler(accounts *service.AccountService, trades *service.TradeService) *AccountHandler {
	return &AccountHandler{accounts: accounts, trades: trades}
}

type registerRequest struct {
	UserID      string `json:"user_id"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	Address     string `json:"address"`
	Email       string `json:"email"`
	CreditCard  string `json:"credit_card"`
	OpenBalance string `json:"open_balance"`
}

// Register handles POST /accounts.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	openBalance, err := decimal.NewFromString(req.OpenBalance)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error", "open_balance must be a decimal number")
		return
	}

	account, err := h.accounts.Register(r.Context(), service.RegisterParams{
		UserID:      req.UserID,
		Password:    req.Password,
		FullName:    req.FullName,
		Address:     req.Address,
		Email:       req.Email,
		CreditCard:  req.CreditCard,
		OpenBalance: openBalance,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toAccountView(account))
}

type loginRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

// Login handles POST /login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	account, err := h.accounts.Login(r.Context(), req.UserID, req.Password)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toAccountView(account))
}

type logoutRequest struct {
	UserID string `json:"user_id"`
}

// Logout handles POST /logout.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := h.accounts.Logout(r.Context(), req.UserID); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetAccount handles GET /accounts/{account_id}.
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathInt(w, r, "account_id")
	if !ok {
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), accountID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toAccountView(account))
}

// ListHoldings handles GET /accounts/{account_id}/holdings.
func (h *AccountHandler) ListHoldings(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathInt(w, r, "account_id")
	if !ok {
		return
	}

	holdings, err := h.trades.GetHoldings(r.Context(), accountID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	views := make([]holdingView, 0, len(holdings))
	for _, holding := range holdings {
		views = append(views, toHoldingView(holding))
	}
	WriteJSON(w, http.StatusOK, views)
}

// ListOrders handles GET /accounts/{account_id}/orders.
func (h *AccountHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathInt(w, r, "account_id")
	if !ok {
		return
	}

	orders, err := h.trades.GetOrders(r.Context(), accountID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toOrderViews(orders))
}

// ListClosedOrders handles GET /accounts/{account_id}/orders/closed.
func (h *AccountHandler) ListClosedOrders(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathInt(w, r, "account_id")
	if !ok {
		return
	}

	orders, err := h.trades.GetClosedOrders(r.Context(), accountID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toOrderViews(orders))
}

// pathInt parses an integer URL parameter, writing a 400 response on
// failure.
func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", name+" must be an integer")
		return 0, false
	}
	return v, true
}
