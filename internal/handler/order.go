package handler

import (
	"net/http"

	"github.com/efreitasn/gotrade/internal/domain"
	"github.com/efreitasn/gotrade/internal/service"
)

// OrderHandler serves order submission and lifecycle endpoints.
type OrderHandler struct {
	trades *service.TradeService
}

// NewOrderHandler creates an OrderHandler.
func NewOrderHandler(trades *service.TradeService) *OrderHandler {
	return &OrderHandler{trades: trades}
}

type submitOrderRequest struct {
	AccountID int     `json:"account_id"`
	Type      string  `json:"type"`
	Symbol    string  `json:"symbol"`
	HoldingID int     `json:"holding_id"`
	Quantity  float64 `json:"quantity"`
	Mode      string  `json:"mode"`
}

// SubmitOrder handles POST /orders. Buys take symbol and quantity; sells
// take a holding ID.
func (h *OrderHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	mode, err := service.ParseOrderProcessingMode(req.Mode)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	var order *domain.Order
	switch domain.OrderType(req.Type) {
	case domain.OrderTypeBuy:
		order, err = h.trades.Buy(r.Context(), req.AccountID, req.Symbol, req.Quantity, mode)
	case domain.OrderTypeSell:
		order, err = h.trades.Sell(r.Context(), req.AccountID, req.HoldingID, mode)
	default:
		WriteError(w, http.StatusBadRequest, "validation_error", "type must be buy or sell")
		return
	}
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toOrderView(order))
}

// GetOrder handles GET /orders/{order_id}.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathInt(w, r, "order_id")
	if !ok {
		return
	}

	order, err := h.trades.GetOrder(r.Context(), orderID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toOrderView(order))
}

// CancelOrder handles DELETE /orders/{order_id}.
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathInt(w, r, "order_id")
	if !ok {
		return
	}

	if err := h.trades.CancelOrder(r.Context(), orderID); err != nil {
		WriteServiceError(w, err)
		return
	}

	order, err := h.trades.GetOrder(r.Context(), orderID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toOrderView(order))
}
