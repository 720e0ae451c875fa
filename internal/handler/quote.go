package handler

import (
	"net/http"

	"github.com/efreitasn/gotrade/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// QuoteHandler serves quote creation and lookup endpoints.
type QuoteHandler struct {
	trades *service.TradeService
	quotes *service.QuoteService
}

// NewQuoteHandler creates a QuoteHandler.
func NewQuoteHandler(trades *service.TradeService, quotes *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{trades: trades, quotes: quotes}
}

type createQuoteRequest struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name"`
	Price       string `json:"price"`
}

// CreateQuote handles POST /quotes.
func (h *QuoteHandler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req createQuoteRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error", "price must be a decimal number")
		return
	}

	quote, err := h.trades.CreateQuote(r.Context(), req.Symbol, req.CompanyName, price)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toQuoteView(quote))
}

// GetQuote handles GET /quotes/{symbol}.
func (h *QuoteHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.trades.GetQuote(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toQuoteView(quote))
}

// ListQuotes handles GET /quotes.
func (h *QuoteHandler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.trades.GetAllQuotes(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toQuoteViews(quotes))
}

// RecentChanges handles GET /quotes/recent.
func (h *QuoteHandler) RecentChanges(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, toQuoteViews(h.quotes.RecentPriceChanges()))
}
