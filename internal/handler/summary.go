package handler

import (
	"net/http"

	"github.com/efreitasn/gotrade/internal/service"
)

// SummaryHandler serves the market summary endpoint.
type SummaryHandler struct {
	summaries *service.MarketSummaryService
}

// NewSummaryHandler creates a SummaryHandler.
func NewSummaryHandler(summaries *service.MarketSummaryService) *SummaryHandler {
	return &SummaryHandler{summaries: summaries}
}

// GetMarketSummary handles GET /marketsummary.
func (h *SummaryHandler) GetMarketSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.summaries.GetMarketSummary(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if summary == nil {
		WriteError(w, http.StatusServiceUnavailable, "summary_unavailable", "no market summary has been computed yet")
		return
	}
	WriteJSON(w, http.StatusOK, toSummaryView(summary))
}
