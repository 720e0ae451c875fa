package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InFlightDate is the sentinel purchase timestamp marking a holding that is
// reserved by an in-flight sell order and must not be sold again.
var InFlightDate = time.Unix(0, 0).UTC()

// Holding represents a quantity of one stock symbol owned by an account.
// Created exactly once per completed buy, removed exactly once per
// completed sell.
type Holding struct {
	ID            int
	Symbol        string
	Quantity      float64
	PurchasePrice decimal.Decimal
	PurchaseDate  time.Time
	AccountID     int
}

// Reserve marks the holding as in flight to be sold.
func (h *Holding) Reserve() {
	h.PurchaseDate = InFlightDate
}

// Reserved reports whether the holding is reserved by an in-flight sell.
func (h *Holding) Reserved() bool {
	return h.PurchaseDate.Equal(InFlightDate)
}
