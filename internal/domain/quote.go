package domain

import "github.com/shopspring/decimal"

// Quote represents the market data for a single stock symbol. Price, change,
// and volume are mutated only by the quote price updater.
type Quote struct {
	Symbol      string
	CompanyName string
	Price       decimal.Decimal
	Open        decimal.Decimal
	Low         decimal.Decimal
	High        decimal.Decimal
	Change      float64
	Volume      float64
}

// NewQuote creates a quote with all price fields set to the opening price
// and zero change and volume.
func NewQuote(symbol, companyName string, price decimal.Decimal) *Quote {
	return &Quote{
		Symbol:      symbol,
		CompanyName: companyName,
		Price:       price,
		Open:        price,
		Low:         price,
		High:        price,
	}
}

// Clone returns a copy of the quote.
func (q *Quote) Clone() *Quote {
	c := *q
	return &c
}
