package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketSummary is an immutable snapshot of market-wide aggregates: the
// aggregate index (mean price across all quotes), its opening value, total
// traded volume, and the five biggest gainers and losers by change. It is
// replaced wholesale on refresh and must never be mutated after construction.
type MarketSummary struct {
	TSIA        decimal.Decimal
	OpenTSIA    decimal.Decimal
	Volume      float64
	TopGainers  []*Quote
	TopLosers   []*Quote
	SummaryDate time.Time
}

// GainPercent returns the percent gain of the aggregate index over its
// opening value, rounded to 2 decimal places. Zero when the opening index
// is zero.
func (m *MarketSummary) GainPercent() decimal.Decimal {
	if m.OpenTSIA.IsZero() {
		return decimal.Zero
	}
	return m.TSIA.Sub(m.OpenTSIA).
		Div(m.OpenTSIA).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}
