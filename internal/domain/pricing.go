package domain

import (
	"math/rand"

	"github.com/shopspring/decimal"
)

// Simulated-market pricing rules.
var (
	// PennyStockPrice is the floor price. A stock trading exactly at the
	// floor is forced back up by the recovery multiplier on its next update.
	PennyStockPrice = decimal.RequireFromString("0.01")

	// PennyStockRecoveryMultiplier is the change factor forced onto
	// penny stocks.
	PennyStockRecoveryMultiplier = decimal.RequireFromString("600.0")

	// MaximumStockPrice is the cap above which a split is forced.
	MaximumStockPrice = decimal.RequireFromString("400.00")

	// MaximumStockSplitMultiplier halves the price of stocks above the cap.
	MaximumStockSplitMultiplier = decimal.RequireFromString("0.50")

	// OrderFee is the flat fee charged on every buy and sell order.
	OrderFee = decimal.RequireFromString("24.95")
)

// ApplyPriceRules returns the change factor that must actually be applied to
// oldPrice: the penny floor forces the recovery multiplier, and prices above
// the maximum force the split multiplier. The caller-supplied factor is used
// only when neither rule fires.
func ApplyPriceRules(oldPrice, changeFactor decimal.Decimal) decimal.Decimal {
	switch {
	case oldPrice.Equal(PennyStockPrice):
		return PennyStockRecoveryMultiplier
	case oldPrice.GreaterThan(MaximumStockPrice):
		return MaximumStockSplitMultiplier
	}
	return changeFactor
}

// NewPrice computes the post-trade price: changeFactor × oldPrice, rounded
// to 2 decimal places, half up.
func NewPrice(oldPrice, changeFactor decimal.Decimal) decimal.Decimal {
	return changeFactor.Mul(oldPrice).Round(2)
}

// RandomChangeFactor returns a price-change multiplier in [0.90, 1.10],
// rounded to 2 decimal places. Never returns a non-positive factor.
func RandomChangeFactor() decimal.Decimal {
	gain := rand.Float64() * 0.1
	if rand.Float64() < 0.5 {
		gain = -gain
	}
	f := decimal.NewFromFloat(1 + gain).Round(2)
	if !f.IsPositive() {
		return decimal.NewFromInt(1)
	}
	return f
}
