package service

import (
	"context"
	"testing"
	"time"

	"github.com/efreitasn/gotrade/internal/domain"
	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

// With price updates disabled, buying and immediately selling the resulting
// holding at the same price costs exactly two order fees.
func TestBuySellRoundTripCostsTwoFees(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		quantity := float64(rapid.IntRange(1, 10_000).Draw(t, "quantity"))
		priceCents := rapid.Int64Range(2, 400_00).Draw(t, "priceCents")
		price := decimal.New(priceCents, -2)

		env := newTestTradeEnv(false)
		account := &domain.Account{
			UserID:       "prop",
			Password:     "secret",
			Balance:      decimal.RequireFromString("100000000.00"),
			OpenBalance:  decimal.RequireFromString("100000000.00"),
			CreationDate: time.Now(),
		}
		if err := env.accounts.Create(account); err != nil {
			t.Fatalf("create account failed: %v", err)
		}
		if err := env.quotes.Create(domain.NewQuote("s:1", "Company", price)); err != nil {
			t.Fatalf("create quote failed: %v", err)
		}

		buy, err := env.svc.Buy(context.Background(), account.ID, "s:1", quantity, Synchronous)
		if err != nil {
			t.Fatalf("buy failed: %v", err)
		}
		if buy.HoldingID == nil {
			t.Fatal("expected holding from buy")
		}

		sell, err := env.svc.Sell(context.Background(), account.ID, *buy.HoldingID, Synchronous)
		if err != nil {
			t.Fatalf("sell failed: %v", err)
		}
		if sell.Status != domain.OrderStatusClosed {
			t.Fatalf("expected sell closed, got %s", sell.Status)
		}

		got, err := env.accounts.Get(account.ID)
		if err != nil {
			t.Fatalf("get account failed: %v", err)
		}
		want := account.OpenBalance.Sub(domain.OrderFee.Mul(decimal.NewFromInt(2)))
		if !got.Balance.Equal(want) {
			t.Fatalf("round trip balance %s, want %s (qty %f price %s)", got.Balance, want, quantity, price)
		}
	})
}

// Completed buys always leave a holding whose quantity and price match the
// order, regardless of processing path.
func TestBuyAlwaysMaterializesMatchingHolding(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		quantity := float64(rapid.IntRange(1, 1_000).Draw(t, "quantity"))
		priceCents := rapid.Int64Range(2, 400_00).Draw(t, "priceCents")
		price := decimal.New(priceCents, -2)

		env := newTestTradeEnv(false)
		account := &domain.Account{
			UserID:       "prop",
			Password:     "secret",
			Balance:      decimal.RequireFromString("100000000.00"),
			OpenBalance:  decimal.RequireFromString("100000000.00"),
			CreationDate: time.Now(),
		}
		if err := env.accounts.Create(account); err != nil {
			t.Fatalf("create account failed: %v", err)
		}
		if err := env.quotes.Create(domain.NewQuote("s:1", "Company", price)); err != nil {
			t.Fatalf("create quote failed: %v", err)
		}

		order, err := env.svc.Buy(context.Background(), account.ID, "s:1", quantity, Synchronous)
		if err != nil {
			t.Fatalf("buy failed: %v", err)
		}

		holding, err := env.holdings.Get(*order.HoldingID)
		if err != nil {
			t.Fatalf("holding missing: %v", err)
		}
		if holding.Quantity != quantity {
			t.Fatalf("holding quantity %f, want %f", holding.Quantity, quantity)
		}
		if !holding.PurchasePrice.Equal(price) {
			t.Fatalf("holding price %s, want %s", holding.PurchasePrice, price)
		}
		if holding.AccountID != account.ID {
			t.Fatalf("holding account %d, want %d", holding.AccountID, account.ID)
		}
	})
}
