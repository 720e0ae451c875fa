package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestOrderClose(t *testing.T) {
	order := &Order{Type: OrderTypeBuy, Status: OrderStatusOpen}
	now := time.Now()
	order.Close(now)

	if order.Status != OrderStatusClosed {
		t.Errorf("expected status closed, got %s", order.Status)
	}
	if order.CompletionDate == nil || !order.CompletionDate.Equal(now) {
		t.Errorf("expected completion date %v, got %v", now, order.CompletionDate)
	}
}

func TestOrderCancel(t *testing.T) {
	order := &Order{Type: OrderTypeSell, Status: OrderStatusOpen}
	now := time.Now()
	order.Cancel(now)

	if order.Status != OrderStatusCancelled {
		t.Errorf("expected status cancelled, got %s", order.Status)
	}
	if order.CompletionDate == nil {
		t.Error("expected completion date to be set")
	}
}

func TestOrderTerminal(t *testing.T) {
	tests := []struct {
		status   OrderStatus
		terminal bool
	}{
		{OrderStatusOpen, false},
		{OrderStatusClosed, true},
		{OrderStatusCancelled, true},
		{OrderStatusCompleted, true},
	}
	for _, tt := range tests {
		order := &Order{Status: tt.status}
		if got := order.Terminal(); got != tt.terminal {
			t.Errorf("Terminal() for %s = %v, want %v", tt.status, got, tt.terminal)
		}
	}
}

func TestOrderTotal(t *testing.T) {
	order := &Order{
		Quantity: 100,
		Price:    decimal.RequireFromString("25.50"),
	}
	want := decimal.RequireFromString("2550")
	if !order.Total().Equal(want) {
		t.Errorf("Total() = %s, want %s", order.Total(), want)
	}
}

func TestOrderTypePredicates(t *testing.T) {
	buy := &Order{Type: OrderTypeBuy}
	if !buy.IsBuy() || buy.IsSell() {
		t.Error("buy order misclassified")
	}
	sell := &Order{Type: OrderTypeSell}
	if !sell.IsSell() || sell.IsBuy() {
		t.Error("sell order misclassified")
	}
}

func TestHoldingReserve(t *testing.T) {
	holding := &Holding{PurchaseDate: time.Now()}
	if holding.Reserved() {
		t.Error("fresh holding should not be reserved")
	}
	holding.Reserve()
	if !holding.Reserved() {
		t.Error("holding should be reserved after Reserve")
	}
	if !holding.PurchaseDate.Equal(InFlightDate) {
		t.Errorf("expected in-flight purchase date, got %v", holding.PurchaseDate)
	}
}

func TestAccountLoginLogout(t *testing.T) {
	account := &Account{}
	now := time.Now()

	account.Login(now)
	if account.LoginCount != 1 {
		t.Errorf("expected login count 1, got %d", account.LoginCount)
	}
	if account.LastLogin == nil || !account.LastLogin.Equal(now) {
		t.Errorf("expected last login %v, got %v", now, account.LastLogin)
	}

	account.Logout()
	if account.LogoutCount != 1 {
		t.Errorf("expected logout count 1, got %d", account.LogoutCount)
	}
}
