package store

import (
	"errors"
	"testing"
	"time"

	"github.com/efreitasn/gotrade/internal/domain"
	"github.com/shopspring/decimal"
)

func newTestHolding(accountID int, symbol string) *domain.Holding {
	return &domain.Holding{
		Symbol:        symbol,
		Quantity:      100,
		PurchasePrice: decimal.RequireFromString("25.50"),
		PurchaseDate:  time.Now(),
		AccountID:     accountID,
	}
}

func TestHoldingStoreCreateAndGet(t *testing.T) {
	s := NewHoldingStore()

	holding := newTestHolding(1, "s:1")
	if err := s.Create(holding); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if holding.ID == 0 {
		t.Fatal("expected assigned ID")
	}

	got, err := s.Get(holding.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Symbol != "s:1" || got.Quantity != 100 {
		t.Errorf("unexpected holding: %+v", got)
	}
}

func TestHoldingStoreListByAccount(t *testing.T) {
	s := NewHoldingStore()
	if err := s.Create(newTestHolding(1, "s:1")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := s.Create(newTestHolding(1, "s:2")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := s.Create(newTestHolding(2, "s:3")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	holdings, err := s.ListByAccount(1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(holdings) != 2 {
		t.Fatalf("expected 2 holdings, got %d", len(holdings))
	}
	if holdings[0].ID > holdings[1].ID {
		t.Error("holdings not sorted by ID")
	}
}

func TestHoldingStoreUpdateReserves(t *testing.T) {
	s := NewHoldingStore()
	holding := newTestHolding(1, "s:1")
	if err := s.Create(holding); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	holding.Reserve()
	if err := s.Update(holding); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, _ := s.Get(holding.ID)
	if !got.Reserved() {
		t.Error("reserved state not persisted")
	}
}

func TestHoldingStoreDelete(t *testing.T) {
	s := NewHoldingStore()
	holding := newTestHolding(1, "s:1")
	if err := s.Create(holding); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := s.Delete(holding.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s.Get(holding.ID); !errors.Is(err, domain.ErrHoldingNotFound) {
		t.Errorf("expected ErrHoldingNotFound, got %v", err)
	}
	if err := s.Delete(holding.ID); !errors.Is(err, domain.ErrHoldingNotFound) {
		t.Errorf("expected ErrHoldingNotFound on double delete, got %v", err)
	}
}
