package store

import (
	"errors"
	"sync"
	"testing"

	"github.com/efreitasn/gotrade/internal/domain"
	"github.com/shopspring/decimal"
)

func addQuote(t *testing.T, s *QuoteStore, symbol string, price string, change float64, volume float64) {
	t.Helper()
	q := domain.NewQuote(symbol, "Company "+symbol, decimal.RequireFromString(price))
	if err := s.Create(q); err != nil {
		t.Fatalf("create %s failed: %v", symbol, err)
	}
	if change != 0 || volume != 0 {
		q.Change = change
		q.Volume = volume
		if err := s.Update(q); err != nil {
			t.Fatalf("update %s failed: %v", symbol, err)
		}
	}
}

func TestQuoteStoreCreateDuplicate(t *testing.T) {
	s := NewQuoteStore()
	addQuote(t, s, "s:1", "100.00", 0, 0)

	err := s.Create(domain.NewQuote("s:1", "Other", decimal.RequireFromString("50.00")))
	if !errors.Is(err, domain.ErrQuoteAlreadyExists) {
		t.Errorf("expected ErrQuoteAlreadyExists, got %v", err)
	}
}

func TestQuoteStoreGetNotFound(t *testing.T) {
	s := NewQuoteStore()
	if _, err := s.Get("nope"); !errors.Is(err, domain.ErrQuoteNotFound) {
		t.Errorf("expected ErrQuoteNotFound, got %v", err)
	}
}

func TestQuoteStoreTopGainersAndLosers(t *testing.T) {
	s := NewQuoteStore()
	addQuote(t, s, "s:1", "100.00", 5.0, 0)
	addQuote(t, s, "s:2", "100.00", -3.0, 0)
	addQuote(t, s, "s:3", "100.00", 10.0, 0)
	addQuote(t, s, "s:4", "100.00", 0.5, 0)
	addQuote(t, s, "s:5", "100.00", -8.0, 0)

	gainers, err := s.TopGainers(3)
	if err != nil {
		t.Fatalf("top gainers failed: %v", err)
	}
	if len(gainers) != 3 || gainers[0].Symbol != "s:3" || gainers[1].Symbol != "s:1" || gainers[2].Symbol != "s:4" {
		t.Errorf("unexpected gainers: %v", symbols(gainers))
	}

	losers, err := s.TopLosers(2)
	if err != nil {
		t.Fatalf("top losers failed: %v", err)
	}
	if len(losers) != 2 || losers[0].Symbol != "s:5" || losers[1].Symbol != "s:2" {
		t.Errorf("unexpected losers: %v", symbols(losers))
	}
}

func TestQuoteStoreTopGainersTracksUpdates(t *testing.T) {
	s := NewQuoteStore()
	addQuote(t, s, "s:1", "100.00", 1.0, 0)
	addQuote(t, s, "s:2", "100.00", 2.0, 0)

	// s:1 overtakes s:2.
	q, _ := s.Get("s:1")
	q.Change = 9.0
	if err := s.Update(q); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	gainers, _ := s.TopGainers(1)
	if len(gainers) != 1 || gainers[0].Symbol != "s:1" {
		t.Errorf("expected s:1 on top, got %v", symbols(gainers))
	}
}

func TestQuoteStoreApply(t *testing.T) {
	s := NewQuoteStore()
	addQuote(t, s, "s:1", "100.00", 1.0, 0)
	addQuote(t, s, "s:2", "100.00", 2.0, 0)

	got, err := s.Apply("s:1", func(q *domain.Quote) {
		q.Change = 9.0
		q.Volume += 50
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if got.Change != 9.0 || got.Volume != 50 {
		t.Errorf("unexpected applied quote: %+v", got)
	}

	// Persisted and re-indexed.
	gainers, _ := s.TopGainers(1)
	if len(gainers) != 1 || gainers[0].Symbol != "s:1" {
		t.Errorf("expected s:1 on top, got %v", symbols(gainers))
	}
}

func TestQuoteStoreApplyNotFound(t *testing.T) {
	s := NewQuoteStore()
	if _, err := s.Apply("nope", func(q *domain.Quote) {}); !errors.Is(err, domain.ErrQuoteNotFound) {
		t.Errorf("expected ErrQuoteNotFound, got %v", err)
	}
}

func TestQuoteStoreApplyConcurrent(t *testing.T) {
	s := NewQuoteStore()
	addQuote(t, s, "s:1", "100.00", 0, 0)

	const (
		goroutines = 8
		updates    = 2000
	)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < updates; j++ {
				if _, err := s.Apply("s:1", func(q *domain.Quote) { q.Volume++ }); err != nil {
					t.Errorf("apply failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	q, _ := s.Get("s:1")
	if q.Volume != goroutines*updates {
		t.Errorf("expected volume %d, got %f", goroutines*updates, q.Volume)
	}
}

func TestQuoteStoreAggregates(t *testing.T) {
	s := NewQuoteStore()
	addQuote(t, s, "s:1", "100.00", 0, 300)
	addQuote(t, s, "s:2", "200.00", 0, 700)

	tsia, openTSIA, volume, err := s.Aggregates()
	if err != nil {
		t.Fatalf("aggregates failed: %v", err)
	}
	want := decimal.RequireFromString("150")
	if !tsia.Equal(want) {
		t.Errorf("expected TSIA %s, got %s", want, tsia)
	}
	if !openTSIA.Equal(want) {
		t.Errorf("expected open TSIA %s, got %s", want, openTSIA)
	}
	if volume != 1000 {
		t.Errorf("expected volume 1000, got %f", volume)
	}
}

func TestQuoteStoreAggregatesEmpty(t *testing.T) {
	s := NewQuoteStore()
	tsia, openTSIA, volume, err := s.Aggregates()
	if err != nil {
		t.Fatalf("aggregates failed: %v", err)
	}
	if !tsia.IsZero() || !openTSIA.IsZero() || volume != 0 {
		t.Errorf("expected zero aggregates, got %s %s %f", tsia, openTSIA, volume)
	}
}

func TestQuoteStoreAllSorted(t *testing.T) {
	s := NewQuoteStore()
	addQuote(t, s, "s:3", "100.00", 0, 0)
	addQuote(t, s, "s:1", "100.00", 0, 0)
	addQuote(t, s, "s:2", "100.00", 0, 0)

	all, err := s.All()
	if err != nil {
		t.Fatalf("all failed: %v", err)
	}
	got := symbols(all)
	want := []string{"s:1", "s:2", "s:3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func symbols(quotes []*domain.Quote) []string {
	out := make([]string, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, q.Symbol)
	}
	return out
}
