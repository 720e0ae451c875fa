package store

import (
	"sort"
	"sync"

	"github.com/efreitasn/gotrade/internal/domain"
	"github.com/google/btree"
	"github.com/shopspring/decimal"
)

// changeKey orders quotes by change ascending, ties broken by symbol.
type changeKey struct {
	change float64
	symbol string
}

func changeLess(a, b changeKey) bool {
	if a.change != b.change {
		return a.change < b.change
	}
	return a.symbol < b.symbol
}

// QuoteStore is a thread-safe in-memory store for quotes, keyed by symbol.
// A B-tree index ordered by change serves the market summary's gainer and
// loser scans without sorting the whole symbol universe per refresh.
type QuoteStore struct {
	mu      sync.RWMutex
	quotes  map[string]*domain.Quote
	changes *btree.BTreeG[changeKey]
}

// NewQuoteStore creates an empty QuoteStore.
func NewQuoteStore() *QuoteStore {
	const degree = 32
	return &QuoteStore{
		quotes:  make(map[string]*domain.Quote),
		changes: btree.NewG[changeKey](degree, changeLess),
	}
}

// Create stores a quote. It returns domain.ErrQuoteAlreadyExists if the
// symbol is taken.
func (s *QuoteStore) Create(q *domain.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.quotes[q.Symbol]; exists {
		return domain.ErrQuoteAlreadyExists
	}
	s.quotes[q.Symbol] = q.Clone()
	s.changes.ReplaceOrInsert(changeKey{change: q.Change, symbol: q.Symbol})
	return nil
}

// Get retrieves a quote by symbol. It returns domain.ErrQuoteNotFound if
// the symbol is unknown.
func (s *QuoteStore) Get(symbol string) (*domain.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.quotes[symbol]
	if !ok {
		return nil, domain.ErrQuoteNotFound
	}
	return q.Clone(), nil
}

// All returns every quote, ordered by symbol.
func (s *QuoteStore) All() ([]*domain.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Quote, 0, len(s.quotes))
	for _, q := range s.quotes {
		out = append(out, q.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

// Update replaces the stored quote and re-indexes its change.
func (s *QuoteStore) Update(q *domain.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.quotes[q.Symbol]
	if !ok {
		return domain.ErrQuoteNotFound
	}
	s.changes.Delete(changeKey{change: old.Change, symbol: old.Symbol})
	s.quotes[q.Symbol] = q.Clone()
	s.changes.ReplaceOrInsert(changeKey{change: q.Change, symbol: q.Symbol})
	return nil
}

// Apply loads the quote for symbol, runs mutate on it, and persists the
// result, all under the store lock so concurrent updates to the same
// symbol never lose a write. It returns the updated quote.
func (s *QuoteStore) Apply(symbol string, mutate func(q *domain.Quote)) (*domain.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.quotes[symbol]
	if !ok {
		return nil, domain.ErrQuoteNotFound
	}

	q := old.Clone()
	mutate(q)
	q.Symbol = symbol

	s.changes.Delete(changeKey{change: old.Change, symbol: symbol})
	s.quotes[symbol] = q
	s.changes.ReplaceOrInsert(changeKey{change: q.Change, symbol: symbol})
	return q.Clone(), nil
}

// TopGainers returns the n quotes with the highest change, descending.
func (s *QuoteStore) TopGainers(n int) ([]*domain.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 {
		return nil, nil
	}
	out := make([]*domain.Quote, 0, n)
	s.changes.Descend(func(k changeKey) bool {
		out = append(out, s.quotes[k.symbol].Clone())
		return len(out) < n
	})
	return out, nil
}

// TopLosers returns the n quotes with the lowest change, ascending.
func (s *QuoteStore) TopLosers(n int) ([]*domain.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 {
		return nil, nil
	}
	out := make([]*domain.Quote, 0, n)
	s.changes.Ascend(func(k changeKey) bool {
		out = append(out, s.quotes[k.symbol].Clone())
		return len(out) < n
	})
	return out, nil
}

// Aggregates returns the mean price, mean opening price, and total volume
// across all quotes. Zero values when no quotes exist.
func (s *QuoteStore) Aggregates() (tsia, openTSIA decimal.Decimal, volume float64, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.quotes) == 0 {
		return decimal.Zero, decimal.Zero, 0, nil
	}

	var sumPrice, sumOpen decimal.Decimal
	for _, q := range s.quotes {
		sumPrice = sumPrice.Add(q.Price)
		sumOpen = sumOpen.Add(q.Open)
		volume += q.Volume
	}
	count := decimal.NewFromInt(int64(len(s.quotes)))
	return sumPrice.Div(count), sumOpen.Div(count), volume, nil
}
