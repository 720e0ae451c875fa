package store

import (
	"sort"
	"sync"

	"github.com/efreitasn/gotrade/internal/domain"
)

// HoldingStore is a thread-safe in-memory store for holdings, keyed by a
// store-owned integer sequence.
type HoldingStore struct {
	mu       sync.RWMutex
	seq      int
	holdings map[int]*domain.Holding
}

// NewHoldingStore creates an empty HoldingStore.
func NewHoldingStore() *HoldingStore {
	return &HoldingStore{
		holdings: make(map[int]*domain.Holding),
	}
}

// Create assigns the next id to the holding and stores it.
func (s *HoldingStore) Create(h *domain.Holding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	h.ID = s.seq
	s.holdings[h.ID] = cloneHolding(h)
	return nil
}

// Get retrieves a holding by id. It returns domain.ErrHoldingNotFound if
// the holding does not exist or has been removed by a completed sell.
func (s *HoldingStore) Get(id int) (*domain.Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.holdings[id]
	if !ok {
		return nil, domain.ErrHoldingNotFound
	}
	return cloneHolding(h), nil
}

// ListByAccount returns the account's holdings ordered by id.
func (s *HoldingStore) ListByAccount(accountID int) ([]*domain.Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Holding, 0)
	for _, h := range s.holdings {
		if h.AccountID == accountID {
			out = append(out, cloneHolding(h))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update replaces the stored holding.
func (s *HoldingStore) Update(h *domain.Holding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.holdings[h.ID]; !ok {
		return domain.ErrHoldingNotFound
	}
	s.holdings[h.ID] = cloneHolding(h)
	return nil
}

// Delete removes a holding. It returns domain.ErrHoldingNotFound if the
// holding is already gone.
func (s *HoldingStore) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.holdings[id]; !ok {
		return domain.ErrHoldingNotFound
	}
	delete(s.holdings, id)
	return nil
}

func cloneHolding(h *domain.Holding) *domain.Holding {
	c := *h
	return &c
}
