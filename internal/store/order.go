package store

import (
	"sort"
	"sync"

	"github.com/efreitasn/gotrade/internal/domain"
)

// OrderStore is a thread-safe in-memory store for orders, keyed by a
// store-owned integer sequence.
type OrderStore struct {
	mu     sync.RWMutex
	seq    int
	orders map[int]*domain.Order
}

// NewOrderStore creates an empty OrderStore.
func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders: make(map[int]*domain.Order),
	}
}

// Create assigns the next id to the order and stores it.
func (s *OrderStore) Create(o *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	o.ID = s.seq
	s.orders[o.ID] = cloneOrder(o)
	return nil
}

// Get retrieves an order by id. It returns domain.ErrOrderNotFound if the
// order does not exist.
func (s *OrderStore) Get(id int) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

// ListByAccount returns the account's orders, newest first.
func (s *OrderStore) ListByAccount(accountID int) ([]*domain.Order, error) {
	return s.list(accountID, nil)
}

// ListByAccountStatus returns the account's orders with the given status,
// newest first.
func (s *OrderStore) ListByAccountStatus(accountID int, status domain.OrderStatus) ([]*domain.Order, error) {
	return s.list(accountID, &status)
}

func (s *OrderStore) list(accountID int, status *domain.OrderStatus) ([]*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Order, 0)
	for _, o := range s.orders {
		if o.AccountID != accountID {
			continue
		}
		if status != nil && o.Status != *status {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// Update replaces the stored order.
func (s *OrderStore) Update(o *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[o.ID]; !ok {
		return domain.ErrOrderNotFound
	}
	s.orders[o.ID] = cloneOrder(o)
	return nil
}

// Delete removes an order. Used to prune closed orders in long runs.
func (s *OrderStore) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(s.orders, id)
	return nil
}

func cloneOrder(o *domain.Order) *domain.Order {
	c := *o
	if o.CompletionDate != nil {
		t := *o.CompletionDate
		c.CompletionDate = &t
	}
	if o.HoldingID != nil {
		id := *o.HoldingID
		c.HoldingID = &id
	}
	return &c
}
