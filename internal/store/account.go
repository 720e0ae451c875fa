package store

import (
	"sync"

	"github.com/efreitasn/gotrade/internal/domain"
	"github.com/shopspring/decimal"
)

// AccountStore is a thread-safe in-memory store for accounts, with a
// primary index by account id and a unique secondary index by user id.
// IDs are assigned from a store-owned sequence. Get returns copies; all
// mutation goes through Update or AdjustBalance.
type AccountStore struct {
	mu       sync.RWMutex
	seq      int
	accounts map[int]*domain.Account
	byUser   map[string]int
}

// NewAccountStore creates an empty AccountStore.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts: make(map[int]*domain.Account),
		byUser:   make(map[string]int),
	}
}

// Create assigns the next id to the account and stores it. It returns
// domain.ErrUserAlreadyExists if the user id is taken.
func (s *AccountStore) Create(a *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUser[a.UserID]; exists {
		return domain.ErrUserAlreadyExists
	}
	s.seq++
	a.ID = s.seq
	s.accounts[a.ID] = cloneAccount(a)
	s.byUser[a.UserID] = a.ID
	return nil
}

// Get retrieves an account by id. It returns domain.ErrAccountNotFound if
// the account does not exist.
func (s *AccountStore) Get(id int) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

// GetByUserID retrieves an account by its owning user id.
func (s *AccountStore) GetByUserID(userID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUser[userID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(s.accounts[id]), nil
}

// Update replaces the stored account. It returns domain.ErrAccountNotFound
// if the account does not exist.
func (s *AccountStore) Update(a *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[a.ID]; !ok {
		return domain.ErrAccountNotFound
	}
	s.accounts[a.ID] = cloneAccount(a)
	return nil
}

// AdjustBalance atomically applies a signed delta to the account balance and
// returns the updated account. All balance mutation funnels through here.
func (s *AccountStore) AdjustBalance(id int, delta decimal.Decimal) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	a.Balance = a.Balance.Add(delta)
	return cloneAccount(a), nil
}

func cloneAccount(a *domain.Account) *domain.Account {
	c := *a
	if a.LastLogin != nil {
		t := *a.LastLogin
		c.LastLogin = &t
	}
	return &c
}
