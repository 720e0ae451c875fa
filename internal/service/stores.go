package service

import (
	"github.com/efreitasn/gotrade/internal/domain"
	"github.com/shopspring/decimal"
)

// AccountStore persists trading accounts.
type AccountStore interface {
	Create(a *domain.Account) error
	Get(id int) (*domain.Account, error)
	GetByUserID(userID string) (*domain.Account, error)
	Update(a *domain.Account) error
	AdjustBalance(id int, delta decimal.Decimal) (*domain.Account, error)
}

// HoldingStore persists holdings.
type HoldingStore interface {
	Create(h *domain.Holding) error
	Get(id int) (*domain.Holding, error)
	ListByAccount(accountID int) ([]*domain.Holding, error)
	Update(h *domain.Holding) error
	Delete(id int) error
}

// OrderStore persists orders.
type OrderStore interface {
	Create(o *domain.Order) error
	Get(id int) (*domain.Order, error)
	ListByAccount(accountID int) ([]*domain.Order, error)
	ListByAccountStatus(accountID int, status domain.OrderStatus) ([]*domain.Order, error)
	Update(o *domain.Order) error
	Delete(id int) error
}

// QuoteStore persists quotes and serves the ranked change queries used by
// the market summary.
type QuoteStore interface {
	Create(q *domain.Quote) error
	Get(symbol string) (*domain.Quote, error)
	All() ([]*domain.Quote, error)
	Apply(symbol string, mutate func(q *domain.Quote)) (*domain.Quote, error)
	TopGainers(n int) ([]*domain.Quote, error)
	TopLosers(n int) ([]*domain.Quote, error)
	Aggregates() (tsia, openTSIA decimal.Decimal, volume float64, err error)
}
