package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/efreitasn/gotrade/internal/domain"
	"github.com/shopspring/decimal"
)

// OrderCompleter finalizes an open order: moving shares into or out of a
// holding and settling the quote.
type OrderCompleter interface {
	CompleteOrder(ctx context.Context, orderID int, twoPhase bool) (*domain.Order, error)
}

// QuoteUpdater applies a price change factor and traded volume to a quote.
type QuoteUpdater interface {
	UpdatePriceVolume(ctx context.Context, symbol string, factor decimal.Decimal, sharesTraded float64) (*domain.Quote, error)
}

// OrderDispatcher routes a freshly created order to its completion path.
type OrderDispatcher interface {
	Dispatch(ctx context.Context, orderID int, mode OrderProcessingMode) error
}

// TradeService implements the order lifecycle: buy, sell, complete, cancel
// and the account-scoped queries.
type TradeService struct {
	accounts   AccountStore
	holdings   HoldingStore
	orders     OrderStore
	quotes     QuoteStore
	quoteSvc   QuoteUpdater
	dispatcher OrderDispatcher
	longRun    bool
	logger     *slog.Logger
}

// NewTradeService wires a trade service. The dispatcher is attached later
// via SetDispatcher since it needs the service as its completer.
func NewTradeService(accounts AccountStore, holdings HoldingStore, orders OrderStore, quotes QuoteStore, quoteSvc QuoteUpdater, longRun bool, logger *slog.Logger) *TradeService {
	return &TradeService{
		accounts: accounts,
		holdings: holdings,
		orders:   orders,
		quotes:   quotes,
		quoteSvc: quoteSvc,
		longRun:  longRun,
		logger:   logger,
	}
}

// SetDispatcher attaches the order dispatcher. Must be called before the
// first Buy or Sell.
func (s *TradeService) SetDispatcher(d OrderDispatcher) {
	s.dispatcher = d
}

// Buy opens a buy order for quantity shares of symbol, debits the account
// for quantity*price plus the order fee and hands the order to the
// dispatcher. If dispatch fails the debit is reversed and the order
// cancelled before the error is returned.
func (s *TradeService) Buy(ctx context.Context, accountID int, symbol string, quantity float64, mode OrderProcessingMode) (*domain.Order, error) {
	if quantity <= 0 {
		return nil, &domain.ValidationError{Message: "quantity must be positive"}
	}

	account, err := s.accounts.Get(accountID)
	if err != nil {
		return nil, err
	}
	quote, err := s.quotes.Get(symbol)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		Type:      domain.OrderTypeBuy,
		Status:    domain.OrderStatusOpen,
		OpenDate:  time.Now(),
		Quantity:  quantity,
		Price:     quote.Price,
		Fee:       domain.OrderFee,
		AccountID: account.ID,
		Symbol:    quote.Symbol,
	}
	if err := s.orders.Create(order); err != nil {
		return nil, fmt.Errorf("create buy order: %w", err)
	}

	debit := order.Total().Add(order.Fee)
	if _, err := s.accounts.AdjustBalance(account.ID, debit.Neg()); err != nil {
		return nil, fmt.Errorf("debit account %d: %w", account.ID, err)
	}

	if err := s.dispatcher.Dispatch(ctx, order.ID, mode); err != nil {
		if _, rbErr := s.accounts.AdjustBalance(account.ID, debit); rbErr != nil {
			s.logger.Error("buy rollback failed", "order_id", order.ID, "error", rbErr)
		}
		order.Cancel(time.Now())
		if upErr := s.orders.Update(order); upErr != nil {
			s.logger.Error("buy cancel failed", "order_id", order.ID, "error", upErr)
		}
		return nil, err
	}

	return s.orders.Get(order.ID)
}

// Sell opens a sell order against holdingID, credits the account for
// quantity*price minus the order fee and hands the order to the dispatcher.
// A missing holding is treated as a benign race with another seller: a
// cancelled order is persisted and returned without error.
func (s *TradeService) Sell(ctx context.Context, accountID, holdingID int, mode OrderProcessingMode) (*domain.Order, error) {
	account, err := s.accounts.Get(accountID)
	if err != nil {
		return nil, err
	}

	holding, err := s.holdings.Get(holdingID)
	if err != nil {
		s.logger.Warn("sell of missing holding, cancelling", "account_id", accountID, "holding_id", holdingID)
		order := &domain.Order{
			Type:      domain.OrderTypeSell,
			Status:    domain.OrderStatusCancelled,
			OpenDate:  time.Now(),
			Fee:       domain.OrderFee,
			AccountID: account.ID,
		}
		if err := s.orders.Create(order); err != nil {
			return nil, fmt.Errorf("create cancelled sell order: %w", err)
		}
		return order, nil
	}

	quote, err := s.quotes.Get(holding.Symbol)
	if err != nil {
		return nil, err
	}

	prevPurchaseDate := holding.PurchaseDate
	holding.Reserve()
	if err := s.holdings.Update(holding); err != nil {
		return nil, fmt.Errorf("reserve holding %d: %w", holding.ID, err)
	}

	order := &domain.Order{
		Type:      domain.OrderTypeSell,
		Status:    domain.OrderStatusOpen,
		OpenDate:  time.Now(),
		Quantity:  holding.Quantity,
		Price:     quote.Price,
		Fee:       domain.OrderFee,
		AccountID: account.ID,
		Symbol:    holding.Symbol,
		HoldingID: &holding.ID,
	}
	if err := s.orders.Create(order); err != nil {
		return nil, fmt.Errorf("create sell order: %w", err)
	}

	credit := order.Total().Sub(order.Fee)
	if _, err := s.accounts.AdjustBalance(account.ID, credit); err != nil {
		return nil, fmt.Errorf("credit account %d: %w", account.ID, err)
	}

	if err := s.dispatcher.Dispatch(ctx, order.ID, mode); err != nil {
		if _, rbErr := s.accounts.AdjustBalance(account.ID, credit.Neg()); rbErr != nil {
			s.logger.Error("sell rollback failed", "order_id", order.ID, "error", rbErr)
		}
		holding.PurchaseDate = prevPurchaseDate
		if upErr := s.holdings.Update(holding); upErr != nil {
			s.logger.Error("holding release failed", "holding_id", holding.ID, "error", upErr)
		}
		order.Cancel(time.Now())
		if upErr := s.orders.Update(order); upErr != nil {
			s.logger.Error("sell cancel failed", "order_id", order.ID, "error", upErr)
		}
		return nil, err
	}

	return s.orders.Get(order.ID)
}

// CompleteOrder settles an open order. Buys create the holding; sells
// remove it. Completing a terminal order returns ErrOrderCompleted.
// Completion also settles the quote with a random change factor and the
// traded share count.
func (s *TradeService) CompleteOrder(ctx context.Context, orderID int, twoPhase bool) (*domain.Order, error) {
	order, err := s.orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	if order.Terminal() {
		return nil, fmt.Errorf("complete order %d: %w", orderID, domain.ErrOrderCompleted)
	}

	now := time.Now()
	switch {
	case order.IsBuy():
		holding := &domain.Holding{
			Symbol:        order.Symbol,
			Quantity:      order.Quantity,
			PurchasePrice: order.Price,
			PurchaseDate:  now,
			AccountID:     order.AccountID,
		}
		if err := s.holdings.Create(holding); err != nil {
			return nil, fmt.Errorf("create holding: %w", err)
		}
		order.HoldingID = &holding.ID

	case order.HoldingID == nil:
		// A sell that lost its holding before completion ran. The
		// credit from Sell stands; the order is merely cancelled.
		s.logger.Warn("sell order completed without holding, cancelling", "order_id", order.ID)
		order.Cancel(now)
		if err := s.orders.Update(order); err != nil {
			return nil, fmt.Errorf("cancel orphaned sell: %w", err)
		}
		return order, nil

	default:
		if err := s.holdings.Delete(*order.HoldingID); err != nil {
			if !errors.Is(err, domain.ErrHoldingNotFound) {
				return nil, fmt.Errorf("delete holding %d: %w", *order.HoldingID, err)
			}
			s.logger.Warn("sell holding already gone, cancelling", "order_id", order.ID, "holding_id", *order.HoldingID)
			order.HoldingID = nil
			order.Cancel(now)
			if upErr := s.orders.Update(order); upErr != nil {
				return nil, fmt.Errorf("cancel orphaned sell: %w", upErr)
			}
			return order, nil
		}
		order.HoldingID = nil
	}

	order.Close(now)
	if err := s.orders.Update(order); err != nil {
		return nil, fmt.Errorf("close order %d: %w", orderID, err)
	}

	if _, err := s.quoteSvc.UpdatePriceVolume(ctx, order.Symbol, domain.RandomChangeFactor(), order.Quantity); err != nil {
		s.logger.Error("quote settle failed", "order_id", order.ID, "symbol", order.Symbol, "error", err)
	}

	s.logger.Info("order completed", "order_id", order.ID, "type", order.Type, "two_phase", twoPhase)
	return order, nil
}

// CancelOrder marks an order cancelled regardless of its current status.
func (s *TradeService) CancelOrder(ctx context.Context, orderID int) error {
	order, err := s.orders.Get(orderID)
	if err != nil {
		return err
	}
	order.Cancel(time.Now())
	return s.orders.Update(order)
}

// GetOrder returns a single order.
func (s *TradeService) GetOrder(ctx context.Context, orderID int) (*domain.Order, error) {
	return s.orders.Get(orderID)
}

// GetOrders returns all orders of an account, newest first.
func (s *TradeService) GetOrders(ctx context.Context, accountID int) ([]*domain.Order, error) {
	if _, err := s.accounts.Get(accountID); err != nil {
		return nil, err
	}
	return s.orders.ListByAccount(accountID)
}

// GetClosedOrders returns the account's closed orders and acknowledges
// them: each returned order is marked completed, or deleted entirely when
// the service runs in long-run mode.
func (s *TradeService) GetClosedOrders(ctx context.Context, accountID int) ([]*domain.Order, error) {
	if _, err := s.accounts.Get(accountID); err != nil {
		return nil, err
	}
	closed, err := s.orders.ListByAccountStatus(accountID, domain.OrderStatusClosed)
	if err != nil {
		return nil, err
	}

	for _, order := range closed {
		if s.longRun {
			if err := s.orders.Delete(order.ID); err != nil {
				s.logger.Error("closed order delete failed", "order_id", order.ID, "error", err)
			}
			continue
		}
		order.Status = domain.OrderStatusCompleted
		if err := s.orders.Update(order); err != nil {
			s.logger.Error("closed order ack failed", "order_id", order.ID, "error", err)
		}
	}
	return closed, nil
}

// GetHoldings returns all holdings of an account.
func (s *TradeService) GetHoldings(ctx context.Context, accountID int) ([]*domain.Holding, error) {
	if _, err := s.accounts.Get(accountID); err != nil {
		return nil, err
	}
	return s.holdings.ListByAccount(accountID)
}

// GetHolding returns a single holding.
func (s *TradeService) GetHolding(ctx context.Context, holdingID int) (*domain.Holding, error) {
	return s.holdings.Get(holdingID)
}

// GetQuote returns the quote for a symbol.
func (s *TradeService) GetQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	return s.quotes.Get(symbol)
}

// GetAllQuotes returns every quote, sorted by symbol.
func (s *TradeService) GetAllQuotes(ctx context.Context) ([]*domain.Quote, error) {
	return s.quotes.All()
}

// CreateQuote registers a new tradeable symbol at an opening price.
func (s *TradeService) CreateQuote(ctx context.Context, symbol, companyName string, price decimal.Decimal) (*domain.Quote, error) {
	if symbol == "" {
		return nil, &domain.ValidationError{Message: "symbol is required"}
	}
	if !price.IsPositive() {
		return nil, &domain.ValidationError{Message: "price must be positive"}
	}
	quote := domain.NewQuote(symbol, companyName, price)
	if err := s.quotes.Create(quote); err != nil {
		return nil, err
	}
	return quote, nil
}
