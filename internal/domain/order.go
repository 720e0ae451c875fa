package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderType distinguishes buy orders from sell orders.
type OrderType string

const (
	OrderTypeBuy  OrderType = "buy"
	OrderTypeSell OrderType = "sell"
)

// OrderStatus represents the lifecycle state of an order.
//
// Transitions are monotonic: open → closed or open → cancelled. A closed
// order becomes completed once its owner has retrieved it. There is no
// transition out of closed, cancelled, or completed.
type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "open"
	OrderStatusClosed    OrderStatus = "closed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusCompleted OrderStatus = "completed"
)

// Order represents a buy or sell instruction placed by an account.
type Order struct {
	ID             int
	Type           OrderType
	Status         OrderStatus
	OpenDate       time.Time
	CompletionDate *time.Time
	Quantity       float64
	Price          decimal.Decimal
	Fee            decimal.Decimal
	AccountID      int
	Symbol         string
	// HoldingID is nil for a buy until completion creates the holding, and
	// set for a sell until completion clears it.
	HoldingID *int
}

// IsBuy reports whether the order is a buy order.
func (o *Order) IsBuy() bool { return o.Type == OrderTypeBuy }

// IsSell reports whether the order is a sell order.
func (o *Order) IsSell() bool { return o.Type == OrderTypeSell }

// Terminal reports whether the order has reached a state that no transition
// leaves. Completing a terminal order is an error.
func (o *Order) Terminal() bool {
	switch o.Status {
	case OrderStatusClosed, OrderStatusCancelled, OrderStatusCompleted:
		return true
	}
	return false
}

// Close marks the order closed and stamps the completion date.
func (o *Order) Close(now time.Time) {
	o.Status = OrderStatusClosed
	o.CompletionDate = &now
}

// Cancel marks the order cancelled and stamps the completion date.
func (o *Order) Cancel(now time.Time) {
	o.Status = OrderStatusCancelled
	o.CompletionDate = &now
}

// Total returns quantity × price, before fees.
func (o *Order) Total() decimal.Decimal {
	return decimal.NewFromFloat(o.Quantity).Mul(o.Price)
}
