package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a trading account and its owning user profile.
// Balance is mutated only through the account store's AdjustBalance funnel.
type Account struct {
	ID           int
	UserID       string
	Password     string
	FullName     string
	Address      string
	Email        string
	CreditCard   string
	Balance      decimal.Decimal
	OpenBalance  decimal.Decimal
	LoginCount   int
	LogoutCount  int
	CreationDate time.Time
	LastLogin    *time.Time
}

// Login records a successful login.
func (a *Account) Login(now time.Time) {
	a.LoginCount++
	a.LastLogin = &now
}

// Logout records a logout.
func (a *Account) Logout() {
	a.LogoutCount++
}
