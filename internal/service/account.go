package service

import (
	"context"
	"log/slog"
	"regexp"
	"time"

	"github.com/efreitasn/gotrade/internal/domain"
	"github.com/shopspring/decimal"
)

var userIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// AccountService handles registration, login and account queries.
type AccountService struct {
	accounts AccountStore
	holdings HoldingStore
	logger   *slog.Logger
}

// NewAccountService builds an account service.
func NewAccountService(accounts AccountStore, holdings HoldingStore, logger *slog.Logger) *AccountService {
	return &AccountService{accounts: accounts, holdings: holdings, logger: logger}
}

// RegisterParams carries the profile fields for a new account.
type RegisterParams struct {
	UserID      string
	Password    string
	FullName    string
	Address     string
	Email       string
	CreditCard  string
	OpenBalance decimal.Decimal
}

// Register creates a new account with the given opening balance.
func (s *AccountService) Register(ctx context.Context, p RegisterParams) (*domain.Account, error) {
	if !userIDPattern.MatchString(p.UserID) {
		return nil, &domain.ValidationError{Message: "user ID must be 1-64 characters of letters, digits, _ or -"}
	}
	if p.Password == "" {
		return nil, &domain.ValidationError{Message: "password is required"}
	}
	if p.OpenBalance.IsNegative() {
		return nil, &domain.ValidationError{Message: "open balance must not be negative"}
	}
	if !p.OpenBalance.Equal(p.OpenBalance.Round(2)) {
		return nil, &domain.ValidationError{Message: "open balance must have at most two decimal places"}
	}

	account := &domain.Account{
		UserID:       p.UserID,
		Password:     p.Password,
		FullName:     p.FullName,
		Address:      p.Address,
		Email:        p.Email,
		CreditCard:   p.CreditCard,
		Balance:      p.OpenBalance,
		OpenBalance:  p.OpenBalance,
		CreationDate: time.Now(),
	}
	if err := s.accounts.Create(account); err != nil {
		return nil, err
	}
	s.logger.Info("account registered", "account_id", account.ID, "user_id", account.UserID)
	return account, nil
}

// Login verifies credentials and records the login.
func (s *AccountService) Login(ctx context.Context, userID, password string) (*domain.Account, error) {
	account, err := s.accounts.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if account.Password != password {
		return nil, domain.ErrBadCredentials
	}
	account.Login(time.Now())
	if err := s.accounts.Update(account); err != nil {
		return nil, err
	}
	return account, nil
}

// Logout records a logout for the user.
func (s *AccountService) Logout(ctx context.Context, userID string) error {
	account, err := s.accounts.GetByUserID(userID)
	if err != nil {
		return err
	}
	account.Logout()
	return s.accounts.Update(account)
}

// GetAccount returns an account by ID.
func (s *AccountService) GetAccount(ctx context.Context, id int) (*domain.Account, error) {
	return s.accounts.Get(id)
}

// GetAccountByUserID returns an account by its user ID.
func (s *AccountService) GetAccountByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	return s.accounts.GetByUserID(userID)
}
