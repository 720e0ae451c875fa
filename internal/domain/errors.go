package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrAccountNotFound    = errors.New("account_not_found")
	ErrUserAlreadyExists  = errors.New("user_already_exists")
	ErrBadCredentials     = errors.New("bad_credentials")
	ErrQuoteNotFound      = errors.New("quote_not_found")
	ErrQuoteAlreadyExists = errors.New("quote_already_exists")
	ErrHoldingNotFound    = errors.New("holding_not_found")
	ErrOrderNotFound      = errors.New("order_not_found")
	ErrOrderCompleted     = errors.New("order_already_completed")
	ErrDispatchFailed     = errors.New("dispatch_failed")
)

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
