package types

import (
	"fmt"
	"time"
)

// ErrorCode represents a specific error type
type ErrorCode string

const (
	// Business outcomes
	ErrInsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"
	ErrCooldownActive    ErrorCode = "COOLDOWN_ACTIVE"
	ErrUnknownReward     ErrorCode = "UNKNOWN_REWARD"

	// Request errors
	ErrInvalidArgument  ErrorCode = "INVALID_ARGUMENT"
	ErrPermissionDenied ErrorCode = "PERMISSION_DENIED"
	ErrAccountNotFound  ErrorCode = "ACCOUNT_NOT_FOUND"

	// System errors
	ErrConcurrentModification ErrorCode = "CONCURRENT_MODIFICATION"
	ErrStoreUnavailable       ErrorCode = "STORE_UNAVAILABLE"
	ErrInternalError          ErrorCode = "INTERNAL_ERROR"
)

// CoinError represents an economy-related error
type CoinError struct {
	Code    ErrorCode
	Message string
	Err     error // Underlying error, if any

	// NextEligibleAt is set only for COOLDOWN_ACTIVE errors and carries
	// the instant at which the next spin becomes available.
	NextEligibleAt time.Time
}

// Error implements the error interface
func (e *CoinError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *CoinError) Unwrap() error {
	return e.Err
}

// NewCoinError creates a new CoinError
func NewCoinError(code ErrorCode, message string) *CoinError {
	return &CoinError{
		Code:    code,
		Message: message,
	}
}

// NewCooldownError creates a COOLDOWN_ACTIVE error carrying the retry time
func NewCooldownError(nextEligibleAt time.Time) *CoinError {
	return &CoinError{
		Code:           ErrCooldownActive,
		Message:        fmt.Sprintf("spin not available until %s", nextEligibleAt.Format(time.RFC3339)),
		NextEligibleAt: nextEligibleAt,
	}
}

// WrapError wraps an existing error in a CoinError
func WrapError(code ErrorCode, message string, err error) *CoinError {
	return &CoinError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsCoinError checks if an error is a CoinError and has a specific code
func IsCoinError(err error, code ErrorCode) bool {
	var coinErr *CoinError
	if err == nil {
		return false
	}
	if ok := As(err, &coinErr); !ok {
		return false
	}
	return coinErr.Code == code
}

// As is a helper function to safely type assert an error to a CoinError
func As(err error, target **CoinError) bool {
	if target == nil {
		return false
	}
	if coinErr, ok := err.(*CoinError); ok {
		*target = coinErr
		return true
	}
	return false
}
