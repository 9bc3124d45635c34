package types

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (s *ErrorTestSuite) TestNewCoinError() {
	// Setup
	code := ErrInsufficientFunds
	message := "balance cannot go negative"

	// Execute
	err := NewCoinError(code, message)

	// Assert
	s.Equal(code, err.Code, "Error code should match")
	s.Equal(message, err.Message, "Error message should match")
	s.Nil(err.Err, "Underlying error should be nil")
}

func (s *ErrorTestSuite) TestNewCooldownError() {
	// Setup
	next := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	// Execute
	err := NewCooldownError(next)

	// Assert
	s.Equal(ErrCooldownActive, err.Code, "Error code should be COOLDOWN_ACTIVE")
	s.Equal(next, err.NextEligibleAt, "Next eligible time should be carried on the error")
	s.Contains(err.Message, "2025-03-14T09:26:53Z", "Message should include the retry time")
}

func (s *ErrorTestSuite) TestWrapError() {
	// Setup
	code := ErrStoreUnavailable
	message := "database error"
	underlying := errors.New("connection failed")

	// Execute
	err := WrapError(code, message, underlying)

	// Assert
	s.Equal(code, err.Code, "Error code should match")
	s.Equal(message, err.Message, "Error message should match")
	s.Equal(underlying, err.Err, "Underlying error should match")
}

func (s *ErrorTestSuite) TestErrorString() {
	testCases := []struct {
		name     string
		err      *CoinError
		expected string
	}{
		{
			name:     "Simple error",
			err:      NewCoinError(ErrUnknownReward, "no such reward"),
			expected: "UNKNOWN_REWARD: no such reward",
		},
		{
			name:     "Wrapped error",
			err:      WrapError(ErrStoreUnavailable, "database error", errors.New("connection failed")),
			expected: "STORE_UNAVAILABLE: database error (connection failed)",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.Equal(tc.expected, tc.err.Error(), "Error string should match expected format")
		})
	}
}

func (s *ErrorTestSuite) TestIsCoinError() {
	// Setup
	coinErr := NewCoinError(ErrInsufficientFunds, "balance cannot go negative")
	regularErr := errors.New("regular error")

	// Test cases
	testCases := []struct {
		name     string
		err      error
		code     ErrorCode
		expected bool
	}{
		{
			name:     "Matching coin error",
			err:      coinErr,
			code:     ErrInsufficientFunds,
			expected: true,
		},
		{
			name:     "Non-matching coin error",
			err:      coinErr,
			code:     ErrStoreUnavailable,
			expected: false,
		},
		{
			name:     "Regular error",
			err:      regularErr,
			code:     ErrInsufficientFunds,
			expected: false,
		},
		{
			name:     "Nil error",
			err:      nil,
			code:     ErrInsufficientFunds,
			expected: false,
		},
	}

	// Execute and assert
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			result := IsCoinError(tc.err, tc.code)
			s.Equal(tc.expected, result, "IsCoinError result should match expected value")
		})
	}
}

func (s *ErrorTestSuite) TestAs() {
	// Setup
	coinErr := NewCoinError(ErrInsufficientFunds, "balance cannot go negative")
	regularErr := errors.New("regular error")

	// Test cases
	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "Coin error",
			err:      coinErr,
			expected: true,
		},
		{
			name:     "Regular error",
			err:      regularErr,
			expected: false,
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: false,
		},
	}

	// Execute and assert
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			var target *CoinError
			result := As(tc.err, &target)
			s.Equal(tc.expected, result, "As result should match expected value")
			if tc.expected {
				s.Equal(coinErr, target, "Target should be set to the coin error")
			}
		})
	}
}
