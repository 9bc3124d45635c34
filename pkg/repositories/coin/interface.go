package coin

import (
	"context"
	"errors"
	"time"

	"github.com/fadedpez/zeuscoins/pkg/entities"
)

var (
	// ErrInsufficientFunds means the delta would have driven the balance
	// below zero; neither the balance nor the ledger was touched.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrConcurrentModification means the backing store detected a write
	// conflict; the caller should re-read and retry.
	ErrConcurrentModification = errors.New("concurrent modification")

	// ErrAccountNotFound means no balance row exists for the account
	ErrAccountNotFound = errors.New("account not found")
)

//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_coin

// Repository defines the storage contract for balances, the coin ledger,
// spin grants and redemption records. ApplyDelta and RecordSpin are the
// atomic primitives everything else is built on: the balance change and
// its ledger entry always land together or not at all.
type Repository interface {
	// GetBalance retrieves the current balance, provisioning a zero
	// balance for accounts that have never been touched
	GetBalance(ctx context.Context, accountID string) (*entities.Balance, error)

	// ApplyDelta atomically adjusts the balance and appends the matching
	// ledger entry. Returns the new balance. Fails with
	// ErrInsufficientFunds when the result would be negative, leaving
	// both the balance and the ledger untouched. The repository fills
	// entry.BalanceAfter, and entry.ID/CreatedAt when unset.
	ApplyDelta(ctx context.Context, accountID string, delta int64, entry *entities.LedgerEntry) (int64, error)

	// RecordSpin stores the spin grant and, when entry is non-nil, applies
	// the balance change and ledger entry in the same atomic unit. Returns
	// the balance after the spin (unchanged for no-win spins).
	RecordSpin(ctx context.Context, grant *entities.SpinGrant, entry *entities.LedgerEntry) (int64, error)

	// SpinWindow counts spin grants at or after the cutoff and returns the
	// creation time of the oldest grant inside the window (zero when none)
	SpinWindow(ctx context.Context, accountID string, since time.Time) (int, time.Time, error)

	// GetEntries retrieves recent ledger entries, most recent first
	GetEntries(ctx context.Context, accountID string, limit int) ([]*entities.LedgerEntry, error)

	// GetEntriesByReason retrieves recent ledger entries with a given
	// reason code, most recent first
	GetEntriesByReason(ctx context.Context, accountID string, reason entities.LedgerReason, limit int) ([]*entities.LedgerEntry, error)

	// SumDeltas returns the sum of all ledger deltas for an account; used
	// by the reconciliation job to verify the balance cache
	SumDeltas(ctx context.Context, accountID string) (int64, error)

	// ListAccounts returns every account that has a balance row
	ListAccounts(ctx context.Context) ([]string, error)

	// GetSpins retrieves recent spin grants, most recent first
	GetSpins(ctx context.Context, accountID string, limit int) ([]*entities.SpinGrant, error)

	// AddRedemption records a redemption reporting row (best-effort
	// bookkeeping, not authoritative for balance)
	AddRedemption(ctx context.Context, redemption *entities.Redemption) error

	// GetRedemptions retrieves recent redemption records, most recent first
	GetRedemptions(ctx context.Context, accountID string, limit int) ([]*entities.Redemption, error)

	// Close releases the underlying storage
	Close() error
}
