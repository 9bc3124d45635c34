package coin

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fadedpez/zeuscoins/pkg/entities"
	"github.com/google/uuid"
)

// MemoryRepository implements Repository using in-memory storage. A single
// mutex serializes every mutation, so the balance update and the ledger
// append are one critical section per call.
type MemoryRepository struct {
	balances    map[string]*entities.Balance
	entries     map[string][]*entities.LedgerEntry
	spins       map[string][]*entities.SpinGrant
	redemptions map[string][]*entities.Redemption
	mu          sync.RWMutex
}

// NewMemoryRepository creates a new in-memory coin repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		balances:    make(map[string]*entities.Balance),
		entries:     make(map[string][]*entities.LedgerEntry),
		spins:       make(map[string][]*entities.SpinGrant),
		redemptions: make(map[string][]*entities.Redemption),
	}
}

// GetBalance retrieves the current balance, provisioning zero for new accounts
func (r *MemoryRepository) GetBalance(ctx context.Context, accountID string) (*entities.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	balance := r.getOrCreateLocked(accountID)

	// Return a copy to prevent concurrent modification
	balanceCopy := *balance
	return &balanceCopy, nil
}

// ApplyDelta atomically adjusts the balance and appends the ledger entry
func (r *MemoryRepository) ApplyDelta(ctx context.Context, accountID string, delta int64, entry *entities.LedgerEntry) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.applyLocked(accountID, delta, entry)
}

// RecordSpin stores the grant plus, for coin wins, the balance change and
// ledger entry in the same critical section
func (r *MemoryRepository) RecordSpin(ctx context.Context, grant *entities.SpinGrant, entry *entities.LedgerEntry) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	newBalance := r.getOrCreateLocked(grant.AccountID).Coins
	if entry != nil {
		var err error
		newBalance, err = r.applyLocked(grant.AccountID, entry.Delta, entry)
		if err != nil {
			return 0, err
		}
	}

	grantCopy := *grant
	if grantCopy.ID == "" {
		grantCopy.ID = uuid.New().String()
	}
	if grantCopy.CreatedAt.IsZero() {
		grantCopy.CreatedAt = time.Now()
	}
	r.spins[grant.AccountID] = append(r.spins[grant.AccountID], &grantCopy)

	return newBalance, nil
}

// SpinWindow counts grants at or after the cutoff and returns the oldest one
func (r *MemoryRepository) SpinWindow(ctx context.Context, accountID string, since time.Time) (int, time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	var oldest time.Time
	for _, grant := range r.spins[accountID] {
		if grant.CreatedAt.Before(since) {
			continue
		}
		count++
		if oldest.IsZero() || grant.CreatedAt.Before(oldest) {
			oldest = grant.CreatedAt
		}
	}

	return count, oldest, nil
}

// GetEntries retrieves recent ledger entries, most recent first
func (r *MemoryRepository) GetEntries(ctx context.Context, accountID string, limit int) ([]*entities.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.entries[accountID]
	result := make([]*entities.LedgerEntry, 0, limit)
	for i := len(entries) - 1; i >= 0 && len(result) < limit; i-- {
		entryCopy := *entries[i]
		result = append(result, &entryCopy)
	}

	return result, nil
}

// GetEntriesByReason retrieves recent entries with a reason code, most recent first
func (r *MemoryRepository) GetEntriesByReason(ctx context.Context, accountID string, reason entities.LedgerReason, limit int) ([]*entities.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.entries[accountID]
	result := make([]*entities.LedgerEntry, 0, limit)
	for i := len(entries) - 1; i >= 0 && len(result) < limit; i-- {
		if entries[i].Reason != reason {
			continue
		}
		entryCopy := *entries[i]
		result = append(result, &entryCopy)
	}

	return result, nil
}

// SumDeltas returns the sum of all ledger deltas for an account
func (r *MemoryRepository) SumDeltas(ctx context.Context, accountID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sum int64
	for _, entry := range r.entries[accountID] {
		sum += entry.Delta
	}

	return sum, nil
}

// ListAccounts returns every account with a balance row
func (r *MemoryRepository) ListAccounts(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	accounts := make([]string, 0, len(r.balances))
	for accountID := range r.balances {
		accounts = append(accounts, accountID)
	}
	sort.Strings(accounts)

	return accounts, nil
}

// GetSpins retrieves recent spin grants, most recent first
func (r *MemoryRepository) GetSpins(ctx context.Context, accountID string, limit int) ([]*entities.SpinGrant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spins := r.spins[accountID]
	result := make([]*entities.SpinGrant, 0, limit)
	for i := len(spins) - 1; i >= 0 && len(result) < limit; i-- {
		grantCopy := *spins[i]
		result = append(result, &grantCopy)
	}

	return result, nil
}

// AddRedemption records a redemption reporting row
func (r *MemoryRepository) AddRedemption(ctx context.Context, redemption *entities.Redemption) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	redemptionCopy := *redemption
	if redemptionCopy.ID == "" {
		redemptionCopy.ID = uuid.New().String()
	}
	if redemptionCopy.CreatedAt.IsZero() {
		redemptionCopy.CreatedAt = time.Now()
	}
	r.redemptions[redemption.AccountID] = append(r.redemptions[redemption.AccountID], &redemptionCopy)

	return nil
}

// GetRedemptions retrieves recent redemption records, most recent first
func (r *MemoryRepository) GetRedemptions(ctx context.Context, accountID string, limit int) ([]*entities.Redemption, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	redemptions := r.redemptions[accountID]
	result := make([]*entities.Redemption, 0, limit)
	for i := len(redemptions) - 1; i >= 0 && len(result) < limit; i-- {
		redemptionCopy := *redemptions[i]
		result = append(result, &redemptionCopy)
	}

	return result, nil
}

// SetBalanceForTest overwrites a stored balance without touching the
// ledger. Only for tests that need to fabricate drift.
func (r *MemoryRepository) SetBalanceForTest(accountID string, coins int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getOrCreateLocked(accountID).Coins = coins
}

// Close is a no-op for the in-memory repository
func (r *MemoryRepository) Close() error {
	return nil
}

// getOrCreateLocked returns the live balance row, creating a zero balance
// for unknown accounts. Callers must hold the write lock.
func (r *MemoryRepository) getOrCreateLocked(accountID string) *entities.Balance {
	balance, exists := r.balances[accountID]
	if !exists {
		balance = &entities.Balance{
			AccountID:   accountID,
			Coins:       0,
			LastUpdated: time.Now(),
		}
		r.balances[accountID] = balance
	}
	return balance
}

// applyLocked performs the balance update and ledger append. Callers must
// hold the write lock.
func (r *MemoryRepository) applyLocked(accountID string, delta int64, entry *entities.LedgerEntry) (int64, error) {
	balance := r.getOrCreateLocked(accountID)

	newBalance := balance.Coins + delta
	if newBalance < 0 {
		return 0, ErrInsufficientFunds
	}

	balance.Coins = newBalance
	balance.LastUpdated = time.Now()

	entryCopy := *entry
	if entryCopy.ID == "" {
		entryCopy.ID = uuid.New().String()
	}
	if entryCopy.CreatedAt.IsZero() {
		entryCopy.CreatedAt = time.Now()
	}
	entryCopy.AccountID = accountID
	entryCopy.Delta = delta
	entryCopy.BalanceAfter = newBalance
	r.entries[accountID] = append(r.entries[accountID], &entryCopy)
	entry.ID = entryCopy.ID
	entry.CreatedAt = entryCopy.CreatedAt
	entry.BalanceAfter = newBalance

	return newBalance, nil
}
