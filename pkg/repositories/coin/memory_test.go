package coin

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fadedpez/zeuscoins/pkg/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryApplyDelta(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	newBalance, err := repo.ApplyDelta(ctx, "user1", 500, &entities.LedgerEntry{
		Reason: entities.ReasonSpin,
		Note:   "+500 Zeus Coins",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(500), newBalance)

	balance, err := repo.GetBalance(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, int64(500), balance.Coins)

	entries, err := repo.GetEntries(ctx, "user1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(500), entries[0].Delta)
	assert.Equal(t, entities.ReasonSpin, entries[0].Reason)
	assert.Equal(t, int64(500), entries[0].BalanceAfter)
	assert.NotEmpty(t, entries[0].ID)
	assert.False(t, entries[0].CreatedAt.IsZero())
}

func TestMemoryApplyDeltaFloor(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.ApplyDelta(ctx, "user1", 500, &entities.LedgerEntry{Reason: entities.ReasonDeposit})
	require.NoError(t, err)

	// A delta that would go negative fails and leaves no trace
	_, err = repo.ApplyDelta(ctx, "user1", -600, &entities.LedgerEntry{Reason: entities.ReasonRewardRedeem})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	balance, err := repo.GetBalance(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, int64(500), balance.Coins)

	entries, err := repo.GetEntries(ctx, "user1", 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "failed mutation must not append a ledger entry")
}

func TestMemoryGetBalanceProvisionsZero(t *testing.T) {
	repo := NewMemoryRepository()

	balance, err := repo.GetBalance(context.Background(), "fresh")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance.Coins)
	assert.Equal(t, "fresh", balance.AccountID)
}

func TestMemoryRecordSpin(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	now := time.Now()

	// Winning spin: grant, balance and ledger entry in one unit
	newBalance, err := repo.RecordSpin(ctx,
		&entities.SpinGrant{AccountID: "user1", Label: "+250 Zeus Coins", Value: 250, CreatedAt: now},
		&entities.LedgerEntry{AccountID: "user1", Delta: 250, Reason: entities.ReasonSpin, Note: "+250 Zeus Coins", CreatedAt: now},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(250), newBalance)

	// No-win spin: grant only, balance untouched
	newBalance, err = repo.RecordSpin(ctx,
		&entities.SpinGrant{AccountID: "user1", Label: "No win today", Value: 0, CreatedAt: now.Add(time.Hour)},
		nil,
	)
	require.NoError(t, err)
	assert.Equal(t, int64(250), newBalance)

	spins, err := repo.GetSpins(ctx, "user1", 10)
	require.NoError(t, err)
	assert.Len(t, spins, 2)

	entries, err := repo.GetEntries(ctx, "user1", 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no-win spin must not write a ledger entry")
}

func TestMemorySpinWindow(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for _, at := range []time.Time{base, base.Add(2 * time.Hour), base.Add(30 * time.Hour)} {
		_, err := repo.RecordSpin(ctx, &entities.SpinGrant{AccountID: "user1", Label: "No win today", CreatedAt: at}, nil)
		require.NoError(t, err)
	}

	// Window covering the last two grants
	count, oldest, err := repo.SpinWindow(ctx, "user1", base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, base.Add(2*time.Hour), oldest)

	// Window covering nothing
	count, oldest, err = repo.SpinWindow(ctx, "user1", base.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.True(t, oldest.IsZero())
}

func TestMemoryLedgerSumMatchesBalanceUnderConcurrency(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	// Seed so concurrent negative deltas have something to take
	_, err := repo.ApplyDelta(ctx, "user1", 10000, &entities.LedgerEntry{Reason: entities.ReasonDeposit})
	require.NoError(t, err)

	deltas := []int64{100, -50, 250, -200, 500, -75, 25, -400}
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		for _, delta := range deltas {
			wg.Add(1)
			go func(d int64) {
				defer wg.Done()
				reason := entities.ReasonHostAdjust
				if d < 0 {
					reason = entities.ReasonRewardRedeem
				}
				_, err := repo.ApplyDelta(ctx, "user1", d, &entities.LedgerEntry{Reason: reason})
				assert.NoError(t, err)
			}(delta)
		}
	}
	wg.Wait()

	balance, err := repo.GetBalance(ctx, "user1")
	require.NoError(t, err)
	sum, err := repo.SumDeltas(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, balance.Coins, sum, "balance must equal the ledger sum after concurrent batches settle")
	assert.GreaterOrEqual(t, balance.Coins, int64(0))
}

func TestMemoryListAccounts(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.GetBalance(ctx, "bravo")
	require.NoError(t, err)
	_, err = repo.GetBalance(ctx, "alpha")
	require.NoError(t, err)

	accounts, err := repo.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "bravo"}, accounts)
}

func TestMemoryRedemptions(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	err := repo.AddRedemption(ctx, &entities.Redemption{
		AccountID:   "user1",
		RewardKey:   "match_50",
		RewardLabel: "50% Deposit Match",
		CoinsSpent:  8000,
		Status:      entities.RedemptionPending,
	})
	require.NoError(t, err)

	redemptions, err := repo.GetRedemptions(ctx, "user1", 10)
	require.NoError(t, err)
	require.Len(t, redemptions, 1)
	assert.Equal(t, "match_50", redemptions[0].RewardKey)
	assert.Equal(t, entities.RedemptionPending, redemptions[0].Status)
	assert.NotEmpty(t, redemptions[0].ID)
}

func TestMemoryGetEntriesByReason(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.ApplyDelta(ctx, "user1", 100, &entities.LedgerEntry{Reason: entities.ReasonSpin})
	require.NoError(t, err)
	_, err = repo.ApplyDelta(ctx, "user1", 1000, &entities.LedgerEntry{Reason: entities.ReasonDeposit})
	require.NoError(t, err)
	_, err = repo.ApplyDelta(ctx, "user1", 250, &entities.LedgerEntry{Reason: entities.ReasonSpin})
	require.NoError(t, err)

	entries, err := repo.GetEntriesByReason(ctx, "user1", entities.ReasonSpin, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Most recent first
	assert.Equal(t, int64(250), entries[0].Delta)
	assert.Equal(t, int64(100), entries[1].Delta)
}
