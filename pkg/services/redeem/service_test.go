package redeem

import (
	"context"
	"errors"
	"testing"

	"github.com/fadedpez/zeuscoins/internal/policy"
	"github.com/fadedpez/zeuscoins/internal/types"
	"github.com/fadedpez/zeuscoins/pkg/entities"
	coinRepo "github.com/fadedpez/zeuscoins/pkg/repositories/coin"
	"github.com/fadedpez/zeuscoins/pkg/repositories/report"
	"github.com/fadedpez/zeuscoins/pkg/services/coins"
	"github.com/fadedpez/zeuscoins/pkg/services/tiers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingReporter captures indexed redemptions and can be told to fail
type recordingReporter struct {
	report.NopReporter
	indexed []*entities.Redemption
	fail    bool
}

func (r *recordingReporter) IndexRedemption(ctx context.Context, redemption *entities.Redemption) error {
	if r.fail {
		return errors.New("elasticsearch unavailable")
	}
	r.indexed = append(r.indexed, redemption)
	return nil
}

func setup(t *testing.T) (*coinRepo.MemoryRepository, *Service, *recordingReporter) {
	t.Helper()

	p := policy.Default()
	classifier, err := tiers.NewClassifier(p.Tiers)
	require.NoError(t, err)

	repo := coinRepo.NewMemoryRepository()
	mutator := coins.NewService(repo, classifier, nil)
	reporter := &recordingReporter{}
	return repo, NewService(repo, mutator, p, reporter, nil), reporter
}

func fund(t *testing.T, repo *coinRepo.MemoryRepository, accountID string, coins int64) {
	t.Helper()
	_, err := repo.ApplyDelta(context.Background(), accountID, coins, &entities.LedgerEntry{Reason: entities.ReasonDeposit})
	require.NoError(t, err)
}

func TestRedeemDebitsAndRecords(t *testing.T) {
	repo, service, reporter := setup(t)
	ctx := context.Background()
	fund(t, repo, "user1", 10000)

	result, err := service.Redeem(ctx, "user1", "match_25")
	require.NoError(t, err)

	assert.Equal(t, int64(6000), result.NewBalance)
	assert.Equal(t, "match_25", result.Redemption.RewardKey)
	assert.Equal(t, int64(4000), result.Redemption.CoinsSpent)
	assert.Equal(t, entities.RedemptionPending, result.Redemption.Status)
	assert.NotEmpty(t, result.Redemption.ID)

	// The ledger carries the negative debit with the reward label as note
	entries, err := repo.GetEntriesByReason(ctx, "user1", entities.ReasonRewardRedeem, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(-4000), entries[0].Delta)
	assert.Equal(t, "25% Deposit Match", entries[0].Note)

	// The redemption record and the analytics event were both written
	history, err := service.History(ctx, "user1", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Len(t, reporter.indexed, 1)
	assert.Equal(t, result.Redemption.ID, reporter.indexed[0].ID)
}

func TestRedeemUnknownReward(t *testing.T) {
	repo, service, _ := setup(t)
	ctx := context.Background()
	fund(t, repo, "user1", 10000)

	_, err := service.Redeem(ctx, "user1", "match_999")
	assert.True(t, types.IsCoinError(err, types.ErrUnknownReward))

	// Nothing moved
	balance, err := repo.GetBalance(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), balance.Coins)
}

func TestRedeemInsufficientFunds(t *testing.T) {
	repo, service, reporter := setup(t)
	ctx := context.Background()
	fund(t, repo, "user1", 3999)

	_, err := service.Redeem(ctx, "user1", "match_25")
	assert.True(t, types.IsCoinError(err, types.ErrInsufficientFunds))

	// Balance untouched, no redemption record, no analytics event
	balance, err := repo.GetBalance(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, int64(3999), balance.Coins)

	history, err := service.History(ctx, "user1", 10)
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Empty(t, reporter.indexed)
}

func TestRedeemSurvivesReporterFailure(t *testing.T) {
	repo, service, reporter := setup(t)
	reporter.fail = true
	ctx := context.Background()
	fund(t, repo, "user1", 20000)

	// Analytics being down must not block the redemption
	result, err := service.Redeem(ctx, "user1", "freeplay_10")
	require.NoError(t, err)
	assert.Equal(t, int64(15000), result.NewBalance)

	history, err := service.History(ctx, "user1", 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestCatalogListsPolicyRows(t *testing.T) {
	_, service, _ := setup(t)

	catalog := service.Catalog()
	require.Len(t, catalog, 6)
	assert.Equal(t, "match_25", catalog[0].Key)
	assert.Equal(t, int64(4000), catalog[0].Cost)
	assert.Equal(t, "freeplay_100", catalog[5].Key)
	assert.Equal(t, int64(35000), catalog[5].Cost)
}

func TestRedeemRequiresAccount(t *testing.T) {
	_, service, _ := setup(t)

	_, err := service.Redeem(context.Background(), "", "match_25")
	assert.True(t, types.IsCoinError(err, types.ErrInvalidArgument))
}
