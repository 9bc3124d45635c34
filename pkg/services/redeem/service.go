package redeem

import (
	"context"
	"time"

	"github.com/fadedpez/zeuscoins/internal/logging"
	"github.com/fadedpez/zeuscoins/internal/policy"
	"github.com/fadedpez/zeuscoins/internal/types"
	"github.com/fadedpez/zeuscoins/pkg/entities"
	coinRepo "github.com/fadedpez/zeuscoins/pkg/repositories/coin"
	"github.com/fadedpez/zeuscoins/pkg/repositories/report"
	"github.com/fadedpez/zeuscoins/pkg/services/coins"
	"github.com/google/uuid"
)

// Reward is a purchasable catalog item as shown to clients
type Reward struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Cost  int64  `json:"cost"`
}

// Result describes a completed redemption
type Result struct {
	Redemption *entities.Redemption `json:"redemption"`
	NewBalance int64                `json:"new_balance"`
}

// Service sells catalog rewards for coins. The coin debit is the
// authoritative effect; the redemption record and the analytics event
// are best-effort bookkeeping for the host console.
type Service struct {
	repo     coinRepo.Repository
	mutator  coins.Mutator
	catalog  []policy.CatalogRow
	reporter report.Reporter
	logger   *logging.Logger

	now func() time.Time
}

// NewService creates a new redemption service
func NewService(repo coinRepo.Repository, mutator coins.Mutator, p *policy.Policy, reporter report.Reporter, logger *logging.Logger) *Service {
	if reporter == nil {
		reporter = report.NewNopReporter()
	}
	if logger == nil {
		logger = logging.Default
	}
	return &Service{
		repo:     repo,
		mutator:  mutator,
		catalog:  p.Catalog,
		reporter: reporter,
		logger:   logger,
		now:      time.Now,
	}
}

// Catalog returns the purchasable rewards in policy order
func (s *Service) Catalog() []*Reward {
	rewards := make([]*Reward, 0, len(s.catalog))
	for _, row := range s.catalog {
		rewards = append(rewards, &Reward{Key: row.Key, Label: row.Label, Cost: row.Cost})
	}
	return rewards
}

// Redeem charges the account for the named reward. The catalog is checked
// before any money moves, so an unknown key never touches the balance.
// Insufficient funds surface from the mutator with the balance unchanged.
func (s *Service) Redeem(ctx context.Context, accountID, rewardKey string) (*Result, error) {
	if accountID == "" {
		return nil, types.NewCoinError(types.ErrInvalidArgument, "account id is required")
	}

	reward := s.find(rewardKey)
	if reward == nil {
		return nil, types.NewCoinError(types.ErrUnknownReward, "unknown reward: "+rewardKey)
	}

	newBalance, err := s.mutator.ApplyDelta(ctx, accountID, -reward.Cost, entities.ReasonRewardRedeem, reward.Label)
	if err != nil {
		return nil, err
	}

	redemption := &entities.Redemption{
		ID:          uuid.New().String(),
		AccountID:   accountID,
		RewardKey:   reward.Key,
		RewardLabel: reward.Label,
		CoinsSpent:  reward.Cost,
		Status:      entities.RedemptionPending,
		CreatedAt:   s.now(),
	}

	// The debit already went through; a failed reporting write is logged
	// and the redemption still succeeds.
	if err := s.repo.AddRedemption(ctx, redemption); err != nil {
		s.logger.Warn("Failed to record redemption %s for account %s: %v", redemption.ID, accountID, err)
	}
	if err := s.reporter.IndexRedemption(ctx, redemption); err != nil {
		s.logger.Warn("Failed to index redemption %s for account %s: %v", redemption.ID, accountID, err)
	}

	return &Result{Redemption: redemption, NewBalance: newBalance}, nil
}

// History retrieves recent redemptions for an account, most recent first
func (s *Service) History(ctx context.Context, accountID string, limit int) ([]*entities.Redemption, error) {
	if accountID == "" {
		return nil, types.NewCoinError(types.ErrInvalidArgument, "account id is required")
	}
	if limit <= 0 {
		limit = 20
	}

	redemptions, err := s.repo.GetRedemptions(ctx, accountID, limit)
	if err != nil {
		return nil, types.WrapError(types.ErrStoreUnavailable, "failed to load redemptions", err)
	}
	return redemptions, nil
}

func (s *Service) find(key string) *policy.CatalogRow {
	for i := range s.catalog {
		if s.catalog[i].Key == key {
			return &s.catalog[i]
		}
	}
	return nil
}
