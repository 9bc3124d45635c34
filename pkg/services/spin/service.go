// Package spin implements the daily bonus wheel: a weighted random draw
// behind a rolling-window rate limiter. Weighting is expressed by row
// duplication in the policy wheel, so a uniform draw over rows gives the
// intended payout distribution.
package spin

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/fadedpez/zeuscoins/internal/logging"
	"github.com/fadedpez/zeuscoins/internal/policy"
	"github.com/fadedpez/zeuscoins/internal/types"
	"github.com/fadedpez/zeuscoins/pkg/entities"
	coinRepo "github.com/fadedpez/zeuscoins/pkg/repositories/coin"
	"github.com/fadedpez/zeuscoins/pkg/services/coins"
	"github.com/fadedpez/zeuscoins/pkg/services/tiers"
	"github.com/google/uuid"
)

// Result is the outcome of a spin
type Result struct {
	Label      string `json:"label"`
	Value      int64  `json:"value"`
	NewBalance int64  `json:"new_balance"`
}

// Eligibility describes whether an account may spin right now
type Eligibility struct {
	Eligible       bool      `json:"eligible"`
	NextEligibleAt time.Time `json:"next_eligible_at,omitempty"` // zero when eligible
}

// Service runs the daily spin. The eligibility check and the grant write
// for one account are serialized behind a per-account lock so two racing
// requests can never both be admitted inside the same window.
type Service struct {
	repo       coinRepo.Repository
	mutator    coins.Mutator
	classifier *tiers.Classifier
	wheel      []policy.WheelRow
	window     time.Duration
	logger     *logging.Logger

	// injectable for tests
	now      func() time.Time
	randIntn func(n int) int

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewService creates a new spin service
func NewService(repo coinRepo.Repository, mutator coins.Mutator, classifier *tiers.Classifier, p *policy.Policy, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default
	}
	return &Service{
		repo:       repo,
		mutator:    mutator,
		classifier: classifier,
		wheel:      p.Wheel,
		window:     time.Duration(p.CooldownHours) * time.Hour,
		logger:     logger,
		now:        time.Now,
		randIntn:   rand.Intn,
		locks:      make(map[string]*sync.Mutex),
	}
}

// Spin runs one daily spin for the account: cooldown check, uniform draw
// over the wheel rows, and the grant write, all inside the account's lock.
func (s *Service) Spin(ctx context.Context, accountID string) (*Result, error) {
	if accountID == "" {
		return nil, types.NewCoinError(types.ErrInvalidArgument, "account id is required")
	}

	lock := s.lockFor(accountID)
	lock.Lock()
	defer lock.Unlock()

	eligibility, err := s.checkEligibility(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !eligibility.Eligible {
		return nil, types.NewCooldownError(eligibility.NextEligibleAt)
	}

	// Each row is one equally-likely outcome; duplicated rows carry the weighting
	row := s.wheel[s.randIntn(len(s.wheel))]

	grant := &entities.SpinGrant{
		ID:        uuid.New().String(),
		AccountID: accountID,
		Label:     row.Label,
		Value:     row.Value,
		CreatedAt: s.now(),
	}

	// The grant marker is written even for zero-value outcomes so the
	// cooldown window always sees this spin
	newBalance, err := s.mutator.RecordSpin(ctx, grant)
	if err != nil {
		return nil, err
	}

	s.logger.Info("account %s spun %q for %d coins", accountID, row.Label, row.Value)
	return &Result{
		Label:      row.Label,
		Value:      row.Value,
		NewBalance: newBalance,
	}, nil
}

// CheckEligibility reports whether the account may spin now and, if not,
// when the next spin unlocks
func (s *Service) CheckEligibility(ctx context.Context, accountID string) (*Eligibility, error) {
	if accountID == "" {
		return nil, types.NewCoinError(types.ErrInvalidArgument, "account id is required")
	}
	return s.checkEligibility(ctx, accountID)
}

// checkEligibility resolves the allowed grant count from the account's
// current tier (never a cached value, since the balance may have moved the
// tier since the last grant) and applies the rolling window.
func (s *Service) checkEligibility(ctx context.Context, accountID string) (*Eligibility, error) {
	balance, err := s.repo.GetBalance(ctx, accountID)
	if err != nil {
		return nil, types.WrapError(types.ErrStoreUnavailable, "error reading balance for eligibility", err)
	}
	allowed := s.classifier.SpinsPerDay(balance.Coins)

	since := s.now().Add(-s.window)
	count, oldest, err := s.repo.SpinWindow(ctx, accountID, since)
	if err != nil {
		return nil, types.WrapError(types.ErrStoreUnavailable, "error reading spin window", err)
	}

	if count < allowed {
		return &Eligibility{Eligible: true}, nil
	}

	// Rolling window: the next slot opens when the oldest grant inside
	// the window ages out
	return &Eligibility{
		Eligible:       false,
		NextEligibleAt: oldest.Add(s.window),
	}, nil
}

// History returns recent spin grants, most recent first
func (s *Service) History(ctx context.Context, accountID string, limit int) ([]*entities.SpinGrant, error) {
	if accountID == "" {
		return nil, types.NewCoinError(types.ErrInvalidArgument, "account id is required")
	}
	if limit <= 0 {
		limit = 10
	}

	spins, err := s.repo.GetSpins(ctx, accountID, limit)
	if err != nil {
		return nil, types.WrapError(types.ErrStoreUnavailable, "error reading spin history", err)
	}
	return spins, nil
}

// lockFor returns the mutex serializing spins for one account
func (s *Service) lockFor(accountID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, exists := s.locks[accountID]
	if !exists {
		lock = &sync.Mutex{}
		s.locks[accountID] = lock
	}
	return lock
}
