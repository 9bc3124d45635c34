package coins

import (
	"context"
	"errors"
	"time"

	"github.com/fadedpez/zeuscoins/internal/logging"
	"github.com/fadedpez/zeuscoins/internal/types"
	"github.com/fadedpez/zeuscoins/pkg/entities"
	coinRepo "github.com/fadedpez/zeuscoins/pkg/repositories/coin"
	"github.com/fadedpez/zeuscoins/pkg/services/tiers"
	"github.com/google/uuid"
)

// maxApplyAttempts bounds the retry loop on write conflicts
const maxApplyAttempts = 4

// Service is the single choke point for balance mutations. The repository
// applies the balance change and the ledger append as one atomic unit;
// this layer adds validation, conflict retries and error mapping.
type Service struct {
	repo       coinRepo.Repository
	classifier *tiers.Classifier
	logger     *logging.Logger
}

// NewService creates a new coins service
func NewService(repo coinRepo.Repository, classifier *tiers.Classifier, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default
	}
	return &Service{
		repo:       repo,
		classifier: classifier,
		logger:     logger,
	}
}

// ApplyDelta applies a signed coin change with its ledger entry. Write
// conflicts are retried with fresh reads up to maxApplyAttempts before
// surfacing CONCURRENT_MODIFICATION.
func (s *Service) ApplyDelta(ctx context.Context, accountID string, delta int64, reason entities.LedgerReason, note string) (int64, error) {
	if accountID == "" {
		return 0, types.NewCoinError(types.ErrInvalidArgument, "account id is required")
	}
	if delta == 0 {
		return 0, types.NewCoinError(types.ErrInvalidArgument, "delta must be non-zero")
	}
	if !entities.ValidReason(reason) {
		return 0, types.NewCoinError(types.ErrInvalidArgument, "unknown reason code: "+string(reason))
	}

	var lastErr error
	for attempt := 1; attempt <= maxApplyAttempts; attempt++ {
		entry := &entities.LedgerEntry{
			ID:        uuid.New().String(),
			AccountID: accountID,
			Delta:     delta,
			Reason:    reason,
			Note:      note,
			CreatedAt: time.Now(),
		}

		newBalance, err := s.repo.ApplyDelta(ctx, accountID, delta, entry)
		switch {
		case err == nil:
			s.logger.Info("applied delta %d (%s) to account %s, balance now %d", delta, reason, accountID, newBalance)
			return newBalance, nil
		case errors.Is(err, coinRepo.ErrInsufficientFunds):
			return 0, types.NewCoinError(types.ErrInsufficientFunds, "balance cannot go negative")
		case errors.Is(err, coinRepo.ErrConcurrentModification):
			lastErr = err
			s.logger.Warn("write conflict on account %s (attempt %d/%d)", accountID, attempt, maxApplyAttempts)
		default:
			return 0, types.WrapError(types.ErrStoreUnavailable, "error applying balance change", err)
		}
	}

	return 0, types.WrapError(types.ErrConcurrentModification, "write conflict retries exhausted", lastErr)
}

// RecordSpin stores a spin grant and, for coin wins, the balance change and
// SPIN ledger entry in the same atomic unit. A zero-value grant writes only
// the cooldown marker.
func (s *Service) RecordSpin(ctx context.Context, grant *entities.SpinGrant) (int64, error) {
	if grant == nil || grant.AccountID == "" {
		return 0, types.NewCoinError(types.ErrInvalidArgument, "spin grant requires an account id")
	}
	if grant.Value < 0 {
		return 0, types.NewCoinError(types.ErrInvalidArgument, "spin grant value cannot be negative")
	}

	var entry *entities.LedgerEntry
	if grant.Value > 0 {
		entry = &entities.LedgerEntry{
			ID:        uuid.New().String(),
			AccountID: grant.AccountID,
			Delta:     grant.Value,
			Reason:    entities.ReasonSpin,
			Note:      grant.Label,
			CreatedAt: grant.CreatedAt,
		}
	}

	var lastErr error
	for attempt := 1; attempt <= maxApplyAttempts; attempt++ {
		newBalance, err := s.repo.RecordSpin(ctx, grant, entry)
		switch {
		case err == nil:
			s.logger.Info("recorded spin %q (+%d) for account %s, balance now %d", grant.Label, grant.Value, grant.AccountID, newBalance)
			return newBalance, nil
		case errors.Is(err, coinRepo.ErrConcurrentModification):
			lastErr = err
			s.logger.Warn("write conflict recording spin for account %s (attempt %d/%d)", grant.AccountID, attempt, maxApplyAttempts)
		default:
			return 0, types.WrapError(types.ErrStoreUnavailable, "error recording spin", err)
		}
	}

	return 0, types.WrapError(types.ErrConcurrentModification, "write conflict retries exhausted", lastErr)
}

// BalanceView is the profile read model: the balance with its derived tier
type BalanceView struct {
	AccountID string         `json:"account_id"`
	Coins     int64          `json:"coins"`
	Tier      tiers.Progress `json:"tier"`
}

// GetBalanceAndTier reads the current balance and classifies it
func (s *Service) GetBalanceAndTier(ctx context.Context, accountID string) (*BalanceView, error) {
	if accountID == "" {
		return nil, types.NewCoinError(types.ErrInvalidArgument, "account id is required")
	}

	balance, err := s.repo.GetBalance(ctx, accountID)
	if err != nil {
		if errors.Is(err, coinRepo.ErrAccountNotFound) {
			return nil, types.NewCoinError(types.ErrAccountNotFound, "no such account: "+accountID)
		}
		return nil, types.WrapError(types.ErrStoreUnavailable, "error reading balance", err)
	}

	return &BalanceView{
		AccountID: accountID,
		Coins:     balance.Coins,
		Tier:      s.classifier.Classify(balance.Coins),
	}, nil
}

// GetLedger returns recent ledger entries, most recent first. A fresh call
// re-reads current state; the result is not a resumable cursor.
func (s *Service) GetLedger(ctx context.Context, accountID string, limit int) ([]*entities.LedgerEntry, error) {
	if accountID == "" {
		return nil, types.NewCoinError(types.ErrInvalidArgument, "account id is required")
	}
	if limit <= 0 {
		limit = 20
	}

	entries, err := s.repo.GetEntries(ctx, accountID, limit)
	if err != nil {
		return nil, types.WrapError(types.ErrStoreUnavailable, "error reading ledger", err)
	}
	return entries, nil
}
