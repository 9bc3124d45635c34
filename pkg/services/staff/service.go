package staff

import (
	"context"
	"fmt"

	"github.com/fadedpez/zeuscoins/internal/logging"
	"github.com/fadedpez/zeuscoins/internal/types"
	"github.com/fadedpez/zeuscoins/pkg/entities"
	coinRepo "github.com/fadedpez/zeuscoins/pkg/repositories/coin"
	"github.com/fadedpez/zeuscoins/pkg/services/coins"
)

//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_staff

// Authorizer answers whether an operator currently holds host privileges.
// It is consulted on every call; a revoked operator is cut off mid-session.
type Authorizer interface {
	IsHost(ctx context.Context, operatorID string) (bool, error)
}

// StaticAuthorizer authorizes a fixed set of operator IDs. Suitable for
// deployments that manage the host list through configuration.
type StaticAuthorizer struct {
	hosts map[string]struct{}
}

func NewStaticAuthorizer(operatorIDs []string) *StaticAuthorizer {
	hosts := make(map[string]struct{}, len(operatorIDs))
	for _, id := range operatorIDs {
		hosts[id] = struct{}{}
	}
	return &StaticAuthorizer{hosts: hosts}
}

func (a *StaticAuthorizer) IsHost(ctx context.Context, operatorID string) (bool, error) {
	_, ok := a.hosts[operatorID]
	return ok, nil
}

// AdjustResult reports a completed staff adjustment
type AdjustResult struct {
	AccountID  string `json:"account_id"`
	OldBalance int64  `json:"old_balance"`
	NewBalance int64  `json:"new_balance"`
	Delta      int64  `json:"delta"`
}

// adjustReasons are the reason codes staff may attach to manual changes.
// SPIN and REWARD_REDEEM are system-generated and off limits here.
var adjustReasons = map[entities.LedgerReason]bool{
	entities.ReasonDeposit:    true,
	entities.ReasonFacebook:   true,
	entities.ReasonManual:     true,
	entities.ReasonHostAdjust: true,
}

// Service is the host console: manual balance adjustments plus the read
// views hosts use to investigate an account. Every call re-checks the
// operator's privileges with the authorizer.
type Service struct {
	repo       coinRepo.Repository
	coins      *coins.Service
	authorizer Authorizer
	logger     *logging.Logger
}

// NewService creates a new staff service
func NewService(repo coinRepo.Repository, coinService *coins.Service, authorizer Authorizer, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default
	}
	return &Service{
		repo:       repo,
		coins:      coinService,
		authorizer: authorizer,
		logger:     logger,
	}
}

// Adjust applies a signed manual change to an account's balance. The
// adjustment goes through the same mutation path as every other write,
// so it lands in the ledger and respects the zero floor.
func (s *Service) Adjust(ctx context.Context, operatorID, accountID string, delta int64, reason entities.LedgerReason, note string) (*AdjustResult, error) {
	if err := s.authorize(ctx, operatorID); err != nil {
		return nil, err
	}
	if accountID == "" {
		return nil, types.NewCoinError(types.ErrInvalidArgument, "account id is required")
	}
	if delta == 0 {
		return nil, types.NewCoinError(types.ErrInvalidArgument, "adjustment must be non-zero")
	}
	if !adjustReasons[reason] {
		return nil, types.NewCoinError(types.ErrInvalidArgument, fmt.Sprintf("reason %q is not allowed for staff adjustments", reason))
	}

	// Tag the entry with the operator so the ledger shows who did it
	if note == "" {
		note = "by " + operatorID
	} else {
		note = note + " (by " + operatorID + ")"
	}

	newBalance, err := s.coins.ApplyDelta(ctx, accountID, delta, reason, note)
	if err != nil {
		return nil, err
	}

	s.logger.Info("staff adjustment: operator %s changed account %s by %+d (%s), balance now %d",
		operatorID, accountID, delta, reason, newBalance)

	// The mutation was atomic, so the pre-adjustment balance is exactly
	// the new balance minus the delta. Reading it separately would race
	// with concurrent writers.
	return &AdjustResult{
		AccountID:  accountID,
		OldBalance: newBalance - delta,
		NewBalance: newBalance,
		Delta:      delta,
	}, nil
}

// GetUser returns the host view of an account: balance plus derived tier
func (s *Service) GetUser(ctx context.Context, operatorID, accountID string) (*coins.BalanceView, error) {
	if err := s.authorize(ctx, operatorID); err != nil {
		return nil, err
	}
	return s.coins.GetBalanceAndTier(ctx, accountID)
}

// LedgerHistory returns an account's recent ledger entries for host review
func (s *Service) LedgerHistory(ctx context.Context, operatorID, accountID string, limit int) ([]*entities.LedgerEntry, error) {
	if err := s.authorize(ctx, operatorID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	entries, err := s.repo.GetEntries(ctx, accountID, limit)
	if err != nil {
		return nil, types.WrapError(types.ErrStoreUnavailable, "error reading ledger", err)
	}
	return entries, nil
}

// SpinHistory returns an account's recent spin grants for host review
func (s *Service) SpinHistory(ctx context.Context, operatorID, accountID string, limit int) ([]*entities.SpinGrant, error) {
	if err := s.authorize(ctx, operatorID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	spins, err := s.repo.GetSpins(ctx, accountID, limit)
	if err != nil {
		return nil, types.WrapError(types.ErrStoreUnavailable, "error reading spin history", err)
	}
	return spins, nil
}

// RedemptionHistory returns an account's recent redemptions for host review
func (s *Service) RedemptionHistory(ctx context.Context, operatorID, accountID string, limit int) ([]*entities.Redemption, error) {
	if err := s.authorize(ctx, operatorID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	redemptions, err := s.repo.GetRedemptions(ctx, accountID, limit)
	if err != nil {
		return nil, types.WrapError(types.ErrStoreUnavailable, "error reading redemptions", err)
	}
	return redemptions, nil
}

func (s *Service) authorize(ctx context.Context, operatorID string) error {
	if operatorID == "" {
		return types.NewCoinError(types.ErrPermissionDenied, "operator id is required")
	}
	ok, err := s.authorizer.IsHost(ctx, operatorID)
	if err != nil {
		return types.WrapError(types.ErrStoreUnavailable, "error checking operator privileges", err)
	}
	if !ok {
		return types.NewCoinError(types.ErrPermissionDenied, "operator "+operatorID+" is not a host")
	}
	return nil
}
