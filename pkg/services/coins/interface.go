package coins

import (
	"context"

	"github.com/fadedpez/zeuscoins/pkg/entities"
)

//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_coins_service

// Mutator is the write side of the coin economy. Every component that
// changes a balance (spins, redemptions, staff adjustments) goes
// through it.
type Mutator interface {
	ApplyDelta(ctx context.Context, accountID string, delta int64, reason entities.LedgerReason, note string) (int64, error)
	RecordSpin(ctx context.Context, grant *entities.SpinGrant) (int64, error)
}
