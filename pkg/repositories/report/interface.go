package report

import (
	"context"
	"time"

	"github.com/fadedpez/zeuscoins/pkg/entities"
)

//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_report

// Drift describes a disagreement between a stored balance and the sum of
// the account's ledger deltas at the time of a reconciliation pass.
type Drift struct {
	AccountID  string    `json:"account_id"`
	Balance    int64     `json:"balance"`
	LedgerSum  int64     `json:"ledger_sum"`
	Difference int64     `json:"difference"`
	DetectedAt time.Time `json:"detected_at"`
}

// Reporter receives analytics events from the economy core. Implementations
// must be safe for concurrent use. Reporting is best effort: callers log
// failures but never roll back the operation that produced the event.
type Reporter interface {
	// IndexRedemption records a completed reward redemption
	IndexRedemption(ctx context.Context, redemption *entities.Redemption) error

	// IndexDrift records a balance/ledger disagreement found by reconciliation
	IndexDrift(ctx context.Context, drift *Drift) error

	// Close releases any resources held by the reporter
	Close() error
}

// NopReporter discards all events. Used when no analytics backend is configured.
type NopReporter struct{}

func NewNopReporter() *NopReporter { return &NopReporter{} }

func (*NopReporter) IndexRedemption(ctx context.Context, redemption *entities.Redemption) error {
	return nil
}

func (*NopReporter) IndexDrift(ctx context.Context, drift *Drift) error { return nil }

func (*NopReporter) Close() error { return nil }
