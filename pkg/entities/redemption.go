package entities

import (
	"time"
)

// RedemptionStatus tracks whether a host has applied a redeemed reward
type RedemptionStatus string

const (
	RedemptionPending RedemptionStatus = "pending"
	RedemptionApplied RedemptionStatus = "applied"
)

// Redemption is the reporting record written alongside a catalog
// redemption. It is additive bookkeeping for the host console, not
// authoritative for the balance; the ledger entry is.
type Redemption struct {
	ID          string           `json:"id"`           // Unique identifier
	AccountID   string           `json:"account_id"`   // Account that redeemed
	RewardKey   string           `json:"reward_key"`   // Catalog key, e.g. "match_50"
	RewardLabel string           `json:"reward_label"` // Human-readable reward label
	CoinsSpent  int64            `json:"coins_spent"`  // Cost charged, always positive
	Status      RedemptionStatus `json:"status"`       // Host workflow status
	CreatedAt   time.Time        `json:"created_at"`   // When the redemption happened
}
