package entities

import (
	"time"
)

// LedgerReason identifies the provenance of a coin balance change
type LedgerReason string

const (
	ReasonDeposit      LedgerReason = "DEPOSIT"
	ReasonFacebook     LedgerReason = "FACEBOOK"
	ReasonSpin         LedgerReason = "SPIN"
	ReasonRewardRedeem LedgerReason = "REWARD_REDEEM"
	ReasonManual       LedgerReason = "MANUAL"
	ReasonHostAdjust   LedgerReason = "HOST_ADJUST"
)

// ValidReason reports whether r is one of the fixed reason codes
func ValidReason(r LedgerReason) bool {
	switch r {
	case ReasonDeposit, ReasonFacebook, ReasonSpin, ReasonRewardRedeem, ReasonManual, ReasonHostAdjust:
		return true
	}
	return false
}

// LedgerEntry records a single signed change to an account's coin balance.
// Entries are immutable once written and append-only per account.
type LedgerEntry struct {
	ID           string       `json:"id"`            // Unique identifier
	AccountID    string       `json:"account_id"`    // Account the entry belongs to
	Delta        int64        `json:"delta"`         // Signed coin change, never zero
	Reason       LedgerReason `json:"reason"`        // Provenance of the change
	Note         string       `json:"note"`          // Free text, empty string when absent (never null)
	CreatedAt    time.Time    `json:"created_at"`    // When the entry was written
	BalanceAfter int64        `json:"balance_after"` // Balance after this entry was applied
}
