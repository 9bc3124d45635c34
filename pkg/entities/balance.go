package entities

import (
	"time"
)

// Balance represents an account's current Zeus Coin total. It is a
// materialized cache of the account's ledger sum; the ledger is the
// source of truth.
type Balance struct {
	AccountID   string    `json:"account_id"`   // Opaque principal identifier from the identity provider
	Coins       int64     `json:"coins"`        // Current coin total, never negative
	LastUpdated time.Time `json:"last_updated"` // When the balance was last changed
}
