package entities

import (
	"time"
)

// SpinGrant marks one consumed daily-spin grant. The cooldown gate counts
// these inside the rolling window, so a grant is recorded for every spin,
// including no-win outcomes that pay zero coins.
type SpinGrant struct {
	ID        string    `json:"id"`         // Unique identifier
	AccountID string    `json:"account_id"` // Account that spun
	Label     string    `json:"label"`      // Label of the wheel row that came up
	Value     int64     `json:"value"`      // Coins paid out, zero for no-win rows
	CreatedAt time.Time `json:"created_at"` // When the spin happened
}
