// Package tiers derives an account's tier from its coin balance. The tier
// is never stored; it is recomputed from the balance on every read, so it
// can never drift from the balance it describes.
package tiers

import (
	"fmt"

	"github.com/fadedpez/zeuscoins/internal/policy"
)

// Tier is one row of the ordered threshold table
type Tier struct {
	Level       string `json:"level"`
	MinCoins    int64  `json:"min_coins"`
	Perk        string `json:"perk"`
	SpinsPerDay int    `json:"spins_per_day"`
}

// Progress describes where a balance sits in the tier ladder
type Progress struct {
	Current       Tier  `json:"current"`
	Next          *Tier `json:"next,omitempty"`  // nil at the top tier
	PercentToNext int   `json:"percent_to_next"` // 0-100, 100 at the top tier
	CoinsNeeded   int64 `json:"coins_needed"`    // coins missing to reach Next, 0 at the top tier
}

// Classifier maps balances to tiers. It is stateless after construction
// and safe for concurrent use.
type Classifier struct {
	table []Tier
}

// NewClassifier builds a classifier from policy tier rows. The policy
// loader validates ordering, so this only converts the representation.
func NewClassifier(rows []policy.TierRow) (*Classifier, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("tier table must have at least one row")
	}
	if rows[0].MinCoins != 0 {
		return nil, fmt.Errorf("base tier must start at 0 coins")
	}

	table := make([]Tier, len(rows))
	for i, row := range rows {
		if i > 0 && row.MinCoins <= rows[i-1].MinCoins {
			return nil, fmt.Errorf("tier thresholds must be strictly increasing")
		}
		table[i] = Tier{
			Level:       row.Level,
			MinCoins:    row.MinCoins,
			Perk:        row.Perk,
			SpinsPerDay: row.SpinsPerDay,
		}
	}

	return &Classifier{table: table}, nil
}

// Classify returns the tier and progress metrics for a balance. Pure and
// total over all non-negative inputs; negative inputs classify as the
// base tier.
func (c *Classifier) Classify(coins int64) Progress {
	// Highest row whose threshold is at or below the balance
	idx := 0
	for i, tier := range c.table {
		if coins >= tier.MinCoins {
			idx = i
		}
	}

	current := c.table[idx]
	if idx == len(c.table)-1 {
		return Progress{
			Current:       current,
			Next:          nil,
			PercentToNext: 100,
			CoinsNeeded:   0,
		}
	}

	next := c.table[idx+1]
	span := next.MinCoins - current.MinCoins
	percent := (coins - current.MinCoins) * 100 / span
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	needed := next.MinCoins - coins
	if needed < 0 {
		needed = 0
	}

	return Progress{
		Current:       current,
		Next:          &next,
		PercentToNext: int(percent),
		CoinsNeeded:   needed,
	}
}

// SpinsPerDay returns how many daily-spin grants the balance's tier
// allows per cooldown window
func (c *Classifier) SpinsPerDay(coins int64) int {
	return c.Classify(coins).Current.SpinsPerDay
}

// Table returns a copy of the threshold table, for display surfaces
func (c *Classifier) Table() []Tier {
	table := make([]Tier, len(c.table))
	copy(table, c.table)
	return table
}
