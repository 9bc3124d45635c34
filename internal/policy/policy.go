// Package policy holds the deployment-owned economy tables: the spin wheel,
// the tier thresholds and the redemption catalog. The payout odds of the
// wheel are policy, not code: weighting is expressed by duplicating rows,
// and the file owner tunes the distribution by adding or removing rows.
package policy

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// WheelRow is one equally-likely outcome of the daily spin. More common
// outcomes appear as multiple rows.
type WheelRow struct {
	Label string `toml:"label"`
	Value int64  `toml:"value"` // coins paid, zero for no-win rows
}

// TierRow defines one tier threshold. Rows must be ordered by ascending
// MinCoins with the base row at zero.
type TierRow struct {
	Level       string `toml:"level"`
	MinCoins    int64  `toml:"min_coins"`
	Perk        string `toml:"perk"`
	SpinsPerDay int    `toml:"spins_per_day"` // daily-spin grants per cooldown window
}

// CatalogRow is one purchasable reward in the redemption catalog
type CatalogRow struct {
	Key   string `toml:"key"`
	Label string `toml:"label"`
	Cost  int64  `toml:"cost"`
}

// Policy is the full economy policy document
type Policy struct {
	CooldownHours int          `toml:"cooldown_hours"`
	Wheel         []WheelRow   `toml:"wheel"`
	Tiers         []TierRow    `toml:"tier"`
	Catalog       []CatalogRow `toml:"reward"`
}

// Default returns the built-in policy matching the production tables
func Default() *Policy {
	return &Policy{
		CooldownHours: 24,
		Wheel: []WheelRow{
			{Label: "No win today", Value: 0},
			{Label: "+100 Zeus Coins", Value: 100},
			{Label: "+250 Zeus Coins", Value: 250},
			{Label: "+500 Zeus Coins", Value: 500},
		},
		Tiers: []TierRow{
			{Level: "STANDARD", MinCoins: 0, Perk: "Standard", SpinsPerDay: 1},
			{Level: "SILVER", MinCoins: 10000, Perk: "Silver (50% platform redeem fees covered)", SpinsPerDay: 1},
			{Level: "GOLD", MinCoins: 25000, Perk: "Gold (100% platform redeem fees covered)", SpinsPerDay: 2},
			{Level: "DIAMOND", MinCoins: 50000, Perk: "Diamond (100% fees + 5% bonus on deposits over $50)", SpinsPerDay: 3},
		},
		Catalog: []CatalogRow{
			{Key: "match_25", Label: "25% Deposit Match", Cost: 4000},
			{Key: "match_50", Label: "50% Deposit Match", Cost: 8000},
			{Key: "match_100", Label: "100% Deposit Match", Cost: 15000},
			{Key: "freeplay_10", Label: "$10 Free Play", Cost: 5000},
			{Key: "freeplay_50", Label: "$50 Free Play", Cost: 20000},
			{Key: "freeplay_100", Label: "$100 Free Play", Cost: 35000},
		},
	}
}

// Load reads a policy file, falling back to the built-in defaults when
// path is empty. Any omitted section keeps its default value.
func Load(path string) (*Policy, error) {
	p := Default()
	if path == "" {
		return p, nil
	}

	loaded := &Policy{}
	if _, err := toml.DecodeFile(path, loaded); err != nil {
		return nil, fmt.Errorf("error reading policy file %s: %w", path, err)
	}

	// Zero means the key was absent and keeps the default; anything
	// negative is an explicit bad value, not an omission
	if loaded.CooldownHours < 0 {
		return nil, fmt.Errorf("invalid policy file %s: cooldown_hours must be positive, got %d", path, loaded.CooldownHours)
	}
	if loaded.CooldownHours > 0 {
		p.CooldownHours = loaded.CooldownHours
	}
	if len(loaded.Wheel) > 0 {
		p.Wheel = loaded.Wheel
	}
	if len(loaded.Tiers) > 0 {
		p.Tiers = loaded.Tiers
	}
	if len(loaded.Catalog) > 0 {
		p.Catalog = loaded.Catalog
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy file %s: %w", path, err)
	}
	return p, nil
}

// Validate checks the structural invariants of the policy tables
func (p *Policy) Validate() error {
	if p.CooldownHours <= 0 {
		return fmt.Errorf("cooldown_hours must be positive, got %d", p.CooldownHours)
	}

	if len(p.Wheel) == 0 {
		return fmt.Errorf("wheel must have at least one row")
	}
	for i, row := range p.Wheel {
		if row.Label == "" {
			return fmt.Errorf("wheel row %d is missing a label", i)
		}
		if row.Value < 0 {
			return fmt.Errorf("wheel row %q has negative value %d", row.Label, row.Value)
		}
	}

	if len(p.Tiers) == 0 {
		return fmt.Errorf("tier table must have at least one row")
	}
	if p.Tiers[0].MinCoins != 0 {
		return fmt.Errorf("base tier %q must start at 0 coins, got %d", p.Tiers[0].Level, p.Tiers[0].MinCoins)
	}
	for i, row := range p.Tiers {
		if row.Level == "" {
			return fmt.Errorf("tier row %d is missing a level name", i)
		}
		if row.SpinsPerDay <= 0 {
			return fmt.Errorf("tier %q must allow at least one spin per day", row.Level)
		}
		if i > 0 && row.MinCoins <= p.Tiers[i-1].MinCoins {
			return fmt.Errorf("tier thresholds must be strictly increasing: %q (%d) after %q (%d)",
				row.Level, row.MinCoins, p.Tiers[i-1].Level, p.Tiers[i-1].MinCoins)
		}
	}

	seen := make(map[string]bool)
	for i, row := range p.Catalog {
		if row.Key == "" {
			return fmt.Errorf("catalog row %d is missing a key", i)
		}
		if seen[row.Key] {
			return fmt.Errorf("duplicate catalog key %q", row.Key)
		}
		seen[row.Key] = true
		if row.Cost <= 0 {
			return fmt.Errorf("catalog reward %q must have a positive cost, got %d", row.Key, row.Cost)
		}
	}

	return nil
}
