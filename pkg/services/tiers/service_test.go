package tiers

import (
	"testing"

	"github.com/fadedpez/zeuscoins/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := NewClassifier(policy.Default().Tiers)
	require.NoError(t, err)
	return c
}

func TestClassifyLevels(t *testing.T) {
	c := newTestClassifier(t)

	testCases := []struct {
		coins int64
		level string
	}{
		{0, "STANDARD"},
		{1, "STANDARD"},
		{9999, "STANDARD"},
		{10000, "SILVER"}, // exact threshold lands on the tier
		{24999, "SILVER"},
		{25000, "GOLD"},
		{49999, "GOLD"},
		{50000, "DIAMOND"},
		{1000000, "DIAMOND"},
	}

	for _, tc := range testCases {
		progress := c.Classify(tc.coins)
		assert.Equal(t, tc.level, progress.Current.Level, "coins=%d", tc.coins)
	}
}

func TestClassifyProgress(t *testing.T) {
	c := newTestClassifier(t)

	// Halfway from STANDARD (0) to SILVER (10000)
	progress := c.Classify(5000)
	require.NotNil(t, progress.Next)
	assert.Equal(t, "SILVER", progress.Next.Level)
	assert.Equal(t, 50, progress.PercentToNext)
	assert.Equal(t, int64(5000), progress.CoinsNeeded)

	// Start of a tier
	progress = c.Classify(10000)
	require.NotNil(t, progress.Next)
	assert.Equal(t, "GOLD", progress.Next.Level)
	assert.Equal(t, 0, progress.PercentToNext)
	assert.Equal(t, int64(15000), progress.CoinsNeeded)

	// Top tier has no next level
	progress = c.Classify(75000)
	assert.Nil(t, progress.Next)
	assert.Equal(t, 100, progress.PercentToNext)
	assert.Equal(t, int64(0), progress.CoinsNeeded)
}

func TestClassifyMonotonic(t *testing.T) {
	c := newTestClassifier(t)

	// Tier level index never decreases as coins grow
	levelIndex := func(level string) int {
		for i, tier := range c.Table() {
			if tier.Level == level {
				return i
			}
		}
		t.Fatalf("unknown level %q", level)
		return -1
	}

	prev := -1
	for coins := int64(0); coins <= 60000; coins += 137 {
		idx := levelIndex(c.Classify(coins).Current.Level)
		assert.GreaterOrEqual(t, idx, prev, "tier regressed at coins=%d", coins)
		prev = idx
	}
}

func TestClassifyNegativeCoins(t *testing.T) {
	c := newTestClassifier(t)

	progress := c.Classify(-5)
	assert.Equal(t, "STANDARD", progress.Current.Level)
	assert.Equal(t, 0, progress.PercentToNext)
}

func TestSpinsPerDay(t *testing.T) {
	c := newTestClassifier(t)

	assert.Equal(t, 1, c.SpinsPerDay(0))
	assert.Equal(t, 1, c.SpinsPerDay(10000))
	assert.Equal(t, 2, c.SpinsPerDay(25000))
	assert.Equal(t, 3, c.SpinsPerDay(50000))
}

func TestNewClassifierValidation(t *testing.T) {
	_, err := NewClassifier(nil)
	assert.Error(t, err)

	_, err = NewClassifier([]policy.TierRow{
		{Level: "STANDARD", MinCoins: 100, SpinsPerDay: 1},
	})
	assert.Error(t, err, "base tier must start at zero")

	_, err = NewClassifier([]policy.TierRow{
		{Level: "STANDARD", MinCoins: 0, SpinsPerDay: 1},
		{Level: "SILVER", MinCoins: 0, SpinsPerDay: 1},
	})
	assert.Error(t, err, "thresholds must be strictly increasing")
}
