package points

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		total    int
		level    int
		name     string
		next     int
		progress float64
	}{
		{0, 1, "Seedling", 100, 0},
		{50, 1, "Seedling", 100, 50},
		{100, 2, "Sprout", 250, 0},
		{175, 2, "Sprout", 250, 50},
		{999, 4, "Grower", 1000, 99.8},
		{2000, 6, "Guardian", 2000, 100},
		{5000, 6, "Guardian", 2000, 100},
	}

	for _, tt := range tests {
		got := LevelFor(tt.total)
		assert.Equal(t, tt.level, got.Number, "total %d", tt.total)
		assert.Equal(t, tt.name, got.Name, "total %d", tt.total)
		assert.Equal(t, tt.next, got.NextLevelPoints, "total %d", tt.total)
		assert.InDelta(t, tt.progress, got.Progress, 0.001, "total %d", tt.total)
	}
}

func TestAwardAmounts(t *testing.T) {
	assert.Equal(t, 5, ForLoggedEntry(0.2))
	assert.Equal(t, 15, ForLoggedEntry(9.6))
	assert.Equal(t, 10, ForCollection(0))
	assert.Equal(t, 30, ForCollection(10))
	assert.Equal(t, 5, ForLoggedEntry(-3))
	assert.Equal(t, 5, ForLoggedEntry(math.NaN()))
	assert.Equal(t, 10+2*100000, ForCollection(math.Inf(1)))
}
