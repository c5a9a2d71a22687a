package points

import "math"

type Level struct {
	Number    int    `json:"level"`
	Name      string `json:"levelName"`
	Threshold int    `json:"threshold"`
}

var levels = []Level{
	{1, "Seedling", 0},
	{2, "Sprout", 100},
	{3, "Sapling", 250},
	{4, "Grower", 500},
	{5, "Harvester", 1000},
	{6, "Guardian", 2000},
}

type Progress struct {
	Level
	// NextLevelPoints is the threshold of the next level, or the current one
	// at the top level.
	NextLevelPoints int     `json:"nextLevelPoints"`
	Progress        float64 `json:"progress"`
}

func LevelFor(total int) Progress {
	idx := 0
	for i, l := range levels {
		if total >= l.Threshold {
			idx = i
		}
	}
	cur := levels[idx]

	if idx == len(levels)-1 {
		return Progress{Level: cur, NextLevelPoints: cur.Threshold, Progress: 100}
	}

	next := levels[idx+1]
	span := float64(next.Threshold - cur.Threshold)
	pct := float64(total-cur.Threshold) / span * 100
	return Progress{
		Level:           cur,
		NextLevelPoints: next.Threshold,
		Progress:        math.Round(pct*100) / 100,
	}
}

// maxAwardKg bounds the per-kg part of an award.
const maxAwardKg = 100000

func awardKg(quantity float64) int {
	if math.IsNaN(quantity) || quantity <= 0 {
		return 0
	}
	return int(math.Round(math.Min(quantity, maxAwardKg)))
}

// ForLoggedEntry is what staff earn for logging a waste entry.
func ForLoggedEntry(quantity float64) int {
	return 5 + awardKg(quantity)
}

// ForCollection is what a partner earns for completing a pickup.
func ForCollection(quantity float64) int {
	return 10 + 2*awardKg(quantity)
}
