// Package matchmaking scores candidate lineups and assembles them from the
// queue with a greedy, group-atomic search.
package matchmaking

import (
	"math"
	"time"

	"github.com/badwolfdev/queuebot/internal/models"
)

const (
	// LineupSize is the exact number of players in a finalized lineup
	LineupSize = 12

	// ScoreThreshold is the minimum total score at which a lineup is committed
	ScoreThreshold = 1.2

	// MaxMMRRange is the widest mmr spread a lineup can have and still score
	MaxMMRRange = 6000

	// MaxMMR and MinMMR clamp player ratings before any aggregate use
	MaxMMR = 12000
	MinMMR = -1000
)

// Breakdown reports the scoring components of one lineup, used for operator
// debugging output.
type Breakdown struct {
	// MMRRange is the clamped mmr spread of the lineup
	MMRRange int

	// MMRRangeScore is the range component of the total
	MMRRangeScore float64

	// AvgQueueMinutes is the mean whole-minute wait across the lineup
	AvgQueueMinutes float64

	// QueueTimeScore is the wait component of the total
	QueueTimeScore float64

	// AvgMMR is the clamped average mmr of the lineup
	AvgMMR float64

	// BonusScore is the average-mmr bonus. It is reported for display only
	// and is never added to the total.
	BonusScore float64
}

// ClampMMR clamps a rating into [MinMMR, MaxMMR]
func ClampMMR(mmr int) int {
	if mmr > MaxMMR {
		return MaxMMR
	}
	if mmr < MinMMR {
		return MinMMR
	}
	return mmr
}

// Score computes the total score and component breakdown for a candidate
// lineup at the given reference time. The total is zero whenever the mmr
// range component is zero.
func Score(players []*models.Player, now time.Time) (float64, Breakdown) {
	mmrRange := mmrRange(players)

	rangeScore := float64(MaxMMRRange-mmrRange) / MaxMMRRange
	if mmrRange > MaxMMRRange {
		rangeScore = 0
	}

	avgWait := averageQueueMinutes(players, now)
	// Logistic curve centered at a 15 minute average wait:
	// https://www.desmos.com/calculator/p3anl9d2yr
	timeScore := 1 / (1 + math.Pow(1.05, -(2*avgWait-30)))

	avgMMR := averageMMR(players)
	bonus := (avgMMR - 5000) * (avgMMR - 5000) / 1e8 * 0.3

	total := 0.0
	if rangeScore != 0 {
		total = rangeScore + timeScore
	}

	return total, Breakdown{
		MMRRange:        mmrRange,
		MMRRangeScore:   rangeScore,
		AvgQueueMinutes: avgWait,
		QueueTimeScore:  timeScore,
		AvgMMR:          avgMMR,
		BonusScore:      bonus,
	}
}

func mmrRange(players []*models.Player) int {
	min, max := ClampMMR(players[0].MMR), ClampMMR(players[0].MMR)
	for _, p := range players[1:] {
		mmr := ClampMMR(p.MMR)
		if mmr < min {
			min = mmr
		}
		if mmr > max {
			max = mmr
		}
	}
	return max - min
}

func averageMMR(players []*models.Player) float64 {
	sum := 0
	for _, p := range players {
		sum += ClampMMR(p.MMR)
	}
	return float64(sum) / float64(len(players))
}

func averageQueueMinutes(players []*models.Player, now time.Time) float64 {
	sum := 0
	for _, p := range players {
		sum += int(now.Sub(p.TimeQueued).Minutes())
	}
	return float64(sum) / float64(len(players))
}
