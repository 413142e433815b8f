package matchmaking

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/badwolfdev/queuebot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scoreTestNow = time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)

func queuedPlayer(name string, mmr int, waited time.Duration) *models.Player {
	return &models.Player{
		Name:       name,
		MMR:        mmr,
		LR:         mmr,
		TimeQueued: scoreTestNow.Add(-waited),
	}
}

func TestScoreFormula(t *testing.T) {
	// Two players, 1000 mmr apart, both waiting 15 minutes: the time score
	// sits exactly at the logistic midpoint.
	players := []*models.Player{
		queuedPlayer("a", 5000, 15*time.Minute),
		queuedPlayer("b", 6000, 15*time.Minute),
	}

	total, breakdown := Score(players, scoreTestNow)

	assert.Equal(t, 1000, breakdown.MMRRange)
	assert.InDelta(t, 5000.0/6000.0, breakdown.MMRRangeScore, 1e-9)
	assert.InDelta(t, 15.0, breakdown.AvgQueueMinutes, 1e-9)
	assert.InDelta(t, 0.5, breakdown.QueueTimeScore, 1e-9)
	assert.InDelta(t, breakdown.MMRRangeScore+breakdown.QueueTimeScore, total, 1e-9)
}

func TestScoreZeroWhenRangeTooWide(t *testing.T) {
	players := []*models.Player{
		queuedPlayer("low", 0, 30*time.Minute),
		queuedPlayer("high", 7000, 30*time.Minute),
	}

	total, breakdown := Score(players, scoreTestNow)

	require.Greater(t, breakdown.MMRRange, MaxMMRRange)
	assert.Zero(t, breakdown.MMRRangeScore)
	assert.Zero(t, total)
}

func TestScoreClampsMMR(t *testing.T) {
	players := []*models.Player{
		queuedPlayer("floor", -50000, 10*time.Minute),
		queuedPlayer("ceiling", 90000, 10*time.Minute),
	}

	_, breakdown := Score(players, scoreTestNow)

	assert.Equal(t, MaxMMR-MinMMR, breakdown.MMRRange)
	assert.InDelta(t, float64(MaxMMR+MinMMR)/2, breakdown.AvgMMR, 1e-9)
}

func TestBonusScoreIsDisplayOnly(t *testing.T) {
	// A lineup far from 5000 average mmr has a visible bonus that must not
	// leak into the total.
	players := []*models.Player{
		queuedPlayer("a", 11000, 20*time.Minute),
		queuedPlayer("b", 11500, 20*time.Minute),
	}

	total, breakdown := Score(players, scoreTestNow)

	require.Greater(t, breakdown.BonusScore, 0.01)
	assert.InDelta(t, breakdown.MMRRangeScore+breakdown.QueueTimeScore, total, 1e-9)
}

func TestScoreOrderInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	players := make([]*models.Player, LineupSize)
	for i := range players {
		players[i] = queuedPlayer(string(rune('a'+i)), rng.Intn(9000), time.Duration(rng.Intn(60))*time.Minute)
	}

	reference, _ := Score(players, scoreTestNow)
	for trial := 0; trial < 25; trial++ {
		rng.Shuffle(len(players), func(i, j int) { players[i], players[j] = players[j], players[i] })
		total, _ := Score(players, scoreTestNow)
		if math.Abs(total-reference) > 1e-9 {
			t.Fatalf("score changed under reordering: %v != %v", total, reference)
		}
	}
}
