package matchmaking

import (
	"fmt"
	"testing"
	"time"

	"github.com/badwolfdev/queuebot/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledQueue(t *testing.T, count int, mmr func(i int) int, waited time.Duration) *queue.Queue {
	t.Helper()
	q := queue.New(nil)
	for i := 0; i < count; i++ {
		p := queuedPlayer(fmt.Sprintf("player%d", i), mmr(i), waited)
		require.NoError(t, q.Add(p))
	}
	return q
}

func TestBestLineupsBelowLineupSize(t *testing.T) {
	q := filledQueue(t, LineupSize-1, func(i int) int { return 5000 + i*10 }, 20*time.Minute)
	assert.Nil(t, BestLineups(q, scoreTestNow))
}

func TestBestLineupsAllTwelve(t *testing.T) {
	// Eleven players cannot form; a twelfth makes exactly one lineup whose
	// score follows the stated formula.
	q := filledQueue(t, LineupSize-1, func(i int) int { return 5000 + i*10 }, 20*time.Minute)
	require.Nil(t, BestLineups(q, scoreTestNow))

	require.NoError(t, q.Add(queuedPlayer("latecomer", 5200, 20*time.Minute)))
	candidates := BestLineups(q, scoreTestNow)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Len(t, c.Players, LineupSize)

	expectedTotal, _ := Score(c.Players, scoreTestNow)
	assert.InDelta(t, expectedTotal, c.Score, 1e-9)
	assert.Greater(t, c.Score, ScoreThreshold)
}

func TestBestLineupsDeduplicates(t *testing.T) {
	// With exactly twelve interchangeable players every anchor converges to
	// the same set, so only one candidate survives.
	q := filledQueue(t, LineupSize, func(i int) int { return 5000 }, 20*time.Minute)
	candidates := BestLineups(q, scoreTestNow)
	assert.Len(t, candidates, 1)
}

func TestBestLineupsPrefersTightRange(t *testing.T) {
	// Twelve clustered players plus one outlier: the outlier's own anchor
	// produces a worse lineup, and the best candidate excludes it.
	q := filledQueue(t, LineupSize, func(i int) int { return 5000 + i*20 }, 20*time.Minute)
	require.NoError(t, q.Add(queuedPlayer("outlier", 11000, 20*time.Minute)))

	candidates := BestLineups(q, scoreTestNow)
	require.NotEmpty(t, candidates)

	best := Best(candidates)
	require.NotNil(t, best)
	for _, p := range best.Players {
		assert.NotEqual(t, "outlier", p.Name)
	}
}

func TestBestLineupsKeepsGroupsTogether(t *testing.T) {
	q := filledQueue(t, LineupSize+2, func(i int) int { return 5000 + i*10 }, 20*time.Minute)
	require.NoError(t, q.Merge("player0", "player1"))
	require.NoError(t, q.Merge("player2", "player3"))

	for _, c := range BestLineups(q, scoreTestNow) {
		members := make(map[string]bool, len(c.Players))
		for _, p := range c.Players {
			members[p.Key()] = true
		}
		assert.Equal(t, members["player0"], members["player1"], "group split across lineup boundary")
		assert.Equal(t, members["player2"], members["player3"], "group split across lineup boundary")
	}
}

func TestBestReturnsHighestScore(t *testing.T) {
	candidates := []*Candidate{
		{Score: 1.1},
		{Score: 1.8},
		{Score: 1.4},
	}
	assert.Same(t, candidates[1], Best(candidates))
	assert.Nil(t, Best(nil))
}
