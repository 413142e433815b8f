package balance

import (
	"fmt"
	"testing"

	"github.com/badwolfdev/queuebot/internal/models"
	"github.com/badwolfdev/queuebot/internal/shuffle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineupWithMMRs(mmrs []int) []*models.Player {
	players := make([]*models.Player, len(mmrs))
	for i, mmr := range mmrs {
		players[i] = &models.Player{
			Name: fmt.Sprintf("Player #%d", i),
			MMR:  mmr,
			LR:   mmr,
		}
	}
	return players
}

func testShuffler() *shuffle.Shuffler {
	return shuffle.New(&shuffle.Config{Seed: 1})
}

func TestMakeTeamsFFA(t *testing.T) {
	lineup := lineupWithMMRs([]int{10, 20, 30, 40})
	teams := MakeTeams(lineup, models.FormatFFA, testShuffler())

	require.Len(t, teams, 4)
	for _, team := range teams {
		assert.Len(t, team, 1)
	}
	// Sorted descending by mmr.
	assert.Equal(t, 40, teams[0][0].MMR)
	assert.Equal(t, 10, teams[3][0].MMR)
}

func TestMakeTeamsChunked(t *testing.T) {
	lineup := lineupWithMMRs([]int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100, 110, 120})

	for _, tc := range []struct {
		format models.Format
		teams  int
		size   int
	}{
		{format: models.Format2v2, teams: 6, size: 2},
		{format: models.Format3v3, teams: 4, size: 3},
		{format: models.Format4v4, teams: 3, size: 4},
	} {
		t.Run(string(tc.format), func(t *testing.T) {
			teams := MakeTeams(lineup, tc.format, testShuffler())
			require.Len(t, teams, tc.teams)
			seen := make(map[string]bool)
			for _, team := range teams {
				assert.Len(t, team, tc.size)
				for _, p := range team {
					assert.False(t, seen[p.Name], "player assigned twice")
					seen[p.Name] = true
				}
			}
			for i := 1; i < len(teams); i++ {
				assert.GreaterOrEqual(t, averageMMR(teams[i-1]), averageMMR(teams[i]))
			}
		})
	}
}

func TestEvenSplitFourPlayers(t *testing.T) {
	lineup := lineupWithMMRs([]int{0, 100, 50, 45})
	teams := MakeTeams(lineup, models.Format6v6, testShuffler())
	require.Len(t, teams, 2)

	// The only balanced split pairs {0, 100} against {50, 45}.
	want := map[int]bool{0: true, 100: true}
	got := map[int]bool{teams[0][0].MMR: true, teams[0][1].MMR: true}
	if !got[0] {
		got = map[int]bool{teams[1][0].MMR: true, teams[1][1].MMR: true}
	}
	assert.Equal(t, want, got)
}

func TestEvenSplitTwelvePlayers(t *testing.T) {
	mmrs := []int{0, 100, 50, 55, 40, 30, 20, 10, 10, 20, 30, 40}
	lineup := lineupWithMMRs(mmrs)

	teams := MakeTeams(lineup, models.Format6v6, testShuffler())
	require.Len(t, teams, 2)
	require.Len(t, teams[0], 6)
	require.Len(t, teams[1], 6)

	diff := teamSum(teams[0]) - teamSum(teams[1])
	if diff < 0 {
		diff = -diff
	}
	assert.Equal(t, bruteForceMinDiff(t, mmrs), diff)
	assert.Equal(t, 5, diff)
}

// bruteForceMinDiff recomputes the minimal split difference independently of
// the implementation under test.
func bruteForceMinDiff(t *testing.T, mmrs []int) int {
	t.Helper()
	n := len(mmrs)
	total := 0
	for _, m := range mmrs {
		total += m
	}
	best := -1
	for mask := 0; mask < 1<<n; mask++ {
		bits, sum := 0, 0
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				bits++
				sum += mmrs[i]
			}
		}
		if bits != n/2 {
			continue
		}
		diff := total - 2*sum
		if diff < 0 {
			diff = -diff
		}
		if best == -1 || diff < best {
			best = diff
		}
	}
	return best
}

func teamSum(team []*models.Player) int {
	sum := 0
	for _, p := range team {
		sum += p.MMR
	}
	return sum
}

func TestHostOrder(t *testing.T) {
	lineup := lineupWithMMRs([]int{10, 20, 30, 40, 50, 60})
	lineup[1].CanHost = true
	lineup[3].CanHost = true
	lineup[4].CanHost = true

	hosts := HostOrder(lineup, testShuffler())
	require.Len(t, hosts, 3)
	for _, h := range hosts {
		assert.True(t, h.CanHost)
	}
}

func TestHostOrderEmpty(t *testing.T) {
	lineup := lineupWithMMRs([]int{10, 20})
	assert.Empty(t, HostOrder(lineup, testShuffler()))
}
