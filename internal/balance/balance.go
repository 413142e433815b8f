// Package balance splits a finalized lineup into teams for the elected
// format and produces the host serving order.
package balance

import (
	"sort"

	"github.com/badwolfdev/queuebot/internal/matchmaking"
	"github.com/badwolfdev/queuebot/internal/models"
	"github.com/badwolfdev/queuebot/internal/shuffle"
)

// MakeTeams splits the lineup according to the winning format. FFA makes
// every player a singleton team. Fixed-chunk formats shuffle and slice with
// no skill balancing. 6v6 shuffles and then exhaustively picks the half-size
// split minimizing the clamped-mmr sum difference; the lineup is small enough
// (C(12,6) = 924) that brute force is fine. Teams come back sorted descending
// by average mmr.
func MakeTeams(lineup []*models.Player, format models.Format, sh *shuffle.Shuffler) [][]*models.Player {
	players := append([]*models.Player(nil), lineup...)
	sh.Shuffle(len(players), func(i, j int) { players[i], players[j] = players[j], players[i] })

	var teams [][]*models.Player
	switch {
	case format == models.Format6v6:
		teams = evenSplit(players)
	case format.TeamSize() > 0:
		size := format.TeamSize()
		for i := 0; i < len(players); i += size {
			end := i + size
			if end > len(players) {
				end = len(players)
			}
			teams = append(teams, players[i:end])
		}
	default: // FFA
		for _, p := range players {
			teams = append(teams, []*models.Player{p})
		}
	}

	sort.SliceStable(teams, func(i, j int) bool {
		return averageMMR(teams[i]) > averageMMR(teams[j])
	})
	return teams
}

// evenSplit enumerates every half-size combination and keeps the one whose
// two sides have the closest clamped-mmr sums.
func evenSplit(players []*models.Player) [][]*models.Player {
	half := len(players) / 2

	var bestMask uint
	bestDiff := -1
	total := 0
	for _, p := range players {
		total += matchmaking.ClampMMR(p.MMR)
	}

	for mask := uint(0); mask < 1<<uint(len(players)); mask++ {
		if popcount(mask) != half {
			continue
		}
		sum := 0
		for i, p := range players {
			if mask&(1<<uint(i)) != 0 {
				sum += matchmaking.ClampMMR(p.MMR)
			}
		}
		diff := total - 2*sum
		if diff < 0 {
			diff = -diff
		}
		if bestDiff == -1 || diff < bestDiff {
			bestDiff = diff
			bestMask = mask
		}
	}

	teamA := make([]*models.Player, 0, half)
	teamB := make([]*models.Player, 0, len(players)-half)
	for i, p := range players {
		if bestMask&(1<<uint(i)) != 0 {
			teamA = append(teamA, p)
		} else {
			teamB = append(teamB, p)
		}
	}
	return [][]*models.Player{teamA, teamB}
}

func popcount(mask uint) int {
	count := 0
	for mask != 0 {
		count += int(mask & 1)
		mask >>= 1
	}
	return count
}

// HostOrder returns the lineup's willing hosts in a uniformly random serving
// order. Empty when no one queued as a host.
func HostOrder(lineup []*models.Player, sh *shuffle.Shuffler) []*models.Player {
	var hosts []*models.Player
	for _, p := range lineup {
		if p.CanHost {
			hosts = append(hosts, p)
		}
	}
	sh.Shuffle(len(hosts), func(i, j int) { hosts[i], hosts[j] = hosts[j], hosts[i] })
	return hosts
}

func averageMMR(team []*models.Player) float64 {
	sum := 0
	for _, p := range team {
		sum += p.MMR
	}
	return float64(sum) / float64(len(team))
}
