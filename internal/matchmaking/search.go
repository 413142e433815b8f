package matchmaking

import (
	"sort"
	"strings"
	"time"

	"github.com/badwolfdev/queuebot/internal/models"
	"github.com/badwolfdev/queuebot/internal/queue"
)

// Candidate is one proposed lineup with its score
type Candidate struct {
	// Players is the proposed lineup, exactly LineupSize players
	Players []*models.Player

	// Score is the lineup's total score
	Score float64

	// Breakdown holds the score components
	Breakdown Breakdown
}

// BestLineups builds one greedy candidate lineup per anchor group and returns
// the deduplicated set. Groups are atomic: a multi-player group is either
// wholly in a candidate or wholly out. Returns nil when fewer than LineupSize
// players are queued.
func BestLineups(q *queue.Queue, now time.Time) []*Candidate {
	if q.CountPlayers() < LineupSize {
		return nil
	}

	groups := q.Groups()
	var candidates []*Candidate
	seen := make(map[string]bool)

	for anchor := range groups {
		players := buildFromAnchor(groups, anchor, now)
		if players == nil {
			continue
		}

		id := lineupIdentity(players)
		if seen[id] {
			continue
		}
		seen[id] = true

		total, breakdown := Score(players, now)
		candidates = append(candidates, &Candidate{
			Players:   players,
			Score:     total,
			Breakdown: breakdown,
		})
	}

	return candidates
}

// Best returns the highest scoring candidate, or nil
func Best(candidates []*Candidate) *Candidate {
	var best *Candidate
	for _, c := range candidates {
		if best == nil || c.Score > best.Score {
			best = c
		}
	}
	return best
}

// buildFromAnchor grows a lineup from one anchor group by repeatedly adding
// the remaining group whose inclusion scores highest, first encountered
// winning ties. Fails (returns nil) if no remaining group fits before the
// lineup reaches LineupSize.
func buildFromAnchor(groups []*queue.Group, anchor int, now time.Time) []*models.Player {
	lineup := append([]*models.Player(nil), groups[anchor].Players()...)
	if len(lineup) > LineupSize {
		return nil
	}

	remaining := make([]*queue.Group, 0, len(groups)-1)
	for i, g := range groups {
		if i != anchor {
			remaining = append(remaining, g)
		}
	}

	for len(lineup) < LineupSize {
		bestIndex := -1
		bestScore := 0.0
		for i, g := range remaining {
			if len(lineup)+g.Size() > LineupSize {
				continue
			}
			score, _ := Score(append(lineup, g.Players()...), now)
			if bestIndex == -1 || score > bestScore {
				bestIndex = i
				bestScore = score
			}
		}
		if bestIndex == -1 {
			return nil
		}

		lineup = append(lineup, remaining[bestIndex].Players()...)
		remaining = append(remaining[:bestIndex], remaining[bestIndex+1:]...)
	}

	return lineup
}

// lineupIdentity canonicalizes a lineup by its sorted member keys so that two
// anchors converging on the same player set collapse to one candidate.
func lineupIdentity(players []*models.Player) string {
	keys := make([]string, len(players))
	for i, p := range players {
		keys[i] = p.Key()
	}
	sort.Strings(keys)
	return strings.Join(keys, "|")
}
