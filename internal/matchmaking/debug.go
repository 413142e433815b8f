package matchmaking

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/badwolfdev/queuebot/internal/models"
)

// DebugReport renders the scored candidate set for one ladder as an operator
// report: every candidate with its score breakdown and its players sorted by
// mmr descending.
func DebugReport(ladder models.Ladder, candidates []*Candidate, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "For each group, the best lineup anchored on that group was computed, then duplicates were removed. %s results:\n", strings.ToUpper(string(ladder)))

	if len(candidates) == 0 {
		b.WriteString("None found\n")
		return b.String()
	}

	sorted := append([]*Candidate(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score < sorted[j].Score })

	for _, c := range sorted {
		b.WriteString(CandidateSummary(c, now))
	}
	return b.String()
}

// CandidateSummary renders one candidate's score breakdown and players
// sorted by mmr descending.
func CandidateSummary(c *Candidate, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Score: %.3f\n", c.Score)
	fmt.Fprintf(&b, "\tMMR Range: %d\n", c.Breakdown.MMRRange)
	fmt.Fprintf(&b, "\tMMR Range Score: %.3f\n", c.Breakdown.MMRRangeScore)
	fmt.Fprintf(&b, "\tAverage queue time: %.3f\n", c.Breakdown.AvgQueueMinutes)
	fmt.Fprintf(&b, "\tLineup Queue Time Score: %.3f\n", c.Breakdown.QueueTimeScore)
	fmt.Fprintf(&b, "\tAverage MMR: %.3f\n", c.Breakdown.AvgMMR)
	fmt.Fprintf(&b, "\tAverage MMR bonus score: %.3f\n", c.Breakdown.BonusScore)

	byMMR := append([]*models.Player(nil), c.Players...)
	sort.SliceStable(byMMR, func(i, j int) bool { return byMMR[i].MMR > byMMR[j].MMR })
	for _, p := range byMMR {
		fmt.Fprintf(&b, "\t\t%s\n", PlayerDebugLine(p, now))
	}
	return b.String()
}

// PlayerDebugLine renders one player row of a debug report
func PlayerDebugLine(p *models.Player, now time.Time) string {
	mmrStr := fmt.Sprintf("%d MMR", p.MMR)
	return fmt.Sprintf("%-15s | %9s | %-3d minutes queued", p.Name, mmrStr, int(now.Sub(p.TimeQueued).Minutes()))
}
