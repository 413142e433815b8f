// Package queue holds the waiting players for one ladder, grouped by
// mutual-queue association. The queue is small (tens of players), so lookups
// are linear scans over the groups.
package queue

import (
	"sort"

	"github.com/badwolfdev/queuebot/internal/models"
)

// DefaultGroupCap is the historical friend-group limit
const DefaultGroupCap = 2

// Config holds configuration for a queue
type Config struct {
	// GroupCap is the maximum players per group. Defaults to DefaultGroupCap.
	GroupCap int
}

// Queue is an ordered collection of groups. Empty groups are pruned
// immediately after any removal.
type Queue struct {
	groupCap int
	groups   []*Group
}

// New creates an empty queue
func New(cfg *Config) *Queue {
	groupCap := DefaultGroupCap
	if cfg != nil && cfg.GroupCap > 0 {
		groupCap = cfg.GroupCap
	}
	return &Queue{groupCap: groupCap}
}

// Add inserts a player as a new singleton group
func (q *Queue) Add(p *models.Player) error {
	if q.Group(p.Key()) != nil {
		return ErrDuplicateKey
	}
	g, err := NewGroup(q.groupCap, p)
	if err != nil {
		return err
	}
	q.groups = append(q.groups, g)
	return nil
}

// Remove deletes the player with the given key from whichever group holds it
// and returns the removed player. The group is pruned if now empty.
func (q *Queue) Remove(key string) (*models.Player, error) {
	for _, g := range q.groups {
		if p := g.Remove(key); p != nil {
			q.pruneEmpty()
			return p, nil
		}
	}
	return nil, ErrNotFound
}

// Splinter detaches the player with the given key into its own singleton
// group without leaving the queue. No-op if the player is already a
// singleton.
func (q *Queue) Splinter(key string) error {
	g := q.Group(key)
	if g == nil {
		return ErrNotFound
	}
	if g.Size() == 1 {
		return nil
	}

	p := g.Remove(key)
	single, err := NewGroup(q.groupCap, p)
	if err != nil {
		return err
	}
	q.groups = append(q.groups, single)
	q.pruneEmpty()
	return nil
}

// Merge moves the singleton holding friendKey into the group holding key
func (q *Queue) Merge(key, friendKey string) error {
	into := q.Group(key)
	if into == nil {
		return ErrNotFound
	}
	friend := q.Group(friendKey)
	if friend == nil {
		return ErrNotFound
	}
	if into == friend {
		return nil
	}
	if err := into.AddSingleton(friend); err != nil {
		return err
	}
	q.pruneEmpty()
	return nil
}

// Group returns the group containing the given key, or nil
func (q *Queue) Group(key string) *Group {
	for _, g := range q.groups {
		if g.Contains(key) {
			return g
		}
	}
	return nil
}

// Player returns the queued player with the given key, or nil
func (q *Queue) Player(key string) *models.Player {
	for _, g := range q.groups {
		if p := g.Get(key); p != nil {
			return p
		}
	}
	return nil
}

// Groups returns the queue's groups in order
func (q *Queue) Groups() []*Group {
	out := make([]*Group, len(q.groups))
	copy(out, q.groups)
	return out
}

// CountPlayers returns the total number of queued players
func (q *Queue) CountPlayers() int {
	total := 0
	for _, g := range q.groups {
		total += g.Size()
	}
	return total
}

// Players returns all queued players in queue order
func (q *Queue) Players() []*models.Player {
	out := make([]*models.Player, 0, q.CountPlayers())
	for _, g := range q.groups {
		out = append(out, g.players...)
	}
	return out
}

// Entry is one row of a queue listing
type Entry struct {
	// Player is the queued player
	Player *models.Player

	// GroupNumber is the display number of the player's multi-player group,
	// or 0 for singletons
	GroupNumber int
}

// Listing returns every queued player with its group number, sorted by time
// queued ascending. Multi-player groups are numbered in queue order starting
// at 1; singletons carry no number.
func (q *Queue) Listing() []Entry {
	entries := make([]Entry, 0, q.CountPlayers())
	groupNumber := 0
	for _, g := range q.groups {
		number := 0
		if g.Size() > 1 {
			groupNumber++
			number = groupNumber
		}
		for _, p := range g.players {
			entries = append(entries, Entry{Player: p, GroupNumber: number})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Player.TimeQueued.Before(entries[j].Player.TimeQueued)
	})
	return entries
}

// Snapshot returns the queue contents as plain player groups for persistence
func (q *Queue) Snapshot() [][]*models.Player {
	out := make([][]*models.Player, 0, len(q.groups))
	for _, g := range q.groups {
		out = append(out, g.Players())
	}
	return out
}

// Restore replaces the queue contents from a snapshot
func (q *Queue) Restore(groups [][]*models.Player) error {
	restored := make([]*Group, 0, len(groups))
	for _, players := range groups {
		g, err := NewGroup(q.groupCap, players...)
		if err != nil {
			return err
		}
		restored = append(restored, g)
	}
	q.groups = restored
	q.pruneEmpty()
	return nil
}

func (q *Queue) pruneEmpty() {
	kept := q.groups[:0]
	for _, g := range q.groups {
		if g.Size() > 0 {
			kept = append(kept, g)
		}
	}
	q.groups = kept
}
