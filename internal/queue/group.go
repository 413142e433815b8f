package queue

import (
	"github.com/badwolfdev/queuebot/internal/models"
)

// Group is an ordered, size-capped set of players who queue together and must
// land in the same lineup. Membership is keyed by normalized queue key, not by
// player identity.
type Group struct {
	cap     int
	players []*models.Player
}

// NewGroup creates a group with the given capacity and initial members
func NewGroup(cap int, players ...*models.Player) (*Group, error) {
	if len(players) > cap {
		return nil, ErrTooManyPlayers
	}

	g := &Group{
		cap:     cap,
		players: make([]*models.Player, 0, cap),
	}
	g.players = append(g.players, players...)
	return g, nil
}

// Size returns the number of players in the group
func (g *Group) Size() int {
	return len(g.players)
}

// Players returns the group's members in order
func (g *Group) Players() []*models.Player {
	out := make([]*models.Player, len(g.players))
	copy(out, g.players)
	return out
}

// Contains reports whether a player with the given queue key is in the group
func (g *Group) Contains(key string) bool {
	return g.Get(key) != nil
}

// Get returns the member with the given queue key, or nil
func (g *Group) Get(key string) *models.Player {
	for _, p := range g.players {
		if p.Key() == key {
			return p
		}
	}
	return nil
}

// Add appends a player to the group
func (g *Group) Add(p *models.Player) error {
	if len(g.players)+1 > g.cap {
		return ErrTooManyPlayers
	}
	g.players = append(g.players, p)
	return nil
}

// AddSingleton merges another group into this one. The other group must hold
// exactly one player; it is emptied on success. This is how "queue with a
// friend" combines two waiting singletons.
func (g *Group) AddSingleton(other *Group) error {
	if other.Size() != 1 {
		return ErrGroupCombination
	}
	if len(g.players)+1 > g.cap {
		return ErrTooManyPlayers
	}
	g.players = append(g.players, other.players[0])
	other.players = other.players[:0]
	return nil
}

// Remove deletes the member with the given queue key and returns it, or nil
// if no member matched.
func (g *Group) Remove(key string) *models.Player {
	for i, p := range g.players {
		if p.Key() == key {
			g.players = append(g.players[:i], g.players[i+1:]...)
			return p
		}
	}
	return nil
}
