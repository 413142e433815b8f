package models

import (
	"time"

	"github.com/badwolfdev/queuebot/internal/common/queuekey"
)

// Player represents one queued player. Identity fields (Name, DiscordID) are
// immutable after creation; rating fields, flags, and timestamps are updated
// in place by the single orchestrator writer.
type Player struct {
	// Name is the display name the player queued under
	Name string

	// DiscordID is the stable numeric identity of the player
	DiscordID int64

	// MMR is the primary skill rating used for lineup balance
	MMR int

	// LR is the secondary ladder rating, shown in queue listings
	LR int

	// TimeQueued is when the player entered the queue
	TimeQueued time.Time

	// CanHost is set when the player offered to host
	CanHost bool

	// DropWarned is set once an inactivity warning has been sent
	DropWarned bool

	// QueueChannelID is the channel the player queued from
	QueueChannelID string

	// LastActive is the player's most recent observed activity
	LastActive time.Time
}

// Key returns the normalized queue key for the player. Two players whose
// names normalize to the same key cannot coexist in one queue.
func (p *Player) Key() string {
	return queuekey.Normalize(p.Name)
}

// Rating is an externally supplied (mmr, lr) pair for one player on one ladder
type Rating struct {
	MMR int
	LR  int
}
