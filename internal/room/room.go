// Package room owns one formed lineup's lifecycle from formation through
// expiration. A room is mutated only by the orchestrator's control loop
// (single-writer); the voting poll it holds does its own locking.
package room

import (
	"errors"
	"time"

	"github.com/badwolfdev/queuebot/internal/models"
	"github.com/badwolfdev/queuebot/internal/voting"
)

const (
	// Expiration is how long players keep access to a fresh room
	Expiration = 5 * time.Minute

	// WarnTime is how close to expiry the one-shot warning fires, and the
	// window inside which an extension is allowed
	WarnTime = 3 * time.Minute

	// ExtensionTime is added to the expiry by a granted extension
	ExtensionTime = 5 * time.Minute

	// MaxAccessTime is the hard cap on total access, measured from the
	// room's start. The configured extension nearly always exceeds it on a
	// single use; that is the intended hard cap.
	MaxAccessTime = 6 * time.Minute
)

// Define errors
var (
	ErrNotExpiringSoon   = errors.New("room is not expiring soon")
	ErrMaxAccessExceeded = errors.New("extension would exceed the maximum room access time")
)

// Room is the live lifecycle object for one formed lineup
type Room struct {
	id               string
	players          []*models.Player
	ladder           models.Ladder
	channelID        string
	startTime        time.Time
	expirationTime   time.Time
	expirationWarned bool

	votes         map[models.Format][]string
	winningFormat models.Format
	teams         [][]*models.Player
	hostOrder     string

	visibilityGranted bool
	voteFinished      bool
	finished          bool

	status models.RoomStatus
	poll   *voting.Poll
}

// Config holds the configuration for a new room
type Config struct {
	// ID is the room's unique identifier
	ID string

	// Players is the finalized lineup; the room keeps its own copy
	Players []*models.Player

	// Ladder is the pool the lineup was drawn from
	Ladder models.Ladder

	// Now is the formation time
	Now time.Time
}

// New creates a room in the Created state with a fresh expiration window
func New(cfg *Config) (*Room, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.ID == "" {
		return nil, errors.New("room ID cannot be empty")
	}
	if len(cfg.Players) == 0 {
		return nil, errors.New("room players cannot be empty")
	}

	players := make([]*models.Player, len(cfg.Players))
	copy(players, cfg.Players)

	return &Room{
		id:             cfg.ID,
		players:        players,
		ladder:         cfg.Ladder,
		startTime:      cfg.Now,
		expirationTime: cfg.Now.Add(Expiration),
		votes:          make(map[models.Format][]string),
		status:         models.RoomStatusCreated,
	}, nil
}

// ID returns the room's identifier
func (r *Room) ID() string { return r.id }

// Players returns the room's lineup
func (r *Room) Players() []*models.Player {
	out := make([]*models.Player, len(r.players))
	copy(out, r.players)
	return out
}

// Ladder returns the room's ladder type
func (r *Room) Ladder() models.Ladder { return r.ladder }

// ChannelID returns the bound room channel, empty until one is obtained
func (r *Room) ChannelID() string { return r.channelID }

// Status returns the room's lifecycle state
func (r *Room) Status() models.RoomStatus { return r.status }

// WinningFormat returns the elected format, empty while voting is open
func (r *Room) WinningFormat() models.Format { return r.winningFormat }

// Teams returns the assigned team split
func (r *Room) Teams() [][]*models.Player { return r.teams }

// HostOrder returns the rendered host serving order
func (r *Room) HostOrder() string { return r.hostOrder }

// VisibilityGranted reports whether players were granted channel access
func (r *Room) VisibilityGranted() bool { return r.visibilityGranted }

// VoteFinished reports whether the format vote completed
func (r *Room) VoteFinished() bool { return r.voteFinished }

// Finished reports whether the room was torn down
func (r *Room) Finished() bool { return r.finished }

// Poll returns the open voting poll, or nil
func (r *Room) Poll() *voting.Poll { return r.poll }

// Member reports whether the given queue key belongs to the lineup
func (r *Room) Member(key string) bool {
	for _, p := range r.players {
		if p.Key() == key {
			return true
		}
	}
	return false
}

// MemberKeys returns the queue keys of the lineup
func (r *Room) MemberKeys() []string {
	keys := make([]string, len(r.players))
	for i, p := range r.players {
		keys[i] = p.Key()
	}
	return keys
}

// AwaitChannel marks the room as waiting for a free room channel
func (r *Room) AwaitChannel() {
	r.status = models.RoomStatusAwaitingChannel
}

// Abort moves the room to a terminal aborted state. There is no retry; the
// room is discarded and its players are not re-queued.
func (r *Room) Abort(status models.RoomStatus) {
	r.status = status
	r.finished = true
}

// AttachChannel binds the room to its channel
func (r *Room) AttachChannel(channelID string) {
	r.channelID = channelID
}

// MarkVisibilityGranted records that the lineup can see the room channel.
// Idempotent, so a recovery resume cannot double-grant.
func (r *Room) MarkVisibilityGranted() {
	if r.visibilityGranted {
		return
	}
	r.visibilityGranted = true
	r.status = models.RoomStatusVisibilityGranted
}

// OpenVoting attaches the room's poll and moves to VotingOpen
func (r *Room) OpenVoting(poll *voting.Poll) {
	r.poll = poll
	r.status = models.RoomStatusVotingOpen
}

// FinishVote stores the vote outcome and the resulting teams and host order.
// A second finish (e.g. a re-opened vote racing a stale callback) is dropped.
func (r *Room) FinishVote(winner models.Format, votes map[models.Format][]string, teams [][]*models.Player, hostOrder string) bool {
	if r.voteFinished {
		return false
	}
	r.winningFormat = winner
	r.votes = votes
	r.teams = teams
	r.hostOrder = hostOrder
	r.voteFinished = true
	r.poll = nil
	r.status = models.RoomStatusTeamsAssigned
	return true
}

// Activate moves a room with assigned teams into its live phase
func (r *Room) Activate() {
	r.status = models.RoomStatusActive
}

// ExpiresSoon reports whether the room is within WarnTime of expiry
func (r *Room) ExpiresSoon(now time.Time) bool {
	return !now.Add(WarnTime).Before(r.expirationTime)
}

// IsExpired reports whether the room's access window has lapsed
func (r *Room) IsExpired(now time.Time) bool {
	return now.After(r.expirationTime)
}

// MinutesToExpiration returns the whole minutes until expiry
func (r *Room) MinutesToExpiration(now time.Time) int {
	return int(r.expirationTime.Sub(now).Minutes())
}

// Extend pushes the expiry out by ExtensionTime. Allowed only inside the
// warning window and only while total access stays within MaxAccessTime.
func (r *Room) Extend(now time.Time) error {
	if !r.ExpiresSoon(now) {
		return ErrNotExpiringSoon
	}
	if r.expirationTime.Add(ExtensionTime).After(r.startTime.Add(MaxAccessTime)) {
		return ErrMaxAccessExceeded
	}
	r.expirationTime = r.expirationTime.Add(ExtensionTime)
	r.expirationWarned = false
	return nil
}

// ShouldWarnExpiration reports whether the one-shot expiry warning is due
func (r *Room) ShouldWarnExpiration(now time.Time) bool {
	return !r.expirationWarned && r.ExpiresSoon(now)
}

// MarkExpirationWarned records that the warning was sent
func (r *Room) MarkExpirationWarned() {
	r.expirationWarned = true
	if r.status == models.RoomStatusActive {
		r.status = models.RoomStatusExpirySoonWarned
	}
}

// Expire marks a lapsed room pending teardown
func (r *Room) Expire() {
	r.status = models.RoomStatusExpired
}

// Close tears the room down. Idempotent.
func (r *Room) Close() {
	if r.finished {
		return
	}
	r.finished = true
	r.status = models.RoomStatusClosed
}

// NeedsRecovery reports whether a restored room must be resumed, and from
// which point: a room that never got visibility restarts from channel
// acquisition, one that got visibility but never finished its vote restarts
// from voting.
func (r *Room) NeedsRecovery() bool {
	return !r.finished && !r.voteFinished
}

// State captures the room as its serializable form
func (r *Room) State() *models.RoomState {
	return &models.RoomState{
		ID:                r.id,
		Players:           r.Players(),
		Ladder:            r.ladder,
		ChannelID:         r.channelID,
		StartTime:         r.startTime,
		ExpirationTime:    r.expirationTime,
		ExpirationWarned:  r.expirationWarned,
		Votes:             r.votes,
		WinningFormat:     r.winningFormat,
		Teams:             r.teams,
		HostOrder:         r.hostOrder,
		VisibilityGranted: r.visibilityGranted,
		VoteFinished:      r.voteFinished,
		Finished:          r.finished,
		Status:            r.status,
	}
}

// Restore rebuilds a room from its serialized form. The returned room holds
// no poll; the orchestrator re-opens voting when recovery requires it.
func Restore(state *models.RoomState) (*Room, error) {
	if state == nil {
		return nil, errors.New("state cannot be nil")
	}
	if state.ID == "" || len(state.Players) == 0 {
		return nil, errors.New("state is missing identity fields")
	}

	r := &Room{
		id:                state.ID,
		players:           state.Players,
		ladder:            state.Ladder,
		channelID:         state.ChannelID,
		startTime:         state.StartTime,
		expirationTime:    state.ExpirationTime,
		expirationWarned:  state.ExpirationWarned,
		votes:             state.Votes,
		winningFormat:     state.WinningFormat,
		teams:             state.Teams,
		hostOrder:         state.HostOrder,
		visibilityGranted: state.VisibilityGranted,
		voteFinished:      state.VoteFinished,
		finished:          state.Finished,
		status:            state.Status,
	}
	if r.votes == nil {
		r.votes = make(map[models.Format][]string)
	}
	return r, nil
}
