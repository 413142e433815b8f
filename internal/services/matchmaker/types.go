package matchmaker

import (
	"time"

	"github.com/badwolfdev/queuebot/internal/models"
	"github.com/badwolfdev/queuebot/internal/queue"
)

const (
	// DefaultTickInterval is how often the control loop runs its routines
	DefaultTickInterval = time.Minute

	// DefaultRatingPullInterval is how often the ladder tables are refreshed
	DefaultRatingPullInterval = 30 * time.Minute

	// DefaultWarnDropTime is the inactivity span before a drop warning
	DefaultWarnDropTime = 30 * time.Minute

	// DefaultAutoDropTime is the inactivity span before a warned player is
	// dropped
	DefaultAutoDropTime = 45 * time.Minute
)

// Config holds configuration for the matchmaker service
type Config struct {
	// TickInterval between control-loop routine runs. Defaults to
	// DefaultTickInterval.
	TickInterval time.Duration

	// RatingPullInterval between ladder table refreshes. Defaults to
	// DefaultRatingPullInterval.
	RatingPullInterval time.Duration

	// WarnDropTime of inactivity before a warning. Defaults to
	// DefaultWarnDropTime.
	WarnDropTime time.Duration

	// AutoDropTime of inactivity before a warned player is dropped.
	// Defaults to DefaultAutoDropTime.
	AutoDropTime time.Duration

	// VoteTimeout for room format polls. Defaults to voting.DefaultTimeout.
	VoteTimeout time.Duration

	// GroupCap for friend groups. Defaults to queue.DefaultGroupCap.
	GroupCap int
}

// JoinQueueInput holds the parameters for joining a queue
type JoinQueueInput struct {
	// Ladder to queue for
	Ladder models.Ladder

	// PlayerName is the display name to queue under
	PlayerName string

	// DiscordID of the joining player
	DiscordID int64

	// CanHost is whether the player offered to host
	CanHost bool

	// ChannelID the join was issued from
	ChannelID string
}

// JoinQueueOutput holds the result of joining a queue
type JoinQueueOutput struct {
	// Player as queued
	Player *models.Player

	// AlreadyQueued is set when the player was queued before the call
	AlreadyQueued bool

	// HostChanged is set when an already-queued player's host flag flipped
	HostChanged bool
}

// JoinQueueWithFriendInput holds the parameters for merging two queued
// singletons
type JoinQueueWithFriendInput struct {
	// Ladder both players are queued on
	Ladder models.Ladder

	// PlayerName of the group owner
	PlayerName string

	// FriendName of the singleton to pull in
	FriendName string
}

// JoinQueueWithFriendOutput holds the result of a friend merge
type JoinQueueWithFriendOutput struct {
	// GroupSize after the merge
	GroupSize int
}

// LeaveQueueInput holds the parameters for leaving a queue
type LeaveQueueInput struct {
	// Ladder to leave
	Ladder models.Ladder

	// PlayerName to remove
	PlayerName string
}

// LeaveQueueOutput holds the result of leaving a queue
type LeaveQueueOutput struct {
	// Player that was removed
	Player *models.Player
}

// ForceRemoveInput holds the parameters for a moderator removal
type ForceRemoveInput struct {
	// Ladder to remove from
	Ladder models.Ladder

	// PlayerName to remove
	PlayerName string
}

// ForceRemoveOutput holds the result of a moderator removal
type ForceRemoveOutput struct {
	// Player that was removed
	Player *models.Player
}

// ListQueueInput holds the parameters for listing a queue
type ListQueueInput struct {
	// Ladder to list
	Ladder models.Ladder
}

// ListQueueOutput holds a queue listing
type ListQueueOutput struct {
	// Entries sorted by time queued ascending, with group numbers
	Entries []queue.Entry
}

// CastVoteInput holds the parameters for a format vote
type CastVoteInput struct {
	// RoomID of the room being voted in
	RoomID string

	// VoterKey is the voter's normalized queue key
	VoterKey string

	// Option voted for
	Option models.Format
}

// CastVoteOutput holds the result of a format vote
type CastVoteOutput struct{}

// ExtendRoomInput holds the parameters for extending a room
type ExtendRoomInput struct {
	// RoomID of the room to extend
	RoomID string
}

// ExtendRoomOutput holds the result of an extension request. It is returned
// alongside room.ErrNotExpiringSoon so callers can report the remaining time.
type ExtendRoomOutput struct {
	// MinutesLeft until the room expires after the call
	MinutesLeft int
}

// UpdateActivityInput holds the parameters for an activity refresh
type UpdateActivityInput struct {
	// PlayerName whose activity was observed
	PlayerName string

	// ChannelID the activity happened in
	ChannelID string
}

// UpdateActivityOutput holds the result of an activity refresh
type UpdateActivityOutput struct{}

// ResolveQueueChannelInput holds the channel to resolve
type ResolveQueueChannelInput struct {
	// ChannelID to look up
	ChannelID string
}

// ResolveQueueChannelOutput holds the ladder a channel queues for
type ResolveQueueChannelOutput struct {
	// Ladder the channel queues for
	Ladder models.Ladder

	// Found is false when the channel is not a queue channel
	Found bool
}

// ResolveRoomChannelInput holds the channel to resolve
type ResolveRoomChannelInput struct {
	// ChannelID to look up
	ChannelID string
}

// ResolveRoomChannelOutput holds the room bound to a channel
type ResolveRoomChannelOutput struct {
	// RoomID of the active room bound to the channel
	RoomID string
}

// AddQueueChannelInput holds the parameters for monitoring a channel
type AddQueueChannelInput struct {
	// Ladder the channel will queue for
	Ladder models.Ladder

	// ChannelID to monitor
	ChannelID string
}

// AddQueueChannelOutput holds the result of monitoring a channel
type AddQueueChannelOutput struct{}

// RemoveQueueChannelInput holds the parameters for unmonitoring a channel
type RemoveQueueChannelInput struct {
	// ChannelID to stop monitoring
	ChannelID string
}

// RemoveQueueChannelOutput holds the result of unmonitoring a channel
type RemoveQueueChannelOutput struct {
	// Ladder the channel used to queue for
	Ladder models.Ladder
}

// QueueChannelsOutput holds the monitored channels per ladder
type QueueChannelsOutput struct {
	// Channels per ladder
	Channels map[models.Ladder][]string
}

// SetCategoryInput holds the parameters for a category binding
type SetCategoryInput struct {
	// Ladder to bind
	Ladder models.Ladder

	// CategoryID room channels will be drawn from
	CategoryID string
}

// SetCategoryOutput holds the result of a category binding
type SetCategoryOutput struct{}

// CategoriesOutput holds the category binding per ladder
type CategoriesOutput struct {
	// Categories per ladder, absent when not set
	Categories map[models.Ladder]string
}

// DebugReportOutput holds the candidate-lineup reports
type DebugReportOutput struct {
	// Reports is one rendered report per ladder, in models.Ladders order
	Reports []string
}
