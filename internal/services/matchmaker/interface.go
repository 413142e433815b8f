package matchmaker

import (
	"context"

	"github.com/badwolfdev/queuebot/internal/models"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_gateway.go github.com/badwolfdev/queuebot/internal/services/matchmaker Gateway
//go:generate mockgen -package=mocks -destination=mocks/mock_rating.go github.com/badwolfdev/queuebot/internal/services/matchmaker RatingProvider

// Service defines the interface for matchmaking operations
type Service interface {
	// JoinQueue adds a player to a ladder queue, or toggles the host flag
	// when the player is already queued
	JoinQueue(ctx context.Context, input *JoinQueueInput) (*JoinQueueOutput, error)

	// JoinQueueWithFriend merges two waiting singletons into one group
	JoinQueueWithFriend(ctx context.Context, input *JoinQueueWithFriendInput) (*JoinQueueWithFriendOutput, error)

	// LeaveQueue removes a player from a ladder queue
	LeaveQueue(ctx context.Context, input *LeaveQueueInput) (*LeaveQueueOutput, error)

	// ForceRemove removes another player from a ladder queue
	ForceRemove(ctx context.Context, input *ForceRemoveInput) (*ForceRemoveOutput, error)

	// ListQueue returns the queued players for a ladder in display order
	ListQueue(ctx context.Context, input *ListQueueInput) (*ListQueueOutput, error)

	// CastVote records a format vote in a room's open poll
	CastVote(ctx context.Context, input *CastVoteInput) (*CastVoteOutput, error)

	// ExtendRoom pushes a room's expiry out by the extension time
	ExtendRoom(ctx context.Context, input *ExtendRoomInput) (*ExtendRoomOutput, error)

	// UpdateActivity refreshes a queued player's last-active timestamp
	UpdateActivity(ctx context.Context, input *UpdateActivityInput) (*UpdateActivityOutput, error)

	// ResolveQueueChannel maps a channel to the ladder it queues for
	ResolveQueueChannel(ctx context.Context, input *ResolveQueueChannelInput) (*ResolveQueueChannelOutput, error)

	// ResolveRoomChannel maps a channel to the active room bound to it
	ResolveRoomChannel(ctx context.Context, input *ResolveRoomChannelInput) (*ResolveRoomChannelOutput, error)

	// AddQueueChannel allows queueing in a channel for a ladder
	AddQueueChannel(ctx context.Context, input *AddQueueChannelInput) (*AddQueueChannelOutput, error)

	// RemoveQueueChannel disallows queueing in a channel
	RemoveQueueChannel(ctx context.Context, input *RemoveQueueChannelInput) (*RemoveQueueChannelOutput, error)

	// QueueChannels returns the monitored queue channels per ladder
	QueueChannels(ctx context.Context) (*QueueChannelsOutput, error)

	// SetCategory binds a ladder's room channels to a category
	SetCategory(ctx context.Context, input *SetCategoryInput) (*SetCategoryOutput, error)

	// Categories returns the category binding per ladder
	Categories(ctx context.Context) (*CategoriesOutput, error)

	// Save persists a point-in-time snapshot of all engine state
	Save(ctx context.Context) error

	// Restore loads the last snapshot and resumes any incomplete rooms
	Restore(ctx context.Context) error

	// DebugReport returns the scored candidate lineups for both ladders
	DebugReport(ctx context.Context) (*DebugReportOutput, error)

	// Run drives the control loop until the context is cancelled
	Run(ctx context.Context) error
}

// Gateway is the outbound chat-platform boundary
type Gateway interface {
	// SendMessage posts a message and returns its ID
	SendMessage(ctx context.Context, channelID, text string) (string, error)

	// EditMessage replaces the content of a previously sent message
	EditMessage(ctx context.Context, channelID, messageID, text string) error

	// GrantChannelVisibility makes a channel visible (or invisible) to the
	// given players
	GrantChannelVisibility(ctx context.Context, channelID string, playerIDs []int64, visible bool) error

	// FindFreeChannel returns a channel under the category that is not in
	// the busy list, or empty when none is free
	FindFreeChannel(ctx context.Context, categoryID string, busy []string) (string, error)
}

// RatingProvider supplies externally computed ladder ratings
type RatingProvider interface {
	// Refresh pulls the latest ladder table
	Refresh(ctx context.Context, ladder models.Ladder) error

	// GetRating returns the (mmr, lr) for a player name on a ladder
	GetRating(ctx context.Context, name string, ladder models.Ladder) (*models.Rating, error)
}
