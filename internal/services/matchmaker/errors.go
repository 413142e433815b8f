package matchmaker

import "errors"

// Define errors
var (
	ErrNoRating                = errors.New("no rating found for player")
	ErrNotInQueue              = errors.New("player is not in the queue")
	ErrFriendNotInQueue        = errors.New("friend is not in the queue")
	ErrRoomNotFound            = errors.New("room not found")
	ErrVotingClosed            = errors.New("voting is not open for this room")
	ErrChannelAlreadyMonitored = errors.New("channel is already monitored for queueing")
	ErrChannelNotMonitored     = errors.New("channel is not monitored for queueing")
	ErrQueueingNotAllowed      = errors.New("queueing is not allowed in this channel")
)
