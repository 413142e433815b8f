package queue

import "errors"

// Define errors
var (
	ErrDuplicateKey     = errors.New("player is already in the queue")
	ErrNotFound         = errors.New("player not found in queue")
	ErrTooManyPlayers   = errors.New("group is at maximum capacity")
	ErrGroupCombination = errors.New("only a singleton group can be merged into another group")
)
