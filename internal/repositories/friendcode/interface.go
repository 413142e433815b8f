package friendcode

import (
	"context"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/badwolfdev/queuebot/internal/repositories/friendcode Repository

// Repository defines the interface for friend-code persistence
type Repository interface {
	// Set stores a player's friend code
	Set(ctx context.Context, discordID int64, fc string) error

	// Get retrieves a player's friend code
	Get(ctx context.Context, discordID int64) (string, error)

	// Remove deletes a player's friend code
	Remove(ctx context.Context, discordID int64) error
}
