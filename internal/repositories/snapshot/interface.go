package snapshot

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/badwolfdev/queuebot/internal/repositories/snapshot Repository

import (
	"context"

	"github.com/badwolfdev/queuebot/internal/models"
)

// Repository defines the interface for engine snapshot persistence
type Repository interface {
	// Save persists a point-in-time snapshot, replacing any previous one
	Save(ctx context.Context, input *SaveInput) error

	// Load retrieves the last saved snapshot
	Load(ctx context.Context) (*models.Snapshot, error)
}

// SaveInput holds the snapshot to persist
type SaveInput struct {
	Snapshot *models.Snapshot
}
