package matchmaker

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/badwolfdev/queuebot/internal/models"
	"github.com/badwolfdev/queuebot/internal/room"

	snapshotRepo "github.com/badwolfdev/queuebot/internal/repositories/snapshot"
)

// Save persists a point-in-time snapshot of all engine state. The capture
// happens on the control loop; the write happens off it.
func (s *service) Save(ctx context.Context) error {
	var snap *models.Snapshot
	if err := s.do(ctx, func() {
		snap = s.captureSnapshot()
	}); err != nil {
		return err
	}

	if err := s.snapshots.Save(ctx, &snapshotRepo.SaveInput{Snapshot: snap}); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// captureSnapshot builds the serializable state: queue channels, category
// bindings, both queues, and every unfinished room. Must run on the loop.
func (s *service) captureSnapshot() *models.Snapshot {
	snap := &models.Snapshot{
		QueueChannels: make(map[models.Ladder][]string),
		Categories:    make(map[models.Ladder]string),
		Queues:        make(map[models.Ladder][][]*models.Player),
	}
	for _, ladder := range models.Ladders() {
		snap.QueueChannels[ladder] = append([]string(nil), s.queueChannels[ladder]...)
		if categoryID := s.categories[ladder]; categoryID != "" {
			snap.Categories[ladder] = categoryID
		}
		snap.Queues[ladder] = s.queues[ladder].Snapshot()
	}
	for _, r := range s.rooms {
		if !r.Finished() {
			snap.Rooms = append(snap.Rooms, r.State())
		}
	}
	return snap
}

// Restore loads the last snapshot, replaces all engine state with it, and
// resumes every incomplete room. A missing snapshot is not an error. Resume
// is idempotent: a room already being recovered is not resumed again, and
// the per-room recovery flags decide where each resume restarts.
func (s *service) Restore(ctx context.Context) error {
	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		if errors.Is(err, snapshotRepo.ErrSnapshotNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	type resumption struct {
		roomID            string
		visibilityGranted bool
	}
	var resumptions []resumption

	if err := s.do(ctx, func() {
		for _, ladder := range models.Ladders() {
			s.queueChannels[ladder] = append([]string(nil), snap.QueueChannels[ladder]...)
			s.categories[ladder] = snap.Categories[ladder]
			if err := s.queues[ladder].Restore(snap.Queues[ladder]); err != nil {
				log.Printf("failed to restore %s queue: %v", ladder, err)
			}
		}

		s.rooms = nil
		for _, state := range snap.Rooms {
			r, err := room.Restore(state)
			if err != nil {
				log.Printf("failed to restore room %s: %v", state.ID, err)
				continue
			}
			if r.Finished() {
				continue
			}
			s.rooms = append(s.rooms, r)

			if !r.NeedsRecovery() {
				continue
			}
			if _, inFlight := s.recovering[r.ID()]; inFlight {
				continue
			}
			s.recovering[r.ID()] = struct{}{}
			resumptions = append(resumptions, resumption{
				roomID:            r.ID(),
				visibilityGranted: r.VisibilityGranted(),
			})
		}
	}); err != nil {
		return err
	}

	for _, res := range resumptions {
		if res.visibilityGranted {
			// Channel and visibility survived the restart; re-open voting
			// from scratch. Prior partial votes are not replayed.
			go s.openVoting(res.roomID)
		} else {
			go s.beginEvent(res.roomID)
		}
	}
	return nil
}
