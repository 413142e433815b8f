// Package matchmaker is the orchestrator: it owns the ladder queues, the
// active room set, and every mutation of them. All state is confined to one
// control loop; public operations dispatch closures into the loop and chat
// I/O runs on fire-and-forget goroutines that report back the same way.
package matchmaker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/badwolfdev/queuebot/internal/common/clock"
	"github.com/badwolfdev/queuebot/internal/common/queuekey"
	"github.com/badwolfdev/queuebot/internal/common/uuid"
	"github.com/badwolfdev/queuebot/internal/matchmaking"
	"github.com/badwolfdev/queuebot/internal/models"
	"github.com/badwolfdev/queuebot/internal/queue"
	"github.com/badwolfdev/queuebot/internal/room"
	"github.com/badwolfdev/queuebot/internal/shuffle"
	"github.com/badwolfdev/queuebot/internal/voting"

	fcRepo "github.com/badwolfdev/queuebot/internal/repositories/friendcode"
	snapshotRepo "github.com/badwolfdev/queuebot/internal/repositories/snapshot"
)

// service implements the Service interface
type service struct {
	config      *Config
	gateway     Gateway
	ratings     RatingProvider
	snapshots   snapshotRepo.Repository
	friendCodes fcRepo.Repository
	clock       clock.Clock
	uuider      uuid.UUID
	shuffler    *shuffle.Shuffler

	tasks chan task

	// Owned by the control loop; never touched off it
	queues        map[models.Ladder]*queue.Queue
	queueChannels map[models.Ladder][]string
	categories    map[models.Ladder]string
	rooms         []*room.Room
	recovering    map[string]struct{}
}

// task is one closure awaiting its turn on the control loop
type task struct {
	fn   func()
	done chan struct{}
}

// NewService creates a new matchmaker service
func NewService(cfg *Config, gateway Gateway, ratings RatingProvider, snapshots snapshotRepo.Repository, friendCodes fcRepo.Repository, clk clock.Clock, uuider uuid.UUID, shuffler *shuffle.Shuffler) (*service, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.RatingPullInterval <= 0 {
		cfg.RatingPullInterval = DefaultRatingPullInterval
	}
	if cfg.WarnDropTime <= 0 {
		cfg.WarnDropTime = DefaultWarnDropTime
	}
	if cfg.AutoDropTime <= 0 {
		cfg.AutoDropTime = DefaultAutoDropTime
	}
	if cfg.VoteTimeout <= 0 {
		cfg.VoteTimeout = voting.DefaultTimeout
	}
	if cfg.GroupCap <= 0 {
		cfg.GroupCap = queue.DefaultGroupCap
	}

	if gateway == nil {
		return nil, errors.New("gateway cannot be nil")
	}
	if ratings == nil {
		return nil, errors.New("rating provider cannot be nil")
	}
	if snapshots == nil {
		return nil, errors.New("snapshot repository cannot be nil")
	}
	if friendCodes == nil {
		return nil, errors.New("friend code repository cannot be nil")
	}
	if clk == nil {
		clk = &clock.DefaultClock{}
	}
	if uuider == nil {
		uuider = uuid.New()
	}
	if shuffler == nil {
		shuffler = shuffle.New(nil)
	}

	queues := make(map[models.Ladder]*queue.Queue, len(models.Ladders()))
	for _, ladder := range models.Ladders() {
		queues[ladder] = queue.New(&queue.Config{GroupCap: cfg.GroupCap})
	}

	return &service{
		config:        cfg,
		gateway:       gateway,
		ratings:       ratings,
		snapshots:     snapshots,
		friendCodes:   friendCodes,
		clock:         clk,
		uuider:        uuider,
		shuffler:      shuffler,
		tasks:         make(chan task),
		queues:        queues,
		queueChannels: make(map[models.Ladder][]string),
		categories:    make(map[models.Ladder]string),
		recovering:    make(map[string]struct{}),
	}, nil
}

// Run drives the control loop until the context is cancelled. Dispatched
// operations block until Run is started.
func (s *service) Run(ctx context.Context) error {
	tick := time.NewTicker(s.config.TickInterval)
	defer tick.Stop()
	pull := time.NewTicker(s.config.RatingPullInterval)
	defer pull.Stop()

	go s.refreshRatings()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t := <-s.tasks:
			t.fn()
			close(t.done)
		case <-tick.C:
			s.runTick()
		case <-pull.C:
			go s.refreshRatings()
		}
	}
}

// do runs fn on the control loop and waits for it to complete
func (s *service) do(ctx context.Context, fn func()) error {
	t := task{fn: fn, done: make(chan struct{})}
	select {
	case s.tasks <- t:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// JoinQueue adds a player to a ladder queue. A player who is already queued
// gets their host flag toggled instead of a duplicate entry.
func (s *service) JoinQueue(ctx context.Context, input *JoinQueueInput) (*JoinQueueOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	// Rating lookup stays off the loop; it may touch the provider's cache
	playerRating, ratingErr := s.ratings.GetRating(ctx, input.PlayerName, input.Ladder)

	key := queuekey.Normalize(input.PlayerName)
	out := &JoinQueueOutput{}
	var opErr error
	err := s.do(ctx, func() {
		q := s.queues[input.Ladder]
		if existing := q.Player(key); existing != nil {
			out.AlreadyQueued = true
			out.Player = existing
			existing.LastActive = s.clock.Now()
			if existing.CanHost != input.CanHost {
				existing.CanHost = input.CanHost
				out.HostChanged = true
			}
			return
		}

		if ratingErr != nil {
			opErr = ErrNoRating
			return
		}

		now := s.clock.Now()
		p := &models.Player{
			Name:           input.PlayerName,
			DiscordID:      input.DiscordID,
			MMR:            playerRating.MMR,
			LR:             playerRating.LR,
			TimeQueued:     now,
			CanHost:        input.CanHost,
			QueueChannelID: input.ChannelID,
			LastActive:     now,
		}
		if err := q.Add(p); err != nil {
			opErr = err
			return
		}
		out.Player = p
	})
	if err != nil {
		return nil, err
	}
	if opErr != nil {
		return nil, opErr
	}
	return out, nil
}

// JoinQueueWithFriend merges the friend's waiting singleton into the
// player's group.
func (s *service) JoinQueueWithFriend(ctx context.Context, input *JoinQueueWithFriendInput) (*JoinQueueWithFriendOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	playerKey := queuekey.Normalize(input.PlayerName)
	friendKey := queuekey.Normalize(input.FriendName)
	out := &JoinQueueWithFriendOutput{}
	var opErr error
	err := s.do(ctx, func() {
		q := s.queues[input.Ladder]
		if q.Player(playerKey) == nil {
			opErr = ErrNotInQueue
			return
		}
		if q.Player(friendKey) == nil {
			opErr = ErrFriendNotInQueue
			return
		}
		if err := q.Merge(playerKey, friendKey); err != nil {
			opErr = err
			return
		}
		out.GroupSize = q.Group(playerKey).Size()
	})
	if err != nil {
		return nil, err
	}
	if opErr != nil {
		return nil, opErr
	}
	return out, nil
}

// LeaveQueue removes a player from a ladder queue
func (s *service) LeaveQueue(ctx context.Context, input *LeaveQueueInput) (*LeaveQueueOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	p, err := s.removePlayer(ctx, input.Ladder, input.PlayerName)
	if err != nil {
		return nil, err
	}
	return &LeaveQueueOutput{Player: p}, nil
}

// ForceRemove removes another player from a ladder queue
func (s *service) ForceRemove(ctx context.Context, input *ForceRemoveInput) (*ForceRemoveOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	p, err := s.removePlayer(ctx, input.Ladder, input.PlayerName)
	if err != nil {
		return nil, err
	}
	return &ForceRemoveOutput{Player: p}, nil
}

func (s *service) removePlayer(ctx context.Context, ladder models.Ladder, name string) (*models.Player, error) {
	key := queuekey.Normalize(name)
	var removed *models.Player
	var opErr error
	err := s.do(ctx, func() {
		p, err := s.queues[ladder].Remove(key)
		if err != nil {
			opErr = ErrNotInQueue
			return
		}
		removed = p
	})
	if err != nil {
		return nil, err
	}
	if opErr != nil {
		return nil, opErr
	}
	return removed, nil
}

// ListQueue returns the queued players for a ladder in display order
func (s *service) ListQueue(ctx context.Context, input *ListQueueInput) (*ListQueueOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	out := &ListQueueOutput{}
	err := s.do(ctx, func() {
		out.Entries = s.queues[input.Ladder].Listing()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CastVote records a format vote in a room's open poll. Votes from
// non-members are ignored by the poll.
func (s *service) CastVote(ctx context.Context, input *CastVoteInput) (*CastVoteOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	var opErr error
	err := s.do(ctx, func() {
		r := s.roomByID(input.RoomID)
		if r == nil || r.Finished() {
			opErr = ErrRoomNotFound
			return
		}
		poll := r.Poll()
		if poll == nil {
			opErr = ErrVotingClosed
			return
		}
		poll.CastVote(input.VoterKey, input.Option)
	})
	if err != nil {
		return nil, err
	}
	if opErr != nil {
		return nil, opErr
	}
	return &CastVoteOutput{}, nil
}

// ExtendRoom pushes a room's expiry out by the extension time. On
// room.ErrNotExpiringSoon the output still carries the remaining minutes.
func (s *service) ExtendRoom(ctx context.Context, input *ExtendRoomInput) (*ExtendRoomOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	out := &ExtendRoomOutput{}
	var opErr error
	err := s.do(ctx, func() {
		r := s.roomByID(input.RoomID)
		if r == nil || r.Finished() {
			opErr = ErrRoomNotFound
			return
		}
		now := s.clock.Now()
		opErr = r.Extend(now)
		out.MinutesLeft = r.MinutesToExpiration(now)
	})
	if err != nil {
		return nil, err
	}
	if opErr != nil {
		if errors.Is(opErr, room.ErrNotExpiringSoon) {
			return out, opErr
		}
		return nil, opErr
	}
	return out, nil
}

// UpdateActivity refreshes a queued player's last-active timestamp on every
// ladder the channel queues for.
func (s *service) UpdateActivity(ctx context.Context, input *UpdateActivityInput) (*UpdateActivityOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	key := queuekey.Normalize(input.PlayerName)
	err := s.do(ctx, func() {
		now := s.clock.Now()
		for _, ladder := range models.Ladders() {
			if !containsChannel(s.queueChannels[ladder], input.ChannelID) {
				continue
			}
			if p := s.queues[ladder].Player(key); p != nil {
				p.LastActive = now
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return &UpdateActivityOutput{}, nil
}

// ResolveQueueChannel maps a channel to the ladder it queues for
func (s *service) ResolveQueueChannel(ctx context.Context, input *ResolveQueueChannelInput) (*ResolveQueueChannelOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	out := &ResolveQueueChannelOutput{}
	err := s.do(ctx, func() {
		for _, ladder := range models.Ladders() {
			if containsChannel(s.queueChannels[ladder], input.ChannelID) {
				out.Ladder = ladder
				out.Found = true
				return
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ResolveRoomChannel maps a channel to the active room bound to it
func (s *service) ResolveRoomChannel(ctx context.Context, input *ResolveRoomChannelInput) (*ResolveRoomChannelOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	out := &ResolveRoomChannelOutput{}
	var opErr error
	err := s.do(ctx, func() {
		for _, r := range s.rooms {
			if !r.Finished() && r.ChannelID() != "" && r.ChannelID() == input.ChannelID {
				out.RoomID = r.ID()
				return
			}
		}
		opErr = ErrRoomNotFound
	})
	if err != nil {
		return nil, err
	}
	if opErr != nil {
		return nil, opErr
	}
	return out, nil
}

// AddQueueChannel allows queueing in a channel for a ladder
func (s *service) AddQueueChannel(ctx context.Context, input *AddQueueChannelInput) (*AddQueueChannelOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	var opErr error
	err := s.do(ctx, func() {
		for _, ladder := range models.Ladders() {
			if containsChannel(s.queueChannels[ladder], input.ChannelID) {
				opErr = ErrChannelAlreadyMonitored
				return
			}
		}
		s.queueChannels[input.Ladder] = append(s.queueChannels[input.Ladder], input.ChannelID)
	})
	if err != nil {
		return nil, err
	}
	if opErr != nil {
		return nil, opErr
	}
	return &AddQueueChannelOutput{}, nil
}

// RemoveQueueChannel disallows queueing in a channel
func (s *service) RemoveQueueChannel(ctx context.Context, input *RemoveQueueChannelInput) (*RemoveQueueChannelOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	out := &RemoveQueueChannelOutput{}
	var opErr error
	err := s.do(ctx, func() {
		for _, ladder := range models.Ladders() {
			channels := s.queueChannels[ladder]
			for i, ch := range channels {
				if ch == input.ChannelID {
					s.queueChannels[ladder] = append(channels[:i], channels[i+1:]...)
					out.Ladder = ladder
					return
				}
			}
		}
		opErr = ErrChannelNotMonitored
	})
	if err != nil {
		return nil, err
	}
	if opErr != nil {
		return nil, opErr
	}
	return out, nil
}

// QueueChannels returns the monitored queue channels per ladder
func (s *service) QueueChannels(ctx context.Context) (*QueueChannelsOutput, error) {
	out := &QueueChannelsOutput{Channels: make(map[models.Ladder][]string)}
	err := s.do(ctx, func() {
		for _, ladder := range models.Ladders() {
			out.Channels[ladder] = append([]string(nil), s.queueChannels[ladder]...)
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetCategory binds a ladder's room channels to a category
func (s *service) SetCategory(ctx context.Context, input *SetCategoryInput) (*SetCategoryOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	err := s.do(ctx, func() {
		s.categories[input.Ladder] = input.CategoryID
	})
	if err != nil {
		return nil, err
	}
	return &SetCategoryOutput{}, nil
}

// Categories returns the category binding per ladder
func (s *service) Categories(ctx context.Context) (*CategoriesOutput, error) {
	out := &CategoriesOutput{Categories: make(map[models.Ladder]string)}
	err := s.do(ctx, func() {
		for ladder, categoryID := range s.categories {
			if categoryID != "" {
				out.Categories[ladder] = categoryID
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DebugReport returns the scored candidate lineups for both ladders
func (s *service) DebugReport(ctx context.Context) (*DebugReportOutput, error) {
	out := &DebugReportOutput{}
	err := s.do(ctx, func() {
		now := s.clock.Now()
		for _, ladder := range models.Ladders() {
			candidates := matchmaking.BestLineups(s.queues[ladder], now)
			out.Reports = append(out.Reports, matchmaking.DebugReport(ladder, candidates, now))
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// refreshRatings pulls the ladder tables and refreshes the ratings of queued
// players in place. Runs off the loop; the HTTP pull never blocks a tick.
func (s *service) refreshRatings() {
	defer logPanic("rating refresh")
	ctx := context.Background()

	for _, ladder := range models.Ladders() {
		if err := s.ratings.Refresh(ctx, ladder); err != nil {
			log.Printf("failed to refresh %s ratings: %v", ladder, err)
			continue
		}

		var names []string
		_ = s.do(ctx, func() {
			for _, p := range s.queues[ladder].Players() {
				names = append(names, p.Name)
			}
		})

		updates := make(map[string]*models.Rating, len(names))
		for _, name := range names {
			if r, err := s.ratings.GetRating(ctx, name, ladder); err == nil {
				updates[queuekey.Normalize(name)] = r
			}
		}

		_ = s.do(ctx, func() {
			for key, r := range updates {
				if p := s.queues[ladder].Player(key); p != nil {
					p.MMR = r.MMR
					p.LR = r.LR
				}
			}
		})
	}
}

// roomByID returns the active room with the given ID, or nil
func (s *service) roomByID(id string) *room.Room {
	for _, r := range s.rooms {
		if r.ID() == id {
			return r
		}
	}
	return nil
}

// busyChannels returns the channel bindings of every unfinished room
func (s *service) busyChannels() []string {
	var busy []string
	for _, r := range s.rooms {
		if !r.Finished() && r.ChannelID() != "" {
			busy = append(busy, r.ChannelID())
		}
	}
	return busy
}

// pruneRooms drops finished rooms from the active set
func (s *service) pruneRooms() {
	kept := s.rooms[:0]
	for _, r := range s.rooms {
		if !r.Finished() {
			kept = append(kept, r)
		}
	}
	s.rooms = kept
}

// allQueueChannels returns every monitored queue channel across ladders
func (s *service) allQueueChannels() []string {
	var channels []string
	seen := make(map[string]bool)
	for _, ladder := range models.Ladders() {
		for _, ch := range s.queueChannels[ladder] {
			if !seen[ch] {
				seen[ch] = true
				channels = append(channels, ch)
			}
		}
	}
	return channels
}

// send posts a message without blocking the control loop
func (s *service) send(channelID, text string) {
	go func() {
		defer logPanic("message send")
		if _, err := s.gateway.SendMessage(context.Background(), channelID, text); err != nil {
			log.Printf("failed to send message to channel %s: %v", channelID, err)
		}
	}()
}

// broadcast sends a message to every given channel, in the caller's
// goroutine
func (s *service) broadcast(ctx context.Context, channels []string, text string) {
	for _, ch := range channels {
		if _, err := s.gateway.SendMessage(ctx, ch, text); err != nil {
			log.Printf("failed to send message to channel %s: %v", ch, err)
		}
	}
}

func containsChannel(channels []string, channelID string) bool {
	for _, ch := range channels {
		if ch == channelID {
			return true
		}
	}
	return false
}

// mention renders a player mention for chat messages
func mention(discordID int64) string {
	return fmt.Sprintf("<@%d>", discordID)
}

// logPanic is deferred around fire-and-forget goroutines so a chat failure
// can never take down the process.
func logPanic(op string) {
	if rec := recover(); rec != nil {
		log.Printf("recovered from panic during %s: %v", op, rec)
	}
}
