package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/badwolfdev/queuebot/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	client  *redis.Client
	repo    Repository
	testNow time.Time
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	// Create a new miniredis server for each test
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	// Create a Redis client connected to the miniredis server
	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	// Create the repository
	repo, err := NewRedis(&Config{
		RedisClient: s.client,
	})
	s.Require().NoError(err)
	s.repo = repo

	// Set up test time
	s.testNow = time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) testSnapshot() *models.Snapshot {
	player := &models.Player{
		Name:       "Bad Wolf",
		DiscordID:  101,
		MMR:        8200,
		LR:         8100,
		TimeQueued: s.testNow,
		LastActive: s.testNow,
		CanHost:    true,
	}
	friend := &models.Player{
		Name:       "Friend",
		DiscordID:  102,
		MMR:        8000,
		LR:         7900,
		TimeQueued: s.testNow.Add(time.Minute),
		LastActive: s.testNow.Add(time.Minute),
	}

	return &models.Snapshot{
		QueueChannels: map[models.Ladder][]string{
			models.LadderRT: {"chan-rt-1", "chan-rt-2"},
			models.LadderCT: {"chan-ct-1"},
		},
		Categories: map[models.Ladder]string{
			models.LadderRT: "category-rt",
		},
		Queues: map[models.Ladder][][]*models.Player{
			models.LadderRT: {{player, friend}},
			models.LadderCT: {},
		},
		Rooms: []*models.RoomState{
			{
				ID:                "test-room-id",
				Players:           []*models.Player{player, friend},
				Ladder:            models.LadderRT,
				ChannelID:         "room-chan-1",
				StartTime:         s.testNow,
				ExpirationTime:    s.testNow.Add(5 * time.Minute),
				VisibilityGranted: true,
				Status:            models.RoomStatusVotingOpen,
			},
		},
	}
}

func (s *RedisRepositoryTestSuite) TestSaveAndLoad() {
	err := s.repo.Save(context.Background(), &SaveInput{
		Snapshot: s.testSnapshot(),
	})
	s.Require().NoError(err)

	loaded, err := s.repo.Load(context.Background())
	s.Require().NoError(err)
	s.Require().NotNil(loaded)

	s.ElementsMatch([]string{"chan-rt-1", "chan-rt-2"}, loaded.QueueChannels[models.LadderRT])
	s.Equal("category-rt", loaded.Categories[models.LadderRT])
	s.Require().Len(loaded.Queues[models.LadderRT], 1)
	s.Require().Len(loaded.Queues[models.LadderRT][0], 2)
	s.Equal("Bad Wolf", loaded.Queues[models.LadderRT][0][0].Name)
	s.Equal(8200, loaded.Queues[models.LadderRT][0][0].MMR)
	s.Equal(s.testNow.Unix(), loaded.Queues[models.LadderRT][0][0].TimeQueued.Unix())

	s.Require().Len(loaded.Rooms, 1)
	s.Equal("test-room-id", loaded.Rooms[0].ID)
	s.True(loaded.Rooms[0].VisibilityGranted)
	s.False(loaded.Rooms[0].VoteFinished)
	s.Equal(models.RoomStatusVotingOpen, loaded.Rooms[0].Status)
}

func (s *RedisRepositoryTestSuite) TestSaveReplacesPrevious() {
	first := s.testSnapshot()
	s.Require().NoError(s.repo.Save(context.Background(), &SaveInput{Snapshot: first}))

	second := s.testSnapshot()
	second.Rooms = nil
	s.Require().NoError(s.repo.Save(context.Background(), &SaveInput{Snapshot: second}))

	loaded, err := s.repo.Load(context.Background())
	s.Require().NoError(err)
	s.Empty(loaded.Rooms)
}

func (s *RedisRepositoryTestSuite) TestLoadMissing() {
	_, err := s.repo.Load(context.Background())
	s.Require().ErrorIs(err, ErrSnapshotNotFound)
}

func (s *RedisRepositoryTestSuite) TestSaveNilInput() {
	s.Error(s.repo.Save(context.Background(), nil))
	s.Error(s.repo.Save(context.Background(), &SaveInput{}))
}
