package queue

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/badwolfdev/queuebot/internal/models"
	"github.com/stretchr/testify/suite"
)

type QueueTestSuite struct {
	suite.Suite
	queue   *Queue
	testNow time.Time
}

func (s *QueueTestSuite) SetupTest() {
	s.queue = New(nil)
	s.testNow = time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
}

func TestQueueTestSuite(t *testing.T) {
	suite.Run(t, new(QueueTestSuite))
}

func (s *QueueTestSuite) newPlayer(name string, queuedOffset time.Duration) *models.Player {
	return &models.Player{
		Name:       name,
		DiscordID:  int64(len(name)),
		MMR:        5000,
		LR:         5000,
		TimeQueued: s.testNow.Add(queuedOffset),
		LastActive: s.testNow.Add(queuedOffset),
	}
}

func (s *QueueTestSuite) TestAddAndLookup() {
	p := s.newPlayer("Bad Wolf", 0)
	s.Require().NoError(s.queue.Add(p))

	s.Equal(1, s.queue.CountPlayers())
	s.Equal(p, s.queue.Player("badwolf"))
	s.NotNil(s.queue.Group("badwolf"))
	s.Nil(s.queue.Player("someoneelse"))
}

func (s *QueueTestSuite) TestAddDuplicateKey() {
	s.Require().NoError(s.queue.Add(s.newPlayer("Bad Wolf", 0)))

	// Decorated variant of the same name normalizes to the same key.
	err := s.queue.Add(s.newPlayer("Bád Wölf", time.Minute))
	s.Require().ErrorIs(err, ErrDuplicateKey)
	s.Equal(1, s.queue.CountPlayers())
}

func (s *QueueTestSuite) TestRemovePrunesGroup() {
	p := s.newPlayer("Solo", 0)
	s.Require().NoError(s.queue.Add(p))

	removed, err := s.queue.Remove("solo")
	s.Require().NoError(err)
	s.Equal(p, removed)
	s.Equal(0, s.queue.CountPlayers())
	s.Empty(s.queue.Groups())

	_, err = s.queue.Remove("solo")
	s.Require().ErrorIs(err, ErrNotFound)
}

func (s *QueueTestSuite) TestMergeSingletons() {
	s.Require().NoError(s.queue.Add(s.newPlayer("Host", 0)))
	s.Require().NoError(s.queue.Add(s.newPlayer("Friend", time.Minute)))

	s.Require().NoError(s.queue.Merge("host", "friend"))

	g := s.queue.Group("host")
	s.Require().NotNil(g)
	s.Equal(2, g.Size())
	s.Same(g, s.queue.Group("friend"))
	s.Len(s.queue.Groups(), 1)
	s.Equal(2, s.queue.CountPlayers())
}

func (s *QueueTestSuite) TestMergeRespectsGroupCap() {
	s.Require().NoError(s.queue.Add(s.newPlayer("A", 0)))
	s.Require().NoError(s.queue.Add(s.newPlayer("B", 0)))
	s.Require().NoError(s.queue.Add(s.newPlayer("C", 0)))
	s.Require().NoError(s.queue.Merge("a", "b"))

	err := s.queue.Merge("a", "c")
	s.Require().ErrorIs(err, ErrTooManyPlayers)

	// C is untouched and still its own group.
	s.Equal(1, s.queue.Group("c").Size())
}

func (s *QueueTestSuite) TestMergeRejectsNonSingleton() {
	s.Require().NoError(s.queue.Add(s.newPlayer("A", 0)))
	s.Require().NoError(s.queue.Add(s.newPlayer("B", 0)))
	s.Require().NoError(s.queue.Merge("a", "b"))
	s.Require().NoError(s.queue.Add(s.newPlayer("C", 0)))

	err := s.queue.Merge("c", "a")
	s.Require().ErrorIs(err, ErrGroupCombination)
}

func (s *QueueTestSuite) TestSplinter() {
	s.Require().NoError(s.queue.Add(s.newPlayer("A", 0)))
	s.Require().NoError(s.queue.Add(s.newPlayer("B", 0)))
	s.Require().NoError(s.queue.Merge("a", "b"))

	s.Require().NoError(s.queue.Splinter("b"))

	s.Len(s.queue.Groups(), 2)
	s.Equal(1, s.queue.Group("a").Size())
	s.Equal(1, s.queue.Group("b").Size())
	s.Equal(2, s.queue.CountPlayers())

	// Splintering a singleton is a no-op.
	s.Require().NoError(s.queue.Splinter("b"))
	s.Len(s.queue.Groups(), 2)

	s.Require().ErrorIs(s.queue.Splinter("nobody"), ErrNotFound)
}

func (s *QueueTestSuite) TestListingOrderAndGroupNumbers() {
	late := s.newPlayer("Late", 10*time.Minute)
	early := s.newPlayer("Early", -10*time.Minute)
	friendA := s.newPlayer("FriendA", time.Minute)
	friendB := s.newPlayer("FriendB", 2*time.Minute)

	s.Require().NoError(s.queue.Add(late))
	s.Require().NoError(s.queue.Add(friendA))
	s.Require().NoError(s.queue.Add(friendB))
	s.Require().NoError(s.queue.Add(early))
	s.Require().NoError(s.queue.Merge("frienda", "friendb"))

	entries := s.queue.Listing()
	s.Require().Len(entries, 4)

	s.Equal("Early", entries[0].Player.Name)
	s.Equal(0, entries[0].GroupNumber)
	s.Equal("FriendA", entries[1].Player.Name)
	s.Equal(1, entries[1].GroupNumber)
	s.Equal("FriendB", entries[2].Player.Name)
	s.Equal(1, entries[2].GroupNumber)
	s.Equal("Late", entries[3].Player.Name)
	s.Equal(0, entries[3].GroupNumber)
}

func (s *QueueTestSuite) TestSnapshotRestoreRoundTrip() {
	s.Require().NoError(s.queue.Add(s.newPlayer("A", 0)))
	s.Require().NoError(s.queue.Add(s.newPlayer("B", time.Minute)))
	s.Require().NoError(s.queue.Add(s.newPlayer("C", 2*time.Minute)))
	s.Require().NoError(s.queue.Merge("a", "b"))

	snap := s.queue.Snapshot()

	restored := New(nil)
	s.Require().NoError(restored.Restore(snap))

	s.Equal(s.queue.CountPlayers(), restored.CountPlayers())
	s.Equal(len(s.queue.Groups()), len(restored.Groups()))
	s.Equal(2, restored.Group("a").Size())
	s.True(restored.Group("a").Contains("b"))
	s.Equal(1, restored.Group("c").Size())
}

// TestInvariantsUnderRandomOps walks a random add/remove/splinter/merge
// sequence and checks the structural invariants after every step: no empty
// groups, no two groups sharing a key, and total count equals the sum of
// group sizes.
func (s *QueueTestSuite) TestInvariantsUnderRandomOps() {
	rng := rand.New(rand.NewSource(42))
	names := make([]string, 20)
	for i := range names {
		names[i] = fmt.Sprintf("player%d", i)
	}

	for step := 0; step < 2000; step++ {
		name := names[rng.Intn(len(names))]
		key := name // names are already normalized
		switch rng.Intn(4) {
		case 0:
			_ = s.queue.Add(s.newPlayer(name, time.Duration(step)*time.Second))
		case 1:
			_, _ = s.queue.Remove(key)
		case 2:
			_ = s.queue.Splinter(key)
		case 3:
			other := names[rng.Intn(len(names))]
			_ = s.queue.Merge(key, other)
		}

		s.checkInvariants()
	}
}

func (s *QueueTestSuite) checkInvariants() {
	seen := make(map[string]bool)
	total := 0
	for _, g := range s.queue.Groups() {
		s.Require().Positive(g.Size(), "empty group survived pruning")
		total += g.Size()
		for _, p := range g.Players() {
			s.Require().False(seen[p.Key()], "queue key %q appears twice", p.Key())
			seen[p.Key()] = true
		}
	}
	s.Require().Equal(total, s.queue.CountPlayers())
}
