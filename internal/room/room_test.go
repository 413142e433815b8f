package room

import (
	"fmt"
	"testing"
	"time"

	"github.com/badwolfdev/queuebot/internal/models"
	"github.com/stretchr/testify/suite"
)

type RoomTestSuite struct {
	suite.Suite
	testNow time.Time
	room    *Room
}

func (s *RoomTestSuite) SetupTest() {
	s.testNow = time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)

	players := make([]*models.Player, 12)
	for i := range players {
		players[i] = &models.Player{
			Name:      fmt.Sprintf("Player #%d", i),
			DiscordID: int64(i + 1),
			MMR:       5000 + i*10,
		}
	}

	r, err := New(&Config{
		ID:      "test-room-id",
		Players: players,
		Ladder:  models.LadderRT,
		Now:     s.testNow,
	})
	s.Require().NoError(err)
	s.room = r
}

func TestRoomTestSuite(t *testing.T) {
	suite.Run(t, new(RoomTestSuite))
}

func (s *RoomTestSuite) TestNewRoom() {
	s.Equal(models.RoomStatusCreated, s.room.Status())
	s.False(s.room.IsExpired(s.testNow))
	s.False(s.room.IsExpired(s.testNow.Add(Expiration)))
	s.True(s.room.IsExpired(s.testNow.Add(Expiration + time.Second)))
	s.True(s.room.Member("player0"))
	s.False(s.room.Member("stranger"))
}

func (s *RoomTestSuite) TestExtendOutsideWarnWindowRejected() {
	// Expiration is 5 minutes out, the warn window is 3 minutes: one minute
	// in we are not expiring soon.
	now := s.testNow.Add(time.Minute)
	s.Require().False(s.room.ExpiresSoon(now))

	err := s.room.Extend(now)
	s.Require().ErrorIs(err, ErrNotExpiringSoon)
	s.True(s.room.IsExpired(s.testNow.Add(Expiration + time.Second)), "expiration must be unchanged")
}

func (s *RoomTestSuite) TestExtendInsideWarnWindowHitsHardCap() {
	// Three minutes in the room expires soon, but a 5 minute extension would
	// push access past the 6 minute cap.
	now := s.testNow.Add(3 * time.Minute)
	s.Require().True(s.room.ExpiresSoon(now))

	err := s.room.Extend(now)
	s.Require().ErrorIs(err, ErrMaxAccessExceeded)
}

func (s *RoomTestSuite) TestExtendClearsWarningFlag() {
	// Shrink the gap between expiry and the cap by restoring a room whose
	// expiration leaves headroom for one extension.
	state := s.room.State()
	state.ExpirationTime = state.StartTime.Add(time.Minute)
	state.ExpirationWarned = true
	r, err := Restore(state)
	s.Require().NoError(err)

	now := state.StartTime.Add(30 * time.Second)
	s.Require().True(r.ExpiresSoon(now))
	s.Require().NoError(r.Extend(now))

	s.False(r.IsExpired(state.StartTime.Add(5 * time.Minute)))
	s.True(r.ShouldWarnExpiration(state.StartTime.Add(4 * time.Minute)))
}

func (s *RoomTestSuite) TestWarnOnce() {
	now := s.testNow.Add(3 * time.Minute)
	s.Require().True(s.room.ShouldWarnExpiration(now))

	s.room.MarkExpirationWarned()
	s.False(s.room.ShouldWarnExpiration(now))
}

func (s *RoomTestSuite) TestVisibilityGrantIdempotent() {
	s.room.MarkVisibilityGranted()
	s.Require().True(s.room.VisibilityGranted())

	s.room.MarkVisibilityGranted()
	s.True(s.room.VisibilityGranted())
	s.Equal(models.RoomStatusVisibilityGranted, s.room.Status())
}

func (s *RoomTestSuite) TestFinishVoteOnce() {
	votes := map[models.Format][]string{models.Format6v6: {"player0"}}
	teams := [][]*models.Player{s.room.Players()[:6], s.room.Players()[6:]}

	s.Require().True(s.room.FinishVote(models.Format6v6, votes, teams, "Host order:\n1. Player #0"))
	s.False(s.room.FinishVote(models.FormatFFA, nil, nil, ""))

	s.Equal(models.Format6v6, s.room.WinningFormat())
	s.True(s.room.VoteFinished())
	s.Equal(models.RoomStatusTeamsAssigned, s.room.Status())
}

func (s *RoomTestSuite) TestAbortIsTerminal() {
	s.room.AwaitChannel()
	s.room.Abort(models.RoomStatusAbortedNoFreeChannel)

	s.True(s.room.Finished())
	s.False(s.room.NeedsRecovery())
}

func (s *RoomTestSuite) TestCloseIdempotent() {
	s.room.Close()
	s.room.Close()
	s.True(s.room.Finished())
	s.Equal(models.RoomStatusClosed, s.room.Status())
}

func (s *RoomTestSuite) TestStateRoundTrip() {
	s.room.AttachChannel("channel-1")
	s.room.MarkVisibilityGranted()

	restored, err := Restore(s.room.State())
	s.Require().NoError(err)

	s.Equal(s.room.ID(), restored.ID())
	s.Equal(s.room.Ladder(), restored.Ladder())
	s.Equal(s.room.ChannelID(), restored.ChannelID())
	s.Equal(s.room.Status(), restored.Status())
	s.Len(restored.Players(), 12)
	s.True(restored.VisibilityGranted())
	s.False(restored.VoteFinished())
	s.True(restored.NeedsRecovery())
}

func (s *RoomTestSuite) TestNeedsRecovery() {
	s.True(s.room.NeedsRecovery(), "fresh unfinished room resumes")

	s.room.FinishVote(models.FormatFFA, nil, nil, "")
	s.False(s.room.NeedsRecovery(), "finished vote means nothing left to resume")
}
