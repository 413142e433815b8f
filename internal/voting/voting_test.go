package voting

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/badwolfdev/queuebot/internal/models"
	"github.com/badwolfdev/queuebot/internal/shuffle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type finishRecorder struct {
	fired  atomic.Int32
	winner chan models.Format
	tally  chan map[models.Format][]string
}

func newFinishRecorder() *finishRecorder {
	return &finishRecorder{
		winner: make(chan models.Format, 2),
		tally:  make(chan map[models.Format][]string, 2),
	}
}

func (r *finishRecorder) callback(winner models.Format, votes map[models.Format][]string) {
	r.fired.Add(1)
	r.winner <- winner
	r.tally <- votes
}

func (r *finishRecorder) waitWinner(t *testing.T) models.Format {
	t.Helper()
	select {
	case w := <-r.winner:
		<-r.tally
		return w
	case <-time.After(2 * time.Second):
		t.Fatal("finish callback never fired")
		return ""
	}
}

func memberKeys(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("member%d", i)
	}
	return keys
}

func newPoll(t *testing.T, members []string, rec *finishRecorder) *Poll {
	t.Helper()
	p, err := New(&Config{
		Members:  members,
		Majority: 6,
		OnFinish: rec.callback,
		Shuffler: shuffle.New(&shuffle.Config{Seed: 3}),
	})
	require.NoError(t, err)
	return p
}

func TestMajorityClosesBeforeTimeout(t *testing.T) {
	members := memberKeys(12)
	rec := newFinishRecorder()
	p := newPoll(t, members, rec)
	p.Start(time.Hour)

	for i := 0; i < 5; i++ {
		p.CastVote(members[i], models.Format3v3)
		assert.False(t, p.Closed())
	}
	p.CastVote(members[5], models.Format3v3)

	assert.True(t, p.Closed())
	assert.Equal(t, models.Format3v3, rec.waitWinner(t))
	assert.Equal(t, int32(1), rec.fired.Load())
}

func TestTimeoutClosesWithLeader(t *testing.T) {
	members := memberKeys(12)
	rec := newFinishRecorder()
	p := newPoll(t, members, rec)

	p.CastVote(members[0], models.FormatFFA)
	p.CastVote(members[1], models.Format6v6)
	p.CastVote(members[2], models.Format6v6)

	p.Start(20 * time.Millisecond)

	assert.Equal(t, models.Format6v6, rec.waitWinner(t))
	assert.True(t, p.Closed())
	assert.Equal(t, int32(1), rec.fired.Load())
}

func TestTimeoutWithNoVotesPicksRandomOption(t *testing.T) {
	rec := newFinishRecorder()
	p := newPoll(t, memberKeys(12), rec)
	p.Start(10 * time.Millisecond)

	winner := rec.waitWinner(t)
	assert.Contains(t, models.Formats(), winner)
}

func TestRevoteMovesVote(t *testing.T) {
	members := memberKeys(12)
	rec := newFinishRecorder()
	p := newPoll(t, members, rec)
	p.Start(time.Hour)

	p.CastVote(members[0], models.FormatFFA)
	p.CastVote(members[0], models.Format2v2)
	p.CastVote(members[0], models.Format2v2)

	counts := p.Counts()
	assert.Equal(t, 0, counts[models.FormatFFA])
	assert.Equal(t, 1, counts[models.Format2v2])
}

func TestNonMemberVotesIgnored(t *testing.T) {
	members := memberKeys(12)
	rec := newFinishRecorder()
	p := newPoll(t, members, rec)
	p.Start(time.Hour)

	p.CastVote("stranger", models.FormatFFA)

	assert.Equal(t, 0, p.Counts()[models.FormatFFA])
}

func TestVotesAfterCloseIgnored(t *testing.T) {
	members := memberKeys(12)
	rec := newFinishRecorder()
	p := newPoll(t, members, rec)
	p.Start(time.Hour)

	for i := 0; i < 6; i++ {
		p.CastVote(members[i], models.Format4v4)
	}
	require.True(t, p.Closed())
	before := p.Counts()

	p.CastVote(members[7], models.FormatFFA)
	assert.Equal(t, before, p.Counts())
}

// TestFinishFiresOnceUnderRace closes via majority with the timeout armed to
// fire at effectively the same instant, many times over; the callback must
// fire exactly once per poll.
func TestFinishFiresOnceUnderRace(t *testing.T) {
	members := memberKeys(12)
	for trial := 0; trial < 50; trial++ {
		rec := newFinishRecorder()
		p := newPoll(t, members, rec)
		p.Start(time.Millisecond)

		for i := 0; i < 6; i++ {
			p.CastVote(members[i], models.Format6v6)
		}

		rec.waitWinner(t)
		time.Sleep(5 * time.Millisecond)
		assert.Equal(t, int32(1), rec.fired.Load(), "trial %d double-fired", trial)
	}
}
