// Package voting runs the timed format election for one room. A poll closes
// either when an option reaches the majority or when the timeout fires,
// whichever comes first; the finish callback fires exactly once.
package voting

import (
	"errors"
	"sync"
	"time"

	"github.com/badwolfdev/queuebot/internal/models"
	"github.com/badwolfdev/queuebot/internal/shuffle"
)

// DefaultTimeout is how long a poll stays open without a majority
const DefaultTimeout = 2 * time.Minute

// FinishFunc receives the winning format and the final tally. It is invoked
// on its own goroutine so a callback may safely call back into whatever owns
// the poll.
type FinishFunc func(winner models.Format, votes map[models.Format][]string)

// Config holds the configuration for a poll
type Config struct {
	// Members are the queue keys allowed to vote
	Members []string

	// Majority is the vote count that closes the poll immediately
	Majority int

	// Timeout is how long the poll stays open. Defaults to DefaultTimeout.
	Timeout time.Duration

	// OnFinish is called exactly once when the poll closes
	OnFinish FinishFunc

	// Shuffler breaks ties when the timeout picks a leader
	Shuffler *shuffle.Shuffler
}

// Poll is a single Open -> Closed format election
type Poll struct {
	mu       sync.Mutex
	votes    map[models.Format]map[string]struct{}
	members  map[string]struct{}
	majority int
	closed   bool
	winner   models.Format
	timer    *time.Timer
	onFinish FinishFunc
	shuffler *shuffle.Shuffler
}

// New creates a poll in the Open state with an empty tally per option
func New(cfg *Config) (*Poll, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.OnFinish == nil {
		return nil, errors.New("finish callback cannot be nil")
	}
	if cfg.Majority <= 0 {
		return nil, errors.New("majority must be positive")
	}
	if cfg.Shuffler == nil {
		return nil, errors.New("shuffler cannot be nil")
	}

	votes := make(map[models.Format]map[string]struct{}, len(models.Formats()))
	for _, f := range models.Formats() {
		votes[f] = make(map[string]struct{})
	}

	members := make(map[string]struct{}, len(cfg.Members))
	for _, m := range cfg.Members {
		members[m] = struct{}{}
	}

	return &Poll{
		votes:    votes,
		members:  members,
		majority: cfg.Majority,
		onFinish: cfg.OnFinish,
		shuffler: cfg.Shuffler,
	}, nil
}

// Start arms the timeout. Must be called once after New.
func (p *Poll) Start(timeout time.Duration) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.timer != nil {
		return
	}
	p.timer = time.AfterFunc(timeout, p.expire)
}

// CastVote records a vote. Votes from non-members and votes after close are
// ignored. A repeat vote moves the voter's previous vote to the new option.
func (p *Poll) CastVote(voterKey string, option models.Format) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	if _, ok := p.members[voterKey]; !ok {
		p.mu.Unlock()
		return
	}
	if _, ok := p.votes[option]; !ok {
		p.mu.Unlock()
		return
	}

	for _, voters := range p.votes {
		delete(voters, voterKey)
	}
	p.votes[option][voterKey] = struct{}{}

	if len(p.votes[option]) >= p.majority {
		p.closeLocked(option)
		return
	}
	p.mu.Unlock()
}

// Closed reports whether the poll has resolved
func (p *Poll) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Counts returns the current vote count per option
func (p *Poll) Counts() map[models.Format]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	counts := make(map[models.Format]int, len(p.votes))
	for option, voters := range p.votes {
		counts[option] = len(voters)
	}
	return counts
}

// expire fires on the timeout path and loses gracefully to a majority close
// that already happened.
func (p *Poll) expire() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closeLocked(p.leaderLocked())
}

// closeLocked transitions to Closed and fires the finish callback exactly
// once. The caller must hold p.mu; the lock is released here.
func (p *Poll) closeLocked(winner models.Format) {
	p.closed = true
	p.winner = winner
	if p.timer != nil {
		p.timer.Stop()
	}
	tally := p.tallyLocked()
	p.mu.Unlock()

	go p.onFinish(winner, tally)
}

// leaderLocked picks the option with the most votes, breaking ties (including
// the all-zero case) uniformly at random.
func (p *Poll) leaderLocked() models.Format {
	var leaders []models.Format
	leading := -1
	for _, option := range models.Formats() {
		count := len(p.votes[option])
		if count > leading {
			leading = count
			leaders = leaders[:0]
		}
		if count == leading {
			leaders = append(leaders, option)
		}
	}
	return leaders[p.shuffler.Intn(len(leaders))]
}

func (p *Poll) tallyLocked() map[models.Format][]string {
	tally := make(map[models.Format][]string, len(p.votes))
	for option, voters := range p.votes {
		keys := make([]string, 0, len(voters))
		for key := range voters {
			keys = append(keys, key)
		}
		tally[option] = keys
	}
	return tally
}
