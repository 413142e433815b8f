package shuffle

import (
	"math/rand"
	"sync"
	"time"
)

// Shuffler provides the randomness used for team splits, host ordering, and
// vote tie-breaks. Safe for concurrent use; vote timers fire off the
// orchestrator's control loop.
type Shuffler struct {
	mu     sync.Mutex
	random *rand.Rand
}

// Config for the shuffler
type Config struct {
	// Optional seed for testing
	Seed int64
}

// New creates a new shuffler
func New(cfg *Config) *Shuffler {
	var seed int64
	if cfg != nil && cfg.Seed != 0 {
		seed = cfg.Seed
	} else {
		seed = time.Now().UnixNano()
	}

	source := rand.NewSource(seed)
	random := rand.New(source)

	return &Shuffler{
		random: random,
	}
}

// Shuffle permutes n elements uniformly at random
func (s *Shuffler) Shuffle(n int, swap func(i, j int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.random.Shuffle(n, swap)
}

// Intn returns a uniform random int in [0, n)
func (s *Shuffler) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.random.Intn(n)
}
