// Package rating looks up externally computed ladder ratings. The full
// ladder table is pulled from the lounge HTTP API and cached in memory; queue
// joins and the periodic refresh read from the cache.
package rating

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/badwolfdev/queuebot/internal/common/clock"
	"github.com/badwolfdev/queuebot/internal/common/queuekey"
	"github.com/badwolfdev/queuebot/internal/models"
)

// DefaultBaseURL is the lounge ladder API endpoint
const DefaultBaseURL = "https://mkwlounge.gg/api/ladderplayer.php"

// DefaultMinPullInterval is the minimum time between pulls per ladder
const DefaultMinPullInterval = 15 * time.Minute

// ErrNoRating is returned when no rating is known for a player
var ErrNoRating = errors.New("no rating found for player")

// Entry is one cached ladder row
type Entry struct {
	Name      string
	DiscordID int64
	MMR       int
	LR        int
}

// Config holds configuration for the rating client
type Config struct {
	// BaseURL overrides the ladder API endpoint
	BaseURL string

	// HTTPClient overrides the default http client
	HTTPClient *http.Client

	// MinPullInterval overrides the minimum time between pulls
	MinPullInterval time.Duration

	// Clock is the time source
	Clock clock.Clock
}

// Client caches ladder ratings per ladder type
type Client struct {
	baseURL         string
	httpClient      *http.Client
	minPullInterval time.Duration
	clock           clock.Clock

	mu       sync.RWMutex
	data     map[models.Ladder]map[string]Entry
	lastPull map[models.Ladder]time.Time
}

// New creates a rating client with an empty cache
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	minPullInterval := cfg.MinPullInterval
	if minPullInterval <= 0 {
		minPullInterval = DefaultMinPullInterval
	}
	clk := cfg.Clock
	if clk == nil {
		clk = &clock.DefaultClock{}
	}

	return &Client{
		baseURL:         baseURL,
		httpClient:      httpClient,
		minPullInterval: minPullInterval,
		clock:           clk,
		data:            make(map[models.Ladder]map[string]Entry),
		lastPull:        make(map[models.Ladder]time.Time),
	}, nil
}

// ladderPlayerResponse mirrors the API payload
type ladderPlayerResponse struct {
	Results []struct {
		PlayerName string `json:"player_name"`
		PlayerID   int64  `json:"player_id"`
		CurrentMMR int    `json:"current_mmr"`
		CurrentLR  int    `json:"current_lr"`
	} `json:"results"`
}

// Refresh pulls the full ladder table if the minimum interval has elapsed.
// A pull that is skipped because the cache is fresh is not an error.
func (c *Client) Refresh(ctx context.Context, ladder models.Ladder) error {
	c.mu.RLock()
	last, pulled := c.lastPull[ladder]
	c.mu.RUnlock()
	now := c.clock.Now()
	if pulled && now.Before(last.Add(c.minPullInterval)) {
		return nil
	}

	url := fmt.Sprintf("%s?ladder_type=%s&all&fields=player_name,player_id,current_mmr,current_lr", c.baseURL, ladder)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build ladder request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to pull ladder data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ladder API returned status %d", resp.StatusCode)
	}

	var payload ladderPlayerResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("failed to decode ladder response: %w", err)
	}

	table := make(map[string]Entry, len(payload.Results))
	for _, row := range payload.Results {
		table[queuekey.Normalize(row.PlayerName)] = Entry{
			Name:      row.PlayerName,
			DiscordID: row.PlayerID,
			MMR:       row.CurrentMMR,
			LR:        row.CurrentLR,
		}
	}

	c.mu.Lock()
	c.data[ladder] = table
	c.lastPull[ladder] = now
	c.mu.Unlock()
	return nil
}

// GetRating returns the cached (mmr, lr) for a player name on a ladder
func (c *Client) GetRating(ctx context.Context, name string, ladder models.Ladder) (*models.Rating, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.data[ladder][queuekey.Normalize(name)]
	if !ok {
		return nil, ErrNoRating
	}
	return &models.Rating{MMR: entry.MMR, LR: entry.LR}, nil
}
