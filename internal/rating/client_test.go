package rating

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/badwolfdev/queuebot/internal/common/clock/mocks"
	"github.com/badwolfdev/queuebot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const ladderPayload = `{"results":[
	{"player_name":"Bad Wolf","player_id":101,"current_mmr":8200,"current_lr":8100},
	{"player_name":"José","player_id":102,"current_mmr":4100,"current_lr":4000}
]}`

func newTestClient(t *testing.T, handler http.HandlerFunc, now time.Time) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	ctrl := gomock.NewController(t)
	mockClock := mocks.NewMockClock(ctrl)
	mockClock.EXPECT().Now().Return(now).AnyTimes()

	client, err := New(&Config{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Clock:      mockClock,
	})
	require.NoError(t, err)
	return client, server
}

func TestRefreshAndLookup(t *testing.T) {
	now := time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "rt", r.URL.Query().Get("ladder_type"))
		w.Write([]byte(ladderPayload))
	}, now)

	require.NoError(t, client.Refresh(context.Background(), models.LadderRT))

	rating, err := client.GetRating(context.Background(), "Bad Wolf", models.LadderRT)
	require.NoError(t, err)
	assert.Equal(t, 8200, rating.MMR)
	assert.Equal(t, 8100, rating.LR)

	// Lookup is by normalized key, so a decorated spelling still resolves.
	rating, err = client.GetRating(context.Background(), "jose", models.LadderRT)
	require.NoError(t, err)
	assert.Equal(t, 4100, rating.MMR)
}

func TestLookupUnknownPlayer(t *testing.T) {
	now := time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(ladderPayload))
	}, now)

	require.NoError(t, client.Refresh(context.Background(), models.LadderRT))

	_, err := client.GetRating(context.Background(), "nobody", models.LadderRT)
	assert.ErrorIs(t, err, ErrNoRating)
}

func TestLaddersAreIsolated(t *testing.T) {
	now := time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(ladderPayload))
	}, now)

	require.NoError(t, client.Refresh(context.Background(), models.LadderRT))

	_, err := client.GetRating(context.Background(), "Bad Wolf", models.LadderCT)
	assert.ErrorIs(t, err, ErrNoRating)
}

func TestRefreshHonorsMinimumInterval(t *testing.T) {
	var calls atomic.Int32
	now := time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(ladderPayload))
	}, now)

	require.NoError(t, client.Refresh(context.Background(), models.LadderRT))
	require.NoError(t, client.Refresh(context.Background(), models.LadderRT))

	assert.Equal(t, int32(1), calls.Load(), "second pull inside the interval must be skipped")
}

func TestRefreshErrorStatus(t *testing.T) {
	now := time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, now)

	assert.Error(t, client.Refresh(context.Background(), models.LadderRT))
}
