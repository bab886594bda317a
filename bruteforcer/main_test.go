package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/wricardo/snakes-and-ladders/api"
	"github.com/wricardo/snakes-and-ladders/game/config"
	"github.com/wricardo/snakes-and-ladders/game/engine"
	"github.com/wricardo/snakes-and-ladders/game/service"
	"github.com/wricardo/snakes-and-ladders/game/session"
)

func newServer(t *testing.T, opts ...api.Option) *httptest.Server {
	t.Helper()
	configs, err := config.NewManager("")
	require.NoError(t, err)
	svc := service.NewGameService(session.NewManager(), configs)

	ts := httptest.NewServer(api.NewServer(svc, nil, opts...))
	t.Cleanup(ts.Close)
	return ts
}

func TestClient_SessionLifecycle(t *testing.T) {
	ts := newServer(t, api.WithRollLimit(rate.Inf, 0))
	ctx := context.Background()
	client := NewClient(ts.URL+"/", 0)

	session, err := client.CreateSession(ctx, "prime_path")
	require.NoError(t, err)
	assert.Equal(t, "prime_path", session.ConfigName)
	assert.Equal(t, session.ID, client.sessionID)

	_, err = client.Roll(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, engine.ErrGameNotInProgress.Error(), apiErr.Message)

	state, err := client.Start(ctx, 2, []string{"Ann", "Bo"})
	require.NoError(t, err)
	assert.Equal(t, engine.InProgress, state.Status)
	require.Len(t, state.Players, 2)

	result, err := client.Roll(ctx)
	require.NoError(t, err)
	require.NotNil(t, result.Turn)
	assert.Equal(t, 1, result.Turn.Turn)

	state, err = client.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.NotStarted, state.Status)
	assert.Empty(t, state.Players)

	other := NewClient(ts.URL, 0)
	resumed, err := other.Resume(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, resumed.ID)

	_, err = other.Resume(ctx, "zzzz")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestClient_RollBacksOffWhenRateLimited(t *testing.T) {
	ts := newServer(t, api.WithRollLimit(rate.Limit(0.001), 1))
	ctx := context.Background()
	client := NewClient(ts.URL, 0)
	client.retries = 1

	_, err := client.CreateSession(ctx, "classic")
	require.NoError(t, err)
	_, err = client.Start(ctx, 2, nil)
	require.NoError(t, err)

	_, err = client.Roll(ctx)
	require.NoError(t, err)

	_, err = client.Roll(ctx)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestPlayGame(t *testing.T) {
	ts := newServer(t, api.WithRollLimit(rate.Inf, 0))
	ctx := context.Background()
	client := NewClient(ts.URL, 0)

	_, err := client.CreateSession(ctx, "prime_path")
	require.NoError(t, err)

	outcome, err := playGame(ctx, client, 2, []string{"Ann", "Bo"}, 5000, false)
	require.NoError(t, err)
	assert.Contains(t, []string{"Ann", "Bo"}, outcome.Winner)
	assert.Positive(t, outcome.Turns)

	// a second game on the same session starts from a fresh board
	outcome, err = playGame(ctx, client, 3, nil, 1, false)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Turns)
	assert.Empty(t, outcome.Winner)

	_, err = playGame(ctx, client, 9, nil, 10, false)
	assert.Error(t, err)
}

func TestOpenSession(t *testing.T) {
	t.Chdir(t.TempDir())
	ts := newServer(t)
	ctx := context.Background()

	client := NewClient(ts.URL, 0)
	require.NoError(t, openSession(ctx, client, "", "classic"))
	saved, err := os.ReadFile(sessionFile)
	require.NoError(t, err)
	assert.Equal(t, client.sessionID, string(saved))

	again := NewClient(ts.URL, 0)
	require.NoError(t, openSession(ctx, again, "", "classic"))
	assert.Equal(t, client.sessionID, again.sessionID)

	fresh := NewClient(ts.URL, 0)
	require.NoError(t, openSession(ctx, fresh, "zzzz", "classic"))
	assert.NotEqual(t, "zzzz", fresh.sessionID)
}

func TestSummary(t *testing.T) {
	s := &Summary{}
	assert.Zero(t, s.MeanTurns())

	s.add(GameOutcome{Turns: 10, Winner: "Ann"})
	s.add(GameOutcome{Turns: 30, Winner: "Bo"})
	s.add(GameOutcome{Turns: 20, Winner: "Ann"})
	s.add(GameOutcome{Turns: 3000})

	assert.Equal(t, 4, s.Games)
	assert.Equal(t, 3, s.Finished)
	assert.Equal(t, 30, s.MaxTurns)
	assert.InDelta(t, 20.0, s.MeanTurns(), 1e-9)
	assert.Equal(t, map[string]int{"Ann": 2, "Bo": 1}, s.Wins)
}
