// Command bruteforcer plays Snakes & Ladders games against a running server
// through the REST API. It creates (or resumes) a session, then for every
// attempt resets the board, seats the players and rolls until somebody wins.
// A summary of turns per game and wins per seat is printed at the end.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"

	"github.com/wricardo/snakes-and-ladders/game/engine"
	"github.com/wricardo/snakes-and-ladders/game/service"
	"github.com/wricardo/snakes-and-ladders/internal/logging"
)

const sessionFile = ".session"

// ErrRateLimited is returned when the server keeps answering 429
var ErrRateLimited = errors.New("rate limited by server")

// APIError is a non-2xx answer from the server
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

type stateResponse struct {
	Message string               `json:"message"`
	State   *engine.GameSnapshot `json:"state"`
}

// Client talks to the game REST API for a single session
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
	limiter   *rate.Limiter
	retries   int
}

// NewClient creates a client that sends at most perSecond rolls per second
func NewClient(baseURL string, perSecond float64) *Client {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(limit, 1),
		retries: 5,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

// CreateSession opens a new session with the named rule set
func (c *Client) CreateSession(ctx context.Context, configID string) (*service.SessionInfo, error) {
	var session service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", map[string]string{"config_id": configID}, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	c.sessionID = session.ID
	return &session, nil
}

// Resume points the client at an existing session
func (c *Client) Resume(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	var session service.SessionInfo
	if err := c.do(ctx, http.MethodGet, "/api/sessions/"+sessionID, nil, &session); err != nil {
		return nil, fmt.Errorf("resume session: %w", err)
	}
	c.sessionID = session.ID
	return &session, nil
}

// Start seats the players
func (c *Client) Start(ctx context.Context, players int, names []string) (*engine.GameSnapshot, error) {
	var resp stateResponse
	body := map[string]interface{}{"player_count": players, "names": names}
	if err := c.do(ctx, http.MethodPost, c.path("/start"), body, &resp); err != nil {
		return nil, fmt.Errorf("start game: %w", err)
	}
	return resp.State, nil
}

// Reset drops the players and draws a new board
func (c *Client) Reset(ctx context.Context) (*engine.GameSnapshot, error) {
	var resp stateResponse
	if err := c.do(ctx, http.MethodPost, c.path("/reset"), nil, &resp); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return resp.State, nil
}

// Roll resolves one turn, backing off while the server rate limits us
func (c *Client) Roll(ctx context.Context) (*service.RollResult, error) {
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var result service.RollResult
		err := c.do(ctx, http.MethodPost, c.path("/roll"), nil, &result)
		if err == nil {
			return &result, nil
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusTooManyRequests {
			return nil, fmt.Errorf("roll: %w", err)
		}
		if attempt >= c.retries {
			return nil, ErrRateLimited
		}

		backoff := time.Duration(attempt+1) * 100 * time.Millisecond
		log.Debug().Dur("backoff", backoff).Msg("rate limited, backing off")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

func (c *Client) path(suffix string) string {
	return "/api/sessions/" + c.sessionID + suffix
}

// GameOutcome is the result of one attempt
type GameOutcome struct {
	Turns  int
	Winner string
}

// Summary aggregates attempts
type Summary struct {
	Games    int
	Finished int
	Turns    int
	MaxTurns int
	Wins     map[string]int
}

func (s *Summary) add(o GameOutcome) {
	s.Games++
	if o.Winner == "" {
		return
	}
	if s.Wins == nil {
		s.Wins = make(map[string]int)
	}
	s.Finished++
	s.Turns += o.Turns
	s.Wins[o.Winner]++
	if o.Turns > s.MaxTurns {
		s.MaxTurns = o.Turns
	}
}

// MeanTurns is the average length of finished games
func (s *Summary) MeanTurns() float64 {
	if s.Finished == 0 {
		return 0
	}
	return float64(s.Turns) / float64(s.Finished)
}

// playGame resets the session, seats the players and rolls until a winner
// emerges or maxTurns is reached
func playGame(ctx context.Context, c *Client, players int, names []string, maxTurns int, verbose bool) (GameOutcome, error) {
	if _, err := c.Reset(ctx); err != nil {
		return GameOutcome{}, err
	}
	if _, err := c.Start(ctx, players, names); err != nil {
		return GameOutcome{}, err
	}

	var outcome GameOutcome
	for outcome.Turns < maxTurns {
		result, err := c.Roll(ctx)
		if err != nil {
			return outcome, err
		}
		outcome.Turns++

		if verbose && result.Turn != nil {
			t := result.Turn
			log.Info().
				Int("turn", t.Turn).
				Str("player", t.PlayerName).
				Str("dice", t.Dice.String()).
				Int("from", t.StartPosition).
				Int("to", t.FinalPosition).
				Msg("roll")
		}

		if result.State != nil && result.State.Winner != nil {
			outcome.Winner = result.State.Winner.Name
			return outcome, nil
		}
	}
	return outcome, nil
}

// openSession resumes the saved or requested session, or creates a new one
func openSession(ctx context.Context, c *Client, resumeID, configID string) error {
	if resumeID == "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			resumeID = string(bytes.TrimSpace(data))
		}
	}

	if resumeID != "" {
		_, err := c.Resume(ctx, resumeID)
		if err == nil {
			log.Info().Str("session", c.sessionID).Msg("🔄 resumed session")
			return nil
		}
		log.Warn().Err(err).Msg("failed to resume session (may be expired), creating a new one")
	}

	session, err := c.CreateSession(ctx, configID)
	if err != nil {
		return err
	}
	log.Info().Str("session", session.ID).Str("rules", session.ConfigName).Msg("✨ session created")

	if err := os.WriteFile(sessionFile, []byte(session.ID), 0644); err != nil {
		log.Warn().Err(err).Msg("failed to save session id")
	}
	return nil
}

func printSummary(s *Summary) {
	fmt.Printf("\n=== Summary ===\n")
	fmt.Printf("Games finished: %d of %d\n", s.Finished, s.Games)
	if s.Finished == 0 {
		return
	}
	fmt.Printf("Turns to win: %.1f on average, %d at most\n", s.MeanTurns(), s.MaxTurns)

	names := make([]string, 0, len(s.Wins))
	for name := range s.Wins {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %d wins\n", name, s.Wins[name])
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	logging.Setup(cmd.Bool("v"), nil)

	client := NewClient(cmd.String("url"), cmd.Float("rate"))
	log.Info().Str("url", client.baseURL).Msg("connecting to game server")

	if err := openSession(ctx, client, cmd.String("continue"), cmd.String("config")); err != nil {
		return err
	}

	summary := &Summary{}
	for attempt := 1; attempt <= cmd.Int("games"); attempt++ {
		outcome, err := playGame(ctx, client, cmd.Int("players"), cmd.StringSlice("name"), cmd.Int("max-turns"), cmd.Bool("v"))
		if err != nil {
			return err
		}
		summary.add(outcome)
		if outcome.Winner == "" {
			log.Info().Int("game", attempt).Int("turns", outcome.Turns).Msg("no winner")
		} else {
			log.Info().Int("game", attempt).Int("turns", outcome.Turns).Str("winner", outcome.Winner).Msg("🏆 game won")
		}
	}

	printSummary(summary)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "bruteforcer",
		Usage: "play Snakes & Ladders games through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "game server URL"},
			&cli.StringFlag{Name: "config", Value: "classic", Usage: "rule set for a new session"},
			&cli.StringFlag{Name: "continue", Usage: "resume playing an existing session by ID"},
			&cli.IntFlag{Name: "games", Value: 10, Usage: "games to play"},
			&cli.IntFlag{Name: "players", Value: 2, Usage: "players per game (2-6)"},
			&cli.StringSliceFlag{Name: "name", Usage: "player name, repeat for each seat"},
			&cli.IntFlag{Name: "max-turns", Value: 3000, Usage: "maximum turns per game"},
			&cli.FloatFlag{Name: "rate", Value: 8, Usage: "rolls per second, 0 = unlimited"},
			&cli.BoolFlag{Name: "v", Usage: "verbose output"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
