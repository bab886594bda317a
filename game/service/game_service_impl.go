package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/snakes-and-ladders/game/engine"
	"github.com/wricardo/snakes-and-ladders/internal/logging"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// configID returns the identifier a rule set is listed under
func (s *gameServiceImpl) configID(rulesName string) string {
	available, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range available {
			if cfg.Name == rulesName {
				return cfg.ConfigID
			}
		}
	}
	if rulesName == "" {
		return "classic"
	}
	return rulesName
}

func (s *gameServiceImpl) info(sess *Session) *SessionInfo {
	state := sess.Engine.Snapshot()
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.configID(sess.Rules.Name),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		State:          &state,
		Rules:          sess.Rules,
	}
}

// session looks up a session and marks it accessed
func (s *gameServiceImpl) session(id string) (*Session, error) {
	if err := s.sessions.UpdateLastAccessed(id); err != nil && !errors.Is(err, ErrSessionNotFound) {
		log.Warn().Err(err).Str("session", id).Msg("failed to update last access time")
	}
	sess, err := s.sessions.Get(id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	return sess, nil
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rules *engine.Rules
	if configName != "" {
		var err error
		rules, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				available, listErr := s.configs.ListConfigs()
				if listErr == nil && len(available) > 0 {
					ids := make([]string, 0, len(available))
					for _, cfg := range available {
						ids = append(ids, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, ids)
				}
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		rules = s.configs.GetDefault()
	}

	sess, err := s.sessions.Create("", rules)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Info().Str("session", sess.ID).Str("rules", rules.Name).Msg("session created")

	info := s.info(sess)
	if configName != "" {
		info.ConfigName = configName
	}
	return info, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.info(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.info(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	log.Info().Str("session", sessionID).Msg("session deleted")
	return nil
}

// StartGame seats players and draws a fresh board
func (s *gameServiceImpl) StartGame(ctx context.Context, sessionID string, playerCount int, names []string) (*engine.GameSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	if err := sess.Engine.StartGame(playerCount, names); err != nil {
		return nil, err
	}

	state := sess.Engine.Snapshot()
	logger := logging.Session(sess.ID)
	logger.Info().
		Int("players", playerCount).
		Interface("links", state.Links).
		Msg("game started")
	return &state, nil
}

// Roll resolves one turn for the current player
func (s *gameServiceImpl) Roll(ctx context.Context, sessionID string) (*RollResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	turn, err := sess.Engine.Roll()
	if err != nil {
		return nil, err
	}

	state := sess.Engine.Snapshot()
	result := &RollResult{
		Turn:    turn,
		Events:  turn.EventList(),
		State:   &state,
		Message: rollMessage(turn, &state),
	}

	logger := logging.Session(sess.ID)
	logger.Debug().
		Str("player", turn.PlayerName).
		Stringer("dice", turn.Dice).
		Int("from", turn.StartPosition).
		Int("to", turn.FinalPosition).
		Str("move_type", turn.MoveType).
		Msg("turn resolved")
	if turn.Won {
		logger.Info().Str("winner", turn.PlayerName).Int("turn", turn.Turn).Msg("game finished")
	}

	return result, nil
}

// Reset discards players and draws a new board
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	if err := sess.Engine.Reset(); err != nil {
		return nil, err
	}

	state := sess.Engine.Snapshot()
	logger := logging.Session(sess.ID)
	logger.Info().Msg("game reset")
	return &state, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	state := sess.Engine.Snapshot()
	return &state, nil
}

// GetBoard returns the session's board graph
func (s *gameServiceImpl) GetBoard(ctx context.Context, sessionID string) (*engine.BoardSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	board := sess.Engine.Board()
	return &board, nil
}

// GetRoute computes a path on the session's current board
func (s *gameServiceImpl) GetRoute(ctx context.Context, sessionID string, req RouteRequest) (*RouteResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	if req.From < engine.MinNode || req.From > engine.GoalNode || req.To < engine.MinNode || req.To > engine.GoalNode {
		return nil, fmt.Errorf("%w: route %d -> %d must stay within %d-%d",
			engine.ErrNodeOutOfRange, req.From, req.To, engine.MinNode, engine.GoalNode)
	}

	mode := req.Mode
	if mode == "" {
		mode = sess.Rules.PathMode
	}
	if mode != engine.BFSPath && mode != engine.WeightedPath {
		return nil, fmt.Errorf("%w: unknown path mode %q", ErrInvalidRequest, mode)
	}

	graph := sess.Engine.Graph()
	path := engine.FinderFor(mode)(graph, req.From, req.To)

	result := &RouteResult{
		From:      req.From,
		To:        req.To,
		Mode:      mode,
		Path:      path,
		Reachable: len(path) > 0,
	}
	if result.Path == nil {
		result.Path = []int{}
	}
	if result.Reachable {
		result.Hops = len(path) - 1
		result.Cost, _ = engine.PathLength(graph, path)
	}
	return result, nil
}

// GetMoveHistory returns paginated move events
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.History()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultHistoryLimit
	}
	if opts.Limit > maxHistoryLimit {
		opts.Limit = maxHistoryLimit
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)

	events := []engine.MoveEvent{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				events = append(events, history[i])
			}
		} else {
			events = append(events, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Events:      events,
		TotalEvents: total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// GetLog returns the game log. A positive tail keeps only the last lines.
func (s *gameServiceImpl) GetLog(ctx context.Context, sessionID string, tail int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	lines := sess.Engine.Log()
	if tail > 0 && tail < len(lines) {
		lines = lines[len(lines)-tail:]
	}
	return lines, nil
}

// ListConfigs returns available rule sets
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific rule set
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.Rules, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig validates and stores a rule set
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, rules *engine.Rules) error {
	if err := engine.ValidateRules(rules); err != nil {
		return err
	}
	return s.configs.SaveConfig(configName, rules)
}

func rollMessage(turn *engine.TurnResult, state *engine.GameSnapshot) string {
	msg := fmt.Sprintf("%s rolled %s and moved %d -> %d",
		turn.PlayerName, turn.Dice, turn.StartPosition, turn.FinalPosition)
	switch {
	case turn.Won:
		msg += fmt.Sprintf(". %s wins!", turn.PlayerName)
	case turn.DoubleTurn:
		msg += fmt.Sprintf(". Extra turn for %s", turn.PlayerName)
	case state.Current != nil:
		msg += fmt.Sprintf(". Next: %s", state.Current.Name)
	}
	return msg
}
