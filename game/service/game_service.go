package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/snakes-and-ladders/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrInvalidRequest  = errors.New("invalid request")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	StartGame(ctx context.Context, sessionID string, playerCount int, names []string) (*engine.GameSnapshot, error)
	Roll(ctx context.Context, sessionID string) (*RollResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameSnapshot, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameSnapshot, error)
	GetBoard(ctx context.Context, sessionID string) (*engine.BoardSnapshot, error)
	GetRoute(ctx context.Context, sessionID string, req RouteRequest) (*RouteResult, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)
	GetLog(ctx context.Context, sessionID string, tail int) ([]string, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.Rules, error)
	SaveConfig(ctx context.Context, configName string, rules *engine.Rules) error
}

// SessionManager defines session storage operations. Get and List return
// copies; UpdateLastAccessed is the only writer of LastAccessedAt.
type SessionManager interface {
	Create(id string, rules *engine.Rules) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles rule set loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.Rules, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.Rules
	SaveConfig(name string, rules *engine.Rules) error
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Rules          *engine.Rules
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
