package service

import (
	"time"

	"github.com/wricardo/snakes-and-ladders/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string               `json:"id"`
	ConfigName     string               `json:"config_name"`
	CreatedAt      time.Time            `json:"created_at"`
	LastAccessedAt time.Time            `json:"last_accessed_at"`
	State          *engine.GameSnapshot `json:"state"`
	Rules          *engine.Rules        `json:"rules"`
}

// RollResult contains one resolved turn and the state after it
type RollResult struct {
	Turn    *engine.TurnResult   `json:"turn"`
	Events  []engine.MoveEvent   `json:"events"`
	State   *engine.GameSnapshot `json:"state"`
	Message string               `json:"message"`
}

// RouteRequest asks for a path between two nodes. An empty Mode uses the
// session's path mode.
type RouteRequest struct {
	From int             `json:"from"`
	To   int             `json:"to"`
	Mode engine.PathMode `json:"mode,omitempty"`
}

// RouteResult is a path on the session's current board
type RouteResult struct {
	From      int             `json:"from"`
	To        int             `json:"to"`
	Mode      engine.PathMode `json:"mode"`
	Path      []int           `json:"path"`
	Hops      int             `json:"hops"`
	Cost      int             `json:"cost"`
	Reachable bool            `json:"reachable"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move events
type HistoryResponse struct {
	Events      []engine.MoveEvent `json:"events"`
	TotalEvents int                `json:"total_events"`
	Page        int                `json:"page"`
	PageSize    int                `json:"page_size"`
	TotalPages  int                `json:"total_pages"`
	HasNext     bool               `json:"has_next"`
	HasPrevious bool               `json:"has_previous"`
}

// ConfigInfo provides information about a rule set
type ConfigInfo struct {
	Filename       string                `json:"filename,omitempty"`
	ConfigID       string                `json:"config_id"` // The identifier to use for session creation
	Name           string                `json:"name"`
	Description    string                `json:"description"`
	DirectionModel engine.DirectionModel `json:"direction_model"`
	PathMode       engine.PathMode       `json:"path_mode"`
	Builtin        bool                  `json:"builtin"`
}
