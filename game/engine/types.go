package engine

import (
	"fmt"
	"iter"
)

const (
	// Board geometry
	MinNode  = 1
	GoalNode = 64

	// Game setup
	MinPlayers         = 2
	MaxPlayers         = 6
	LinkCount          = 5
	DefaultMaxAttempts = 10000

	// Dice and rule constants
	DiceMin           = 1
	DiceMax           = 6
	DoubleTurnDivisor = 5
	MinBonusStep      = 2
	MaxBonusStep      = 6
)

// EdgeKind tells where an edge of the board graph came from
type EdgeKind string

const (
	ChainEdge EdgeKind = "chain"
	PrimeEdge EdgeKind = "prime"
	LinkEdge  EdgeKind = "link"
)

// Edge is a directed, weighted connection between two nodes
type Edge struct {
	From   int      `json:"from"`
	To     int      `json:"to"`
	Weight int      `json:"weight"`
	Kind   EdgeKind `json:"kind"`
}

// RandomLink is a snake or ladder shortcut
type RandomLink struct {
	From     int  `json:"from"`
	To       int  `json:"to"`
	IsLadder bool `json:"is_ladder"`
}

func (l RandomLink) String() string {
	kind := "Snake"
	if l.IsLadder {
		kind = "Ladder"
	}
	return fmt.Sprintf("%s: %d -> %d", kind, l.From, l.To)
}

// Status is the lifecycle state of a game session
type Status string

const (
	NotStarted Status = "not_started"
	InProgress Status = "in_progress"
	Finished   Status = "finished"
)

// Direction of a dice roll
type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
)

// DiceResult is one resolved dice roll
type DiceResult struct {
	Value     int       `json:"value"`
	Direction Direction `json:"direction"`
}

func (d DiceResult) String() string {
	return fmt.Sprintf("%d (%s)", d.Value, d.Direction)
}

// DirectionModel decides how roll directions are drawn
type DirectionModel string

const (
	// Probabilistic draws forward with ForwardProbability, backward otherwise
	Probabilistic DirectionModel = "probabilistic"
	// PrimePath always moves forward and routes from prime nodes
	PrimePath DirectionModel = "prime_path"
)

// PathMode selects the path finding algorithm used for routing
type PathMode string

const (
	BFSPath      PathMode = "bfs"
	WeightedPath PathMode = "weighted"
)

// EventKind classifies a move event
type EventKind string

const (
	StepEvent      EventKind = "step"
	TeleportEvent  EventKind = "teleport"
	BacktrackEvent EventKind = "backtrack"
)

// MoveEvent is one discrete position update produced while resolving a turn.
// Consumers replay events in Seq order; pacing is theirs.
type MoveEvent struct {
	Seq        int         `json:"seq"`
	Turn       int         `json:"turn"`
	PlayerID   string      `json:"player_id"`
	PlayerName string      `json:"player_name"`
	Kind       EventKind   `json:"kind"`
	From       int         `json:"from"`
	Position   int         `json:"position"`
	Teleported bool        `json:"teleported,omitempty"`
	DoubleTurn bool        `json:"double_turn,omitempty"`
	Won        bool        `json:"won,omitempty"`
	ViaLink    *RandomLink `json:"via_link,omitempty"`
	Message    string      `json:"message"`
}

// Move types reported in TurnResult.MoveType
const (
	MoveSequential = "sequential"
	MoveRoute      = "route"
	MoveBacktrack  = "backtrack"
)

// TurnResult summarizes one resolved turn
type TurnResult struct {
	Turn          int        `json:"turn"`
	PlayerID      string     `json:"player_id"`
	PlayerName    string     `json:"player_name"`
	Dice          DiceResult `json:"dice"`
	StartPosition int        `json:"start_position"`
	FinalPosition int        `json:"final_position"`
	MoveType      string     `json:"move_type"`
	Route         []int      `json:"route,omitempty"`
	Selected      []int      `json:"selected,omitempty"`
	DoubleTurn    bool       `json:"double_turn"`
	Won           bool       `json:"won"`
	NextPlayerID  string     `json:"next_player_id,omitempty"`
	Lines         []string   `json:"lines"`

	events     []MoveEvent
	teleported bool
}

// Events returns the turn's move events as a lazy sequence. Every call
// starts again from the first event.
func (r *TurnResult) Events() iter.Seq[MoveEvent] {
	return func(yield func(MoveEvent) bool) {
		for _, ev := range r.events {
			if !yield(ev) {
				return
			}
		}
	}
}

// EventList returns a copy of the turn's move events
func (r *TurnResult) EventList() []MoveEvent {
	out := make([]MoveEvent, len(r.events))
	copy(out, r.events)
	return out
}

// BoardSnapshot is the render-facing view of a board graph
type BoardSnapshot struct {
	Nodes int          `json:"nodes"`
	Edges []Edge       `json:"edges"`
	Links []RandomLink `json:"links"`
}

// PlayerSnapshot is a copy of a player's state
type PlayerSnapshot struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Position int    `json:"position"`
	History  []int  `json:"history"`
}

// GameSnapshot is the state handed to renderers and transports
type GameSnapshot struct {
	Status    Status           `json:"status"`
	Turn      int              `json:"turn"`
	RulesName string           `json:"rules_name"`
	Players   []PlayerSnapshot `json:"players"`
	Queue     []string         `json:"queue"`
	Current   *PlayerSnapshot  `json:"current,omitempty"`
	Winner    *PlayerSnapshot  `json:"winner,omitempty"`
	Links     []RandomLink     `json:"links"`
	LastDice  *DiceResult      `json:"last_dice,omitempty"`
}
