package engine

import (
	"fmt"
	"strings"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Lifecycle
	StartGame(playerCount int, names []string) error
	Reset() error

	// Turns
	Roll() (*TurnResult, error)
	ResolveRoll(dice DiceResult) (*TurnResult, error)

	// State queries
	Status() Status
	Board() BoardSnapshot
	Players() []PlayerSnapshot
	CurrentPlayer() *PlayerSnapshot
	QueueOrder() []PlayerSnapshot
	Winner() *PlayerSnapshot
	Snapshot() GameSnapshot
	Route(from, to int) []int

	// Configuration
	Rules() *Rules

	// Output
	Log() []string
	History() []MoveEvent
}

// GameSession is the mutable state of one game instance
type GameSession struct {
	Board    *BoardGraph
	Players  []*Player
	Queue    []*Player // waiting players, current excluded
	Current  *Player
	Status   Status
	Winner   *Player
	Turn     int
	Log      []string
	History  []MoveEvent
	LastDice *DiceResult
}

// Listener receives the events of a turn, in order, once the turn is resolved
type Listener func(MoveEvent)

// Option configures a GameEngine
type Option func(*GameEngine)

// WithRand replaces the random source used for dice and link generation
func WithRand(rng Rand) Option {
	return func(e *GameEngine) {
		e.rng = rng
	}
}

// WithListener registers a listener for move events
func WithListener(l Listener) Option {
	return func(e *GameEngine) {
		e.listeners = append(e.listeners, l)
	}
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use; callers serialize access.
type GameEngine struct {
	rules     *Rules
	rng       Rand
	finder    PathFinder
	listeners []Listener
	session   *GameSession
	resolving bool
	seq       int
}

// NewEngine creates an engine for the given rules with a freshly drawn board.
// Nil rules select the classic preset.
func NewEngine(rules *Rules, opts ...Option) (*GameEngine, error) {
	if rules == nil {
		rules = DefaultRules()
	}
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}

	e := &GameEngine{
		rules:  rules,
		finder: FinderFor(rules.PathMode),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = NewRand(rules.Seed)
	}

	board, err := BuildBoard(rules, e.rng)
	if err != nil {
		return nil, err
	}
	e.session = newSession(board)
	return e, nil
}

func newSession(board *BoardGraph) *GameSession {
	return &GameSession{
		Board:   board,
		Status:  NotStarted,
		Players: []*Player{},
		Queue:   []*Player{},
		Log:     []string{},
		History: []MoveEvent{},
	}
}

// StartGame draws a new board and seats playerCount players. Blank or missing
// names get a default; extra names are ignored. On error the previous state
// is left untouched.
func (e *GameEngine) StartGame(playerCount int, names []string) error {
	if e.resolving {
		return ErrTurnUnresolved
	}
	if playerCount < MinPlayers || playerCount > MaxPlayers {
		return fmt.Errorf("%w: got %d, want %d-%d", ErrInvalidPlayerCount, playerCount, MinPlayers, MaxPlayers)
	}

	board, err := BuildBoard(e.rules, e.rng)
	if err != nil {
		return err
	}

	s := newSession(board)
	for i := 0; i < playerCount; i++ {
		name := ""
		if i < len(names) {
			name = strings.TrimSpace(names[i])
		}
		if name == "" {
			name = DefaultPlayerName(i + 1)
		}
		s.Players = append(s.Players, NewPlayer(name, PlayerColors[i%len(PlayerColors)]))
	}
	s.Current = s.Players[0]
	s.Queue = append(s.Queue, s.Players[1:]...)
	s.Status = InProgress

	s.Log = append(s.Log, fmt.Sprintf("Game started with %d players (%s rules)", playerCount, e.rules.Name))
	for _, l := range board.Links() {
		s.Log = append(s.Log, l.String())
	}
	s.Log = append(s.Log, "First turn: "+s.Current.Name)

	e.session = s
	e.seq = 0
	return nil
}

// Reset discards the players and draws a new board. The game returns to
// NotStarted. On error the previous state is left untouched.
func (e *GameEngine) Reset() error {
	if e.resolving {
		return ErrTurnUnresolved
	}
	board, err := BuildBoard(e.rules, e.rng)
	if err != nil {
		return err
	}
	e.session = newSession(board)
	e.seq = 0
	return nil
}

// Roll draws dice for the current player and resolves the whole turn
func (e *GameEngine) Roll() (*TurnResult, error) {
	if err := e.checkTurn(); err != nil {
		return nil, err
	}
	return e.resolve(RollDice(e.rng, e.rules)), nil
}

// ResolveRoll resolves a turn for an externally supplied dice result
func (e *GameEngine) ResolveRoll(dice DiceResult) (*TurnResult, error) {
	if err := e.checkTurn(); err != nil {
		return nil, err
	}
	if dice.Value < DiceMin || dice.Value > DiceMax {
		return nil, fmt.Errorf("%w: value %d outside %d-%d", ErrInvalidDice, dice.Value, DiceMin, DiceMax)
	}
	if dice.Direction != Forward && dice.Direction != Backward {
		return nil, fmt.Errorf("%w: unknown direction %q", ErrInvalidDice, dice.Direction)
	}
	return e.resolve(dice), nil
}

func (e *GameEngine) checkTurn() error {
	if e.resolving {
		return ErrTurnUnresolved
	}
	if e.session.Status != InProgress {
		return ErrGameNotInProgress
	}
	return nil
}

// Status returns the lifecycle state
func (e *GameEngine) Status() Status {
	return e.session.Status
}

// Board returns the current board for rendering
func (e *GameEngine) Board() BoardSnapshot {
	return e.session.Board.Snapshot()
}

// Graph returns the live board graph
func (e *GameEngine) Graph() *BoardGraph {
	return e.session.Board
}

// Players returns every seated player in seat order
func (e *GameEngine) Players() []PlayerSnapshot {
	return snapshotAll(e.session.Players)
}

// CurrentPlayer returns the player to move, or nil when no game is running
func (e *GameEngine) CurrentPlayer() *PlayerSnapshot {
	return snapshotOf(e.session.Current)
}

// QueueOrder returns the players waiting after the current one
func (e *GameEngine) QueueOrder() []PlayerSnapshot {
	return snapshotAll(e.session.Queue)
}

// Winner returns the winning player once the game is finished
func (e *GameEngine) Winner() *PlayerSnapshot {
	return snapshotOf(e.session.Winner)
}

// Snapshot returns a copy of the whole game state
func (e *GameEngine) Snapshot() GameSnapshot {
	s := e.session
	queue := make([]string, 0, len(s.Queue))
	for _, p := range s.Queue {
		queue = append(queue, p.ID)
	}

	snap := GameSnapshot{
		Status:    s.Status,
		Turn:      s.Turn,
		RulesName: e.rules.Name,
		Players:   snapshotAll(s.Players),
		Queue:     queue,
		Current:   snapshotOf(s.Current),
		Winner:    snapshotOf(s.Winner),
		Links:     s.Board.Links(),
	}
	if s.LastDice != nil {
		d := *s.LastDice
		snap.LastDice = &d
	}
	return snap
}

// Route runs the configured path finder on the current board
func (e *GameEngine) Route(from, to int) []int {
	return e.finder(e.session.Board, from, to)
}

// Rules returns the engine's rule set
func (e *GameEngine) Rules() *Rules {
	return e.rules
}

// Log returns every log line written since the game started
func (e *GameEngine) Log() []string {
	out := make([]string, len(e.session.Log))
	copy(out, e.session.Log)
	return out
}

// History returns every move event emitted since the game started
func (e *GameEngine) History() []MoveEvent {
	out := make([]MoveEvent, len(e.session.History))
	copy(out, e.session.History)
	return out
}

// Session exposes the live session. Mutating it bypasses the engine's rules.
func (e *GameEngine) Session() *GameSession {
	return e.session
}

func snapshotOf(p *Player) *PlayerSnapshot {
	if p == nil {
		return nil
	}
	snap := p.Snapshot()
	return &snap
}

func snapshotAll(players []*Player) []PlayerSnapshot {
	out := make([]PlayerSnapshot, 0, len(players))
	for _, p := range players {
		out = append(out, p.Snapshot())
	}
	return out
}
