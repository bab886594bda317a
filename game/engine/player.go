package engine

import (
	"fmt"

	"github.com/google/uuid"
)

// PlayerColors is the token palette, one per seat
var PlayerColors = []string{
	"#F44336",
	"#1E88E5",
	"#43A047",
	"#8E24AA",
	"#FBC02D",
	"#FF7043",
}

// Player is one participant. History is a stack of visited positions whose
// top is always the current position.
type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Position int    `json:"position"`
	History  []int  `json:"history"`
}

// NewPlayer creates a player standing on node 1
func NewPlayer(name, color string) *Player {
	return &Player{
		ID:       uuid.NewString(),
		Name:     name,
		Color:    color,
		Position: MinNode,
		History:  []int{MinNode},
	}
}

// DefaultPlayerName returns the substitute name for seat i (1-based)
func DefaultPlayerName(i int) string {
	return fmt.Sprintf("Player %d", i)
}

// PushStep moves the player to pos and records it
func (p *Player) PushStep(pos int) {
	pos = max(MinNode, min(GoalNode, pos))
	p.History = append(p.History, pos)
	p.Position = pos
}

// PopStep undoes the latest step. The initial entry is never removed.
func (p *Player) PopStep() bool {
	if len(p.History) <= 1 {
		return false
	}
	p.History = p.History[:len(p.History)-1]
	p.Position = p.Top()
	return true
}

// Top returns the newest history entry
func (p *Player) Top() int {
	return p.History[len(p.History)-1]
}

// Snapshot copies the player's state
func (p *Player) Snapshot() PlayerSnapshot {
	history := make([]int, len(p.History))
	copy(history, p.History)
	return PlayerSnapshot{
		ID:       p.ID,
		Name:     p.Name,
		Color:    p.Color,
		Position: p.Position,
		History:  history,
	}
}
