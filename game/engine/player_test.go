package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlayer(t *testing.T) {
	p := NewPlayer("Ann", PlayerColors[0])

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Ann", p.Name)
	assert.Equal(t, "#F44336", p.Color)
	assert.Equal(t, MinNode, p.Position)
	assert.Equal(t, []int{MinNode}, p.History)
	assert.NotEqual(t, p.ID, NewPlayer("Ann", PlayerColors[0]).ID)
}

func TestPlayer_PushStepClamps(t *testing.T) {
	p := NewPlayer("Ann", "")

	p.PushStep(70)
	assert.Equal(t, GoalNode, p.Position)
	p.PushStep(-4)
	assert.Equal(t, MinNode, p.Position)
	assert.Equal(t, []int{1, 64, 1}, p.History)
}

func TestPlayer_PopStep(t *testing.T) {
	tests := []struct {
		name      string
		history   []int
		pops      int
		wantPops  int
		wantStack []int
	}{
		{"pops within history", []int{1, 4, 7, 9}, 2, 2, []int{1, 4}},
		{"stops at initial entry", []int{1, 4, 7}, 5, 2, []int{1}},
		{"nothing to pop", []int{1}, 3, 0, []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlayer("Bo", "")
			p.History = append([]int(nil), tt.history...)
			p.Position = p.Top()

			popped := 0
			for i := 0; i < tt.pops; i++ {
				if p.PopStep() {
					popped++
				}
			}

			assert.Equal(t, tt.wantPops, popped)
			assert.Equal(t, tt.wantStack, p.History)
			assert.Equal(t, p.Top(), p.Position)
		})
	}
}

func TestPlayer_Snapshot(t *testing.T) {
	p := NewPlayer("Cy", PlayerColors[2])
	p.PushStep(6)

	snap := p.Snapshot()
	require.Equal(t, []int{1, 6}, snap.History)
	snap.History[0] = 99
	assert.Equal(t, 1, p.History[0])
}

func TestDefaultPlayerName(t *testing.T) {
	assert.Equal(t, "Player 3", DefaultPlayerName(3))
}
