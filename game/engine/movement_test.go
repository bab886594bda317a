package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func forward(n int) DiceResult  { return DiceResult{Value: n, Direction: Forward} }
func backward(n int) DiceResult { return DiceResult{Value: n, Direction: Backward} }

// chainRules never routes, so turns starting on a prime walk the chain
func chainRules() *Rules {
	rules := DefaultRules()
	rules.PrimeRouting = false
	return rules
}

func positions(events []MoveEvent) []int {
	out := make([]int, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Position)
	}
	return out
}

func TestForward_SequentialOnBaseChain(t *testing.T) {
	e := newTestEngine(t, nil, NewBaseGraph(false), []string{"Ann", "Bo"})
	ann := e.session.Current

	res, err := e.ResolveRoll(forward(6))
	require.NoError(t, err)

	assert.Equal(t, MoveSequential, res.MoveType)
	assert.Equal(t, []int{2, 3, 4, 5, 6, 7}, positions(res.EventList()))
	assert.Equal(t, 7, res.FinalPosition)
	assert.Equal(t, 7, ann.Position)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, ann.History)
	assert.False(t, res.DoubleTurn)
	assert.Equal(t, "Bo", e.CurrentPlayer().Name)
}

func TestForward_ClampsAndWins(t *testing.T) {
	e := newTestEngine(t, nil, NewBaseGraph(false), []string{"Ann", "Bo"})
	ann := e.session.Current
	place(ann, 1, 60)

	res, err := e.ResolveRoll(forward(6))
	require.NoError(t, err)

	events := res.EventList()
	assert.Equal(t, []int{61, 62, 63, 64}, positions(events))
	assert.True(t, events[len(events)-1].Won)
	assert.True(t, res.Won)
	assert.Equal(t, GoalNode, res.FinalPosition)
	assert.Equal(t, Finished, e.Status())
	require.NotNil(t, e.Winner())
	assert.Equal(t, ann.ID, e.Winner().ID)
	assert.Nil(t, e.CurrentPlayer())
	assert.Empty(t, res.NextPlayerID)
	assert.Contains(t, res.Lines, ">>> Ann reached FINISH (64)! <<<")

	_, err = e.Roll()
	assert.True(t, errors.Is(err, ErrGameNotInProgress))
	_, err = e.ResolveRoll(forward(1))
	assert.True(t, errors.Is(err, ErrGameNotInProgress))
}

func TestForward_LadderTeleport(t *testing.T) {
	board := NewBaseGraph(false)
	board.AddLink(RandomLink{From: 10, To: 20, IsLadder: true}, false)
	e := newTestEngine(t, nil, board, []string{"Ann", "Bo"})
	ann := e.session.Current
	place(ann, 1, 8)

	res, err := e.ResolveRoll(forward(2))
	require.NoError(t, err)

	events := res.EventList()
	require.Len(t, events, 3)
	assert.Equal(t, []int{9, 10, 20}, positions(events))
	assert.Equal(t, TeleportEvent, events[2].Kind)
	assert.True(t, events[2].Teleported)
	require.NotNil(t, events[2].ViaLink)
	assert.Equal(t, 10, events[2].From)
	assert.Equal(t, 20, res.FinalPosition)
	assert.Equal(t, []int{1, 8, 9, 10, 20}, ann.History)
	assert.Contains(t, res.Lines, "Hit Ladder: 10 -> 20")
}

func TestForward_SnakeTeleport(t *testing.T) {
	board := NewBaseGraph(false)
	board.AddLink(RandomLink{From: 33, To: 12}, false)
	e := newTestEngine(t, nil, board, []string{"Ann", "Bo"})
	place(e.session.Current, 1, 30)

	res, err := e.ResolveRoll(forward(3))
	require.NoError(t, err)
	assert.Equal(t, 12, res.FinalPosition)
	assert.Contains(t, res.Lines, "Hit Snake: 33 -> 12")
}

func TestForward_TeleportAppliedOnce(t *testing.T) {
	board := NewBaseGraph(false)
	board.AddLink(RandomLink{From: 10, To: 24, IsLadder: true}, false)
	board.AddLink(RandomLink{From: 24, To: 40, IsLadder: true}, false)
	e := newTestEngine(t, nil, board, []string{"Ann", "Bo"})
	place(e.session.Current, 1, 8)

	res, err := e.ResolveRoll(forward(2))
	require.NoError(t, err)
	assert.Equal(t, 24, res.FinalPosition)

	teleports := 0
	for ev := range res.Events() {
		if ev.Teleported {
			teleports++
		}
	}
	assert.Equal(t, 1, teleports)
}

func TestForward_PassingLinkStart(t *testing.T) {
	board := func() *BoardGraph {
		g := NewBaseGraph(false)
		g.AddLink(RandomLink{From: 10, To: 3}, false)
		return g
	}

	t.Run("landing only", func(t *testing.T) {
		e := newTestEngine(t, nil, board(), []string{"Ann", "Bo"})
		place(e.session.Current, 1, 8)

		res, err := e.ResolveRoll(forward(4))
		require.NoError(t, err)
		assert.Equal(t, []int{9, 10, 11, 12}, positions(res.EventList()))
		assert.Equal(t, 12, res.FinalPosition)
	})

	t.Run("teleport on pass", func(t *testing.T) {
		rules := DefaultRules()
		rules.TeleportOnPass = true
		e := newTestEngine(t, rules, board(), []string{"Ann", "Bo"})
		place(e.session.Current, 1, 8)

		res, err := e.ResolveRoll(forward(4))
		require.NoError(t, err)
		assert.Equal(t, []int{9, 10, 3}, positions(res.EventList()))
		assert.Equal(t, 3, res.FinalPosition)
	})
}

func TestForward_DoubleTurn(t *testing.T) {
	e := newTestEngine(t, chainRules(), NewBaseGraph(false), []string{"Ann", "Bo", "Cy"})
	ann := e.session.Current
	place(ann, 1, 3)
	queueBefore := e.QueueOrder()

	res, err := e.ResolveRoll(forward(2))
	require.NoError(t, err)

	assert.Equal(t, 5, res.FinalPosition)
	assert.True(t, res.DoubleTurn)
	events := res.EventList()
	assert.True(t, events[len(events)-1].DoubleTurn)
	assert.Equal(t, ann.ID, res.NextPlayerID)
	assert.Equal(t, ann.ID, e.CurrentPlayer().ID)
	assert.Equal(t, queueBefore, e.QueueOrder())
	assert.Contains(t, res.Lines, "Extra turn for Ann")

	// the extra turn ends normally and rotates
	res, err = e.ResolveRoll(forward(1))
	require.NoError(t, err)
	assert.False(t, res.DoubleTurn)
	assert.Equal(t, "Bo", e.CurrentPlayer().Name)
	assert.Equal(t, []string{"Cy", "Ann"}, []string{e.QueueOrder()[0].Name, e.QueueOrder()[1].Name})
}

func TestForward_DoubleTurnAfterTeleport(t *testing.T) {
	board := NewBaseGraph(false)
	board.AddLink(RandomLink{From: 9, To: 25, IsLadder: true}, false)
	e := newTestEngine(t, nil, board, []string{"Ann", "Bo"})
	ann := e.session.Current
	place(ann, 1, 6)

	res, err := e.ResolveRoll(forward(3))
	require.NoError(t, err)
	assert.Equal(t, 25, res.FinalPosition)
	assert.True(t, res.DoubleTurn)
	assert.Equal(t, ann.ID, e.CurrentPlayer().ID)
}

func TestForward_PassingMultipleOfFive(t *testing.T) {
	e := newTestEngine(t, nil, NewBaseGraph(false), []string{"Ann", "Bo"})
	place(e.session.Current, 1, 8)

	res, err := e.ResolveRoll(forward(3))
	require.NoError(t, err)
	assert.Equal(t, 11, res.FinalPosition)
	assert.False(t, res.DoubleTurn)
	assert.Equal(t, "Bo", e.CurrentPlayer().Name)
}

func TestBackward_ReplaysHistory(t *testing.T) {
	board := NewBaseGraph(false)
	board.AddLink(RandomLink{From: 4, To: 30, IsLadder: true}, false)
	e := newTestEngine(t, nil, board, []string{"Ann", "Bo"})
	ann := e.session.Current
	place(ann, 1, 4, 7)

	res, err := e.ResolveRoll(backward(5))
	require.NoError(t, err)

	assert.Equal(t, MoveBacktrack, res.MoveType)
	events := res.EventList()
	assert.Equal(t, []int{4, 1}, positions(events))
	for _, ev := range events {
		assert.Equal(t, BacktrackEvent, ev.Kind)
		assert.False(t, ev.Teleported)
	}
	assert.Equal(t, 1, res.FinalPosition)
	assert.Equal(t, []int{1}, ann.History)
	assert.Equal(t, "Bo", e.CurrentPlayer().Name)
}

func TestBackward_PopsExactly(t *testing.T) {
	tests := []struct {
		name     string
		history  []int
		value    int
		wantPops int
	}{
		{"fewer than history", []int{1, 2, 3, 4, 5, 6, 7, 8}, 3, 3},
		{"equal to history", []int{1, 2, 3}, 2, 2},
		{"underflow", []int{1, 4, 7}, 5, 2},
		{"only initial entry", []int{1}, 6, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, nil, NewBaseGraph(false), []string{"Ann", "Bo"})
			ann := e.session.Current
			place(ann, tt.history...)

			res, err := e.ResolveRoll(backward(tt.value))
			require.NoError(t, err)
			assert.Len(t, res.EventList(), tt.wantPops)
			assert.Len(t, ann.History, len(tt.history)-tt.wantPops)
			assert.Equal(t, ann.Top(), ann.Position)
		})
	}
}

func TestBackward_NoDoubleTurnOrTeleport(t *testing.T) {
	board := NewBaseGraph(false)
	board.AddLink(RandomLink{From: 10, To: 2}, false)
	e := newTestEngine(t, nil, board, []string{"Ann", "Bo"})
	place(e.session.Current, 1, 10, 12)

	res, err := e.ResolveRoll(backward(1))
	require.NoError(t, err)
	assert.Equal(t, 10, res.FinalPosition)
	assert.False(t, res.DoubleTurn)
	assert.Equal(t, "Bo", e.CurrentPlayer().Name)
}

func TestForward_RouteFromPrime(t *testing.T) {
	rules, _ := Preset("prime_path")
	e := newTestEngine(t, rules, NewBaseGraph(true), []string{"Ann", "Bo"})
	ann := e.session.Current
	place(ann, 1, 13)

	res, err := e.ResolveRoll(forward(4))
	require.NoError(t, err)

	assert.Equal(t, MoveRoute, res.MoveType)
	assert.Equal(t, e.Route(13, GoalNode), res.Route)
	require.NotEmpty(t, res.Selected)
	assert.Equal(t, 13, res.Selected[0])
	assert.LessOrEqual(t, len(res.Selected), 5)

	// selected nodes appear on the route in increasing order
	last := -1
	for _, n := range res.Selected {
		idx := indexOf(res.Route, n)
		require.GreaterOrEqual(t, idx, 0, "%d not on route", n)
		assert.Greater(t, idx, last)
		last = idx
	}

	assert.Equal(t, res.Selected[1:], positions(res.EventList()))
	assert.Equal(t, res.Selected[len(res.Selected)-1], res.FinalPosition)

	// the last pick is always the route's end
	assert.Equal(t, GoalNode, res.FinalPosition)
	assert.True(t, res.Won)
}

func TestForward_RouteUsesShortcut(t *testing.T) {
	rules, _ := Preset("prime_path")
	board := NewBaseGraph(false)
	board.AddLink(RandomLink{From: 13, To: 40, IsLadder: true}, false)
	e := newTestEngine(t, rules, board, []string{"Ann", "Bo"})
	place(e.session.Current, 1, 13)

	res, err := e.ResolveRoll(forward(3))
	require.NoError(t, err)

	assert.Equal(t, []int{13, 40, 47, 64}, res.Selected)
	events := res.EventList()
	require.NotNil(t, events[0].ViaLink)
	assert.Equal(t, 40, events[0].ViaLink.To)
	assert.True(t, res.Won)
	assert.Equal(t, Finished, e.Status())
}

func TestForward_RouteFallsBackWhenUnreachable(t *testing.T) {
	rules, _ := Preset("prime_path")
	e := newTestEngine(t, rules, emptyGraph(), []string{"Ann", "Bo"})
	place(e.session.Current, 1, 13)

	res, err := e.ResolveRoll(forward(3))
	require.NoError(t, err)
	assert.Equal(t, MoveSequential, res.MoveType)
	assert.Equal(t, 16, res.FinalPosition)
	assert.Empty(t, res.Route)
}

func TestForward_NoRoutingWhenDisabled(t *testing.T) {
	rules := DefaultRules()
	rules.PrimeRouting = false
	e := newTestEngine(t, rules, NewBaseGraph(true), []string{"Ann", "Bo"})
	place(e.session.Current, 1, 13)

	res, err := e.ResolveRoll(forward(4))
	require.NoError(t, err)
	assert.Equal(t, MoveSequential, res.MoveType)
	assert.Equal(t, 17, res.FinalPosition)
}

func TestSelectRouteNodes(t *testing.T) {
	twenty := make([]int, 20)
	for i := range twenty {
		twenty[i] = 13 + i
	}

	shortcutRoute := []int{13}
	for n := 40; n <= 64; n++ {
		shortcutRoute = append(shortcutRoute, n)
	}

	tests := []struct {
		name  string
		route []int
		value int
		links []RandomLink
		want  []int
	}{
		{"empty route", nil, 3, nil, nil},
		{"single node", []int{64}, 3, nil, []int{64}},
		{"route within dice", []int{60, 61, 62, 63, 64}, 6, nil, []int{60, 61, 62, 63, 64}},
		{"even spread", twenty, 4, nil, []int{13, 18, 23, 27, 32}},
		{"shortcut before first pick", shortcutRoute, 3, []RandomLink{{From: 13, To: 40, IsLadder: true}}, []int{13, 40, 47, 64}},
		{"shortcut past next pick", twenty, 4, []RandomLink{{From: 18, To: 25, IsLadder: true}}, []int{13, 18, 25, 27, 32}},
		{"shortcut skipping picks", twenty, 4, []RandomLink{{From: 13, To: 29, IsLadder: true}}, []int{13, 29, 32}},
		{"backward link ignored", twenty, 4, []RandomLink{{From: 23, To: 14}}, []int{13, 18, 23, 27, 32}},
		{"link off route ignored", twenty, 4, []RandomLink{{From: 18, To: 50, IsLadder: true}}, []int{13, 18, 23, 27, 32}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectRouteNodes(tt.route, tt.value, tt.links)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), tt.value+1)
		})
	}
}

func TestEvents_Restartable(t *testing.T) {
	e := newTestEngine(t, nil, NewBaseGraph(false), []string{"Ann", "Bo"})
	res, err := e.ResolveRoll(forward(4))
	require.NoError(t, err)

	var first, second []int
	for ev := range res.Events() {
		first = append(first, ev.Position)
	}
	for ev := range res.Events() {
		second = append(second, ev.Position)
		if len(second) == 2 {
			break
		}
	}
	assert.Equal(t, []int{2, 3, 4, 5}, first)
	assert.Equal(t, []int{2, 3}, second)
}

func TestEvents_OrderedAcrossTurns(t *testing.T) {
	e := newTestEngine(t, nil, NewBaseGraph(false), []string{"Ann", "Bo"})
	for _, d := range []DiceResult{forward(2), forward(3), backward(1), forward(1)} {
		_, err := e.ResolveRoll(d)
		require.NoError(t, err)
	}

	history := e.History()
	require.NotEmpty(t, history)
	for i := 1; i < len(history); i++ {
		assert.Equal(t, history[i-1].Seq+1, history[i].Seq)
		assert.GreaterOrEqual(t, history[i].Turn, history[i-1].Turn)
	}
}

func TestRandomGames_Invariants(t *testing.T) {
	for _, name := range PresetNames() {
		rules, _ := Preset(name)
		t.Run(name, func(t *testing.T) {
			for seed := uint64(1); seed <= 25; seed++ {
				e, err := NewEngine(rules, WithRand(NewRand(seed)))
				require.NoError(t, err)
				require.NoError(t, e.StartGame(4, nil))

				for turn := 0; turn < 3000 && e.Status() == InProgress; turn++ {
					res, err := e.Roll()
					require.NoError(t, err)

					for _, p := range e.session.Players {
						require.GreaterOrEqual(t, p.Position, MinNode)
						require.LessOrEqual(t, p.Position, GoalNode)
						require.NotEmpty(t, p.History)
						require.Equal(t, p.Top(), p.Position)
					}

					if res.Won {
						require.Equal(t, GoalNode, res.FinalPosition)
						require.Equal(t, Finished, e.Status())
						require.Nil(t, e.CurrentPlayer())
						continue
					}
					require.NotNil(t, e.CurrentPlayer())
					require.Len(t, e.QueueOrder(), 3)
					if res.DoubleTurn {
						require.Equal(t, res.PlayerID, e.CurrentPlayer().ID)
						require.Zero(t, res.FinalPosition%DoubleTurnDivisor)
					}
				}
			}
		})
	}
}

func indexOf(xs []int, x int) int {
	for i, v := range xs {
		if v == x {
			return i
		}
	}
	return -1
}
