package engine

import (
	"fmt"
	"math"
)

const logSeparator = "--------------------------------"

// resolve applies one dice result to the current player. The turn is resolved
// in full before any listener sees its events.
func (e *GameEngine) resolve(dice DiceResult) *TurnResult {
	e.resolving = true
	defer func() { e.resolving = false }()

	s := e.session
	s.Turn++
	d := dice
	s.LastDice = &d

	p := s.Current
	res := &TurnResult{
		Turn:          s.Turn,
		PlayerID:      p.ID,
		PlayerName:    p.Name,
		Dice:          dice,
		StartPosition: p.Position,
	}
	res.logf("%s", logSeparator)
	res.logf("Player: %s", p.Name)
	res.logf("Dice: %s", dice)

	if dice.Direction == Backward {
		e.moveBackward(res, p, dice.Value)
	} else {
		e.moveForward(res, p, dice.Value)
	}

	e.finishTurn(res, p)

	s.Log = append(s.Log, res.Lines...)
	s.History = append(s.History, res.events...)
	for _, ev := range res.events {
		for _, l := range e.listeners {
			l(ev)
		}
	}
	return res
}

// moveForward walks the player forward, along the shortest route when the
// turn starts on a prime node and the rules allow it, then applies the
// landing teleport.
func (e *GameEngine) moveForward(res *TurnResult, p *Player, value int) {
	routed := false
	if e.rules.RoutesFromPrimes() && IsPrime(p.Position) {
		routed = e.moveRoute(res, p, value)
	}
	if !routed {
		e.moveSequential(res, p, value)
	}

	if p.Position != GoalNode && !res.teleported {
		e.teleport(res, p)
	}
}

// moveSequential advances one node per step, stopping on the goal
func (e *GameEngine) moveSequential(res *TurnResult, p *Player, value int) {
	res.MoveType = MoveSequential
	target := min(GoalNode, p.Position+value)
	res.logf("Move type: NORMAL MOVE")
	res.logf("Path: %d -> %d", p.Position, target)

	for step := 1; p.Position < target; step++ {
		from := p.Position
		p.PushStep(from + 1)
		res.logf("Step %d: node %d", step, p.Position)
		e.emit(res, p, StepEvent, from, nil)

		if p.Position == GoalNode {
			return
		}
		if e.rules.TeleportOnPass && e.teleport(res, p) {
			return
		}
	}
}

// moveRoute follows selected nodes of the shortest route to the goal. It
// reports false, leaving the player untouched, when no usable route exists.
func (e *GameEngine) moveRoute(res *TurnResult, p *Player, value int) bool {
	board := e.session.Board
	route := e.finder(board, p.Position, GoalNode)
	if len(route) <= 1 {
		res.logf("No route from prime node %d, moving sequentially", p.Position)
		return false
	}

	selected := SelectRouteNodes(route, value, board.Links())
	res.MoveType = MoveRoute
	res.Route = route
	res.Selected = selected
	res.logf("Move type: SHORTEST PATH (prime node)")
	res.logf("Prime node at %d: using shortest path to %d", p.Position, GoalNode)
	res.logf("Shortest path: %s", FormatPath(route))
	res.logf("Visited nodes this turn: %s", FormatPath(selected))

	usedLink := false
	for i := 1; i < len(selected); i++ {
		from := p.Position
		p.PushStep(selected[i])

		var via *RandomLink
		if l, ok := board.LinkBetween(from, p.Position); ok {
			via = &l
			usedLink = true
		}

		line := fmt.Sprintf("Path step %d: node %d", i, p.Position)
		if via != nil {
			line += fmt.Sprintf(" (via %s)", via.kind())
		}
		if IsPrime(p.Position) {
			line += " (prime)"
		}
		res.logf("%s", line)
		e.emit(res, p, StepEvent, from, via)

		if p.Position == GoalNode {
			break
		}
	}
	if usedLink {
		res.logf("Shortest path used ladders or snakes as shortcuts")
	}
	return true
}

// moveBackward replays history: it pops up to value entries and never
// looks at links.
func (e *GameEngine) moveBackward(res *TurnResult, p *Player, value int) {
	res.MoveType = MoveBacktrack
	res.logf("Move type: BACKTRACK")

	popped := 0
	for popped < value {
		from := p.Position
		if !p.PopStep() {
			break
		}
		popped++
		res.logf("Back %d: node %d", popped, p.Position)
		e.emit(res, p, BacktrackEvent, from, nil)
	}
	if popped == 0 {
		res.logf("No history to replay, staying on %d", p.Position)
	}
}

// teleport moves the player along a link departing the current node
func (e *GameEngine) teleport(res *TurnResult, p *Player) bool {
	link, ok := e.session.Board.LinkFrom(p.Position)
	if !ok {
		return false
	}
	from := p.Position
	p.PushStep(link.To)
	res.teleported = true
	res.logf("Hit %s", link)
	e.emit(res, p, TeleportEvent, from, &link)
	return true
}

// finishTurn settles win, double turn and rotation
func (e *GameEngine) finishTurn(res *TurnResult, p *Player) {
	s := e.session
	res.FinalPosition = p.Position
	res.logf("Final position this turn: %d", p.Position)

	if res.Dice.Direction == Forward && p.Position == GoalNode {
		res.Won = true
		s.Status = Finished
		s.Winner = p
		s.Current = nil
		res.logf(">>> %s reached FINISH (%d)! <<<", p.Name, GoalNode)
		return
	}

	if res.Dice.Direction == Forward && p.Position%DoubleTurnDivisor == 0 {
		res.DoubleTurn = true
		if n := len(res.events); n > 0 {
			res.events[n-1].DoubleTurn = true
		}
		res.logf("Extra turn for %s", p.Name)
		s.Queue = append([]*Player{p}, s.Queue...)
	} else {
		s.Queue = append(s.Queue, p)
	}

	s.Current = s.Queue[0]
	s.Queue = s.Queue[1:]
	res.NextPlayerID = s.Current.ID
	res.logf("Next turn: %s", s.Current.Name)
}

// emit records a move event for the player's current position
func (e *GameEngine) emit(res *TurnResult, p *Player, kind EventKind, from int, via *RandomLink) {
	e.seq++
	ev := MoveEvent{
		Seq:        e.seq,
		Turn:       res.Turn,
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Kind:       kind,
		From:       from,
		Position:   p.Position,
		Teleported: kind == TeleportEvent,
		Won:        kind != BacktrackEvent && p.Position == GoalNode,
		ViaLink:    via,
	}
	switch {
	case kind == TeleportEvent:
		ev.Message = fmt.Sprintf("%s hit %s", p.Name, via)
	case kind == BacktrackEvent:
		ev.Message = fmt.Sprintf("%s backs up to %d", p.Name, p.Position)
	case via != nil:
		ev.Message = fmt.Sprintf("%s takes %s", p.Name, via)
	default:
		ev.Message = fmt.Sprintf("%s moves to %d", p.Name, p.Position)
	}
	res.events = append(res.events, ev)
}

// SelectRouteNodes picks the nodes visited on a routed turn. The result starts
// with route[0] and holds at most value further nodes spread evenly along the
// route; a link departing a selected node toward a later route node is taken
// in place of the ordinary pick. The whole route is returned when it is no
// longer than value steps.
func SelectRouteNodes(route []int, value int, links []RandomLink) []int {
	if len(route) == 0 {
		return nil
	}
	if len(route) == 1 || value <= 0 {
		return []int{route[0]}
	}
	last := len(route) - 1
	if last <= value {
		out := make([]int, len(route))
		copy(out, route)
		return out
	}

	stepSize := float64(last) / float64(value)
	idx := []int{0}
	for i := 1; i <= value; i++ {
		j := min(last, int(math.Round(float64(i)*stepSize)))
		if j > idx[len(idx)-1] {
			idx = append(idx, j)
		}
	}

	at := make(map[int]int, len(route))
	for i, n := range route {
		if _, seen := at[n]; !seen {
			at[n] = i
		}
	}

	for i := 0; i < len(idx)-1; i++ {
		for _, l := range links {
			if l.From != route[idx[i]] {
				continue
			}
			t, ok := at[l.To]
			if !ok || t <= idx[i] || t == idx[i+1] || containsInt(idx, t) {
				continue
			}
			if t < idx[i+1] {
				idx = insertAt(idx, i+1, t)
				if len(idx) > value+1 {
					idx = append(idx[:len(idx)-2], idx[len(idx)-1])
				}
			} else {
				k := i + 1
				for k < len(idx) && idx[k] <= t {
					k++
				}
				idx = append(append(idx[:i+1:i+1], t), idx[k:]...)
			}
			break
		}
	}

	out := make([]int, len(idx))
	for i, j := range idx {
		out[i] = route[j]
	}
	return out
}

func (l RandomLink) kind() string {
	if l.IsLadder {
		return "Ladder"
	}
	return "Snake"
}

func (r *TurnResult) logf(format string, args ...any) {
	r.Lines = append(r.Lines, fmt.Sprintf(format, args...))
}
