package mcp

import (
	"fmt"
	"strings"

	"github.com/wricardo/snakes-and-ladders/game/engine"
	"github.com/wricardo/snakes-and-ladders/game/service"
)

func formatSessionInfo(session *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\nRules: %s\nCreated: %s\nLast accessed: %s\n",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		session.LastAccessedAt.Format("2006-01-02 15:04:05"))
	if session.State != nil {
		b.WriteString("\n")
		b.WriteString(formatGameState(session.State))
	}
	return b.String()
}

func formatGameState(state *engine.GameSnapshot) string {
	if state == nil {
		return "No state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Status: %s", state.Status)
	if state.Status != engine.NotStarted {
		fmt.Fprintf(&b, " (turn %d)", state.Turn)
	}
	b.WriteString("\n")

	if len(state.Players) > 0 {
		b.WriteString("\nPlayers:\n")
		for _, p := range state.Players {
			marker := "  "
			if state.Current != nil && state.Current.ID == p.ID {
				marker = "▶ "
			}
			fmt.Fprintf(&b, "%s%s (%s) on node %d\n", marker, p.Name, p.Color, p.Position)
		}
	}

	if shared := sharedNodes(state.Players); shared != "" {
		fmt.Fprintf(&b, "Sharing a node: %s\n", shared)
	}

	if state.Current != nil {
		fmt.Fprintf(&b, "\nCurrent player: %s\n", state.Current.Name)
	}
	if state.Winner != nil {
		fmt.Fprintf(&b, "\n🏆 Winner: %s\n", state.Winner.Name)
	}
	if state.LastDice != nil {
		fmt.Fprintf(&b, "Last dice: %s\n", state.LastDice)
	}

	if len(state.Links) > 0 {
		b.WriteString("\nLinks:\n")
		for _, l := range state.Links {
			fmt.Fprintf(&b, "  %s\n", l)
		}
	}
	return b.String()
}

// sharedNodes lists nodes holding more than one player, e.g. "12 (Ann, Bo)"
func sharedNodes(players []engine.PlayerSnapshot) string {
	names := make(map[string]string, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}

	var parts []string
	cells := engine.Occupancy(players)
	for node := engine.MinNode; node <= engine.GoalNode; node++ {
		ids := cells[node]
		if len(ids) < 2 {
			continue
		}
		who := make([]string, len(ids))
		for i, id := range ids {
			who[i] = names[id]
		}
		parts = append(parts, fmt.Sprintf("%d (%s)", node, strings.Join(who, ", ")))
	}
	return strings.Join(parts, "; ")
}

func formatRollResult(result *service.RollResult) string {
	var b strings.Builder
	if result.Message != "" {
		b.WriteString(result.Message)
		b.WriteString("\n")
	}

	if t := result.Turn; t != nil {
		fmt.Fprintf(&b, "\nTurn %d: %s rolled %s (%s move)\n", t.Turn, t.PlayerName, t.Dice, t.MoveType)
		if len(t.Route) > 0 {
			fmt.Fprintf(&b, "Route: %s\n", engine.FormatPath(t.Route))
		}
		if len(t.Selected) > 0 {
			fmt.Fprintf(&b, "Visited: %v\n", t.Selected)
		}
		fmt.Fprintf(&b, "Moved %d -> %d\n", t.StartPosition, t.FinalPosition)
		if t.DoubleTurn {
			b.WriteString("Landed on a multiple of 5: extra turn!\n")
		}
		if t.Won {
			b.WriteString("🎉 Reached 64!\n")
		}
	}

	if len(result.Events) > 0 {
		b.WriteString("\nSteps:\n")
		for _, ev := range result.Events {
			b.WriteString("  " + formatEvent(ev) + "\n")
		}
	}

	if result.State != nil {
		b.WriteString("\n")
		b.WriteString(formatGameState(result.State))
	}
	return b.String()
}

func formatEvent(ev engine.MoveEvent) string {
	line := fmt.Sprintf("#%d %s %s: %d -> %d", ev.Seq, ev.PlayerName, ev.Kind, ev.From, ev.Position)
	if ev.ViaLink != nil {
		line += fmt.Sprintf(" (%s)", ev.ViaLink)
	}
	if ev.DoubleTurn {
		line += " [extra turn]"
	}
	if ev.Won {
		line += " [win]"
	}
	return line
}

func formatBoard(board *engine.BoardSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Board: %d nodes, %d edges\n", board.Nodes, len(board.Edges))

	b.WriteString("\nLinks:\n")
	if len(board.Links) == 0 {
		b.WriteString("  none\n")
	}
	for _, l := range board.Links {
		fmt.Fprintf(&b, "  %s\n", l)
	}

	primes := engine.PrimesUpTo(board.Nodes)
	fmt.Fprintf(&b, "\nPrime nodes (routing starts here): %s\n", strings.Trim(fmt.Sprint(primes), "[]"))

	var bonus []engine.Edge
	for _, e := range board.Edges {
		if e.Kind == engine.PrimeEdge {
			bonus = append(bonus, e)
		}
	}
	if len(bonus) > 0 {
		b.WriteString("\nPrime bonus edges:\n")
		for _, e := range bonus {
			fmt.Fprintf(&b, "  %d -> %d (weight %d)\n", e.From, e.To, e.Weight)
		}
	}
	return b.String()
}

func formatRoute(route *service.RouteResult) string {
	if !route.Reachable {
		return fmt.Sprintf("No route from %d to %d (%s)", route.From, route.To, route.Mode)
	}
	return fmt.Sprintf("Shortest %s route %d -> %d: %s\nHops: %d, Cost: %d",
		route.Mode, route.From, route.To, engine.FormatPath(route.Path), route.Hops, route.Cost)
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d, %d total events):\n\n",
		history.Page, history.TotalPages, history.TotalEvents)

	for _, ev := range history.Events {
		fmt.Fprintf(&b, "Turn %d %s\n", ev.Turn, formatEvent(ev))
	}

	if history.HasNext {
		fmt.Fprintf(&b, "\nMore events on page %d", history.Page+1)
	}
	return b.String()
}
