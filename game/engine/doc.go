// Package engine provides the board graph and turn engine for Snakes & Ladders.
//
// The engine package implements the game mechanics including:
//   - A 64-node track with optional prime bonus edges and random shortcut links
//   - Unweighted (BFS) and weighted (Dijkstra) shortest paths
//   - Dice resolution with probabilistic or prime-path direction models
//   - Forward, routed and backward movement with teleport, double turn and win rules
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameSession holds the mutable state of one game,
// while Rules parameterize the board generator and the dice.
//
// Usage:
//
//	rules, _ := engine.Preset("classic")
//	gameEngine, err := engine.NewEngine(rules)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := gameEngine.StartGame(2, []string{"Ann", "Bo"}); err != nil {
//		log.Fatal(err)
//	}
//
//	turn, err := gameEngine.Roll()
//	for ev := range turn.Events() {
//		fmt.Println(ev.Message)
//	}
//
// Game Rules:
//
// Players start on node 1 and race to node 64. Landing on the start of a
// snake or ladder moves the player to its end. Finishing a forward turn on a
// multiple of 5 grants another turn. Backward rolls replay the player's own
// position history instead of walking the board.
package engine
