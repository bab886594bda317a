// Command analyze prints quick, human-readable heuristics about rule sets.
// For every preset (or every file in a configs directory) it builds a run of
// seeded boards and summarizes link counts, the ladder/snake split, route
// lengths from the start node to the goal and how often generation fails.
// With --games it also plays seeded two-player games to completion.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/snakes-and-ladders/game/config"
	"github.com/wricardo/snakes-and-ladders/game/engine"
)

const maxSimulatedTurns = 5000

// BoardStats summarizes the boards built for one rule set
type BoardStats struct {
	Name     string
	Boards   int
	Failures int
	Ladders  int
	Snakes   int

	MeanHops    float64 // BFS edge count from MinNode to GoalNode
	MeanCost    float64 // Dijkstra weight from MinNode to GoalNode
	MinHops     int
	MaxHops     int
	Unreachable int
}

// GameStats summarizes simulated games for one rule set
type GameStats struct {
	Games     int
	Finished  int
	MeanTurns float64
	MaxTurns  int
}

// LadderRatio is the share of links that climb
func (s BoardStats) LadderRatio() float64 {
	if s.Ladders+s.Snakes == 0 {
		return 0
	}
	return float64(s.Ladders) / float64(s.Ladders+s.Snakes)
}

// analyzeBoards builds one board per seed in 1..seeds
func analyzeBoards(rules *engine.Rules, seeds int) BoardStats {
	stats := BoardStats{Name: rules.Name, MinHops: -1}
	totalHops, totalCost, routed := 0, 0, 0

	for seed := 1; seed <= seeds; seed++ {
		board, err := engine.BuildBoard(rules, engine.NewRand(uint64(seed)))
		if err != nil {
			stats.Failures++
			continue
		}
		stats.Boards++

		for _, l := range board.Links() {
			if l.IsLadder {
				stats.Ladders++
			} else {
				stats.Snakes++
			}
		}

		path := engine.ShortestPath(board, engine.MinNode, engine.GoalNode)
		if path == nil {
			stats.Unreachable++
			continue
		}
		hops := len(path) - 1
		cost, _ := engine.PathLength(board, engine.WeightedShortestPath(board, engine.MinNode, engine.GoalNode))

		totalHops += hops
		totalCost += cost
		routed++
		if stats.MinHops < 0 || hops < stats.MinHops {
			stats.MinHops = hops
		}
		if hops > stats.MaxHops {
			stats.MaxHops = hops
		}
	}

	if routed > 0 {
		stats.MeanHops = float64(totalHops) / float64(routed)
		stats.MeanCost = float64(totalCost) / float64(routed)
	}
	if stats.MinHops < 0 {
		stats.MinHops = 0
	}
	return stats
}

// simulateGames plays two-player games with seeds 1..games
func simulateGames(rules *engine.Rules, games int) (GameStats, error) {
	stats := GameStats{Games: games}
	totalTurns := 0

	for seed := 1; seed <= games; seed++ {
		e, err := engine.NewEngine(rules, engine.WithRand(engine.NewRand(uint64(seed))))
		if err != nil {
			return stats, err
		}
		if err := e.StartGame(engine.MinPlayers, nil); err != nil {
			return stats, err
		}

		turns := 0
		for e.Status() == engine.InProgress && turns < maxSimulatedTurns {
			if _, err := e.Roll(); err != nil {
				return stats, err
			}
			turns++
		}
		if e.Status() != engine.Finished {
			continue
		}

		stats.Finished++
		totalTurns += turns
		if turns > stats.MaxTurns {
			stats.MaxTurns = turns
		}
	}

	if stats.Finished > 0 {
		stats.MeanTurns = float64(totalTurns) / float64(stats.Finished)
	}
	return stats, nil
}

// loadRuleSets returns the presets, or every valid rule file in dir
func loadRuleSets(dir string) ([]*engine.Rules, error) {
	if dir == "" {
		var sets []*engine.Rules
		for _, name := range engine.PresetNames() {
			rules, _ := engine.Preset(name)
			sets = append(sets, rules)
		}
		return sets, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var sets []*engine.Rules
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || !isRuleFile(ext) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			fmt.Printf("Error reading %s: %v\n", entry.Name(), err)
			continue
		}
		rules, err := config.ParseRules(data, ext)
		if err != nil {
			fmt.Printf("Skipping %s: %v\n", entry.Name(), err)
			continue
		}
		if rules.Name == "" {
			rules.Name = strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		}
		if err := engine.ValidateRules(rules); err != nil {
			fmt.Printf("Skipping %s: %v\n", entry.Name(), err)
			continue
		}
		sets = append(sets, rules)
	}

	sort.Slice(sets, func(i, j int) bool { return sets[i].Name < sets[j].Name })
	return sets, nil
}

func isRuleFile(ext string) bool {
	for _, known := range config.Extensions {
		if ext == known {
			return true
		}
	}
	return false
}

func printBoardStats(s BoardStats) {
	fmt.Printf("Boards built: %d\n", s.Boards)
	if s.Failures > 0 {
		fmt.Printf("⚠️  WARNING: link generation exhausted on %d seeds\n", s.Failures)
	}
	if s.Boards == 0 {
		return
	}
	fmt.Printf("Links: %d ladders, %d snakes (%.0f%% ladders)\n", s.Ladders, s.Snakes, s.LadderRatio()*100)
	fmt.Printf("Route %d -> %d: %.1f hops on average (min %d, max %d)\n",
		engine.MinNode, engine.GoalNode, s.MeanHops, s.MinHops, s.MaxHops)
	fmt.Printf("Weighted route cost: %.1f on average\n", s.MeanCost)
	if s.Unreachable > 0 {
		fmt.Printf("⚠️  CRITICAL: goal unreachable on %d boards\n", s.Unreachable)
	} else {
		fmt.Printf("✅ Goal reachable on every board\n")
	}
}

func printGameStats(s GameStats) {
	fmt.Printf("Games finished: %d of %d\n", s.Finished, s.Games)
	if s.Finished > 0 {
		fmt.Printf("Turns to win: %.1f on average, %d at most\n", s.MeanTurns, s.MaxTurns)
	}
	if s.Finished < s.Games {
		fmt.Printf("⚠️  WARNING: %d games still running after %d turns\n", s.Games-s.Finished, maxSimulatedTurns)
	}
}

func run(dir string, seeds, games int) error {
	sets, err := loadRuleSets(dir)
	if err != nil {
		return err
	}

	for _, rules := range sets {
		fmt.Printf("\n=== Analyzing %s ===\n", rules.Name)
		fmt.Printf("Direction: %s, routing: %s\n", rules.DirectionModel, rules.PathMode)
		printBoardStats(analyzeBoards(rules, seeds))

		if games > 0 {
			stats, err := simulateGames(rules, games)
			if err != nil {
				fmt.Printf("Error simulating games: %v\n", err)
				continue
			}
			printGameStats(stats)
		}
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "summarize boards and games produced by rule sets",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Usage: "analyze rule files in this directory instead of the presets",
			},
			&cli.IntFlag{
				Name:  "seeds",
				Value: 200,
				Usage: "seeded boards to build per rule set",
			},
			&cli.IntFlag{
				Name:  "games",
				Value: 0,
				Usage: "seeded two-player games to simulate per rule set",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(cmd.String("dir"), cmd.Int("seeds"), cmd.Int("games"))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
