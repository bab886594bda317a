// Command validate checks rule set files in the configs directory. For every
// *.json, *.yaml and *.yml file it checks:
//   - The file parses and passes rules validation
//   - The shortcut band admits enough distinct node pairs for a board
//   - A run of seeded board builds never exhausts link generation
//
// With --presets the built-in rule sets are checked as well.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/snakes-and-ladders/game/config"
	"github.com/wricardo/snakes-and-ladders/game/engine"
)

const defaultProbes = 50

// ValidationResult captures the outcome of validating a single rule set.
// If Valid is true, Messages holds informational lines; otherwise it
// accumulates the problems that were found.
type ValidationResult struct {
	File     string
	Valid    bool
	Messages []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Messages = append(r.Messages, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Messages = append(r.Messages, "✓ "+fmt.Sprintf(format, args...))
}

// validateFile loads and validates one rule file
func validateFile(path string, probes int) ValidationResult {
	data, err := os.ReadFile(path)
	if err != nil {
		result := ValidationResult{File: filepath.Base(path)}
		result.fail("Failed to read file: %v", err)
		return result
	}

	rules, err := config.ParseRules(data, filepath.Ext(path))
	if err != nil {
		result := ValidationResult{File: filepath.Base(path)}
		result.fail("%v", err)
		return result
	}
	if rules.Name == "" {
		rules.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return validateRules(filepath.Base(path), rules, probes)
}

// validateRules runs rules validation followed by the generation checks
func validateRules(label string, rules *engine.Rules, probes int) ValidationResult {
	result := ValidationResult{File: label, Valid: true, Messages: []string{}}

	if err := engine.ValidateRules(rules); err != nil {
		result.fail("%v", err)
		return result
	}

	pairs := candidatePairs(rules.Shortcuts)
	if pairs < engine.LinkCount {
		result.fail("Shortcut band admits %d distinct pairs, need at least %d", pairs, engine.LinkCount)
		return result
	}

	failures, ladders, snakes := probeGeneration(rules, probes)
	if failures > 0 {
		result.fail("Link generation exhausted on %d of %d seeded boards", failures, probes)
		return result
	}

	result.info("Name: %s", rules.Name)
	result.info("Direction: %s, routing: %s", rules.DirectionModel, rules.PathMode)
	result.info("Shortcut band: %d..%d, gap %d..%s",
		rules.Shortcuts.MinNode, rules.Shortcuts.MaxNode, rules.Shortcuts.MinGap, maxGapLabel(rules.Shortcuts.MaxGap))
	result.info("Candidate pairs: %d", pairs)
	if probes > 0 {
		result.info("Boards built: %d (ladders %d, snakes %d)", probes, ladders, snakes)
	}
	return result
}

// candidatePairs counts the unordered node pairs the generator may draw
func candidatePairs(c engine.ShortcutConstraints) int {
	count := 0
	for a := c.MinNode; a <= c.MaxNode; a++ {
		for b := a + 1; b <= c.MaxNode; b++ {
			if c.Accepts(a, b) || c.Accepts(b, a) {
				count++
			}
		}
	}
	return count
}

// probeGeneration builds boards with seeds 1..probes and tallies the links
func probeGeneration(rules *engine.Rules, probes int) (failures, ladders, snakes int) {
	for seed := 1; seed <= probes; seed++ {
		board, err := engine.BuildBoard(rules, engine.NewRand(uint64(seed)))
		if err != nil {
			failures++
			continue
		}
		for _, l := range board.Links() {
			if l.IsLadder {
				ladders++
			} else {
				snakes++
			}
		}
	}
	return failures, ladders, snakes
}

func maxGapLabel(gap int) string {
	if gap == 0 {
		return "any"
	}
	return fmt.Sprint(gap)
}

// collect validates every rule file in dir, plus the presets when asked
func collect(dir string, presets bool, probes int) ([]ValidationResult, error) {
	var results []ValidationResult

	if presets {
		for _, name := range engine.PresetNames() {
			rules, _ := engine.Preset(name)
			results = append(results, validateRules("preset:"+name, rules, probes))
		}
	}

	if dir == "" {
		return results, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		for _, known := range config.Extensions {
			if ext == known {
				results = append(results, validateFile(filepath.Join(dir, entry.Name()), probes))
				break
			}
		}
	}
	return results, nil
}

func report(results []ValidationResult) bool {
	allValid := true
	for _, result := range results {
		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Messages {
				fmt.Println("  " + info)
			}
			continue
		}

		fmt.Println("❌ INVALID")
		allValid = false
		for _, msg := range result.Messages {
			if !strings.HasPrefix(msg, "✓") {
				fmt.Println("  ❌ " + msg)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All rule sets are valid!")
	} else {
		fmt.Println("❌ Some rule sets have errors")
	}
	return allValid
}

func main() {
	cmd := &cli.Command{
		Name:  "validate",
		Usage: "check Snakes & Ladders rule set files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Value: "configs",
				Usage: "directory holding rule files",
			},
			&cli.IntFlag{
				Name:  "probes",
				Value: defaultProbes,
				Usage: "seeded boards to build per rule set",
			},
			&cli.BoolFlag{
				Name:  "presets",
				Usage: "also validate the built-in rule sets",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			results, err := collect(cmd.String("dir"), cmd.Bool("presets"), cmd.Int("probes"))
			if err != nil {
				return err
			}
			if !report(results) {
				return cli.Exit("", 1)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
