package engine

import (
	"fmt"
	"sort"
)

// ShortcutConstraints bound where random links may be drawn
type ShortcutConstraints struct {
	MinNode         int  `json:"min_node" yaml:"min_node"`
	MaxNode         int  `json:"max_node" yaml:"max_node"`
	MinGap          int  `json:"min_gap" yaml:"min_gap"`
	MaxGap          int  `json:"max_gap" yaml:"max_gap"` // 0 means unbounded
	ExcludeAdjacent bool `json:"exclude_adjacent" yaml:"exclude_adjacent"`
	Bidirectional   bool `json:"bidirectional" yaml:"bidirectional"`
	MaxAttempts     int  `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`
}

// Accepts reports whether the pair a,b satisfies the band and gap limits.
// Duplicate pairs are checked by the generator.
func (c ShortcutConstraints) Accepts(a, b int) bool {
	if a == b {
		return false
	}
	if a < c.MinNode || a > c.MaxNode || b < c.MinNode || b > c.MaxNode {
		return false
	}
	gap := abs(a - b)
	if c.ExcludeAdjacent && gap == 1 {
		return false
	}
	if gap < c.MinGap {
		return false
	}
	if c.MaxGap > 0 && gap > c.MaxGap {
		return false
	}
	return true
}

// Rules parameterize one game: how dice directions are drawn, how routes are
// found and how the board's shortcuts are generated.
type Rules struct {
	Name               string              `json:"name" yaml:"name"`
	Description        string              `json:"description" yaml:"description"`
	DirectionModel     DirectionModel      `json:"direction_model" yaml:"direction_model"`
	ForwardProbability float64             `json:"forward_probability" yaml:"forward_probability"`
	PathMode           PathMode            `json:"path_mode" yaml:"path_mode"`
	PrimeBonusEdges    bool                `json:"prime_bonus_edges" yaml:"prime_bonus_edges"`
	PrimeRouting       bool                `json:"prime_routing" yaml:"prime_routing"`
	TeleportOnPass     bool                `json:"teleport_on_pass" yaml:"teleport_on_pass"`
	Shortcuts          ShortcutConstraints `json:"shortcuts" yaml:"shortcuts"`
	Seed               uint64              `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// RoutesFromPrimes reports whether forward moves starting on a prime node
// follow the shortest route to the goal
func (r *Rules) RoutesFromPrimes() bool {
	return r.DirectionModel == PrimePath || r.PrimeRouting
}

// ValidateRules checks a rule set for correctness
func ValidateRules(rules *Rules) error {
	if rules == nil {
		return fmt.Errorf("%w: rules cannot be nil", ErrInvalidRules)
	}
	if rules.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRules)
	}

	switch rules.DirectionModel {
	case Probabilistic:
		if rules.ForwardProbability < 0 || rules.ForwardProbability > 1 {
			return fmt.Errorf("%w: forward_probability must be between 0 and 1, got %v",
				ErrInvalidRules, rules.ForwardProbability)
		}
	case PrimePath:
	default:
		return fmt.Errorf("%w: unknown direction_model %q", ErrInvalidRules, rules.DirectionModel)
	}

	switch rules.PathMode {
	case BFSPath, WeightedPath:
	default:
		return fmt.Errorf("%w: unknown path_mode %q", ErrInvalidRules, rules.PathMode)
	}

	c := rules.Shortcuts
	if c.MinNode < MinNode || c.MaxNode > GoalNode {
		return fmt.Errorf("%w: shortcut band must lie within %d..%d, got %d..%d",
			ErrInvalidRules, MinNode, GoalNode, c.MinNode, c.MaxNode)
	}
	if c.MaxNode-c.MinNode < 1 {
		return fmt.Errorf("%w: shortcut band %d..%d must span at least two nodes",
			ErrInvalidRules, c.MinNode, c.MaxNode)
	}
	if c.MinGap < 1 {
		return fmt.Errorf("%w: min_gap must be at least 1, got %d", ErrInvalidRules, c.MinGap)
	}
	if c.MaxGap != 0 && c.MaxGap < c.MinGap {
		return fmt.Errorf("%w: max_gap (%d) must be 0 or at least min_gap (%d)",
			ErrInvalidRules, c.MaxGap, c.MinGap)
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("%w: max_attempts cannot be negative", ErrInvalidRules)
	}

	return nil
}

var presets = map[string]func() *Rules{
	"classic": func() *Rules {
		return &Rules{
			Name:               "classic",
			Description:        "70/30 dice direction, weighted routing from prime nodes over prime bonus edges",
			DirectionModel:     Probabilistic,
			ForwardProbability: 0.7,
			PathMode:           WeightedPath,
			PrimeBonusEdges:    true,
			PrimeRouting:       true,
			Shortcuts: ShortcutConstraints{
				MinNode: 6,
				MaxNode: 59,
				MinGap:  4,
				MaxGap:  19,
			},
		}
	},
	"prime_path": func() *Rules {
		return &Rules{
			Name:            "prime_path",
			Description:     "Always forward; prime nodes follow the weighted shortest path to 64",
			DirectionModel:  PrimePath,
			PathMode:        WeightedPath,
			PrimeBonusEdges: true,
			PrimeRouting:    true,
			Shortcuts: ShortcutConstraints{
				MinNode: 6,
				MaxNode: 59,
				MinGap:  4,
				MaxGap:  19,
			},
		}
	},
	"open_board": func() *Rules {
		return &Rules{
			Name:               "open_board",
			Description:        "Links anywhere on the board, both ways, BFS routing",
			DirectionModel:     Probabilistic,
			ForwardProbability: 0.7,
			PathMode:           BFSPath,
			PrimeRouting:       true,
			Shortcuts: ShortcutConstraints{
				MinNode:         MinNode,
				MaxNode:         GoalNode,
				MinGap:          1,
				ExcludeAdjacent: true,
				Bidirectional:   true,
			},
		}
	},
}

// Preset returns a fresh copy of a built-in rule set
func Preset(name string) (*Rules, bool) {
	build, ok := presets[name]
	if !ok {
		return nil, false
	}
	return build(), true
}

// PresetNames lists the built-in rule sets in alphabetical order
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRules returns the classic rule set
func DefaultRules() *Rules {
	rules, _ := Preset("classic")
	return rules
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
