// Package config provides rule set management for the Snakes & Ladders game.
//
// The config package handles:
//   - Loading rule sets from JSON or YAML files
//   - Falling back to the built-in presets (classic, prime_path, open_board)
//   - Validating every rule set before it reaches an engine
//   - Saving rule sets submitted through the API
//
// Rule File Format:
//
// A rule file is named after the rule set it defines, e.g. classic.json or
// wide.yaml. A file whose name matches a preset replaces that preset.
//
//	name: wide
//	direction_model: probabilistic   # or prime_path
//	forward_probability: 0.7
//	path_mode: weighted              # or bfs
//	prime_bonus_edges: true
//	prime_routing: true
//	teleport_on_pass: false
//	shortcuts:
//	  min_node: 6
//	  max_node: 59
//	  min_gap: 4
//	  max_gap: 19
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	rules, err := manager.LoadConfig("open_board")
//	configs, err := manager.ListConfigs()
package config
