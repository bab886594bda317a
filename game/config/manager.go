package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/snakes-and-ladders/game/engine"
	"github.com/wricardo/snakes-and-ladders/game/service"
	"gopkg.in/yaml.v3"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// Extensions lists the rule file formats the manager reads, in lookup order
var Extensions = []string{".json", ".yaml", ".yml"}

// Manager loads rule sets from a directory of JSON or YAML files. The
// built-in presets are always available; a file with the same name
// overrides its preset.
type Manager struct {
	configDir    string
	defaultRules *engine.Rules
	configs      map[string]*engine.Rules
	mu           sync.RWMutex
}

// NewManager creates a new configuration manager. An empty configDir serves
// the built-in presets only.
func NewManager(configDir string) (*Manager, error) {
	if configDir != "" {
		if _, err := os.Stat(configDir); os.IsNotExist(err) {
			return nil, fmt.Errorf("config directory does not exist: %s", configDir)
		}
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.Rules),
	}

	if err := m.loadDefault(); err != nil {
		return nil, fmt.Errorf("failed to load default rules: %w", err)
	}
	return m, nil
}

// LoadConfig loads a rule set by name. Callers get their own copy.
func (m *Manager) LoadConfig(name string) (*engine.Rules, error) {
	name = trimExt(name)
	if !validName(name) {
		return nil, fmt.Errorf("%w: bad config name %q", ErrInvalidConfig, name)
	}

	m.mu.RLock()
	cached, exists := m.configs[name]
	m.mu.RUnlock()
	if exists {
		return clone(cached), nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if cached, exists := m.configs[name]; exists {
		return clone(cached), nil
	}

	rules, err := m.readFile(name)
	if errors.Is(err, ErrConfigNotFound) {
		preset, ok := engine.Preset(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, name)
		}
		rules, err = preset, nil
	}
	if err != nil {
		return nil, err
	}

	m.configs[name] = rules
	return clone(rules), nil
}

// readFile finds and parses <name>.{json,yaml,yml} in the config directory
func (m *Manager) readFile(name string) (*engine.Rules, error) {
	if m.configDir == "" {
		return nil, ErrConfigNotFound
	}

	for _, ext := range Extensions {
		path := filepath.Join(m.configDir, name+ext)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		rules, err := ParseRules(data, ext)
		if err != nil {
			return nil, err
		}
		if rules.Name == "" {
			rules.Name = name
		}
		if err := engine.ValidateRules(rules); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, filepath.Base(path), err)
		}
		return rules, nil
	}
	return nil, ErrConfigNotFound
}

// ParseRules decodes a rule set. ext selects YAML for ".yaml" and ".yml",
// JSON otherwise.
func ParseRules(data []byte, ext string) (*engine.Rules, error) {
	var rules engine.Rules
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &rules); err != nil {
			return nil, fmt.Errorf("%w: failed to parse yaml: %v", ErrInvalidConfig, err)
		}
	default:
		if err := json.Unmarshal(data, &rules); err != nil {
			return nil, fmt.Errorf("%w: failed to parse json: %v", ErrInvalidConfig, err)
		}
	}
	return &rules, nil
}

// ListConfigs returns the presets and every valid rule file, sorted by ID
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	files := map[string]string{}
	if m.configDir != "" {
		entries, err := os.ReadDir(m.configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to read config directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !hasRuleExt(entry.Name()) {
				continue
			}
			id := trimExt(entry.Name())
			if _, seen := files[id]; !seen {
				files[id] = entry.Name()
			}
		}
	}

	ids := engine.PresetNames()
	for id := range files {
		if _, ok := engine.Preset(id); !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	configs := make([]*service.ConfigInfo, 0, len(ids))
	for _, id := range ids {
		rules, err := m.LoadConfig(id)
		if err != nil {
			// Skip invalid files
			continue
		}
		_, builtin := engine.Preset(id)
		configs = append(configs, &service.ConfigInfo{
			Filename:       files[id],
			ConfigID:       id,
			Name:           rules.Name,
			Description:    rules.Description,
			DirectionModel: rules.DirectionModel,
			PathMode:       rules.PathMode,
			Builtin:        builtin && files[id] == "",
		})
	}
	return configs, nil
}

// GetDefault returns the default rule set
func (m *Manager) GetDefault() *engine.Rules {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clone(m.defaultRules)
}

// SetDefault sets the default rule set by name
func (m *Manager) SetDefault(name string) error {
	rules, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultRules = rules
	return nil
}

// RefreshCache drops cached rule sets so files are read again
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.Rules)
	m.mu.Unlock()

	return m.loadDefault()
}

// loadDefault picks classic, from disk when overridden
func (m *Manager) loadDefault() error {
	rules, err := m.LoadConfig("classic")
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.defaultRules = rules
	m.mu.Unlock()
	return nil
}

// SaveConfig writes a rule set to disk. A .yaml or .yml suffix on name
// selects YAML; anything else is written as JSON.
func (m *Manager) SaveConfig(name string, rules *engine.Rules) error {
	if m.configDir == "" {
		return fmt.Errorf("no config directory configured")
	}
	if err := engine.ValidateRules(rules); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	ext := strings.ToLower(filepath.Ext(name))
	if !hasRuleExt(name) {
		ext = ".json"
	}
	id := trimExt(name)
	if !validName(id) {
		return fmt.Errorf("%w: bad config name %q", ErrInvalidConfig, name)
	}

	var (
		data []byte
		err  error
	)
	if ext == ".json" {
		data, err = json.MarshalIndent(rules, "", "  ")
	} else {
		data, err = yaml.Marshal(rules)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// drop sibling files in other formats so lookup finds this one
	for _, other := range Extensions {
		if other != ext {
			os.Remove(filepath.Join(m.configDir, id+other))
		}
	}

	if err := os.WriteFile(filepath.Join(m.configDir, id+ext), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[id] = clone(rules)
	m.mu.Unlock()
	return nil
}

// validName reports whether name stays inside the config directory
func validName(name string) bool {
	return name != "" && !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}

func hasRuleExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func trimExt(name string) string {
	if hasRuleExt(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}

func clone(r *engine.Rules) *engine.Rules {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
