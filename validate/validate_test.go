package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/snakes-and-ladders/game/engine"
)

func writeRules(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func hasMessage(result ValidationResult, substr string) bool {
	for _, m := range result.Messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		valid   bool
		message string
	}{
		{
			name: "valid json",
			file: "classic.json",
			content: `{"name":"classic","direction_model":"probabilistic","forward_probability":0.7,
				"path_mode":"weighted","prime_bonus_edges":true,
				"shortcuts":{"min_node":6,"max_node":59,"min_gap":4,"max_gap":19}}`,
			valid:   true,
			message: "Candidate pairs",
		},
		{
			name:    "valid yaml, name from file",
			file:    "wide.yaml",
			content: "direction_model: prime_path\npath_mode: bfs\nshortcuts:\n  min_node: 1\n  max_node: 64\n  min_gap: 1\n",
			valid:   true,
			message: "Name: wide",
		},
		{
			name:    "bad json",
			file:    "broken.json",
			content: `{"name": `,
			valid:   false,
			message: "invalid configuration",
		},
		{
			name:    "rules rejected",
			file:    "odd.json",
			content: `{"name":"odd","direction_model":"sideways","path_mode":"bfs","shortcuts":{"min_node":1,"max_node":64,"min_gap":1}}`,
			valid:   false,
			message: "direction_model",
		},
		{
			name:    "band too small for five links",
			file:    "narrow.json",
			content: `{"name":"narrow","direction_model":"prime_path","path_mode":"bfs","shortcuts":{"min_node":10,"max_node":13,"min_gap":2}}`,
			valid:   false,
			message: "distinct pairs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeRules(t, dir, tt.file, tt.content)
			result := validateFile(path, 10)

			assert.Equal(t, tt.file, result.File)
			assert.Equal(t, tt.valid, result.Valid, result.Messages)
			assert.True(t, hasMessage(result, tt.message), "missing %q in %v", tt.message, result.Messages)
		})
	}
}

func TestValidateFile_Missing(t *testing.T) {
	result := validateFile(filepath.Join(t.TempDir(), "nope.json"), 1)
	assert.False(t, result.Valid)
	assert.True(t, hasMessage(result, "Failed to read file"))
}

func TestCandidatePairs(t *testing.T) {
	tests := []struct {
		name string
		c    engine.ShortcutConstraints
		want int
	}{
		{"three nodes", engine.ShortcutConstraints{MinNode: 1, MaxNode: 3, MinGap: 1}, 3},
		{"adjacent excluded", engine.ShortcutConstraints{MinNode: 1, MaxNode: 3, MinGap: 1, ExcludeAdjacent: true}, 1},
		{"gap window", engine.ShortcutConstraints{MinNode: 1, MaxNode: 10, MinGap: 8, MaxGap: 8}, 2},
		{"full board", engine.ShortcutConstraints{MinNode: 1, MaxNode: 64, MinGap: 1}, 64 * 63 / 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, candidatePairs(tt.c))
		})
	}
}

func TestProbeGeneration(t *testing.T) {
	rules := engine.DefaultRules()
	failures, ladders, snakes := probeGeneration(rules, 20)

	assert.Zero(t, failures)
	assert.Equal(t, 20*engine.LinkCount, ladders+snakes)

	tight := engine.DefaultRules()
	tight.Shortcuts = engine.ShortcutConstraints{MinNode: 10, MaxNode: 14, MinGap: 4, MaxAttempts: 50}
	failures, _, _ = probeGeneration(tight, 5)
	assert.Equal(t, 5, failures)
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	writeRules(t, dir, "fast.json", `{"name":"fast","direction_model":"probabilistic","forward_probability":0.9,"path_mode":"bfs","shortcuts":{"min_node":2,"max_node":63,"min_gap":3}}`)
	writeRules(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0755))

	results, err := collect(dir, true, 5)
	require.NoError(t, err)

	var files []string
	for _, r := range results {
		files = append(files, r.File)
		assert.True(t, r.Valid, "%s: %v", r.File, r.Messages)
	}
	assert.Equal(t, []string{"preset:classic", "preset:open_board", "preset:prime_path", "fast.json"}, files)

	_, err = collect(filepath.Join(dir, "missing"), false, 1)
	assert.Error(t, err)
}

func TestReport(t *testing.T) {
	ok := []ValidationResult{{File: "a.json", Valid: true, Messages: []string{"✓ Name: a"}}}
	assert.True(t, report(ok))

	bad := append(ok, ValidationResult{File: "b.json", Valid: false, Messages: []string{"broken"}})
	assert.False(t, report(bad))
}
