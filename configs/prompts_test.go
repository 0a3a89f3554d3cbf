package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPromptsDefaults(t *testing.T) {
	cfg, err := LoadPrompts("")
	require.NoError(t, err)

	for _, name := range requiredPrompts {
		assert.Contains(t, cfg.parsed, name)
	}
	assert.NotEmpty(t, cfg.Assistant.DefaultGreeting)

	again, err := LoadPrompts("")
	require.NoError(t, err)
	assert.Same(t, cfg, again)
}

func TestRenderPlanPrompt(t *testing.T) {
	cfg, err := LoadPrompts("")
	require.NoError(t, err)

	out, err := cfg.Render(PromptPlan, map[string]string{
		"Schema":  "- City (type: object)\n- Sales (type: int64)",
		"History": "User: hi\nAI: Hello!",
		"Message": "total sales in Chennai?",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "- City (type: object)")
	assert.Contains(t, out, `"total sales in Chennai?"`)
	assert.Contains(t, out, `"operation": "groupby_agg"`)
}

func TestRenderMissingKeyFails(t *testing.T) {
	cfg, err := LoadPrompts("")
	require.NoError(t, err)

	_, err = cfg.Render(PromptNarrate, map[string]string{"Message": "q"})
	assert.Error(t, err)

	_, err = cfg.Render("nope", nil)
	assert.Error(t, err)
}

func TestMatchGreeting(t *testing.T) {
	cfg, err := LoadPrompts("")
	require.NoError(t, err)

	ok, reply := cfg.MatchGreeting("  Vanakkam! ")
	assert.True(t, ok)
	assert.Equal(t, "Vanakkam! Unga data pathi enna kelvi iruku?", reply)

	ok, _ = cfg.MatchGreeting("Hello")
	assert.True(t, ok)

	ok, _ = cfg.MatchGreeting("which city sold the most?")
	assert.False(t, ok)
}

func TestParsePromptsRejectsIncompleteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.yaml")
	content := "templates:\n  classify: \"Category for {{.Message}}\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadPrompts(path)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "missing"))
}
