package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPromptsYAML []byte

// Prompt stage names. Each maps to one entry under "templates" in prompts.yaml.
const (
	PromptClassify        = "classify"
	PromptPlan            = "plan"
	PromptNarrate         = "narrate"
	PromptDashboard       = "dashboard"
	PromptForecastColumns = "forecast_columns"
	PromptForecastSummary = "forecast_summary"
	PromptFeedback        = "feedback"
)

var requiredPrompts = []string{
	PromptClassify, PromptPlan, PromptNarrate, PromptDashboard,
	PromptForecastColumns, PromptForecastSummary, PromptFeedback,
}

// PromptConfig mirrors prompts.yaml.
type PromptConfig struct {
	Metadata struct {
		Version     string `yaml:"version"`
		LastUpdated string `yaml:"last_updated"`
	} `yaml:"metadata"`

	Assistant struct {
		Name      string `yaml:"name"`
		Greetings []struct {
			Trigger  []string `yaml:"trigger"`
			Response string   `yaml:"response"`
		} `yaml:"greetings"`
		DefaultGreeting string `yaml:"default_greeting"`
		UnclearIntent   string `yaml:"unclear_intent"`
		ClarifyFallback string `yaml:"clarify_fallback"`
	} `yaml:"assistant"`

	Templates map[string]string `yaml:"templates"`

	parsed map[string]*template.Template
}

var (
	cachedPrompts   *PromptConfig
	cachedPromptsMu sync.Mutex
)

// LoadPrompts reads prompt templates from path, or from the embedded
// defaults when path is empty. The default set is cached after first use.
func LoadPrompts(path string) (*PromptConfig, error) {
	if path == "" {
		cachedPromptsMu.Lock()
		defer cachedPromptsMu.Unlock()
		if cachedPrompts != nil {
			return cachedPrompts, nil
		}
		cfg, err := ParsePrompts(defaultPromptsYAML)
		if err != nil {
			return nil, err
		}
		cachedPrompts = cfg
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file %s: %w", path, err)
	}
	return ParsePrompts(data)
}

// ParsePrompts decodes a prompts document and compiles every template.
func ParsePrompts(data []byte) (*PromptConfig, error) {
	var cfg PromptConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse prompts YAML: %w", err)
	}

	cfg.parsed = make(map[string]*template.Template, len(cfg.Templates))
	for _, name := range requiredPrompts {
		text, ok := cfg.Templates[name]
		if !ok || strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("prompt template %q is missing", name)
		}
		tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("prompt template %q: %w", name, err)
		}
		cfg.parsed[name] = tmpl
	}
	return &cfg, nil
}

// Render fills the named template with data.
func (c *PromptConfig) Render(name string, data any) (string, error) {
	tmpl, ok := c.parsed[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt template %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %q: %w", name, err)
	}
	return buf.String(), nil
}

// MatchGreeting returns the canned reply when the whole message is one of
// the configured greeting triggers. Surrounding punctuation is ignored.
func (c *PromptConfig) MatchGreeting(message string) (bool, string) {
	msg := strings.ToLower(strings.Trim(strings.TrimSpace(message), "!.?, "))
	if msg == "" {
		return false, ""
	}
	for _, g := range c.Assistant.Greetings {
		for _, trigger := range g.Trigger {
			if msg == strings.ToLower(trigger) {
				return true, g.Response
			}
		}
	}
	return false, ""
}
