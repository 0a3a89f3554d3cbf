// Package llm provides the text-generation oracle used by every AI stage.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Oracle turns a prompt into generated text. Implementations must be safe
// for concurrent use.
type Oracle interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config holds configuration for creating an oracle client.
type Config struct {
	Provider   string // "openai" (any OpenAI-compatible endpoint) or "azure"
	Endpoint   string
	APIKey     string
	Model      string
	APIVersion string        // azure only
	Deployment string        // azure only, defaults to Model
	Timeout    time.Duration // per request, 0 disables
}

// Client is an Oracle backed by an OpenAI-compatible chat completions API.
type Client struct {
	client   *openai.Client
	endpoint string
	model    string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewClient creates a new oracle client.
func NewClient(cfg *Config, logger *zap.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	var clientConfig openai.ClientConfig
	switch cfg.Provider {
	case "azure":
		clientConfig = openai.DefaultAzureConfig(cfg.APIKey, strings.TrimSuffix(cfg.Endpoint, "/"))
		if cfg.APIVersion != "" {
			clientConfig.APIVersion = cfg.APIVersion
		}
		deployment := cfg.Deployment
		if deployment == "" {
			deployment = cfg.Model
		}
		clientConfig.AzureModelMapperFunc = func(string) string { return deployment }
	case "", "openai":
		clientConfig = openai.DefaultConfig(cfg.APIKey)
		clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")
	default:
		return nil, fmt.Errorf("unknown oracle provider %q", cfg.Provider)
	}

	return &Client{
		client:   openai.NewClientWithConfig(clientConfig),
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		timeout:  cfg.Timeout,
		logger:   logger.Named("llm"),
	}, nil
}

// Generate sends prompt as a single user message and returns the reply text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.logger.Debug("Oracle request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(prompt)))

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		c.logger.Error("Oracle request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		classified := ClassifyError(err)
		classified.Model = c.model
		classified.Endpoint = c.endpoint
		return "", classified
	}

	if len(resp.Choices) == 0 {
		return "", NewError(ErrorTypeEmpty, "no choices in response", nil)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", NewError(ErrorTypeEmpty, "empty response text", nil)
	}

	c.logger.Info("Oracle request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return content, nil
}

// GetModel returns the configured model name.
func (c *Client) GetModel() string {
	return c.model
}
