package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const defaultModel = openai.GPT4o

// Describer turns one or more frame images plus a prompt into per-image
// descriptions. len(result) always equals len(images) on success.
type Describer interface {
	Describe(ctx context.Context, prompt string, images [][]byte) ([]string, error)
}

// ClientConfig carries the knobs for the OpenAI-backed client. BaseURL allows
// pointing at any OpenAI-compatible endpoint, including local model servers.
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxTokens  int
	MaxRetries int
}

// Client describes frames through the OpenAI chat completions API, sending
// each image as a base64 data URL content part.
type Client struct {
	api        *openai.Client
	model      string
	maxTokens  int
	maxRetries int
	sleep      func(time.Duration)
	logger     *slog.Logger
}

func NewClient(cfg ClientConfig, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("vision API key is required")
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 300
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		api:        openai.NewClientWithConfig(apiCfg),
		model:      model,
		maxTokens:  maxTokens,
		maxRetries: cfg.MaxRetries,
		sleep:      time.Sleep,
		logger:     logger,
	}, nil
}

// API exposes the underlying OpenAI client for collaborators that reuse the
// same endpoint and credentials, such as the narration polisher.
func (c *Client) API() *openai.Client {
	return c.api
}

// Describe sends the images in a single request. With one image the whole
// completion is its description. With a batch, the model is asked for one
// numbered line per image and the reply is split back out; a reply that does
// not yield exactly one description per image is a malformed-response error.
func (c *Client) Describe(ctx context.Context, prompt string, images [][]byte) ([]string, error) {
	if len(images) == 0 {
		return nil, &APIError{Kind: KindMalformed, Msg: "no images to describe"}
	}

	parts := []openai.ChatMessagePart{{
		Type: openai.ChatMessagePartTypeText,
		Text: batchPrompt(prompt, len(images)),
	}}
	for _, img := range images {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(img)),
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}

	req := openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens * len(images),
		Messages: []openai.ChatCompletionMessage{{
			Role:         openai.ChatMessageRoleUser,
			MultiContent: parts,
		}},
	}

	content, err := c.complete(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(images) == 1 {
		return []string{strings.TrimSpace(content)}, nil
	}

	descriptions := splitNumbered(content)
	if len(descriptions) != len(images) {
		return nil, &APIError{
			Kind: KindMalformed,
			Msg:  fmt.Sprintf("expected %d descriptions, got %d", len(images), len(descriptions)),
		}
	}
	return descriptions, nil
}

// complete runs one chat completion, retrying rate-limit failures up to
// maxRetries times with a linear backoff. All other failures return at once.
func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	var lastErr *APIError

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("rate limited, retrying", "attempt", attempt)
			c.sleep(time.Duration(attempt) * time.Second)
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			apiErr := classify(err)
			if apiErr.Kind == KindRateLimit {
				lastErr = apiErr
				continue
			}
			return "", apiErr
		}

		if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
			return "", &APIError{Kind: KindMalformed, Msg: "empty completion"}
		}
		return resp.Choices[0].Message.Content, nil
	}

	return "", lastErr
}

// classify maps go-openai errors onto the APIError taxonomy.
func classify(err error) *APIError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		kind := KindMalformed
		switch apiErr.HTTPStatusCode {
		case 401, 403:
			kind = KindAuth
		case 429:
			kind = KindRateLimit
		}
		return &APIError{Kind: kind, Status: apiErr.HTTPStatusCode, Msg: apiErr.Message, Err: err}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		kind := KindMalformed
		switch reqErr.HTTPStatusCode {
		case 401, 403:
			kind = KindAuth
		case 429:
			kind = KindRateLimit
		}
		return &APIError{Kind: kind, Status: reqErr.HTTPStatusCode, Msg: reqErr.Error(), Err: err}
	}

	return &APIError{Kind: KindNetwork, Msg: err.Error(), Err: err}
}

func batchPrompt(prompt string, n int) string {
	if n == 1 {
		return prompt
	}
	return fmt.Sprintf("%s\n\nYou are given %d frames in order. Respond with exactly %d lines, "+
		"one per frame, each starting with its number and a period (e.g. \"1. ...\").", prompt, n, n)
}

// splitNumbered parses "1. text" style lines back into individual
// descriptions, tolerating blank lines between them.
func splitNumbered(content string) []string {
	var out []string
	var current strings.Builder

	flush := func() {
		text := strings.TrimSpace(current.String())
		if text != "" {
			out = append(out, text)
		}
		current.Reset()
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if rest, ok := stripNumberPrefix(trimmed); ok {
			flush()
			current.WriteString(rest)
		} else if current.Len() > 0 {
			current.WriteString(" ")
			current.WriteString(trimmed)
		}
	}
	flush()

	return out
}

func stripNumberPrefix(line string) (string, bool) {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(line) {
		return "", false
	}
	if line[i] != '.' && line[i] != ')' {
		return "", false
	}
	return strings.TrimSpace(line[i+1:]), true
}
