package narration

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pemistahl/lingua-go"
	openai "github.com/sashabaranov/go-openai"
)

// Polisher rewrites an assembled narration for smoother text-to-speech
// delivery using a second chat completion. The narration's language is
// detected so the model is told to stay in it rather than drifting to English.
type Polisher struct {
	client   *openai.Client
	model    string
	detector lingua.LanguageDetector
	logger   *slog.Logger
}

func NewPolisher(client *openai.Client, model string, logger *slog.Logger) *Polisher {
	if model == "" {
		model = openai.GPT4o
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Polisher{
		client:   client,
		model:    model,
		detector: lingua.NewLanguageDetectorBuilder().FromAllLanguages().Build(),
		logger:   logger,
	}
}

// Polish rewrites the narration in the given style prompt, which comes from
// the run's template.
func (p *Polisher) Polish(ctx context.Context, text, style string) (string, error) {
	if text == "" {
		return "", nil
	}

	systemPrompt := "Polish this narration for natural flow and text-to-speech delivery. " +
		"Ensure smooth transitions between sentences. " +
		"Do not include any technical notes, timestamps, or formatting markup."
	if style != "" {
		systemPrompt += "\n\nUse the style specified:\n" + style
	}
	if language, ok := p.detector.DetectLanguageOf(text); ok {
		systemPrompt += fmt.Sprintf("\n\nThe narration is in %s. Keep it in %s.",
			language.String(), language.String())
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: 0.7,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("error polishing narration: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from polish model")
	}

	p.logger.Debug("narration polished", "model", p.model)

	// The polish pass can reintroduce markup, clean once more.
	return Clean(resp.Choices[0].Message.Content), nil
}
