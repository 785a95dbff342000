package openai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/medtriage/internal/domain"
)

// MaxNarrativeWords caps the generated explanation.
const MaxNarrativeWords = 150

const systemPrompt = "You explain emergency triage results to patients in plain, calm language. " +
	"You never diagnose, never prescribe and never contradict the triage urgency."

// NarratorConfig holds the chat model settings.
type NarratorConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      *zap.Logger
}

// Narrator implements domain.Narrator with the chat completions API.
type Narrator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

// NewNarrator creates a chat-completion narrator.
func NewNarrator(cfg *NarratorConfig) (*Narrator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("narrative API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 400
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Narrator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		logger:      logger,
	}, nil
}

// Narrate builds the prompt from the report facts and returns at most MaxNarrativeWords words.
func (n *Narrator) Narrate(ctx context.Context, in domain.NarrativeInput) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: n.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(in)},
		},
		MaxTokens:   n.maxTokens,
		Temperature: n.temperature,
	}

	resp, err := n.client.CreateChatCompletion(ctx, req)
	if err != nil {
		n.logger.Debug("Narrative request failed", zap.String("model", n.model), zap.Error(err))
		return "", parseAPIError("narrative", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in narrative response: %w", domain.ErrNarrativeUnavailable)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("empty narrative: %w", domain.ErrNarrativeUnavailable)
	}
	return TruncateWords(text, MaxNarrativeWords), nil
}

// HealthCheck verifies API availability via ListModels.
func (n *Narrator) HealthCheck(ctx context.Context) error {
	if _, err := n.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// TruncateWords keeps the first n whitespace-separated words.
func TruncateWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) <= n {
		return text
	}
	return strings.Join(words[:n], " ") + "..."
}
