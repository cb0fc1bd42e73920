package scoring

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"call-assessment-service/internal/config"
)

// Scorer is the generative text evaluator: instruction pair in, raw
// response text out.
type Scorer interface {
	Score(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// OpenAIScorer implements Scorer using the OpenAI chat completions API.
// Sampling parameters are fixed across dimensions; only the prompts vary.
type OpenAIScorer struct {
	client *openai.Client
	cfg    config.ScorerConfig
}

// NewOpenAIScorer creates a scorer client. The client is intended to live
// for the whole process.
func NewOpenAIScorer(cfg config.ScorerConfig) *OpenAIScorer {
	return &OpenAIScorer{
		client: openai.NewClient(cfg.APIKey),
		cfg:    cfg,
	}
}

// Score invokes the chat completion API with the fixed control parameters.
func (s *OpenAIScorer) Score(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
		TopP:        s.cfg.TopP,
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: no response choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
