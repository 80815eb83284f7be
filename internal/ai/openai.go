package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/bu-planner/backend/pkg/circuitbreaker"
	"github.com/bu-planner/backend/pkg/logger"
)

type openaiGateway struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	breaker     *circuitbreaker.Breaker
}

func newOpenAIGateway(opts Options, breaker *circuitbreaker.Breaker) *openaiGateway {
	logger.Info("OpenAI gateway initialized", zap.String("model", opts.Model))

	return &openaiGateway{
		client:      openai.NewClient(opts.APIKey),
		model:       opts.Model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		timeout:     opts.Timeout,
		breaker:     breaker,
	}
}

func (g *openaiGateway) Provider() string {
	return "openai"
}

func (g *openaiGateway) Available() bool {
	return true
}

func (g *openaiGateway) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	model := req.Model
	if model == "" {
		model = g.model
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = g.temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = g.maxTokens
	}

	var text string
	err := g.breaker.Execute(func() error {
		resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       model,
			Temperature: temperature,
			MaxTokens:   maxTokens,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
			},
		})
		if err != nil {
			return fmt.Errorf("create completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("empty completion from model %s", model)
		}

		text = strings.TrimSpace(resp.Choices[0].Message.Content)
		if text == "" {
			return fmt.Errorf("blank completion from model %s", model)
		}

		logger.Debug("OpenAI completion generated",
			zap.String("model", model),
			zap.Int("prompt_tokens", resp.Usage.PromptTokens),
			zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		)
		return nil
	})

	if err != nil {
		return "", classify("openai", ctx, err)
	}

	return text, nil
}
