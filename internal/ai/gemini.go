package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/bu-planner/backend/pkg/circuitbreaker"
	"github.com/bu-planner/backend/pkg/logger"
)

type geminiGateway struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	breaker     *circuitbreaker.Breaker
}

func newGeminiGateway(opts Options, breaker *circuitbreaker.Breaker) (*geminiGateway, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	logger.Info("Gemini gateway initialized", zap.String("model", opts.Model))

	return &geminiGateway{
		client:      client,
		model:       opts.Model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		timeout:     opts.Timeout,
		breaker:     breaker,
	}, nil
}

func (g *geminiGateway) Provider() string {
	return "gemini"
}

func (g *geminiGateway) Available() bool {
	return true
}

func (g *geminiGateway) Generate(ctx context.Context, req Request) (string, error) {
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
		resp, err := g.client.Models.GenerateContent(ctx, model,
			genai.Text(req.Prompt),
			&genai.GenerateContentConfig{
				Temperature:     genai.Ptr(temperature),
				MaxOutputTokens: int32(maxTokens),
			},
		)
		if err != nil {
			return fmt.Errorf("generate content: %w", err)
		}

		text = strings.TrimSpace(resp.Text())
		if text == "" {
			return fmt.Errorf("empty completion from model %s", model)
		}

		logger.Debug("Gemini completion generated",
			zap.String("model", model),
			zap.Int("length", len(text)),
		)
		return nil
	})

	if err != nil {
		return "", classify("gemini", ctx, err)
	}

	return text, nil
}
