package ai

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bu-planner/backend/pkg/circuitbreaker"
	"github.com/bu-planner/backend/pkg/logger"
)

// Request carries one generation call. Model overrides the gateway default
// when set; zero Temperature/MaxTokens fall back to the configured defaults.
type Request struct {
	Prompt      string
	Model       string
	Temperature float32
	MaxTokens   int
}

// Gateway normalizes a generative-AI provider behind one contract. Generate
// makes exactly one attempt, bounded by the configured timeout, and every
// failure surfaces as *UnavailableError. Callers own any retry policy;
// the chatbot's policy is to fall back instead.
type Gateway interface {
	Provider() string
	Available() bool
	Generate(ctx context.Context, req Request) (string, error)
}

type Options struct {
	Provider    string
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

const defaultTimeout = 20 * time.Second

// NewGateway builds the configured provider backend. An empty credential
// yields a disabled gateway rather than an error: the service still runs in
// fallback-only mode.
func NewGateway(opts Options) (Gateway, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1024
	}

	if opts.APIKey == "" {
		logger.Warn("AI credential not set, gateway disabled",
			zap.String("provider", opts.Provider),
		)
		return &disabledGateway{provider: opts.Provider}, nil
	}

	breaker := circuitbreaker.New("ai-gateway", circuitbreaker.Config{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Cooldown:         30 * time.Second,
		Logger:           logger.GetLogger(),
	})

	switch opts.Provider {
	case "gemini", "":
		return newGeminiGateway(opts, breaker)
	case "openai":
		return newOpenAIGateway(opts, breaker), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", opts.Provider)
	}
}

// disabledGateway is the no-credential backend: never available, and every
// call fails with the missing-credential kind.
type disabledGateway struct {
	provider string
}

func (g *disabledGateway) Provider() string {
	return g.provider
}

func (g *disabledGateway) Available() bool {
	return false
}

func (g *disabledGateway) Generate(ctx context.Context, req Request) (string, error) {
	return "", &UnavailableError{Kind: KindMissingCredential, Provider: g.provider}
}
