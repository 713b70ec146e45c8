package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ModeMock selects the offline mock gateway.
const ModeMock = "MOCK"

// Settings carries what the factory needs to build a gateway.
type Settings struct {
	Mode         string
	BaseURL      string
	APIKey       string
	SiteURL      string
	SiteName     string
	Timeout      time.Duration
	GeminiAPIKey string
	Sampling     Sampling
}

// NewGateway builds the gateway described by s. In MOCK mode it returns a
// MockClient; otherwise a Router over the chat completions client, with the
// Gemini SDK mounted under GeminiPrefix when a Gemini key is configured. The
// returned cleanup func must be called on shutdown.
func NewGateway(ctx context.Context, s Settings, logger *zap.Logger) (Gateway, func(), error) {
	if s.Mode == ModeMock {
		logger.Info("TRIP_MODE=MOCK detected, using mock LLM gateway")
		return NewMockClient(), func() {}, nil
	}

	if s.APIKey == "" {
		logger.Warn("no LLM API key configured; chat completion requests will likely be rejected")
	}
	router := NewRouter(NewClient(s.BaseURL, s.APIKey, s.Timeout, WithAttribution(s.SiteURL, s.SiteName), WithSampling(s.Sampling)))

	cleanup := func() {}
	if s.GeminiAPIKey != "" {
		gemini, err := NewGeminiClient(ctx, s.GeminiAPIKey, s.Sampling)
		if err != nil {
			return nil, nil, fmt.Errorf("init gemini gateway: %w", err)
		}
		router.Handle(GeminiPrefix, gemini)
		cleanup = func() {
			if err := gemini.Close(); err != nil {
				logger.Warn("failed to close gemini client", zap.Error(err))
			}
		}
		logger.Info("gemini gateway enabled", zap.String("prefix", GeminiPrefix))
	}

	return router, cleanup, nil
}
