package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/xiaot623/tripmate/internal/adapter/llm"
	"github.com/xiaot623/tripmate/internal/collector"
	"github.com/xiaot623/tripmate/internal/config"
	"github.com/xiaot623/tripmate/internal/fallback"
	"github.com/xiaot623/tripmate/internal/itinerary"
	"github.com/xiaot623/tripmate/internal/logging"
	"github.com/xiaot623/tripmate/internal/policy"
	"github.com/xiaot623/tripmate/internal/service"
	"github.com/xiaot623/tripmate/internal/session"
	handler "github.com/xiaot623/tripmate/internal/transport/http"
	"github.com/xiaot623/tripmate/internal/transport/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	err = run(cfg, logger)
	if err != nil {
		logger.Error("relay stopped with error", zap.Error(err))
	}
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("starting trip planner relay",
		zap.Int("http_port", cfg.HTTPPort),
		zap.String("mode", cfg.Mode),
		zap.String("llm_base_url", cfg.BaseURL),
		zap.Strings("models", cfg.Models))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize LLM gateway
	gateway, closeGateway, err := llm.NewGateway(ctx, llm.Settings{
		Mode:         cfg.Mode,
		BaseURL:      cfg.BaseURL,
		APIKey:       cfg.APIKey,
		SiteURL:      cfg.SiteURL,
		SiteName:     cfg.SiteName,
		Timeout:      cfg.LLMTimeout,
		GeminiAPIKey: cfg.GeminiAPIKey,
		Sampling: llm.Sampling{
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("init llm gateway: %w", err)
	}
	defer closeGateway()

	// Initialize policy engine
	policyEngine, err := policy.NewEngineFromFile(ctx, cfg.PolicyFile)
	if err != nil {
		return fmt.Errorf("init policy engine: %w", err)
	}

	chain := fallback.NewChain(gateway, cfg.Models, logger,
		fallback.WithTimeout(cfg.ChainTimeout),
		fallback.WithAdmitter(policyEngine))

	greeting := cfg.Greeting
	if greeting == "" {
		greeting = collector.DefaultGreeting
	}
	sessions := session.NewStore(greeting)

	var opts []service.Option
	if lister, ok := gateway.(llm.ModelLister); ok {
		opts = append(opts, service.WithModelLister(lister))
	}
	svc := service.New(
		sessions,
		collector.New(chain, logger),
		itinerary.NewRequester(chain, logger, itinerary.WithStrictShape(cfg.StrictItineraryShape)),
		cfg.Models,
		logger,
		opts...,
	)

	hub := ws.NewHub(logger)
	go hub.Run(ctx)

	server := handler.NewServer(svc, ws.NewServer(cfg, hub, svc, logger), logger)

	go pruneSessions(ctx, sessions, cfg.SessionTTL, logger)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	logger.Info("relay listening", zap.Int("port", cfg.HTTPPort))

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	logger.Info("shutting down relay")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("failed to shutdown server gracefully", zap.Error(err))
	}

	logger.Info("relay stopped")
	return nil
}

// pruneSessions drops idle sessions every ttl/4 until ctx is done.
func pruneSessions(ctx context.Context, sessions *session.Store, ttl time.Duration, logger *zap.Logger) {
	if ttl <= 0 {
		return
	}
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Prune(ttl); n > 0 {
				logger.Info("pruned idle sessions", zap.Int("count", n), zap.Int("remaining", sessions.Len()))
			}
		}
	}
}
