// Package fallback tries an ordered list of models until one answers.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xiaot623/tripmate/internal/adapter/llm"
	"github.com/xiaot623/tripmate/internal/domain"
)

// Request purposes, passed to the admitter.
const (
	PurposeChat      = "chat"
	PurposeItinerary = "itinerary"
)

// Admitter decides whether a model may be tried for a purpose.
type Admitter interface {
	Admit(ctx context.Context, model, purpose string) (decision string, reason string, err error)
}

// Request is one logical completion to be answered by the first model that can.
type Request struct {
	Purpose           string
	SystemInstruction string
	History           []domain.ChatTurn
	UserText          string
}

// Attempt is the outcome of trying one model.
type Attempt struct {
	Model    string
	Err      error
	Skipped  bool
	Reason   string
	Duration time.Duration
}

// Outcome is a successful chain result.
type Outcome struct {
	Text     string
	Model    string
	Attempts []Attempt
}

// AllModelsExhaustedError is returned when no model produced an answer.
type AllModelsExhaustedError struct {
	Attempts []Attempt
	Last     error
}

func (e *AllModelsExhaustedError) Error() string {
	models := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		models = append(models, a.Model)
	}
	if e.Last == nil {
		return fmt.Sprintf("all models exhausted (tried: %s)", strings.Join(models, ", "))
	}
	return fmt.Sprintf("all models exhausted (tried: %s): %v", strings.Join(models, ", "), e.Last)
}

func (e *AllModelsExhaustedError) Unwrap() error { return e.Last }

// Last errors of chains that never reached a gateway.
var (
	ErrNoModels         = errors.New("no models configured")
	ErrNoAdmittedModels = errors.New("every model was skipped by policy")
)

// DecisionSkip is the admitter decision that excludes a model.
const DecisionSkip = "skip"

// Chain is the model fallback policy bound to a gateway and a model list.
// It is safe for concurrent use; its configuration never changes after
// construction.
type Chain struct {
	gateway  llm.Gateway
	models   []string
	timeout  time.Duration
	admitter Admitter
	logger   *zap.Logger
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithTimeout bounds a whole chain (all attempts) by d. Zero disables it.
func WithTimeout(d time.Duration) ChainOption {
	return func(c *Chain) { c.timeout = d }
}

// WithAdmitter consults a before each attempt.
func WithAdmitter(a Admitter) ChainOption {
	return func(c *Chain) { c.admitter = a }
}

// NewChain creates a chain over models, tried in the given order.
func NewChain(gateway llm.Gateway, models []string, logger *zap.Logger, opts ...ChainOption) *Chain {
	c := &Chain{
		gateway: gateway,
		models:  append([]string(nil), models...),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Models returns a copy of the configured model order.
func (c *Chain) Models() []string {
	return append([]string(nil), c.models...)
}

// Complete runs req against the configured models.
func (c *Chain) Complete(ctx context.Context, req Request) (*Outcome, error) {
	return c.CompleteWith(ctx, c.models, req)
}

// CompleteWith runs req against models in order, one at a time, and returns
// the first successful reply.
func (c *Chain) CompleteWith(ctx context.Context, models []string, req Request) (*Outcome, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var (
		attempts []Attempt
		last     error = ErrNoModels
	)
	for _, model := range models {
		if err := ctx.Err(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			// Cancelled by the caller.
			last = err
			break
		}

		if skip, reason := c.skip(ctx, model, req.Purpose); skip {
			c.logger.Info("model skipped by policy",
				zap.String("model", model),
				zap.String("purpose", req.Purpose),
				zap.String("reason", reason))
			attempts = append(attempts, Attempt{Model: model, Skipped: true, Reason: reason})
			if last == ErrNoModels {
				last = ErrNoAdmittedModels
			}
			continue
		}

		attempt, text := c.try(ctx, model, req)
		attempts = append(attempts, attempt)
		if attempt.Err == nil {
			return &Outcome{Text: text, Model: model, Attempts: attempts}, nil
		}

		last = attempt.Err
		c.logger.Warn("model failed, trying next",
			zap.String("model", model),
			zap.String("purpose", req.Purpose),
			zap.Duration("duration", attempt.Duration),
			zap.Error(attempt.Err))
	}

	return nil, &AllModelsExhaustedError{Attempts: attempts, Last: last}
}

func (c *Chain) try(ctx context.Context, model string, req Request) (Attempt, string) {
	start := time.Now()
	text, err := c.gateway.Complete(ctx, model, req.SystemInstruction, req.History, req.UserText)
	return Attempt{Model: model, Err: err, Duration: time.Since(start)}, text
}

func (c *Chain) skip(ctx context.Context, model, purpose string) (bool, string) {
	if c.admitter == nil {
		return false, ""
	}
	decision, reason, err := c.admitter.Admit(ctx, model, purpose)
	if err != nil {
		c.logger.Warn("model admission failed, admitting", zap.String("model", model), zap.Error(err))
		return false, ""
	}
	return decision == DecisionSkip, reason
}
