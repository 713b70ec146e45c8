// Package collector runs the free-form interview that gathers trip
// parameters and detects the model's completion signal.
package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xiaot623/tripmate/internal/domain"
	"github.com/xiaot623/tripmate/internal/fallback"
)

// State is the collector's position in the interview.
type State string

const (
	StateGathering State = "GATHERING"
	StateComplete  State = "COMPLETE"
)

// ErrEmptyInput is returned for blank user text. No request is made.
var ErrEmptyInput = errors.New("empty input")

// AssistantUnavailableError means every model failed for this turn. The
// conversation can be resumed by submitting again.
type AssistantUnavailableError struct {
	Err error
}

func (e *AssistantUnavailableError) Error() string {
	return fmt.Sprintf("assistant unavailable: %v", e.Err)
}

func (e *AssistantUnavailableError) Unwrap() error { return e.Err }

// Completer is the slice of the fallback chain the collector needs.
type Completer interface {
	Complete(ctx context.Context, req fallback.Request) (*fallback.Outcome, error)
}

// TurnResult is the outcome of one user turn.
type TurnResult struct {
	DisplayText string
	Extracted   *domain.TripParameters
	History     []domain.ChatTurn
	Model       string
	State       State
}

// Collector sends user turns to the model chain and extracts trip parameters
// once the model signals it has all of them.
type Collector struct {
	chain       Completer
	instruction string
	logger      *zap.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithSystemInstruction replaces SystemInstruction.
func WithSystemInstruction(s string) Option {
	return func(c *Collector) { c.instruction = s }
}

// New creates a collector over chain.
func New(chain Completer, logger *zap.Logger, opts ...Option) *Collector {
	c := &Collector{
		chain:       chain,
		instruction: SystemInstruction,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SubmitUserTurn sends userText with the prior history and returns the text
// to display, any extracted parameters, and the history extended by this
// exchange. history is not modified.
func (c *Collector) SubmitUserTurn(ctx context.Context, history []domain.ChatTurn, userText string) (*TurnResult, error) {
	if strings.TrimSpace(userText) == "" {
		return nil, ErrEmptyInput
	}

	out, err := c.chain.Complete(ctx, fallback.Request{
		Purpose:           fallback.PurposeChat,
		SystemInstruction: c.instruction,
		History:           domain.ConversationContext(history),
		UserText:          userText,
	})
	if err != nil {
		var exhausted *fallback.AllModelsExhaustedError
		if errors.As(err, &exhausted) {
			c.logger.Warn("no model answered the chat turn", zap.Int("attempts", len(exhausted.Attempts)), zap.Error(err))
			return nil, &AssistantUnavailableError{Err: err}
		}
		return nil, fmt.Errorf("complete chat turn: %w", err)
	}

	display, params := Extract(out.Text)
	result := &TurnResult{
		DisplayText: display,
		Extracted:   params,
		Model:       out.Model,
		State:       StateGathering,
	}
	if params != nil {
		result.State = StateComplete
		c.logger.Info("trip parameters collected",
			zap.String("model", out.Model),
			zap.String("destination", params.Destination),
			zap.String("start_date", params.StartDate),
			zap.String("end_date", params.EndDate))
	}

	result.History = make([]domain.ChatTurn, 0, len(history)+2)
	result.History = append(result.History, history...)
	result.History = append(result.History, domain.UserTurn(userText), domain.AssistantTurn(display))
	return result, nil
}
