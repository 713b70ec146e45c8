// Package itinerary turns collected trip parameters into a structured plan
// with a single model request.
package itinerary

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xiaot623/tripmate/internal/domain"
	"github.com/xiaot623/tripmate/internal/fallback"
)

// Completer is the slice of the fallback chain the requester needs.
type Completer interface {
	Complete(ctx context.Context, req fallback.Request) (*fallback.Outcome, error)
}

// Requester asks the model chain for an itinerary.
type Requester struct {
	chain       Completer
	strictShape bool
	logger      *zap.Logger
}

// Option configures a Requester.
type Option func(*Requester)

// WithStrictShape makes shape issues fail the request instead of being logged.
func WithStrictShape(strict bool) Option {
	return func(r *Requester) { r.strictShape = strict }
}

// NewRequester creates a requester over chain.
func NewRequester(chain Completer, logger *zap.Logger, opts ...Option) *Requester {
	r := &Requester{chain: chain, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RequestItinerary builds the planning prompt for params, sends it without a
// system message or history, and parses the reply. The freeform notes are
// attached to the result.
func (r *Requester) RequestItinerary(ctx context.Context, params domain.TripParameters) (*domain.Itinerary, error) {
	days, err := TripLength(params.StartDate, params.EndDate)
	if err != nil {
		return nil, err
	}

	r.logger.Info("requesting itinerary",
		zap.String("destination", params.Destination),
		zap.Int("days", days))

	out, err := r.chain.Complete(ctx, fallback.Request{
		Purpose:  fallback.PurposeItinerary,
		UserText: BuildPrompt(params, days),
	})
	if err != nil {
		return nil, fmt.Errorf("request itinerary: %w", err)
	}

	doc, err := Parse(Cleanup(out.Text))
	if err != nil {
		r.logger.Warn("itinerary reply did not parse", zap.String("model", out.Model), zap.Error(err))
		return nil, err
	}

	if err := ValidateShape(doc, days); err != nil {
		if r.strictShape {
			return nil, &ParseError{Raw: Cleanup(out.Text), Err: err}
		}
		r.logger.Warn("itinerary shape differs from request",
			zap.String("model", out.Model),
			zap.Stringer("shape", doc.Shape),
			zap.Error(err))
	}

	it := doc.Itinerary().WithNotes(params.FreeformNotes)
	return &it, nil
}
