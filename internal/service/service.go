// Package service implements the trip planner use cases on top of the
// collector, the itinerary requester and the session store.
package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xiaot623/tripmate/internal/adapter/llm"
	"github.com/xiaot623/tripmate/internal/collector"
	"github.com/xiaot623/tripmate/internal/itinerary"
	"github.com/xiaot623/tripmate/internal/session"
)

var (
	// ErrNoTrip is returned when planning is requested before the
	// conversation produced trip parameters.
	ErrNoTrip = errors.New("no trip parameters collected yet")
	// ErrIncompleteTrip is returned for parameters without a destination.
	ErrIncompleteTrip = errors.New("trip parameters require a destination")
	// ErrNoCatalogue is returned when the gateway cannot list models.
	ErrNoCatalogue = errors.New("model catalogue not available")
)

type Service struct {
	sessions  *session.Store
	collector *collector.Collector
	requester *itinerary.Requester
	models    []string
	lister    llm.ModelLister
	logger    *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithModelLister exposes the provider's model catalogue through
// ProviderModels.
func WithModelLister(l llm.ModelLister) Option {
	return func(s *Service) { s.lister = l }
}

func New(sessions *session.Store, coll *collector.Collector, requester *itinerary.Requester, models []string, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		sessions:  sessions,
		collector: coll,
		requester: requester,
		models:    append([]string(nil), models...),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Models returns the configured fallback order.
func (s *Service) Models() []string {
	return append([]string(nil), s.models...)
}

// ProviderModels lists the models the provider offers.
func (s *Service) ProviderModels(ctx context.Context) ([]llm.Model, error) {
	if s.lister == nil {
		return nil, ErrNoCatalogue
	}
	return s.lister.ListModels(ctx)
}
