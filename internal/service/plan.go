package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/xiaot623/tripmate/internal/domain"
	"github.com/xiaot623/tripmate/internal/session"
)

// PlanTrip requests an itinerary for the session. params overrides the trip
// collected by the conversation; nil uses the collected one. Calling it
// again with the same parameters retries.
func (s *Service) PlanTrip(ctx context.Context, sessionID string, params *domain.TripParameters) (*domain.Itinerary, error) {
	release, err := s.sessions.Acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	trip := sess.Trip
	if params != nil {
		p := params.Clone()
		trip = &p
	}
	if trip == nil {
		return nil, ErrNoTrip
	}

	it, err := s.PlanItinerary(ctx, *trip)
	if err != nil {
		return nil, err
	}

	if _, err := s.sessions.Update(sessionID, func(sess *session.Session) {
		stored := trip.Clone()
		sess.Trip = &stored
		plan := it.Clone()
		sess.Itinerary = &plan
	}); err != nil {
		return nil, err
	}
	return it, nil
}

// PlanItinerary requests an itinerary without touching any session.
func (s *Service) PlanItinerary(ctx context.Context, params domain.TripParameters) (*domain.Itinerary, error) {
	if strings.TrimSpace(params.Destination) == "" {
		return nil, ErrIncompleteTrip
	}

	it, err := s.requester.RequestItinerary(ctx, params)
	if err != nil {
		s.logger.Warn("itinerary request failed", zap.String("destination", params.Destination), zap.Error(err))
		return nil, err
	}
	s.logger.Info("itinerary ready",
		zap.String("destination", params.Destination),
		zap.Int("days", len(it.Days)),
		zap.Int("hotels", len(it.Hotels)))
	return it, nil
}
