package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xiaot623/tripmate/internal/collector"
	"github.com/xiaot623/tripmate/internal/domain"
	"github.com/xiaot623/tripmate/internal/session"
)

// ChatReply is what the user sees after a chat turn.
type ChatReply struct {
	Text        string
	Trip        *domain.TripParameters
	Unavailable bool
	Model       string
}

// CreateSession opens a new chat seeded with the greeting.
func (s *Service) CreateSession() *session.Session {
	sess := s.sessions.Create()
	s.logger.Info("session created", zap.String("session_id", sess.ID))
	return sess
}

// GetSession returns a copy of the session.
func (s *Service) GetSession(id string) (*session.Session, error) {
	return s.sessions.Get(id)
}

// ResetSession starts a new trip in the session.
func (s *Service) ResetSession(id string) (*session.Session, error) {
	release, err := s.sessions.Acquire(id)
	if err != nil {
		return nil, err
	}
	defer release()

	s.logger.Info("session reset", zap.String("session_id", id))
	return s.sessions.Reset(id)
}

// Greeting returns the line that opens every conversation.
func (s *Service) Greeting() string {
	return s.sessions.Greeting()
}

// Chat submits one user turn for the session. When no model answers, the
// transcript is left unchanged and the reply carries the apology text.
func (s *Service) Chat(ctx context.Context, sessionID, text string) (*ChatReply, error) {
	release, err := s.sessions.Acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	res, err := s.collector.SubmitUserTurn(ctx, sess.Transcript, text)
	if err != nil {
		var unavailable *collector.AssistantUnavailableError
		if errors.As(err, &unavailable) {
			return &ChatReply{Text: collector.ApologyText, Unavailable: true}, nil
		}
		return nil, err
	}

	if _, err := s.sessions.Update(sessionID, func(sess *session.Session) {
		sess.Transcript = res.History
		if res.Extracted != nil {
			trip := res.Extracted.Clone()
			sess.Trip = &trip
			sess.Itinerary = nil
		}
	}); err != nil {
		return nil, err
	}

	reply := &ChatReply{Text: res.DisplayText, Model: res.Model}
	if res.Extracted != nil {
		trip := res.Extracted.Clone()
		reply.Trip = &trip
		s.logger.Info("trip ready", zap.String("session_id", sessionID), zap.String("destination", trip.Destination))
	}
	return reply, nil
}
