// Package session keeps per-chat state in memory.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xiaot623/tripmate/internal/domain"
)

var (
	// ErrNotFound is returned for unknown session IDs.
	ErrNotFound = errors.New("session not found")
	// ErrBusy is returned when a session already has a request in flight.
	ErrBusy = errors.New("session has a request in flight")
)

// Session is one chat with its transcript and results.
type Session struct {
	ID         string
	Transcript []domain.ChatTurn
	Trip       *domain.TripParameters
	Itinerary  *domain.Itinerary
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (s *Session) clone() *Session {
	out := *s
	out.Transcript = append([]domain.ChatTurn(nil), s.Transcript...)
	if s.Trip != nil {
		trip := s.Trip.Clone()
		out.Trip = &trip
	}
	if s.Itinerary != nil {
		it := s.Itinerary.Clone()
		out.Itinerary = &it
	}
	return &out
}

type entry struct {
	session  *Session
	inFlight bool
}

// Store is an in-memory session store. All methods are safe for concurrent
// use and return copies.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	greeting string
	now      func() time.Time
}

// NewStore creates a store whose sessions open with greeting.
func NewStore(greeting string) *Store {
	return &Store{
		sessions: make(map[string]*entry),
		greeting: greeting,
		now:      time.Now,
	}
}

// Greeting returns the opening assistant line.
func (s *Store) Greeting() string {
	return s.greeting
}

func (s *Store) freshTranscript() []domain.ChatTurn {
	if s.greeting == "" {
		return nil
	}
	return []domain.ChatTurn{domain.AssistantTurn(s.greeting)}
}

// Create starts a new session.
func (s *Store) Create() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := &Session{
		ID:         uuid.New().String(),
		Transcript: s.freshTranscript(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.sessions[sess.ID] = &entry{session: sess}
	return sess.clone()
}

// Get returns a copy of the session.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e.session.clone(), nil
}

// Reset starts a new trip in an existing session. The transcript returns to
// the greeting and the trip and itinerary are cleared.
func (s *Store) Reset(id string) (*Session, error) {
	return s.Update(id, func(sess *Session) {
		sess.Transcript = s.freshTranscript()
		sess.Trip = nil
		sess.Itinerary = nil
	})
}

// Delete removes the session. Deleting an unknown session is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Acquire marks the session busy until the returned release func is called.
// It fails with ErrBusy if another request holds it.
func (s *Store) Acquire(id string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if e.inFlight {
		return nil, ErrBusy
	}
	e.inFlight = true

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			e.inFlight = false
			s.mu.Unlock()
		})
	}, nil
}

// Update applies fn to the session under the store lock and returns a copy
// of the result. fn must not call back into the store.
func (s *Store) Update(id string, fn func(*Session)) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	fn(e.session)
	e.session.UpdatedAt = s.now()
	return e.session.clone(), nil
}

// Prune drops idle sessions not updated within olderThan and returns how
// many were removed. Busy sessions are kept.
func (s *Store) Prune(olderThan time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-olderThan)
	removed := 0
	for id, e := range s.sessions {
		if !e.inFlight && e.session.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
