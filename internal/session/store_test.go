package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/tripmate/internal/domain"
)

func TestCreateSeedsGreeting(t *testing.T) {
	s := NewStore("Hello!")
	sess := s.Create()

	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, []domain.ChatTurn{domain.AssistantTurn("Hello!")}, sess.Transcript)

	got, err := s.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
}

func TestGetReturnsCopies(t *testing.T) {
	s := NewStore("Hello!")
	sess := s.Create()

	sess.Transcript[0].Text = "tampered"
	got, err := s.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello!", got.Transcript[0].Text)
}

func TestGetUnknown(t *testing.T) {
	_, err := NewStore("").Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateAndReset(t *testing.T) {
	s := NewStore("Hello!")
	sess := s.Create()

	trip := domain.TripParameters{Destination: "Oslo"}
	updated, err := s.Update(sess.ID, func(sess *Session) {
		sess.Transcript = append(sess.Transcript, domain.UserTurn("Oslo"))
		sess.Trip = &trip
		sess.Itinerary = &domain.Itinerary{}
	})
	require.NoError(t, err)
	assert.Len(t, updated.Transcript, 2)
	assert.Equal(t, "Oslo", updated.Trip.Destination)

	reset, err := s.Reset(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.ChatTurn{domain.AssistantTurn("Hello!")}, reset.Transcript)
	assert.Nil(t, reset.Trip)
	assert.Nil(t, reset.Itinerary)
	assert.Equal(t, sess.ID, reset.ID)
}

func TestAcquireIsExclusive(t *testing.T) {
	s := NewStore("")
	sess := s.Create()

	release, err := s.Acquire(sess.ID)
	require.NoError(t, err)

	_, err = s.Acquire(sess.ID)
	assert.ErrorIs(t, err, ErrBusy)

	release()
	release()

	again, err := s.Acquire(sess.ID)
	require.NoError(t, err)
	again()

	_, err = s.Acquire("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAcquireConcurrent(t *testing.T) {
	s := NewStore("")
	sess := s.Create()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Acquire(sess.ID); err == nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, granted)
}

func TestPrune(t *testing.T) {
	s := NewStore("")
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	old := s.Create()
	busy := s.Create()
	release, err := s.Acquire(busy.ID)
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	fresh := s.Create()

	assert.Equal(t, 1, s.Prune(time.Hour))
	_, err = s.Get(old.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(fresh.ID)
	assert.NoError(t, err)
	_, err = s.Get(busy.ID)
	assert.NoError(t, err)

	release()
	assert.Equal(t, 1, s.Prune(time.Hour))
	assert.Equal(t, 1, s.Len())
}

func TestDelete(t *testing.T) {
	s := NewStore("")
	sess := s.Create()
	s.Delete(sess.ID)
	s.Delete(sess.ID)
	assert.Zero(t, s.Len())
}
