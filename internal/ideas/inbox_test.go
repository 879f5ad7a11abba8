package ideas

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/execmind/execmind/internal/db"
	"github.com/execmind/execmind/internal/timers"
)

type failingStore struct{}

func (failingStore) AddIdea(db.Idea) error { return errors.New("disk full") }
func (failingStore) Ideas() ([]db.Idea, error) { return nil, nil }

func newTestInbox(t *testing.T) (*Inbox, *timers.Manual, *int) {
	t.Helper()
	store, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	clock := timers.NewManual()
	changes := 0
	in := NewInbox(store, clock, 2*time.Second, zerolog.Nop(), func() { changes++ })
	return in, clock, &changes
}

func TestCaptureStoresAndProcesses(t *testing.T) {
	in, clock, changes := newTestInbox(t)

	idea, err := in.Capture("  LATAM joint venture strategy ")
	require.NoError(t, err)
	assert.Equal(t, "LATAM joint venture strategy", idea.Text)
	assert.NotEmpty(t, idea.ID)
	assert.Equal(t, State{Capturing: true, Draft: "LATAM joint venture strategy"}, in.State())

	ideas, err := in.Ideas()
	require.NoError(t, err)
	require.Len(t, ideas, 1)
	assert.Equal(t, idea.ID, ideas[0].ID)

	clock.Advance(1999 * time.Millisecond)
	assert.True(t, in.State().Capturing)

	clock.Advance(time.Millisecond)
	assert.Equal(t, State{}, in.State())
	assert.Equal(t, 2, *changes)
}

func TestCaptureRejectsBlank(t *testing.T) {
	in, _, changes := newTestInbox(t)

	_, err := in.Capture("   ")
	assert.ErrorIs(t, err, ErrEmptyIdea)
	assert.Equal(t, 0, *changes)

	ideas, err := in.Ideas()
	require.NoError(t, err)
	assert.Empty(t, ideas)
}

func TestCaptureWhileProcessing(t *testing.T) {
	in, clock, _ := newTestInbox(t)

	_, err := in.Capture("first")
	require.NoError(t, err)
	_, err = in.Capture("second")
	assert.ErrorIs(t, err, ErrBusy)

	clock.Advance(2 * time.Second)
	_, err = in.Capture("second")
	assert.NoError(t, err)

	ideas, err := in.Ideas()
	require.NoError(t, err)
	assert.Len(t, ideas, 2)
}

func TestCloseCancelsProcessing(t *testing.T) {
	in, clock, changes := newTestInbox(t)

	_, err := in.Capture("leaders as coaches")
	require.NoError(t, err)
	in.Close()
	assert.Equal(t, State{}, in.State())

	clock.Advance(5 * time.Second)
	assert.Equal(t, 1, *changes)
}

func TestCaptureStoreFailure(t *testing.T) {
	in := NewInbox(failingStore{}, timers.NewManual(), 0, zerolog.Nop(), nil)

	_, err := in.Capture("idea")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.False(t, in.State().Capturing)
}
