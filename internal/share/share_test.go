package share

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/execmind/execmind/internal/assistant"
	"github.com/execmind/execmind/internal/timers"
)

var testTeams = []string{"Executive Team", "Board Members", "Finance"}

func newTestPanel(t *testing.T) (*Panel, *timers.Manual) {
	t.Helper()
	clock := timers.NewManual()
	p := NewPanel(Options{
		Teams:         testTeams,
		Scheduler:     clock,
		ToastDuration: 2 * time.Second,
		ShareDismiss:  3 * time.Second,
	})
	return p, clock
}

func responded(mode assistant.Mode) assistant.Session {
	return assistant.Session{ID: "s-1", Mode: mode, Phase: assistant.PhaseResponse}
}

func TestLabels(t *testing.T) {
	save, share := Labels(assistant.ModePostMeeting)
	assert.Equal(t, "Save as Note", save)
	assert.Equal(t, "Share with Team", share)

	save, share = Labels(assistant.ModePreMeeting)
	assert.Equal(t, "Save in CEO Memory Bank", save)
	assert.Equal(t, "Attach to Calendar", share)
}

func TestActionsRequireResponse(t *testing.T) {
	p, _ := newTestPanel(t)

	for _, phase := range []assistant.Phase{assistant.PhaseListening, assistant.PhaseProcessing} {
		s := assistant.Session{Mode: assistant.ModePostMeeting, Phase: phase}
		assert.ErrorIs(t, p.Save(s), ErrNotAvailable)
		assert.ErrorIs(t, p.Share(s), ErrNotAvailable)
	}
	assert.Equal(t, State{Flow: FlowClosed, Teams: p.State().Teams}, p.State())
}

func TestSaveToastDismissesAfterTwoSeconds(t *testing.T) {
	p, clock := newTestPanel(t)

	require.NoError(t, p.Save(responded(assistant.ModePostMeeting)))
	assert.Equal(t, "Saved as note", p.State().Toast)

	clock.Advance(1999 * time.Millisecond)
	assert.Equal(t, "Saved as note", p.State().Toast)
	clock.Advance(time.Millisecond)
	assert.Empty(t, p.State().Toast)
}

func TestNewerToastOutlivesOlderTimer(t *testing.T) {
	p, clock := newTestPanel(t)

	require.NoError(t, p.Save(responded(assistant.ModePreMeeting)))
	clock.Advance(time.Second)
	require.NoError(t, p.Share(responded(assistant.ModePreMeeting)))
	assert.Equal(t, "Attached to calendar", p.State().Toast)

	clock.Advance(time.Second)
	assert.Equal(t, "Attached to calendar", p.State().Toast)
	clock.Advance(time.Second)
	assert.Empty(t, p.State().Toast)
}

func TestPreMeetingShareDoesNotOpenTeams(t *testing.T) {
	p, _ := newTestPanel(t)

	require.NoError(t, p.Share(responded(assistant.ModePreMeeting)))
	assert.Equal(t, FlowClosed, p.State().Flow)
}

func TestShareWithTeamFlow(t *testing.T) {
	p, clock := newTestPanel(t)

	require.NoError(t, p.Share(responded(assistant.ModePostMeeting)))
	st := p.State()
	assert.Equal(t, FlowSelecting, st.Flow)
	assert.False(t, st.CanConfirm(), "confirm disabled with zero teams")
	assert.ErrorIs(t, p.Confirm(), ErrNoTeamSelected)

	require.NoError(t, p.ToggleTeam(2))
	assert.True(t, p.State().CanConfirm())
	assert.Equal(t, []string{"Finance"}, p.State().SelectedTeams())

	require.NoError(t, p.ToggleTeam(2))
	assert.False(t, p.State().CanConfirm(), "unchecking the last team disables confirm")

	require.NoError(t, p.ToggleTeam(0))
	require.NoError(t, p.ToggleTeam(1))
	require.NoError(t, p.Confirm())
	assert.Equal(t, FlowConfirmed, p.State().Flow)
	assert.Equal(t, []time.Duration{3 * time.Second}, clock.PendingDelays())

	clock.Advance(2999 * time.Millisecond)
	assert.Equal(t, FlowConfirmed, p.State().Flow)
	clock.Advance(time.Millisecond)

	st = p.State()
	assert.Equal(t, FlowClosed, st.Flow)
	assert.Empty(t, st.SelectedTeams())
}

func TestToggleTeamOutsideSelection(t *testing.T) {
	p, _ := newTestPanel(t)
	assert.ErrorIs(t, p.ToggleTeam(0), ErrNotSelecting)
	assert.ErrorIs(t, p.Confirm(), ErrNotSelecting)

	require.NoError(t, p.Share(responded(assistant.ModePostMeeting)))
	assert.ErrorIs(t, p.ToggleTeam(len(testTeams)), ErrUnknownTeam)
	assert.ErrorIs(t, p.ToggleTeam(-1), ErrUnknownTeam)
}

func TestCancelClearsSelection(t *testing.T) {
	p, _ := newTestPanel(t)

	require.NoError(t, p.Share(responded(assistant.ModePostMeeting)))
	require.NoError(t, p.ToggleTeam(0))
	p.Cancel()
	assert.Equal(t, FlowClosed, p.State().Flow)

	require.NoError(t, p.Share(responded(assistant.ModePostMeeting)))
	assert.Empty(t, p.State().SelectedTeams())
}

func TestCloseCancelsDismissals(t *testing.T) {
	p, clock := newTestPanel(t)
	changes := 0
	p.onChange = func() { changes++ }

	require.NoError(t, p.Save(responded(assistant.ModePostMeeting)))
	require.NoError(t, p.Share(responded(assistant.ModePostMeeting)))
	require.NoError(t, p.ToggleTeam(0))
	require.NoError(t, p.Confirm())
	before := changes

	p.Close()
	clock.Advance(10 * time.Second)

	st := p.State()
	assert.Empty(t, st.Toast)
	assert.Equal(t, FlowClosed, st.Flow)
	assert.Equal(t, before, changes, "no callbacks after close")
}
