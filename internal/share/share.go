// Package share implements the acknowledgements shown after a response:
// the save and calendar toasts and the share-with-team flow.
package share

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/execmind/execmind/internal/assistant"
	"github.com/execmind/execmind/internal/timers"
)

const (
	DefaultToastDuration = 2 * time.Second
	DefaultShareDismiss  = 3 * time.Second
)

var (
	// ErrNotAvailable is returned when an action is requested outside the
	// response phase.
	ErrNotAvailable = errors.New("action available only once a response is shown")
	// ErrNoTeamSelected is returned when confirming with no team checked.
	ErrNoTeamSelected = errors.New("select at least one team")
	// ErrNotSelecting is returned by team operations outside the selecting state.
	ErrNotSelecting = errors.New("share dialog is not open")
	// ErrUnknownTeam is returned for an out-of-range team index.
	ErrUnknownTeam = errors.New("unknown team")
)

// FlowState is the share-with-team state.
type FlowState string

const (
	FlowClosed    FlowState = "closed"
	FlowSelecting FlowState = "selecting"
	FlowConfirmed FlowState = "confirmed"
)

// Labels returns the save and share labels for mode.
func Labels(mode assistant.Mode) (save, share string) {
	if mode == assistant.ModePreMeeting {
		return "Save in CEO Memory Bank", "Attach to Calendar"
	}
	return "Save as Note", "Share with Team"
}

// Team is a checkbox in the share dialog.
type Team struct {
	Name     string
	Selected bool
}

// State is a snapshot of the panel.
type State struct {
	Toast string
	Flow  FlowState
	Teams []Team
}

// CanConfirm reports whether the confirm control is enabled.
func (s State) CanConfirm() bool {
	if s.Flow != FlowSelecting {
		return false
	}
	for _, t := range s.Teams {
		if t.Selected {
			return true
		}
	}
	return false
}

// SelectedTeams returns the names of checked teams.
func (s State) SelectedTeams() []string {
	var out []string
	for _, t := range s.Teams {
		if t.Selected {
			out = append(out, t.Name)
		}
	}
	return out
}

// Options configures a Panel.
type Options struct {
	Teams         []string
	Scheduler     timers.Scheduler
	ToastDuration time.Duration
	ShareDismiss  time.Duration
	Logger        zerolog.Logger
	OnChange      func()
}

// Panel owns the toast and the share flow of one dialog. Close cancels every
// pending dismissal.
type Panel struct {
	toastFor time.Duration
	dismiss  time.Duration
	log      zerolog.Logger
	onChange func()
	tasks    *timers.Group

	mu        sync.Mutex
	toast     string
	toastTask uint64
	flow      FlowState
	teams     []Team
}

// NewPanel creates a closed panel.
func NewPanel(opts Options) *Panel {
	if opts.ToastDuration <= 0 {
		opts.ToastDuration = DefaultToastDuration
	}
	if opts.ShareDismiss <= 0 {
		opts.ShareDismiss = DefaultShareDismiss
	}
	p := &Panel{
		toastFor: opts.ToastDuration,
		dismiss:  opts.ShareDismiss,
		log:      opts.Logger.With().Str("component", "share").Logger(),
		onChange: opts.OnChange,
		tasks:    timers.NewGroup(opts.Scheduler),
		flow:     FlowClosed,
	}
	for _, name := range opts.Teams {
		p.teams = append(p.teams, Team{Name: name})
	}
	return p
}

// Save acknowledges the save action with a toast.
func (p *Panel) Save(s assistant.Session) error {
	if s.Phase != assistant.PhaseResponse {
		return ErrNotAvailable
	}
	msg := "Saved as note"
	if s.Mode == assistant.ModePreMeeting {
		msg = "Saved in CEO Memory Bank"
	}
	p.showToast(msg)
	p.log.Info().Str("session", s.ID).Str("mode", string(s.Mode)).Msg("response saved")
	return nil
}

// Share attaches a pre-meeting brief to the calendar with a toast, or opens
// team selection for a post-meeting summary.
func (p *Panel) Share(s assistant.Session) error {
	if s.Phase != assistant.PhaseResponse {
		return ErrNotAvailable
	}
	if s.Mode == assistant.ModePreMeeting {
		p.showToast("Attached to calendar")
		p.log.Info().Str("session", s.ID).Msg("response attached to calendar")
		return nil
	}

	p.mu.Lock()
	if p.flow != FlowClosed {
		p.mu.Unlock()
		return nil
	}
	p.flow = FlowSelecting
	p.clearSelectionLocked()
	p.mu.Unlock()

	p.notify()
	return nil
}

// ToggleTeam flips the checkbox at index i.
func (p *Panel) ToggleTeam(i int) error {
	p.mu.Lock()
	if p.flow != FlowSelecting {
		p.mu.Unlock()
		return ErrNotSelecting
	}
	if i < 0 || i >= len(p.teams) {
		p.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrUnknownTeam, i)
	}
	p.teams[i].Selected = !p.teams[i].Selected
	p.mu.Unlock()

	p.notify()
	return nil
}

// Confirm shares with the selected teams. The confirmation closes itself
// after the dismiss duration.
func (p *Panel) Confirm() error {
	p.mu.Lock()
	st := p.stateLocked()
	if st.Flow != FlowSelecting {
		p.mu.Unlock()
		return ErrNotSelecting
	}
	if !st.CanConfirm() {
		p.mu.Unlock()
		return ErrNoTeamSelected
	}
	p.flow = FlowConfirmed
	p.tasks.Schedule(p.dismiss, p.dismissConfirmation)
	p.log.Info().Str("teams", strings.Join(st.SelectedTeams(), ",")).Msg("response shared")
	p.mu.Unlock()

	p.notify()
	return nil
}

// Cancel closes team selection without sharing.
func (p *Panel) Cancel() {
	p.mu.Lock()
	if p.flow != FlowSelecting {
		p.mu.Unlock()
		return
	}
	p.flow = FlowClosed
	p.clearSelectionLocked()
	p.mu.Unlock()

	p.notify()
}

// Close clears the panel and cancels pending dismissals.
func (p *Panel) Close() {
	p.mu.Lock()
	p.tasks.CancelAll()
	p.toast = ""
	p.flow = FlowClosed
	p.clearSelectionLocked()
	p.mu.Unlock()
}

// State returns a snapshot of the panel.
func (p *Panel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateLocked()
}

func (p *Panel) stateLocked() State {
	return State{
		Toast: p.toast,
		Flow:  p.flow,
		Teams: append([]Team(nil), p.teams...),
	}
}

func (p *Panel) showToast(msg string) {
	p.mu.Lock()
	p.toast = msg
	p.toastTask++
	id := p.toastTask
	p.tasks.Schedule(p.toastFor, func() { p.hideToast(id) })
	p.mu.Unlock()

	p.notify()
}

// hideToast clears the toast unless a newer one replaced it.
func (p *Panel) hideToast(id uint64) {
	p.mu.Lock()
	if id != p.toastTask {
		p.mu.Unlock()
		return
	}
	p.toast = ""
	p.mu.Unlock()

	p.notify()
}

func (p *Panel) dismissConfirmation() {
	p.mu.Lock()
	if p.flow != FlowConfirmed {
		p.mu.Unlock()
		return
	}
	p.flow = FlowClosed
	p.clearSelectionLocked()
	p.mu.Unlock()

	p.notify()
}

func (p *Panel) clearSelectionLocked() {
	for i := range p.teams {
		p.teams[i].Selected = false
	}
}

func (p *Panel) notify() {
	if p.onChange != nil {
		p.onChange()
	}
}
