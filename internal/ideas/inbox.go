// Package ideas captures free-text ideas into the dashboard inbox.
package ideas

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/execmind/execmind/internal/db"
	"github.com/execmind/execmind/internal/timers"
)

// DefaultProcessingDelay is how long a captured idea shows as processing.
const DefaultProcessingDelay = 2 * time.Second

var (
	// ErrEmptyIdea is returned when the idea text is blank.
	ErrEmptyIdea = errors.New("idea is empty")
	// ErrBusy is returned while the previous idea is still processing.
	ErrBusy = errors.New("idea capture in progress")
)

// Idea is a captured idea.
type Idea struct {
	ID         string
	Text       string
	CapturedAt time.Time
}

// Store is the persistence the inbox needs. *db.Store satisfies it.
type Store interface {
	AddIdea(db.Idea) error
	Ideas() ([]db.Idea, error)
}

// State is what the capture form shows.
type State struct {
	Capturing bool
	Draft     string
}

// Inbox stores ideas and runs the simulated processing step.
type Inbox struct {
	store    Store
	delay    time.Duration
	now      func() time.Time
	log      zerolog.Logger
	tasks    *timers.Group
	onChange func()

	mu    sync.Mutex
	state State
}

// NewInbox creates an inbox. A nil sched uses real time.
func NewInbox(store Store, sched timers.Scheduler, delay time.Duration, log zerolog.Logger, onChange func()) *Inbox {
	if delay <= 0 {
		delay = DefaultProcessingDelay
	}
	return &Inbox{
		store:    store,
		delay:    delay,
		now:      time.Now,
		log:      log.With().Str("component", "ideas").Logger(),
		tasks:    timers.NewGroup(sched),
		onChange: onChange,
	}
}

// Capture stores text as a new idea and marks the inbox as processing until
// the delay elapses, when the draft is cleared.
func (in *Inbox) Capture(text string) (Idea, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Idea{}, ErrEmptyIdea
	}

	in.mu.Lock()
	if in.state.Capturing {
		in.mu.Unlock()
		return Idea{}, ErrBusy
	}

	idea := Idea{ID: uuid.NewString(), Text: text, CapturedAt: in.now()}
	if err := in.store.AddIdea(db.Idea{ID: idea.ID, Text: idea.Text, CapturedAt: idea.CapturedAt}); err != nil {
		in.mu.Unlock()
		return Idea{}, fmt.Errorf("capture idea: %w", err)
	}
	in.state = State{Capturing: true, Draft: text}
	in.tasks.Schedule(in.delay, in.finish)
	in.log.Info().Str("idea", idea.ID).Msg("idea captured")
	in.mu.Unlock()

	in.notify()
	return idea, nil
}

// State returns the capture form state.
func (in *Inbox) State() State {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.state
}

// Ideas lists captured ideas, newest first.
func (in *Inbox) Ideas() ([]Idea, error) {
	rows, err := in.store.Ideas()
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	out := make([]Idea, 0, len(rows))
	for _, r := range rows {
		out = append(out, Idea{ID: r.ID, Text: r.Text, CapturedAt: r.CapturedAt})
	}
	return out, nil
}

// Close cancels the pending processing step.
func (in *Inbox) Close() {
	in.mu.Lock()
	in.tasks.CancelAll()
	in.state = State{}
	in.mu.Unlock()
}

func (in *Inbox) finish() {
	in.mu.Lock()
	in.state = State{}
	in.mu.Unlock()

	in.notify()
}

func (in *Inbox) notify() {
	if in.onChange != nil {
		in.onChange()
	}
}
