package assistant

import (
	"strings"
	"sync"
	"time"

	"github.com/execmind/execmind/internal/timers"
)

// Listener receives recognizer output. Implementations must tolerate calls
// from any goroutine.
type Listener interface {
	// OnWords appends finalized words to the transcript.
	OnWords(words ...string)
	// OnInterim replaces the not-yet-final partial text.
	OnInterim(text string)
	// OnError reports a capture-engine failure.
	OnError(err error)
	// OnEnd reports that the engine stopped on its own.
	OnEnd()
}

// CaptureRequest describes one capture.
type CaptureRequest struct {
	Mode Mode
}

// Recognizer is a speech-to-text source. Start must not call the listener
// synchronously.
type Recognizer interface {
	Name() string
	Start(req CaptureRequest, l Listener) error
	Stop() error
}

// Scripted dictates the mode's canned question one word at a time.
type Scripted struct {
	LeadIn   time.Duration
	Interval time.Duration

	mu    sync.Mutex
	tasks *timers.Group
}

// NewScripted creates a scripted recognizer driven by sched.
func NewScripted(sched timers.Scheduler, leadIn, interval time.Duration) *Scripted {
	return &Scripted{
		LeadIn:   leadIn,
		Interval: interval,
		tasks:    timers.NewGroup(sched),
	}
}

// Name identifies the recognizer in logs and metrics.
func (s *Scripted) Name() string { return "scripted" }

// Start schedules word i of the question at LeadIn + i*Interval.
func (s *Scripted) Start(req CaptureRequest, l Listener) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks.CancelAll()
	for i, word := range strings.Fields(Question(req.Mode)) {
		s.tasks.Schedule(s.LeadIn+time.Duration(i)*s.Interval, func() {
			l.OnWords(word)
		})
	}
	return nil
}

// Stop cancels any words not yet revealed.
func (s *Scripted) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks.CancelAll()
	return nil
}
