package assistant

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/execmind/execmind/internal/timers"
)

// DefaultProcessingDelay is the simulated think time between stopping
// capture and showing the response.
const DefaultProcessingDelay = 1500 * time.Millisecond

// Session is a snapshot of one open dialog's state.
type Session struct {
	ID           string
	Mode         Mode
	MeetingTitle string
	Phase        Phase
	Capturing    bool
	Transcript   []string
	Interim      string
	Response     *Response
}

// TranscriptText joins the transcript words.
func (s Session) TranscriptText() string {
	return strings.Join(s.Transcript, " ")
}

func (s Session) clone() Session {
	s.Transcript = append([]string(nil), s.Transcript...)
	if s.Response != nil {
		r := *s.Response
		r.Insights = append([]string(nil), r.Insights...)
		s.Response = &r
	}
	return s
}

// Recorder observes session events for metrics.
type Recorder interface {
	PhaseEntered(mode Mode, phase Phase)
	CaptureFailed(mode Mode, reason string)
	RecognizerRestarted(mode Mode)
	ResponseServed(mode Mode)
}

type nopRecorder struct{}

func (nopRecorder) PhaseEntered(Mode, Phase) {}
func (nopRecorder) CaptureFailed(Mode, string) {}
func (nopRecorder) RecognizerRestarted(Mode) {}
func (nopRecorder) ResponseServed(Mode) {}

// Options configures a Controller.
type Options struct {
	Recognizer      Recognizer
	Scheduler       timers.Scheduler
	ProcessingDelay time.Duration
	Logger          zerolog.Logger
	Recorder        Recorder

	// Lookup resolves the response. Defaults to the package Lookup.
	Lookup func(mode Mode, meetingTitle string) Response

	// OnChange is called, without locks held, after every state change.
	OnChange func()
}

// Controller owns the single session of an assistant dialog. All methods are
// safe for concurrent use; recognizer and timer callbacks that arrive after
// the capture or session they belong to has ended are dropped. Recognizer
// Start and Stop run without mu held, so a slow recognizer never blocks
// Snapshot.
type Controller struct {
	rec      Recognizer
	delay    time.Duration
	log      zerolog.Logger
	recorder Recorder
	lookup   func(Mode, string) Response
	onChange func()
	tasks    *timers.Group

	mu       sync.Mutex
	open     bool
	session  Session
	gen      uint64
	starting bool

	// recMu serializes recognizer calls. running is the generation the
	// recognizer is currently serving, zero when idle.
	recMu   sync.Mutex
	running uint64
}

// NewController creates a closed dialog controller.
func NewController(opts Options) (*Controller, error) {
	if opts.Recognizer == nil {
		return nil, fmt.Errorf("assistant: recognizer is required")
	}
	if opts.ProcessingDelay <= 0 {
		opts.ProcessingDelay = DefaultProcessingDelay
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	if opts.Lookup == nil {
		opts.Lookup = Lookup
	}
	return &Controller{
		rec:      opts.Recognizer,
		delay:    opts.ProcessingDelay,
		log:      opts.Logger.With().Str("component", "assistant").Str("recognizer", opts.Recognizer.Name()).Logger(),
		recorder: opts.Recorder,
		lookup:   opts.Lookup,
		onChange: opts.OnChange,
		tasks:    timers.NewGroup(opts.Scheduler),
	}, nil
}

// Open starts a fresh session, discarding whatever state a previous session
// was in.
func (c *Controller) Open(mode Mode, meetingTitle string) {
	c.mu.Lock()
	stop := c.teardownLocked()
	c.open = true
	c.session = newSession(mode, meetingTitle)
	c.log.Info().Str("session", c.session.ID).Str("mode", string(mode)).Msg("dialog opened")
	c.recorder.PhaseEntered(mode, PhaseListening)
	c.mu.Unlock()

	c.stopRecognizer(stop)
	c.notify()
}

// Close stops capture, cancels pending work and discards the session.
func (c *Controller) Close() {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return
	}
	stop := c.teardownLocked()
	c.log.Info().Str("session", c.session.ID).Msg("dialog closed")
	c.open = false
	c.session = Session{}
	c.mu.Unlock()

	c.stopRecognizer(stop)
	c.notify()
}

// Reset returns an open session to listening with transcript and response
// cleared.
func (c *Controller) Reset() {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return
	}
	stop := c.teardownLocked()
	c.session = newSession(c.session.Mode, c.session.MeetingTitle)
	c.recorder.PhaseEntered(c.session.Mode, PhaseListening)
	c.mu.Unlock()

	c.stopRecognizer(stop)
	c.notify()
}

// StartCapture clears the previous question and answer and starts the
// recognizer. If the recognizer cannot start the session is unchanged and the
// error is returned; ErrCaptureUnavailable marks a missing capability. A
// start superseded by Close, Reset or Open while the recognizer was starting
// is undone and reports no error.
func (c *Controller) StartCapture() error {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return ErrDialogClosed
	}
	if c.session.Capturing || c.starting {
		c.mu.Unlock()
		return nil
	}
	c.gen++
	gen, id, mode := c.gen, c.session.ID, c.session.Mode
	c.starting = true
	c.mu.Unlock()

	err := c.startRecognizer(gen, mode)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		c.stopRecognizer(gen)
		return nil
	}
	c.starting = false
	if err != nil {
		c.recorder.CaptureFailed(mode, "start")
		c.log.Warn().Err(err).Str("session", id).Msg("capture start failed")
		c.mu.Unlock()
		return fmt.Errorf("start capture: %w", err)
	}

	c.tasks.CancelAll()
	c.session.Transcript = nil
	c.session.Interim = ""
	c.session.Response = nil
	c.session.Capturing = true
	if c.session.Phase != PhaseListening {
		c.session.Phase = PhaseListening
		c.recorder.PhaseEntered(c.session.Mode, PhaseListening)
	}
	c.log.Debug().Str("session", id).Msg("capture started")
	c.mu.Unlock()

	c.notify()
	return nil
}

// StopCapture ends capture. With a non-empty transcript the session moves to
// processing and, after the processing delay, to response. With an empty
// transcript it stays in listening.
func (c *Controller) StopCapture() {
	c.mu.Lock()
	if !c.open || !c.session.Capturing {
		c.mu.Unlock()
		return
	}
	stop := c.endCaptureLocked()

	if len(c.session.Transcript) > 0 {
		c.session.Phase = PhaseProcessing
		c.recorder.PhaseEntered(c.session.Mode, PhaseProcessing)
		id := c.session.ID
		c.tasks.Schedule(c.delay, func() { c.finishProcessing(id) })
		c.log.Debug().Str("session", id).Str("question", c.session.TranscriptText()).Msg("processing question")
	} else {
		c.log.Debug().Str("session", c.session.ID).Msg("capture stopped with empty transcript")
	}
	c.mu.Unlock()

	c.stopRecognizer(stop)
	c.notify()
}

// ToggleCapture starts capture when idle and stops it when capturing.
func (c *Controller) ToggleCapture() error {
	if c.Snapshot().Capturing {
		c.StopCapture()
		return nil
	}
	return c.StartCapture()
}

// Snapshot returns a copy of the current session.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.clone()
}

// IsOpen reports whether a session is active.
func (c *Controller) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *Controller) finishProcessing(id string) {
	c.mu.Lock()
	if !c.open || c.session.ID != id || c.session.Phase != PhaseProcessing {
		c.mu.Unlock()
		return
	}
	resp := c.lookup(c.session.Mode, c.session.MeetingTitle)
	c.session.Response = &resp
	c.session.Phase = PhaseResponse
	c.recorder.PhaseEntered(c.session.Mode, PhaseResponse)
	c.recorder.ResponseServed(c.session.Mode)
	c.log.Info().Str("session", id).Msg("response ready")
	c.mu.Unlock()

	c.notify()
}

// teardownLocked ends capture and cancels every scheduled task. It returns
// the generation the caller must pass to stopRecognizer once mu is released.
func (c *Controller) teardownLocked() uint64 {
	var stop uint64
	if c.session.Capturing || c.starting {
		stop = c.endCaptureLocked()
	}
	c.tasks.CancelAll()
	return stop
}

// endCaptureLocked retires the current capture generation and returns it.
func (c *Controller) endCaptureLocked() uint64 {
	stop := c.gen
	c.gen++
	c.starting = false
	c.session.Capturing = false
	c.session.Interim = ""
	return stop
}

func (c *Controller) startRecognizer(gen uint64, mode Mode) error {
	c.recMu.Lock()
	defer c.recMu.Unlock()

	if err := c.rec.Start(CaptureRequest{Mode: mode}, c.listener(gen)); err != nil {
		c.running = 0
		return err
	}
	c.running = gen
	return nil
}

// stopRecognizer stops the recognizer if it is still serving gen. A later
// start has already replaced the capture otherwise.
func (c *Controller) stopRecognizer(gen uint64) {
	c.recMu.Lock()
	defer c.recMu.Unlock()

	if gen == 0 || c.running != gen {
		return
	}
	c.running = 0
	if err := c.rec.Stop(); err != nil {
		c.log.Warn().Err(err).Msg("recognizer stop failed")
	}
}

func (c *Controller) onWords(gen uint64, words []string) {
	c.mu.Lock()
	if gen != c.gen || !c.session.Capturing {
		c.mu.Unlock()
		return
	}
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			c.session.Transcript = append(c.session.Transcript, w)
		}
	}
	c.session.Interim = ""
	c.mu.Unlock()

	c.notify()
}

func (c *Controller) onInterim(gen uint64, text string) {
	c.mu.Lock()
	if gen != c.gen || !c.session.Capturing {
		c.mu.Unlock()
		return
	}
	c.session.Interim = text
	c.mu.Unlock()

	c.notify()
}

func (c *Controller) onError(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.gen || !c.session.Capturing {
		c.mu.Unlock()
		return
	}
	c.log.Warn().Err(err).Str("session", c.session.ID).Msg("capture engine error, returning to listening")
	c.recorder.CaptureFailed(c.session.Mode, "engine")
	stop := c.failCaptureLocked()
	c.mu.Unlock()

	c.stopRecognizer(stop)
	c.notify()
}

// onEnd restarts the recognizer when it stops on its own while the session
// still wants input.
func (c *Controller) onEnd(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || !c.session.Capturing {
		c.mu.Unlock()
		return
	}
	c.gen++
	next, id, mode := c.gen, c.session.ID, c.session.Mode
	c.mu.Unlock()

	err := c.startRecognizer(next, mode)

	c.mu.Lock()
	if next != c.gen {
		// Stopped or closed while restarting.
		c.mu.Unlock()
		c.stopRecognizer(next)
		return
	}
	if err != nil {
		c.log.Warn().Err(err).Str("session", id).Msg("recognizer restart failed")
		c.recorder.CaptureFailed(mode, "restart")
		stop := c.failCaptureLocked()
		c.mu.Unlock()
		c.stopRecognizer(stop)
		c.notify()
		return
	}
	c.recorder.RecognizerRestarted(mode)
	c.log.Debug().Str("session", id).Msg("recognizer restarted")
	c.mu.Unlock()
}

func (c *Controller) failCaptureLocked() uint64 {
	stop := c.endCaptureLocked()
	if c.session.Phase != PhaseListening {
		c.session.Phase = PhaseListening
		c.recorder.PhaseEntered(c.session.Mode, PhaseListening)
	}
	return stop
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}

func (c *Controller) listener(gen uint64) Listener {
	return captureListener{c: c, gen: gen}
}

type captureListener struct {
	c   *Controller
	gen uint64
}

func (l captureListener) OnWords(words ...string) { l.c.onWords(l.gen, words) }
func (l captureListener) OnInterim(text string) { l.c.onInterim(l.gen, text) }
func (l captureListener) OnError(err error) { l.c.onError(l.gen, err) }
func (l captureListener) OnEnd() { l.c.onEnd(l.gen) }

func newSession(mode Mode, meetingTitle string) Session {
	if meetingTitle == "" {
		meetingTitle = DefaultMeetingTitle
	}
	return Session{
		ID:           uuid.NewString(),
		Mode:         mode,
		MeetingTitle: meetingTitle,
		Phase:        PhaseListening,
	}
}
