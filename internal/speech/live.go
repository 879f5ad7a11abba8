// Package speech adapts the speech recognition daemon to the assistant's
// Recognizer interface and picks the recognizer for a configuration.
package speech

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/execmind/execmind/internal/assistant"
	"github.com/execmind/execmind/internal/daemon"
)

// DefaultTimeout bounds Start (dial, subscribe and start) and Stop.
const DefaultTimeout = 2 * time.Second

// Live streams transcription from the speech daemon. It uses two
// connections: one for commands and one for the event subscription.
type Live struct {
	SocketPath string
	Locale     string
	Timeout    time.Duration

	log zerolog.Logger

	mu     sync.Mutex
	active *liveCapture
}

type liveCapture struct {
	cmd     *daemon.Client
	ev      *daemon.Client
	stopped atomic.Bool
}

func (c *liveCapture) close() {
	c.stopped.Store(true)
	c.cmd.Close()
	c.ev.Close()
}

// NewLive creates a live recognizer for the daemon at socketPath.
func NewLive(socketPath string, log zerolog.Logger) *Live {
	return &Live{
		SocketPath: socketPath,
		Timeout:    DefaultTimeout,
		log:        log.With().Str("component", "speech").Logger(),
	}
}

// Name identifies the recognizer in logs and metrics.
func (l *Live) Name() string { return "live" }

// Start connects, subscribes and starts recording, all within Timeout. Any
// failure to reach or start the daemon is reported as
// assistant.ErrCaptureUnavailable.
func (l *Live) Start(req assistant.CaptureRequest, lis assistant.Listener) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active != nil {
		l.active.close()
		l.active = nil
	}

	if !daemon.Available(l.SocketPath) {
		return fmt.Errorf("%w: no speech daemon at %s", assistant.ErrCaptureUnavailable, l.SocketPath)
	}

	ctx, cancel := l.deadline()
	defer cancel()

	cmd, err := daemon.Connect(ctx, l.SocketPath)
	if err != nil {
		return fmt.Errorf("%w: %v", assistant.ErrCaptureUnavailable, err)
	}
	ev, err := daemon.Connect(ctx, l.SocketPath)
	if err != nil {
		cmd.Close()
		return fmt.Errorf("%w: %v", assistant.ErrCaptureUnavailable, err)
	}
	c := &liveCapture{cmd: cmd, ev: ev}

	sub := daemon.Command{
		Cmd:    daemon.CmdSubscribe,
		Events: []string{daemon.EventPartial, daemon.EventSegment, daemon.EventStatus, daemon.EventError},
	}
	if _, err := ev.Do(ctx, sub); err != nil {
		c.close()
		return fmt.Errorf("%w: %v", assistant.ErrCaptureUnavailable, err)
	}
	if _, err := cmd.Do(ctx, daemon.Command{Cmd: daemon.CmdStart, Locale: l.Locale}); err != nil {
		c.close()
		return fmt.Errorf("%w: %v", assistant.ErrCaptureUnavailable, err)
	}

	l.active = c
	l.log.Debug().Str("mode", string(req.Mode)).Msg("live capture started")
	go l.pump(c, lis)
	return nil
}

// Stop asks the daemon to stop recording and drops both connections. The
// connections are dropped even when the daemon does not answer within
// Timeout.
func (l *Live) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	c := l.active
	if c == nil {
		return nil
	}
	l.active = nil
	c.stopped.Store(true)

	ctx, cancel := l.deadline()
	defer cancel()
	_, err := c.cmd.Do(ctx, daemon.Command{Cmd: daemon.CmdStop})
	c.close()
	if err != nil {
		return fmt.Errorf("stop recognizer: %w", err)
	}
	return nil
}

func (l *Live) deadline() (context.Context, context.CancelFunc) {
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(context.Background(), timeout)
}

// pump forwards daemon events to the listener until the capture is stopped,
// the daemon reports recording ended, or the stream breaks.
func (l *Live) pump(c *liveCapture, lis assistant.Listener) {
	for {
		ev, err := c.ev.ReadEvent()
		if err != nil {
			if !c.stopped.Load() {
				lis.OnError(fmt.Errorf("speech stream: %w", err))
			}
			return
		}
		if c.stopped.Load() {
			return
		}

		switch ev.Event {
		case daemon.EventPartial:
			lis.OnInterim(ev.Text)

		case daemon.EventSegment:
			if words := strings.Fields(ev.Text); len(words) > 0 {
				lis.OnWords(words...)
			}

		case daemon.EventError:
			if ev.Transient != nil && *ev.Transient {
				l.log.Debug().Str("message", ev.Message).Msg("transient speech error")
				continue
			}
			c.stopped.Store(true)
			lis.OnError(fmt.Errorf("speech daemon: %s", ev.Message))
			return

		case daemon.EventStatus:
			if ev.Recording != nil && !*ev.Recording {
				c.stopped.Store(true)
				lis.OnEnd()
				return
			}
		}
	}
}
