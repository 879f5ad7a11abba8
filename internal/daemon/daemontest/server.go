// Package daemontest runs an in-process fake speech daemon on a Unix socket
// for tests.
package daemontest

import (
	"bufio"
	"encoding/json"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/execmind/execmind/internal/daemon"
)

// Server accepts any number of connections, answers commands with canned
// responses and fans Emit'd events out to every subscribed connection.
type Server struct {
	Path string

	ln net.Listener

	mu        sync.Mutex
	commands  []daemon.Command
	subs      []*conn
	startErr  string
	stalled   bool
	listening bool
}

type conn struct {
	c  net.Conn
	mu sync.Mutex
}

func (c *conn) write(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err = c.c.Write(append(data, '\n'))
	return err
}

// Start listens on a socket inside t.TempDir and stops on test cleanup.
func Start(t *testing.T) *Server {
	t.Helper()

	path := filepath.Join(t.TempDir(), "speech.sock")
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	s := &Server{Path: path, ln: ln, listening: true}
	go s.accept()
	t.Cleanup(s.Close)
	return s
}

// FailStart makes subsequent start commands return ok=false with msg.
func (s *Server) FailStart(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startErr = msg
}

// Stall makes the server record subsequent commands without ever answering
// them, simulating a hung daemon.
func (s *Server) Stall() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stalled = true
}

// Commands returns every command received so far.
func (s *Server) Commands() []daemon.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]daemon.Command(nil), s.commands...)
}

// CommandNames returns the Cmd field of every received command.
func (s *Server) CommandNames() []string {
	var out []string
	for _, c := range s.Commands() {
		out = append(out, c.Cmd)
	}
	return out
}

// Emit sends ev to every subscriber.
func (s *Server) Emit(ev daemon.Event) {
	s.mu.Lock()
	subs := append([]*conn(nil), s.subs...)
	s.mu.Unlock()

	for _, c := range subs {
		_ = c.write(ev)
	}
}

// DropSubscribers closes every subscriber connection, simulating a daemon
// crash from the client's point of view.
func (s *Server) DropSubscribers() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, c := range subs {
		c.c.Close()
	}
}

// WaitSubscribers blocks until at least n subscribers are connected.
func (s *Server) WaitSubscribers(n int, timeout time.Duration) bool {
	return s.waitFor(timeout, func() bool { return len(s.subs) >= n })
}

// WaitCommands blocks until at least n commands have been received.
func (s *Server) WaitCommands(n int, timeout time.Duration) bool {
	return s.waitFor(timeout, func() bool { return len(s.commands) >= n })
}

func (s *Server) waitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		ok := cond()
		s.mu.Unlock()
		if ok {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

// Close stops accepting and drops all subscribers.
func (s *Server) Close() {
	s.mu.Lock()
	wasListening := s.listening
	s.listening = false
	s.mu.Unlock()

	if wasListening {
		s.ln.Close()
	}
	s.DropSubscribers()
}

func (s *Server) accept() {
	for {
		nc, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.serve(&conn{c: nc})
	}
}

func (s *Server) serve(c *conn) {
	scanner := bufio.NewScanner(c.c)
	for scanner.Scan() {
		var cmd daemon.Command
		if err := json.Unmarshal(scanner.Bytes(), &cmd); err != nil {
			_ = c.write(daemon.Response{OK: false, Error: "bad command"})
			continue
		}

		s.mu.Lock()
		s.commands = append(s.commands, cmd)
		startErr, stalled := s.startErr, s.stalled
		s.mu.Unlock()

		if stalled {
			continue
		}

		switch cmd.Cmd {
		case daemon.CmdSubscribe:
			_ = c.write(daemon.Response{OK: true})
			s.mu.Lock()
			s.subs = append(s.subs, c)
			s.mu.Unlock()
		case daemon.CmdStart:
			if startErr != "" {
				_ = c.write(daemon.Response{OK: false, Error: startErr})
				continue
			}
			_ = c.write(daemon.Response{OK: true, SessionID: "sess-test", Recording: daemon.BoolPtr(true)})
		case daemon.CmdStop:
			_ = c.write(daemon.Response{OK: true, Recording: daemon.BoolPtr(false)})
		case daemon.CmdStatus:
			_ = c.write(daemon.Response{OK: true, Recording: daemon.BoolPtr(false), Status: "idle"})
		default:
			_ = c.write(daemon.Response{OK: false, Error: "unknown command " + cmd.Cmd})
		}
	}
	c.c.Close()
}
