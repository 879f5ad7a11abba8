package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"
)

// maxLine bounds one NDJSON message.
const maxLine = 1024 * 1024

// ErrClosed is returned when the daemon hangs up mid-conversation.
var ErrClosed = errors.New("daemon connection closed")

// Available reports whether a daemon socket exists at socketPath.
func Available(socketPath string) bool {
	info, err := os.Stat(socketPath)
	return err == nil && info.Mode()&os.ModeSocket != 0
}

// Client is one connection to the speech daemon. A connection is used either
// for request/response commands or, after a subscribe, as an event stream.
type Client struct {
	conn net.Conn
	enc  *json.Encoder
	in   *bufio.Scanner

	mu sync.Mutex
}

// Connect dials the daemon Unix socket.
func Connect(ctx context.Context, socketPath string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect to daemon: %w", err)
	}

	in := bufio.NewScanner(conn)
	in.Buffer(make([]byte, 0, 64*1024), maxLine)

	return &Client{conn: conn, enc: json.NewEncoder(conn), in: in}, nil
}

// Close shuts down the connection. It unblocks a pending ReadEvent.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// SendCommand writes cmd and reads the daemon's reply. The round-trip is
// bounded by ctx; a cancelled or expired ctx fails the read. The reply may
// report failure in Response.Error; see Do.
func (c *Client) SendCommand(ctx context.Context, cmd Command) (Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if d, ok := ctx.Deadline(); ok {
		c.conn.SetDeadline(d)
	}
	stop := context.AfterFunc(ctx, func() { c.conn.SetDeadline(time.Unix(1, 0)) })
	defer func() {
		if stop() {
			c.conn.SetDeadline(time.Time{})
		}
	}()

	// Encode terminates each value with a newline, which is the NDJSON framing.
	if err := c.enc.Encode(cmd); err != nil {
		return Response{}, fmt.Errorf("write %s command: %w", cmd.Cmd, ctxErr(ctx, err))
	}

	var resp Response
	if err := c.readLine(&resp); err != nil {
		return Response{}, fmt.Errorf("read %s response: %w", cmd.Cmd, ctxErr(ctx, err))
	}
	return resp, nil
}

// Do sends a command and turns a not-OK response into an error.
func (c *Client) Do(ctx context.Context, cmd Command) (Response, error) {
	resp, err := c.SendCommand(ctx, cmd)
	if err != nil {
		return resp, err
	}
	if !resp.OK {
		return resp, fmt.Errorf("daemon %s: %s", cmd.Cmd, resp.Error)
	}
	return resp, nil
}

// ctxErr prefers the context's error over the I/O timeout it caused.
func ctxErr(ctx context.Context, err error) error {
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	return err
}

// ReadEvent blocks for the next event on a subscribed connection.
func (c *Client) ReadEvent() (Event, error) {
	var ev Event
	if err := c.readLine(&ev); err != nil {
		return Event{}, fmt.Errorf("read event: %w", err)
	}
	return ev, nil
}

func (c *Client) readLine(v any) error {
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return err
		}
		return ErrClosed
	}
	if err := json.Unmarshal(c.in.Bytes(), v); err != nil {
		return fmt.Errorf("decode %q: %w", c.in.Text(), err)
	}
	return nil
}
