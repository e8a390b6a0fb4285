package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
)

// StreamClient manages the WebSocket connection carrying progress events
// for one training session. A dropped connection is terminal for the
// session; there is no reconnect. Starting a new session requires a new
// StreamClient.
type StreamClient struct {
	url       string
	sessionID string

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// NewStreamClient creates a client for the given session. baseURL is the
// ws(s) scheme base, e.g. "ws://127.0.0.1:8000".
func NewStreamClient(baseURL, sessionID string) *StreamClient {
	return &StreamClient{
		url:       baseURL + "/ws/train/" + sessionID,
		sessionID: sessionID,
	}
}

// SessionID returns the session this stream belongs to.
func (c *StreamClient) SessionID() string { return c.sessionID }

// --- Bubble Tea messages ---

// StreamConnectedMsg is sent when the stream connects.
type StreamConnectedMsg struct{ SessionID string }

// StreamEventMsg delivers one progress event. Events arrive in transport
// order; the Update loop re-issues ReadEvent after handling each one, so
// delivery is strictly sequential.
type StreamEventMsg struct {
	SessionID string
	Event     ProgressEvent
}

// StreamClosedMsg is sent exactly once when the stream ends, whether by
// server close, transport failure, or Close. Err is nil for a clean or
// client-initiated close.
type StreamClosedMsg struct {
	SessionID string
	Err       error
}

// Connect returns a command that dials the stream once. A dial failure is
// reported as StreamClosedMsg; there is no retry.
func (c *StreamClient) Connect(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
		if err != nil {
			return StreamClosedMsg{SessionID: c.sessionID, Err: fmt.Errorf("dial %s: %w", c.url, err)}
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			conn.Close()
			return StreamClosedMsg{SessionID: c.sessionID}
		}
		c.conn = conn
		c.mu.Unlock()

		return StreamConnectedMsg{SessionID: c.sessionID}
	}
}

// ReadEvent returns a command that reads the next progress event. It
// should be issued after StreamConnectedMsg and after every
// StreamEventMsg until StreamClosedMsg arrives.
func (c *StreamClient) ReadEvent() tea.Cmd {
	return func() tea.Msg {
		c.mu.Lock()
		conn := c.conn
		closed := c.closed
		c.mu.Unlock()
		if conn == nil || closed {
			return StreamClosedMsg{SessionID: c.sessionID}
		}

		_, data, err := conn.ReadMessage()

		c.mu.Lock()
		closed = c.closed
		c.mu.Unlock()
		if closed {
			// Close was requested while the read was in flight. The
			// read error (if any) is an artifact of tearing down the
			// connection, not a transport failure.
			return StreamClosedMsg{SessionID: c.sessionID}
		}
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return StreamClosedMsg{SessionID: c.sessionID}
			}
			return StreamClosedMsg{SessionID: c.sessionID, Err: err}
		}

		var ev ProgressEvent
		if err := json.Unmarshal(data, &ev); err != nil || ev.Type == "" {
			// A malformed frame must not be dropped silently: surface it
			// as an error event so the session terminates instead of
			// hanging with a partial history.
			return StreamEventMsg{
				SessionID: c.sessionID,
				Event: ProgressEvent{
					Type:    EventError,
					Message: fmt.Sprintf("malformed progress event: %.120s", string(data)),
				},
			}
		}

		return StreamEventMsg{SessionID: c.sessionID, Event: ev}
	}
}

// Close tears down the connection. It is idempotent and safe to call
// from the Update loop while a ReadEvent command is blocked on the
// connection; the pending read resolves to StreamClosedMsg.
func (c *StreamClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}
