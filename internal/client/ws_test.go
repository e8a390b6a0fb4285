package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

// streamServer runs handler for one WebSocket connection on
// /ws/train/{id} and returns the ws:// base URL.
func streamServer(t *testing.T, handler func(*websocket.Conn)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/ws/train/") {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func connect(t *testing.T, c *StreamClient) {
	t.Helper()
	msg := c.Connect(context.Background())()
	if _, ok := msg.(StreamConnectedMsg); !ok {
		t.Fatalf("Connect() = %T (%v), want StreamConnectedMsg", msg, msg)
	}
}

func TestStreamDeliversEventsInOrder(t *testing.T) {
	base := streamServer(t, func(conn *websocket.Conn) {
		frames := []string{
			`{"type":"training_started","message":"Training started","epochs":2}`,
			`{"type":"epoch_update","epoch":1,"loss":0.9,"accuracy":0.5}`,
			`{"type":"epoch_update","epoch":2,"loss":0.7,"accuracy":0.6}`,
			`{"type":"training_complete","final_metrics":{"loss":0.7}}`,
		}
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	})

	c := NewStreamClient(base, "abc123")
	connect(t, c)

	wantTypes := []EventType{EventStarted, EventEpoch, EventEpoch, EventComplete}
	for i, want := range wantTypes {
		msg := c.ReadEvent()()
		ev, ok := msg.(StreamEventMsg)
		if !ok {
			t.Fatalf("read %d = %T, want StreamEventMsg", i, msg)
		}
		if ev.SessionID != "abc123" {
			t.Errorf("read %d session = %q", i, ev.SessionID)
		}
		if ev.Event.Type != want {
			t.Errorf("read %d type = %q, want %q", i, ev.Event.Type, want)
		}
	}

	msg := c.ReadEvent()()
	closed, ok := msg.(StreamClosedMsg)
	if !ok {
		t.Fatalf("final read = %T, want StreamClosedMsg", msg)
	}
	if closed.Err != nil {
		t.Errorf("clean server close should not carry an error, got %v", closed.Err)
	}
}

func TestStreamEpochPayload(t *testing.T) {
	base := streamServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"type":"epoch_update","epoch":3,"loss":0.42,"val_loss":0.5,"mae":0.1}`))
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	})

	c := NewStreamClient(base, "abc123")
	connect(t, c)

	msg := c.ReadEvent()()
	ev := msg.(StreamEventMsg).Event
	if ev.Epoch != 3 || ev.Loss != 0.42 {
		t.Errorf("epoch/loss = %d/%.2f, want 3/0.42", ev.Epoch, ev.Loss)
	}
	if ev.ValLoss == nil || *ev.ValLoss != 0.5 {
		t.Error("val_loss not decoded")
	}
	if ev.MAE == nil || *ev.MAE != 0.1 {
		t.Error("mae not decoded")
	}
	if ev.Accuracy != nil {
		t.Error("absent accuracy must decode as nil")
	}
}

func TestStreamMalformedFrame(t *testing.T) {
	done := make(chan struct{})
	base := streamServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{not json`))
		<-done
	})
	defer close(done)

	c := NewStreamClient(base, "abc123")
	connect(t, c)

	msg := c.ReadEvent()()
	ev, ok := msg.(StreamEventMsg)
	if !ok {
		t.Fatalf("read = %T, want StreamEventMsg", msg)
	}
	if ev.Event.Type != EventError {
		t.Errorf("malformed frame surfaced as %q, want error event", ev.Event.Type)
	}
	if ev.Event.Message == "" {
		t.Error("error event should describe the malformed frame")
	}
}

func TestStreamMissingTypeField(t *testing.T) {
	done := make(chan struct{})
	base := streamServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"epoch":1,"loss":0.5}`))
		<-done
	})
	defer close(done)

	c := NewStreamClient(base, "abc123")
	connect(t, c)

	msg := c.ReadEvent()()
	ev, ok := msg.(StreamEventMsg)
	if !ok {
		t.Fatalf("read = %T, want StreamEventMsg", msg)
	}
	if ev.Event.Type != EventError {
		t.Errorf("untyped frame surfaced as %q, want error event", ev.Event.Type)
	}
}

func TestStreamAbnormalDrop(t *testing.T) {
	base := streamServer(t, func(conn *websocket.Conn) {
		// Return without a close handshake: the connection drops.
	})

	c := NewStreamClient(base, "abc123")
	connect(t, c)

	msg := c.ReadEvent()()
	closed, ok := msg.(StreamClosedMsg)
	if !ok {
		t.Fatalf("read = %T, want StreamClosedMsg", msg)
	}
	if closed.Err == nil {
		t.Error("abnormal drop must carry an error")
	}
}

func TestStreamClientClose(t *testing.T) {
	done := make(chan struct{})
	base := streamServer(t, func(conn *websocket.Conn) {
		<-done // hold the connection open, send nothing
	})
	defer close(done)

	c := NewStreamClient(base, "abc123")
	connect(t, c)

	results := make(chan interface{}, 1)
	go func() { results <- c.ReadEvent()() }()

	// Give the read a moment to block, then cancel from the client side.
	time.Sleep(20 * time.Millisecond)
	c.Close()
	c.Close() // idempotent

	select {
	case msg := <-results:
		closed, ok := msg.(StreamClosedMsg)
		if !ok {
			t.Fatalf("read = %T, want StreamClosedMsg", msg)
		}
		if closed.Err != nil {
			t.Errorf("client-initiated close should not carry an error, got %v", closed.Err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pending read did not resolve after Close")
	}

	// Reads after close resolve immediately without touching the network.
	if msg := c.ReadEvent()(); msg.(StreamClosedMsg).SessionID != "abc123" {
		t.Error("post-close read should identify the session")
	}
}

func TestStreamDialFailure(t *testing.T) {
	c := NewStreamClient("ws://127.0.0.1:1", "abc123")
	msg := c.Connect(context.Background())()
	closed, ok := msg.(StreamClosedMsg)
	if !ok {
		t.Fatalf("Connect() = %T, want StreamClosedMsg", msg)
	}
	if closed.Err == nil {
		t.Error("dial failure must carry an error")
	}
}

func TestStreamCloseBeforeConnect(t *testing.T) {
	base := streamServer(t, func(conn *websocket.Conn) {})

	c := NewStreamClient(base, "abc123")
	c.Close()
	msg := c.Connect(context.Background())()
	if _, ok := msg.(StreamClosedMsg); !ok {
		t.Fatalf("Connect() after Close = %T, want StreamClosedMsg", msg)
	}
}
