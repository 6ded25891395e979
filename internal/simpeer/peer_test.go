package simpeer

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

func TestHandleMove(t *testing.T) {
	p := New()
	got, ok := p.Handle([]byte(`{"type":"move","position":[1,0,0]}`)).(reply)
	if !ok {
		t.Fatalf("unexpected reply type %T", got)
	}
	if !got.Success || got.Message != "Moved to [1, 0, 0]" {
		t.Fatalf("unexpected reply: %#v", got)
	}
	if p.Position() != [3]float64{1, 0, 0} {
		t.Fatalf("position not recorded: %v", p.Position())
	}
}

func TestHandleRejectsUnknownAndInvalid(t *testing.T) {
	p := New()
	cases := map[string]string{
		`{"type":"rotate"}`:                "Unknown command type",
		`not json`:                         "Invalid JSON format",
		`{"type":"move","position":[1,2]}`: "Error: position must be three numbers",
	}
	for frame, want := range cases {
		got := p.Handle([]byte(frame)).(reply)
		if got.Success || got.Message != want {
			t.Fatalf("frame %s: expected %q, got %#v", frame, want, got)
		}
	}
}

func TestFormatPosition(t *testing.T) {
	if got := FormatPosition([3]float64{1.5, -2, 0}); got != "[1.5, -2, 0]" {
		t.Fatalf("unexpected format: %s", got)
	}
}

func TestPeerServesWebSocket(t *testing.T) {
	p := New()
	server := httptest.NewServer(p)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"move","position":[0,0,2.5]}`)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	_, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var got reply
	if err := json.Unmarshal(frame, &got); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !got.Success || got.Message != "Moved to [0, 0, 2.5]" {
		t.Fatalf("unexpected reply: %#v", got)
	}
	if p.Connections() != 1 {
		t.Fatalf("expected 1 connection, got %d", p.Connections())
	}
}
