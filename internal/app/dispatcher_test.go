package app

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bullet-relay/server/internal/model"
	"bullet-relay/server/internal/relay"
	"bullet-relay/server/internal/simpeer"
)

type fakeRelay struct {
	calls  int
	last   relay.WireMessage
	result model.Result
	panic  bool
}

func (f *fakeRelay) Send(_ context.Context, msg relay.WireMessage) model.Result {
	f.calls++
	f.last = msg
	if f.panic {
		panic("relay exploded")
	}
	return f.result
}

func TestHandleUnknownCommandSkipsRelay(t *testing.T) {
	r := &fakeRelay{}
	d := NewDispatcher(r)

	for _, name := range []string{"", "rotate", "MOVE"} {
		res := d.Handle(context.Background(), model.CommandRequest{Name: name, Arguments: map[string]any{"position": []any{1, 0, 0}}})
		want := model.CommandResponse{Success: false, Message: "Unknown command"}
		if res.Response != want || res.Kind != model.ResultValidationError {
			t.Fatalf("name %q: unexpected result %#v", name, res)
		}
	}
	if r.calls != 0 {
		t.Fatalf("relay must not be contacted, got %d calls", r.calls)
	}
}

func TestHandleInvalidArgumentsSkipsRelay(t *testing.T) {
	r := &fakeRelay{}
	d := NewDispatcher(r)

	res := d.Handle(context.Background(), model.CommandRequest{
		Name:      "move",
		Arguments: map[string]any{"position": []any{1, 0}},
	})
	want := model.CommandResponse{Success: false, Message: "Invalid move command arguments"}
	if res.Response != want {
		t.Fatalf("expected %#v, got %#v", want, res.Response)
	}
	if r.calls != 0 {
		t.Fatalf("relay must not be contacted, got %d calls", r.calls)
	}
}

func TestHandlePassesRelayResultThrough(t *testing.T) {
	reply := model.OK(model.CommandResponse{Success: true, Message: "Moved to [1, 0, 0]"})
	r := &fakeRelay{result: reply}
	d := NewDispatcher(r)

	res := d.Handle(context.Background(), model.CommandRequest{
		Name:      "move",
		Arguments: map[string]any{"position": []any{1, 0, 0}},
	})
	if res.Response != reply.Response || res.Kind != model.ResultOK {
		t.Fatalf("expected relay reply unchanged, got %#v", res)
	}
	if r.calls != 1 {
		t.Fatalf("expected one relay call, got %d", r.calls)
	}
	if r.last.Type != "move" || r.last.Position != [3]float64{1, 0, 0} {
		t.Fatalf("unexpected wire message %#v", r.last)
	}
}

func TestHandlePassesFailuresThrough(t *testing.T) {
	failure := model.Failure(model.ResultTransportError, "Error: connection reset", errors.New("connection reset"))
	d := NewDispatcher(&fakeRelay{result: failure})

	res := d.Handle(context.Background(), model.CommandRequest{
		Name:      "move",
		Arguments: map[string]any{"position": []any{0, 0, 1}},
	})
	if res.Kind != model.ResultTransportError || res.Response != failure.Response {
		t.Fatalf("unexpected result %#v", res)
	}
}

func TestHandleRecoversFromPanics(t *testing.T) {
	d := NewDispatcher(&fakeRelay{panic: true})

	res := d.Handle(context.Background(), model.CommandRequest{
		Name:      "move",
		Arguments: map[string]any{"position": []any{0, 0, 1}},
	})
	if res.Kind != model.ResultInternalError {
		t.Fatalf("expected internal error, got %s", res.Kind)
	}
	if res.Response.Success || res.Response.Message != "Error: relay exploded" {
		t.Fatalf("unexpected response %#v", res.Response)
	}
}

// Simulator connection drops mid-exchange; the caller sees an error and
// the next request reconnects and succeeds.
func TestHandleRecoversAfterSimulatorRestart(t *testing.T) {
	peer := simpeer.New()
	server := httptest.NewServer(peer)
	defer server.Close()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	m := relay.NewManager(relay.Options{URL: wsURL, ReplyTimeout: time.Second})
	defer m.Close()
	d := NewDispatcher(m)
	req := model.CommandRequest{Name: "move", Arguments: map[string]any{"position": []any{1, 0, 0}}}

	if res := d.Handle(context.Background(), req); !res.Succeeded() {
		t.Fatalf("first request failed: %#v", res)
	}

	peer.Disconnect()

	res := d.Handle(context.Background(), req)
	if res.Response.Success || !strings.HasPrefix(res.Response.Message, "Error: ") {
		t.Fatalf("expected transport failure, got %#v", res)
	}

	res = d.Handle(context.Background(), req)
	want := model.CommandResponse{Success: true, Message: "Moved to [1, 0, 0]"}
	if res.Response != want {
		t.Fatalf("expected success after reconnect, got %#v", res)
	}
	if peer.Connections() != 2 {
		t.Fatalf("expected a second connection, got %d", peer.Connections())
	}
}
