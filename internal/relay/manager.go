// Package relay owns the single websocket connection to the simulator.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"bullet-relay/server/internal/model"
)

// Dialer opens websocket connections. *websocket.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, urlStr string, requestHeader http.Header) (*websocket.Conn, *http.Response, error)
}

// State is the lifecycle of the owned connection.
type State int32

const (
	StateAbsent State = iota
	StateEstablishing
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateEstablishing:
		return "establishing"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// Options configures a Manager.
type Options struct {
	URL          string
	Dialer       Dialer
	ReplyTimeout time.Duration // 0 waits for the reply indefinitely
}

// Stats is a point-in-time view of the manager.
type Stats struct {
	State  string `json:"state"`
	Dials  int64  `json:"dials"`
	Faults int64  `json:"faults"`
}

// Manager serializes exchanges with the simulator over one lazily
// established connection. A transport fault drops the connection and the
// next exchange dials again.
type Manager struct {
	url          string
	dialer       Dialer
	replyTimeout time.Duration

	// slot has capacity 1; holding it grants exclusive use of conn.
	slot chan struct{}
	conn *websocket.Conn

	state  atomic.Int32
	dials  atomic.Int64
	faults atomic.Int64
}

// NewManager creates a manager. No connection is made until first use.
func NewManager(opts Options) *Manager {
	d := opts.Dialer
	if d == nil {
		d = websocket.DefaultDialer
	}
	return &Manager{
		url:          opts.URL,
		dialer:       d,
		replyTimeout: opts.ReplyTimeout,
		slot:         make(chan struct{}, 1),
	}
}

func (m *Manager) acquire(ctx context.Context) error {
	select {
	case m.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) release() {
	<-m.slot
}

// EnsureConnection dials the simulator if no connection is held.
func (m *Manager) EnsureConnection(ctx context.Context) error {
	if err := m.acquire(ctx); err != nil {
		return err
	}
	defer m.release()
	return m.ensureLocked(ctx)
}

func (m *Manager) ensureLocked(ctx context.Context) error {
	if m.conn != nil {
		return nil
	}
	m.state.Store(int32(StateEstablishing))
	conn, resp, err := m.dialer.DialContext(ctx, m.url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		m.state.Store(int32(StateAbsent))
		return fmt.Errorf("connect to simulator %s: %w", m.url, err)
	}
	m.conn = conn
	m.dials.Add(1)
	m.state.Store(int32(StateConnected))
	log.Printf("[RELAY] Connected to simulator at %s", m.url)
	return nil
}

// Send performs one request/reply exchange. It never retries; after a
// transport fault the connection is discarded and the next call reconnects.
func (m *Manager) Send(ctx context.Context, msg WireMessage) model.Result {
	if err := m.acquire(ctx); err != nil {
		return model.Failure(model.ResultTransportError, "Error: "+err.Error(), err)
	}
	defer m.release()

	if err := m.ensureLocked(ctx); err != nil {
		return m.fault(err)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return model.Failure(model.ResultInternalError, "Error: "+err.Error(), err)
	}

	deadline := m.deadline(ctx)
	if err := m.conn.SetWriteDeadline(deadline); err != nil {
		return m.fault(err)
	}
	if err := m.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return m.fault(fmt.Errorf("send to simulator: %w", err))
	}
	if err := m.conn.SetReadDeadline(deadline); err != nil {
		return m.fault(err)
	}
	_, frame, err := m.conn.ReadMessage()
	if err != nil {
		return m.fault(fmt.Errorf("read from simulator: %w", err))
	}

	res, err := decodeReply(frame)
	if err != nil {
		return m.fault(err)
	}
	return res
}

// deadline is the earlier of the reply timeout and the context deadline.
// The zero time disables the deadline.
func (m *Manager) deadline(ctx context.Context) time.Time {
	var d time.Time
	if m.replyTimeout > 0 {
		d = time.Now().Add(m.replyTimeout)
	}
	if cd, ok := ctx.Deadline(); ok && (d.IsZero() || cd.Before(d)) {
		d = cd
	}
	return d
}

// fault must be called while holding the slot.
func (m *Manager) fault(err error) model.Result {
	log.Printf("[RELAY] Error communicating with simulator: %v", err)
	m.faults.Add(1)
	m.dropLocked()
	return model.Failure(model.ResultTransportError, "Error: "+err.Error(), err)
}

func (m *Manager) dropLocked() {
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.state.Store(int32(StateAbsent))
}

// State reports the connection lifecycle state without waiting for the slot.
func (m *Manager) State() State {
	return State(m.state.Load())
}

// Stats reports the state and counters.
func (m *Manager) Stats() Stats {
	return Stats{
		State:  m.State().String(),
		Dials:  m.dials.Load(),
		Faults: m.faults.Load(),
	}
}

// Close waits for any in-flight exchange and closes the connection.
func (m *Manager) Close() error {
	if err := m.acquire(context.Background()); err != nil {
		return err
	}
	defer m.release()
	if m.conn == nil {
		return nil
	}
	_ = m.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	m.dropLocked()
	log.Printf("[RELAY] Connection to simulator closed")
	return nil
}
