// Package simpeer is a stand-in simulator that speaks the relay wire
// protocol without running any physics.
package simpeer

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"bullet-relay/server/internal/command"
)

type request struct {
	Type     string `json:"type"`
	Position any    `json:"position"`
}

type reply struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Peer accepts relay connections and answers move commands.
type Peer struct {
	Upgrader websocket.Upgrader

	mu       sync.Mutex
	position [3]float64
	active   map[*websocket.Conn]struct{}

	conns atomic.Int64
}

// New creates a peer resting at the origin.
func New() *Peer {
	return &Peer{
		active: make(map[*websocket.Conn]struct{}),
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Position returns the last position the peer moved to.
func (p *Peer) Position() [3]float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}

// Connections returns how many connections have been accepted.
func (p *Peer) Connections() int64 {
	return p.conns.Load()
}

func (p *Peer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := p.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[PEER] Upgrade failed: %v", err)
		return
	}
	p.track(conn)
	defer p.untrack(conn)
	p.conns.Add(1)
	log.Printf("[PEER] Relay connected from %s", r.RemoteAddr)

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[PEER] Read error: %v", err)
			}
			return
		}
		if err := conn.WriteJSON(p.Handle(frame)); err != nil {
			log.Printf("[PEER] Write error: %v", err)
			return
		}
	}
}

// Disconnect closes every open relay connection, as a simulator restart
// would.
func (p *Peer) Disconnect() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for conn := range p.active {
		conn.Close()
		delete(p.active, conn)
	}
}

func (p *Peer) track(conn *websocket.Conn) {
	p.mu.Lock()
	p.active[conn] = struct{}{}
	p.mu.Unlock()
}

func (p *Peer) untrack(conn *websocket.Conn) {
	p.mu.Lock()
	delete(p.active, conn)
	p.mu.Unlock()
	conn.Close()
}

// Handle answers a single request frame.
func (p *Peer) Handle(frame []byte) any {
	var req request
	if err := json.Unmarshal(frame, &req); err != nil {
		return reply{Success: false, Message: "Invalid JSON format"}
	}
	if req.Type != "move" {
		return reply{Success: false, Message: "Unknown command type"}
	}
	pos, ok := command.Coordinates(req.Position)
	if !ok {
		return reply{Success: false, Message: "Error: position must be three numbers"}
	}
	p.mu.Lock()
	p.position = pos
	p.mu.Unlock()
	return reply{Success: true, Message: "Moved to " + FormatPosition(pos)}
}

// FormatPosition renders a position as "[x, y, z]".
func FormatPosition(pos [3]float64) string {
	parts := make([]string, len(pos))
	for i, v := range pos {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
