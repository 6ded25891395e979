package ws

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// Server manages WebSocket connections.
type Server struct {
	App      TextHandler
	Upgrader websocket.Upgrader
}

// NewServer creates a new WebSocket server.
func NewServer(app TextHandler) *Server {
	return &Server{
		App: app,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true // the control page may be served from another origin
			},
		},
	}
}

// ServeHTTP handles the WebSocket handshake and connection.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade failed: %v", err)
		return
	}

	log.Printf("[WS] Client connected from %s", r.RemoteAddr)
	handler := NewHandler(conn, s.App)
	handler.Loop(r.Context())
}
