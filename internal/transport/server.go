package transport

import (
	"net/http"

	"github.com/gorilla/websocket"

	"cockroachpoker/internal/identity"
	"cockroachpoker/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server upgrades HTTP connections to the game websocket and hands each
// one off to its own Client.
type Server struct {
	hub      *Hub
	verifier *identity.Verifier
	store    *session.Store
}

func NewServer(hub *Hub, verifier *identity.Verifier, store *session.Store) *Server {
	return &Server{hub: hub, verifier: verifier, store: store}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("websocket upgrade failed: %v", err)
		return
	}
	client := NewClient(conn, s.hub, s.verifier, s.store)
	go client.Serve()
}
