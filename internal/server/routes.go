package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/FarhadNuri/VC/internal/protocol"
	"github.com/FarhadNuri/VC/internal/signaling"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,

	// Browsers are not a supported client; cross-origin checks add
	// nothing for the CLI, so allow all.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewRouter builds the HTTP surface: a health probe and the websocket
// endpoint everything else runs over.
func NewRouter(hub *signaling.Hub, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("signaling server is healthy"))
	})
	r.Get("/ws", serveWs(hub, log))

	return r
}

// serveWs upgrades the connection, assigns it a connection identifier,
// and hands it to the hub.
func serveWs(hub *signaling.Hub, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error().Err(err).Msg("websocket upgrade failed")
			return
		}

		client := &signaling.Client{
			Hub:  hub,
			Conn: conn,
			ID:   uuid.NewString(),
			Send: make(chan *protocol.Message, 256),
		}
		hub.Register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}
