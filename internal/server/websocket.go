package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleGameWebsocket serves the same snapshot stream as the SSE feed over a
// WebSocket, one JSON snapshot per message.
func (s *Server) handleGameWebsocket(c *gin.Context) {
	var uri gameURI
	if !bindGameURI(c, &uri) {
		return
	}
	ctx := c.Request.Context()

	snapshot, err := s.engine.Snapshot(ctx, uri.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	log.Info().Uint("game_id", uri.ID).Str("remote", c.ClientIP()).Msg("ws client connected")

	sub := s.broker.Subscribe(uri.ID)
	defer sub.Close()

	// Reader only detects disconnects; clients never send data.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(snapshot); err != nil {
		return
	}

	ping := time.NewTicker(s.heartbeatInterval())
	defer ping.Stop()

	for {
		select {
		case update, ok := <-sub.Updates():
			if !ok {
				return
			}
			if err := conn.WriteJSON(update); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			log.Info().Uint("game_id", uri.ID).Msg("ws client disconnected")
			return
		}
	}
}
