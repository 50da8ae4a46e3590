package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// handleGameStream serves the SSE feed for one game. The current snapshot is
// sent immediately on connect, then one "update" event per publish, with
// periodic heartbeats so idle proxies don't drop the connection.
func (s *Server) handleGameStream(c *gin.Context) {
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

	sub := s.broker.Subscribe(uri.ID)
	defer sub.Close()
	log.Info().Uint("game_id", uri.ID).Str("remote", c.ClientIP()).Msg("sse client connected")

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.SSEvent("update", snapshot)
	c.Writer.Flush()

	heartbeat := time.NewTicker(s.heartbeatInterval())
	defer heartbeat.Stop()

	for {
		select {
		case update, ok := <-sub.Updates():
			if !ok {
				return
			}
			c.SSEvent("update", update)
			c.Writer.Flush()
		case <-heartbeat.C:
			c.SSEvent("heartbeat", "heartbeat")
			c.Writer.Flush()
		case <-ctx.Done():
			log.Info().Uint("game_id", uri.ID).Msg("sse client disconnected")
			return
		}
	}
}
