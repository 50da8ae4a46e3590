// Package server exposes the ledger over HTTP: JSON endpoints for game
// creation and round settlement, and SSE/WebSocket streams fed by the
// update broker.
package server

import (
	"net/http"
	"time"

	"mahjong-ledger/internal/broadcast"
	"mahjong-ledger/internal/config"
	"mahjong-ledger/internal/ledger"
	"mahjong-ledger/internal/logging"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Server struct {
	engine *ledger.Engine
	broker *broadcast.Broker
	cfg    config.Config
}

func New(engine *ledger.Engine, broker *broadcast.Broker, cfg config.Config) *Server {
	return &Server{
		engine: engine,
		broker: broker,
		cfg:    cfg,
	}
}

func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(logging.Middleware(), gin.Recovery(), cors.Default())

	game := router.Group("/game")
	game.POST("/create", s.handleCreateGame)
	game.HEAD("/:id", s.handleGameExists)
	game.GET("/:id", s.handleGetGame)
	game.GET("/:id/sse", s.handleGameStream)
	game.GET("/:id/ws", s.handleGameWebsocket)

	router.POST("/round/create", s.handleCreateRound)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
	return router
}

func (s *Server) heartbeatInterval() time.Duration {
	if s.cfg.SSEHeartbeatSeconds <= 0 {
		return 45 * time.Second
	}
	return time.Duration(s.cfg.SSEHeartbeatSeconds) * time.Second
}
