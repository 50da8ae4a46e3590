package server

import (
	"errors"
	"net/http"

	"mahjong-ledger/internal/ledger"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type createGameRequest struct {
	PlayerNames []string `json:"playerNames" binding:"required"`
}

type createRoundRequest struct {
	GameID  uint                 `json:"gameId" binding:"required"`
	Bet     int                  `json:"bet"`
	Results []ledger.ResultEntry `json:"results" binding:"required,dive"`
}

type gameURI struct {
	ID uint `uri:"id" binding:"required"`
}

func (s *Server) handleCreateGame(c *gin.Context) {
	var req createGameRequest
	if !bindJSON(c, &req, bindMessages{
		"PlayerNames": {"required": "playerNames is required"},
	}, "invalid create game request") {
		return
	}

	created, err := s.engine.CreateGame(c.Request.Context(), req.PlayerNames)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Info().Uint("game_id", created.Game.ID).Msg("game created")
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleGameExists(c *gin.Context) {
	var uri gameURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	exists, err := s.engine.GameExists(c.Request.Context(), uri.ID)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if !exists {
		c.Status(http.StatusNotFound)
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) handleGetGame(c *gin.Context) {
	var uri gameURI
	if !bindGameURI(c, &uri) {
		return
	}
	snapshot, err := s.engine.Snapshot(c.Request.Context(), uri.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (s *Server) handleCreateRound(c *gin.Context) {
	var req createRoundRequest
	if !bindJSON(c, &req, bindMessages{
		"GameID":  {"required": "gameId is required"},
		"Results": {"required": "results is required"},
	}, "invalid create round request") {
		return
	}

	details, err := s.engine.SettleRound(c.Request.Context(), req.GameID, req.Bet, req.Results)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Info().
		Uint("game_id", req.GameID).
		Uint("round_id", details.Round.ID).
		Int("bet", req.Bet).
		Msg("round settled")
	c.JSON(http.StatusCreated, details)
}

// respondError maps ledger error kinds onto HTTP statuses. Storage and
// unexpected failures surface as 500 with the detail kept in the log.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrGameNotFound), errors.Is(err, ledger.ErrPlayerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
