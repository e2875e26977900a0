package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomrelay/internal/core"
)

// StatsHandlers serves read-only relay counters.
type StatsHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewStatsHandlers creates a new stats handlers instance.
func NewStatsHandlers(hub *core.Hub, logger *zerolog.Logger) *StatsHandlers {
	return &StatsHandlers{
		hub: hub,
		log: logger,
	}
}

// StatsResponse is the body of GET /api/stats.
type StatsResponse struct {
	Sessions int `json:"sessions"`
	Rooms    int `json:"rooms"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// GetStats reports live session and room counts.
// GET /api/stats
func (h *StatsHandlers) GetStats(c *gin.Context) {
	stats, err := h.hub.Stats(c.Request.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to read hub stats")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "relay unavailable"})
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		Sessions: stats.Sessions,
		Rooms:    stats.Rooms,
	})
}
