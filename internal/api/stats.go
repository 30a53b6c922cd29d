package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/forayhq/foray/internal/metrics"
)

// StatsHandler serves the interest-graph statistics endpoint.
type StatsHandler struct {
	graph GraphService
	log   *logrus.Logger
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(graph GraphService, log *logrus.Logger) *StatsHandler {
	return &StatsHandler{graph: graph, log: log}
}

// GetStats handles GET /api/v1/stats.
func (h *StatsHandler) GetStats(c *gin.Context) {
	userID := getUserID(c)
	if userID == "" {
		return
	}

	stats, err := h.graph.Stats(c.Request.Context(), userID)
	if err != nil {
		h.log.WithError(err).Error("computing graph stats")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	metrics.NodeCount.Set(float64(stats.Nodes))

	c.JSON(http.StatusOK, stats)
}
