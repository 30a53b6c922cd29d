package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/forayhq/foray/internal/models"
	"github.com/forayhq/foray/internal/ws"
)

// DiscoveryHandler serves discovery and feedback endpoints.
type DiscoveryHandler struct {
	discovery DiscoveryService
	hub       *ws.Hub
	log       *logrus.Logger
}

// NewDiscoveryHandler creates a DiscoveryHandler. hub may be nil when the
// websocket event stream is disabled.
func NewDiscoveryHandler(discovery DiscoveryService, hub *ws.Hub, log *logrus.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{discovery: discovery, hub: hub, log: log}
}

// Run handles POST /api/v1/discovery/run. An empty graph yields an empty
// result with 200, not an error.
func (h *DiscoveryHandler) Run(c *gin.Context) {
	userID := getUserID(c)
	if userID == "" {
		return
	}

	result, err := h.discovery.RunDiscoveryCycle(c.Request.Context(), userID)
	if err != nil {
		h.log.WithError(err).Error("running discovery cycle")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	h.log.WithFields(logrus.Fields{
		"action":  "discovery.run",
		"user_id": userID,
		"results": len(result.Results),
	}).Info("audit")

	h.broadcast(userID, ws.EventDiscoveryCompleted, gin.H{
		"results": len(result.Results),
		"queries": result.Queries,
	})

	c.JSON(http.StatusOK, result)
}

// Feedback handles POST /api/v1/feedback. The reaction is applied under the
// same per-user guard as discovery cycles.
func (h *DiscoveryHandler) Feedback(c *gin.Context) {
	var req models.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	userID := getUserID(c)
	if userID == "" {
		return
	}

	result, err := h.discovery.SubmitFeedback(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, models.ErrNodeNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "node not found")

			return
		}

		h.log.WithError(err).Error("applying feedback")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	h.log.WithFields(logrus.Fields{
		"action":   "feedback.apply",
		"user_id":  userID,
		"node_id":  result.NodeID,
		"cascaded": result.Cascaded,
	}).Info("audit")

	h.broadcast(userID, ws.EventFeedbackApplied, gin.H{
		"node_id":  result.NodeID,
		"cascaded": result.Cascaded,
	})

	c.JSON(http.StatusOK, result)
}

func (h *DiscoveryHandler) broadcast(userID, event string, payload any) {
	if h.hub == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		h.log.WithError(err).Warn("marshaling websocket event")

		return
	}

	h.hub.BroadcastEvent(event, userID, data)
}
