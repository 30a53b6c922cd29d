package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/forayhq/foray/internal/models"
)

// CombinationHandler serves combination synthesis and acceptance endpoints.
type CombinationHandler struct {
	combiner CombinationService
	graph    GraphService
	log      *logrus.Logger
}

// NewCombinationHandler creates a CombinationHandler.
func NewCombinationHandler(combiner CombinationService, graph GraphService, log *logrus.Logger) *CombinationHandler {
	return &CombinationHandler{combiner: combiner, graph: graph, log: log}
}

// Synthesize handles POST /api/v1/combinations/synthesize. Suggestions are
// ephemeral; nothing is persisted until one is accepted.
func (h *CombinationHandler) Synthesize(c *gin.Context) {
	var req models.SynthesizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	userID := getUserID(c)
	if userID == "" {
		return
	}

	suggestions, err := h.combiner.Synthesize(c.Request.Context(), userID, req.MaxResults, req.MinConfidence)
	if err != nil {
		h.log.WithError(err).Error("synthesizing combinations")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	h.log.WithFields(logrus.Fields{
		"action":      "combination.synthesize",
		"user_id":     userID,
		"suggestions": len(suggestions),
	}).Info("audit")

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// Accept handles POST /api/v1/combinations. It persists an accepted
// suggestion as a combination node.
func (h *CombinationHandler) Accept(c *gin.Context) {
	var suggestion models.CombinationSuggestion
	if err := c.ShouldBindJSON(&suggestion); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := suggestion.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	userID := getUserID(c)
	if userID == "" {
		return
	}

	node, err := h.graph.CreateCombination(c.Request.Context(), userID, suggestion)
	if err != nil {
		h.log.WithError(err).Error("creating combination")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	h.log.WithFields(logrus.Fields{"action": "combination.accept", "user_id": userID, "node_id": node.ID}).Info("audit")

	c.JSON(http.StatusCreated, node)
}
