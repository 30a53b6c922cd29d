package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/forayhq/foray/internal/models"
)

// InterestHandler serves interest declaration and removal endpoints.
type InterestHandler struct {
	graph GraphService
	log   *logrus.Logger
}

// NewInterestHandler creates an InterestHandler.
func NewInterestHandler(graph GraphService, log *logrus.Logger) *InterestHandler {
	return &InterestHandler{graph: graph, log: log}
}

// Create handles POST /api/v1/interests. Creation is idempotent by name, so
// a duplicate returns 200 with the existing node rather than a conflict.
func (h *InterestHandler) Create(c *gin.Context) {
	var req models.CreateInterestRequest
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

	node, err := h.graph.CreateInterest(c.Request.Context(), userID, req)
	if err != nil {
		h.log.WithError(err).Error("creating interest")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	h.log.WithFields(logrus.Fields{"action": "interest.create", "user_id": userID, "node_id": node.ID}).Info("audit")

	c.JSON(http.StatusCreated, node)
}

// List handles GET /api/v1/interests.
func (h *InterestHandler) List(c *gin.Context) {
	userID := getUserID(c)
	if userID == "" {
		return
	}

	interests, err := h.graph.ListInterests(c.Request.Context(), userID)
	if err != nil {
		h.log.WithError(err).Error("listing interests")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, gin.H{"interests": interests})
}

// Remove handles DELETE /api/v1/interests/:name. The response reports what
// each removal phase touched; a partial failure is still a 200 with the
// failing phases named.
func (h *InterestHandler) Remove(c *gin.Context) {
	name := c.Param("name")
	if err := validatePathID(name); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	userID := getUserID(c)
	if userID == "" {
		return
	}

	result, err := h.graph.RemoveInterest(c.Request.Context(), userID, name)
	if err != nil {
		if errors.Is(err, models.ErrInterestNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "interest not found")

			return
		}

		h.log.WithError(err).Error("removing interest")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	h.log.WithFields(logrus.Fields{
		"action":   "interest.remove",
		"user_id":  userID,
		"interest": result.Interest,
		"affected": len(result.AffectedIDs),
	}).Info("audit")

	c.JSON(http.StatusOK, result)
}
