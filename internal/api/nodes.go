package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/forayhq/foray/internal/models"
)

// NodeHandler serves node read endpoints. Nodes are only created through
// interests, feedback, and combination acceptance; there is no raw create.
type NodeHandler struct {
	graph GraphService
	log   *logrus.Logger
}

// NewNodeHandler creates a NodeHandler.
func NewNodeHandler(graph GraphService, log *logrus.Logger) *NodeHandler {
	return &NodeHandler{graph: graph, log: log}
}

// List handles GET /api/v1/nodes with kind/status/approval/quality filters.
func (h *NodeHandler) List(c *gin.Context) {
	userID := getUserID(c)
	if userID == "" {
		return
	}

	filter := models.SelectionFilter{
		MinQuality: parseFloat(c.DefaultQuery("min_quality", "0")),
		MaxDepth:   parseOffset(c.DefaultQuery("max_depth", "0")),
	}

	if kind := c.Query("kind"); kind != "" {
		filter.Kinds = []models.NodeKind{models.NodeKind(kind)}
	}
	if status := c.Query("status"); status != "" {
		filter.Statuses = []models.NodeStatus{models.NodeStatus(status)}
	}
	if approval := c.Query("approval"); approval != "" {
		filter.Approvals = []models.ApprovalStatus{models.ApprovalStatus(approval)}
	}

	limit := parseInt(c.DefaultQuery("limit", "50"), 50)
	offset := parseOffset(c.DefaultQuery("offset", "0"))

	nodes, hasMore, err := h.graph.ListNodes(c.Request.Context(), userID, filter, limit, offset)
	if err != nil {
		h.log.WithError(err).Error("listing nodes")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, gin.H{"nodes": nodes, "has_more": hasMore})
}

// Get handles GET /api/v1/nodes/:id.
func (h *NodeHandler) Get(c *gin.Context) {
	nodeID := c.Param("id")
	if err := validatePathID(nodeID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	userID := getUserID(c)
	if userID == "" {
		return
	}

	node, err := h.graph.GetNode(c.Request.Context(), userID, nodeID)
	if err != nil {
		if errors.Is(err, models.ErrNodeNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "node not found")

			return
		}

		h.log.WithError(err).Error("getting node")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, node)
}
