package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/forayhq/foray/internal/api"
	"github.com/forayhq/foray/internal/models"
)

func TestNodeList_Filters(t *testing.T) {
	t.Parallel()

	var gotFilter models.SelectionFilter
	var gotLimit int

	graph := &mockGraph{
		listNodesFn: func(_ context.Context, _ string, filter models.SelectionFilter, limit, _ int) ([]models.Node, bool, error) {
			gotFilter = filter
			gotLimit = limit

			return []models.Node{{ID: "n1", Kind: models.KindInterest, Title: "drone racing"}}, false, nil
		},
	}

	r := newTestRouter()
	h := api.NewNodeHandler(graph, testLogger())
	r.GET("/nodes", h.List)

	w := doRequest(r, http.MethodGet, "/nodes?kind=interest&status=active&min_quality=0.4&limit=10", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if len(gotFilter.Kinds) != 1 || gotFilter.Kinds[0] != models.KindInterest {
		t.Errorf("expected kind filter [interest], got %v", gotFilter.Kinds)
	}

	if gotFilter.MinQuality != 0.4 {
		t.Errorf("expected min_quality 0.4, got %v", gotFilter.MinQuality)
	}

	if gotLimit != 10 {
		t.Errorf("expected limit 10, got %d", gotLimit)
	}
}

func TestNodeList_HasMore(t *testing.T) {
	t.Parallel()

	graph := &mockGraph{
		listNodesFn: func(_ context.Context, _ string, _ models.SelectionFilter, _, _ int) ([]models.Node, bool, error) {
			return []models.Node{{ID: "n1"}}, true, nil
		},
	}

	r := newTestRouter()
	h := api.NewNodeHandler(graph, testLogger())
	r.GET("/nodes", h.List)

	w := doRequest(r, http.MethodGet, "/nodes", "")

	var resp struct {
		Nodes   []models.Node `json:"nodes"`
		HasMore bool          `json:"has_more"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if !resp.HasMore {
		t.Error("expected has_more true")
	}
}

func TestNodeGet_Found(t *testing.T) {
	t.Parallel()

	graph := &mockGraph{
		getNodeFn: func(_ context.Context, _, nodeID string) (*models.Node, error) {
			return &models.Node{ID: nodeID, Kind: models.KindContent, Title: "some article"}, nil
		},
	}

	r := newTestRouter()
	h := api.NewNodeHandler(graph, testLogger())
	r.GET("/nodes/:id", h.Get)

	w := doRequest(r, http.MethodGet, "/nodes/n1", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var node models.Node
	if err := json.Unmarshal(w.Body.Bytes(), &node); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if node.ID != "n1" {
		t.Errorf("expected id 'n1', got %q", node.ID)
	}
}

func TestNodeGet_NotFound(t *testing.T) {
	t.Parallel()

	graph := &mockGraph{
		getNodeFn: func(_ context.Context, _, _ string) (*models.Node, error) {
			return nil, models.ErrNodeNotFound
		},
	}

	r := newTestRouter()
	h := api.NewNodeHandler(graph, testLogger())
	r.GET("/nodes/:id", h.Get)

	w := doRequest(r, http.MethodGet, "/nodes/missing", "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}
