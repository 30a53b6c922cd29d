package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/forayhq/foray/internal/api"
	"github.com/forayhq/foray/internal/models"
)

func TestDiscoveryRun_OK(t *testing.T) {
	t.Parallel()

	discovery := &mockDiscovery{
		runFn: func(_ context.Context, _ string) (*models.DiscoveryResult, error) {
			return &models.DiscoveryResult{
				Results: []models.RankedResult{
					{
						SearchResult: models.SearchResult{Title: "article", URL: "https://example.com", Rank: 1},
						Query:        "drone racing news",
						ContentScore: 0.8,
						FinalScore:   0.64,
					},
				},
				Selected: []models.ScoredNode{},
				Queries:  []string{"drone racing news"},
			}, nil
		},
	}

	r := newTestRouter()
	h := api.NewDiscoveryHandler(discovery, nil, testLogger())
	r.POST("/discovery/run", h.Run)

	w := doRequest(r, http.MethodPost, "/discovery/run", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var result models.DiscoveryResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if len(result.Results) != 1 {
		t.Errorf("expected 1 result, got %d", len(result.Results))
	}
}

func TestDiscoveryRun_EmptyGraph(t *testing.T) {
	t.Parallel()

	discovery := &mockDiscovery{
		runFn: func(_ context.Context, _ string) (*models.DiscoveryResult, error) {
			return &models.DiscoveryResult{
				Results:  []models.RankedResult{},
				Selected: []models.ScoredNode{},
				Queries:  []string{},
			}, nil
		},
	}

	r := newTestRouter()
	h := api.NewDiscoveryHandler(discovery, nil, testLogger())
	r.POST("/discovery/run", h.Run)

	w := doRequest(r, http.MethodPost, "/discovery/run", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for empty graph, got %d: %s", w.Code, w.Body.String())
	}
}

func TestFeedback_Positive(t *testing.T) {
	t.Parallel()

	var gotReq models.FeedbackRequest

	discovery := &mockDiscovery{
		feedbackFn: func(_ context.Context, _ string, req models.FeedbackRequest) (*models.FeedbackResult, error) {
			gotReq = req

			return &models.FeedbackResult{NodeID: req.NodeID, AffectedIDs: []string{req.NodeID, "child"}, Cascaded: 1}, nil
		},
	}

	r := newTestRouter()
	h := api.NewDiscoveryHandler(discovery, nil, testLogger())
	r.POST("/feedback", h.Feedback)

	w := doRequest(r, http.MethodPost, "/feedback", `{"node_id":"n1","reaction":"positive"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if gotReq.Reaction != models.ReactionPositive {
		t.Errorf("expected positive reaction, got %q", gotReq.Reaction)
	}

	var result models.FeedbackResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Cascaded != 1 {
		t.Errorf("expected cascaded 1, got %d", result.Cascaded)
	}
}

func TestFeedback_BadReaction(t *testing.T) {
	t.Parallel()

	r := newTestRouter()
	h := api.NewDiscoveryHandler(&mockDiscovery{}, nil, testLogger())
	r.POST("/feedback", h.Feedback)

	w := doRequest(r, http.MethodPost, "/feedback", `{"node_id":"n1","reaction":"meh"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestFeedback_NodeNotFound(t *testing.T) {
	t.Parallel()

	discovery := &mockDiscovery{
		feedbackFn: func(_ context.Context, _ string, _ models.FeedbackRequest) (*models.FeedbackResult, error) {
			return nil, models.ErrNodeNotFound
		},
	}

	r := newTestRouter()
	h := api.NewDiscoveryHandler(discovery, nil, testLogger())
	r.POST("/feedback", h.Feedback)

	w := doRequest(r, http.MethodPost, "/feedback", `{"node_id":"missing","reaction":"negative"}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}
