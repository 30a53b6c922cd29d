package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/forayhq/foray/internal/api"
	"github.com/forayhq/foray/internal/models"
)

func TestAuditQuery_OK(t *testing.T) {
	t.Parallel()

	var gotOpts models.AuditQueryOpts

	repo := &mockAuditRepo{
		queryFn: func(_ context.Context, _ string, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error) {
			gotOpts = opts

			return []models.AuditEntry{
				{ID: 1, Action: "interest.create", EntityType: "node", EntityID: "n1", CreatedAt: time.Now()},
			}, false, nil
		},
	}

	r := newTestRouter()
	h := api.NewAuditHandler(repo, testLogger())
	r.GET("/audit", h.Query)

	w := doRequest(r, http.MethodGet, "/audit?action=interest.create&limit=10", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if gotOpts.Action != "interest.create" || gotOpts.Limit != 10 {
		t.Errorf("unexpected opts: %+v", gotOpts)
	}

	var resp struct {
		Data []models.AuditEntry `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if len(resp.Data) != 1 {
		t.Errorf("expected 1 entry, got %d", len(resp.Data))
	}
}

func TestAuditQuery_BadSince(t *testing.T) {
	t.Parallel()

	r := newTestRouter()
	h := api.NewAuditHandler(&mockAuditRepo{}, testLogger())
	r.GET("/audit", h.Query)

	w := doRequest(r, http.MethodGet, "/audit?since=yesterday", "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuditPurge_OK(t *testing.T) {
	t.Parallel()

	var gotRetention int

	repo := &mockAuditRepo{
		purgeFn: func(_ context.Context, _ string, retentionDays int) (int, error) {
			gotRetention = retentionDays

			return 7, nil
		},
	}

	r := newTestRouter()
	h := api.NewAuditHandler(repo, testLogger())
	r.DELETE("/audit", h.Purge)

	w := doRequest(r, http.MethodDelete, "/audit?retention_days=30", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if gotRetention != 30 {
		t.Errorf("expected retention 30, got %d", gotRetention)
	}
}

func TestAuditPurge_BadRetention(t *testing.T) {
	t.Parallel()

	r := newTestRouter()
	h := api.NewAuditHandler(&mockAuditRepo{}, testLogger())
	r.DELETE("/audit", h.Purge)

	w := doRequest(r, http.MethodDelete, "/audit?retention_days=0", "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}
