package models_test

import (
	"strings"
	"testing"

	"github.com/forayhq/foray/internal/models"
)

func assertErrorContains(t *testing.T, err error, want string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error containing %q, got nil", want)
	}

	if !strings.Contains(err.Error(), want) {
		t.Errorf("expected error containing %q, got %q", want, err.Error())
	}
}

func TestCreateInterestRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     models.CreateInterestRequest
		wantErr string
	}{
		{name: "valid", req: models.CreateInterestRequest{Name: "drone racing"}},
		{name: "valid with keywords", req: models.CreateInterestRequest{Name: "drone racing", Keywords: []string{"fpv"}}},
		{name: "missing name", req: models.CreateInterestRequest{}, wantErr: "title is required"},
		{name: "whitespace name", req: models.CreateInterestRequest{Name: "   "}, wantErr: "title is required"},
		{name: "name too long", req: models.CreateInterestRequest{Name: strings.Repeat("x", 501)}, wantErr: "exceeds maximum length"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.wantErr != "" {
				assertErrorContains(t, err, tc.wantErr)

				return
			}

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestCreateInterestRequest_ValidateTrimsName(t *testing.T) {
	req := models.CreateInterestRequest{Name: "  drone racing  "}

	if err := req.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if req.Name != "drone racing" {
		t.Errorf("expected trimmed name, got %q", req.Name)
	}
}

func TestCreateContentRequest_Validate(t *testing.T) {
	valid := models.CreateContentRequest{
		ParentID: "p1",
		Title:    "some article",
		URL:      "https://example.com/a",
		Snippet:  "a snippet",
	}

	tests := []struct {
		name    string
		mutate  func(r *models.CreateContentRequest)
		wantErr string
	}{
		{name: "valid", mutate: func(_ *models.CreateContentRequest) {}},
		{name: "missing parent", mutate: func(r *models.CreateContentRequest) { r.ParentID = "" }, wantErr: "parent_id is required"},
		{name: "missing title", mutate: func(r *models.CreateContentRequest) { r.Title = " " }, wantErr: "title is required"},
		{name: "missing snippet", mutate: func(r *models.CreateContentRequest) { r.Snippet = "" }, wantErr: "snippet is required"},
		{name: "title too long", mutate: func(r *models.CreateContentRequest) { r.Title = strings.Repeat("x", 2001) }, wantErr: "exceeds maximum length"},
		{name: "url too long", mutate: func(r *models.CreateContentRequest) { r.URL = strings.Repeat("x", 4001) }, wantErr: "exceeds maximum length"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)

			err := req.Validate()
			if tc.wantErr != "" {
				assertErrorContains(t, err, tc.wantErr)

				return
			}

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestFeedbackRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     models.FeedbackRequest
		wantErr string
	}{
		{name: "node reaction", req: models.FeedbackRequest{NodeID: "n1", Reaction: models.ReactionPositive}},
		{name: "raw result", req: models.FeedbackRequest{ParentID: "p1", Reaction: models.ReactionNegative, Snippet: "text"}},
		{name: "bad reaction", req: models.FeedbackRequest{NodeID: "n1", Reaction: "meh"}, wantErr: "reaction must be"},
		{name: "no target", req: models.FeedbackRequest{Reaction: models.ReactionPositive}, wantErr: "id is required"},
		{name: "raw result without snippet", req: models.FeedbackRequest{ParentID: "p1", Reaction: models.ReactionPositive}, wantErr: "snippet is required"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.wantErr != "" {
				assertErrorContains(t, err, tc.wantErr)

				return
			}

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestCombinationSuggestion_Validate(t *testing.T) {
	valid := models.CombinationSuggestion{
		Title:           "software engineering in berlin",
		SourceNodeIDs:   []string{"n1", "n2"},
		CombinationType: models.CombinationSkillLocation,
		ConfidenceScore: 0.7,
	}

	tests := []struct {
		name    string
		mutate  func(s *models.CombinationSuggestion)
		wantErr string
	}{
		{name: "valid", mutate: func(_ *models.CombinationSuggestion) {}},
		{name: "missing title", mutate: func(s *models.CombinationSuggestion) { s.Title = "" }, wantErr: "title is required"},
		{name: "one source", mutate: func(s *models.CombinationSuggestion) { s.SourceNodeIDs = []string{"n1"} }, wantErr: "at least two"},
		{name: "bad type", mutate: func(s *models.CombinationSuggestion) { s.CombinationType = "mashup" }, wantErr: "unknown combination type"},
		{name: "confidence too high", mutate: func(s *models.CombinationSuggestion) { s.ConfidenceScore = 1.5 }, wantErr: "between 0 and 1"},
		{name: "confidence negative", mutate: func(s *models.CombinationSuggestion) { s.ConfidenceScore = -0.1 }, wantErr: "between 0 and 1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := valid
			tc.mutate(&s)

			err := s.Validate()
			if tc.wantErr != "" {
				assertErrorContains(t, err, tc.wantErr)

				return
			}

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestNode_EmbeddingText(t *testing.T) {
	tests := []struct {
		name string
		node models.Node
		want string
	}{
		{
			name: "title only",
			node: models.Node{Title: "drone racing"},
			want: "drone racing",
		},
		{
			name: "title and keywords",
			node: models.Node{Title: "drone racing", Keywords: []string{"fpv", "quadcopter"}},
			want: "drone racing fpv quadcopter",
		},
		{
			name: "content node with snippet",
			node: models.Node{Title: "an article", Keywords: []string{"fpv"}, Snippet: "about racing"},
			want: "an article fpv about racing",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.node.EmbeddingText(); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNode_IsRoot(t *testing.T) {
	parent := "p1"

	root := models.Node{}
	if !root.IsRoot() {
		t.Error("expected node without parent to be root")
	}

	child := models.Node{ParentID: &parent}
	if child.IsRoot() {
		t.Error("expected node with parent not to be root")
	}
}
