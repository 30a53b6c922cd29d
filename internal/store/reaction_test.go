package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/forayhq/foray/internal/models"
	"github.com/forayhq/foray/internal/store"
)

func TestApplyReaction_Positive(t *testing.T) {
	base, userID := setupTestBase(t)
	ns := store.NewNodeStore(base)
	rs := store.NewReactionStore(base)
	ctx := context.Background()

	node, _, err := ns.CreateInterest(ctx, userID, models.CreateInterestRequest{Name: "drone racing"})
	if err != nil {
		t.Fatalf("CreateInterest: %v", err)
	}

	updated, err := rs.ApplyReaction(ctx, userID, node.ID, true)
	if err != nil {
		t.Fatalf("ApplyReaction: %v", err)
	}

	if updated.Positive != 2.0 {
		t.Errorf("Positive = %v, want 2.0", updated.Positive)
	}
	if updated.QualityScore <= 0.5 {
		t.Errorf("QualityScore = %v, want > 0.5 after positive reaction", updated.QualityScore)
	}
	if updated.ApprovalStatus != "approved" {
		t.Errorf("ApprovalStatus = %q, want approved", updated.ApprovalStatus)
	}
	if updated.LastUsedAt == nil {
		t.Error("LastUsedAt not stamped")
	}
}

func TestApplyReaction_NegativeRejects(t *testing.T) {
	base, userID := setupTestBase(t)
	ns := store.NewNodeStore(base)
	rs := store.NewReactionStore(base)
	ctx := context.Background()

	parent, _, err := ns.CreateInterest(ctx, userID, models.CreateInterestRequest{Name: "drone racing"})
	if err != nil {
		t.Fatalf("CreateInterest: %v", err)
	}

	content, err := ns.CreateContent(ctx, userID, models.CreateContentRequest{
		ParentID: parent.ID, Title: "an article", Snippet: "s",
	})
	if err != nil {
		t.Fatalf("CreateContent: %v", err)
	}

	updated, err := rs.ApplyReaction(ctx, userID, content.ID, false)
	if err != nil {
		t.Fatalf("ApplyReaction: %v", err)
	}

	if updated.Negative != 2.0 {
		t.Errorf("Negative = %v, want 2.0", updated.Negative)
	}
	if updated.ApprovalStatus != "rejected" {
		t.Errorf("ApprovalStatus = %q, want rejected", updated.ApprovalStatus)
	}
}

func TestApplyReaction_NotFound(t *testing.T) {
	base, userID := setupTestBase(t)
	rs := store.NewReactionStore(base)

	_, err := rs.ApplyReaction(context.Background(), userID, "missing", true)
	if !errors.Is(err, models.ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestApplyCascade(t *testing.T) {
	base, userID := setupTestBase(t)
	ns := store.NewNodeStore(base)
	rs := store.NewReactionStore(base)
	ctx := context.Background()

	root, _, err := ns.CreateInterest(ctx, userID, models.CreateInterestRequest{Name: "drone racing"})
	if err != nil {
		t.Fatalf("CreateInterest: %v", err)
	}

	child, err := ns.CreateContent(ctx, userID, models.CreateContentRequest{
		ParentID: root.ID, Title: "child", Snippet: "s",
	})
	if err != nil {
		t.Fatalf("CreateContent: %v", err)
	}

	err = rs.ApplyCascade(ctx, userID, true, []store.CascadeIncrement{
		{NodeID: child.ID, Amount: 0.7},
	})
	if err != nil {
		t.Fatalf("ApplyCascade: %v", err)
	}

	got, err := ns.GetNode(ctx, userID, child.ID)
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}

	if got.Positive != 1.7 {
		t.Errorf("Positive = %v, want 1.7", got.Positive)
	}

	// Cascade reinforces counters but never flips approval.
	if got.ApprovalStatus != "pending" {
		t.Errorf("ApprovalStatus = %q, want pending", got.ApprovalStatus)
	}
}

func TestMarkSelected(t *testing.T) {
	base, userID := setupTestBase(t)
	ns := store.NewNodeStore(base)
	rs := store.NewReactionStore(base)
	ctx := context.Background()

	node, _, err := ns.CreateInterest(ctx, userID, models.CreateInterestRequest{Name: "drone racing"})
	if err != nil {
		t.Fatalf("CreateInterest: %v", err)
	}

	if err := rs.MarkSelected(ctx, userID, []string{node.ID}); err != nil {
		t.Fatalf("MarkSelected: %v", err)
	}

	got, err := ns.GetNode(ctx, userID, node.ID)
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}

	if got.TimesSelected != 1 {
		t.Errorf("TimesSelected = %d, want 1", got.TimesSelected)
	}
	if got.LastUsedAt == nil {
		t.Error("LastUsedAt not stamped")
	}
}

func TestNegativeKeywords(t *testing.T) {
	base, userID := setupTestBase(t)
	ks := store.NewKeywordStore(base)
	ctx := context.Background()

	err := ks.AddNegativeKeywords(ctx, userID, []string{"Crypto", "  spam  ", "crypto", ""})
	if err != nil {
		t.Fatalf("AddNegativeKeywords: %v", err)
	}

	got, err := ks.ListNegativeKeywords(ctx, userID)
	if err != nil {
		t.Fatalf("ListNegativeKeywords: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 keywords after dedup, got %v", got)
	}
}

func TestArchiveAndPromote(t *testing.T) {
	base, userID := setupTestBase(t)
	ns := store.NewNodeStore(base)
	as := store.NewArchiveStore(base)
	ctx := context.Background()

	root, _, err := ns.CreateInterest(ctx, userID, models.CreateInterestRequest{Name: "drone racing"})
	if err != nil {
		t.Fatalf("CreateInterest: %v", err)
	}

	child, err := ns.CreateContent(ctx, userID, models.CreateContentRequest{
		ParentID: root.ID, Title: "child", Snippet: "s",
	})
	if err != nil {
		t.Fatalf("CreateContent: %v", err)
	}

	grandchild, err := ns.CreateContent(ctx, userID, models.CreateContentRequest{
		ParentID: child.ID, Title: "grandchild", Snippet: "s",
	})
	if err != nil {
		t.Fatalf("CreateContent: %v", err)
	}

	archived, err := as.ArchiveNodes(ctx, userID, []string{root.ID, child.ID})
	if err != nil {
		t.Fatalf("ArchiveNodes: %v", err)
	}

	if len(archived) != 2 {
		t.Errorf("archived %d nodes, want 2", len(archived))
	}

	promoted, err := as.PromoteToRoot(ctx, userID, []string{grandchild.ID})
	if err != nil {
		t.Fatalf("PromoteToRoot: %v", err)
	}

	if len(promoted) != 1 {
		t.Fatalf("promoted %d nodes, want 1", len(promoted))
	}

	got, err := ns.GetNode(ctx, userID, grandchild.ID)
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}

	if !got.IsRoot() || got.Depth != 0 {
		t.Errorf("promoted node not a root: parent=%v depth=%d", got.ParentID, got.Depth)
	}
	if len(got.Path) != 1 || got.Path[0] != grandchild.ID {
		t.Errorf("Path = %v, want [%s]", got.Path, grandchild.ID)
	}

	if _, err := as.FindInterestByTitle(ctx, userID, "drone racing"); !errors.Is(err, models.ErrInterestNotFound) {
		t.Errorf("expected archived interest to be unfindable, got %v", err)
	}
}

func TestPromoteToRootRepathsSubtree(t *testing.T) {
	base, userID := setupTestBase(t)
	ns := store.NewNodeStore(base)
	as := store.NewArchiveStore(base)
	ctx := context.Background()

	root, _, err := ns.CreateInterest(ctx, userID, models.CreateInterestRequest{Name: "drone racing"})
	if err != nil {
		t.Fatalf("CreateInterest: %v", err)
	}

	child, err := ns.CreateContent(ctx, userID, models.CreateContentRequest{
		ParentID: root.ID, Title: "child", Snippet: "s",
	})
	if err != nil {
		t.Fatalf("CreateContent: %v", err)
	}

	grandchild, err := ns.CreateContent(ctx, userID, models.CreateContentRequest{
		ParentID: child.ID, Title: "grandchild", Snippet: "s",
	})
	if err != nil {
		t.Fatalf("CreateContent: %v", err)
	}

	greatgrandchild, err := ns.CreateContent(ctx, userID, models.CreateContentRequest{
		ParentID: grandchild.ID, Title: "great-grandchild", Snippet: "s",
	})
	if err != nil {
		t.Fatalf("CreateContent: %v", err)
	}

	if _, err := as.PromoteToRoot(ctx, userID, []string{grandchild.ID}); err != nil {
		t.Fatalf("PromoteToRoot: %v", err)
	}

	got, err := ns.GetNode(ctx, userID, greatgrandchild.ID)
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}

	// The descendant follows its promoted ancestor to the top of the tree.
	if got.Depth != 1 {
		t.Errorf("Depth = %d, want 1", got.Depth)
	}
	if len(got.Path) != 2 || got.Path[0] != grandchild.ID || got.Path[1] != greatgrandchild.ID {
		t.Errorf("Path = %v, want [%s %s]", got.Path, grandchild.ID, greatgrandchild.ID)
	}
	if got.ParentID == nil || *got.ParentID != grandchild.ID {
		t.Errorf("ParentID = %v, want %s", got.ParentID, grandchild.ID)
	}

	// Nodes outside the promoted subtree keep their paths.
	untouched, err := ns.GetNode(ctx, userID, child.ID)
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}
	if untouched.Depth != 1 || len(untouched.Path) != 2 {
		t.Errorf("sibling subtree changed: depth=%d path=%v", untouched.Depth, untouched.Path)
	}
}
