package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hanulzine/webzine/internal/models"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "webzine.db")
	s, err := NewSQLiteStore(WithSQLiteDSN(dsn))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteContentRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	created, err := s.CreateContent(ctx, models.Content{Title: "여름호", Body: "본문", Category: models.CategoryArticle, Published: true})
	if err != nil {
		t.Fatalf("CreateContent failed: %v", err)
	}

	got, err := s.GetContent(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetContent failed: %v", err)
	}
	if got == nil || got.Title != "여름호" || !got.Published {
		t.Fatalf("unexpected content: %+v", got)
	}

	missing, err := s.GetContent(ctx, created.ID+100)
	if err != nil {
		t.Fatalf("GetContent missing failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing row, got %+v", missing)
	}
}

func TestSQLiteIncrementCount(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	c, err := s.CreateContent(ctx, models.Content{Title: "글", Category: models.CategoryArticle, Published: true})
	if err != nil {
		t.Fatalf("CreateContent failed: %v", err)
	}

	n, err := s.IncrementCount(ctx, c.ID, models.CountFieldViews, 1)
	if err != nil {
		t.Fatalf("IncrementCount failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected view count 1, got %d", n)
	}
	n, err = s.IncrementCount(ctx, c.ID, models.CountFieldViews, 2)
	if err != nil {
		t.Fatalf("IncrementCount failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected view count 2, got %d", n)
	}

	got, _ := s.GetContent(ctx, c.ID)
	if got.ViewCount != 2 || got.LikesCount != 0 {
		t.Fatalf("unexpected counts: %+v", got)
	}
}

func TestSQLiteCommentRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	c, err := s.CreateContent(ctx, models.Content{Title: "글", Category: models.CategoryPoetry, Published: true})
	if err != nil {
		t.Fatalf("CreateContent failed: %v", err)
	}

	_, err = s.AddComment(ctx, models.Comment{
		ID:             "cm-1",
		ContentID:      c.ID,
		AuthorName:     "독자",
		GuestEmail:     "guest-a1b2c3d4@webzine.local",
		Body:           "정말 좋은 시네요",
		CredentialHash: "$2a$10$hash",
	})
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}

	list, err := s.ListComments(ctx, c.ID)
	if err != nil {
		t.Fatalf("ListComments failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(list))
	}
	if list[0].Body != "정말 좋은 시네요" || list[0].CredentialHash != "$2a$10$hash" {
		t.Fatalf("unexpected comment row: %+v", list[0])
	}
}
