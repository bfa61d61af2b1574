package comment

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/hanulzine/webzine/internal/models"
	"github.com/hanulzine/webzine/internal/sanitize"
	"github.com/hanulzine/webzine/internal/spam"
)

// fakeCommentStore records persisted comments and can be forced to fail.
type fakeCommentStore struct {
	content map[int64]*models.Content
	saved   []models.Comment
	addErr  error
}

func newFakeCommentStore() *fakeCommentStore {
	return &fakeCommentStore{content: make(map[int64]*models.Content)}
}

func (f *fakeCommentStore) GetContent(_ context.Context, id int64) (*models.Content, error) {
	c, ok := f.content[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCommentStore) AddComment(_ context.Context, cm models.Comment) (models.Comment, error) {
	if f.addErr != nil {
		return models.Comment{}, f.addErr
	}
	f.saved = append(f.saved, cm)
	return cm, nil
}

// fakeHasher avoids bcrypt cost in unit tests.
type fakeHasher struct{}

func (fakeHasher) Hash(plain string) (string, error) {
	return "hashed:" + plain, nil
}

func newTestService(st *fakeCommentStore) *Service {
	return NewService(st, sanitize.New(), spam.NewClassifier(), fakeHasher{})
}

func validSubmission() Submission {
	return Submission{
		ContentID:      1,
		Body:           "정말 좋은 글이네요 감사합니다",
		AuthorName:     "독자",
		Credential:     "secret99",
		ClientIdentity: "1.2.3.4",
	}
}

func TestSubmitAccepted(t *testing.T) {
	st := newFakeCommentStore()
	st.content[1] = &models.Content{ID: 1, Published: true}
	svc := newTestService(st)

	cm, err := svc.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if cm.ID == "" {
		t.Error("expected generated comment id")
	}
	if cm.Body != "정말 좋은 글이네요 감사합니다" {
		t.Errorf("unexpected body: %q", cm.Body)
	}
	if cm.CredentialHash != "hashed:secret99" {
		t.Errorf("credential not hashed: %q", cm.CredentialHash)
	}
	if !strings.HasPrefix(cm.GuestEmail, "guest-") {
		t.Errorf("expected synthetic guest email, got %q", cm.GuestEmail)
	}
	if len(st.saved) != 1 {
		t.Fatalf("expected 1 persisted comment, got %d", len(st.saved))
	}
}

func TestSubmitProjectionExcludesCredentialHash(t *testing.T) {
	st := newFakeCommentStore()
	st.content[1] = &models.Content{ID: 1, Published: true}
	svc := newTestService(st)

	cm, err := svc.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	data, err := json.Marshal(cm)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(data), "hashed:") || strings.Contains(strings.ToLower(string(data)), "credential") {
		t.Fatalf("credential hash leaked into projection: %s", data)
	}
	if strings.Contains(string(data), "secret99") {
		t.Fatalf("plaintext credential leaked into projection: %s", data)
	}
}

func TestSubmitPersistsSanitizedBody(t *testing.T) {
	st := newFakeCommentStore()
	st.content[1] = &models.Content{ID: 1, Published: true}
	svc := newTestService(st)

	sub := validSubmission()
	sub.Body = `좋은 글 <script>alert("x")</script>감사합니다`
	cm, err := svc.Submit(context.Background(), sub)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if cm.Body != "좋은 글 감사합니다" {
		t.Errorf("body not sanitized: %q", cm.Body)
	}
	if st.saved[0].Body != "좋은 글 감사합니다" {
		t.Errorf("persisted raw body: %q", st.saved[0].Body)
	}
}

func TestSubmitValidationFailures(t *testing.T) {
	st := newFakeCommentStore()
	st.content[1] = &models.Content{ID: 1, Published: true}
	svc := newTestService(st)

	tests := []struct {
		name   string
		mutate func(*Submission)
		field  string
	}{
		{"author too short", func(s *Submission) { s.AuthorName = "a" }, "author_name"},
		{"author too long", func(s *Submission) { s.AuthorName = strings.Repeat("가", 21) }, "author_name"},
		{"author bad charset", func(s *Submission) { s.AuthorName = "독자<>!" }, "author_name"},
		{"body too long", func(s *Submission) { s.Body = strings.Repeat("가", 2001) }, "body"},
		{"credential too short", func(s *Submission) { s.Credential = "abc" }, "credential"},
		{"credential too long", func(s *Submission) { s.Credential = strings.Repeat("x", 51) }, "credential"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validSubmission()
			tt.mutate(&sub)
			_, err := svc.Submit(context.Background(), sub)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Fatalf("expected field %q, got %q", tt.field, verr.Field)
			}
		})
	}
	if len(st.saved) != 0 {
		t.Fatalf("rejected submissions were persisted: %d", len(st.saved))
	}
}

func TestSubmitSpamRejected(t *testing.T) {
	st := newFakeCommentStore()
	st.content[1] = &models.Content{ID: 1, Published: true}
	svc := newTestService(st)

	sub := validSubmission()
	sub.Body = "좋은글 http://example.com 감사"
	_, err := svc.Submit(context.Background(), sub)
	var serr *SpamError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SpamError, got %v", err)
	}
	if serr.Verdict.Reason != models.ReasonContainsURL {
		t.Fatalf("expected CONTAINS_URL, got %s", serr.Verdict.Reason)
	}
	if len(st.saved) != 0 {
		t.Fatal("spam comment was persisted")
	}
}

func TestSubmitClassifiesSanitizedBody(t *testing.T) {
	st := newFakeCommentStore()
	st.content[1] = &models.Content{ID: 1, Published: true}
	svc := newTestService(st)

	// Raw input is long enough, but sanitization strips the markup and the
	// remainder is below the minimum length.
	sub := validSubmission()
	sub.Body = "<b><i><u>하이</u></i></b>"
	_, err := svc.Submit(context.Background(), sub)
	var serr *SpamError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SpamError, got %v", err)
	}
	if serr.Verdict.Reason != models.ReasonTooShort {
		t.Fatalf("expected TOO_SHORT, got %s", serr.Verdict.Reason)
	}
}

func TestSubmitNotFound(t *testing.T) {
	st := newFakeCommentStore()
	st.content[2] = &models.Content{ID: 2, Published: false}
	svc := newTestService(st)

	sub := validSubmission()
	sub.ContentID = 999
	if _, err := svc.Submit(context.Background(), sub); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing content, got %v", err)
	}

	sub.ContentID = 2
	if _, err := svc.Submit(context.Background(), sub); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unpublished content, got %v", err)
	}
}

func TestSubmitStoreFailure(t *testing.T) {
	st := newFakeCommentStore()
	st.content[1] = &models.Content{ID: 1, Published: true}
	st.addErr = errors.New("disk full")
	svc := newTestService(st)

	if _, err := svc.Submit(context.Background(), validSubmission()); !errors.Is(err, models.ErrStoreFailure) {
		t.Fatalf("expected ErrStoreFailure, got %v", err)
	}
}

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := NewBcryptHasher(4) // minimum cost keeps the test fast

	hash, err := h.Hash("secret99")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if hash == "secret99" || hash == "" {
		t.Fatal("hash must not equal or drop the plaintext")
	}
	if !h.Verify(hash, "secret99") {
		t.Error("Verify rejected the original credential")
	}
	if h.Verify(hash, "wrong") {
		t.Error("Verify accepted a wrong credential")
	}
}
