package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hanulzine/webzine/internal/comment"
	"github.com/hanulzine/webzine/internal/counter"
	"github.com/hanulzine/webzine/internal/models"
	"github.com/hanulzine/webzine/internal/sanitize"
	"github.com/hanulzine/webzine/internal/spam"
	"github.com/hanulzine/webzine/internal/store"
)

const testAdminSecret = "test-secret"

// newTestServer builds a server over an in-memory store with one published
// and one unpublished content row.
func newTestServer(t *testing.T) (*Server, *store.InMemoryStore) {
	t.Helper()
	st := store.NewInMemoryStore()
	if _, err := st.CreateContent(context.Background(), models.Content{
		Title: "봄호 특집", Category: models.CategoryArticle, Published: true,
	}); err != nil {
		t.Fatalf("seed content failed: %v", err)
	}
	if _, err := st.CreateContent(context.Background(), models.Content{
		Title: "초안", Category: models.CategoryPoetry, Published: false,
	}); err != nil {
		t.Fatalf("seed draft failed: %v", err)
	}

	counters := counter.NewService(st)
	comments := comment.NewService(st, sanitize.New(), spam.NewClassifier(), comment.NewBcryptHasher(4))
	srv := NewServer(st, counters, comments, WithAdminJWTSecret(testAdminSecret))
	return srv, st
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return resp
}

func TestGetContentHandler(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	req := httptest.NewRequest("GET", "/api/content/1", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp.Status != "ok" {
		t.Fatalf("unexpected status %q", resp.Status)
	}

	// Unpublished rows are invisible to the public surface.
	req = httptest.NewRequest("GET", "/api/content/2", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unpublished content, got %d", rr.Code)
	}
}

func TestLikeHandlerAcceptThenSuppress(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	req := httptest.NewRequest("POST", "/api/content/1/like", nil)
	req.RemoteAddr = "10.0.0.9:51234"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	// Same origin within the TTL window is suppressed with the current count.
	req = httptest.NewRequest("POST", "/api/content/1/like", nil)
	req.RemoteAddr = "10.0.0.9:51235"
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp.Status != string(models.APIStatusSuppressed) {
		t.Fatalf("unexpected status %q", resp.Status)
	}

	// A different origin is accepted independently.
	req = httptest.NewRequest("POST", "/api/content/1/like", nil)
	req.RemoteAddr = "10.0.0.10:51234"
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for distinct origin, got %d", rr.Code)
	}
}

func TestLikeHandlerUsesForwardedFor(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	req := httptest.NewRequest("POST", "/api/content/1/like", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	// Same forwarded client behind a different proxy hop is still a duplicate.
	req = httptest.NewRequest("POST", "/api/content/1/like", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.2")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
}

func TestLikeHandlerNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	for _, path := range []string{"/api/content/999/like", "/api/content/2/like"} {
		req := httptest.NewRequest("POST", path, nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Errorf("POST %s: expected 404, got %d", path, rr.Code)
		}
	}

	// Failed lookups never consume dedup state.
	likeEntries, viewEntries := srv.counters.CacheSizes()
	if likeEntries != 0 || viewEntries != 0 {
		t.Fatalf("dedup caches touched by 404s: likes=%d views=%d", likeEntries, viewEntries)
	}
}

func TestViewHandlerSessionToken(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	// Missing session token is a client error.
	req := httptest.NewRequest("POST", "/api/content/1/view", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without session token, got %d", rr.Code)
	}

	req = httptest.NewRequest("POST", "/api/content/1/view", nil)
	req.Header.Set("X-Session-Token", "sess-abc123")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	// Token in the JSON body works the same.
	body := bytes.NewBufferString(`{"session":"sess-abc123"}`)
	req = httptest.NewRequest("POST", "/api/content/1/view", body)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for repeated session, got %d", rr.Code)
	}
}

func submitComment(handler http.Handler, contentID, payload string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/content/"+contentID+"/comments", bytes.NewBufferString(payload))
	req.RemoteAddr = "10.0.0.9:51234"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestSubmitCommentHandlerAccepted(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	rr := submitComment(handler, "1", `{"author_name":"독자","body":"정말 좋은 글이네요 감사합니다","credential":"secret99"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if strings.Contains(rr.Body.String(), "secret99") {
		t.Fatal("credential leaked into response")
	}
	if strings.Contains(strings.ToLower(rr.Body.String()), "credential") {
		t.Fatal("credential hash field leaked into response")
	}

	listReq := httptest.NewRequest("GET", "/api/content/1/comments", nil)
	listRR := httptest.NewRecorder()
	handler.ServeHTTP(listRR, listReq)
	if listRR.Code != http.StatusOK {
		t.Fatalf("expected 200 listing comments, got %d", listRR.Code)
	}
	if !strings.Contains(listRR.Body.String(), "정말 좋은 글이네요 감사합니다") {
		t.Fatalf("comment missing from listing: %s", listRR.Body.String())
	}
}

func TestSubmitCommentHandlerRejections(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	tests := []struct {
		name     string
		id       string
		payload  string
		wantCode int
	}{
		{"invalid json", "1", `{"author_name":`, http.StatusBadRequest},
		{"validation error", "1", `{"author_name":"a","body":"정말 좋은 글이네요","credential":"secret99"}`, http.StatusBadRequest},
		{"spam url", "1", `{"author_name":"독자","body":"좋은글 http://example.com 감사","credential":"secret99"}`, http.StatusTooManyRequests},
		{"spam banned word", "1", `{"author_name":"독자","body":"씨발입니다완전","credential":"secret99"}`, http.StatusTooManyRequests},
		{"unknown content", "999", `{"author_name":"독자","body":"정말 좋은 글이네요","credential":"secret99"}`, http.StatusNotFound},
		{"unpublished content", "2", `{"author_name":"독자","body":"정말 좋은 글이네요","credential":"secret99"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := submitComment(handler, tt.id, tt.payload)
			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestSubmitCommentHandlerSpamVerdictStatus(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	rr := submitComment(handler, "1", `{"author_name":"독자","body":"연락처 010-1234-5678","credential":"secret99"}`)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	resp := decodeResponse(t, rr)
	if resp.Status != string(models.APIStatusRejected) {
		t.Fatalf("unexpected status %q", resp.Status)
	}
	if resp.Message != spam.MsgContainsPhone {
		t.Fatalf("expected fixed phone rule message, got %q", resp.Message)
	}
}

func TestListContentHandlerPublishedOnly(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	req := httptest.NewRequest("GET", "/api/content", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "초안") {
		t.Fatalf("unpublished content leaked into public listing: %s", rr.Body.String())
	}
}
