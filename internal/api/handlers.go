// Package api provides HTTP handlers for the public webzine endpoints.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/hanulzine/webzine/internal/comment"
	"github.com/hanulzine/webzine/internal/counter"
	"github.com/hanulzine/webzine/internal/models"
)

// parseContentID extracts and parses the {id} path segment.
func parseContentID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// clientIdentity derives the request's network identity: the first hop of
// X-Forwarded-For when present, otherwise the remote address host. Shared
// NAT/proxy origins collapse to one identity; that is the accepted behavior
// for like dedup.
func clientIdentity(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) getContentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseContentID(r)
	if err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid content id"))
		return
	}
	content, err := s.store.GetContent(r.Context(), id)
	if err != nil {
		slog.Error("Server.getContentHandler: lookup failed", "error", err, "id", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load content"))
		return
	}
	if content == nil || !content.Published {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Content not found"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(content))
}

func (s *Server) listContentHandler(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListContent(r.Context(), false)
	if err != nil {
		slog.Error("Server.listContentHandler: query failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to list content"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(list))
}

func (s *Server) likeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseContentID(r)
	if err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid content id"))
		return
	}
	identity := clientIdentity(r)
	slog.Debug("Server.likeHandler: processing like", "content_id", id, "identity", identity)

	result, err := s.counters.TryIncrement(r.Context(), id, counter.DedupKey(identity, id), models.CountFieldLikes)
	s.writeIncrementResponse(w, result, err, "like")
}

// viewRequest carries the client-generated session token for view dedup.
type viewRequest struct {
	Session string `json:"session"`
}

func (s *Server) viewHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	id, err := parseContentID(r)
	if err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid content id"))
		return
	}

	// View dedup keys on a client-supplied session token, not the network
	// origin: many legitimate viewers can share one address.
	session := r.Header.Get("X-Session-Token")
	if session == "" {
		var req viewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			session = req.Session
		}
	}
	if session == "" {
		slog.Warn("Server.viewHandler: missing session token", "content_id", id)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Session token required"))
		return
	}

	result, err := s.counters.TryIncrement(r.Context(), id, counter.DedupKey(session, id), models.CountFieldViews)
	s.writeIncrementResponse(w, result, err, "view")
}

// writeIncrementResponse maps a counter result to the HTTP envelope:
// accepted 200, suppressed 429, not found 404, store failure 500.
func (s *Server) writeIncrementResponse(w http.ResponseWriter, result models.IncrementResult, err error, action string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeJSONResponse(w, http.StatusNotFound, models.Error("Content not found"))
	case err != nil:
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to record "+action))
	case !result.Accepted:
		writeJSONResponse(w, http.StatusTooManyRequests, models.Suppressed("Duplicate "+action+" suppressed", result))
	default:
		writeJSONResponse(w, http.StatusOK, models.Success(result))
	}
}

// commentRequest is the submission payload for a new guest comment.
type commentRequest struct {
	AuthorName string `json:"author_name"`
	Body       string `json:"body"`
	Credential string `json:"credential"`
}

func (s *Server) submitCommentHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	id, err := parseContentID(r)
	if err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid content id"))
		return
	}
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.submitCommentHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	persisted, err := s.comments.Submit(r.Context(), comment.Submission{
		ContentID:      id,
		Body:           req.Body,
		AuthorName:     req.AuthorName,
		Credential:     req.Credential,
		ClientIdentity: clientIdentity(r),
	})
	if err != nil {
		s.writeCommentError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, models.Success(persisted))
}

// writeCommentError maps comment service errors to the HTTP envelope. Spam
// rejections are surfaced as a rate-limit-class 429 rather than a generic
// client error to discourage tuning submissions against the filter.
func (s *Server) writeCommentError(w http.ResponseWriter, err error) {
	var verr *comment.ValidationError
	var serr *comment.SpamError
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeJSONResponse(w, http.StatusNotFound, models.Error("Content not found"))
	case errors.As(err, &verr):
		writeJSONResponse(w, http.StatusBadRequest, models.Error(verr.Error()))
	case errors.As(err, &serr):
		writeJSONResponse(w, http.StatusTooManyRequests, models.Rejected(serr.Verdict.Message, serr.Verdict))
	default:
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to save comment"))
	}
}

func (s *Server) listCommentsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseContentID(r)
	if err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid content id"))
		return
	}
	content, err := s.store.GetContent(r.Context(), id)
	if err != nil {
		slog.Error("Server.listCommentsHandler: lookup failed", "error", err, "id", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load content"))
		return
	}
	if content == nil || !content.Published {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Content not found"))
		return
	}
	list, err := s.store.ListComments(r.Context(), id)
	if err != nil {
		slog.Error("Server.listCommentsHandler: query failed", "error", err, "id", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to list comments"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(list))
}
