// Package api provides HTTP handlers for the admin content CRUD endpoints.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hanulzine/webzine/internal/models"
)

// contentRequest is the admin payload for creating or updating content.
type contentRequest struct {
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	Category  models.ContentCategory `json:"category"`
	Published bool                   `json:"published"`
}

func (req *contentRequest) validate() error {
	if req.Title == "" {
		return errors.New("title is required")
	}
	if req.Category == "" {
		req.Category = models.CategoryArticle
	}
	if !models.IsValidContentCategory(req.Category) {
		return errors.New("invalid content category")
	}
	return nil
}

func (s *Server) adminListContentHandler(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListContent(r.Context(), true)
	if err != nil {
		slog.Error("Server.adminListContentHandler: query failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to list content"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(list))
}

func (s *Server) adminCreateContentHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	var req contentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.adminCreateContentHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.validate(); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	created, err := s.store.CreateContent(r.Context(), models.Content{
		Title:     req.Title,
		Body:      req.Body,
		Category:  req.Category,
		Published: req.Published,
	})
	if err != nil {
		slog.Error("Server.adminCreateContentHandler: create failed", "error", err, "title", req.Title)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to create content"))
		return
	}
	slog.Info("Server.adminCreateContentHandler: content created", "id", created.ID, "category", created.Category)
	writeJSONResponse(w, http.StatusCreated, models.Success(created))
}

func (s *Server) adminUpdateContentHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	id, err := parseContentID(r)
	if err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid content id"))
		return
	}
	var req contentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.adminUpdateContentHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.validate(); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	updated, err := s.store.UpdateContent(r.Context(), models.Content{
		ID:        id,
		Title:     req.Title,
		Body:      req.Body,
		Category:  req.Category,
		Published: req.Published,
	})
	if errors.Is(err, models.ErrNotFound) {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Content not found"))
		return
	}
	if err != nil {
		slog.Error("Server.adminUpdateContentHandler: update failed", "error", err, "id", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to update content"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(updated))
}

func (s *Server) adminDeleteContentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseContentID(r)
	if err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid content id"))
		return
	}
	err = s.store.DeleteContent(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Content not found"))
		return
	}
	if err != nil {
		slog.Error("Server.adminDeleteContentHandler: delete failed", "error", err, "id", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to delete content"))
		return
	}
	slog.Info("Server.adminDeleteContentHandler: content deleted", "id", id)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Content deleted", nil))
}
