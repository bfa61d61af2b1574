// Package store provides storage backends for the webzine engine.
//
// This file implements the in-memory store used by tests and single-process
// deployments without a configured DSN.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hanulzine/webzine/internal/models"
)

// InMemoryStore keeps content and comments in process memory.
type InMemoryStore struct {
	mu       sync.Mutex
	nextID   int64
	content  map[int64]models.Content
	comments map[int64][]models.Comment
}

// Compile-time check that InMemoryStore implements Store.
var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		nextID:   1,
		content:  make(map[int64]models.Content),
		comments: make(map[int64][]models.Comment),
	}
}

func (s *InMemoryStore) GetContent(_ context.Context, id int64) (*models.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.content[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *InMemoryStore) CreateContent(_ context.Context, c models.Content) (models.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextID
	s.nextID++
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	s.content[c.ID] = c
	return c, nil
}

func (s *InMemoryStore) UpdateContent(_ context.Context, c models.Content) (models.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.content[c.ID]
	if !ok {
		return models.Content{}, models.ErrNotFound
	}
	c.LikesCount = existing.LikesCount
	c.ViewCount = existing.ViewCount
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now()
	s.content[c.ID] = c
	return c, nil
}

func (s *InMemoryStore) DeleteContent(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.content[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.content, id)
	delete(s.comments, id)
	return nil
}

func (s *InMemoryStore) ListContent(_ context.Context, includeUnpublished bool) ([]models.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Content
	for _, c := range s.content {
		if !includeUnpublished && !c.Published {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryStore) IncrementCount(_ context.Context, id int64, field models.CountField, expected int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.content[id]
	if !ok {
		return 0, models.ErrNotFound
	}
	if field == models.CountFieldViews {
		c.ViewCount++
		s.content[id] = c
		return c.ViewCount, nil
	}
	c.LikesCount++
	s.content[id] = c
	return c.LikesCount, nil
}

func (s *InMemoryStore) AddComment(_ context.Context, cm models.Comment) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.content[cm.ContentID]; !ok {
		return models.Comment{}, models.ErrNotFound
	}
	cm.CreatedAt = time.Now()
	s.comments[cm.ContentID] = append(s.comments[cm.ContentID], cm)
	return cm, nil
}

func (s *InMemoryStore) ListComments(_ context.Context, contentID int64) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Comment, len(s.comments[contentID]))
	copy(out, s.comments[contentID])
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
