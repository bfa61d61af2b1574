// Package counter implements the deduplicated increment protocol for content
// like and view counts.
//
// Each increment is a read-check-dedup-increment sequence: the content row is
// loaded first (so failed lookups never consume a dedup key), the field's
// dedup cache decides whether this identity may act, and only then does the
// store apply the increment and return the authoritative value.
package counter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hanulzine/webzine/internal/dedup"
	"github.com/hanulzine/webzine/internal/models"
)

// Default dedup windows. Likes are keyed per client network identity and
// suppressed briefly; views are keyed per client session token and suppressed
// for a day.
const (
	DefaultLikeTTL   = time.Minute
	DefaultLikeSweep = 5 * time.Minute
	DefaultViewTTL   = 24 * time.Hour
	DefaultViewSweep = 48 * time.Hour
)

// Store is the slice of the data store the counter service needs.
type Store interface {
	GetContent(ctx context.Context, id int64) (*models.Content, error)
	IncrementCount(ctx context.Context, id int64, field models.CountField, expected int64) (int64, error)
}

// Service performs deduplicated, best-effort-atomic counter increments.
type Service struct {
	store Store
	likes *dedup.Cache
	views *dedup.Cache
}

// Opts holds dedup window configuration for the counter service.
type Opts struct {
	LikeTTL   time.Duration
	LikeSweep time.Duration
	ViewTTL   time.Duration
	ViewSweep time.Duration
}

// Option configures the counter service.
type Option func(*Opts)

// WithLikeWindow overrides the like dedup TTL and sweep threshold.
func WithLikeWindow(ttl, sweep time.Duration) Option {
	return func(o *Opts) {
		o.LikeTTL = ttl
		o.LikeSweep = sweep
	}
}

// WithViewWindow overrides the view dedup TTL and sweep threshold.
func WithViewWindow(ttl, sweep time.Duration) Option {
	return func(o *Opts) {
		o.ViewTTL = ttl
		o.ViewSweep = sweep
	}
}

// NewService creates a counter service with its two dedup cache instances.
func NewService(store Store, opts ...Option) *Service {
	cfg := Opts{
		LikeTTL:   DefaultLikeTTL,
		LikeSweep: DefaultLikeSweep,
		ViewTTL:   DefaultViewTTL,
		ViewSweep: DefaultViewSweep,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Service{
		store: store,
		likes: dedup.NewCache(cfg.LikeTTL, cfg.LikeSweep),
		views: dedup.NewCache(cfg.ViewTTL, cfg.ViewSweep),
	}
}

// DedupKey builds the composite dedup key for an identity acting on a content row.
func DedupKey(identity string, contentID int64) string {
	return fmt.Sprintf("%s:%d", identity, contentID)
}

// TryIncrement performs a deduplicated increment of the selected counter.
//
// Returns models.ErrNotFound when the row is absent or unpublished, without
// touching the dedup cache. A suppressed repeat is not an error: the result
// carries Accepted=false and the unchanged current count. Store failures after
// the dedup key was consumed are logged with full context; the key stays
// consumed, favoring abuse-resistance over availability.
func (s *Service) TryIncrement(ctx context.Context, contentID int64, dedupKey string, field models.CountField) (models.IncrementResult, error) {
	var zero models.IncrementResult

	content, err := s.store.GetContent(ctx, contentID)
	if err != nil {
		slog.Error("Service.TryIncrement: content lookup failed", "error", err, "content_id", contentID, "field", field)
		return zero, fmt.Errorf("%w: %v", models.ErrStoreFailure, err)
	}
	if content == nil || !content.Published {
		slog.Debug("Service.TryIncrement: content not found or unpublished", "content_id", contentID, "field", field)
		return zero, models.ErrNotFound
	}
	current := content.CountFor(field)

	if !s.cacheFor(field).CheckAndRecord(dedupKey) {
		slog.Debug("Service.TryIncrement: suppressed duplicate", "content_id", contentID, "field", field, "dedup_key", dedupKey)
		return models.IncrementResult{Accepted: false, Count: current}, nil
	}

	newValue, err := s.store.IncrementCount(ctx, contentID, field, current+1)
	if err != nil {
		// The dedup key is already consumed; the client cannot retry within
		// the TTL even though nothing was recorded. Accepted trade-off.
		slog.Error("Service.TryIncrement: persist failed after dedup key consumed",
			"error", err, "content_id", contentID, "field", field, "dedup_key", dedupKey)
		return zero, fmt.Errorf("%w: %v", models.ErrStoreFailure, err)
	}
	slog.Info("Service.TryIncrement: accepted", "content_id", contentID, "field", field, "count", newValue)
	return models.IncrementResult{Accepted: true, Count: newValue}, nil
}

// CacheSizes reports the live entry counts of the two dedup caches.
func (s *Service) CacheSizes() (likeEntries, viewEntries int) {
	return s.likes.Len(), s.views.Len()
}

func (s *Service) cacheFor(field models.CountField) *dedup.Cache {
	if field == models.CountFieldViews {
		return s.views
	}
	return s.likes
}
