// Package store provides storage backends for the webzine engine.
//
// Content and comment rows live behind the Store interface, with SQLite and
// PostgreSQL implementations plus an in-memory store used by tests and as the
// fallback when no DSN is configured.
package store

import (
	"context"
	"strings"

	"github.com/hanulzine/webzine/internal/models"
)

// Store is the data-access contract the engine needs from its backing store.
// GetContent returns (nil, nil) when no row exists; every failure is a
// distinguishable error, never a silent miss.
type Store interface {
	GetContent(ctx context.Context, id int64) (*models.Content, error)
	CreateContent(ctx context.Context, c models.Content) (models.Content, error)
	UpdateContent(ctx context.Context, c models.Content) (models.Content, error)
	DeleteContent(ctx context.Context, id int64) error
	ListContent(ctx context.Context, includeUnpublished bool) ([]models.Content, error)

	// IncrementCount applies a single increment to the selected counter and
	// returns the authoritative new value. expected is the value the caller
	// computed at read time (current + 1); backends without an atomic
	// read-modify-write primitive may fall back to it when a re-read fails.
	IncrementCount(ctx context.Context, id int64, field models.CountField, expected int64) (int64, error)

	AddComment(ctx context.Context, cm models.Comment) (models.Comment, error)
	ListComments(ctx context.Context, contentID int64) ([]models.Comment, error)

	Close() error
}

// Opts holds configuration for store construction.
type Opts struct {
	DSN string
}

// Option configures store construction.
type Option func(*Opts)

// WithPostgresDSN sets a PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// WithSQLiteDSN sets a SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// DetectDSNType reports "postgres" for PostgreSQL-shaped DSNs and "sqlite"
// for anything else (file paths).
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// New creates a store from options: PostgreSQL or SQLite when a DSN is set,
// otherwise the in-memory store.
func New(opts ...Option) (Store, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		return NewInMemoryStore(), nil
	}
	if DetectDSNType(cfg.DSN) == "postgres" {
		return NewPostgresStore(opts...)
	}
	return NewSQLiteStore(opts...)
}

// columnFor maps a count field to its column name. Callers must validate the
// field first; unknown fields map to likes_count.
func columnFor(field models.CountField) string {
	if field == models.CountFieldViews {
		return "view_count"
	}
	return "likes_count"
}
