// Package store provides storage backends for the webzine engine.
//
// This file implements the PostgreSQL-backed store for content and comments.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/hanulzine/webzine/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")
	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("PostgresStore failed to open connection", "error", err)
		return nil, err
	}

	// Configure connection pool for better performance
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("PostgresStore ping failed", "error", err)
		return nil, err
	}

	// Run migrations to ensure tables exist
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("PostgresStore failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("PostgresStore migrations applied successfully")
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) GetContent(ctx context.Context, id int64) (*models.Content, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, body, category, published, likes_count, view_count, created_at, updated_at FROM content WHERE id = $1`, id)
	c, err := scanContentRow(row)
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore.GetContent not found", "id", id)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore.GetContent failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to get content %d: %w", id, err)
	}
	return &c, nil
}

func (s *PostgresStore) CreateContent(ctx context.Context, c models.Content) (models.Content, error) {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO content (title, body, category, published, likes_count, view_count, created_at, updated_at) VALUES ($1, $2, $3, $4, 0, 0, $5, $6) RETURNING id`,
		c.Title, c.Body, string(c.Category), c.Published, c.CreatedAt, c.UpdatedAt).Scan(&c.ID)
	if err != nil {
		slog.Error("PostgresStore.CreateContent failed", "error", err, "title", c.Title)
		return models.Content{}, fmt.Errorf("failed to insert content: %w", err)
	}
	slog.Debug("PostgresStore.CreateContent succeeded", "id", c.ID, "category", c.Category)
	return c, nil
}

func (s *PostgresStore) UpdateContent(ctx context.Context, c models.Content) (models.Content, error) {
	c.UpdatedAt = time.Now()
	row := s.db.QueryRowContext(ctx,
		`UPDATE content SET title = $1, body = $2, category = $3, published = $4, updated_at = $5 WHERE id = $6
		 RETURNING id, title, body, category, published, likes_count, view_count, created_at, updated_at`,
		c.Title, c.Body, string(c.Category), c.Published, c.UpdatedAt, c.ID)
	updated, err := scanContentRow(row)
	if err == sql.ErrNoRows {
		return models.Content{}, models.ErrNotFound
	}
	if err != nil {
		slog.Error("PostgresStore.UpdateContent failed", "error", err, "id", c.ID)
		return models.Content{}, fmt.Errorf("failed to update content %d: %w", c.ID, err)
	}
	return updated, nil
}

func (s *PostgresStore) DeleteContent(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM content WHERE id = $1`, id)
	if err != nil {
		slog.Error("PostgresStore.DeleteContent failed", "error", err, "id", id)
		return fmt.Errorf("failed to delete content %d: %w", id, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListContent(ctx context.Context, includeUnpublished bool) ([]models.Content, error) {
	query := `SELECT id, title, body, category, published, likes_count, view_count, created_at, updated_at FROM content`
	if !includeUnpublished {
		query += ` WHERE published = TRUE`
	}
	query += ` ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		slog.Error("PostgresStore.ListContent query failed", "error", err)
		return nil, fmt.Errorf("failed to query content: %w", err)
	}
	defer rows.Close()
	return collectContent(rows)
}

// IncrementCount bumps the selected counter atomically on the store side and
// returns the authoritative value from the same statement, so concurrent
// writers on other instances cannot lose updates here.
func (s *PostgresStore) IncrementCount(ctx context.Context, id int64, field models.CountField, expected int64) (int64, error) {
	column := columnFor(field)
	var value int64
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`UPDATE content SET %s = %s + 1 WHERE id = $1 RETURNING %s`, column, column, column), id).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, models.ErrNotFound
	}
	if err != nil {
		slog.Error("PostgresStore.IncrementCount failed", "error", err, "id", id, "field", field)
		return 0, fmt.Errorf("failed to increment %s for content %d: %w", column, id, err)
	}
	if value != expected {
		slog.Warn("PostgresStore.IncrementCount value differs from expected, concurrent writers", "id", id, "field", field, "value", value, "expected", expected)
	}
	slog.Debug("PostgresStore.IncrementCount succeeded", "id", id, "field", field, "value", value)
	return value, nil
}

func (s *PostgresStore) AddComment(ctx context.Context, cm models.Comment) (models.Comment, error) {
	cm.CreatedAt = time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (id, content_id, author_name, guest_email, body, credential_hash, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		cm.ID, cm.ContentID, cm.AuthorName, cm.GuestEmail, cm.Body, cm.CredentialHash, cm.CreatedAt)
	if err != nil {
		slog.Error("PostgresStore.AddComment failed", "error", err, "content_id", cm.ContentID)
		return models.Comment{}, fmt.Errorf("failed to insert comment for content %d: %w", cm.ContentID, err)
	}
	slog.Debug("PostgresStore.AddComment succeeded", "id", cm.ID, "content_id", cm.ContentID)
	return cm, nil
}

func (s *PostgresStore) ListComments(ctx context.Context, contentID int64) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content_id, author_name, guest_email, body, credential_hash, created_at FROM comments WHERE content_id = $1 ORDER BY created_at`, contentID)
	if err != nil {
		slog.Error("PostgresStore.ListComments query failed", "error", err, "content_id", contentID)
		return nil, fmt.Errorf("failed to query comments for content %d: %w", contentID, err)
	}
	defer rows.Close()
	return collectComments(rows)
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	err := s.db.Close()
	if err != nil {
		slog.Error("PostgresStore failed to close database", "error", err)
	}
	return err
}
