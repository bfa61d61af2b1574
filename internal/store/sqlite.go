// Package store provides storage backends for the webzine engine.
//
// This file implements the SQLite-backed store for content and comments.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/hanulzine/webzine/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// Constants for SQLite store configuration
const (
	// DefaultDirPermissions defines the default permissions for database directories
	DefaultDirPermissions = 0755
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// Compile-time check that SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("SQLiteStore.NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	// Ensure the directory exists
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("SQLiteStore failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("SQLiteStore failed to open connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLiteStore ping failed", "error", err)
		return nil, err
	}

	// Run migrations to ensure tables exist
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("SQLiteStore failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLiteStore migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) GetContent(ctx context.Context, id int64) (*models.Content, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, body, category, published, likes_count, view_count, created_at, updated_at FROM content WHERE id = ?`, id)
	c, err := scanContentRow(row)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore.GetContent not found", "id", id)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore.GetContent failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to get content %d: %w", id, err)
	}
	return &c, nil
}

func (s *SQLiteStore) CreateContent(ctx context.Context, c models.Content) (models.Content, error) {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO content (title, body, category, published, likes_count, view_count, created_at, updated_at) VALUES (?, ?, ?, ?, 0, 0, ?, ?)`,
		c.Title, c.Body, string(c.Category), c.Published, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		slog.Error("SQLiteStore.CreateContent failed", "error", err, "title", c.Title)
		return models.Content{}, fmt.Errorf("failed to insert content: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		slog.Error("SQLiteStore.CreateContent last insert id failed", "error", err)
		return models.Content{}, fmt.Errorf("failed to read inserted content id: %w", err)
	}
	c.ID = id
	slog.Debug("SQLiteStore.CreateContent succeeded", "id", c.ID, "category", c.Category)
	return c, nil
}

func (s *SQLiteStore) UpdateContent(ctx context.Context, c models.Content) (models.Content, error) {
	c.UpdatedAt = time.Now()
	res, err := s.db.ExecContext(ctx,
		`UPDATE content SET title = ?, body = ?, category = ?, published = ?, updated_at = ? WHERE id = ?`,
		c.Title, c.Body, string(c.Category), c.Published, c.UpdatedAt, c.ID)
	if err != nil {
		slog.Error("SQLiteStore.UpdateContent failed", "error", err, "id", c.ID)
		return models.Content{}, fmt.Errorf("failed to update content %d: %w", c.ID, err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return models.Content{}, models.ErrNotFound
	}
	updated, err := s.GetContent(ctx, c.ID)
	if err != nil {
		return models.Content{}, err
	}
	if updated == nil {
		return models.Content{}, models.ErrNotFound
	}
	return *updated, nil
}

func (s *SQLiteStore) DeleteContent(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM content WHERE id = ?`, id)
	if err != nil {
		slog.Error("SQLiteStore.DeleteContent failed", "error", err, "id", id)
		return fmt.Errorf("failed to delete content %d: %w", id, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListContent(ctx context.Context, includeUnpublished bool) ([]models.Content, error) {
	query := `SELECT id, title, body, category, published, likes_count, view_count, created_at, updated_at FROM content`
	if !includeUnpublished {
		query += ` WHERE published = 1`
	}
	query += ` ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		slog.Error("SQLiteStore.ListContent query failed", "error", err)
		return nil, fmt.Errorf("failed to query content: %w", err)
	}
	defer rows.Close()
	return collectContent(rows)
}

// IncrementCount bumps the selected counter by one. SQLite has no RETURNING
// on older library versions, so the new value comes from a re-read; if that
// re-read fails after a successful update the expected value is returned
// optimistically rather than failing the accepted action.
func (s *SQLiteStore) IncrementCount(ctx context.Context, id int64, field models.CountField, expected int64) (int64, error) {
	column := columnFor(field)
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`UPDATE content SET %s = %s + 1 WHERE id = ?`, column, column), id)
	if err != nil {
		slog.Error("SQLiteStore.IncrementCount failed", "error", err, "id", id, "field", field)
		return 0, fmt.Errorf("failed to increment %s for content %d: %w", column, id, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return 0, models.ErrNotFound
	}

	var value int64
	err = s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM content WHERE id = ?`, column), id).Scan(&value)
	if err != nil {
		slog.Warn("SQLiteStore.IncrementCount re-read failed, returning expected value", "error", err, "id", id, "field", field, "expected", expected)
		return expected, nil
	}
	slog.Debug("SQLiteStore.IncrementCount succeeded", "id", id, "field", field, "value", value)
	return value, nil
}

func (s *SQLiteStore) AddComment(ctx context.Context, cm models.Comment) (models.Comment, error) {
	cm.CreatedAt = time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (id, content_id, author_name, guest_email, body, credential_hash, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		cm.ID, cm.ContentID, cm.AuthorName, cm.GuestEmail, cm.Body, cm.CredentialHash, cm.CreatedAt)
	if err != nil {
		slog.Error("SQLiteStore.AddComment failed", "error", err, "content_id", cm.ContentID)
		return models.Comment{}, fmt.Errorf("failed to insert comment for content %d: %w", cm.ContentID, err)
	}
	slog.Debug("SQLiteStore.AddComment succeeded", "id", cm.ID, "content_id", cm.ContentID)
	return cm, nil
}

func (s *SQLiteStore) ListComments(ctx context.Context, contentID int64) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content_id, author_name, guest_email, body, credential_hash, created_at FROM comments WHERE content_id = ? ORDER BY created_at`, contentID)
	if err != nil {
		slog.Error("SQLiteStore.ListComments query failed", "error", err, "content_id", contentID)
		return nil, fmt.Errorf("failed to query comments for content %d: %w", contentID, err)
	}
	defer rows.Close()
	return collectComments(rows)
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	err := s.db.Close()
	if err != nil {
		slog.Error("SQLiteStore failed to close database", "error", err)
	}
	return err
}
