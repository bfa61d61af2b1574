package store

import (
	"database/sql"
	"fmt"

	"github.com/hanulzine/webzine/internal/models"
)

// scanContentRow scans a Content from a single sql.Row.
func scanContentRow(row *sql.Row) (models.Content, error) {
	var c models.Content
	var category string
	err := row.Scan(&c.ID, &c.Title, &c.Body, &category, &c.Published, &c.LikesCount, &c.ViewCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return c, err
	}
	c.Category = models.ContentCategory(category)
	return c, nil
}

// collectContent drains content rows into a slice.
func collectContent(rows *sql.Rows) ([]models.Content, error) {
	var out []models.Content
	for rows.Next() {
		var c models.Content
		var category string
		if err := rows.Scan(&c.ID, &c.Title, &c.Body, &category, &c.Published, &c.LikesCount, &c.ViewCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan content row failed: %w", err)
		}
		c.Category = models.ContentCategory(category)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content rows failed: %w", err)
	}
	return out, nil
}

// collectComments drains comment rows into a slice.
func collectComments(rows *sql.Rows) ([]models.Comment, error) {
	var out []models.Comment
	for rows.Next() {
		var cm models.Comment
		if err := rows.Scan(&cm.ID, &cm.ContentID, &cm.AuthorName, &cm.GuestEmail, &cm.Body, &cm.CredentialHash, &cm.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment row failed: %w", err)
		}
		out = append(out, cm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comment rows failed: %w", err)
	}
	return out, nil
}
