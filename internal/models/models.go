// Package models defines the core data structures for the webzine engine.
//
// It includes content and comment types, spam classification verdicts, and the
// API response envelope shared across modules.
package models

import (
	"errors"
	"time"
)

// ContentCategory identifies the kind of content a row holds.
type ContentCategory string

const (
	// CategoryArticle is long-form written content.
	CategoryArticle ContentCategory = "article"
	// CategoryPoetry is poetry submissions.
	CategoryPoetry ContentCategory = "poetry"
	// CategoryPhoto is photo essays.
	CategoryPhoto ContentCategory = "photo"
	// CategoryCalligraphy is calligraphy pieces.
	CategoryCalligraphy ContentCategory = "calligraphy"
	// CategoryVideo is embedded video content.
	CategoryVideo ContentCategory = "video"
)

// IsValidContentCategory checks if the given category is supported.
func IsValidContentCategory(c ContentCategory) bool {
	switch c {
	case CategoryArticle, CategoryPoetry, CategoryPhoto, CategoryCalligraphy, CategoryVideo:
		return true
	default:
		return false
	}
}

// CountField selects which persisted counter an increment targets.
type CountField string

const (
	// CountFieldLikes targets the likes_count column.
	CountFieldLikes CountField = "likes"
	// CountFieldViews targets the view_count column.
	CountFieldViews CountField = "views"
)

// IsValidCountField checks if the given count field is supported.
func IsValidCountField(f CountField) bool {
	return f == CountFieldLikes || f == CountFieldViews
}

// Validation constants for comment submissions
const (
	// MinAuthorNameLength defines the minimum length for a comment author name
	MinAuthorNameLength = 2
	// MaxAuthorNameLength defines the maximum length for a comment author name
	MaxAuthorNameLength = 20
	// MinCommentBodyLength defines the minimum length for a sanitized comment body
	MinCommentBodyLength = 2
	// MaxCommentBodyLength defines the maximum length for a sanitized comment body
	MaxCommentBodyLength = 2000
	// MinCredentialLength defines the minimum length for a guest credential
	MinCredentialLength = 4
	// MaxCredentialLength defines the maximum length for a guest credential
	MaxCredentialLength = 50
)

// Error variables for the engine's error taxonomy
var (
	// ErrNotFound indicates the target content row is absent or unpublished.
	ErrNotFound = errors.New("content not found")
	// ErrStoreFailure indicates the external data store failed.
	ErrStoreFailure = errors.New("store operation failed")

	ErrAuthorNameLength  = errors.New("author name must be 2-20 characters")
	ErrAuthorNameCharset = errors.New("author name contains disallowed characters")
	ErrBodyLength        = errors.New("comment body must be 2-2000 characters")
	ErrCredentialLength  = errors.New("credential must be 4-50 characters")
)

// Content represents a single webzine content row.
type Content struct {
	ID         int64           `json:"id"`
	Title      string          `json:"title"`
	Body       string          `json:"body,omitempty"`
	Category   ContentCategory `json:"category"`
	Published  bool            `json:"published"`
	LikesCount int64           `json:"likes_count"`
	ViewCount  int64           `json:"view_count"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// CountFor returns the current value of the selected counter field.
func (c Content) CountFor(field CountField) int64 {
	if field == CountFieldViews {
		return c.ViewCount
	}
	return c.LikesCount
}

// Comment represents a persisted guest comment.
// CredentialHash is excluded from every JSON projection.
type Comment struct {
	ID             string    `json:"id"`
	ContentID      int64     `json:"content_id"`
	AuthorName     string    `json:"author_name"`
	GuestEmail     string    `json:"guest_email"`
	Body           string    `json:"body"`
	CredentialHash string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// ReasonCode identifies which spam rule rejected a comment body.
type ReasonCode string

const (
	// ReasonNone means no rule matched and the body was accepted.
	ReasonNone ReasonCode = "NONE"
	// ReasonTooShort means the trimmed body was below the minimum length.
	ReasonTooShort ReasonCode = "TOO_SHORT"
	// ReasonBannedWord means the body contained a banned word as a substring.
	ReasonBannedWord ReasonCode = "BANNED_WORD"
	// ReasonRepeatedChars means a single character repeated past the run threshold.
	ReasonRepeatedChars ReasonCode = "REPEATED_CHARS"
	// ReasonContainsURL means the body matched the URL pattern.
	ReasonContainsURL ReasonCode = "CONTAINS_URL"
	// ReasonContainsPhone means the body matched the phone-number pattern.
	ReasonContainsPhone ReasonCode = "CONTAINS_PHONE"
)

// ClassificationVerdict is the structured result of the spam rule chain.
// Exactly one reason code is set; ReasonNone iff IsSpam is false.
type ClassificationVerdict struct {
	IsSpam  bool       `json:"is_spam"`
	Reason  ReasonCode `json:"reason"`
	Message string     `json:"message,omitempty"`
}

// IncrementResult reports the outcome of a deduplicated counter increment.
// Count is always the last known-good authoritative value: the new value when
// accepted, the unchanged current value when suppressed.
type IncrementResult struct {
	Accepted bool  `json:"accepted"`
	Count    int64 `json:"count"`
}
