// Package comment implements validation, spam classification, and persistence
// of guest comment submissions.
//
// A submission flows through sanitize → validate → classify → hash → persist;
// the first failing stage rejects the submission and nothing is stored. The
// plaintext credential is hashed before persistence and never logged.
package comment

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/google/uuid"
	"github.com/hanulzine/webzine/internal/models"
	"github.com/hanulzine/webzine/internal/spam"
	"github.com/hanulzine/webzine/internal/util"
)

// authorNamePattern restricts display names to Korean, alphanumerics, and a
// few separators.
var authorNamePattern = regexp.MustCompile(`^[0-9A-Za-z가-힣ㄱ-ㅎㅏ-ㅣ._\- ]+$`)

// Store is the slice of the data store the comment service needs.
type Store interface {
	GetContent(ctx context.Context, id int64) (*models.Content, error)
	AddComment(ctx context.Context, cm models.Comment) (models.Comment, error)
}

// Sanitizer strips markup from user-submitted fields.
type Sanitizer interface {
	Body(s string) string
	AuthorName(s string) string
}

// Hasher derives a one-way salted hash from a guest credential.
type Hasher interface {
	Hash(plain string) (string, error)
}

// ValidationError reports a field-specific input-quality failure. Fully
// recoverable by resubmitting corrected input.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// SpamError reports a classifier rejection with its verdict.
type SpamError struct {
	Verdict models.ClassificationVerdict
}

func (e *SpamError) Error() string {
	return fmt.Sprintf("comment rejected as spam: %s", e.Verdict.Reason)
}

// Submission is one raw comment submission before sanitization.
type Submission struct {
	ContentID  int64
	Body       string
	AuthorName string
	Credential string
	// ClientIdentity is used only for logging, never for dedup or persistence.
	ClientIdentity string
}

// Service orchestrates comment ingestion.
type Service struct {
	store      Store
	sanitizer  Sanitizer
	classifier *spam.Classifier
	hasher     Hasher
}

// NewService creates a comment ingest service.
func NewService(store Store, sanitizer Sanitizer, classifier *spam.Classifier, hasher Hasher) *Service {
	return &Service{
		store:      store,
		sanitizer:  sanitizer,
		classifier: classifier,
		hasher:     hasher,
	}
}

// Submit validates, classifies, and persists a comment submission.
//
// Returns models.ErrNotFound for absent/unpublished content, *ValidationError
// for malformed input, *SpamError for classifier rejections, and a wrapped
// models.ErrStoreFailure for persistence failures. The returned comment's
// CredentialHash is excluded from JSON projections by the model.
func (s *Service) Submit(ctx context.Context, sub Submission) (models.Comment, error) {
	var zero models.Comment

	content, err := s.store.GetContent(ctx, sub.ContentID)
	if err != nil {
		slog.Error("Service.Submit: content lookup failed", "error", err, "content_id", sub.ContentID)
		return zero, fmt.Errorf("%w: %v", models.ErrStoreFailure, err)
	}
	if content == nil || !content.Published {
		slog.Debug("Service.Submit: content not found or unpublished", "content_id", sub.ContentID)
		return zero, models.ErrNotFound
	}

	authorName := s.sanitizer.AuthorName(sub.AuthorName)
	body := s.sanitizer.Body(sub.Body)
	if err := validateSubmission(authorName, body, sub.Credential); err != nil {
		slog.Warn("Service.Submit: validation failed", "error", err, "content_id", sub.ContentID, "client", sub.ClientIdentity)
		return zero, err
	}

	verdict := s.classifier.Classify(body)
	if verdict.IsSpam {
		slog.Warn("Service.Submit: spam rejected", "reason", verdict.Reason, "content_id", sub.ContentID, "client", sub.ClientIdentity)
		return zero, &SpamError{Verdict: verdict}
	}

	hash, err := s.hasher.Hash(sub.Credential)
	if err != nil {
		slog.Error("Service.Submit: credential hashing failed", "error", err, "content_id", sub.ContentID)
		return zero, fmt.Errorf("failed to hash credential: %w", err)
	}

	cm := models.Comment{
		ID:             uuid.NewString(),
		ContentID:      sub.ContentID,
		AuthorName:     authorName,
		GuestEmail:     util.GenerateGuestEmail(),
		Body:           body,
		CredentialHash: hash,
	}
	persisted, err := s.store.AddComment(ctx, cm)
	if err != nil {
		slog.Error("Service.Submit: persist failed", "error", err, "content_id", sub.ContentID, "comment_id", cm.ID)
		return zero, fmt.Errorf("%w: %v", models.ErrStoreFailure, err)
	}
	slog.Info("Service.Submit: comment accepted", "content_id", sub.ContentID, "comment_id", persisted.ID)
	return persisted, nil
}

func validateSubmission(authorName, body, credential string) error {
	nameLen := len([]rune(authorName))
	if nameLen < models.MinAuthorNameLength || nameLen > models.MaxAuthorNameLength {
		return &ValidationError{Field: "author_name", Err: models.ErrAuthorNameLength}
	}
	if !authorNamePattern.MatchString(authorName) {
		return &ValidationError{Field: "author_name", Err: models.ErrAuthorNameCharset}
	}
	bodyLen := len([]rune(body))
	if bodyLen < models.MinCommentBodyLength || bodyLen > models.MaxCommentBodyLength {
		return &ValidationError{Field: "body", Err: models.ErrBodyLength}
	}
	credLen := len([]rune(credential))
	if credLen < models.MinCredentialLength || credLen > models.MaxCredentialLength {
		return &ValidationError{Field: "credential", Err: models.ErrCredentialLength}
	}
	return nil
}
