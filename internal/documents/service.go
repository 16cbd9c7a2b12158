package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-site-builder/internal/document"
	"github.com/goliatone/go-site-builder/internal/logging"
	"github.com/goliatone/go-site-builder/internal/normalizer"
	"github.com/goliatone/go-site-builder/internal/schema"
	"github.com/goliatone/go-site-builder/pkg/interfaces"
)

var (
	ErrRepositoryRequired = errors.New("documents: repository is required")
	ErrDocumentIDRequired = errors.New("documents: document id is required")
	ErrVersionConflict    = errors.New("documents: version conflict")
	ErrTypeChanged        = errors.New("documents: document type cannot change")
	ErrValidationFailed   = errors.New("documents: document has validation issues")
)

// VersionConflictError reports a commit based on a stale version.
type VersionConflictError struct {
	DocumentID string
	Expected   string
	Actual     string
}

func (e *VersionConflictError) Error() string {
	if e.Actual == "" {
		return fmt.Sprintf("documents: version conflict for %q: expected %q, document does not exist", e.DocumentID, e.Expected)
	}
	return fmt.Sprintf("documents: version conflict for %q: expected %q, stored %q", e.DocumentID, e.Expected, e.Actual)
}

func (e *VersionConflictError) Unwrap() error {
	return ErrVersionConflict
}

// ValidationError is returned by strict commits of documents that still carry issues.
type ValidationError struct {
	DocumentID string
	Issues     schema.ValidationErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("documents: %q has %d validation issue(s): %v", e.DocumentID, len(e.Issues), e.Issues)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// ValidationFailure marks the error as caused by document content.
func (e *ValidationError) ValidationFailure() bool {
	return true
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNow overrides the clock used to stamp records.
func WithNow(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithStrictValidation refuses commits that carry validation issues.
func WithStrictValidation(strict bool) ServiceOption {
	return func(s *Service) {
		s.strict = strict
	}
}

// Service persists normalised documents with optimistic versioning.
type Service struct {
	repo       Repository
	normalizer *normalizer.Normalizer
	logger     interfaces.Logger
	now        func() time.Time
	strict     bool

	mu sync.Mutex
}

// NewService constructs a document service.
func NewService(repo Repository, n *normalizer.Normalizer, opts ...ServiceOption) *Service {
	if n == nil {
		n = normalizer.New()
	}
	s := &Service{
		repo:       repo,
		normalizer: n,
		logger:     logging.NoOp(),
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Commit normalises doc and stores it. A non-empty doc.Version must match the stored version.
// The saved document carries the new version.
func (s *Service) Commit(ctx context.Context, doc document.Document) (*document.Document, error) {
	if s.repo == nil {
		return nil, ErrRepositoryRequired
	}
	result, err := s.normalizer.Normalize(doc)
	if err != nil {
		return nil, err
	}
	normalized := result.Document
	if normalized.ID == "" {
		return nil, ErrDocumentIDRequired
	}
	logger := logging.WithDocumentContext(logging.FromContext(ctx, s.logger), normalized.ID, string(normalized.Type), "commit")
	if s.strict && len(result.Issues) > 0 {
		logger.Warn("documents.commit.invalid", "issues", len(result.Issues))
		return nil, &ValidationError{DocumentID: normalized.ID, Issues: result.Issues}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expected := strings.TrimSpace(doc.Version)
	existing, err := s.repo.GetByDocumentID(ctx, normalized.ID)
	switch {
	case errors.Is(err, ErrNotFound):
		if expected != "" {
			return nil, &VersionConflictError{DocumentID: normalized.ID, Expected: expected}
		}
		return s.create(ctx, logger, normalized)
	case err != nil:
		return nil, err
	}

	current := Version(existing.Revision)
	if expected != "" && expected != current {
		logger.Warn("documents.commit.conflict", "expected", expected, "stored", current)
		return nil, &VersionConflictError{DocumentID: normalized.ID, Expected: expected, Actual: current}
	}
	if existing.Type != string(normalized.Type) {
		return nil, fmt.Errorf("%w: %s is a %s", ErrTypeChanged, normalized.ID, existing.Type)
	}

	existing.Revision++
	normalized.Version = Version(existing.Revision)
	existing.Title = normalized.Title
	existing.Payload = normalized
	existing.UpdatedAt = s.now().UTC()
	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		logger.Error("documents.commit.failed", "error", err)
		return nil, err
	}
	logger.Info("documents.commit", "version", normalized.Version, "blocks", len(normalized.Blocks))
	saved := updated.Document()
	return &saved, nil
}

func (s *Service) create(ctx context.Context, logger interfaces.Logger, doc document.Document) (*document.Document, error) {
	now := s.now().UTC()
	doc.Version = Version(1)
	record := &Record{
		ID:         RecordID(doc.ID),
		DocumentID: doc.ID,
		Type:       string(doc.Type),
		Title:      doc.Title,
		Revision:   1,
		Payload:    doc,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		logger.Error("documents.commit.failed", "error", err)
		return nil, err
	}
	logger.Info("documents.commit", "version", doc.Version, "blocks", len(doc.Blocks), "created", true)
	saved := created.Document()
	return &saved, nil
}

// Get returns the stored document.
func (s *Service) Get(ctx context.Context, documentID string) (*document.Document, error) {
	if s.repo == nil {
		return nil, ErrRepositoryRequired
	}
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return nil, ErrDocumentIDRequired
	}
	record, err := s.repo.GetByDocumentID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	doc := record.Document()
	return &doc, nil
}

// List returns stored documents ordered by id, filtered by docType when it is not empty.
func (s *Service) List(ctx context.Context, docType document.Type) ([]document.Document, error) {
	if s.repo == nil {
		return nil, ErrRepositoryRequired
	}
	records, err := s.repo.List(ctx, docType)
	if err != nil {
		return nil, err
	}
	out := make([]document.Document, 0, len(records))
	for _, record := range records {
		out = append(out, record.Document())
	}
	return out, nil
}

// Delete removes a stored document.
func (s *Service) Delete(ctx context.Context, documentID string) error {
	if s.repo == nil {
		return ErrRepositoryRequired
	}
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return ErrDocumentIDRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Delete(ctx, documentID); err != nil {
		return err
	}
	logging.WithDocumentContext(logging.FromContext(ctx, s.logger), documentID, "", "delete").Info("documents.delete")
	return nil
}
