package documents

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-site-builder/internal/document"
)

// ErrNotFound is matched by NotFoundError.
var ErrNotFound = errors.New("documents: not found")

// Repository persists document records.
type Repository interface {
	Create(ctx context.Context, record *Record) (*Record, error)
	Update(ctx context.Context, record *Record) (*Record, error)
	GetByDocumentID(ctx context.Context, documentID string) (*Record, error)
	List(ctx context.Context, docType document.Type) ([]*Record, error)
	Delete(ctx context.Context, documentID string) error
}

// NotFoundError is returned when a document cannot be located.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return "document not found"
	}
	return fmt.Sprintf("document %q not found", e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}
