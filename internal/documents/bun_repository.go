package documents

import (
	"context"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-site-builder/internal/document"
)

// NewRecordRepository creates the generic bun repository for document records.
func NewRecordRepository(db *bun.DB) repository.Repository[*Record] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Record]{
		NewRecord:          func() *Record { return &Record{} },
		GetID:              func(record *Record) uuid.UUID { return record.ID },
		SetID:              func(record *Record, id uuid.UUID) { record.ID = id },
		GetIdentifier:      func() string { return "document_id" },
		GetIdentifierValue: func(record *Record) string { return record.DocumentID },
	})
}

// BunRecordRepository implements Repository on bun with optional caching.
type BunRecordRepository struct {
	repo repository.Repository[*Record]
}

// NewBunRecordRepository creates a record repository without caching.
func NewBunRecordRepository(db *bun.DB) *BunRecordRepository {
	return NewBunRecordRepositoryWithCache(db, nil, nil)
}

// NewBunRecordRepositoryWithCache creates a record repository whose reads go through the cache.
func NewBunRecordRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRecordRepository {
	base := NewRecordRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunRecordRepository{repo: base}
}

func (r *BunRecordRepository) Create(ctx context.Context, record *Record) (*Record, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, mapRepositoryError(err, record.DocumentID)
	}
	return created, nil
}

func (r *BunRecordRepository) Update(ctx context.Context, record *Record) (*Record, error) {
	updated, err := r.repo.Update(ctx, record)
	if err != nil {
		return nil, mapRepositoryError(err, record.DocumentID)
	}
	return updated, nil
}

func (r *BunRecordRepository) GetByDocumentID(ctx context.Context, documentID string) (*Record, error) {
	record, err := r.repo.GetByID(ctx, RecordID(documentID).String())
	if err != nil {
		return nil, mapRepositoryError(err, documentID)
	}
	return record, nil
}

func (r *BunRecordRepository) List(ctx context.Context, docType document.Type) ([]*Record, error) {
	ordered := repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.document_id ASC")
	})
	var (
		records []*Record
		err     error
	)
	if docType = document.Type(strings.TrimSpace(string(docType))); docType == "" {
		records, _, err = r.repo.List(ctx, ordered)
	} else {
		records, _, err = r.repo.List(ctx, ordered, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.type = ?", string(docType))
		}))
	}
	if err != nil {
		return nil, mapRepositoryError(err, string(docType))
	}
	return records, nil
}

func (r *BunRecordRepository) Delete(ctx context.Context, documentID string) error {
	record, err := r.GetByDocumentID(ctx, documentID)
	if err != nil {
		return err
	}
	if err := r.repo.Delete(ctx, record); err != nil {
		return mapRepositoryError(err, documentID)
	}
	return nil
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Key: key}
	}
	return fmt.Errorf("documents repository error: %w", err)
}
