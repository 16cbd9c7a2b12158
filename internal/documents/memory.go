package documents

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-site-builder/internal/document"
)

// MemoryRepository keeps records in process. It is safe for concurrent use.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryRepository constructs an empty memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]*Record)}
}

func (r *MemoryRepository) Create(_ context.Context, record *Record) (*Record, error) {
	if record == nil {
		return nil, nil
	}
	cloned := cloneRecord(record)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[cloned.DocumentID] = cloned
	return cloneRecord(cloned), nil
}

func (r *MemoryRepository) Update(_ context.Context, record *Record) (*Record, error) {
	if record == nil {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[record.DocumentID]; !ok {
		return nil, &NotFoundError{Key: record.DocumentID}
	}
	cloned := cloneRecord(record)
	r.records[cloned.DocumentID] = cloned
	return cloneRecord(cloned), nil
}

func (r *MemoryRepository) GetByDocumentID(_ context.Context, documentID string) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[documentID]
	if !ok {
		return nil, &NotFoundError{Key: documentID}
	}
	return cloneRecord(record), nil
}

func (r *MemoryRepository) List(_ context.Context, docType document.Type) ([]*Record, error) {
	docType = document.Type(strings.TrimSpace(string(docType)))

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Record, 0, len(r.records))
	for _, record := range r.records {
		if docType != "" && record.Type != string(docType) {
			continue
		}
		out = append(out, cloneRecord(record))
	}
	slices.SortFunc(out, func(a, b *Record) int {
		return strings.Compare(a.DocumentID, b.DocumentID)
	})
	return out, nil
}

func (r *MemoryRepository) Delete(_ context.Context, documentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[documentID]; !ok {
		return &NotFoundError{Key: documentID}
	}
	delete(r.records, documentID)
	return nil
}
