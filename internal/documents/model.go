package documents

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-site-builder/internal/document"
	"github.com/goliatone/go-site-builder/internal/identity"
)

// Record is the stored form of a committed document.
type Record struct {
	bun.BaseModel `bun:"table:structured_documents,alias:sd"`

	ID         uuid.UUID         `bun:",pk,type:uuid" json:"id"`
	DocumentID string            `bun:"document_id,notnull,unique" json:"document_id"`
	Type       string            `bun:"type,notnull" json:"type"`
	Title      string            `bun:"title" json:"title,omitempty"`
	Revision   int               `bun:"revision,notnull,default:1" json:"revision"`
	Payload    document.Document `bun:"payload,type:jsonb" json:"payload"`
	CreatedAt  time.Time         `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time         `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// RecordID returns the primary key derived from a document id.
func RecordID(documentID string) uuid.UUID {
	return identity.DocumentUUID(documentID)
}

// Version renders a revision as the opaque document version.
func Version(revision int) string {
	return strconv.Itoa(revision)
}

// Document returns a copy of the stored document stamped with the record version.
func (r *Record) Document() document.Document {
	doc := r.Payload.Clone()
	doc.ID = r.DocumentID
	doc.Version = Version(r.Revision)
	return doc
}

func cloneRecord(r *Record) *Record {
	if r == nil {
		return nil
	}
	out := *r
	out.Payload = r.Payload.Clone()
	return &out
}
