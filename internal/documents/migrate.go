package documents

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// Migrate creates the document table and its indexes when they do not exist.
func Migrate(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().Model((*Record)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("documents: create table: %w", err)
	}
	_, err := db.NewCreateIndex().
		Model((*Record)(nil)).
		Index("structured_documents_type_idx").
		Column("type").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("documents: create index: %w", err)
	}
	return nil
}
