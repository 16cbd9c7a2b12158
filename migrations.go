package sitebuilder

import (
	"embed"
)

//go:embed data/sql/migrations/*.sql
var migrationsFS embed.FS

// GetMigrationsFS returns the embedded SQL migrations for the document store.
func GetMigrationsFS() embed.FS {
	return migrationsFS
}
