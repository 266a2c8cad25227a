package db

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/steve0joo/storymind/internal/types"
)

// NewTestDB opens an in-memory SQLite database migrated with the same
// models as production Postgres, for repo tests that want a real *gorm.DB
// instead of a mock.
func NewTestDB() (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := gdb.AutoMigrate(
		&types.SourceDocument{},
		&types.CanonicalCharacter{},
		&types.GeneratedImage{},
	); err != nil {
		return nil, err
	}
	return gdb, nil
}
