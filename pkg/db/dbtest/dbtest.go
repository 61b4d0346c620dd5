// Package dbtest opens isolated in-memory SQLite databases with the full
// register schema for repository and service tests.
package dbtest

import (
	"testing"

	"github.com/gang93/pos-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open returns a fresh database per call. Each one is named so concurrent
// tests in the same process never share tables.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:pos_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	// one connection: shared-cache sqlite raises SQLITE_LOCKED across connections
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

// Seed inserts the provided records, failing the test on error.
func Seed(t *testing.T, conn *gorm.DB, records ...any) {
	t.Helper()
	for _, record := range records {
		if err := conn.Create(record).Error; err != nil {
			t.Fatalf("seed %T: %v", record, err)
		}
	}
}
