// Package dbtest opens migrated SQLite databases for tests.
package dbtest

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bluemoon/internal/database"
)

// Open returns a database private to the running test. The pool is limited
// to one connection so transactions serialize the way row locks do on a
// server database.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:bluemoon_test_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), database.Config(logger.Silent))
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	return db
}

// OpenPool opens a file database through database.Connect with a pool of
// conns connections, so transactions really run side by side.
func OpenPool(t *testing.T, conns int) *gorm.DB {
	t.Helper()

	db, err := database.Connect(database.Options{
		DSN:          filepath.Join(t.TempDir(), "bluemoon.db"),
		MaxOpenConns: conns,
		MaxIdleConns: conns,
		LogLevel:     logger.Silent,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open sqlite file db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	return db
}

// Create inserts each value or fails the test.
func Create(t *testing.T, db *gorm.DB, values ...any) {
	t.Helper()
	for _, v := range values {
		if err := db.Create(v).Error; err != nil {
			t.Fatalf("failed to create %T: %v", v, err)
		}
	}
}

func Int64(v int64) *int64 { return &v }

func String(v string) *string { return &v }

func Float(v float64) *float64 { return &v }
