// Package dbtest opens isolated in-memory SQLite databases carrying the
// storefront schema for repository tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/goldjewelmy/goldstore-backend/pkg/db/schema"
)

// Open returns a fresh database with every storefront table created.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	for _, table := range schema.SQLite.Tables {
		if err := conn.Exec(table.DDL).Error; err != nil {
			t.Fatalf("create %s: %v", table.Name, err)
		}
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}
