// Package dbtest 为仓储与服务测试提供迁移好的内存 SQLite。
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/repository/postgres"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open 每个测试独立的命名内存库，测试结束自动关闭
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), postgres.GormConfig("silent", nil))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := postgres.AutoMigrateModels(db, model.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
