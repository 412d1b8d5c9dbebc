// Package mysqltest 为仓储与用例测试提供已迁移的内存数据库
//
// 使用纯Go的SQLite（无需cgo与MySQL实例），单连接保证事务串行执行，
// 外键约束通过pragma开启。SQLite不支持SELECT ... FOR UPDATE，GORM会忽略该子句。
package mysqltest

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/mysql"
)

var seq atomic.Int64

// NewDB 创建独立的内存数据库并执行迁移
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:bookstore_test_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", seq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取SQL DB失败: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := mysql.AutoMigrate(db); err != nil {
		t.Fatalf("迁移测试数据库失败: %v", err)
	}
	return db
}
