package mysql

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// MySQL错误码
const (
	errDuplicateEntry  = 1062 // Duplicate entry 'xxx' for key 'yyy'
	errNoReferencedRow = 1452 // Cannot add or update a child row: a foreign key constraint fails
)

// isDuplicateError 判断是否为唯一索引冲突
// 兼容MySQL（1062）与测试使用的SQLite（UNIQUE constraint failed）
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == errDuplicateEntry
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}

// isForeignKeyError 判断是否为外键约束失败
func isForeignKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == errNoReferencedRow
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// duplicateKey 提取冲突的索引（或列）名称
//   - MySQL:  Duplicate entry 'bob' for key 'users.uk_users_username'
//   - SQLite: UNIQUE constraint failed: users.username
//
// 只看索引名部分，避免被冲突的值本身误导
func duplicateKey(err error) string {
	msg := err.Error()
	for _, sep := range []string{"for key ", "constraint failed: "} {
		if i := strings.LastIndex(msg, sep); i >= 0 {
			return strings.Trim(msg[i+len(sep):], "'` ")
		}
	}
	return msg
}

// txKey 事务DB在context中的key
type txKey struct{}

// getDB 从context获取事务DB,如果没有则使用默认DB
func getDB(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// dateColumn 日历日期列（DATE）
// 以"YYYY-MM-DD"写入，避免time.Time在连接时区与本地时区不一致时跨日
type dateColumn civil.Date

// GormDataType 列类型
func (dateColumn) GormDataType() string {
	return "date"
}

// Value 实现driver.Valuer
func (d dateColumn) Value() (driver.Value, error) {
	return civil.Date(d).String(), nil
}

// Scan 实现sql.Scanner
func (d *dateColumn) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = dateColumn(civil.DateOf(v))
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into date", src)
	}
}

func (d *dateColumn) parse(s string) error {
	if len(s) > 10 {
		s = s[:10]
	}
	parsed, err := civil.ParseDate(s)
	if err != nil {
		return err
	}
	*d = dateColumn(parsed)
	return nil
}
