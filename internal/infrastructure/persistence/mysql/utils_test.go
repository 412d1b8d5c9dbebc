package mysql

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIsDuplicateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"GORM翻译后的错误", gorm.ErrDuplicatedKey, true},
		{"MySQL 1062", &mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry 'a' for key 'users.uk_users_username'"}, true},
		{"MySQL其他错误", &mysqldriver.MySQLError{Number: 1452}, false},
		{"SQLite", errors.New("UNIQUE constraint failed: books.title"), true},
		{"包装后的错误", fmt.Errorf("insert: %w", &mysqldriver.MySQLError{Number: 1062}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isDuplicateError(tt.err))
		})
	}
}

func TestIsForeignKeyError(t *testing.T) {
	assert.True(t, isForeignKeyError(&mysqldriver.MySQLError{Number: 1452}))
	assert.True(t, isForeignKeyError(errors.New("FOREIGN KEY constraint failed")))
	assert.True(t, isForeignKeyError(gorm.ErrForeignKeyViolated))
	assert.False(t, isForeignKeyError(&mysqldriver.MySQLError{Number: 1062}))
	assert.False(t, isForeignKeyError(nil))
}

func TestDuplicateKey(t *testing.T) {
	t.Run("MySQL只取索引名", func(t *testing.T) {
		err := &mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry 'email@x.com' for key 'users.uk_users_username'"}
		assert.Equal(t, "users.uk_users_username", duplicateKey(err))
	})

	t.Run("SQLite取列名", func(t *testing.T) {
		assert.Equal(t, "users.email", duplicateKey(errors.New("UNIQUE constraint failed: users.email")))
	})
}

func TestDateColumn(t *testing.T) {
	want := civil.Date{Year: 1990, Month: time.February, Day: 28}

	t.Run("写入为日期字符串", func(t *testing.T) {
		v, err := dateColumn(want).Value()
		require.NoError(t, err)
		assert.Equal(t, "1990-02-28", v)
	})

	t.Run("从time.Time读取时保留日历日期", func(t *testing.T) {
		shanghai := time.FixedZone("CST", 8*3600)
		var d dateColumn
		require.NoError(t, d.Scan(time.Date(1990, 2, 28, 0, 0, 0, 0, shanghai)))
		assert.Equal(t, want, civil.Date(d))
	})

	t.Run("从字符串读取", func(t *testing.T) {
		var d dateColumn
		require.NoError(t, d.Scan([]byte("1990-02-28 00:00:00+00:00")))
		assert.Equal(t, want, civil.Date(d))
	})

	t.Run("不支持的类型", func(t *testing.T) {
		var d dateColumn
		assert.Error(t, d.Scan(42))
	})
}
