package author

import (
	"time"
	"unicode/utf8"

	"cloud.google.com/go/civil"
)

// NameMaxLen 作者名最大长度（字符数）
const NameMaxLen = 50

// Author 作者实体（聚合根）
// DDD设计说明：
// 1. Author拥有多本Book，但实体中不保存Book列表
// 2. 作者与图书的关系通过book.AuthorID外键表达，遍历时显式查询
// 3. BirthDate是日历日期（无时区），使用civil.Date
type Author struct {
	ID        uint
	Name      string
	BirthDate civil.Date
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAuthor 创建作者（工厂方法）
// today由调用方提供，保证"出生日期不晚于今天"在创建时被再次确认
func NewAuthor(name string, birthDate, today civil.Date) (*Author, error) {
	if n := utf8.RuneCountInString(name); n == 0 || n > NameMaxLen {
		return nil, ErrInvalidName
	}
	if !birthDate.IsValid() {
		return nil, ErrInvalidBirthDate
	}
	if birthDate.After(today) {
		return nil, ErrBirthDateInFuture
	}

	now := time.Now()
	return &Author{
		Name:      name,
		BirthDate: birthDate,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
