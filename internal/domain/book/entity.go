package book

import (
	"time"
	"unicode/utf8"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// 字段长度上限
const (
	TitleMaxLen = 255
	GenreMaxLen = 255
)

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 2. Title作为业务唯一标识(数据库层保证唯一性)
// 3. AuthorID只保存外键,不持有Author对象,需要作者信息时显式查询
type Book struct {
	ID            uint
	Title         string // 书名
	Price         int64  // 价格(单位:分)
	StockQuantity int    // 库存数量
	Pages         int    // 页数
	Genre         string // 类型
	AuthorID      uint   // 作者ID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewBook 创建新图书(工厂方法)
// 所有字段一次性校验,返回的校验错误包含全部违规字段
func NewBook(title string, price int64, stockQuantity, pages int, genre string, authorID uint) (*Book, error) {
	var fields []apperrors.FieldError
	fields = append(fields, checkTitle(title)...)
	fields = append(fields, checkPrice(price)...)
	fields = append(fields, checkStock(stockQuantity)...)
	fields = append(fields, checkPages(pages)...)
	fields = append(fields, checkGenre(genre)...)
	if authorID == 0 {
		fields = append(fields, apperrors.FieldError{Field: "author_id", Reason: "必须大于0"})
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation(fields...)
	}

	now := time.Now()
	return &Book{
		Title:         title,
		Price:         price,
		StockQuantity: stockQuantity,
		Pages:         pages,
		Genre:         genre,
		AuthorID:      authorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Patch 部分更新
// nil表示不修改;ID与AuthorID不可修改
type Patch struct {
	Title         *string
	Price         *int64
	StockQuantity *int
	Pages         *int
	Genre         *string
}

// IsEmpty 没有任何字段需要修改
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Price == nil && p.StockQuantity == nil && p.Pages == nil && p.Genre == nil
}

// ApplyPatch 应用部分更新(领域行为)
// 只校验提供的字段;任一字段非法时实体保持不变
// 返回实际发生变化的列名(与数据库列一致),供仓储只更新这些列
func (b *Book) ApplyPatch(p Patch) ([]string, error) {
	var fields []apperrors.FieldError
	if p.Title != nil {
		fields = append(fields, checkTitle(*p.Title)...)
	}
	if p.Price != nil {
		fields = append(fields, checkPrice(*p.Price)...)
	}
	if p.StockQuantity != nil {
		fields = append(fields, checkStock(*p.StockQuantity)...)
	}
	if p.Pages != nil {
		fields = append(fields, checkPages(*p.Pages)...)
	}
	if p.Genre != nil {
		fields = append(fields, checkGenre(*p.Genre)...)
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation(fields...)
	}

	var changed []string
	if p.Title != nil && *p.Title != b.Title {
		b.Title = *p.Title
		changed = append(changed, "title")
	}
	if p.Price != nil && *p.Price != b.Price {
		b.Price = *p.Price
		changed = append(changed, "price")
	}
	if p.StockQuantity != nil && *p.StockQuantity != b.StockQuantity {
		b.StockQuantity = *p.StockQuantity
		changed = append(changed, "stock_quantity")
	}
	if p.Pages != nil && *p.Pages != b.Pages {
		b.Pages = *p.Pages
		changed = append(changed, "pages")
	}
	if p.Genre != nil && *p.Genre != b.Genre {
		b.Genre = *p.Genre
		changed = append(changed, "genre")
	}
	if len(changed) > 0 {
		b.UpdatedAt = time.Now()
	}
	return changed, nil
}

// DecrStock 扣减库存(用于订单创建)
// 业务规则:扣减后库存不能为负数
func (b *Book) DecrStock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if b.StockQuantity < quantity {
		return ErrInsufficientStock
	}
	b.StockQuantity -= quantity
	b.UpdatedAt = time.Now()
	return nil
}

func checkTitle(title string) []apperrors.FieldError {
	if n := utf8.RuneCountInString(title); n == 0 || n > TitleMaxLen {
		return []apperrors.FieldError{{Field: "title", Reason: "长度应为1-255个字符"}}
	}
	return nil
}

func checkGenre(genre string) []apperrors.FieldError {
	if n := utf8.RuneCountInString(genre); n == 0 || n > GenreMaxLen {
		return []apperrors.FieldError{{Field: "genre", Reason: "长度应为1-255个字符"}}
	}
	return nil
}

func checkPrice(price int64) []apperrors.FieldError {
	if price <= 0 {
		return []apperrors.FieldError{{Field: "price", Reason: "必须大于0"}}
	}
	return nil
}

func checkStock(stock int) []apperrors.FieldError {
	if stock < 0 {
		return []apperrors.FieldError{{Field: "stock_quantity", Reason: "不能为负数"}}
	}
	return nil
}

func checkPages(pages int) []apperrors.FieldError {
	if pages <= 0 {
		return []apperrors.FieldError{{Field: "pages", Reason: "必须大于0"}}
	}
	return nil
}
