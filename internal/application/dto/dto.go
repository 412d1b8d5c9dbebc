// Package dto 应用层输出DTO（投影）
//
// 领域实体 → 对外契约的映射集中在这里，所有用例共用同一组投影：
//   - 作者：基础投影 / 带图书列表的投影（图书不再嵌套作者，避免循环）
//   - 图书：列表项（只有author_id）/ 详情（嵌套作者）
//   - 订单：只引用user_id与book_id
//
// 日期序列化为YYYY-MM-DD，时间戳为RFC 3339。
package dto

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/xiebiao/bookshop/internal/domain/author"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/user"
)

// AuthorResponse 作者基础投影
type AuthorResponse struct {
	ID        uint       `json:"id"`
	Name      string     `json:"name"`
	BirthDate civil.Date `json:"birth_date" swaggertype:"string" format:"date" example:"1881-09-25"`
}

// AuthorWithBooksResponse 作者及其图书
type AuthorWithBooksResponse struct {
	AuthorResponse
	Books []BookListItem `json:"books"`
}

// BookListItem 图书列表投影（不含嵌套作者）
type BookListItem struct {
	ID            uint   `json:"id"`
	Title         string `json:"title"`
	Price         int64  `json:"price"` // 分
	StockQuantity int    `json:"stock_quantity"`
	Pages         int    `json:"pages"`
	Genre         string `json:"genre"`
	AuthorID      uint   `json:"author_id"`
}

// BookResponse 图书详情投影（嵌套作者）
type BookResponse struct {
	BookListItem
	Author AuthorResponse `json:"author"`
}

// UserResponse 用户投影，不包含密码
type UserResponse struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         user.Role `json:"role" swaggertype:"string" enums:"user,admin"`
	CreationDate time.Time `json:"creation_date"`
}

// OrderResponse 订单投影
type OrderResponse struct {
	ID           uint      `json:"id"`
	UserID       uint      `json:"user_id"`
	BookID       uint      `json:"book_id"`
	Quantity     int       `json:"quantity"`
	TotalPrice   int64     `json:"total_price"` // 分
	CreationDate time.Time `json:"creation_date"`
}

// TokenResponse 登录结果
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"` // 秒
}

// Page 分页结果
// Total是全部匹配记录数，与分页窗口无关；len(Items) <= Limit
type Page[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// NewPage 构造分页结果，Items为nil时输出空数组
func NewPage[T any](items []T, total int64, limit, offset int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Limit: limit, Offset: offset}
}

// FromAuthor 作者 → 基础投影
func FromAuthor(a *author.Author) AuthorResponse {
	return AuthorResponse{
		ID:        a.ID,
		Name:      a.Name,
		BirthDate: a.BirthDate,
	}
}

// FromAuthorWithBooks 作者+图书 → 带图书列表的投影
func FromAuthorWithBooks(a *author.Author, books []*book.Book) AuthorWithBooksResponse {
	items := make([]BookListItem, len(books))
	for i, b := range books {
		items[i] = FromBookListItem(b)
	}
	return AuthorWithBooksResponse{
		AuthorResponse: FromAuthor(a),
		Books:          items,
	}
}

// FromBookListItem 图书 → 列表投影
func FromBookListItem(b *book.Book) BookListItem {
	return BookListItem{
		ID:            b.ID,
		Title:         b.Title,
		Price:         b.Price,
		StockQuantity: b.StockQuantity,
		Pages:         b.Pages,
		Genre:         b.Genre,
		AuthorID:      b.AuthorID,
	}
}

// FromBook 图书+作者 → 详情投影
func FromBook(b *book.Book, a *author.Author) BookResponse {
	return BookResponse{
		BookListItem: FromBookListItem(b),
		Author:       FromAuthor(a),
	}
}

// FromUser 用户 → 投影
func FromUser(u *user.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Role:         u.Role,
		CreationDate: u.CreationDate,
	}
}

// FromOrder 订单 → 投影
func FromOrder(o *order.Order) OrderResponse {
	return OrderResponse{
		ID:           o.ID,
		UserID:       o.UserID,
		BookID:       o.BookID,
		Quantity:     o.Quantity,
		TotalPrice:   o.TotalPrice,
		CreationDate: o.CreationDate,
	}
}
