package dto

import (
	appbook "github.com/xiebiao/bookshop/internal/application/book"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/pkg/validator"
)

// BookCreate 创建图书
// 必填数值使用指针，区分"未提供"与"提供了0"
type BookCreate struct {
	Title         string `json:"title" validate:"required,max=255" example:"呐喊"`
	Price         *int64 `json:"price" validate:"required,gt=0" example:"1500"` // 分
	StockQuantity *int   `json:"stock_quantity" validate:"omitempty,gte=0" example:"10"`
	Pages         *int   `json:"pages" validate:"required,gt=0" example:"200"`
	Genre         string `json:"genre" validate:"required,max=255" example:"小说"`
	AuthorID      *uint  `json:"author_id" validate:"required,gt=0" example:"1"`
}

// ToRequest 转换为应用层请求，库存默认为0
func (r *BookCreate) ToRequest() appbook.CreateBookRequest {
	req := appbook.CreateBookRequest{
		Title:    r.Title,
		Price:    *r.Price,
		Pages:    *r.Pages,
		Genre:    r.Genre,
		AuthorID: *r.AuthorID,
	}
	if r.StockQuantity != nil {
		req.StockQuantity = *r.StockQuantity
	}
	return req
}

// BookUpdate 部分更新图书
// 未出现或显式null的字段保持不变；出现的值按与创建相同的规则校验
// id与author_id不可修改，请求中出现时被忽略
type BookUpdate struct {
	Title         validator.Optional[string] `json:"title" validate:"omitnil,min=1,max=255" swaggertype:"string" example:"呐喊"`
	Price         validator.Optional[int64]  `json:"price" validate:"omitnil,gt=0" swaggertype:"integer" example:"1800"`
	StockQuantity validator.Optional[int]    `json:"stock_quantity" validate:"omitnil,gte=0" swaggertype:"integer" example:"5"`
	Pages         validator.Optional[int]    `json:"pages" validate:"omitnil,gt=0" swaggertype:"integer" example:"220"`
	Genre         validator.Optional[string] `json:"genre" validate:"omitnil,min=1,max=255" swaggertype:"string" example:"小说"`
}

// ToPatch 转换为领域补丁
func (r *BookUpdate) ToPatch() book.Patch {
	return book.Patch{
		Title:         optionalPtr(r.Title),
		Price:         optionalPtr(r.Price),
		StockQuantity: optionalPtr(r.StockQuantity),
		Pages:         optionalPtr(r.Pages),
		Genre:         optionalPtr(r.Genre),
	}
}

func optionalPtr[T any](o validator.Optional[T]) *T {
	v, ok := o.Get()
	if !ok {
		return nil
	}
	return &v
}
