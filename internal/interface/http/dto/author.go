// Package dto HTTP层请求DTO
//
// 每个写操作一个输入形状，validate tag描述单字段规则，
// 需要跨字段规则的形状实现validator.Checker。
// 输出形状在internal/application/dto中定义。
package dto

import (
	"cloud.google.com/go/civil"

	appauthor "github.com/xiebiao/bookshop/internal/application/author"
)

// AuthorCreate 创建作者
type AuthorCreate struct {
	Name      string     `json:"name" validate:"required,min=1,max=50" example:"鲁迅"`
	BirthDate civil.Date `json:"birth_date" validate:"required,notfuture" swaggertype:"string" format:"date" example:"1881-09-25"`
}

// ToRequest 转换为应用层请求
func (r *AuthorCreate) ToRequest() appauthor.CreateAuthorRequest {
	return appauthor.CreateAuthorRequest{
		Name:      r.Name,
		BirthDate: r.BirthDate,
	}
}
