package dto

import (
	apporder "github.com/xiebiao/bookshop/internal/application/order"
)

// OrderCreate 下单
// user_id来自登录会话，不接受客户端传入
type OrderCreate struct {
	BookID   *uint `json:"book_id" validate:"required,gt=0" example:"1"`
	Quantity *int  `json:"quantity" validate:"required,gt=0" example:"3"`
}

// ToRequest 转换为应用层请求
func (r *OrderCreate) ToRequest(userID uint) apporder.CreateOrderRequest {
	return apporder.CreateOrderRequest{
		UserID:   userID,
		BookID:   *r.BookID,
		Quantity: *r.Quantity,
	}
}
