package order

import (
	"context"

	"github.com/xiebiao/bookshop/internal/application/dto"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/user"
)

// GetOrderUseCase 查询订单详情
// 只有下单用户本人或管理员可以查看
type GetOrderUseCase struct {
	orderRepo order.Repository
}

// NewGetOrderUseCase 创建用例实例
func NewGetOrderUseCase(orderRepo order.Repository) *GetOrderUseCase {
	return &GetOrderUseCase{orderRepo: orderRepo}
}

// GetOrderRequest 查询请求,调用方身份来自JWT
type GetOrderRequest struct {
	OrderID    uint
	CallerID   uint
	CallerRole user.Role
}

// Execute 执行查询
func (uc *GetOrderUseCase) Execute(ctx context.Context, req GetOrderRequest) (*dto.OrderResponse, error) {
	o, err := uc.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	if !o.IsOwnedBy(req.CallerID) && !req.CallerRole.IsAdmin() {
		return nil, order.ErrForbidden
	}

	resp := dto.FromOrder(o)
	return &resp, nil
}

// ListOrdersUseCase 查询当前用户的订单,最新的在前
type ListOrdersUseCase struct {
	orderRepo order.Repository
}

// NewListOrdersUseCase 创建用例实例
func NewListOrdersUseCase(orderRepo order.Repository) *ListOrdersUseCase {
	return &ListOrdersUseCase{orderRepo: orderRepo}
}

// ListOrdersRequest 分页查询请求
type ListOrdersRequest struct {
	UserID uint
	Limit  int
	Offset int
}

// Execute 执行查询
func (uc *ListOrdersUseCase) Execute(ctx context.Context, req ListOrdersRequest) (*dto.Page[dto.OrderResponse], error) {
	orders, total, err := uc.orderRepo.ListByUserID(ctx, req.UserID, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	items := make([]dto.OrderResponse, len(orders))
	for i, o := range orders {
		items[i] = dto.FromOrder(o)
	}

	page := dto.NewPage(items, total, req.Limit, req.Offset)
	return &page, nil
}
