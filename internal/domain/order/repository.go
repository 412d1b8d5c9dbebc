package order

import (
	"context"
)

// Repository 订单仓储接口(依赖倒置原则)
// 教学要点:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 支持事务操作(通过context传递事务)
// 3. 订单只增不改,没有Update/Delete
type Repository interface {
	// Create 创建订单,必须与库存扣减在同一事务中调用
	Create(ctx context.Context, order *Order) error

	// FindByID 根据ID查找订单
	FindByID(ctx context.Context, id uint) (*Order, error)

	// ListByUserID 查询用户的订单列表,按创建时间倒序
	ListByUserID(ctx context.Context, userID uint, offset, limit int) ([]*Order, int64, error)
}
