package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookshop/internal/domain/order"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// orderRepository 订单仓储实现(MySQL)
// 教学要点:
// 1. 实现domain层定义的Repository接口
// 2. 必须在事务中调用(通过getDB从context获取事务DB)
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// Create 创建订单
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	model := &OrderModel{
		UserID:       o.UserID,
		BookID:       o.BookID,
		Quantity:     o.Quantity,
		TotalPrice:   o.TotalPrice,
		CreationDate: o.CreationDate,
	}

	if err := getDB(ctx, r.db).Omit(clause.Associations).Create(model).Error; err != nil {
		// 用户、图书已在同一事务内确认存在,外键失败说明数据被并发删除
		return apperrors.Wrap(err, "创建订单失败")
	}

	o.ID = model.ID
	return nil
}

// FindByID 根据ID查找订单
func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	var model OrderModel
	if err := getDB(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}
	return toOrderEntity(&model), nil
}

// ListByUserID 查询用户的订单列表,按下单时间倒序
func (r *orderRepository) ListByUserID(ctx context.Context, userID uint, offset, limit int) ([]*order.Order, int64, error) {
	db := getDB(ctx, r.db)

	var total int64
	if err := db.Model(&OrderModel{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单总数失败")
	}

	var models []OrderModel
	err := db.Where("user_id = ?", userID).
		Order("creation_date DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, len(models))
	for i := range models {
		orders[i] = toOrderEntity(&models[i])
	}
	return orders, total, nil
}

// toOrderEntity GORM模型 → 领域实体
func toOrderEntity(model *OrderModel) *order.Order {
	return &order.Order{
		ID:           model.ID,
		UserID:       model.UserID,
		BookID:       model.BookID,
		Quantity:     model.Quantity,
		TotalPrice:   model.TotalPrice,
		CreationDate: model.CreationDate,
	}
}
