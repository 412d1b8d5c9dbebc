package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 需要事务的方法通过context获取事务DB(见TxManager)
type Repository interface {
	// Create 创建图书,书名冲突返回ErrTitleDuplicate
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindByAuthorID 查询作者的全部图书,按ID升序
	FindByAuthorID(ctx context.Context, authorID uint) ([]*Book, error)

	// Update 只更新columns中列出的列
	Update(ctx context.Context, book *Book, columns []string) error

	// List 分页查询图书列表,按ID升序
	List(ctx context.Context, offset, limit int) ([]*Book, int64, error)

	// LockByID 悲观锁查询图书
	// 使用SELECT FOR UPDATE锁定行,下单时读取的价格与库存在事务内保持一致
	LockByID(ctx context.Context, id uint) (*Book, error)

	// UpdateStock 更新库存(原子操作)
	// delta为正数表示增加,负数表示减少
	// 库存不足返回ErrInsufficientStock
	UpdateStock(ctx context.Context, id uint, delta int) error
}
