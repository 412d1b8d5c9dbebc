package book

import (
	"context"
)

// Service 图书领域服务接口
// 设计说明:
// 1. 领域服务封装图书的业务规则校验与持久化
// 2. 作者是否存在属于跨聚合检查,由应用层在同一事务内完成
type Service interface {
	// CreateBook 创建图书
	// 业务规则:
	// - 书名、类型1-255个字符
	// - 价格>0,页数>0,库存>=0
	// - 书名不能重复(由仓储判定)
	CreateBook(ctx context.Context, title string, price int64, stockQuantity, pages int, genre string, authorID uint) (*Book, error)

	// UpdateBook 部分更新图书
	// 必须在事务中调用:先锁定行再应用修改
	UpdateBook(ctx context.Context, id uint, patch Patch) (*Book, error)

	// GetBook 根据ID获取图书
	GetBook(ctx context.Context, id uint) (*Book, error)

	// ListBooks 分页查询图书列表
	ListBooks(ctx context.Context, offset, limit int) ([]*Book, int64, error)

	// ListByAuthor 查询作者的全部图书
	ListByAuthor(ctx context.Context, authorID uint) ([]*Book, error)
}

// service 领域服务实现
type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// CreateBook 创建图书
func (s *service) CreateBook(ctx context.Context, title string, price int64, stockQuantity, pages int, genre string, authorID uint) (*Book, error) {
	b, err := NewBook(title, price, stockQuantity, pages, genre, authorID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBook 部分更新图书
func (s *service) UpdateBook(ctx context.Context, id uint, patch Patch) (*Book, error) {
	// 1. 锁定图书,防止并发修改交错
	b, err := s.repo.LockByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 2. 只应用提供的字段
	changed, err := b.ApplyPatch(patch)
	if err != nil {
		return nil, err
	}

	// 3. 没有变化时不写库
	if len(changed) == 0 {
		return b, nil
	}
	if err := s.repo.Update(ctx, b, changed); err != nil {
		return nil, err
	}
	return b, nil
}

// GetBook 根据ID获取图书
func (s *service) GetBook(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// ListBooks 分页查询图书列表
func (s *service) ListBooks(ctx context.Context, offset, limit int) ([]*Book, int64, error) {
	return s.repo.List(ctx, offset, limit)
}

// ListByAuthor 查询作者的全部图书
func (s *service) ListByAuthor(ctx context.Context, authorID uint) ([]*Book, error) {
	return s.repo.FindByAuthorID(ctx, authorID)
}
