package author

import (
	"context"
)

// Repository 作者仓储接口
// 名称唯一性由数据库UNIQUE索引保证，冲突时Create返回ErrNameDuplicate
type Repository interface {
	// Create 创建作者
	Create(ctx context.Context, author *Author) error

	// FindByID 根据ID查找作者，不存在返回ErrAuthorNotFound
	FindByID(ctx context.Context, id uint) (*Author, error)

	// FindByIDs 批量查询（用于图书列表装配作者信息），不存在的ID被忽略
	FindByIDs(ctx context.Context, ids []uint) (map[uint]*Author, error)

	// List 分页查询，按ID升序
	List(ctx context.Context, offset, limit int) ([]*Author, int64, error)
}
