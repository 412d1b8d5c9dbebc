package author

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
)

// Service 作者领域服务
type Service interface {
	// CreateAuthor 创建作者
	// 业务规则：
	// - 名称1-50个字符
	// - 出生日期不晚于今天
	// - 名称唯一（由仓储在写入时判定）
	CreateAuthor(ctx context.Context, name string, birthDate civil.Date) (*Author, error)

	// GetAuthor 根据ID获取作者
	GetAuthor(ctx context.Context, id uint) (*Author, error)

	// ListAuthors 分页查询作者
	ListAuthors(ctx context.Context, offset, limit int) ([]*Author, int64, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// ServiceOption 领域服务选项
type ServiceOption func(*service)

// WithClock 指定时钟（测试用）
func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		s.now = now
	}
}

// NewService 创建作者领域服务
func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAuthor 创建作者
func (s *service) CreateAuthor(ctx context.Context, name string, birthDate civil.Date) (*Author, error) {
	a, err := NewAuthor(name, birthDate, civil.DateOf(s.now()))
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// GetAuthor 根据ID获取作者
func (s *service) GetAuthor(ctx context.Context, id uint) (*Author, error) {
	return s.repo.FindByID(ctx, id)
}

// ListAuthors 分页查询作者
func (s *service) ListAuthors(ctx context.Context, offset, limit int) ([]*Author, int64, error) {
	return s.repo.List(ctx, offset, limit)
}
