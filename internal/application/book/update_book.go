package book

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/application/dto"
	"github.com/xiebiao/bookshop/internal/domain/author"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookshop/pkg/logger"
	"github.com/xiebiao/bookshop/pkg/tracing"
)

// UpdateBookUseCase 部分更新图书
// 锁定行 → 只应用提供的字段 → 只写变化的列,提交后删除详情缓存
type UpdateBookUseCase struct {
	bookService book.Service
	authorRepo  author.Repository
	txManager   *mysql.TxManager
	cache       DetailCache // 可为nil(未启用缓存)
}

// NewUpdateBookUseCase 创建用例实例
func NewUpdateBookUseCase(
	bookService book.Service,
	authorRepo author.Repository,
	txManager *mysql.TxManager,
	cache DetailCache,
) *UpdateBookUseCase {
	return &UpdateBookUseCase{
		bookService: bookService,
		authorRepo:  authorRepo,
		txManager:   txManager,
		cache:       cache,
	}
}

// UpdateBookRequest 更新请求
// Patch中为nil的字段保持不变;id与author_id不可修改
type UpdateBookRequest struct {
	ID    uint
	Patch book.Patch
}

// Execute 执行更新
func (uc *UpdateBookUseCase) Execute(ctx context.Context, req UpdateBookRequest) (*dto.BookResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "UpdateBook")
	defer span.End()
	span.SetAttributes(attribute.Int64("book.id", int64(req.ID)))

	var (
		updated *book.Book
		owner   *author.Author
	)
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		b, err := uc.bookService.UpdateBook(txCtx, req.ID, req.Patch)
		if err != nil {
			return err
		}

		a, err := uc.authorRepo.FindByID(txCtx, b.AuthorID)
		if err != nil {
			return err
		}

		updated, owner = b, a
		return nil
	})
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	// 缓存删除失败不影响更新结果,旧值最多保留到TTL过期
	if uc.cache != nil {
		if err := uc.cache.Delete(ctx, req.ID); err != nil {
			logger.Get(ctx).Warn("删除图书缓存失败", zap.Uint("book_id", req.ID), zap.Error(err))
		}
	}

	resp := dto.FromBook(updated, owner)
	return &resp, nil
}
