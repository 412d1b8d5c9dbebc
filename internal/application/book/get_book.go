package book

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/application/dto"
	"github.com/xiebiao/bookshop/internal/domain/author"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/pkg/logger"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/tracing"
)

// GetBookUseCase 查询图书详情(嵌套作者)
// 缓存故障时降级为直接查库,不让读请求失败
type GetBookUseCase struct {
	bookService   book.Service
	authorService author.Service
	cache         DetailCache // 可为nil
}

// NewGetBookUseCase 创建用例实例
func NewGetBookUseCase(bookService book.Service, authorService author.Service, cache DetailCache) *GetBookUseCase {
	return &GetBookUseCase{
		bookService:   bookService,
		authorService: authorService,
		cache:         cache,
	}
}

// Execute 执行查询
func (uc *GetBookUseCase) Execute(ctx context.Context, id uint) (*dto.BookResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "GetBook")
	defer span.End()
	span.SetAttributes(attribute.Int64("book.id", int64(id)))

	if b, a := uc.fromCache(ctx, id); b != nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		resp := dto.FromBook(b, a)
		return &resp, nil
	}

	// 读库前取版本号，读库期间缓存被删除则放弃回填
	version, cacheable := uc.cacheVersion(ctx, id)

	b, err := uc.bookService.GetBook(ctx, id)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	a, err := uc.authorService.GetAuthor(ctx, b.AuthorID)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	if cacheable {
		if _, err := uc.cache.Set(ctx, b, a, version); err != nil {
			logger.Get(ctx).Warn("写入图书缓存失败", zap.Uint("book_id", id), zap.Error(err))
		}
	}

	resp := dto.FromBook(b, a)
	return &resp, nil
}

func (uc *GetBookUseCase) cacheVersion(ctx context.Context, id uint) (int64, bool) {
	if uc.cache == nil {
		return 0, false
	}
	version, err := uc.cache.Version(ctx, id)
	if err != nil {
		logger.Get(ctx).Warn("读取图书缓存版本失败", zap.Uint("book_id", id), zap.Error(err))
		return 0, false
	}
	return version, true
}

func (uc *GetBookUseCase) fromCache(ctx context.Context, id uint) (*book.Book, *author.Author) {
	if uc.cache == nil {
		return nil, nil
	}
	b, a, err := uc.cache.Get(ctx, id)
	switch {
	case err != nil:
		metrics.IncCounterVec(metrics.BookCacheRequestsTotal, map[string]string{"result": "error"})
		logger.Get(ctx).Warn("读取图书缓存失败", zap.Uint("book_id", id), zap.Error(err))
		return nil, nil
	case b == nil || a == nil:
		metrics.IncCounterVec(metrics.BookCacheRequestsTotal, map[string]string{"result": "miss"})
		return nil, nil
	default:
		metrics.IncCounterVec(metrics.BookCacheRequestsTotal, map[string]string{"result": "hit"})
		return b, a
	}
}
