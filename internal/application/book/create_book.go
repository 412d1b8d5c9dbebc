package book

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookshop/internal/application/dto"
	"github.com/xiebiao/bookshop/internal/domain/author"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/tracing"
)

// CreateBookUseCase 创建图书用例
// 设计说明:
// 1. 作者存在性检查与写入在同一事务内完成
// 2. 书名唯一性由唯一索引判定,冲突时返回ErrTitleDuplicate
// 3. 数值边界由领域工厂再次校验
type CreateBookUseCase struct {
	bookService book.Service
	authorRepo  author.Repository
	txManager   *mysql.TxManager
}

// NewCreateBookUseCase 创建用例实例
func NewCreateBookUseCase(
	bookService book.Service,
	authorRepo author.Repository,
	txManager *mysql.TxManager,
) *CreateBookUseCase {
	return &CreateBookUseCase{
		bookService: bookService,
		authorRepo:  authorRepo,
		txManager:   txManager,
	}
}

// CreateBookRequest 创建图书请求(已通过校验层)
type CreateBookRequest struct {
	Title         string
	Price         int64 // 分
	StockQuantity int
	Pages         int
	Genre         string
	AuthorID      uint
}

// Execute 执行创建
func (uc *CreateBookUseCase) Execute(ctx context.Context, req CreateBookRequest) (*dto.BookResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CreateBook")
	defer span.End()
	span.SetAttributes(attribute.Int64("author.id", int64(req.AuthorID)))

	var (
		created *book.Book
		owner   *author.Author
	)
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		a, err := uc.authorRepo.FindByID(txCtx, req.AuthorID)
		if err != nil {
			return err
		}

		b, err := uc.bookService.CreateBook(txCtx, req.Title, req.Price, req.StockQuantity, req.Pages, req.Genre, a.ID)
		if err != nil {
			return err
		}

		created, owner = b, a
		return nil
	})
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("book.id", int64(created.ID)))
	metrics.IncCounter(metrics.BooksCreatedTotal)

	resp := dto.FromBook(created, owner)
	return &resp, nil
}
