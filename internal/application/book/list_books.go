package book

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookshop/internal/application/dto"
	"github.com/xiebiao/bookshop/internal/domain/author"
	"github.com/xiebiao/bookshop/internal/domain/book"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/tracing"
)

// ListBooksUseCase 分页查询图书列表
// 每一项嵌套作者信息,作者按本页涉及的ID批量查询,避免N+1
type ListBooksUseCase struct {
	bookService book.Service
	authorRepo  author.Repository
}

// NewListBooksUseCase 创建用例实例
func NewListBooksUseCase(bookService book.Service, authorRepo author.Repository) *ListBooksUseCase {
	return &ListBooksUseCase{
		bookService: bookService,
		authorRepo:  authorRepo,
	}
}

// ListBooksRequest 分页参数
type ListBooksRequest struct {
	Limit  int
	Offset int
}

// Execute 执行查询
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (*dto.Page[dto.BookResponse], error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "ListBooks")
	defer span.End()
	span.SetAttributes(attribute.Int("page.limit", req.Limit), attribute.Int("page.offset", req.Offset))

	books, total, err := uc.bookService.ListBooks(ctx, req.Offset, req.Limit)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	ids := make([]uint, 0, len(books))
	seen := make(map[uint]bool, len(books))
	for _, b := range books {
		if !seen[b.AuthorID] {
			seen[b.AuthorID] = true
			ids = append(ids, b.AuthorID)
		}
	}

	authors, err := uc.authorRepo.FindByIDs(ctx, ids)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	items := make([]dto.BookResponse, len(books))
	for i, b := range books {
		a, ok := authors[b.AuthorID]
		if !ok {
			// 外键保证作者存在
			err := apperrors.Wrap(fmt.Errorf("author %d of book %d not found", b.AuthorID, b.ID), "图书数据不一致")
			tracing.RecordError(span, err)
			return nil, err
		}
		items[i] = dto.FromBook(b, a)
	}

	page := dto.NewPage(items, total, req.Limit, req.Offset)
	return &page, nil
}
