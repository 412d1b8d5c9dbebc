package author

import (
	"context"

	"github.com/xiebiao/bookshop/internal/application/dto"
	"github.com/xiebiao/bookshop/internal/domain/author"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/pkg/tracing"
)

// GetAuthorUseCase 查询作者及其全部图书
// 作者实体不持有图书列表，通过author_id显式查询
type GetAuthorUseCase struct {
	authorService author.Service
	bookService   book.Service
}

// NewGetAuthorUseCase 创建用例实例
func NewGetAuthorUseCase(authorService author.Service, bookService book.Service) *GetAuthorUseCase {
	return &GetAuthorUseCase{
		authorService: authorService,
		bookService:   bookService,
	}
}

// Execute 执行查询
func (uc *GetAuthorUseCase) Execute(ctx context.Context, id uint) (*dto.AuthorWithBooksResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "GetAuthor")
	defer span.End()

	a, err := uc.authorService.GetAuthor(ctx, id)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	books, err := uc.bookService.ListByAuthor(ctx, a.ID)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	resp := dto.FromAuthorWithBooks(a, books)
	return &resp, nil
}
