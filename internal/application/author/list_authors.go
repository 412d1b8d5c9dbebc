package author

import (
	"context"

	"github.com/xiebiao/bookshop/internal/application/dto"
	"github.com/xiebiao/bookshop/internal/domain/author"
	"github.com/xiebiao/bookshop/pkg/tracing"
)

// ListAuthorsUseCase 分页查询作者
type ListAuthorsUseCase struct {
	authorService author.Service
}

// NewListAuthorsUseCase 创建用例实例
func NewListAuthorsUseCase(authorService author.Service) *ListAuthorsUseCase {
	return &ListAuthorsUseCase{authorService: authorService}
}

// ListAuthorsRequest 分页参数（已通过校验层：1 <= Limit <= 100，Offset >= 0）
type ListAuthorsRequest struct {
	Limit  int
	Offset int
}

// Execute 执行查询
func (uc *ListAuthorsUseCase) Execute(ctx context.Context, req ListAuthorsRequest) (*dto.Page[dto.AuthorResponse], error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "ListAuthors")
	defer span.End()

	authors, total, err := uc.authorService.ListAuthors(ctx, req.Offset, req.Limit)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	items := make([]dto.AuthorResponse, len(authors))
	for i, a := range authors {
		items[i] = dto.FromAuthor(a)
	}

	page := dto.NewPage(items, total, req.Limit, req.Offset)
	return &page, nil
}
