package author

import (
	"context"

	"cloud.google.com/go/civil"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookshop/internal/application/dto"
	"github.com/xiebiao/bookshop/internal/domain/author"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/tracing"
)

const tracerName = "bookstore/application/author"

// CreateAuthorUseCase 创建作者用例
type CreateAuthorUseCase struct {
	authorService author.Service
}

// NewCreateAuthorUseCase 创建用例实例
func NewCreateAuthorUseCase(authorService author.Service) *CreateAuthorUseCase {
	return &CreateAuthorUseCase{authorService: authorService}
}

// CreateAuthorRequest 创建作者请求（已通过校验层）
type CreateAuthorRequest struct {
	Name      string
	BirthDate civil.Date
}

// Execute 执行创建
// 出生日期在领域工厂中按当天日期再确认一次，名称冲突由唯一索引判定
func (uc *CreateAuthorUseCase) Execute(ctx context.Context, req CreateAuthorRequest) (*dto.AuthorResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CreateAuthor")
	defer span.End()

	a, err := uc.authorService.CreateAuthor(ctx, req.Name, req.BirthDate)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("author.id", int64(a.ID)))
	metrics.IncCounter(metrics.AuthorsCreatedTotal)

	resp := dto.FromAuthor(a)
	return &resp, nil
}
