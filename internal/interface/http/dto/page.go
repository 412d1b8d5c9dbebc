package dto

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/validator"
)

// 分页默认值
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// PageQuery 分页参数（query string）
type PageQuery struct {
	Limit  int `json:"limit" form:"limit" validate:"gte=1,lte=100" example:"10"`
	Offset int `json:"offset" form:"offset" validate:"gte=0" example:"0"`
}

// BindPage 解析并校验分页参数，未提供时使用默认值
// 非整数按字段报告，不掩盖另一个字段的错误
func BindPage(c *gin.Context, v *validator.Validator) (PageQuery, error) {
	q := PageQuery{Limit: DefaultLimit}

	var fields []apperrors.FieldError
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"limit", &q.Limit},
		{"offset", &q.Offset},
	} {
		raw, ok := c.GetQuery(p.name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields = append(fields, apperrors.FieldError{Field: p.name, Reason: "必须是整数"})
			continue
		}
		*p.dst = n
	}
	if len(fields) > 0 {
		return q, apperrors.Validation(fields...)
	}

	if err := v.Struct(&q); err != nil {
		return q, err
	}
	return q, nil
}
