package book

import (
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrTitleDuplicate 书名已存在
	ErrTitleDuplicate = apperrors.New(apperrors.ErrCodeTitleDuplicate, "书名已存在").WithField("title", "已存在")

	// ErrInvalidQuantity 无效的数量
	ErrInvalidQuantity = apperrors.Validation(apperrors.FieldError{Field: "quantity", Reason: "必须大于0"})

	// ErrInsufficientStock 库存不足
	ErrInsufficientStock = apperrors.New(apperrors.ErrCodeInsufficientStock, "库存不足").WithField("quantity", "超过当前库存")
)
