package order

import (
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.New(apperrors.ErrCodeOrderNotFound, "订单不存在")

	// ErrInvalidQuantity 购买数量不合法
	ErrInvalidQuantity = apperrors.Validation(apperrors.FieldError{Field: "quantity", Reason: "必须大于0"})

	// ErrTotalOverflow 总金额超出可表示范围
	ErrTotalOverflow = apperrors.Validation(apperrors.FieldError{Field: "quantity", Reason: "总金额超出范围"})

	// ErrForbidden 无权查看他人订单
	ErrForbidden = apperrors.New(apperrors.ErrCodeForbidden, "无权查看此订单")
)
