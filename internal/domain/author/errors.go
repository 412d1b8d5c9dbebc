package author

import (
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// 作者领域错误定义
var (
	// ErrAuthorNotFound 作者不存在
	ErrAuthorNotFound = apperrors.New(apperrors.ErrCodeAuthorNotFound, "作者不存在")

	// ErrNameDuplicate 作者名已存在
	ErrNameDuplicate = apperrors.New(apperrors.ErrCodeAuthorDuplicate, "作者名已存在").WithField("name", "已存在")

	// ErrInvalidName 作者名为空或过长
	ErrInvalidName = apperrors.Validation(apperrors.FieldError{Field: "name", Reason: "长度应为1-50个字符"})

	// ErrInvalidBirthDate 出生日期不合法
	ErrInvalidBirthDate = apperrors.Validation(apperrors.FieldError{Field: "birth_date", Reason: "日期不合法"})

	// ErrBirthDateInFuture 出生日期晚于今天
	ErrBirthDateInFuture = apperrors.Validation(apperrors.FieldError{Field: "birth_date", Reason: "不能晚于今天"})
)
