package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误类别
// 调用方根据Kind决定如何渲染响应（HTTP状态码），Code用于客户端细分业务错误
type Kind int

const (
	KindInternal     Kind = iota // 内部错误
	KindValidation               // 输入格式/范围不合法
	KindConflict                 // 唯一性冲突、库存不足等状态冲突
	KindNotFound                 // 资源或外键不存在
	KindUnauthorized             // 未登录、凭证错误
	KindForbidden                // 已登录但角色无权限
)

// String 实现Stringer接口
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// HTTPStatus Kind对应的HTTP状态码
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// FieldError 单个字段的校验失败原因
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// AppError 自定义应用错误
// 设计说明：
// 1. Code用于客户端判断错误类型（不要直接暴露HTTP状态码）
// 2. Kind决定错误类别（校验/冲突/不存在/鉴权）
// 3. Fields列出所有违反约束的字段，而不仅是第一个
// 4. Err是内部错误，仅记录到日志，不返回给客户端
type AppError struct {
	Code    int          `json:"code"`
	Kind    Kind         `json:"-"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"errors,omitempty"`
	Err     error        `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	if len(e.Fields) > 0 {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Fields)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 同Code视为同一错误；target带字段列表时字段也必须一致
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok || e.Code != t.Code {
		return false
	}
	if len(t.Fields) == 0 {
		return true
	}
	if len(e.Fields) != len(t.Fields) {
		return false
	}
	for i := range t.Fields {
		if e.Fields[i] != t.Fields[i] {
			return false
		}
	}
	return true
}

// WithField 返回附带字段信息的副本（哨兵错误本身不被修改）
func (e *AppError) WithField(field, reason string) *AppError {
	cp := *e
	cp.Fields = append(append([]FieldError(nil), e.Fields...), FieldError{Field: field, Reason: reason})
	return &cp
}

// New 创建新的AppError，Kind由错误码区间推断
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kindOf(code),
		Message: message,
	}
}

// Wrap 包装系统错误（如数据库错误、网络错误）
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Kind:    KindInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// Validation 创建带字段列表的校验错误
func Validation(fields ...FieldError) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidParams,
		Kind:    KindValidation,
		Message: "参数校验失败",
		Fields:  fields,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 401xx: 认证
// - 403xx: 授权
// - 404xx: 资源不存在
// - 409xx: 冲突（唯一性、库存）
// - 422xx: 参数校验
// - 5xxxx: 服务端错误

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal      = 50000 // 内部错误
	ErrCodeDatabaseError = 50001 // 数据库错误
	ErrCodeRedisError    = 50002 // Redis错误

	// 认证错误（40100-40199）
	ErrCodeUnauthorized       = 40100 // 未登录
	ErrCodeInvalidToken       = 40101 // Token无效
	ErrCodeTokenExpired       = 40102 // Token过期
	ErrCodeInvalidCredentials = 40103 // 用户名或密码错误

	// 授权错误（40300-40399）
	ErrCodeForbidden = 40300 // 角色无权限

	// 资源错误（40400-40499）
	ErrCodeNotFound       = 40400 // 资源不存在(通用)
	ErrCodeUserNotFound   = 40401 // 用户不存在
	ErrCodeBookNotFound   = 40402 // 图书不存在
	ErrCodeOrderNotFound  = 40403 // 订单不存在
	ErrCodeAuthorNotFound = 40404 // 作者不存在

	// 冲突错误（40900-40999）
	ErrCodeDuplicateEntry    = 40900 // 重复记录(通用)
	ErrCodeUsernameDuplicate = 40901 // 用户名已存在
	ErrCodeEmailDuplicate    = 40902 // 邮箱已存在
	ErrCodeTitleDuplicate    = 40903 // 书名已存在
	ErrCodeAuthorDuplicate   = 40904 // 作者名已存在
	ErrCodeInsufficientStock = 40905 // 库存不足

	// 参数错误（42200-42299）
	ErrCodeInvalidParams = 42200 // 参数错误
	ErrCodeBindError     = 42201 // 参数绑定失败
)

// kindOf 根据错误码区间推断Kind
func kindOf(code int) Kind {
	switch code / 100 {
	case 401:
		return KindUnauthorized
	case 403:
		return KindForbidden
	case 404:
		return KindNotFound
	case 409:
		return KindConflict
	case 422:
		return KindValidation
	default:
		return KindInternal
	}
}

// =========================================
// 预定义错误（避免每次都New）
// =========================================

var (
	// 系统错误
	ErrInternal      = New(ErrCodeInternal, "系统内部错误")
	ErrDatabaseError = New(ErrCodeDatabaseError, "数据库错误")
	ErrRedisError    = New(ErrCodeRedisError, "缓存服务错误")

	// 认证授权
	ErrUnauthorized       = New(ErrCodeUnauthorized, "请先登录")
	ErrInvalidToken       = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired       = New(ErrCodeTokenExpired, "Token已过期")
	ErrInvalidCredentials = New(ErrCodeInvalidCredentials, "用户名或密码错误")
	ErrForbidden          = New(ErrCodeForbidden, "无权限访问")

	// 参数错误
	ErrInvalidParams = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError     = New(ErrCodeBindError, "参数格式错误")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// IsKind 判断错误链中的AppError是否属于指定类别
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}
