// Package validator 输入校验层
//
// 把不可信的原始JSON转换为满足约束的强类型值，或返回列出所有违规字段的校验错误。
// 校验是纯函数：不访问存储，唯一性/外键检查由仓储层在事务内完成。
package validator

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// Checker 由请求DTO实现，用于跨字段规则（在单字段规则之后执行）
// failed是单字段阶段已失败的字段集合，跨字段规则应跳过这些字段
type Checker interface {
	Check(v *Validator, failed map[string]bool) []apperrors.FieldError
}

// Validator 校验器
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// Option 校验器选项
type Option func(*Validator)

// WithClock 指定"今天"的来源（测试用）
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		v.now = now
	}
}

// New 创建校验器
// 自定义内容：
// 1. 错误中的字段名使用json tag
// 2. Optional[T]只在字段已提供时暴露给规则（配合omitnil实现"只校验提供的字段"）
// 3. civil.Date按日期校验，notfuture规则要求不晚于今天
func New(opts ...Option) *Validator {
	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}

	v.validate.RegisterTagNameFunc(jsonName)

	v.validate.RegisterCustomTypeFunc(optionalValue[string], Optional[string]{})
	v.validate.RegisterCustomTypeFunc(optionalValue[int], Optional[int]{})
	v.validate.RegisterCustomTypeFunc(optionalValue[int64], Optional[int64]{})
	v.validate.RegisterCustomTypeFunc(optionalValue[uint], Optional[uint]{})
	v.validate.RegisterCustomTypeFunc(dateValue, civil.Date{})

	// RegisterValidation只在tag名为空时返回错误
	_ = v.validate.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		if !ok {
			return false
		}
		return !civil.DateOf(t).After(v.Today())
	})

	return v
}

// Today 当前日期（本地时区）
func (v *Validator) Today() civil.Date {
	return civil.DateOf(v.now())
}

// Struct 校验结构体的所有字段规则，再执行跨字段规则
// 返回nil或*apperrors.AppError(KindValidation)
func (v *Validator) Struct(s interface{}) error {
	fields := v.structFields(s, nil)
	if len(fields) > 0 {
		return apperrors.Validation(fields...)
	}
	return nil
}

// Bind 解析原始JSON并校验
// 解析阶段逐字段进行，某字段类型错误不会掩盖其他字段的错误
func (v *Validator) Bind(data []byte, dst interface{}) error {
	decodeErrs, err := decodeFields(data, dst)
	if err != nil {
		return err
	}

	failed := make(map[string]bool, len(decodeErrs))
	for _, fe := range decodeErrs {
		failed[fe.Field] = true
	}

	fields := append(decodeErrs, v.structFields(dst, failed)...)
	if len(fields) > 0 {
		return apperrors.Validation(fields...)
	}
	return nil
}

// structFields 执行tag规则与跨字段规则，跳过skip中已失败的字段
func (v *Validator) structFields(s interface{}, skip map[string]bool) []apperrors.FieldError {
	var fields []apperrors.FieldError
	failed := make(map[string]bool)
	for k := range skip {
		failed[k] = true
	}

	if err := v.validate.Struct(s); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return []apperrors.FieldError{{Field: "body", Reason: err.Error()}}
		}
		for _, fe := range verrs {
			if failed[fe.Field()] {
				continue
			}
			failed[fe.Field()] = true
			fields = append(fields, apperrors.FieldError{Field: fe.Field(), Reason: reason(fe)})
		}
	}

	if c, ok := s.(Checker); ok {
		for _, fe := range c.Check(v, failed) {
			if failed[fe.Field] {
				continue
			}
			failed[fe.Field] = true
			fields = append(fields, fe)
		}
	}

	return fields
}

// decodeFields 先解析为map，再逐字段反序列化到dst
// 返回字段级解析错误；请求体不是JSON对象时返回整体错误
func decodeFields(data []byte, dst interface{}) ([]apperrors.FieldError, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil, apperrors.Validation(apperrors.FieldError{Field: "body", Reason: "请求体必须是JSON对象"})
	}

	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return nil, apperrors.Wrap(fmt.Errorf("decode target must be a pointer to struct, got %T", dst), "参数解析失败")
	}
	rv = rv.Elem()
	rt := rv.Type()

	var fields []apperrors.FieldError
	for i := 0; i < rt.NumField(); i++ {
		name := jsonName(rt.Field(i))
		if name == "" {
			continue
		}
		msg, ok := raw[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(msg, rv.Field(i).Addr().Interface()); err != nil {
			fields = append(fields, apperrors.FieldError{Field: name, Reason: decodeReason(err)})
		}
	}
	return fields, nil
}

// jsonName 取json tag中的字段名
func jsonName(sf reflect.StructField) string {
	name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return sf.Name
	}
	return name
}

func optionalValue[T any](field reflect.Value) interface{} {
	o, ok := field.Interface().(Optional[T])
	if !ok || !o.Present() {
		return (*T)(nil)
	}
	val := o.Value
	return &val
}

func dateValue(field reflect.Value) interface{} {
	d, ok := field.Interface().(civil.Date)
	if !ok || !d.IsValid() {
		return nil
	}
	return d.In(time.Local)
}

func decodeReason(err error) string {
	switch e := err.(type) {
	case *json.UnmarshalTypeError:
		return fmt.Sprintf("类型错误，期望%s", e.Type.String())
	case *json.SyntaxError:
		return "JSON格式错误"
	default:
		return fmt.Sprintf("格式错误: %v", err)
	}
}

// reason 把validator的规则翻译成可读的原因
func reason(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "必填"
	case "min":
		if isString {
			return fmt.Sprintf("长度不能小于%s", fe.Param())
		}
		return fmt.Sprintf("不能小于%s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("长度不能大于%s", fe.Param())
		}
		return fmt.Sprintf("不能大于%s", fe.Param())
	case "gt":
		return fmt.Sprintf("必须大于%s", fe.Param())
	case "gte":
		return fmt.Sprintf("必须大于等于%s", fe.Param())
	case "email":
		return "邮箱格式不正确"
	case "notfuture":
		return "不能晚于今天"
	case "oneof":
		return fmt.Sprintf("必须是以下之一: %s", fe.Param())
	default:
		return fmt.Sprintf("不满足规则%s", fe.Tag())
	}
}
