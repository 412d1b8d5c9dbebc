package validator

import (
	"bytes"
	"encoding/json"
)

// Optional 三态可选值，用于部分更新
//   - 未出现在请求中：Set=false
//   - 显式为null：Set=true, Null=true
//   - 有值：Set=true, Null=false
//
// encoding/json只在字段存在时调用UnmarshalJSON，所以零值天然表示"未提供"
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some 构造一个有值的Optional
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Present 字段已提供且不为null
func (o Optional[T]) Present() bool {
	return o.Set && !o.Null
}

// Get 返回值以及是否存在
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Present()
}

// UnmarshalJSON 实现json.Unmarshaler
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// MarshalJSON 实现json.Marshaler（未提供与null都输出null）
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Present() {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
