package service

import (
	"bytes"
	"encoding/json"

	"ClearTracker/internal/model"
)

// Optional 局部更新字段：区分“未提供”(Set=false) 与“显式 null”(Set=true, Valid=false)
type Optional[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// Some 构造一个已提供且非 null 的字段
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Valid: true, Value: v}
}

// Null 构造一个显式 null 的字段
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// UnmarshalJSON 只有键出现在 JSON 中时才会被调用，null 也会进入这里
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Valid = false
		var zero T
		o.Value = zero
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// applyTo 非空字段：未提供则保持原值，显式 null 视为校验错误
func (o Optional[T]) applyTo(dst *T, field string) error {
	if !o.Set {
		return nil
	}
	if !o.Valid {
		return model.NewValidationError(field, "%s cannot be null", field)
	}
	*dst = o.Value
	return nil
}

// applyNullable 可空字段：显式 null 清空
func (o Optional[T]) applyNullable(dst **T) {
	if !o.Set {
		return
	}
	if !o.Valid {
		*dst = nil
		return
	}
	v := o.Value
	*dst = &v
}
