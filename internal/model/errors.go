package model

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict 自然键/唯一约束冲突，由仓储层从数据库唯一约束错误翻译而来，可重试
	ErrConflict = errors.New("unique constraint conflict")
	// ErrNotFound 仓储层更新目标不存在（服务层对外不暴露，统一收敛为“不存在”结果）
	ErrNotFound = errors.New("record not found")
)

// ValidationError 实体不变量被违反
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError 创建 ValidationError
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError 判断 err 链中是否包含 ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
