package repository

import (
	"errors"
	"fmt"
	"strings"

	"ClearTracker/internal/model"

	"gorm.io/gorm"
)

// translateError 把唯一约束冲突统一翻译为 model.ErrConflict，其它错误原样返回。
// 依赖 gorm.Config.TranslateError；驱动未翻译时按错误文本兜底（sqlite/postgres）。
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, model.ErrConflict) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", model.ErrConflict, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505")
}

// notFoundAsNil First 查不到时返回 (false, nil)
func notFoundAsNil(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}
