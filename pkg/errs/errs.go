// Package errs 定义了应用统一的错误分类。
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized 表示请求没有可解析的身份，操作在产生任何副作用前中止。
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound 表示查询的记录不存在。
	ErrNotFound = errors.New("record not found")
	// ErrQuotaExceeded 表示用户已达到其套餐允许的伙伴创建上限。
	ErrQuotaExceeded = errors.New("companion quota exceeded")
)

// ValidationError 表示创建请求的载荷缺失或格式错误。
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NewValidation 创建一个针对指定字段的 ValidationError。
func NewValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation 判断 err 是否为 ValidationError。
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// WrapDatastore 包装底层数据存储错误，保留原始消息。
// 数据存储错误从不被吞掉，也从不自动重试。
func WrapDatastore(op string, err error) error {
	return fmt.Errorf("datastore %s: %w", op, err)
}
