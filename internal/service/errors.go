package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrPostNotFound      = errors.New("post not found")
	ErrPostFieldsMissing = errors.New("post title, content and author are required")

	ErrPageNotFound      = errors.New("page not found")
	ErrPageFieldsMissing = errors.New("page title, slug and content are required")
	ErrPageSlugInvalid   = errors.New("page slug is invalid")
	ErrSlugConflict      = errors.New("slug must be unique")
)

// ErrorKind classifies service errors for transport layers.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindStorage
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "storage"
	}
}

// KindOf 将错误归类；未识别的错误一律视为存储层错误。
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrPostFieldsMissing),
		errors.Is(err, ErrPageFieldsMissing),
		errors.Is(err, ErrPageSlugInvalid):
		return KindValidation
	case errors.Is(err, ErrPostNotFound), errors.Is(err, ErrPageNotFound):
		return KindNotFound
	case errors.Is(err, ErrSlugConflict):
		return KindConflict
	default:
		return KindStorage
	}
}

// isUniqueViolation 兼容未开启 TranslateError 的连接。
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
