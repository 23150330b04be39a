// Package apperr 业务错误分类；handler 层统一通过 Kind 映射 HTTP 状态码与业务码。
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type Kind string

const (
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindNotFound     Kind = "NOT_FOUND"
	KindConflict     Kind = "CONFLICT"
	KindValidation   Kind = "VALIDATION_ERROR"
	KindBusiness     Kind = "BUSINESS_ERROR"
	KindTooMany      Kind = "TOO_MANY_REQUESTS"
	KindInternal     Kind = "INTERNAL_ERROR"
)

// Status 对应的 HTTP 状态码
func (k Kind) Status() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindValidation, KindBusiness:
		return http.StatusBadRequest
	case KindTooMany:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
	Details interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is 同 Kind 即视为相等，便于 errors.Is(err, apperr.ErrNotFound)
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Message == ""
}

// 哨兵，仅用于 errors.Is 比较
var (
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrValidation   = &Error{Kind: KindValidation}
	ErrBusiness     = &Error{Kind: KindBusiness}
)

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Unauthorized(msg string) *Error { return New(KindUnauthorized, msg) }
func Forbidden(msg string) *Error    { return New(KindForbidden, msg) }
func NotFound(msg string) *Error     { return New(KindNotFound, msg) }
func Conflict(msg string) *Error     { return New(KindConflict, msg) }
func Business(msg string) *Error     { return New(KindBusiness, msg) }
func Internal(err error) *Error      { return Wrap(KindInternal, "服务器内部错误", err) }

func Validation(msg string, details interface{}) *Error {
	return &Error{Kind: KindValidation, Message: msg, Details: details}
}

// FieldError 参数校验失败明细
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// From 把任意错误归一为 *Error：
// validator 校验错误 -> VALIDATION_ERROR；gorm 未找到 -> NOT_FOUND；唯一键冲突 -> CONFLICT；其余 -> INTERNAL_ERROR
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		details := make([]FieldError, 0, len(ve))
		for _, fe := range ve {
			details = append(details, FieldError{
				Field:   fe.Field(),
				Rule:    fe.Tag(),
				Param:   fe.Param(),
				Message: fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()),
			})
		}
		return &Error{Kind: KindValidation, Message: "参数校验失败", Details: details, Err: err}
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Wrap(KindNotFound, "记录不存在", err)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return Wrap(KindConflict, "数据已存在", err)
	}
	return Internal(err)
}

// KindOf 取错误类别，非 *Error 视为 INTERNAL_ERROR
func KindOf(err error) Kind { return From(err).Kind }
