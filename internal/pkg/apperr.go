package pkg

import (
	"errors"
	"net/http"
)

// 错误分级：校验和鉴权错误尽早短路，持久化错误终止操作；
// 广播失败不属于这里，它不回滚已写入的数据，只降级返回
type ErrKind int

const (
	KindInputInvalid ErrKind = iota + 1
	KindUnauthenticated
	KindUnauthorized
	KindNotFound
	KindPersistence
)

func (k ErrKind) String() string {
	switch k {
	case KindInputInvalid:
		return "input_invalid"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindPersistence:
		return "persistence_failure"
	default:
		return "internal"
	}
}

type AppError struct {
	Kind ErrKind
	Msg  string
	Err  error // 底层原因，只进日志，不出接口
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *AppError) Unwrap() error { return e.Err }

func NewAppError(kind ErrKind, msg string) *AppError {
	return &AppError{Kind: kind, Msg: msg}
}

func WrapAppError(kind ErrKind, msg string, err error) *AppError {
	return &AppError{Kind: kind, Msg: msg, Err: err}
}

// ErrStatus 错误到 HTTP 状态码的映射；未知错误一律 500
func ErrStatus(err error) int {
	var ae *AppError
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError
	}
	switch ae.Kind {
	case KindInputInvalid:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindUnauthorized:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ErrKindString 稳定的机器可读错误类别
func ErrKindString(err error) string {
	var ae *AppError
	if !errors.As(err, &ae) {
		return "internal"
	}
	return ae.Kind.String()
}

// ErrMessage 面向用户的提示；原始驱动错误不外漏
func ErrMessage(err error) string {
	var ae *AppError
	if !errors.As(err, &ae) {
		return "internal error"
	}
	return ae.Msg
}
