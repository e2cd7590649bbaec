// Package apperr 定义业务错误分类
//
// 所有服务层错误都带有一个 Kind，handler 通过 response.FromError 将其映射为 HTTP 状态码和业务码。
package apperr

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgconn"
)

// Kind 错误类别
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindForbidden
	KindInvalidState
	KindDuplicatePurchase
	KindValidation
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindInvalidState:
		return "invalid_state"
	case KindDuplicatePurchase:
		return "duplicate_purchase"
	case KindValidation:
		return "validation"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Error 带类别的业务错误
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// Error 有底层错误时 Err 已带上 Msg 前缀
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// New 创建指定类别的错误
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf 创建指定类别的格式化错误
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap 以指定类别包装底层错误，err 为 nil 时返回 nil
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: errors.Wrap(err, msg)}
}

func NotFound(msg string) error          { return New(KindNotFound, msg) }
func Forbidden(msg string) error         { return New(KindForbidden, msg) }
func InvalidState(msg string) error      { return New(KindInvalidState, msg) }
func DuplicatePurchase(msg string) error { return New(KindDuplicatePurchase, msg) }
func Validation(msg string) error        { return New(KindValidation, msg) }

// Storage 包装持久化层错误
// 数据库拒绝的非法输入（SQLSTATE 22 类，如格式错误的 UUID）不可重试，归为 Validation
func Storage(err error, op string) error {
	if invalidInput(err) {
		return Wrap(KindValidation, err, "invalid input")
	}
	return Wrap(KindStorage, err, op)
}

func invalidInput(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "22")
}

// KindOf 返回错误链中第一个业务错误的类别
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is 判断错误是否属于指定类别
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message 返回可以展示给调用方的错误信息
// 存储错误和未知错误不暴露底层细节
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "internal error"
	}
	if e.Kind == KindStorage {
		return "service temporarily unavailable"
	}
	return e.Msg
}
