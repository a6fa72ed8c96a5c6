package domain

import (
	"errors"
	"fmt"

	"git.appkode.ru/pub/go/failure"
)

// Kind — класс AppError, по нему вызывающий решает, как реагировать на отказ.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidArgument
	KindNotFound
	KindConflict
	KindUnprocessable
	KindLocked
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid-argument"
	case KindNotFound:
		return "not-found"
	case KindConflict:
		return "conflict"
	case KindUnprocessable:
		return "unprocessable"
	case KindLocked:
		return "locked"
	default:
		return "internal"
	}
}

// AppError представляет доменную ошибку приложения.
type AppError struct {
	Kind    Kind
	Code    failure.ErrorCode
	Message string
	cause   error
}

// Error реализует интерфейс error.
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap возвращает обёрнутую ошибку для errors.Is/As.
func (e *AppError) Unwrap() error {
	return e.cause
}

// Is сравнивает по коду, сообщение не важно.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// NewError создаёт новую доменную ошибку.
func NewError(kind Kind, code failure.ErrorCode, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// Errorf создаёт доменную ошибку с форматированным сообщением.
func Errorf(kind Kind, code failure.ErrorCode, format string, args ...any) *AppError {
	return NewError(kind, code, fmt.Sprintf(format, args...))
}

// WrapError оборачивает существующую ошибку с доменным контекстом.
func WrapError(err error, kind Kind, code failure.ErrorCode, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		cause:   err,
	}
}

// IsAppError проверяет, является ли ошибка доменной.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetCode извлекает код ошибки, если это AppError.
func GetCode(err error) (failure.ErrorCode, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code, true
	}
	return "", false
}

// GetKind извлекает вид ошибки; не-доменные ошибки считаются внутренними.
func GetKind(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
