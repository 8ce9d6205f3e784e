package domain

import (
	"context"
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeInvalidArgument  ErrorCode = "INVALID_ARGUMENT"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	CodeUnavailable      ErrorCode = "UNAVAILABLE"
	CodeFailedPrecond    ErrorCode = "FAILED_PRECONDITION"
	CodeUnauthenticated  ErrorCode = "UNAUTHENTICATED"
	CodeInternal         ErrorCode = "INTERNAL"
	CodeCanceled         ErrorCode = "CANCELED"
	CodeDeadlineExceeded ErrorCode = "DEADLINE_EXCEEDED"
)

var (
	ErrPromptNotFound    = errors.New("prompt not found")
	ErrResourceNotFound  = errors.New("resource not found")
	ErrToolNotFound      = errors.New("tool not found")
	ErrDirectoryMissing  = errors.New("directory missing")
	ErrFetchFailed       = errors.New("remote fetch failed")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrInvalidName       = errors.New("invalid name")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrUnauthenticated   = errors.New("unauthenticated")
)

// Error carries a stable code alongside the failing operation.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
	Meta    map[string]string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Op == "" {
		if msg == "" {
			return string(e.Code)
		}
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	if msg == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func E(code ErrorCode, op, msg string, cause error) *Error {
	if msg == "" && cause != nil {
		msg = cause.Error()
	}
	return &Error{
		Code:    code,
		Op:      op,
		Message: msg,
		Cause:   cause,
	}
}

func Wrap(code ErrorCode, op string, err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		if existing.Op != "" || op == "" {
			return existing
		}
		return &Error{
			Code:    existing.Code,
			Op:      op,
			Message: existing.Message,
			Cause:   existing.Cause,
			Meta:    existing.Meta,
		}
	}
	return E(code, op, "", err)
}

// NotFound builds a NOT_FOUND error for a named entry.
func NotFound(op string, sentinel error, name string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Op:      op,
		Message: fmt.Sprintf("%s: %s", sentinel.Error(), name),
		Cause:   sentinel,
		Meta:    map[string]string{"name": name},
	}
}

func CodeFrom(err error) (ErrorCode, bool) {
	if err == nil {
		return "", false
	}
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr.Code != "" {
		return domainErr.Code, true
	}
	switch {
	case errors.Is(err, ErrPromptNotFound), errors.Is(err, ErrResourceNotFound), errors.Is(err, ErrToolNotFound):
		return CodeNotFound, true
	case errors.Is(err, ErrDirectoryMissing):
		return CodeFailedPrecond, true
	case errors.Is(err, ErrFetchFailed):
		return CodeUnavailable, true
	case errors.Is(err, ErrAlreadyRegistered):
		return CodeAlreadyExists, true
	case errors.Is(err, ErrInvalidName), errors.Is(err, ErrInvalidConfig):
		return CodeInvalidArgument, true
	case errors.Is(err, ErrUnauthenticated):
		return CodeUnauthenticated, true
	case errors.Is(err, context.Canceled):
		return CodeCanceled, true
	case errors.Is(err, context.DeadlineExceeded):
		return CodeDeadlineExceeded, true
	default:
		return "", false
	}
}

// IsNotFound reports whether err resolves to a NOT_FOUND code.
func IsNotFound(err error) bool {
	code, ok := CodeFrom(err)
	return ok && code == CodeNotFound
}
