package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// 呼び出し側が errors.Is で見分けるための種類
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrPlatformFailure = errors.New("platform failure")
)

type HTTPError struct {
	Kind    error
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Kind
}

func NewHTTPError(kind error, status int, message string) error {
	return &HTTPError{
		Kind:    kind,
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

func NotFound(message string) error {
	return NewHTTPError(ErrNotFound, http.StatusNotFound, message)
}

func InvalidArgument(message string) error {
	return NewHTTPError(ErrInvalidArgument, http.StatusBadRequest, message)
}

// 呼び出し元が分からない（401）
func Unauthenticated(message string) error {
	return NewHTTPError(ErrUnauthorized, http.StatusUnauthorized, message)
}

// 分かっているが許可されていない（403）
func Forbidden(message string) error {
	return NewHTTPError(ErrUnauthorized, http.StatusForbidden, message)
}

func PlatformFailure(message string) error {
	return NewHTTPError(ErrPlatformFailure, http.StatusInternalServerError, message)
}
