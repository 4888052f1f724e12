// Package apperrors defines the error taxonomy used by the HTTP layer.
// Every failure on the file-resolution path is classified into one of the
// kinds below before it reaches a response.
package apperrors

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

// Kind classifies an error for HTTP status mapping.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidArgument
	KindNotFound
	KindTimeout
	KindUpstream
)

type appError struct {
	kind Kind
	err  error
}

func (e *appError) Error() string { return e.err.Error() }

func (e *appError) Unwrap() error { return e.err }

// InvalidArgument marks a bad or missing request parameter.
func InvalidArgument(msg string) error {
	return &appError{kind: KindInvalidArgument, err: errors.New(msg)}
}

// InvalidArgumentf is InvalidArgument with formatting.
func InvalidArgumentf(format string, args ...interface{}) error {
	return &appError{kind: KindInvalidArgument, err: errors.Errorf(format, args...)}
}

// NotFound marks a lookup that matched no row or stored object.
func NotFound(msg string) error {
	return &appError{kind: KindNotFound, err: errors.New(msg)}
}

// NotFoundf is NotFound with formatting.
func NotFoundf(format string, args ...interface{}) error {
	return &appError{kind: KindNotFound, err: errors.Errorf(format, args...)}
}

// Timeout marks work that exceeded its deadline.
func Timeout(msg string) error {
	return &appError{kind: KindTimeout, err: errors.New(msg)}
}

// Upstream wraps an object-store failure that is not a not-found.
func Upstream(err error, msg string) error {
	return &appError{kind: KindUpstream, err: errors.Wrap(err, msg)}
}

// KindOf reports the classification of err, walking wrapped chains.
// Unclassified errors report KindUnknown.
func KindOf(err error) Kind {
	var ae *appError
	if errors.As(err, &ae) {
		return ae.kind
	}
	return KindUnknown
}

// HTTPStatus maps an error kind to its response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidArgument:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindTimeout:
		return fiber.StatusRequestTimeout
	case KindUpstream:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
