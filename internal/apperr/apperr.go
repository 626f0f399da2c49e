// Package apperr holds the error taxonomy shared by every feature package and
// the mapping of that taxonomy onto HTTP responses.
package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	pkgerrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindStore        Kind = "store"
)

// Error is a classified failure. Two errors match with errors.Is when the
// target is one of the bare sentinels below and the kinds are equal.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrStore        = &Error{Kind: KindStore}
)

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// Store wraps a persistence failure. A nil cause yields nil so repositories
// can return Store(err, "...") unconditionally after a call.
func Store(cause error, msg string) error {
	if cause == nil {
		return nil
	}
	var classified *Error
	if errors.As(cause, &classified) {
		return cause
	}
	return &Error{Kind: KindStore, Message: msg, Err: pkgerrors.WithStack(cause)}
}

// KindOf reports the kind of err, or KindStore for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindForbidden:
		return fiber.StatusForbidden
	case KindConflict:
		return fiber.StatusConflict
	case KindUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// Respond writes err as {"message": ...}. Store failures are logged and
// answered with an opaque message.
func Respond(c *fiber.Ctx, err error) error {
	status := HTTPStatus(err)
	if status == fiber.StatusInternalServerError {
		log.WithFields(log.Fields{
			"method": c.Method(),
			"path":   c.Path(),
			"err":    fmt.Sprintf("%+v", err),
		}).Error("request failed")
		return c.Status(status).JSON(fiber.Map{"message": "internal server error"})
	}
	return c.Status(status).JSON(fiber.Map{"message": err.Error()})
}
