// Package errors builds HTTP errors shown to users as an error page.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// ErrorMessage is the message of HTTP errors.
//
// Cause is logged, but never shown to users.
type ErrorMessage struct {
	Reason string
	Advice string
	Cause  error
}

func (e ErrorMessage) String() string {
	lines := []string{e.Reason}
	if e.Advice != "" {
		lines = append(lines, e.Advice)
	}
	if e.Cause != nil {
		lines = append(lines, fmt.Sprint(" caused by:", e.Cause.Error()))
	}
	return strings.Join(lines, "\n")
}

func (e ErrorMessage) Error() string {
	return e.String()
}

func (e ErrorMessage) Unwrap() error {
	return e.Cause
}

type ErrorMessageOption func(in *ErrorMessage) *ErrorMessage

func WithAdvice(advice string) ErrorMessageOption {
	return func(in *ErrorMessage) *ErrorMessage {
		if advice != "" {
			in.Advice = advice
		}
		return in
	}
}

func WithError(err error) ErrorMessageOption {
	return func(in *ErrorMessage) *ErrorMessage {
		if err != nil {
			in.Cause = err
		}
		return in
	}
}

func NewErrorMessage(code int, reason string, opts ...ErrorMessageOption) *echo.HTTPError {
	msg := ErrorMessage{Reason: reason}
	for _, opt := range opts {
		msg = *opt(&msg)
	}

	return echo.NewHTTPError(code, msg).SetInternal(msg)
}

func NotFound() *echo.HTTPError {
	return NewErrorMessage(http.StatusNotFound, "not found")
}

func BadRequest(reason string, err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusBadRequest,
		reason,
		WithError(err),
	)
}

func ServiceUnavailable(advice string, err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusServiceUnavailable,
		"service unavailable temporaly",
		WithAdvice(advice),
		WithError(err),
	)
}

func InternalServerError(err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusInternalServerError,
		"unexpected error",
		WithAdvice("try again later, or ask your system admin."),
		WithError(err),
	)
}

// Page is the data passed to the error page.
type Page struct {
	Code   int
	Status string
	Reason string
	Advice string
}

// NewPage converts err to Page.
//
// Errors other than *echo.HTTPError are internal server errors.
func NewPage(err error) Page {
	he := new(echo.HTTPError)
	if !errors.As(err, &he) {
		he = InternalServerError(err)
	}

	page := Page{
		Code:   he.Code,
		Status: http.StatusText(he.Code),
	}
	switch m := he.Message.(type) {
	case ErrorMessage:
		page.Reason = m.Reason
		page.Advice = m.Advice
	case string:
		page.Reason = m
	default:
		page.Reason = strings.ToLower(page.Status)
	}
	return page
}

// Handler returns a HTTPErrorHandler rendering the error page.
//
// When the page cannot be rendered, it falls back to echo's default handler.
func Handler(e *echo.Echo, page string) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		e.Logger.Error(err)
		if c.Response().Committed {
			return
		}

		p := NewPage(err)
		if c.Request().Method == http.MethodHead {
			if err := c.NoContent(p.Code); err != nil {
				e.Logger.Error(err)
			}
			return
		}
		if rerr := c.Render(p.Code, page, p); rerr != nil {
			e.Logger.Error(rerr)
			e.DefaultHTTPErrorHandler(err, c)
		}
	}
}
