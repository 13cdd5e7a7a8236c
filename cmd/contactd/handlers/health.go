package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	werr "github.com/opst/contactbook/pkg/web/errors"
)

// HealthzHandler answers 200 when ping succeeds.
func HealthzHandler(ping func(context.Context) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := ping(c.Request().Context()); err != nil {
			return werr.ServiceUnavailable("database is not reachable", err)
		}
		return c.String(http.StatusOK, "ok")
	}
}
