package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/opst/contactbook/cmd/contactd/handlers"
	httptestutil "github.com/opst/contactbook/internal/testutils/http"
)

func TestHealthzHandler(t *testing.T) {
	t.Run("it answers ok when the database is reachable", func(t *testing.T) {
		e, _ := newEcho()
		c, resp := httptestutil.Get(e, "/healthz")

		err := handlers.HealthzHandler(func(context.Context) error { return nil })(c)
		if err != nil {
			t.Fatal(err)
		}
		if resp.Code != http.StatusOK || resp.Body.String() != "ok" {
			t.Errorf("unexpected response: %d %q", resp.Code, resp.Body.String())
		}
	})

	t.Run("it is service unavailable when ping fails", func(t *testing.T) {
		e, _ := newEcho()
		c, _ := httptestutil.Get(e, "/healthz")

		err := handlers.HealthzHandler(func(context.Context) error { return errors.New("connection refused") })(c)
		assertHTTPError(t, err, http.StatusServiceUnavailable)
	})
}
