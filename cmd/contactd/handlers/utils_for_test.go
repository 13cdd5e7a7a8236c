package handlers_test

import (
	"errors"
	"io"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/opst/contactbook/pkg/auth/session"
	kdb "github.com/opst/contactbook/pkg/db"
	"github.com/opst/contactbook/pkg/db/mocks"
)

// rendered records pages rendered by handlers.
type rendered struct {
	Name string
	Data any
}

type recordingRenderer struct {
	Rendered []rendered
}

func (r *recordingRenderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	r.Rendered = append(r.Rendered, rendered{Name: name, Data: data})
	_, err := io.WriteString(w, name)
	return err
}

func newEcho() (*echo.Echo, *recordingRenderer) {
	e := echo.New()
	r := &recordingRenderer{}
	e.Renderer = r
	return e, r
}

type mockSessionManager struct {
	Impl struct {
		Login  func(c echo.Context, user kdb.User) error
		Logout func(c echo.Context) error
	}
	Calls struct {
		Login  mocks.CallLog[kdb.User]
		Logout mocks.CallLog[struct{}]
	}
}

var _ session.Manager = &mockSessionManager{}

func (m *mockSessionManager) Login(c echo.Context, user kdb.User) error {
	m.Calls.Login = append(m.Calls.Login, user)
	if m.Impl.Login != nil {
		return m.Impl.Login(c, user)
	}
	panic(errors.New("it should no be called"))
}

func (m *mockSessionManager) Logout(c echo.Context) error {
	m.Calls.Logout = append(m.Calls.Logout, struct{}{})
	if m.Impl.Logout != nil {
		return m.Impl.Logout(c)
	}
	panic(errors.New("it should no be called"))
}

func (m *mockSessionManager) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	panic(errors.New("it should no be called"))
}

func assertHTTPError(t *testing.T, err error, code int) *echo.HTTPError {
	t.Helper()
	he := new(echo.HTTPError)
	if !errors.As(err, &he) {
		t.Fatalf("error is not HTTPError: %v", err)
	}
	if he.Code != code {
		t.Errorf("status code: got %d, want %d (%v)", he.Code, code, he)
	}
	return he
}
