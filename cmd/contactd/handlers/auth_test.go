package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/opst/contactbook/cmd/contactd/handlers"
	"github.com/opst/contactbook/cmd/contactd/templates"
	httptestutil "github.com/opst/contactbook/internal/testutils/http"
	"github.com/opst/contactbook/pkg/auth/password"
	kdb "github.com/opst/contactbook/pkg/db"
	dbmock "github.com/opst/contactbook/pkg/db/mocks"
	werr "github.com/opst/contactbook/pkg/web/errors"
	"github.com/opst/contactbook/pkg/utils/try"
	"golang.org/x/crypto/bcrypt"
)

func TestLoginPageHandler(t *testing.T) {
	e, r := newEcho()
	c, resp := httptestutil.Get(e, "/login?next=%2Fedit%2F3")

	if err := handlers.LoginPageHandler()(c); err != nil {
		t.Fatal(err)
	}

	if resp.Code != http.StatusOK {
		t.Errorf("status: got %d", resp.Code)
	}
	want := rendered{Name: templates.Login, Data: handlers.LoginPage{Next: "/edit/3"}}
	if len(r.Rendered) != 1 || r.Rendered[0] != want {
		t.Errorf("rendered: got %+v, want %+v", r.Rendered, want)
	}
}

func TestLoginHandler(t *testing.T) {
	hasher := password.New(bcrypt.MinCost)
	user := kdb.User{
		Id: 3, Username: "danil",
		PasswordHash: try.To(hasher.Hash("123")).OrFatal(t),
	}

	type When struct {
		Form      url.Values
		GetByName func(context.Context, string) (kdb.User, error)
	}
	type Then struct {
		Location string
		LoggedIn bool
		Rendered *handlers.LoginPage
		Code     int
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			e, r := newEcho()
			users := dbmock.NewUserInterface()
			users.Impl.GetByName = when.GetByName
			sessions := &mockSessionManager{}
			sessions.Impl.Login = func(echo.Context, kdb.User) error { return nil }

			c, resp := httptestutil.PostForm(e, "/login", when.Form)
			err := handlers.LoginHandler(users, hasher, sessions)(c)

			if then.Code != 0 {
				assertHTTPError(t, err, then.Code)
				return
			}
			if err != nil {
				t.Fatal(err)
			}

			if got := users.Calls.GetByName; len(got) != 1 || got[0].Username != when.Form.Get("username") {
				t.Errorf("GetByName is called with unexpected args: %+v", got)
			}

			if then.LoggedIn {
				if resp.Code != http.StatusSeeOther {
					t.Errorf("status: got %d", resp.Code)
				}
				if got := resp.Header().Get("Location"); got != then.Location {
					t.Errorf("location: got %s, want %s", got, then.Location)
				}
				if got := sessions.Calls.Login; len(got) != 1 || got[0] != user {
					t.Errorf("Login is called with unexpected args: %+v", got)
				}
			} else if sessions.Calls.Login.Times() != 0 {
				t.Errorf("Login is called")
			}

			if then.Rendered != nil {
				if resp.Code != http.StatusOK {
					t.Errorf("status: got %d", resp.Code)
				}
				want := rendered{Name: templates.Login, Data: *then.Rendered}
				if len(r.Rendered) != 1 || r.Rendered[0] != want {
					t.Errorf("rendered: got %+v, want %+v", r.Rendered, want)
				}
			}
		}
	}

	found := func(context.Context, string) (kdb.User, error) { return user, nil }

	t.Run("valid credentials lead to the menu", theory(
		When{
			Form:      url.Values{"username": {"danil"}, "password": {"123"}},
			GetByName: found,
		},
		Then{LoggedIn: true, Location: "/menu"},
	))

	t.Run("valid credentials lead to the local next page", theory(
		When{
			Form:      url.Values{"username": {"danil"}, "password": {"123"}, "next": {"/edit/3?x=1"}},
			GetByName: found,
		},
		Then{LoggedIn: true, Location: "/edit/3?x=1"},
	))

	t.Run("external next page is ignored", theory(
		When{
			Form:      url.Values{"username": {"danil"}, "password": {"123"}, "next": {"https://example.com/"}},
			GetByName: found,
		},
		Then{LoggedIn: true, Location: "/menu"},
	))

	t.Run("wrong password shows the login page again", theory(
		When{
			Form:      url.Values{"username": {"danil"}, "password": {"124"}, "next": {"/menu"}},
			GetByName: found,
		},
		Then{Rendered: &handlers.LoginPage{
			Next: "/menu", Username: "danil", Error: "invalid username or password",
		}},
	))

	t.Run("unknown user shows the login page again", theory(
		When{
			Form: url.Values{"username": {"nobody"}, "password": {"123"}},
			GetByName: func(context.Context, string) (kdb.User, error) {
				return kdb.User{}, kdb.ErrMissing
			},
		},
		Then{Rendered: &handlers.LoginPage{
			Username: "nobody", Error: "invalid username or password",
		}},
	))

	t.Run("database error is internal server error", theory(
		When{
			Form: url.Values{"username": {"danil"}, "password": {"123"}},
			GetByName: func(context.Context, string) (kdb.User, error) {
				return kdb.User{}, errors.New("connection refused")
			},
		},
		Then{Code: http.StatusInternalServerError},
	))
}

func TestRegisterHandler(t *testing.T) {
	hasher := password.New(bcrypt.MinCost)

	t.Run("it registers a user with hashed password", func(t *testing.T) {
		e, _ := newEcho()
		users := dbmock.NewUserInterface()
		users.Impl.Register = func(_ context.Context, username string, hash string) (kdb.User, error) {
			return kdb.User{Id: 1, Username: username, PasswordHash: hash}, nil
		}

		c, resp := httptestutil.PostForm(e, "/register", url.Values{
			"username": {"alice"}, "password": {"s3cret"},
		})
		if err := handlers.RegisterHandler(users, hasher)(c); err != nil {
			t.Fatal(err)
		}

		if resp.Code != http.StatusSeeOther || resp.Header().Get("Location") != "/login" {
			t.Errorf("unexpected response: %d %s", resp.Code, resp.Header().Get("Location"))
		}
		if users.Calls.Register.Times() != 1 {
			t.Fatalf("Register is called %d times", users.Calls.Register.Times())
		}
		call := users.Calls.Register[0]
		if call.Username != "alice" {
			t.Errorf("username: got %s", call.Username)
		}
		if call.PasswordHash == "s3cret" {
			t.Error("password is stored as plain text")
		}
		if err := hasher.Verify(call.PasswordHash, "s3cret"); err != nil {
			t.Errorf("hash does not match: %v", err)
		}
	})

	t.Run("taken username is bad request", func(t *testing.T) {
		e, _ := newEcho()
		users := dbmock.NewUserInterface()
		users.Impl.Register = func(context.Context, string, string) (kdb.User, error) {
			return kdb.User{}, kdb.ErrConflict
		}

		c, _ := httptestutil.PostForm(e, "/register", url.Values{
			"username": {"danil"}, "password": {"123"},
		})
		err := handlers.RegisterHandler(users, hasher)(c)

		he := assertHTTPError(t, err, http.StatusBadRequest)
		if page := werr.NewPage(he); page.Reason != "username is already taken" {
			t.Errorf("reason: got %s", page.Reason)
		}
	})

	t.Run("database error is internal server error", func(t *testing.T) {
		e, _ := newEcho()
		users := dbmock.NewUserInterface()
		users.Impl.Register = func(context.Context, string, string) (kdb.User, error) {
			return kdb.User{}, errors.New("disk full")
		}

		c, _ := httptestutil.PostForm(e, "/register", url.Values{
			"username": {"danil"}, "password": {"123"},
		})
		assertHTTPError(t, handlers.RegisterHandler(users, hasher)(c), http.StatusInternalServerError)
	})
}

func TestRegisterPageHandler(t *testing.T) {
	e, r := newEcho()
	c, resp := httptestutil.Get(e, "/register")
	if err := handlers.RegisterPageHandler()(c); err != nil {
		t.Fatal(err)
	}
	if resp.Code != http.StatusOK || len(r.Rendered) != 1 || r.Rendered[0].Name != templates.Register {
		t.Errorf("unexpected response: %d %+v", resp.Code, r.Rendered)
	}
}

func TestLogoutHandler(t *testing.T) {
	t.Run("it ends the session and leads to the login page", func(t *testing.T) {
		e, _ := newEcho()
		sessions := &mockSessionManager{}
		sessions.Impl.Logout = func(echo.Context) error { return nil }

		c, resp := httptestutil.Post(e, "/logout", nil)
		if err := handlers.LogoutHandler(sessions)(c); err != nil {
			t.Fatal(err)
		}

		if sessions.Calls.Logout.Times() != 1 {
			t.Errorf("Logout is called %d times", sessions.Calls.Logout.Times())
		}
		if resp.Code != http.StatusSeeOther || resp.Header().Get("Location") != "/login" {
			t.Errorf("unexpected response: %d %s", resp.Code, resp.Header().Get("Location"))
		}
	})

	t.Run("failure is internal server error", func(t *testing.T) {
		e, _ := newEcho()
		sessions := &mockSessionManager{}
		sessions.Impl.Logout = func(echo.Context) error { return errors.New("db is down") }

		c, _ := httptestutil.Get(e, "/logout")
		assertHTTPError(t, handlers.LogoutHandler(sessions)(c), http.StatusInternalServerError)
	})
}
