package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/opst/contactbook/cmd/contactd/templates"
	"github.com/opst/contactbook/pkg/auth/password"
	"github.com/opst/contactbook/pkg/auth/session"
	kdb "github.com/opst/contactbook/pkg/db"
	werr "github.com/opst/contactbook/pkg/web/errors"
)

// MenuPath is the landing page after login.
const MenuPath = "/menu"

// LoginPage is the data of the login page.
type LoginPage struct {
	// where to go after login
	Next string

	// last username tried
	Username string

	Error string
}

const messageBadLogin = "invalid username or password"

func LoginPageHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, templates.Login, LoginPage{
			Next: c.QueryParam("next"),
		})
	}
}

// LoginHandler authenticates the user with username and password in the form.
//
// Bad credentials are not an error: the login page is shown again with a message.
func LoginHandler(
	users kdb.UserInterface,
	hasher password.Hasher,
	sessions session.Manager,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		username := c.FormValue("username")
		next := c.FormValue("next")

		retry := func() error {
			return c.Render(http.StatusOK, templates.Login, LoginPage{
				Next: next, Username: username, Error: messageBadLogin,
			})
		}

		user, err := users.GetByName(ctx, username)
		if errors.Is(err, kdb.ErrMissing) {
			return retry()
		} else if err != nil {
			return werr.InternalServerError(err)
		}

		if err := hasher.Verify(user.PasswordHash, c.FormValue("password")); errors.Is(err, password.ErrMismatch) {
			return retry()
		} else if err != nil {
			return werr.InternalServerError(err)
		}

		if err := sessions.Login(c, user); err != nil {
			return werr.InternalServerError(err)
		}
		return c.Redirect(http.StatusSeeOther, session.Next(next, MenuPath))
	}
}

func RegisterPageHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, templates.Register, nil)
	}
}

// RegisterHandler creates a new user, and sends the client to the login page.
func RegisterHandler(users kdb.UserInterface, hasher password.Hasher) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		username := c.FormValue("username")

		hash, err := hasher.Hash(c.FormValue("password"))
		if err != nil {
			return werr.InternalServerError(err)
		}

		if _, err := users.Register(ctx, username, hash); errors.Is(err, kdb.ErrConflict) {
			return werr.BadRequest("username is already taken", err)
		} else if err != nil {
			return werr.InternalServerError(err)
		}

		return c.Redirect(http.StatusSeeOther, session.LoginPath)
	}
}

func LogoutHandler(sessions session.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := sessions.Logout(c); err != nil {
			return werr.InternalServerError(err)
		}
		return c.Redirect(http.StatusSeeOther, session.LoginPath)
	}
}
