package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/opst/contactbook/cmd/contactd/templates"
	"github.com/opst/contactbook/pkg/auth/session"
	kdb "github.com/opst/contactbook/pkg/db"
	werr "github.com/opst/contactbook/pkg/web/errors"
)

// MenuPage is the data of the menu page.
type MenuPage struct {
	User     kdb.User
	Profiles []kdb.Profile
}

func MenuHandler(profiles kdb.ProfileInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := currentUser(c)
		if err != nil {
			return err
		}

		found, err := profiles.Find(c.Request().Context(), user.Id)
		if err != nil {
			return werr.InternalServerError(err)
		}

		return c.Render(http.StatusOK, templates.Menu, MenuPage{User: user, Profiles: found})
	}
}

func AddProfileHandler(profiles kdb.ProfileInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := currentUser(c)
		if err != nil {
			return err
		}

		if _, err := profiles.Add(c.Request().Context(), user.Id, profileBody(c)); err != nil {
			return werr.InternalServerError(err)
		}
		return c.Redirect(http.StatusSeeOther, MenuPath)
	}
}

// EditProfileHandler overwrites the profile with id in path parameter paramKey.
//
// Profiles of other users are not found.
func EditProfileHandler(profiles kdb.ProfileInterface, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := currentUser(c)
		if err != nil {
			return err
		}
		id, err := profileId(c, paramKey)
		if err != nil {
			return err
		}

		if _, err := profiles.Update(c.Request().Context(), user.Id, id, profileBody(c)); errors.Is(err, kdb.ErrMissing) {
			return werr.NotFound()
		} else if err != nil {
			return werr.InternalServerError(err)
		}
		return c.Redirect(http.StatusSeeOther, MenuPath)
	}
}

// DeleteProfileHandler deletes the profile with id in path parameter paramKey.
//
// Profiles of other users are not found.
func DeleteProfileHandler(profiles kdb.ProfileInterface, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := currentUser(c)
		if err != nil {
			return err
		}
		id, err := profileId(c, paramKey)
		if err != nil {
			return err
		}

		if err := profiles.Delete(c.Request().Context(), user.Id, id); errors.Is(err, kdb.ErrMissing) {
			return werr.NotFound()
		} else if err != nil {
			return werr.InternalServerError(err)
		}
		return c.Redirect(http.StatusSeeOther, MenuPath)
	}
}

// currentUser returns the user passed the login gate.
//
// Handlers calling this should be behind session.Manager.Authenticate.
func currentUser(c echo.Context) (kdb.User, error) {
	user, ok := session.User(c)
	if !ok {
		return kdb.User{}, werr.InternalServerError(errors.New("handler is not behind the login gate"))
	}
	return user, nil
}

// profileId parses the id in path. Non-numeric ids are not found.
func profileId(c echo.Context, paramKey string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(paramKey), 10, 64)
	if err != nil {
		return 0, werr.NewErrorMessage(http.StatusNotFound, "not found", werr.WithError(err))
	}
	return id, nil
}

// profileBody reads a profile from the form. Missing fields are empty.
func profileBody(c echo.Context) kdb.ProfileBody {
	return kdb.ProfileBody{
		FullName: c.FormValue("full_name"),
		Email:    c.FormValue("email"),
		Phone:    c.FormValue("phone"),
		Comment:  c.FormValue("comment"),
	}
}
