package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/opst/contactbook/cmd/contactd/handlers"
	"github.com/opst/contactbook/cmd/contactd/templates"
	contactbook "github.com/opst/contactbook/pkg"
	"github.com/opst/contactbook/pkg/auth/session"
	"github.com/opst/contactbook/pkg/echoutil"
	werr "github.com/opst/contactbook/pkg/web/errors"
)

const paramProfileId = "id"

func BuildServer(cb contactbook.Contactbook, loglevel string) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	echoutil.SetLevel(e, loglevel)

	renderer, err := templates.NewRenderer()
	if err != nil {
		return nil, err
	}
	e.Renderer = renderer
	e.HTTPErrorHandler = werr.Handler(e, templates.Error)

	e.Use(echoutil.LogHandlerFunc)

	db := cb.Database()
	sessions := cb.Sessions()
	gate := sessions.Authenticate

	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusSeeOther, handlers.MenuPath)
	})
	e.GET("/healthz", handlers.HealthzHandler(db.Ping))

	e.GET(session.LoginPath, handlers.LoginPageHandler())
	e.POST(session.LoginPath, handlers.LoginHandler(db.Users(), cb.Passwords(), sessions))
	e.GET("/register", handlers.RegisterPageHandler())
	e.POST("/register", handlers.RegisterHandler(db.Users(), cb.Passwords()))

	logout := handlers.LogoutHandler(sessions)
	e.GET("/logout", logout, gate)
	e.POST("/logout", logout, gate)

	e.GET(handlers.MenuPath, handlers.MenuHandler(db.Profiles()), gate)
	e.POST("/add", handlers.AddProfileHandler(db.Profiles()), gate)
	e.POST("/edit/:"+paramProfileId, handlers.EditProfileHandler(db.Profiles(), paramProfileId), gate)

	del := handlers.DeleteProfileHandler(db.Profiles(), paramProfileId)
	e.GET("/delete/:"+paramProfileId, del, gate)
	e.POST("/delete/:"+paramProfileId, del, gate)

	return e, nil
}
