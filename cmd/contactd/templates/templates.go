// Package templates holds html pages of contactd.
package templates

import (
	"embed"

	"github.com/opst/contactbook/pkg/echoutil"
)

//go:embed *.html
var FS embed.FS

const (
	Layout = "layout.html"

	Login    = "login.html"
	Register = "register.html"
	Menu     = "menu.html"
	Error    = "error.html"
)

// NewRenderer returns renderer of all pages.
func NewRenderer() (*echoutil.Renderer, error) {
	return echoutil.NewRenderer(FS, Layout, Login, Register, Menu, Error)
}
