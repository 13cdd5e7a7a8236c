package echoutil

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/labstack/echo/v4"
)

// Renderer renders pages written in html/template.
//
// Each page is parsed together with the layout, and rendered by executing
// the template named "layout".
type Renderer struct {
	pages map[string]*template.Template
}

var _ echo.Renderer = &Renderer{}

// NewRenderer parses layout and pages in fsys.
//
// Pages are named by their file path in fsys.
func NewRenderer(fsys fs.FS, layout string, pages ...string) (*Renderer, error) {
	r := &Renderer{pages: map[string]*template.Template{}}
	for _, p := range pages {
		t, err := template.ParseFS(fsys, layout, p)
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", p, err)
		}
		r.pages[p] = t
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page: %s", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
