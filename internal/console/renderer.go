package console

import (
	"bytes"
	"embed"
	"html/template"
	"log"
	"net/http"
	"strings"

	"github.com/ansycloud/console/sdk/authn"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
)

//go:embed templates/*.html
var templatesFS embed.FS

var (
	markdown  = goldmark.New()
	sanitizer = bluemonday.UGCPolicy()
)

// Page is what every template is rendered with.
type Page struct {
	Title string
	// Error, if set, is displayed inline above the page's content.
	Error string
	// Authenticated is filled in by the Renderer from the session.
	Authenticated bool
	// LoginPath is filled in by the Renderer.
	LoginPath string
	Data      interface{}
}

// Renderer renders page templates in the console's common layout.
type Renderer struct {
	base      *template.Template
	session   authn.StateReader
	loginPath string
}

// NewRenderer returns a Renderer that consults the given session to decide
// what the layout's navigation shows.
func NewRenderer(session authn.StateReader, loginPath string) (*Renderer, error) {
	base, err := template.New("").
		Funcs(template.FuncMap{
			"join":     strings.Join,
			"markdown": renderMarkdown,
		}).
		ParseFS(templatesFS, "templates/base.html")
	if err != nil {
		return nil, errors.Wrap(err, "error parsing base template")
	}
	return &Renderer{
		base:      base,
		session:   session,
		loginPath: loginPath,
	}, nil
}

// Render writes the named page template, wrapped in the common layout, with
// the given status code. The page is rendered completely before anything is
// written so that a template error can still be reported properly.
func (r *Renderer) Render(
	w http.ResponseWriter,
	req *http.Request,
	statusCode int,
	name string,
	page Page,
) {
	page.Authenticated = r.session.State().Authenticated
	page.LoginPath = r.loginPath
	buf := &bytes.Buffer{}
	if err := r.execute(buf, name, page); err != nil {
		log.Println(err)
		http.Error(w, "An internal server error occurred.", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)
	if _, err := buf.WriteTo(w); err != nil {
		log.Println(errors.Wrap(err, "error writing response body"))
	}
}

func (r *Renderer) execute(buf *bytes.Buffer, name string, page Page) error {
	// Each page defines its own "content" block, so every page is parsed into
	// its own copy of the base template.
	tmpl, err := r.base.Clone()
	if err != nil {
		return errors.Wrap(err, "error cloning base template")
	}
	if _, err = tmpl.ParseFS(templatesFS, "templates/"+name); err != nil {
		return errors.Wrapf(err, "error parsing template %s", name)
	}
	if err = tmpl.ExecuteTemplate(buf, "base", page); err != nil {
		return errors.Wrapf(err, "error executing template %s", name)
	}
	return nil
}

// renderMarkdown converts markdown written by users, such as Script
// descriptions, to sanitized HTML. If the markdown can't be converted, it is
// shown as escaped text.
func renderMarkdown(src string) template.HTML {
	buf := &bytes.Buffer{}
	if err := markdown.Convert([]byte(src), buf); err != nil {
		log.Println(errors.Wrap(err, "error converting markdown"))
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes()))
}
