package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/gorilla/csrf"

	"staffdesk/internal/domain/employees"
	"staffdesk/internal/platform/requestctx"
)

//go:embed templates/*.html
var templateFiles embed.FS

const layoutFile = "templates/layout.html"

// Page is the data every template receives.
type Page struct {
	Title     string
	LoggedIn  bool
	Username  string
	RequestID string
	Flashes   []Flash
	CSRFField template.HTML
	Form      url.Values
	Errors    map[string][]string
	Data      any
}

func (p Page) FieldErrors(field string) []string {
	return p.Errors[field]
}

type Renderer struct {
	pages    map[string]*template.Template
	sessions *Sessions
}

var funcs = template.FuncMap{
	"roles":       employees.Roles,
	"departments": employees.Departments,
	"date": func(value *time.Time) string {
		if value == nil {
			return ""
		}
		return value.Format("2006-01-02")
	},
	"rating": func(value *int) string {
		if value == nil {
			return ""
		}
		return fmt.Sprint(*value)
	},
}

func NewRenderer(sessions *Sessions) (*Renderer, error) {
	names, err := fs.Glob(templateFiles, "templates/*.html")
	if err != nil {
		return nil, err
	}
	pages := map[string]*template.Template{}
	for _, name := range names {
		if name == layoutFile {
			continue
		}
		tpl, err := template.New(path.Base(name)).Funcs(funcs).ParseFS(templateFiles, layoutFile, name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[strings.TrimSuffix(path.Base(name), ".html")] = tpl
	}
	return &Renderer{pages: pages, sessions: sessions}, nil
}

// Render writes the named page inside the layout. Pending flashes are consumed
// unless the caller already supplied them.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name string, page Page) {
	tpl, ok := rd.pages[name]
	if !ok {
		slog.Error("unknown template", "name", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	page.CSRFField = csrf.TemplateField(r)
	page.RequestID = requestctx.GetRequestID(r.Context())
	if identity, ok := requestctx.GetIdentity(r.Context()); ok {
		page.LoggedIn = true
		page.Username = identity.Username
	}
	if page.Flashes == nil && rd.sessions != nil {
		page.Flashes = rd.sessions.Flashes(w, r)
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "layout", page); err != nil {
		slog.Error("render failed", "template", name, "err", err, "requestId", page.RequestID)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// RenderError shows the generic error page with the status text as title.
func (rd *Renderer) RenderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	rd.Render(w, r, status, "error", Page{
		Title: http.StatusText(status),
		Data:  message,
	})
}

// Status returns a handler that renders the error page with a fixed status.
func (rd *Renderer) Status(status int, message string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rd.RenderError(w, r, status, message)
	})
}
