// Package web renders the portal's server-side pages from embedded
// templates and owns the page-level response helpers shared by handlers.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"superadmin/internal/backend"
	"superadmin/internal/session"
	"superadmin/pkg/requestcontext"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page names. Each has templates/<name>.html defining "title" and "content";
// partials.html is shared by all of them.
const (
	PageLogin     = "login"
	PageVerify    = "verify_2fa"
	PageSetup2FA  = "setup_2fa"
	PageDashboard = "dashboard"
	PageHealth    = "health"
	PageUsers     = "users"
	PageUser      = "user"
	PageProjects  = "projects"
	PageProject   = "project"
	PageSettings  = "settings"
	PageDocs      = "docs"
	PageError     = "error"
)

var pages = []string{
	PageLogin, PageVerify, PageSetup2FA, PageDashboard, PageHealth,
	PageUsers, PageUser, PageProjects, PageProject, PageSettings,
	PageDocs, PageError,
}

// Toaster carries one-shot notifications across a redirect.
type Toaster interface {
	AddToast(w http.ResponseWriter, r *http.Request, kind, message string)
	Toasts(w http.ResponseWriter, r *http.Request) []session.Toast
}

// SessionEnder clears the session cookie.
type SessionEnder interface {
	Destroy(w http.ResponseWriter)
}

// View is the data every page template receives.
type View struct {
	Path      string
	SignedIn  bool
	Session   session.Snapshot
	Toasts    []session.Toast
	RequestID string
	Data      any
}

type Renderer struct {
	pages    map[string]*template.Template
	toaster  Toaster
	sessions SessionEnder
	logger   *slog.Logger
}

// New parses every page against the shared layout up front so a broken
// template fails startup instead of a request.
func New(toaster Toaster, sessions SessionEnder, logger *slog.Logger) (*Renderer, error) {
	rd := &Renderer{
		pages:    make(map[string]*template.Template, len(pages)),
		toaster:  toaster,
		sessions: sessions,
		logger:   logger,
	}
	for _, name := range pages {
		tmpl, err := template.New("base.html").Funcs(funcMap()).ParseFS(templateFS,
			"templates/base.html",
			"templates/partials.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		rd.pages[name] = tmpl
	}
	return rd, nil
}

// Render executes page into a buffer first so a template error becomes a
// clean 500 rather than a half-written page.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	ctx := r.Context()
	tmpl, ok := rd.pages[page]
	if !ok {
		rd.logger.ErrorContext(ctx, "unknown page", "page", page)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	snap := session.FromContext(ctx)
	view := View{
		Path:      r.URL.Path,
		SignedIn:  snap.Authenticated(),
		Session:   snap,
		RequestID: requestcontext.RequestID(ctx),
		Data:      data,
	}
	if rd.toaster != nil {
		view.Toasts = rd.toaster.Toasts(w, r)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", view); err != nil {
		rd.logger.ErrorContext(ctx, "failed to render page",
			"page", page,
			"request_id", view.RequestID,
			"error", err,
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Toast queues a notification for the next page.
func (rd *Renderer) Toast(w http.ResponseWriter, r *http.Request, kind, message string) {
	if rd.toaster != nil {
		rd.toaster.AddToast(w, r, kind, message)
	}
}

// Redirect sends the browser to location after a form post.
func (rd *Renderer) Redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// EndSession handles the forced-logout outcome of a backend call. When err
// invalidated the session the cookie is cleared, the browser is sent to
// /login and true is returned; callers stop there without any message.
func (rd *Renderer) EndSession(w http.ResponseWriter, r *http.Request, err error) bool {
	if !backend.IsSessionInvalidated(err) {
		return false
	}
	if rd.sessions != nil {
		rd.sessions.Destroy(w)
	}
	http.Redirect(w, r, "/login", http.StatusFound)
	return true
}

// ErrorData feeds the error page.
type ErrorData struct {
	Status  int
	Message string
	Back    string
}

func (rd *Renderer) Error(w http.ResponseWriter, r *http.Request, status int, message, back string) {
	rd.Render(w, r, status, PageError, ErrorData{Status: status, Message: message, Back: back})
}

func (rd *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	rd.Error(w, r, http.StatusNotFound, "Page not found", "/")
}

// Static serves the embedded assets under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
