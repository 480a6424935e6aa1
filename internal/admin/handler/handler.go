package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"superadmin/internal/admin/models"
	adminService "superadmin/internal/admin/service"
	"superadmin/internal/backend"
	"superadmin/internal/session"
	"superadmin/internal/web"
	dErrors "superadmin/pkg/domain-errors"
	"superadmin/pkg/requestcontext"
)

// Service is the users and projects surface behind the admin pages.
type Service interface {
	ListUsers(ctx context.Context, token string, q models.ListQuery) (models.Page[models.User], error)
	GetUser(ctx context.Context, token, id string) (models.User, error)
	ToggleUserStatus(ctx context.Context, token, id string) error
	DeleteUser(ctx context.Context, token, id string) error
	ListProjects(ctx context.Context, token string, q models.ListQuery) (models.Page[models.Project], error)
	GetProject(ctx context.Context, token, id string) (models.ProjectDetail, error)
	UpdateProject(ctx context.Context, token, id string, action adminService.ProjectAction) error
	DeleteProject(ctx context.Context, token, id string) error
}

type Handler struct {
	admin  Service
	web    *web.Renderer
	logger *slog.Logger
}

func New(admin Service, renderer *web.Renderer, logger *slog.Logger) *Handler {
	return &Handler{admin: admin, web: renderer, logger: logger}
}

// Register mounts the user and project pages. Mutations are form posts that
// redirect back so the page re-fetches authoritative state.
func (h *Handler) Register(r chi.Router) {
	r.Get("/users", h.handleListUsers)
	r.Get("/users/{id}", h.handleGetUser)
	r.Post("/users/{id}/toggle-status", h.handleToggleUser)
	r.Post("/users/{id}/delete", h.handleDeleteUser)

	r.Get("/projects", h.handleListProjects)
	r.Get("/projects/{id}", h.handleGetProject)
	r.Post("/projects/{id}/status", h.handleUpdateProject)
	r.Post("/projects/{id}/delete", h.handleDeleteProject)
}

// ListPage feeds the users and projects list templates.
type ListPage[T any] struct {
	Base   string
	Query  models.ListQuery
	Result models.Page[T]
	Error  string
}

// SortLink toggles the order when field is already the sort column.
func (p ListPage[T]) SortLink(field string) string {
	q := p.Query
	if q.Sort == field && q.Order == "asc" {
		q.Order = "desc"
	} else {
		q.Order = "asc"
	}
	q.Sort = field
	q.Page = 1
	return p.Base + "?" + q.Values().Encode()
}

// PageLink keeps every filter and moves to page n.
func (p ListPage[T]) PageLink(n int) string {
	q := p.Query
	q.Page = n
	return p.Base + "?" + q.Values().Encode()
}

// Self is the current list URL, used as the return target of row actions.
func (p ListPage[T]) Self() string {
	return p.PageLink(p.Query.Page)
}

func queryFrom(r *http.Request) models.ListQuery {
	v := r.URL.Query()
	page, _ := strconv.Atoi(v.Get("page"))
	limit, _ := strconv.Atoi(v.Get("limit"))
	return models.ListQuery{
		Page:     page,
		Limit:    limit,
		Sort:     v.Get("sort"),
		Order:    v.Get("order"),
		Search:   strings.TrimSpace(v.Get("search")),
		Role:     v.Get("role"),
		Status:   v.Get("status"),
		IsActive: v.Get("is_active"),
	}
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snap := session.FromContext(ctx)
	q := adminService.NormalizeUserQuery(queryFrom(r))

	result, err := h.admin.ListUsers(ctx, snap.Token, q)
	page := ListPage[models.User]{Base: "/users", Query: q, Result: result}
	if err != nil {
		if h.web.EndSession(w, r, err) {
			return
		}
		h.logFailure(ctx, "failed to list users", err)
		page.Error = messageOf(err, "Failed to load users")
	}
	h.web.Render(w, r, http.StatusOK, web.PageUsers, page)
}

// UserPage feeds templates/user.html.
type UserPage struct {
	User models.User
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.idParam(w, r, "/users")
	if !ok {
		return
	}
	user, err := h.admin.GetUser(ctx, session.FromContext(ctx).Token, id)
	if err != nil {
		h.renderLoadError(w, r, err, "Failed to load user", "/users")
		return
	}
	h.web.Render(w, r, http.StatusOK, web.PageUser, UserPage{User: user})
}

func (h *Handler) handleToggleUser(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "/users", func(ctx context.Context, token, id string) (string, error) {
		return "User status updated", h.admin.ToggleUserStatus(ctx, token, id)
	}, "Failed to update user status")
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	h.mutateTo(w, r, "/users", "/users", func(ctx context.Context, token, id string) (string, error) {
		return "User deleted", h.admin.DeleteUser(ctx, token, id)
	}, "Failed to delete user")
}

func (h *Handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snap := session.FromContext(ctx)
	q := adminService.NormalizeProjectQuery(queryFrom(r))

	result, err := h.admin.ListProjects(ctx, snap.Token, q)
	page := ListPage[models.Project]{Base: "/projects", Query: q, Result: result}
	if err != nil {
		if h.web.EndSession(w, r, err) {
			return
		}
		h.logFailure(ctx, "failed to list projects", err)
		page.Error = messageOf(err, "Failed to load projects")
	}
	h.web.Render(w, r, http.StatusOK, web.PageProjects, page)
}

// ProjectPage feeds templates/project.html.
type ProjectPage struct {
	models.ProjectDetail
}

func (h *Handler) handleGetProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.idParam(w, r, "/projects")
	if !ok {
		return
	}
	detail, err := h.admin.GetProject(ctx, session.FromContext(ctx).Token, id)
	if err != nil {
		h.renderLoadError(w, r, err, "Failed to load project", "/projects")
		return
	}
	h.web.Render(w, r, http.StatusOK, web.PageProject, ProjectPage{ProjectDetail: detail})
}

func (h *Handler) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "/projects", func(ctx context.Context, token, id string) (string, error) {
		action := adminService.ProjectAction(r.PostFormValue("action"))
		return action.Done(), h.admin.UpdateProject(ctx, token, id, action)
	}, "Failed to update project")
}

func (h *Handler) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	h.mutateTo(w, r, "/projects", "/projects", func(ctx context.Context, token, id string) (string, error) {
		return "Project deleted", h.admin.DeleteProject(ctx, token, id)
	}, "Failed to delete project")
}

type mutation func(ctx context.Context, token, id string) (string, error)

// mutate runs a row action and returns to the page that posted it.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, list string, run mutation, failure string) {
	h.mutateTo(w, r, list, "", run, failure)
}

// mutateTo runs a row action, records the outcome as a toast and redirects.
// An empty target means the form's return field, then the list.
func (h *Handler) mutateTo(w http.ResponseWriter, r *http.Request, list, target string, run mutation, failure string) {
	ctx := r.Context()
	id, ok := h.idParam(w, r, list)
	if !ok {
		return
	}
	if target == "" {
		target = safeReturn(r.PostFormValue("return"), list)
	}

	done, err := run(ctx, session.FromContext(ctx).Token, id)
	if err != nil {
		if h.web.EndSession(w, r, err) {
			return
		}
		h.logFailure(ctx, failure, err)
		h.web.Toast(w, r, session.ToastError, messageOf(err, failure))
		h.web.Redirect(w, r, safeReturn(r.PostFormValue("return"), list))
		return
	}
	h.web.Toast(w, r, session.ToastSuccess, done)
	h.web.Redirect(w, r, target)
}

// idParam passes any non-empty id through; the backend decides whether it exists.
func (h *Handler) idParam(w http.ResponseWriter, r *http.Request, back string) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		h.web.Error(w, r, http.StatusNotFound, "Not found", back)
		return "", false
	}
	return id, true
}

func (h *Handler) renderLoadError(w http.ResponseWriter, r *http.Request, err error, fallback, back string) {
	if h.web.EndSession(w, r, err) {
		return
	}
	status := http.StatusBadGateway
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		status = http.StatusNotFound
	} else {
		h.logFailure(r.Context(), fallback, err)
	}
	h.web.Error(w, r, status, messageOf(err, fallback), back)
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
}

// messageOf prefers the backend's error text, then the service's message.
func messageOf(err error, fallback string) string {
	if msg := backend.MessageOf(err, ""); msg != "" {
		return msg
	}
	return dErrors.MessageOf(err, fallback)
}

// safeReturn only allows local paths so a form cannot redirect off-site.
func safeReturn(raw, fallback string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, "\\") {
		return fallback
	}
	if u, err := url.Parse(raw); err != nil || u.Host != "" || u.Scheme != "" {
		return fallback
	}
	return raw
}
