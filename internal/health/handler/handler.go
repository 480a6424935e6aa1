package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"superadmin/internal/health/models"
	"superadmin/internal/session"
	"superadmin/internal/web"
	dErrors "superadmin/pkg/domain-errors"
	"superadmin/pkg/requestcontext"
)

type Service interface {
	Check(ctx context.Context, token string) (models.Snapshot, error)
}

type Handler struct {
	health Service
	web    *web.Renderer
	logger *slog.Logger
}

func New(health Service, renderer *web.Renderer, logger *slog.Logger) *Handler {
	return &Handler{health: health, web: renderer, logger: logger}
}

// Register mounts the dashboard and the full health page.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleDashboard)
	r.Get("/health", h.handleHealth)
}

// Page feeds both the dashboard widget and templates/health.html.
type Page struct {
	Health models.Snapshot
	Error  string
}

// Loaded reports whether there is a report to show.
func (p Page) Loaded() bool {
	return p.Error == ""
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	h.web.Render(w, r, http.StatusOK, web.PageDashboard, h.load(r))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.web.Render(w, r, http.StatusOK, web.PageHealth, h.load(r))
}

func (h *Handler) load(r *http.Request) Page {
	ctx := r.Context()
	snap, err := h.health.Check(ctx, session.FromContext(ctx).Token)
	if err != nil {
		h.logger.WarnContext(ctx, "health check unavailable",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return Page{Error: dErrors.MessageOf(err, "Health data unavailable")}
	}
	return Page{Health: snap}
}
