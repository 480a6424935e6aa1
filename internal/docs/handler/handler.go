package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"superadmin/internal/docs"
	"superadmin/internal/web"
)

type Handler struct {
	catalog     *docs.Catalog
	broadcaster docs.Broadcaster
	web         *web.Renderer
}

func New(catalog *docs.Catalog, broadcaster docs.Broadcaster, renderer *web.Renderer) *Handler {
	return &Handler{catalog: catalog, broadcaster: broadcaster, web: renderer}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs/websocket-events", http.StatusFound)
	})
	r.Get("/docs/websocket-events", h.handleEvents)
}

// Page feeds templates/docs.html.
type Page struct {
	*docs.Catalog
	Broadcaster docs.Broadcaster
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	h.web.Render(w, r, http.StatusOK, web.PageDocs, Page{Catalog: h.catalog, Broadcaster: h.broadcaster})
}
