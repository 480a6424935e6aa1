package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"superadmin/internal/backend"
	"superadmin/internal/session"
	"superadmin/internal/settings/models"
	"superadmin/internal/settings/tree"
	"superadmin/internal/web"
	dErrors "superadmin/pkg/domain-errors"
	"superadmin/pkg/requestcontext"
)

// fieldPrefix marks tree editor inputs; the rest of the name is the leaf's
// encoded path.
const fieldPrefix = "f:"

// Service is the default-settings surface.
type Service interface {
	List(ctx context.Context, token, search string) ([]models.Setting, error)
	Create(ctx context.Context, token string, in models.Create) error
	SetActive(ctx context.Context, token, id string, active bool) error
	UpdateFields(ctx context.Context, token, id string, edits map[string]string) error
	UpdateText(ctx context.Context, token, id string, typ models.Type, text string) error
	PermissionStructure(ctx context.Context, token string) (json.RawMessage, error)
}

type Handler struct {
	settings Service
	web      *web.Renderer
	logger   *slog.Logger
}

func New(settings Service, renderer *web.Renderer, logger *slog.Logger) *Handler {
	return &Handler{settings: settings, web: renderer, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/settings", h.handleList)
	r.Post("/settings", h.handleCreate)
	r.Post("/settings/{id}/active", h.handleSetActive)
	r.Post("/settings/{id}/value", h.handleUpdateValue)
}

// Page feeds templates/settings.html.
type Page struct {
	Search      string
	Edit        string
	Raw         bool
	Rows        []Row
	Permissions json.RawMessage
	Types       []models.Type
	Error       string
}

// Row is one setting plus what its editor needs.
type Row struct {
	models.Setting
	Editing bool
	Raw     bool
	Leaves  []tree.Leaf
	Pretty  string
	Display string
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := session.FromContext(ctx).Token
	page := Page{
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
		Edit:   r.URL.Query().Get("edit"),
		Raw:    r.URL.Query().Get("mode") == "raw",
		Types:  models.Types,
	}

	var items []models.Setting
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = h.settings.List(gctx, token, page.Search)
		return err
	})
	g.Go(func() error {
		perms, err := h.settings.PermissionStructure(gctx, token)
		if err != nil {
			if backend.IsSessionInvalidated(err) {
				return err
			}
			h.logger.WarnContext(ctx, "failed to load permission structure",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
			return nil
		}
		page.Permissions = perms
		return nil
	})
	if err := g.Wait(); err != nil {
		if h.web.EndSession(w, r, err) {
			return
		}
		h.logger.WarnContext(ctx, "failed to load settings",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		page.Error = messageOf(err, "Failed to load default settings")
	}
	for _, item := range items {
		page.Rows = append(page.Rows, rowFor(item, page.Edit == item.ID, page.Raw))
	}
	h.web.Render(w, r, http.StatusOK, web.PageSettings, page)
}

func rowFor(s models.Setting, editing, raw bool) Row {
	row := Row{Setting: s, Editing: editing, Display: display(s)}
	if !s.Type.Complex() {
		return row
	}
	n, err := tree.Parse(s.Value)
	if err != nil {
		// Not a document: only the raw editor can fix it.
		row.Raw = true
		row.Pretty = string(s.Value)
		return row
	}
	row.Raw = raw
	row.Leaves = n.Leaves()
	row.Pretty = n.Pretty()
	return row
}

// display is the table cell text: strings unquoted, everything else as JSON.
func display(s models.Setting) string {
	if s.Type == models.TypeString {
		var text string
		if json.Unmarshal(s.Value, &text) == nil {
			return text
		}
	}
	return string(s.Value)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	in := models.Create{
		Key:         r.PostFormValue("key"),
		Type:        models.Type(r.PostFormValue("type")),
		Value:       r.PostFormValue("value"),
		Description: strings.TrimSpace(r.PostFormValue("description")),
		IsActive:    r.PostFormValue("is_active") == "true",
	}
	if err := h.settings.Create(ctx, session.FromContext(ctx).Token, in); err != nil {
		h.fail(w, r, err, "Failed to add setting", "/settings")
		return
	}
	h.web.Toast(w, r, session.ToastSuccess, "Default setting added successfully")
	h.web.Redirect(w, r, "/settings")
}

func (h *Handler) handleSetActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	active := r.PostFormValue("is_active") == "true"
	if err := h.settings.SetActive(ctx, session.FromContext(ctx).Token, id, active); err != nil {
		h.fail(w, r, err, "Failed to update status", listURL(r.PostFormValue("search"), ""))
		return
	}
	h.web.Toast(w, r, session.ToastSuccess, "Status updated successfully")
	h.web.Redirect(w, r, listURL(r.PostFormValue("search"), ""))
}

// handleUpdateValue saves one of three editors: the leaf form of a json or
// array setting, its raw JSON text, or the single input of a scalar.
func (h *Handler) handleUpdateValue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	token := session.FromContext(ctx).Token
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, dErrors.Wrap(err, dErrors.CodeBadRequest, "Invalid form"), "Failed to update setting", "/settings")
		return
	}
	search := r.PostForm.Get("search")
	typ := models.Type(r.PostForm.Get("type"))

	var err error
	back := listURL(search, id)
	switch r.PostForm.Get("mode") {
	case "tree":
		err = h.settings.UpdateFields(ctx, token, id, treeEdits(r.PostForm))
	case "raw":
		back += "&mode=raw"
		err = h.settings.UpdateText(ctx, token, id, typ, r.PostForm.Get("raw"))
	default:
		err = h.settings.UpdateText(ctx, token, id, typ, r.PostForm.Get("value"))
	}
	if err != nil {
		h.fail(w, r, err, "Failed to update setting", back)
		return
	}
	h.web.Toast(w, r, session.ToastSuccess, "Setting updated successfully")
	h.web.Redirect(w, r, listURL(search, ""))
}

func treeEdits(form url.Values) map[string]string {
	edits := map[string]string{}
	for name, values := range form {
		path, ok := strings.CutPrefix(name, fieldPrefix)
		if !ok || len(values) == 0 {
			continue
		}
		edits[path] = values[len(values)-1]
	}
	return edits
}

func listURL(search, edit string) string {
	v := url.Values{}
	if search != "" {
		v.Set("search", search)
	}
	if edit != "" {
		v.Set("edit", edit)
	}
	if len(v) == 0 {
		return "/settings"
	}
	return "/settings?" + v.Encode()
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, fallback, back string) {
	if h.web.EndSession(w, r, err) {
		return
	}
	if !dErrors.HasCode(err, dErrors.CodeValidation) {
		h.logger.WarnContext(r.Context(), fallback,
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
	}
	h.web.Toast(w, r, session.ToastError, messageOf(err, fallback))
	h.web.Redirect(w, r, back)
}

func messageOf(err error, fallback string) string {
	if msg := backend.MessageOf(err, ""); msg != "" {
		return msg
	}
	return dErrors.MessageOf(err, fallback)
}
