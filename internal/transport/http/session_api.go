package httptransport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"superadmin/internal/auth/models"
	"superadmin/internal/backend"
	"superadmin/internal/session"
	dErrors "superadmin/pkg/domain-errors"
	"superadmin/pkg/platform/httputil"
	"superadmin/pkg/requestcontext"
)

const (
	proxyPrefix       = "/api/proxy"
	maxProxyBodyBytes = 1 << 20
	headerProjectID   = "X-Project-ID"
)

// Forwarder relays a raw JSON call to the backend.
type Forwarder interface {
	Forward(ctx context.Context, req backend.Request, body []byte) (int, []byte, error)
}

// SessionEnder clears the session cookie.
type SessionEnder interface {
	Destroy(w http.ResponseWriter)
}

// SessionAPI serves the JSON session endpoints and the authenticated backend
// proxy used by in-page widgets.
type SessionAPI struct {
	sessions SessionEnder
	backend  Forwarder
	logger   *slog.Logger
}

func NewSessionAPI(sessions SessionEnder, fwd Forwarder, logger *slog.Logger) *SessionAPI {
	return &SessionAPI{sessions: sessions, backend: fwd, logger: logger}
}

func (a *SessionAPI) Register(r chi.Router) {
	r.Get("/api/session", a.handleSession)
	r.Post("/api/session/refresh", a.handleSession)
	r.HandleFunc(proxyPrefix+"/*", a.handleProxy)
}

// SessionResponse never carries the backend token.
type SessionResponse struct {
	Authenticated bool                   `json:"authenticated"`
	Expired       bool                   `json:"expired,omitempty"`
	User          *models.MinimalProfile `json:"user,omitempty"`
	LastActivity  *time.Time             `json:"last_activity,omitempty"`
	ExpiresAt     *time.Time             `json:"expires_at,omitempty"`
}

func sessionResponse(s session.Snapshot) SessionResponse {
	resp := SessionResponse{Authenticated: s.Authenticated(), Expired: s.Expired}
	if !resp.Authenticated {
		return resp
	}
	user := s.User
	last, exp := s.LastActivity, s.ExpiresAt
	resp.User = &user
	resp.LastActivity = &last
	resp.ExpiresAt = &exp
	return resp
}

// handleSession answers both the read and the refresh: the session loader
// has already slid the window and re-issued the cookie for this request.
func (a *SessionAPI) handleSession(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	httputil.WriteJSON(w, http.StatusOK, sessionResponse(session.FromContext(r.Context())))
}

func (a *SessionAPI) handleProxy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snap := session.FromContext(ctx)
	if !snap.Authenticated() {
		httputil.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	path := "/" + strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if strings.Contains(path, "..") {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid proxy path"))
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxProxyBodyBytes))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "unreadable request body"))
		return
	}

	status, payload, err := a.backend.Forward(ctx, backend.Request{
		Method:    r.Method,
		Path:      path,
		Query:     r.URL.Query(),
		Token:     snap.Token,
		ProjectID: r.Header.Get(headerProjectID),
	}, body)
	switch {
	case backend.IsSessionInvalidated(err):
		a.sessions.Destroy(w)
		httputil.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "session_expired"})
		return
	case err != nil && status == 0:
		a.logger.WarnContext(ctx, "proxy request failed",
			"path", path,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
