// Package guard decides, per navigation, whether a page request proceeds or
// is redirected based only on the path and whether a session exists.
package guard

import (
	"log/slog"
	"net/http"
	"strings"

	"superadmin/internal/session"
	"superadmin/pkg/requestcontext"
)

// Redirect targets.
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Never intercepted: assets, the JSON API and operational endpoints.
var allowPrefixes = []string{
	"/api/",
	"/static/",
	"/favicon",
	"/images",
	"/metrics",
	"/healthz",
}

// Reachable without a session. An operator who already has one is sent home.
var publicPrefixes = []string{
	"/login",
	"/verify-2fa",
}

// Action is the outcome of a guard decision.
type Action int

const (
	Pass Action = iota
	RedirectLogin
	RedirectHome
)

func (a Action) String() string {
	switch a {
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	default:
		return "pass"
	}
}

// Decision pairs the action with its redirect location, if any.
type Decision struct {
	Action   Action
	Location string
}

// Decide is pure: the same path and authentication state always yield the
// same decision.
func Decide(path string, authenticated bool) Decision {
	if hasPrefix(path, allowPrefixes) {
		return Decision{Action: Pass}
	}
	public := hasPrefix(path, publicPrefixes)
	switch {
	case !authenticated && !public:
		return Decision{Action: RedirectLogin, Location: LoginPath}
	case authenticated && public:
		return Decision{Action: RedirectHome, Location: HomePath}
	default:
		return Decision{Action: Pass}
	}
}

// IsPublic reports whether path is a login-flow page.
func IsPublic(path string) bool {
	return hasPrefix(path, publicPrefixes)
}

func hasPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Middleware applies Decide using the snapshot injected by session.Provider,
// so it must be mounted after it.
func Middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			snap := session.FromContext(ctx)
			d := Decide(r.URL.Path, snap.Authenticated())
			if d.Action == Pass {
				next.ServeHTTP(w, r)
				return
			}
			logger.DebugContext(ctx, "guard redirect",
				"path", r.URL.Path,
				"action", d.Action.String(),
				"expired", snap.Expired,
				"request_id", requestcontext.RequestID(ctx),
			)
			http.Redirect(w, r, d.Location, http.StatusFound)
		})
	}
}
