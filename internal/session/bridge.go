// Package session turns backend credentials into a signed cookie session
// with sliding expiration, and exposes an immutable snapshot per request.
package session

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"superadmin/internal/auth/models"
	audit "superadmin/pkg/platform/audit"
	dErrors "superadmin/pkg/domain-errors"
	"superadmin/pkg/requestcontext"
)

// CookieName holds the signed session JWT.
const CookieName = "portal_session"

// Snapshot is one request's read-only view of the session.
type Snapshot struct {
	Token        string
	User         models.MinimalProfile
	LastActivity time.Time
	ExpiresAt    time.Time
	// Expired is set when a record existed but its window lapsed.
	Expired bool
}

// Authenticated reports whether the snapshot carries a usable token.
func (s Snapshot) Authenticated() bool {
	return s.Token != ""
}

// Revocations answers whether a token was logged out, explicitly or forced.
type Revocations interface {
	IsLoggedOut(ctx context.Context, token string) bool
}

type Metrics interface {
	IncSessionExpired()
}

type Bridge struct {
	codec       codec
	maxAge      time.Duration
	secure      bool
	revocations Revocations
	metrics     Metrics
	auditor     audit.Emitter
	logger      *slog.Logger
}

type Option func(*Bridge)

func WithRevocations(r Revocations) Option {
	return func(b *Bridge) { b.revocations = r }
}

func WithMetrics(m Metrics) Option {
	return func(b *Bridge) { b.metrics = m }
}

func WithAuditor(a audit.Emitter) Option {
	return func(b *Bridge) { b.auditor = a }
}

func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) { b.logger = logger }
}

// WithSecureCookie marks the cookie Secure; production only.
func WithSecureCookie(secure bool) Option {
	return func(b *Bridge) { b.secure = secure }
}

func NewBridge(signingKey []byte, maxAge time.Duration, opts ...Option) *Bridge {
	b := &Bridge{
		codec:  codec{key: signingKey},
		maxAge: maxAge,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// MaxAge is the inactivity window.
func (b *Bridge) MaxAge() time.Duration {
	return b.maxAge
}

// Establish mints a session from credentials produced by the login or
// second-factor flows. Profiles without the super-admin flag are refused.
func (b *Bridge) Establish(w http.ResponseWriter, r *http.Request, creds models.Credentials) (Snapshot, error) {
	if creds.Token == "" {
		return Snapshot{}, dErrors.New(dErrors.CodeBadRequest, "missing session token")
	}
	user := creds.Profile.Minimal()
	if !user.IsSuperAdmin {
		return Snapshot{}, dErrors.New(dErrors.CodeForbidden, "Access denied. SuperAdmin privileges required.")
	}
	now := requestcontext.Now(r.Context())
	cl := claims{Token: creds.Token, User: &user, LastActivity: now.UnixMilli()}
	if err := b.write(w, cl); err != nil {
		return Snapshot{}, err
	}
	return b.snapshot(cl), nil
}

// Load reads the session and applies sliding expiration: past the window the
// token and profile are cleared, otherwise lastActivity moves to now. The
// cookie is re-issued either way.
func (b *Bridge) Load(w http.ResponseWriter, r *http.Request) Snapshot {
	ctx := r.Context()
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return Snapshot{}
	}
	cl, err := b.codec.decode(cookie.Value)
	if err != nil {
		b.logger.WarnContext(ctx, "discarding invalid session cookie",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		b.Destroy(w)
		return Snapshot{}
	}
	if cl.Token == "" {
		return Snapshot{Expired: cl.Expired}
	}

	now := requestcontext.Now(ctx)
	if now.Sub(cl.lastActivity()) > b.maxAge {
		b.expire(ctx, w, cl)
		return Snapshot{Expired: true}
	}

	if b.revocations != nil && b.revocations.IsLoggedOut(ctx, cl.Token) {
		b.Destroy(w)
		return Snapshot{}
	}

	cl.LastActivity = now.UnixMilli()
	if err := b.write(w, cl); err != nil {
		b.logger.ErrorContext(ctx, "failed to refresh session cookie", "error", err)
	}
	return b.snapshot(cl)
}

// Destroy removes the session cookie.
func (b *Bridge) Destroy(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   b.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (b *Bridge) expire(ctx context.Context, w http.ResponseWriter, cl claims) {
	if b.metrics != nil {
		b.metrics.IncSessionExpired()
	}
	if b.auditor != nil && cl.User != nil {
		_ = b.auditor.Emit(ctx, audit.Event{
			Action:     string(audit.EventSessionExpired),
			ActorID:    cl.User.ID,
			ActorEmail: cl.User.Email,
		})
	}
	expired := claims{LastActivity: cl.LastActivity, Expired: true}
	if err := b.write(w, expired); err != nil {
		b.Destroy(w)
	}
}

func (b *Bridge) write(w http.ResponseWriter, cl claims) error {
	value, err := b.codec.encode(cl)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign session")
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   b.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (b *Bridge) snapshot(cl claims) Snapshot {
	s := Snapshot{
		Token:        cl.Token,
		LastActivity: cl.lastActivity(),
		ExpiresAt:    cl.lastActivity().Add(b.maxAge),
	}
	if cl.User != nil {
		s.User = *cl.User
	}
	return s
}
