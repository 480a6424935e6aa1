// Package logout owns the forced-logout sequence. The backend wrapper reports
// every invalidating response here; the controller runs the sequence at most
// once per token no matter how many in-flight calls fail together.
package logout

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"superadmin/internal/auth/store/revocation"
	audit "superadmin/pkg/platform/audit"
)

// RevocationStore persists revoked token keys for the session lifetime.
type RevocationStore interface {
	Revoke(ctx context.Context, key string, ttl time.Duration) error
	IsRevoked(ctx context.Context, key string) (bool, error)
}

// Metrics is the subset of platform metrics the controller records.
type Metrics interface {
	IncForcedLogout(reason string)
}

type Controller struct {
	store   RevocationStore
	ttl     time.Duration
	metrics Metrics
	auditor audit.Emitter
	logger  *slog.Logger
	now     func() time.Time

	group singleflight.Group
	mu    sync.Mutex
	// done holds token keys whose sequence has run, with local expiry.
	done map[string]time.Time
}

type Option func(*Controller)

func WithMetrics(m Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

func WithAuditor(a audit.Emitter) Option {
	return func(c *Controller) { c.auditor = a }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New builds a controller. ttl should match the session max age: after that
// the session would have expired anyway.
func New(store RevocationStore, ttl time.Duration, opts ...Option) *Controller {
	c := &Controller{
		store:  store,
		ttl:    ttl,
		logger: slog.Default(),
		now:    time.Now,
		done:   make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SessionInvalidated implements backend.InvalidationHandler.
func (c *Controller) SessionInvalidated(ctx context.Context, token, reason string) {
	c.Trigger(ctx, token, reason)
}

// Trigger runs the forced-logout sequence for token unless it already ran.
// Concurrent callers for the same token wait for the one running sequence,
// so every caller returns after the revocation is recorded.
func (c *Controller) Trigger(ctx context.Context, token, reason string) {
	if token == "" {
		return
	}
	key := revocation.KeyFor(token)
	if c.alreadyDone(key) {
		return
	}
	_, _, _ = c.group.Do(key, func() (any, error) {
		if !c.claim(key) {
			return nil, nil
		}
		c.run(context.WithoutCancel(ctx), key, reason)
		return nil, nil
	})
}

// Revoke records an explicit logout. It shares state with Trigger so a
// later backend 401 for the same token does not count as a forced logout.
func (c *Controller) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	key := revocation.KeyFor(token)
	c.claim(key)
	return c.store.Revoke(ctx, key, c.ttl)
}

// IsLoggedOut reports whether token was revoked, here or on another instance.
// Store errors fail open to the local view.
func (c *Controller) IsLoggedOut(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	key := revocation.KeyFor(token)
	if c.alreadyDone(key) {
		return true
	}
	revoked, err := c.store.IsRevoked(ctx, key)
	if err != nil {
		c.logger.WarnContext(ctx, "revocation lookup failed", "error", err)
		return false
	}
	return revoked
}

// Reset forgets local state. Used by tests and on configuration reloads.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done = make(map[string]time.Time)
}

func (c *Controller) alreadyDone(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	exp, ok := c.done[key]
	if ok && !c.now().Before(exp) {
		delete(c.done, key)
		return false
	}
	return ok
}

// claim marks key done and reports whether this caller was first.
func (c *Controller) claim(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if exp, ok := c.done[key]; ok && now.Before(exp) {
		return false
	}
	for k, exp := range c.done {
		if !now.Before(exp) {
			delete(c.done, k)
		}
	}
	c.done[key] = now.Add(c.ttl)
	return true
}

func (c *Controller) run(ctx context.Context, key, reason string) {
	if err := c.store.Revoke(ctx, key, c.ttl); err != nil {
		c.logger.ErrorContext(ctx, "failed to persist forced logout", "error", err)
	}
	if c.metrics != nil {
		c.metrics.IncForcedLogout(reason)
	}
	if c.auditor != nil {
		_ = c.auditor.Emit(ctx, audit.Event{
			Action: string(audit.EventForcedLogout),
			Reason: reason,
		})
	}
	c.logger.InfoContext(ctx, "forced logout", "reason", reason, "token_key", key[:12])
}
