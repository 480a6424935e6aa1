package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/url"
	"time"

	audit "superadmin/pkg/platform/audit"
)

// EmailCooldown is how long an operator waits between emailed codes.
const EmailCooldown = 60 * time.Second

// Operator-facing messages.
const (
	MsgAccessDenied      = "Access denied. SuperAdmin privileges required."
	MsgLoginFailed       = "Login failed. Please try again."
	MsgCredentialsNeeded = "Email and password are required."
	MsgInvalidCode       = "Invalid verification code"
	MsgCodeShape         = "Please enter a 6-digit code."
	MsgSessionExpired    = "Session expired. Please log in again."
	MsgTooManyRequests   = "Too many requests. Please try again later."
	MsgInvalidChallenge  = "Invalid 2FA session"
	MsgSendFailed        = "Failed to send verification code."
)

// Backend is the slice of the backend client the auth flows need.
type Backend interface {
	Get(ctx context.Context, token, path string, query url.Values, out any) error
	Post(ctx context.Context, token, path string, body, out any) error
}

// CooldownStore enforces the emailed-code resend window.
type CooldownStore interface {
	Acquire(ctx context.Context, key string, d time.Duration) (bool, time.Duration, error)
	Release(ctx context.Context, key string) error
	Remaining(ctx context.Context, key string) (time.Duration, error)
}

// Revoker records explicit logouts.
type Revoker interface {
	Revoke(ctx context.Context, token string) error
}

type Metrics interface {
	IncLogin(outcome string)
	IncTwoFactor(method, outcome string)
	IncEmailCodeSent()
}

// Service runs the credential exchange and second-factor flows against the
// backend. It never creates sessions; callers hand successful Credentials
// to the session bridge.
type Service struct {
	backend  Backend
	cooldown CooldownStore
	revoker  Revoker
	metrics  Metrics
	auditor  audit.Emitter
	logger   *slog.Logger
}

type Option func(*Service)

func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditor(a audit.Emitter) Option {
	return func(s *Service) { s.auditor = a }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(backend Backend, cooldown CooldownStore, revoker Revoker, opts ...Option) *Service {
	s := &Service{
		backend:  backend,
		cooldown: cooldown,
		revoker:  revoker,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) incLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.IncLogin(outcome)
	}
}

func (s *Service) incTwoFactor(method, outcome string) {
	if s.metrics != nil {
		s.metrics.IncTwoFactor(method, outcome)
	}
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", event.Action, "error", err)
	}
}

// challengeKey keeps raw challenge tokens out of the cooldown store.
func challengeKey(challenge string) string {
	sum := sha256.Sum256([]byte(challenge))
	return hex.EncodeToString(sum[:])
}
