// Package service reads and mutates backend users and projects on behalf of
// the signed-in operator. Every call carries the operator's bearer token.
package service

import (
	"context"
	"log/slog"
	"net/http"

	"superadmin/internal/admin/models"
	"superadmin/internal/backend"
	audit "superadmin/pkg/platform/audit"
	dErrors "superadmin/pkg/domain-errors"
)

// Backend is the request wrapper.
type Backend interface {
	Do(ctx context.Context, req backend.Request, out any) error
}

type Service struct {
	backend Backend
	auditor audit.Emitter
	logger  *slog.Logger
}

type Option func(*Service)

func WithAuditor(a audit.Emitter) Option {
	return func(s *Service) { s.auditor = a }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(b Backend, opts ...Option) *Service {
	s := &Service{backend: b, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) emit(ctx context.Context, action audit.AuditEvent, subject, decision string) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, audit.Event{Action: string(action), Subject: subject, Decision: decision}); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", action, "error", err)
	}
}

// notFound turns a backend 404 into a domain not-found; anything else is
// returned untouched so callers can still detect a forced logout.
func notFound(err error, what string) error {
	if backend.StatusOf(err) == http.StatusNotFound {
		return dErrors.Wrap(err, dErrors.CodeNotFound, what+" not found")
	}
	return err
}

// ListUsers returns one page of users.
func (s *Service) ListUsers(ctx context.Context, token string, q models.ListQuery) (models.Page[models.User], error) {
	q = NormalizeUserQuery(q)
	var page models.Page[models.User]
	err := s.backend.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   "/admin/users",
		Query:  q.Values(),
		Token:  token,
	}, &page)
	if page.Page == 0 {
		page.Page = q.Page
	}
	return page, err
}
