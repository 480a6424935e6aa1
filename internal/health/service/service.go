// Package service reads the backend health report. A circuit breaker
// tracks consecutive failures; once it opens, the last good report is
// served marked stale until the backend answers again.
package service

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"superadmin/internal/backend"
	"superadmin/internal/health/models"
	dErrors "superadmin/pkg/domain-errors"
	"superadmin/pkg/platform/circuit"
	"superadmin/pkg/platform/sentinel"
	"superadmin/pkg/requestcontext"
)

// Backend is a request wrapper whose base URL is the health endpoint.
type Backend interface {
	Do(ctx context.Context, req backend.Request, out any) error
}

type Service struct {
	backend Backend
	breaker *circuit.Breaker
	logger  *slog.Logger
	now     func() time.Time

	mu     sync.Mutex
	last   *models.Report
	lastAt time.Time
}

type Option func(*Service)

func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Service) { s.breaker = b }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(b Backend, opts ...Option) *Service {
	s := &Service{
		backend: b,
		breaker: circuit.New("health"),
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check fetches the current report. The token is sent when present; a
// rejected token here never ends the operator's session, the API does that.
func (s *Service) Check(ctx context.Context, token string) (models.Snapshot, error) {
	var report models.Report
	err := s.backend.Do(ctx, backend.Request{Method: http.MethodGet, Token: token}, &report)
	if err == nil {
		if _, change := s.breaker.RecordSuccess(); change.Closed {
			s.logger.InfoContext(ctx, "health circuit closed", "breaker", s.breaker.Name())
		}
		at := s.now()
		s.mu.Lock()
		s.last = &report
		s.lastAt = at
		s.mu.Unlock()
		return models.Snapshot{Report: report, FetchedAt: at}, nil
	}

	useFallback, change := s.breaker.RecordFailure()
	if change.Opened {
		s.logger.WarnContext(ctx, "health circuit opened",
			"breaker", s.breaker.Name(),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	if useFallback {
		s.mu.Lock()
		last, lastAt := s.last, s.lastAt
		s.mu.Unlock()
		if last != nil {
			return models.Snapshot{Report: *last, FetchedAt: lastAt, Stale: true}, nil
		}
	}
	// The backend error is not wrapped, so a health 401 never reads as a
	// session invalidation upstream.
	return models.Snapshot{}, dErrors.Wrap(sentinel.ErrUnavailable, dErrors.CodeUnavailable, failureMessage(err))
}

// failureMessage mirrors what the browser would have shown: the backend's
// text, else the status text.
func failureMessage(err error) string {
	if msg := backend.MessageOf(err, ""); msg != "" {
		return msg
	}
	if status := backend.StatusOf(err); status != 0 {
		if text := http.StatusText(status); text != "" {
			return text
		}
	}
	return dErrors.MessageOf(err, "Failed to load health")
}
