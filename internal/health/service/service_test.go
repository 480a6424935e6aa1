package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"superadmin/internal/backend"
	dErrors "superadmin/pkg/domain-errors"
	"superadmin/pkg/platform/circuit"
)

const healthyBody = `{"finishedAt":1700000000,"checkResults":[{"name":"Database","status":"ok"},{"name":"Queue","status":"failed"}]}`

type HealthServiceSuite struct {
	suite.Suite
	status  atomic.Int32
	auth    atomic.Value
	client  *backend.Client
	service *Service
	now     time.Time
}

func TestHealthServiceSuite(t *testing.T) {
	suite.Run(t, new(HealthServiceSuite))
}

func (s *HealthServiceSuite) SetupTest() {
	s.status.Store(http.StatusOK)
	s.auth.Store("")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.auth.Store(r.Header.Get("Authorization"))
		status := int(s.status.Load())
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = io.WriteString(w, healthyBody)
		}
	}))
	s.T().Cleanup(server.Close)

	s.now = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.client = backend.New(server.URL+"/health/json", 5*time.Second, backend.WithLogger(logger))
	s.service = New(s.client,
		WithBreaker(circuit.New("health", circuit.WithFailureThreshold(2), circuit.WithSuccessThreshold(1))),
		WithLogger(logger),
		WithClock(func() time.Time { return s.now }),
	)
}

func (s *HealthServiceSuite) TestFreshReport() {
	snap, err := s.service.Check(context.Background(), "tok")

	s.Require().NoError(err)
	s.False(snap.Stale)
	s.Equal(1, snap.OKCount())
	s.Equal(1, snap.FailedCount())
	s.Equal(s.now, snap.FetchedAt)
	s.Equal("Bearer tok", s.auth.Load())
}

func (s *HealthServiceSuite) TestNoTokenSendsNoAuthorization() {
	_, err := s.service.Check(context.Background(), "")

	s.Require().NoError(err)
	s.Equal("", s.auth.Load())
}

func (s *HealthServiceSuite) TestFailureBeforeCircuitOpensIsAnError() {
	_, err := s.service.Check(context.Background(), "")
	s.Require().NoError(err)

	s.status.Store(http.StatusServiceUnavailable)
	_, err = s.service.Check(context.Background(), "")

	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.Equal("Service Unavailable", dErrors.MessageOf(err, ""))
}

func (s *HealthServiceSuite) TestOpenCircuitServesLastGoodReport() {
	first, err := s.service.Check(context.Background(), "")
	s.Require().NoError(err)

	s.status.Store(http.StatusInternalServerError)
	_, err = s.service.Check(context.Background(), "")
	s.Require().Error(err)
	snap, err := s.service.Check(context.Background(), "")

	s.Require().NoError(err)
	s.True(snap.Stale)
	s.Equal(first.FetchedAt, snap.FetchedAt)
	s.Len(snap.CheckResults, 2)

	s.status.Store(http.StatusOK)
	snap, err = s.service.Check(context.Background(), "")
	s.Require().NoError(err)
	s.False(snap.Stale)
}

func (s *HealthServiceSuite) TestOpenCircuitWithoutHistoryIsAnError() {
	s.status.Store(http.StatusBadGateway)

	for range 3 {
		_, err := s.service.Check(context.Background(), "")
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	}
}

func (s *HealthServiceSuite) TestRejectedTokenDoesNotEndTheSession() {
	s.status.Store(http.StatusUnauthorized)

	_, err := s.service.Check(context.Background(), "tok")

	s.Require().Error(err)
	s.False(backend.IsSessionInvalidated(err))
}

func (s *HealthServiceSuite) TestDefaultBreakerServesStaleOnFifthFailure() {
	svc := New(s.client, WithClock(func() time.Time { return s.now }), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	first, err := svc.Check(context.Background(), "")
	s.Require().NoError(err)

	s.status.Store(http.StatusInternalServerError)
	for i := 1; i <= 4; i++ {
		_, err := svc.Check(context.Background(), "")
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable), "failure %d", i)
	}
	snap, err := svc.Check(context.Background(), "")
	s.Require().NoError(err)
	s.True(snap.Stale)
	s.Equal(first.FetchedAt, snap.FetchedAt)

	s.status.Store(http.StatusOK)
	for i := 1; i <= 3; i++ {
		snap, err = svc.Check(context.Background(), "")
		s.Require().NoError(err)
		s.False(snap.Stale, "success %d", i)
	}
	s.Equal(circuit.StateClosed, svc.breaker.State())
}
