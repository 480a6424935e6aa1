package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	authModels "superadmin/internal/auth/models"
	"superadmin/internal/health/handler/mocks"
	"superadmin/internal/health/models"
	"superadmin/internal/session"
	"superadmin/internal/web"
	dErrors "superadmin/pkg/domain-errors"
	"superadmin/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/health-mocks.go -package=mocks Service
type HealthHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  http.Handler
	cookies *httptest.ResponseRecorder
}

func TestHealthHandlerSuite(t *testing.T) {
	suite.Run(t, new(HealthHandlerSuite))
}

func (s *HealthHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	keys, err := session.DeriveKeys([]byte("0123456789abcdef0123456789abcdef"))
	s.Require().NoError(err)
	bridge := session.NewBridge(keys.SessionSigning, 30*time.Minute, session.WithLogger(logger))
	renderer, err := web.New(session.NewFlash(keys, false, logger), bridge, logger)
	s.Require().NoError(err)

	r := chi.NewRouter()
	r.Use(session.Provider(bridge))
	New(s.service, renderer, logger).Register(r)
	s.router = r

	s.cookies = httptest.NewRecorder()
	_, err = bridge.Establish(s.cookies, httptest.NewRequest(http.MethodGet, "/", nil), authModels.Credentials{
		Token:   "tok",
		Profile: authModels.Profile{ID: "op-1", Name: "Ada Root", IsSuperAdmin: true},
	})
	s.Require().NoError(err)
}

func (s *HealthHandlerSuite) get(path string) *httptest.ResponseRecorder {
	return testutil.DoRequest(s.router, testutil.WithCookies(httptest.NewRequest(http.MethodGet, path, nil), s.cookies))
}

func report() models.Snapshot {
	return models.Snapshot{Report: models.Report{
		FinishedAt: 1700000000,
		CheckResults: []models.CheckResult{
			{Name: "Database", Status: models.StatusOK},
			{Name: "Queue", Label: "Queue workers", Status: models.StatusFailed, NotificationMessage: "3 jobs stuck"},
		},
	}}
}

func (s *HealthHandlerSuite) TestDashboard() {
	s.Run("shows the widget counts", func() {
		s.SetupTest()
		s.service.EXPECT().Check(gomock.Any(), "tok").Return(report(), nil)

		rr := s.get("/")

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		testutil.AssertBodyContains(s.T(), rr, "Welcome back, Ada Root", "1 OK", "1 Failed", "Nov 14, 2023 22:13:20 UTC")
	})

	s.Run("health failure does not break the dashboard", func() {
		s.SetupTest()
		s.service.EXPECT().Check(gomock.Any(), "tok").Return(models.Snapshot{}, dErrors.New(dErrors.CodeUnavailable, "Bad Gateway"))

		rr := s.get("/")

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		testutil.AssertBodyContains(s.T(), rr, "Bad Gateway", "Quick Links")
	})
}

func (s *HealthHandlerSuite) TestHealthPage() {
	s.Run("lists every check", func() {
		s.SetupTest()
		s.service.EXPECT().Check(gomock.Any(), "tok").Return(report(), nil)

		rr := s.get("/health")

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		testutil.AssertBodyContains(s.T(), rr, "Database", "Queue workers", "3 jobs stuck", "badge-failed")
	})

	s.Run("stale report is labelled", func() {
		s.SetupTest()
		snap := report()
		snap.Stale = true
		snap.FetchedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		s.service.EXPECT().Check(gomock.Any(), "tok").Return(snap, nil)

		rr := s.get("/health")

		testutil.AssertBodyContains(s.T(), rr, "Backend unreachable", "03:04:05 UTC")
	})
}
