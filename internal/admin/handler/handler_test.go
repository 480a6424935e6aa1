package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"superadmin/internal/admin/handler/mocks"
	"superadmin/internal/admin/models"
	adminService "superadmin/internal/admin/service"
	authModels "superadmin/internal/auth/models"
	"superadmin/internal/backend"
	"superadmin/internal/session"
	"superadmin/internal/web"
	dErrors "superadmin/pkg/domain-errors"
	"superadmin/pkg/testutil"
)

const (
	userID    = "0b5c3f4e-8a3e-4c1a-9d2b-6f1e2a3b4c5d"
	projectID = "7d9f1c2a-3b4e-4f5a-8b6c-1d2e3f4a5b6c"
)

//go:generate mockgen -source=handler.go -destination=mocks/admin-mocks.go -package=mocks Service
type AdminHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	bridge  *session.Bridge
	router  http.Handler
	cookies *httptest.ResponseRecorder
}

func TestAdminHandlerSuite(t *testing.T) {
	suite.Run(t, new(AdminHandlerSuite))
}

func (s *AdminHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	keys, err := session.DeriveKeys([]byte("0123456789abcdef0123456789abcdef"))
	s.Require().NoError(err)
	s.bridge = session.NewBridge(keys.SessionSigning, 30*time.Minute, session.WithLogger(logger))
	renderer, err := web.New(session.NewFlash(keys, false, logger), s.bridge, logger)
	s.Require().NoError(err)

	r := chi.NewRouter()
	r.Use(session.Provider(s.bridge))
	New(s.service, renderer, logger).Register(r)
	s.router = r

	s.cookies = httptest.NewRecorder()
	_, err = s.bridge.Establish(s.cookies, httptest.NewRequest(http.MethodGet, "/", nil), authModels.Credentials{
		Token:   "tok",
		Profile: authModels.Profile{ID: "op-1", Name: "Ada Root", IsSuperAdmin: true},
	})
	s.Require().NoError(err)
}

func (s *AdminHandlerSuite) get(path string) *httptest.ResponseRecorder {
	return testutil.DoRequest(s.router, testutil.WithCookies(httptest.NewRequest(http.MethodGet, path, nil), s.cookies))
}

func (s *AdminHandlerSuite) post(path string, form url.Values) *httptest.ResponseRecorder {
	return testutil.DoRequest(s.router, testutil.WithCookies(testutil.NewFormRequest(s.T(), path, form), s.cookies))
}

// =============================================================================
// Users
// =============================================================================

func (s *AdminHandlerSuite) TestListUsers() {
	s.Run("renders the page with normalized filters", func() {
		s.SetupTest()
		want := models.ListQuery{Page: 2, Limit: 25, Sort: "email", Order: "asc", Search: "ada", Role: "admin", IsActive: "true"}
		s.service.EXPECT().ListUsers(gomock.Any(), "tok", want).Return(models.Page[models.User]{
			Count: 30, Page: 2, Limit: 25, TotalPages: 2,
			Items: []models.User{{ID: userID, Name: "Ada Lovelace", Email: "ada@example.com", IsAdmin: true, IsActive: true}},
		}, nil)

		rr := s.get("/users?page=2&limit=25&sort=email&order=asc&search=+ada+&role=admin&is_active=true&status=ignored")

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		testutil.AssertBodyContains(s.T(), rr, "Ada Lovelace", "/users/"+userID, "Page 2 of 2", "Previous")
		s.NotContains(rr.Body.String(), ">Next<")
	})

	s.Run("backend failure is shown inline", func() {
		s.SetupTest()
		s.service.EXPECT().ListUsers(gomock.Any(), "tok", gomock.Any()).
			Return(models.Page[models.User]{}, &backend.APIError{Status: http.StatusInternalServerError, ErrorText: "Database unavailable"})

		rr := s.get("/users")

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		testutil.AssertBodyContains(s.T(), rr, "Database unavailable", "No users found.")
	})

	s.Run("forced logout clears the session", func() {
		s.SetupTest()
		s.service.EXPECT().ListUsers(gomock.Any(), "tok", gomock.Any()).
			Return(models.Page[models.User]{}, &backend.APIError{Status: http.StatusUnauthorized, Invalidated: true})

		rr := s.get("/users")

		testutil.AssertRedirect(s.T(), rr, "/login")
		s.Equal(-1, testutil.FindCookie(rr, session.CookieName).MaxAge)
	})
}

func (s *AdminHandlerSuite) TestGetUser() {
	s.Run("numeric ids reach the backend unchanged", func() {
		s.SetupTest()
		s.service.EXPECT().GetUser(gomock.Any(), "tok", "42").Return(models.User{ID: "42", Name: "Grace Hopper"}, nil)

		rr := s.get("/users/42")

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		testutil.AssertBodyContains(s.T(), rr, "Grace Hopper")
	})

	s.Run("not found", func() {
		s.SetupTest()
		s.service.EXPECT().GetUser(gomock.Any(), "tok", userID).
			Return(models.User{}, dErrors.New(dErrors.CodeNotFound, "User not found"))

		rr := s.get("/users/" + userID)

		testutil.AssertStatus(s.T(), rr, http.StatusNotFound)
		testutil.AssertBodyContains(s.T(), rr, "User not found")
	})

	s.Run("renders projects", func() {
		s.SetupTest()
		s.service.EXPECT().GetUser(gomock.Any(), "tok", userID).Return(models.User{
			ID: userID, Name: "Ada", Projects: []models.UserProject{{ID: projectID, Name: "Tower", Type: "owner"}},
		}, nil)

		rr := s.get("/users/" + userID)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		testutil.AssertBodyContains(s.T(), rr, "Tower", "owner", "Never")
	})
}

func (s *AdminHandlerSuite) TestToggleUser() {
	s.Run("success returns to the posting page with a toast", func() {
		s.SetupTest()
		s.service.EXPECT().ToggleUserStatus(gomock.Any(), "tok", userID).Return(nil)

		rr := s.post("/users/"+userID+"/toggle-status", url.Values{"return": {"/users?page=3"}})

		testutil.AssertRedirect(s.T(), rr, "/users?page=3")
		s.NotNil(testutil.FindCookie(rr, "portal_flash"))
	})

	s.Run("off-site return falls back to the list", func() {
		s.SetupTest()
		s.service.EXPECT().ToggleUserStatus(gomock.Any(), "tok", userID).Return(nil)

		rr := s.post("/users/"+userID+"/toggle-status", url.Values{"return": {"//evil.example/x"}})

		testutil.AssertRedirect(s.T(), rr, "/users")
	})

	s.Run("failure toast carries the backend message", func() {
		s.SetupTest()
		s.service.EXPECT().ToggleUserStatus(gomock.Any(), "tok", userID).
			Return(&backend.APIError{Status: http.StatusUnprocessableEntity, Message: "Cannot deactivate yourself"})

		rr := s.post("/users/"+userID+"/toggle-status", url.Values{})
		testutil.AssertRedirect(s.T(), rr, "/users")

		s.service.EXPECT().ListUsers(gomock.Any(), "tok", gomock.Any()).Return(models.Page[models.User]{}, nil)
		page := testutil.DoRequest(s.router, testutil.WithCookies(testutil.WithCookies(httptest.NewRequest(http.MethodGet, "/users", nil), s.cookies), rr))
		testutil.AssertBodyContains(s.T(), page, "Cannot deactivate yourself", "toast-error")
	})
}

func (s *AdminHandlerSuite) TestDeleteUserGoesToList() {
	s.service.EXPECT().DeleteUser(gomock.Any(), "tok", userID).Return(nil)

	rr := s.post("/users/"+userID+"/delete", url.Values{"return": {"/users/" + userID}})

	testutil.AssertRedirect(s.T(), rr, "/users")
}

// =============================================================================
// Projects
// =============================================================================

func (s *AdminHandlerSuite) TestGetProject() {
	s.Run("renders every section", func() {
		s.SetupTest()
		s.service.EXPECT().GetProject(gomock.Any(), "tok", projectID).Return(models.ProjectDetail{
			Project: models.Project{ID: projectID, Name: "Tower", Status: "Suspended", CreatedBy: models.Creator{Name: "Ada"}},
			Members: []models.Member{{ID: "m1", User: &models.Ref{Name: "Bob"}}},
			Notices: []models.Notice{{ID: "n1", Title: "Water outage"}},
			Files:   []models.File{},
		}, nil)

		rr := s.get("/projects/" + projectID)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		testutil.AssertBodyContains(s.T(), rr, "Tower", "Bob", "Water outage", "No files.", `value="resume"`)
	})

	s.Run("revoked session on a sub-resource signs the operator out", func() {
		s.SetupTest()
		s.service.EXPECT().GetProject(gomock.Any(), "tok", projectID).
			Return(models.ProjectDetail{}, &backend.APIError{Status: http.StatusUnauthorized, Invalidated: true})

		rr := s.get("/projects/" + projectID)

		testutil.AssertRedirect(s.T(), rr, "/login")
		s.Equal(-1, testutil.FindCookie(rr, session.CookieName).MaxAge)
	})
}

// TestProjectMembersRevokedSession drives the real service against a backend
// whose members list rejects the token while the project itself loads.
func (s *AdminHandlerSuite) TestProjectMembersRevokedSession() {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/admin/project/" + projectID:
			_, _ = io.WriteString(w, `{"items":{"id":"`+projectID+`","name":"Tower","status":"Active"}}`)
		case "/members":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"Unauthenticated."}`)
		default:
			_, _ = io.WriteString(w, `{"items":[]}`)
		}
	}))
	s.T().Cleanup(api.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	keys, err := session.DeriveKeys([]byte("0123456789abcdef0123456789abcdef"))
	s.Require().NoError(err)
	renderer, err := web.New(session.NewFlash(keys, false, logger), s.bridge, logger)
	s.Require().NoError(err)
	svc := adminService.New(backend.New(api.URL, 5*time.Second), adminService.WithLogger(logger))

	r := chi.NewRouter()
	r.Use(session.Provider(s.bridge))
	New(svc, renderer, logger).Register(r)

	rr := testutil.DoRequest(r, testutil.WithCookies(httptest.NewRequest(http.MethodGet, "/projects/"+projectID, nil), s.cookies))

	testutil.AssertRedirect(s.T(), rr, "/login")
	cookie := testutil.FindCookie(rr, session.CookieName)
	s.Require().NotNil(cookie)
	s.Equal(-1, cookie.MaxAge)
}

func (s *AdminHandlerSuite) TestUpdateProject() {
	s.service.EXPECT().UpdateProject(gomock.Any(), "tok", projectID, adminService.ActionSuspend).Return(nil)

	rr := s.post("/projects/"+projectID+"/status", url.Values{"action": {"suspend"}, "return": {"/projects/" + projectID}})

	testutil.AssertRedirect(s.T(), rr, "/projects/"+projectID)
}

func (s *AdminHandlerSuite) TestListProjects() {
	s.service.EXPECT().ListProjects(gomock.Any(), "tok", models.ListQuery{
		Page: 1, Limit: 10, Sort: "created_at", Order: "desc", Status: "Suspended",
	}).Return(models.Page[models.Project]{Page: 1, TotalPages: 1, Items: []models.Project{{ID: projectID, Name: "Tower", IsActive: true}}}, nil)

	rr := s.get("/projects?status=Suspended&role=admin")

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	testutil.AssertBodyContains(s.T(), rr, "Tower", `value="deactivate"`)
}

func TestSafeReturn(t *testing.T) {
	assert.Equal(t, "/users?page=2", safeReturn("/users?page=2", "/users"))
	assert.Equal(t, "/users", safeReturn("", "/users"))
	assert.Equal(t, "/users", safeReturn("https://evil.example", "/users"))
	assert.Equal(t, "/users", safeReturn("//evil.example", "/users"))
	assert.Equal(t, "/users", safeReturn(`/\evil.example`, "/users"))
}

func TestListPageLinks(t *testing.T) {
	p := ListPage[models.User]{Base: "/users", Query: models.ListQuery{Page: 3, Limit: 10, Sort: "name", Order: "asc"}}
	assert.Equal(t, "/users?limit=10&order=desc&page=1&sort=name", p.SortLink("name"))
	assert.Equal(t, "/users?limit=10&order=asc&page=1&sort=email", p.SortLink("email"))
	assert.Equal(t, "/users?limit=10&order=asc&page=4&sort=name", p.PageLink(4))
}
