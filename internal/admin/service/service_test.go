package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"superadmin/internal/admin/models"
	"superadmin/internal/backend"
	audit "superadmin/pkg/platform/audit"
	dErrors "superadmin/pkg/domain-errors"
)

type recordedCall struct {
	Method    string
	Path      string
	Query     string
	ProjectID string
	Body      map[string]any
}

type fakeBackend struct {
	mu     sync.Mutex
	routes map[string]func(w http.ResponseWriter)
	calls  []recordedCall
}

func (f *fakeBackend) on(method, path string, status int, body string) {
	f.routes[method+" "+path] = func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	call := recordedCall{
		Method:    r.Method,
		Path:      r.URL.Path,
		Query:     r.URL.RawQuery,
		ProjectID: r.Header.Get("X-Project-ID"),
	}
	if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
		_ = json.Unmarshal(raw, &call.Body)
	}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	route, ok := f.routes[r.Method+" "+r.URL.Path]
	f.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"no route"}`)
		return
	}
	route(w)
}

func (f *fakeBackend) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *fakeBackend) call(method, path string) (recordedCall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			return c, true
		}
	}
	return recordedCall{}, false
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingEmitter) Emit(_ context.Context, e audit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

type invalidations struct{ n int }

func (i *invalidations) SessionInvalidated(context.Context, string, string) { i.n++ }

type AdminServiceSuite struct {
	suite.Suite
	fake    *fakeBackend
	server  *httptest.Server
	emitter *recordingEmitter
	invalid *invalidations
	service *Service
}

func TestAdminServiceSuite(t *testing.T) {
	suite.Run(t, new(AdminServiceSuite))
}

func (s *AdminServiceSuite) SetupTest() {
	s.fake = &fakeBackend{routes: map[string]func(http.ResponseWriter){}}
	s.server = httptest.NewServer(s.fake)
	s.T().Cleanup(s.server.Close)
	s.emitter = &recordingEmitter{}
	s.invalid = &invalidations{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := backend.New(s.server.URL, 5*time.Second,
		backend.WithLogger(logger),
		backend.WithInvalidationHandler(s.invalid),
	)
	s.service = New(client, WithAuditor(s.emitter), WithLogger(logger))
}

// =============================================================================
// Users
// =============================================================================

func (s *AdminServiceSuite) TestListUsersNormalizesQuery() {
	s.fake.on(http.MethodGet, "/admin/users", http.StatusOK,
		`{"count":1,"page":2,"limit":100,"total_pages":3,"items":[{"id":"u1","name":"Ada","email":"a@x.com","is_active":true}]}`)

	page, err := s.service.ListUsers(context.Background(), "tok", models.ListQuery{
		Page: 2, Limit: 1000, Sort: "password", Order: "sideways", Search: "ada", Status: "Active", IsActive: "maybe",
	})

	s.Require().NoError(err)
	s.Len(page.Items, 1)
	s.True(page.HasPrev())
	s.True(page.HasNext())
	call, ok := s.fake.call(http.MethodGet, "/admin/users")
	s.Require().True(ok)
	s.Equal("limit=100&order=desc&page=2&search=ada&sort=created_at", call.Query)
}

func (s *AdminServiceSuite) TestGetUser() {
	s.Run("items as array", func() {
		s.SetupTest()
		s.fake.on(http.MethodGet, "/admin/user/u1", http.StatusOK,
			`{"items":[{"id":"u1","name":"Ada","projects":[{"id":"p1","name":"Tower","slug":"tower","type":"owner"}]}]}`)

		user, err := s.service.GetUser(context.Background(), "tok", "u1")
		s.Require().NoError(err)
		s.Equal("Ada", user.Name)
		s.Require().Len(user.Projects, 1)
		s.Equal("owner", user.Projects[0].Type)
	})

	s.Run("items as object", func() {
		s.SetupTest()
		s.fake.on(http.MethodGet, "/admin/user/u1", http.StatusOK, `{"items":{"id":"u1","name":"Ada"}}`)

		user, err := s.service.GetUser(context.Background(), "tok", "u1")
		s.Require().NoError(err)
		s.Equal("u1", user.ID)
	})

	s.Run("empty array is not found", func() {
		s.SetupTest()
		s.fake.on(http.MethodGet, "/admin/user/u1", http.StatusOK, `{"items":[]}`)

		_, err := s.service.GetUser(context.Background(), "tok", "u1")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("backend 404 is not found", func() {
		s.SetupTest()

		_, err := s.service.GetUser(context.Background(), "tok", "missing")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *AdminServiceSuite) TestUserMutationsAreAudited() {
	s.fake.on(http.MethodPatch, "/admin/user/u1/toggle-status", http.StatusOK, `{"success":true}`)
	s.fake.on(http.MethodDelete, "/admin/user/u1", http.StatusOK, `{"success":true}`)

	s.Require().NoError(s.service.ToggleUserStatus(context.Background(), "tok", "u1"))
	s.Require().NoError(s.service.DeleteUser(context.Background(), "tok", "u1"))

	s.Require().Len(s.emitter.events, 2)
	s.Equal(string(audit.EventUserStatusToggled), s.emitter.events[0].Action)
	s.Equal("u1", s.emitter.events[0].Subject)
	s.Equal(string(audit.EventUserDeleted), s.emitter.events[1].Action)
}

func (s *AdminServiceSuite) TestFailedMutationIsNotAudited() {
	s.fake.on(http.MethodPatch, "/admin/user/u1/toggle-status", http.StatusUnprocessableEntity, `{"message":"Cannot deactivate yourself"}`)

	err := s.service.ToggleUserStatus(context.Background(), "tok", "u1")

	s.Equal("Cannot deactivate yourself", backend.MessageOf(err, ""))
	s.Empty(s.emitter.events)
}

// =============================================================================
// Projects
// =============================================================================

func (s *AdminServiceSuite) stubProject() {
	s.fake.on(http.MethodGet, "/admin/project/p1", http.StatusOK,
		`{"success":1,"items":{"id":"p1","name":"Tower","status":"Active","is_active":true,"created_by":{"id":"u1","name":"Ada","email":"a@x.com"}}}`)
	s.fake.on(http.MethodGet, "/admin/project/p1/users", http.StatusOK, `{"items":[{"id":"u1","name":"Ada","email":"a@x.com"}]}`)
	s.fake.on(http.MethodGet, "/members", http.StatusOK, `{"items":[{"id":"m1","user":{"id":"u2","name":"Bob"}}]}`)
	s.fake.on(http.MethodGet, "/vendors", http.StatusOK, `{"items":[{"id":"v1","business_name":"Acme"}]}`)
	s.fake.on(http.MethodGet, "/properties", http.StatusOK, `{"items":[]}`)
	s.fake.on(http.MethodGet, "/deposit_schedules", http.StatusOK, `{"items":[{"id":"d1","amount":1200.5}]}`)
	s.fake.on(http.MethodGet, "/notices", http.StatusOK, `{"items":[{"id":"n1","title":"Hello"}]}`)
	s.fake.on(http.MethodGet, "/files", http.StatusInternalServerError, `{"message":"disk on fire"}`)
}

func (s *AdminServiceSuite) TestGetProjectLoadsEverything() {
	s.stubProject()

	detail, err := s.service.GetProject(context.Background(), "tok", "p1")

	s.Require().NoError(err)
	s.Equal("Tower", detail.Project.Name)
	s.Equal("Ada (a@x.com)", detail.Project.CreatedBy.Label())
	s.Len(detail.Users, 1)
	s.Require().Len(detail.Members, 1)
	s.Equal("Bob", detail.Members[0].DisplayName())
	s.Len(detail.Vendors, 1)
	s.NotNil(detail.Properties)
	s.Empty(detail.Properties)
	s.Len(detail.DepositSchedules, 1)
	s.Len(detail.Notices, 1)
	s.NotNil(detail.Files, "failed sub-resource renders as an empty list")
	s.Empty(detail.Files)

	for path, limit := range map[string]string{
		"/members": "500", "/vendors": "500", "/properties": "500",
		"/deposit_schedules": "500", "/notices": "100", "/files": "500",
	} {
		call, ok := s.fake.call(http.MethodGet, path)
		s.Require().True(ok, path)
		s.Equal("p1", call.ProjectID, path)
		s.Equal("limit="+limit, call.Query, path)
	}
	usersCall, _ := s.fake.call(http.MethodGet, "/admin/project/p1/users")
	s.Empty(usersCall.ProjectID)
}

func (s *AdminServiceSuite) TestGetProjectCreatorAsID() {
	s.stubProject()
	s.fake.on(http.MethodGet, "/admin/project/p1", http.StatusOK, `{"items":{"id":"p1","name":"Tower","created_by":"u9"}}`)

	detail, err := s.service.GetProject(context.Background(), "tok", "p1")

	s.Require().NoError(err)
	s.Equal("u9", detail.Project.CreatedBy.Label())
}

func (s *AdminServiceSuite) TestGetProjectRequiresTheProject() {
	s.stubProject()
	s.fake.on(http.MethodGet, "/admin/project/p1", http.StatusNotFound, `{"message":"Project not found"}`)

	_, err := s.service.GetProject(context.Background(), "tok", "p1")

	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *AdminServiceSuite) TestGetProjectForcedLogout() {
	s.stubProject()
	s.fake.on(http.MethodGet, "/admin/project/p1", http.StatusUnauthorized, `{"message":"Unauthenticated."}`)

	_, err := s.service.GetProject(context.Background(), "tok", "p1")

	s.True(backend.IsSessionInvalidated(err))
	s.GreaterOrEqual(s.invalid.n, 1)
}

func (s *AdminServiceSuite) TestGetProjectSubResourceRevokesSession() {
	s.stubProject()
	s.fake.on(http.MethodGet, "/members", http.StatusUnauthorized, `{"message":"Unauthenticated."}`)

	detail, err := s.service.GetProject(context.Background(), "tok", "p1")

	s.True(backend.IsSessionInvalidated(err))
	s.Empty(detail.Project.ID)
	s.Equal(1, s.invalid.n)
}

func (s *AdminServiceSuite) TestUpdateProjectBodies() {
	s.fake.on(http.MethodPut, "/admin/project/p1", http.StatusOK, `{"success":true}`)

	cases := map[ProjectAction]map[string]any{
		ActionActivate:   {"is_active": true},
		ActionDeactivate: {"is_active": false},
		ActionSuspend:    {"status": "Suspended"},
		ActionResume:     {"status": "Active"},
	}
	for action, want := range cases {
		s.fake.reset()
		s.Require().NoError(s.service.UpdateProject(context.Background(), "tok", "p1", action))
		call, ok := s.fake.call(http.MethodPut, "/admin/project/p1")
		s.Require().True(ok)
		s.Equal(want, call.Body, string(action))
	}

	err := s.service.UpdateProject(context.Background(), "tok", "p1", ProjectAction("explode"))
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	s.Len(s.emitter.events, len(cases))
}

func (s *AdminServiceSuite) TestDeleteProject() {
	s.fake.on(http.MethodDelete, "/admin/project/p1", http.StatusOK, `{}`)

	s.Require().NoError(s.service.DeleteProject(context.Background(), "tok", "p1"))
	s.Require().Len(s.emitter.events, 1)
	s.Equal(string(audit.EventProjectDeleted), s.emitter.events[0].Action)
}

func TestProjectQueryDropsRole(t *testing.T) {
	q := NormalizeProjectQuery(models.ListQuery{Role: "admin", Status: "Suspended", Sort: "status", Order: "asc"})
	got := q.Values().Encode()
	if strings.Contains(got, "role") || !strings.Contains(got, "status=Suspended") || !strings.Contains(got, "sort=status") {
		t.Fatalf("unexpected query %q", got)
	}
}
