package service

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"

	"superadmin/internal/admin/models"
	"superadmin/internal/backend"
	audit "superadmin/pkg/platform/audit"
	dErrors "superadmin/pkg/domain-errors"
)

// Sub-resource page sizes for the project detail page.
const (
	subResourceLimit = 500
	noticesLimit     = 100
)

// ProjectAction is a lifecycle change an operator can apply.
type ProjectAction string

const (
	ActionActivate   ProjectAction = "activate"
	ActionDeactivate ProjectAction = "deactivate"
	ActionSuspend    ProjectAction = "suspend"
	ActionResume     ProjectAction = "resume"
)

// Body is the update payload the backend expects for the action.
func (a ProjectAction) Body() (map[string]any, bool) {
	switch a {
	case ActionActivate:
		return map[string]any{"is_active": true}, true
	case ActionDeactivate:
		return map[string]any{"is_active": false}, true
	case ActionSuspend:
		return map[string]any{"status": models.StatusSuspended}, true
	case ActionResume:
		return map[string]any{"status": models.StatusActive}, true
	default:
		return nil, false
	}
}

// Done is the toast text after a successful action.
func (a ProjectAction) Done() string {
	switch a {
	case ActionActivate:
		return "Project activated"
	case ActionDeactivate:
		return "Project deactivated"
	case ActionSuspend:
		return "Project suspended"
	default:
		return "Project resumed"
	}
}

func (s *Service) ListProjects(ctx context.Context, token string, q models.ListQuery) (models.Page[models.Project], error) {
	q = NormalizeProjectQuery(q)
	var page models.Page[models.Project]
	err := s.backend.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   "/admin/projects",
		Query:  q.Values(),
		Token:  token,
	}, &page)
	if page.Page == 0 {
		page.Page = q.Page
	}
	return page, err
}

type projectDetailResponse struct {
	Items *models.Project `json:"items"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
}

// GetProject loads the project and its sub-resources concurrently. Only the
// project itself is required; a failed sub-resource renders as an empty list
// unless the backend revoked the session.
func (s *Service) GetProject(ctx context.Context, token, id string) (models.ProjectDetail, error) {
	var detail models.ProjectDetail
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var resp projectDetailResponse
		err := s.backend.Do(gctx, backend.Request{
			Method: http.MethodGet,
			Path:   "/admin/project/" + url.PathEscape(id),
			Token:  token,
		}, &resp)
		if err != nil {
			return notFound(err, "Project")
		}
		if resp.Items == nil || resp.Items.ID == "" {
			return dErrors.New(dErrors.CodeNotFound, "Project not found")
		}
		detail.Project = *resp.Items
		return nil
	})

	g.Go(func() (err error) {
		detail.Users, err = fetchList[models.ProjectUser](gctx, s, backend.Request{
			Method: http.MethodGet,
			Path:   "/admin/project/" + url.PathEscape(id) + "/users",
			Token:  token,
		})
		return err
	})

	scoped := func(path string, limit int) backend.Request {
		return backend.Request{
			Method:    http.MethodGet,
			Path:      path,
			Query:     url.Values{"limit": {strconv.Itoa(limit)}},
			Token:     token,
			ProjectID: id,
		}
	}
	g.Go(func() (err error) {
		detail.Members, err = fetchList[models.Member](gctx, s, scoped("/members", subResourceLimit))
		return err
	})
	g.Go(func() (err error) {
		detail.Vendors, err = fetchList[models.Vendor](gctx, s, scoped("/vendors", subResourceLimit))
		return err
	})
	g.Go(func() (err error) {
		detail.Properties, err = fetchList[models.Property](gctx, s, scoped("/properties", subResourceLimit))
		return err
	})
	g.Go(func() (err error) {
		detail.DepositSchedules, err = fetchList[models.DepositSchedule](gctx, s, scoped("/deposit_schedules", subResourceLimit))
		return err
	})
	g.Go(func() (err error) {
		detail.Notices, err = fetchList[models.Notice](gctx, s, scoped("/notices", noticesLimit))
		return err
	})
	g.Go(func() (err error) {
		detail.Files, err = fetchList[models.File](gctx, s, scoped("/files", subResourceLimit))
		return err
	})

	if err := g.Wait(); err != nil {
		return models.ProjectDetail{}, err
	}
	return detail, nil
}

// fetchList treats a failed sub-resource as empty so one broken list never
// hides the project. A revoked session is the exception and aborts the page.
func fetchList[T any](ctx context.Context, s *Service, req backend.Request) ([]T, error) {
	var resp listResponse[T]
	if err := s.backend.Do(ctx, req, &resp); err != nil {
		if backend.IsSessionInvalidated(err) {
			return nil, err
		}
		s.logger.WarnContext(ctx, "project sub-resource unavailable",
			"path", req.Path,
			"project_id", req.ProjectID,
			"error", err,
		)
		return []T{}, nil
	}
	if resp.Items == nil {
		return []T{}, nil
	}
	return resp.Items, nil
}

// UpdateProject applies action to the project.
func (s *Service) UpdateProject(ctx context.Context, token, id string, action ProjectAction) error {
	body, ok := action.Body()
	if !ok {
		return dErrors.New(dErrors.CodeBadRequest, "Unknown project action")
	}
	err := s.backend.Do(ctx, backend.Request{
		Method: http.MethodPut,
		Path:   "/admin/project/" + url.PathEscape(id),
		Body:   body,
		Token:  token,
	}, nil)
	if err != nil {
		return notFound(err, "Project")
	}
	s.emit(ctx, audit.EventProjectUpdated, id, string(action))
	return nil
}

func (s *Service) DeleteProject(ctx context.Context, token, id string) error {
	err := s.backend.Do(ctx, backend.Request{
		Method: http.MethodDelete,
		Path:   "/admin/project/" + url.PathEscape(id),
		Token:  token,
	}, nil)
	if err != nil {
		return notFound(err, "Project")
	}
	s.emit(ctx, audit.EventProjectDeleted, id, "")
	return nil
}
