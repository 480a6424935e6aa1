package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"superadmin/internal/admin/models"
	"superadmin/internal/backend"
	audit "superadmin/pkg/platform/audit"
	dErrors "superadmin/pkg/domain-errors"
)

// The user detail endpoint returns items as an object or a one-element array.
type userDetailResponse struct {
	Items json.RawMessage `json:"items"`
}

// GetUser returns one user with associated projects.
func (s *Service) GetUser(ctx context.Context, token, id string) (models.User, error) {
	var resp userDetailResponse
	err := s.backend.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   "/admin/user/" + url.PathEscape(id),
		Token:  token,
	}, &resp)
	if err != nil {
		return models.User{}, notFound(err, "User")
	}
	user, ok := decodeOneOrFirst[models.User](resp.Items)
	if !ok || user.ID == "" {
		return models.User{}, dErrors.New(dErrors.CodeNotFound, "User not found")
	}
	return user, nil
}

func decodeOneOrFirst[T any](raw json.RawMessage) (T, bool) {
	var zero T
	if len(raw) == 0 {
		return zero, false
	}
	if raw[0] == '[' {
		var list []T
		if err := json.Unmarshal(raw, &list); err != nil || len(list) == 0 {
			return zero, false
		}
		return list[0], true
	}
	var one T
	if err := json.Unmarshal(raw, &one); err != nil {
		return zero, false
	}
	return one, true
}

// ToggleUserStatus flips is_active on the backend.
func (s *Service) ToggleUserStatus(ctx context.Context, token, id string) error {
	err := s.backend.Do(ctx, backend.Request{
		Method: http.MethodPatch,
		Path:   "/admin/user/" + url.PathEscape(id) + "/toggle-status",
		Body:   struct{}{},
		Token:  token,
	}, nil)
	if err != nil {
		return notFound(err, "User")
	}
	s.emit(ctx, audit.EventUserStatusToggled, id, "")
	return nil
}

func (s *Service) DeleteUser(ctx context.Context, token, id string) error {
	err := s.backend.Do(ctx, backend.Request{
		Method: http.MethodDelete,
		Path:   "/admin/user/" + url.PathEscape(id),
		Token:  token,
	}, nil)
	if err != nil {
		return notFound(err, "User")
	}
	s.emit(ctx, audit.EventUserDeleted, id, "")
	return nil
}
