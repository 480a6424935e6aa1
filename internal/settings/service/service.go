// Package service manages the backend's default settings: the values new
// projects start from.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"superadmin/internal/backend"
	"superadmin/internal/settings/models"
	"superadmin/internal/settings/tree"
	dErrors "superadmin/pkg/domain-errors"
	audit "superadmin/pkg/platform/audit"
	"superadmin/pkg/platform/sentinel"
)

const settingsPath = "/admin/default-settings"

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

// List returns the settings whose key or description contains search.
func (s *Service) List(ctx context.Context, token, search string) ([]models.Setting, error) {
	var resp models.ListResponse
	if err := s.backend.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   settingsPath,
		Token:  token,
	}, &resp); err != nil {
		return nil, err
	}
	out := make([]models.Setting, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Matches(search) {
			out = append(out, item.Unwrap())
		}
	}
	return out, nil
}

// Get finds one setting. The backend has no single-setting read, so this
// filters the list.
func (s *Service) Get(ctx context.Context, token, id string) (models.Setting, error) {
	all, err := s.List(ctx, token, "")
	if err != nil {
		return models.Setting{}, err
	}
	for _, item := range all {
		if item.ID == id {
			return item, nil
		}
	}
	return models.Setting{}, dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, "Setting not found")
}

// Create converts the submitted value by type and creates the setting.
func (s *Service) Create(ctx context.Context, token string, in models.Create) error {
	in.Key = strings.TrimSpace(in.Key)
	if in.Key == "" {
		return dErrors.New(dErrors.CodeValidation, "Key is required")
	}
	value, err := ConvertValue(in.Type, in.Value)
	if err != nil {
		return err
	}
	body := map[string]any{
		"key":         in.Key,
		"type":        in.Type,
		"value":       value,
		"description": in.Description,
		"is_active":   in.IsActive,
	}
	if err := s.backend.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   settingsPath,
		Body:   body,
		Token:  token,
	}, nil); err != nil {
		return err
	}
	s.emit(ctx, audit.EventSettingCreated, in.Key, "")
	return nil
}

// SetActive switches a setting on or off.
func (s *Service) SetActive(ctx context.Context, token, id string, active bool) error {
	if err := s.put(ctx, token, id, map[string]any{"is_active": active}); err != nil {
		return err
	}
	s.emit(ctx, audit.EventSettingToggled, id, strconv.FormatBool(active))
	return nil
}

// UpdateValue replaces a setting's value.
func (s *Service) UpdateValue(ctx context.Context, token, id string, value json.RawMessage) error {
	if !json.Valid(value) {
		return dErrors.New(dErrors.CodeValidation, "Invalid JSON")
	}
	if err := s.put(ctx, token, id, map[string]any{"value": value}); err != nil {
		return err
	}
	s.emit(ctx, audit.EventSettingUpdated, id, "")
	return nil
}

// UpdateFields applies leaf edits to the current value of a json or array
// setting and saves the result.
func (s *Service) UpdateFields(ctx context.Context, token, id string, edits map[string]string) error {
	current, err := s.Get(ctx, token, id)
	if err != nil {
		return err
	}
	root, err := tree.Parse(current.Value)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "Current value is not valid JSON; use the raw editor")
	}
	updated, err := root.Apply(edits)
	if err != nil {
		return err
	}
	raw, err := updated.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode setting value: %w", err)
	}
	return s.UpdateValue(ctx, token, id, raw)
}

// UpdateText converts a submitted text value by the setting's type and
// saves it. Raw edits of json and array settings arrive here too.
func (s *Service) UpdateText(ctx context.Context, token, id string, typ models.Type, text string) error {
	value, err := ConvertValue(typ, text)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode setting value: %w", err)
	}
	return s.UpdateValue(ctx, token, id, raw)
}

type permissionsResponse struct {
	Items json.RawMessage `json:"items"`
}

// PermissionStructure returns the read-only base permission tree. The
// backend wraps it in items on some versions.
func (s *Service) PermissionStructure(ctx context.Context, token string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := s.backend.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   "/admin/permissions/base-structure",
		Token:  token,
	}, &raw); err != nil {
		return nil, err
	}
	var wrapped permissionsResponse
	if json.Unmarshal(raw, &wrapped) == nil && len(wrapped.Items) > 0 && string(wrapped.Items) != "null" {
		return wrapped.Items, nil
	}
	return raw, nil
}

func (s *Service) put(ctx context.Context, token, id string, body map[string]any) error {
	err := s.backend.Do(ctx, backend.Request{
		Method: http.MethodPut,
		Path:   settingsPath + "/" + url.PathEscape(id),
		Body:   body,
		Token:  token,
	}, nil)
	if backend.StatusOf(err) == http.StatusNotFound {
		return dErrors.Wrap(err, dErrors.CodeNotFound, "Setting not found")
	}
	return err
}

func (s *Service) emit(ctx context.Context, action audit.AuditEvent, subject, decision string) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, audit.Event{Action: string(action), Subject: subject, Decision: decision}); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", action, "error", err)
	}
}

// ConvertValue turns form text into the JSON value for typ: json and array
// are parsed (empty text is null), boolean is true only for "true", integer
// and float are parsed, anything else stays a string.
func ConvertValue(typ models.Type, text string) (any, error) {
	trimmed := strings.TrimSpace(text)
	switch typ {
	case models.TypeJSON, models.TypeArray:
		if trimmed == "" {
			return nil, nil
		}
		if !json.Valid([]byte(trimmed)) {
			return nil, dErrors.New(dErrors.CodeValidation, "Invalid JSON/Array format")
		}
		if typ == models.TypeArray && !strings.HasPrefix(trimmed, "[") {
			return nil, dErrors.New(dErrors.CodeValidation, "Array settings need a JSON array")
		}
		return json.RawMessage(trimmed), nil
	case models.TypeBoolean:
		return trimmed == "true", nil
	case models.TypeInteger:
		v, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeValidation, "Value must be an integer")
		}
		return v, nil
	case models.TypeFloat:
		v, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || !json.Valid([]byte(trimmed)) {
			return nil, dErrors.New(dErrors.CodeValidation, "Value must be a number")
		}
		return v, nil
	case models.TypeString:
		return text, nil
	}
	return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("Unknown setting type %q", typ))
}
