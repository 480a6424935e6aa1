package service

import (
	"context"

	"superadmin/internal/auth/models"
	"superadmin/internal/backend"
	audit "superadmin/pkg/platform/audit"
	dErrors "superadmin/pkg/domain-errors"
)

type codeRequest struct {
	Code string `json:"code"`
}

// TwoFactorStatus returns the signed-in operator's enrolment.
func (s *Service) TwoFactorStatus(ctx context.Context, token string) (models.TwoFactorStatus, error) {
	var status models.TwoFactorStatus
	err := s.backend.Get(ctx, token, backend.PathTwoFactorStatus, nil, &status)
	return status, err
}

// BeginTwoFactorSetup asks the backend for a new TOTP secret.
func (s *Service) BeginTwoFactorSetup(ctx context.Context, token string) (models.TwoFactorSetup, error) {
	var setup models.TwoFactorSetup
	if err := s.backend.Post(ctx, token, backend.PathTwoFactorSetup, nil, &setup); err != nil {
		return models.TwoFactorSetup{}, err
	}
	if !setup.Success || setup.Secret == "" {
		return models.TwoFactorSetup{}, dErrors.New(dErrors.CodeBadRequest, "Failed to start 2FA setup.")
	}
	s.emit(ctx, audit.Event{Action: string(audit.EventTwoFactorSetupBegun)})
	return setup, nil
}

// EnableTwoFactor confirms setup with a code from the authenticator app.
func (s *Service) EnableTwoFactor(ctx context.Context, token, rawCode string) error {
	return s.confirm(ctx, token, rawCode, backend.PathTwoFactorEnable, audit.EventTwoFactorEnabled)
}

func (s *Service) DisableTwoFactor(ctx context.Context, token, rawCode string) error {
	return s.confirm(ctx, token, rawCode, backend.PathTwoFactorDisable, audit.EventTwoFactorDisabled)
}

func (s *Service) confirm(ctx context.Context, token, rawCode, path string, event audit.AuditEvent) error {
	code := NormalizeCode(rawCode)
	if !ValidCode(code) {
		return dErrors.New(dErrors.CodeValidation, MsgCodeShape)
	}
	var resp successResponse
	if err := s.backend.Post(ctx, token, path, codeRequest{Code: code}, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return dErrors.New(dErrors.CodeBadRequest, firstNonEmpty(resp.Message, MsgInvalidCode))
	}
	s.emit(ctx, audit.Event{Action: string(event)})
	return nil
}
