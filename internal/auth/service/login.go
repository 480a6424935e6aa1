package service

import (
	"context"

	"superadmin/internal/auth/models"
	"superadmin/internal/backend"
	audit "superadmin/pkg/platform/audit"
	dErrors "superadmin/pkg/domain-errors"
)

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResponse struct {
	Items *struct {
		Token string          `json:"token"`
		User  *models.Profile `json:"user"`
	} `json:"items"`
	Requires2FA bool   `json:"requires_2fa"`
	TwoFAToken  string `json:"two_fa_token"`
}

// Login exchanges credentials with the backend. A step-up signal is honoured
// whether it arrives on a success or an error status.
func (s *Service) Login(ctx context.Context, identifier, password string) (models.LoginResult, error) {
	if identifier == "" || password == "" {
		return models.LoginResult{}, dErrors.New(dErrors.CodeValidation, MsgCredentialsNeeded)
	}

	var resp loginResponse
	err := s.backend.Post(ctx, "", backend.PathLogin, loginRequest{Login: identifier, Password: password}, &resp)
	if err != nil {
		if apiErr, ok := backend.AsAPIError(err); ok && apiErr.Requires2FA && apiErr.TwoFAToken != "" {
			return s.stepUp(ctx, identifier, apiErr.TwoFAToken), nil
		}
		s.incLogin("failed")
		s.emit(ctx, audit.Event{Action: string(audit.EventLoginFailed), Subject: identifier, Reason: backend.ErrorTextOf(err, "transport")})
		return models.LoginResult{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, backend.ErrorTextOf(err, MsgLoginFailed))
	}

	if resp.Requires2FA {
		if resp.TwoFAToken == "" {
			s.incLogin("failed")
			return models.LoginResult{}, dErrors.New(dErrors.CodeUnauthorized, MsgLoginFailed)
		}
		return s.stepUp(ctx, identifier, resp.TwoFAToken), nil
	}

	if resp.Items == nil || resp.Items.Token == "" || resp.Items.User == nil {
		s.incLogin("failed")
		s.logger.WarnContext(ctx, "login response missing token or user")
		return models.LoginResult{}, dErrors.New(dErrors.CodeUnauthorized, MsgLoginFailed)
	}

	if !resp.Items.User.IsSuperAdmin {
		s.incLogin("denied")
		s.emit(ctx, audit.Event{
			Action:     string(audit.EventLoginDenied),
			ActorID:    resp.Items.User.ID,
			ActorEmail: resp.Items.User.Email,
			Reason:     "not_super_admin",
		})
		return models.LoginResult{}, dErrors.New(dErrors.CodeForbidden, MsgAccessDenied)
	}

	s.incLogin("success")
	s.emit(ctx, audit.Event{
		Action:     string(audit.EventLoginSucceeded),
		ActorID:    resp.Items.User.ID,
		ActorEmail: resp.Items.User.Email,
	})
	return models.LoginResult{
		Kind:        models.LoginSucceeded,
		Credentials: models.Credentials{Token: resp.Items.Token, Profile: *resp.Items.User},
	}, nil
}

func (s *Service) stepUp(ctx context.Context, identifier, challenge string) models.LoginResult {
	s.incLogin("requires_2fa")
	s.emit(ctx, audit.Event{Action: string(audit.EventSecondFactorNeeded), Subject: identifier})
	return models.LoginResult{Kind: models.LoginRequiresSecondFactor, Challenge: challenge}
}

// Logout revokes the token locally first, then tells the backend. The
// backend call is best effort.
func (s *Service) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := s.revoker.Revoke(ctx, token); err != nil {
		s.logger.WarnContext(ctx, "failed to record logout", "error", err)
	}
	if err := s.backend.Post(ctx, token, backend.PathLogout, nil, nil); err != nil {
		s.logger.InfoContext(ctx, "backend logout failed", "error", err)
	}
	s.emit(ctx, audit.Event{Action: string(audit.EventLoggedOut)})
}
