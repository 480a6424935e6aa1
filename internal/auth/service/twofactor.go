package service

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"superadmin/internal/auth/models"
	"superadmin/internal/backend"
	audit "superadmin/pkg/platform/audit"
	dErrors "superadmin/pkg/domain-errors"
	"superadmin/pkg/platform/sentinel"
)

type verifyRequest struct {
	Code  string `json:"code"`
	Token string `json:"token"`
}

type verifyResponse struct {
	Success  bool            `json:"success"`
	JWTToken string          `json:"jwt_token"`
	User     *models.Profile `json:"user"`
	Message  string          `json:"message"`
}

type sendCodeRequest struct {
	Token string `json:"token"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// VerifyCode completes a step-up challenge. A CodeUnauthorized error means
// the challenge itself is no longer usable and the operator must log in again.
func (s *Service) VerifyCode(ctx context.Context, challenge, rawCode string, channel models.Channel) (models.Credentials, error) {
	if challenge == "" {
		return models.Credentials{}, dErrors.New(dErrors.CodeUnauthorized, MsgInvalidChallenge)
	}
	code := NormalizeCode(rawCode)
	if !ValidCode(code) {
		return models.Credentials{}, dErrors.New(dErrors.CodeValidation, MsgCodeShape)
	}

	path := backend.PathVerifyApp
	if channel == models.ChannelEmail {
		path = backend.PathVerifyEmail
	}

	var resp verifyResponse
	err := s.backend.Post(ctx, "", path, verifyRequest{Code: code, Token: challenge}, &resp)
	if err != nil {
		s.incTwoFactor(string(channel), "failed")
		s.emit(ctx, audit.Event{Action: string(audit.EventSecondFactorFailed), Reason: string(channel)})
		if backend.StatusOf(err) == http.StatusUnauthorized {
			return models.Credentials{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, MsgSessionExpired)
		}
		return models.Credentials{}, dErrors.Wrap(err, dErrors.CodeBadRequest, backend.MessageOf(err, MsgInvalidCode))
	}

	if !resp.Success || resp.JWTToken == "" || resp.User == nil {
		s.incTwoFactor(string(channel), "failed")
		msg := resp.Message
		if msg == "" {
			msg = MsgInvalidCode
		}
		return models.Credentials{}, dErrors.New(dErrors.CodeBadRequest, msg)
	}

	if !resp.User.IsSuperAdmin {
		s.incTwoFactor(string(channel), "denied")
		s.emit(ctx, audit.Event{
			Action:     string(audit.EventLoginDenied),
			ActorID:    resp.User.ID,
			ActorEmail: resp.User.Email,
			Reason:     "not_super_admin",
		})
		return models.Credentials{}, dErrors.New(dErrors.CodeForbidden, MsgAccessDenied)
	}

	s.incTwoFactor(string(channel), "success")
	s.emit(ctx, audit.Event{
		Action:     string(audit.EventSecondFactorPassed),
		ActorID:    resp.User.ID,
		ActorEmail: resp.User.Email,
		Reason:     string(channel),
	})
	if err := s.cooldown.Release(ctx, challengeKey(challenge)); err != nil {
		s.logger.DebugContext(ctx, "cooldown release failed", "error", err)
	}
	return models.Credentials{Token: resp.JWTToken, Profile: *resp.User}, nil
}

// SendEmailCode asks the backend to email a code. It refuses while the
// resend window is open and starts a fresh EmailCooldown on success.
func (s *Service) SendEmailCode(ctx context.Context, challenge string) (time.Duration, error) {
	if challenge == "" {
		return 0, dErrors.New(dErrors.CodeUnauthorized, MsgInvalidChallenge)
	}
	key := challengeKey(challenge)

	started, left, err := s.cooldown.Acquire(ctx, key, EmailCooldown)
	if err != nil {
		s.logger.ErrorContext(ctx, "cooldown store unavailable", "error", err)
		return 0, dErrors.Wrap(err, dErrors.CodeUnavailable, MsgSendFailed)
	}
	if !started {
		return left, dErrors.Wrap(sentinel.ErrCooldown, dErrors.CodeTooManyRequests,
			fmt.Sprintf("Please wait %d seconds before requesting a new code.", CooldownSeconds(left)))
	}

	var resp successResponse
	err = s.backend.Post(ctx, "", backend.PathSendEmailCode, sendCodeRequest{Token: challenge}, &resp)
	if err != nil || !resp.Success {
		if relErr := s.cooldown.Release(ctx, key); relErr != nil {
			s.logger.WarnContext(ctx, "cooldown release failed", "error", relErr)
		}
		if err != nil {
			return 0, sendError(err)
		}
		return 0, dErrors.New(dErrors.CodeBadRequest, firstNonEmpty(resp.Message, MsgSendFailed))
	}

	if s.metrics != nil {
		s.metrics.IncEmailCodeSent()
	}
	s.emit(ctx, audit.Event{Action: string(audit.EventEmailCodeSent)})
	return EmailCooldown, nil
}

// CooldownRemaining is how long until another email code may be requested.
func (s *Service) CooldownRemaining(ctx context.Context, challenge string) time.Duration {
	if challenge == "" {
		return 0
	}
	left, err := s.cooldown.Remaining(ctx, challengeKey(challenge))
	if err != nil {
		return 0
	}
	return left
}

// CooldownSeconds rounds up so the page never shows 0 while still blocked.
func CooldownSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}

func sendError(err error) error {
	switch backend.StatusOf(err) {
	case http.StatusTooManyRequests:
		return dErrors.Wrap(err, dErrors.CodeTooManyRequests, MsgTooManyRequests)
	case http.StatusUnauthorized:
		return dErrors.Wrap(err, dErrors.CodeUnauthorized, MsgSessionExpired)
	case 0:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, MsgSendFailed)
	default:
		return dErrors.Wrap(err, dErrors.CodeBadRequest, backend.MessageOf(err, MsgSendFailed))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
