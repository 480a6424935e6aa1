package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"superadmin/internal/auth/models"
	authService "superadmin/internal/auth/service"
	"superadmin/internal/backend"
	"superadmin/internal/session"
	"superadmin/internal/web"
	dErrors "superadmin/pkg/domain-errors"
	"superadmin/pkg/requestcontext"
)

// Service is the credential exchange and second-factor surface the pages use.
type Service interface {
	Login(ctx context.Context, identifier, password string) (models.LoginResult, error)
	VerifyCode(ctx context.Context, challenge, rawCode string, channel models.Channel) (models.Credentials, error)
	SendEmailCode(ctx context.Context, challenge string) (time.Duration, error)
	CooldownRemaining(ctx context.Context, challenge string) time.Duration
	Logout(ctx context.Context, token string)
	TwoFactorStatus(ctx context.Context, token string) (models.TwoFactorStatus, error)
	BeginTwoFactorSetup(ctx context.Context, token string) (models.TwoFactorSetup, error)
	EnableTwoFactor(ctx context.Context, token, rawCode string) error
	DisableTwoFactor(ctx context.Context, token, rawCode string) error
}

// Sessions is the session bridge: the only way credentials become a session.
type Sessions interface {
	Establish(w http.ResponseWriter, r *http.Request, creds models.Credentials) (session.Snapshot, error)
	Destroy(w http.ResponseWriter)
}

// VerifyState remembers which channel the verification page shows.
type VerifyState interface {
	SetEmailMode(w http.ResponseWriter, r *http.Request, challenge string, on bool)
	EmailMode(r *http.Request, challenge string) bool
}

type Handler struct {
	auth     Service
	sessions Sessions
	state    VerifyState
	web      *web.Renderer
	logger   *slog.Logger
}

func New(auth Service, sessions Sessions, state VerifyState, renderer *web.Renderer, logger *slog.Logger) *Handler {
	return &Handler{
		auth:     auth,
		sessions: sessions,
		state:    state,
		web:      renderer,
		logger:   logger,
	}
}

// Register mounts the login, verification, logout and 2FA management pages.
func (h *Handler) Register(r chi.Router) {
	r.Get("/login", h.handleLoginPage)
	r.Post("/login", h.handleLogin)
	r.Get("/verify-2fa", h.handleVerifyPage)
	r.Post("/verify-2fa", h.handleVerify)
	r.Post("/verify-2fa/send-email", h.handleSendEmailCode)
	r.Post("/verify-2fa/use-app", h.handleUseApp)
	r.Post("/logout", h.handleLogout)

	r.Get("/setup-2fa", h.handleSetupPage)
	r.Post("/setup-2fa/start", h.handleSetupStart)
	r.Post("/setup-2fa/enable", h.handleSetupEnable)
	r.Post("/setup-2fa/disable", h.handleSetupDisable)
}

// LoginPage feeds templates/login.html.
type LoginPage struct {
	Identifier string
	Error      string
	Expired    bool
}

func (h *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	snap := session.FromContext(r.Context())
	h.web.Render(w, r, http.StatusOK, web.PageLogin, LoginPage{Expired: snap.Expired})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	if err := r.ParseForm(); err != nil {
		h.web.Render(w, r, http.StatusBadRequest, web.PageLogin, LoginPage{Error: "Invalid form submission."})
		return
	}
	identifier := strings.TrimSpace(r.PostFormValue("identifier"))
	password := r.PostFormValue("password")

	result, err := h.auth.Login(ctx, identifier, password)
	if err != nil {
		h.logger.InfoContext(ctx, "login rejected",
			"request_id", requestID,
			"code", dErrors.CodeOf(err),
		)
		h.web.Render(w, r, statusFor(err), web.PageLogin, LoginPage{
			Identifier: identifier,
			Error:      messageOf(err, authService.MsgLoginFailed),
		})
		return
	}

	if result.Kind == models.LoginRequiresSecondFactor {
		h.web.Redirect(w, r, verifyURL(result.Challenge))
		return
	}

	if _, err := h.sessions.Establish(w, r, result.Credentials); err != nil {
		h.logger.WarnContext(ctx, "session refused",
			"request_id", requestID,
			"error", err,
		)
		h.web.Render(w, r, statusFor(err), web.PageLogin, LoginPage{
			Identifier: identifier,
			Error:      messageOf(err, authService.MsgLoginFailed),
		})
		return
	}
	h.web.Redirect(w, r, "/")
}

// VerifyPage feeds templates/verify_2fa.html.
type VerifyPage struct {
	Challenge string
	EmailMode bool
	// Cooldown is whole seconds until another email code may be sent.
	Cooldown int
	Error    string
	// SessionExpired makes the page return to /login after two seconds.
	SessionExpired bool
}

// Invalid is true when the page was reached without a challenge token.
func (p VerifyPage) Invalid() bool {
	return p.Challenge == ""
}

func (h *Handler) verifyPage(r *http.Request, challenge string) VerifyPage {
	return VerifyPage{
		Challenge: challenge,
		EmailMode: h.state.EmailMode(r, challenge),
		Cooldown:  authService.CooldownSeconds(h.auth.CooldownRemaining(r.Context(), challenge)),
	}
}

func (h *Handler) handleVerifyPage(w http.ResponseWriter, r *http.Request) {
	challenge := r.URL.Query().Get("token")
	status := http.StatusOK
	if challenge == "" {
		status = http.StatusBadRequest
	}
	h.web.Render(w, r, status, web.PageVerify, h.verifyPage(r, challenge))
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		h.web.Render(w, r, http.StatusBadRequest, web.PageVerify, VerifyPage{})
		return
	}
	challenge := r.PostFormValue("token")
	if challenge == "" {
		h.web.Render(w, r, http.StatusBadRequest, web.PageVerify, VerifyPage{})
		return
	}
	channel := models.ParseChannel(r.PostFormValue("channel"))

	creds, err := h.auth.VerifyCode(ctx, challenge, r.PostFormValue("code"), channel)
	if err != nil {
		h.renderVerifyError(w, r, challenge, err)
		return
	}
	if _, err := h.sessions.Establish(w, r, creds); err != nil {
		h.renderVerifyError(w, r, challenge, err)
		return
	}
	h.web.Redirect(w, r, "/")
}

func (h *Handler) handleSendEmailCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		h.web.Render(w, r, http.StatusBadRequest, web.PageVerify, VerifyPage{})
		return
	}
	challenge := r.PostFormValue("token")
	if challenge == "" {
		h.web.Render(w, r, http.StatusBadRequest, web.PageVerify, VerifyPage{})
		return
	}

	if _, err := h.auth.SendEmailCode(ctx, challenge); err != nil {
		h.renderVerifyError(w, r, challenge, err)
		return
	}
	h.state.SetEmailMode(w, r, challenge, true)
	h.web.Toast(w, r, session.ToastSuccess, "Verification code sent to your email.")
	h.web.Redirect(w, r, verifyURL(challenge))
}

func (h *Handler) handleUseApp(w http.ResponseWriter, r *http.Request) {
	challenge := r.PostFormValue("token")
	if challenge == "" {
		h.web.Render(w, r, http.StatusBadRequest, web.PageVerify, VerifyPage{})
		return
	}
	h.state.SetEmailMode(w, r, challenge, false)
	h.web.Redirect(w, r, verifyURL(challenge))
}

// renderVerifyError keeps the operator on the verification page. An
// unauthorized outcome means the challenge is dead, so the page shows the
// message and then falls back to /login.
func (h *Handler) renderVerifyError(w http.ResponseWriter, r *http.Request, challenge string, err error) {
	page := h.verifyPage(r, challenge)
	page.Error = messageOf(err, authService.MsgInvalidCode)
	if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
		page.SessionExpired = true
		page.Error = authService.MsgSessionExpired
	}
	h.logger.InfoContext(r.Context(), "second factor rejected",
		"request_id", requestcontext.RequestID(r.Context()),
		"code", dErrors.CodeOf(err),
	)
	h.web.Render(w, r, statusFor(err), web.PageVerify, page)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	snap := session.FromContext(r.Context())
	h.auth.Logout(r.Context(), snap.Token)
	h.sessions.Destroy(w)
	h.web.Redirect(w, r, "/login")
}

// SetupPage feeds templates/setup_2fa.html.
type SetupPage struct {
	Status models.TwoFactorStatus
	// Setup is set only on the response to a setup request; the secret is
	// never stored.
	Setup *models.TwoFactorSetup
	Error string
}

func (h *Handler) handleSetupPage(w http.ResponseWriter, r *http.Request) {
	snap := session.FromContext(r.Context())
	status, err := h.auth.TwoFactorStatus(r.Context(), snap.Token)
	if err != nil {
		if h.web.EndSession(w, r, err) {
			return
		}
		h.web.Render(w, r, http.StatusOK, web.PageSetup2FA, SetupPage{Error: messageOf(err, "Failed to load 2FA status")})
		return
	}
	h.web.Render(w, r, http.StatusOK, web.PageSetup2FA, SetupPage{Status: status})
}

func (h *Handler) handleSetupStart(w http.ResponseWriter, r *http.Request) {
	snap := session.FromContext(r.Context())
	setup, err := h.auth.BeginTwoFactorSetup(r.Context(), snap.Token)
	if err != nil {
		if h.web.EndSession(w, r, err) {
			return
		}
		h.web.Render(w, r, statusFor(err), web.PageSetup2FA, SetupPage{Error: messageOf(err, "Failed to start 2FA setup")})
		return
	}
	h.web.Render(w, r, http.StatusOK, web.PageSetup2FA, SetupPage{Setup: &setup})
}

func (h *Handler) handleSetupEnable(w http.ResponseWriter, r *http.Request) {
	h.confirmSetup(w, r, h.auth.EnableTwoFactor, "Two-factor authentication enabled.")
}

func (h *Handler) handleSetupDisable(w http.ResponseWriter, r *http.Request) {
	h.confirmSetup(w, r, h.auth.DisableTwoFactor, "Two-factor authentication disabled.")
}

func (h *Handler) confirmSetup(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, token, code string) error, success string) {
	ctx := r.Context()
	snap := session.FromContext(ctx)
	if err := r.ParseForm(); err != nil {
		h.web.Render(w, r, http.StatusBadRequest, web.PageSetup2FA, SetupPage{Error: "Invalid form submission."})
		return
	}
	if err := apply(ctx, snap.Token, r.PostFormValue("code")); err != nil {
		if h.web.EndSession(w, r, err) {
			return
		}
		page := SetupPage{Error: messageOf(err, authService.MsgInvalidCode)}
		if secret := r.PostFormValue("secret"); secret != "" {
			page.Setup = &models.TwoFactorSetup{Success: true, Secret: secret, QRURI: r.PostFormValue("qr_uri")}
		}
		if status, statusErr := h.auth.TwoFactorStatus(ctx, snap.Token); statusErr == nil {
			page.Status = status
		}
		h.web.Render(w, r, statusFor(err), web.PageSetup2FA, page)
		return
	}
	h.web.Toast(w, r, session.ToastSuccess, success)
	h.web.Redirect(w, r, "/setup-2fa")
}

// messageOf prefers the service's own message, then the backend's text.
func messageOf(err error, fallback string) string {
	if de, ok := dErrors.As(err); ok && de.Message != "" {
		return de.Message
	}
	return backend.MessageOf(err, fallback)
}

func verifyURL(challenge string) string {
	return "/verify-2fa?token=" + url.QueryEscape(challenge)
}

// statusFor maps page outcomes onto statuses; transport failures show as 502.
func statusFor(err error) int {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeValidation, dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeTooManyRequests:
		return http.StatusTooManyRequests
	case dErrors.CodeUnavailable, dErrors.CodeTimeout:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}
