package backend

// Backend paths, relative to the configured API base URL.
const (
	PathLogin            = "/login"
	PathLogout           = "/logout"
	PathVerifyApp        = "/2fa/verify"
	PathVerifyEmail      = "/2fa/verify-email-otp"
	PathSendEmailCode    = "/2fa/send-email-otp"
	PathTwoFactorStatus  = "/2fa/status"
	PathTwoFactorSetup   = "/2fa/setup"
	PathTwoFactorEnable  = "/2fa/enable"
	PathTwoFactorDisable = "/2fa/disable"
)

// authEndpoints answer 401 for wrong credentials or codes; those responses
// never mean an established session was invalidated. The 2FA management
// calls carry the bearer token, but a wrong setup code is still a 401.
var authEndpoints = map[string]struct{}{
	PathLogin:            {},
	PathVerifyApp:        {},
	PathVerifyEmail:      {},
	PathSendEmailCode:    {},
	PathTwoFactorStatus:  {},
	PathTwoFactorSetup:   {},
	PathTwoFactorEnable:  {},
	PathTwoFactorDisable: {},
}

// IsAuthEndpoint matches the path exactly; query strings are not part of path.
func IsAuthEndpoint(path string) bool {
	_, ok := authEndpoints[path]
	return ok
}
