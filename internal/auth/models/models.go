package models

// Profile is the operator record the backend returns from login and 2FA
// verification. Unknown fields are ignored.
type Profile struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Phone        *string `json:"phone,omitempty"`
	PhotoPath    *string `json:"photo_path,omitempty"`
	IsAdmin      bool    `json:"is_admin"`
	IsSuperAdmin bool    `json:"is_super_admin"`
	IsVerified   bool    `json:"is_verified"`
	IsActive     bool    `json:"is_active"`
	LastLoginAt  string  `json:"last_login_at,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// MinimalProfile is what the session keeps: enough for guard decisions and
// the page header.
type MinimalProfile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	PhotoPath    string `json:"photo_path,omitempty"`
	IsAdmin      bool   `json:"is_admin"`
	IsSuperAdmin bool   `json:"is_super_admin"`
	IsVerified   bool   `json:"is_verified"`
	IsActive     bool   `json:"is_active"`
	LastLoginAt  string `json:"last_login_at,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// Minimal reduces the backend profile to the session projection.
func (p Profile) Minimal() MinimalProfile {
	m := MinimalProfile{
		ID:           p.ID,
		Name:         p.Name,
		Email:        p.Email,
		IsAdmin:      p.IsAdmin,
		IsSuperAdmin: p.IsSuperAdmin,
		IsVerified:   p.IsVerified,
		IsActive:     p.IsActive,
		LastLoginAt:  p.LastLoginAt,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.Phone != nil {
		m.Phone = *p.Phone
	}
	if p.PhotoPath != nil {
		m.PhotoPath = *p.PhotoPath
	}
	return m
}

// Initials is used by the header avatar when no photo is set.
func (m MinimalProfile) Initials() string {
	var out []rune
	start := true
	for _, r := range m.Name {
		if r == ' ' {
			start = true
			continue
		}
		if start {
			out = append(out, r)
			start = false
		}
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "SA"
	}
	return string(out)
}

// Credentials is a bearer token with the profile it was issued for.
type Credentials struct {
	Token   string
	Profile Profile
}

// LoginKind classifies a successful credential exchange.
type LoginKind int

const (
	LoginSucceeded LoginKind = iota
	LoginRequiresSecondFactor
)

func (k LoginKind) String() string {
	if k == LoginRequiresSecondFactor {
		return "requires_2fa"
	}
	return "success"
}

// LoginResult is either a session-ready Credentials pair or a Challenge
// token for step-up. Failures are returned as errors instead.
type LoginResult struct {
	Kind        LoginKind
	Credentials Credentials
	Challenge   string
}

// Channel is the second-factor delivery channel.
type Channel string

const (
	ChannelApp   Channel = "app"
	ChannelEmail Channel = "email"
)

// ParseChannel defaults anything unrecognised to the authenticator app.
func ParseChannel(s string) Channel {
	if Channel(s) == ChannelEmail {
		return ChannelEmail
	}
	return ChannelApp
}

// TwoFactorStatus is the operator's own 2FA enrolment state.
type TwoFactorStatus struct {
	IsEnabled bool   `json:"is_enabled"`
	EnabledAt string `json:"enabled_at,omitempty"`
}

// TwoFactorSetup carries a freshly generated TOTP secret.
type TwoFactorSetup struct {
	Success bool   `json:"success"`
	Secret  string `json:"secret"`
	QRURI   string `json:"qr_uri"`
}
