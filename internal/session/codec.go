package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"superadmin/internal/auth/models"
)

const issuer = "superadmin-portal"

// claims is the cookie payload. Expiry is enforced by the sliding window,
// not by a JWT exp claim, so an expired record can still be decoded.
type claims struct {
	Token        string                 `json:"tok,omitempty"`
	User         *models.MinimalProfile `json:"usr,omitempty"`
	LastActivity int64                  `json:"lat"`
	Expired      bool                   `json:"expired,omitempty"`
	jwt.RegisteredClaims
}

type codec struct {
	key []byte
}

func (c codec) encode(cl claims) (string, error) {
	cl.Issuer = issuer
	return jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(c.key)
}

var errInvalidCookie = errors.New("invalid session cookie")

func (c codec) decode(raw string) (claims, error) {
	var cl claims
	_, err := jwt.ParseWithClaims(raw, &cl, func(*jwt.Token) (any, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return claims{}, errors.Join(errInvalidCookie, err)
	}
	return cl, nil
}

func (cl claims) lastActivity() time.Time {
	return time.UnixMilli(cl.LastActivity)
}
