package session

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	flashSessionName = "portal_flash"
	keyEmailMode     = "email_mode"
)

// Toast kinds.
const (
	ToastSuccess = "success"
	ToastError   = "error"
)

// Toast is a one-shot notification shown after a redirect.
type Toast struct {
	Kind    string
	Message string
}

// Store is the subset of gorilla/sessions the flash helper needs.
type Store interface {
	Get(r *http.Request, name string) (*sessions.Session, error)
	Save(r *http.Request, w http.ResponseWriter, s *sessions.Session) error
}

// Flash carries short-lived UI state (toasts and the verify page's email
// mode) in an encrypted cookie separate from the session JWT.
type Flash struct {
	store  Store
	logger *slog.Logger
}

func NewFlash(keys Keys, secure bool, logger *slog.Logger) *Flash {
	store := sessions.NewCookieStore(keys.FlashHash, keys.FlashBlock)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return NewFlashWithStore(store, logger)
}

func NewFlashWithStore(store Store, logger *slog.Logger) *Flash {
	return &Flash{store: store, logger: logger}
}

// AddToast queues a toast for the next rendered page.
func (f *Flash) AddToast(w http.ResponseWriter, r *http.Request, kind, message string) {
	sess := f.get(r)
	sess.AddFlash(message, kind)
	f.save(w, r, sess)
}

// Toasts drains queued toasts. Must be called before the body is written.
func (f *Flash) Toasts(w http.ResponseWriter, r *http.Request) []Toast {
	sess := f.get(r)
	var out []Toast
	for _, kind := range []string{ToastSuccess, ToastError} {
		for _, v := range sess.Flashes(kind) {
			if msg, ok := v.(string); ok {
				out = append(out, Toast{Kind: kind, Message: msg})
			}
		}
	}
	if len(out) > 0 {
		f.save(w, r, sess)
	}
	return out
}

// SetEmailMode remembers that the operator switched the verify page for
// challenge to emailed codes.
func (f *Flash) SetEmailMode(w http.ResponseWriter, r *http.Request, challenge string, on bool) {
	sess := f.get(r)
	if on {
		sess.Values[keyEmailMode] = hashChallenge(challenge)
	} else {
		delete(sess.Values, keyEmailMode)
	}
	f.save(w, r, sess)
}

// EmailMode reports whether the verify page for challenge is in email mode.
func (f *Flash) EmailMode(r *http.Request, challenge string) bool {
	if challenge == "" {
		return false
	}
	v, _ := f.get(r).Values[keyEmailMode].(string)
	return v == hashChallenge(challenge)
}

func (f *Flash) get(r *http.Request) *sessions.Session {
	sess, err := f.store.Get(r, flashSessionName)
	if err != nil {
		// Undecodable cookies come back as a fresh session alongside the error.
		f.logger.DebugContext(r.Context(), "resetting flash cookie", "error", err)
	}
	return sess
}

func (f *Flash) save(w http.ResponseWriter, r *http.Request, sess *sessions.Session) {
	if err := f.store.Save(r, w, sess); err != nil {
		f.logger.WarnContext(r.Context(), "failed to save flash cookie", "error", err)
	}
}

func hashChallenge(challenge string) string {
	sum := sha256.Sum256([]byte(challenge))
	return hex.EncodeToString(sum[:8])
}
