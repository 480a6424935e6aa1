package httpserver

import (
	"net/http"
	"time"
)

// New builds the portal HTTP server. The write timeout leaves room for the
// backend request timeout plus template rendering.
func New(addr string, handler http.Handler, backendTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      backendTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
