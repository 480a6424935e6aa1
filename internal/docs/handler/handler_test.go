package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"superadmin/internal/docs"
	"superadmin/internal/session"
	"superadmin/internal/web"
	"superadmin/pkg/testutil"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	keys, err := session.DeriveKeys([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	bridge := session.NewBridge(keys.SessionSigning, 30*time.Minute)
	renderer, err := web.New(session.NewFlash(keys, false, logger), bridge, logger)
	require.NoError(t, err)
	catalog, err := docs.Load()
	require.NoError(t, err)

	r := chi.NewRouter()
	New(catalog, docs.Broadcaster{Host: "rt.example.com", Port: 443, Scheme: "https", Key: "cobuild-key"}, renderer).Register(r)
	return r
}

func TestEventsPage(t *testing.T) {
	router := newRouter(t)

	testutil.Given(t, "the embedded catalog", func(t *testing.T) {
		testutil.When(t, "the docs page is requested", func(t *testing.T) {
			rr := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/docs/websocket-events", nil))

			testutil.Then(t, "every event and the broadcaster settings are listed", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusOK)
				testutil.AssertBodyContains(t, rr,
					"wss://rt.example.com:443", "cobuild-key", "(TLS)",
					`id="permission-updated"`, "channel.member.added", ".message.sent",
					"<strong>without requiring a re-login</strong>", "messaging.direct.{conversationId}",
				)
			})
		})
	})
}

func TestDocsRootRedirects(t *testing.T) {
	rr := testutil.DoRequest(newRouter(t), httptest.NewRequest(http.MethodGet, "/docs", nil))

	testutil.AssertRedirect(t, rr, "/docs/websocket-events")
}
