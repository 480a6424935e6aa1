package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"superadmin/pkg/requestcontext"
)

func TestClientIPFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{name: "first forwarded-for entry", header: map[string]string{"X-Forwarded-For": "1.1.1.1, 10.0.0.1"}, want: "1.1.1.1"},
		{name: "real ip header", header: map[string]string{"X-Real-IP": " 2.2.2.2 "}, want: "2.2.2.2"},
		{name: "remote addr v4", remote: "3.3.3.3:5555", want: "3.3.3.3"},
		{name: "remote addr v6", remote: "[::1]:5555", want: "::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.header {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIPFromRequest(r))
		})
	}
}

func TestClientMetadataMiddleware(t *testing.T) {
	var device, ip string
	h := ClientMetadata(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		device = requestcontext.Device(r.Context())
		ip = requestcontext.ClientIP(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "9.9.9.9:1234"
	r.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0")
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "9.9.9.9", ip)
	assert.Contains(t, device, "Firefox")
}

func TestDeviceLabelEmpty(t *testing.T) {
	assert.Empty(t, DeviceLabel("  "))
}
