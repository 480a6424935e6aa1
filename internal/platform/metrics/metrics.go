package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the portal's Prometheus collectors.
type Metrics struct {
	LoginAttempts    *prometheus.CounterVec
	TwoFactorResults *prometheus.CounterVec
	EmailCodesSent   prometheus.Counter
	ForcedLogouts    *prometheus.CounterVec
	SessionsExpired  prometheus.Counter
	BackendLatency   *prometheus.HistogramVec
	HTTPLatency      *prometheus.HistogramVec
}

// New creates and registers all metrics with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers against reg; tests pass a fresh registry.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LoginAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "superadmin_login_attempts_total",
			Help: "Login attempts by outcome (success, requires_2fa, denied, failed)",
		}, []string{"outcome"}),
		TwoFactorResults: f.NewCounterVec(prometheus.CounterOpts{
			Name: "superadmin_2fa_verifications_total",
			Help: "Second-factor verifications by method and outcome",
		}, []string{"method", "outcome"}),
		EmailCodesSent: f.NewCounter(prometheus.CounterOpts{
			Name: "superadmin_2fa_email_codes_sent_total",
			Help: "Email verification codes requested from the backend",
		}),
		ForcedLogouts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "superadmin_forced_logouts_total",
			Help: "Forced logouts triggered by backend session invalidation",
		}, []string{"reason"}),
		SessionsExpired: f.NewCounter(prometheus.CounterOpts{
			Name: "superadmin_sessions_expired_total",
			Help: "Sessions cleared by inactivity expiry",
		}),
		BackendLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "superadmin_backend_request_duration_seconds",
			Help:    "Latency of backend API calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "status"}),
		HTTPLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "superadmin_http_request_duration_seconds",
			Help:    "Latency of portal HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
}

func (m *Metrics) IncLogin(outcome string) {
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncTwoFactor(method, outcome string) {
	m.TwoFactorResults.WithLabelValues(method, outcome).Inc()
}

func (m *Metrics) IncEmailCodeSent() {
	m.EmailCodesSent.Inc()
}

func (m *Metrics) IncForcedLogout(reason string) {
	m.ForcedLogouts.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncSessionExpired() {
	m.SessionsExpired.Inc()
}

func (m *Metrics) ObserveBackend(method, status string, seconds float64) {
	m.BackendLatency.WithLabelValues(method, status).Observe(seconds)
}

func (m *Metrics) ObserveHTTP(method, status string, seconds float64) {
	m.HTTPLatency.WithLabelValues(method, status).Observe(seconds)
}
