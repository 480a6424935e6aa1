package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestCounters(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.IncLogin("denied")
	m.IncLogin("denied")
	m.IncForcedLogout("unauthorized")
	m.IncTwoFactor("totp", "success")
	m.IncEmailCodeSent()

	assert.Equal(t, 2.0, counterValue(t, m.LoginAttempts.WithLabelValues("denied")))
	assert.Equal(t, 1.0, counterValue(t, m.ForcedLogouts.WithLabelValues("unauthorized")))
	assert.Equal(t, 1.0, counterValue(t, m.TwoFactorResults.WithLabelValues("totp", "success")))
	assert.Equal(t, 1.0, counterValue(t, m.EmailCodesSent))
}
