package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Registrations.Inc()
	m.Logins.WithLabelValues("ok").Inc()
	m.SessionEvents.WithLabelValues("session.signed_in").Add(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "codelearn_registrations_total 1")
	assert.Contains(t, string(body), `codelearn_logins_total{result="ok"} 1`)
	assert.Contains(t, string(body), `codelearn_session_events_total{kind="session.signed_in"} 3`)
	assert.NotContains(t, string(body), "codelearn_active_sessions")
}

func TestNew_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}
