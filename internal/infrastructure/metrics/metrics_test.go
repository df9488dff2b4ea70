package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, reg *prometheus.Registry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLogin(true)
	c.RecordLogin(false)
	c.RecordLogin(false)
	c.RecordTokenRejected("expired")
	c.RecordAccessDenied("forbidden")
	c.RecordHTTPStatus(http.StatusForbidden)
	c.RecordHTTPStatus(http.StatusForbidden)

	out := scrape(t, reg)
	assert.Contains(t, out, `taskmanager_login_total{outcome="success"} 1`)
	assert.Contains(t, out, `taskmanager_login_total{outcome="failure"} 2`)
	assert.Contains(t, out, `taskmanager_token_rejected_total{reason="expired"} 1`)
	assert.Contains(t, out, `taskmanager_access_denied_total{kind="forbidden"} 1`)
	assert.Contains(t, out, `taskmanager_http_requests_total{status="403"} 2`)
}

func TestCollector_GatherFamilies(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordLogin(true)
	c.RecordTokenRejected("malformed")
	c.RecordAccessDenied("unauthenticated")
	c.RecordHTTPStatus(http.StatusOK)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"taskmanager_login_total",
		"taskmanager_token_rejected_total",
		"taskmanager_access_denied_total",
		"taskmanager_http_requests_total",
	}, names)
}

func TestNewCollector_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)
	assert.Panics(t, func() { NewCollector(reg) })
}
