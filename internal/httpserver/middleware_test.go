package httpserver

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	authdomain "taskmanager/backend/internal/domain/auth"

	"github.com/stretchr/testify/assert"
)

func TestWithRecovery(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	withRecovery(logger)(panicky).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
	assert.Contains(t, logs.String(), "panic recovered")
}

func TestWithLogging(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	metrics := &recordingMetrics{}

	handler := withLogging(logger, metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusForbidden, "access denied")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer secret-token-value")
	req = req.WithContext(WithPrincipal(req.Context(), &authdomain.Principal{Subject: "alice", UserID: 1}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	out := logs.String()
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"status":403`)
	assert.Contains(t, out, `"subject":"alice"`)
	assert.NotContains(t, out, "secret-token-value")
	assert.Equal(t, []int{http.StatusForbidden}, metrics.statuses)
}

func TestIsOriginAllowed(t *testing.T) {
	assert.True(t, isOriginAllowed("https://a.example", []string{"*"}))
	assert.True(t, isOriginAllowed("https://A.example", []string{"https://a.example"}))
	assert.False(t, isOriginAllowed("https://b.example", []string{"https://a.example"}))
}
