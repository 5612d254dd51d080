package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/railbook/internal/middleware"
)

// serveLogged runs one request through the SlogLogger and returns the parsed
// log line.
func serveLogged(t *testing.T, method, path string, next http.HandlerFunc) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := middleware.NewSlogLogger(logger)(next)

	req := httptest.NewRequest(method, path, nil)
	// Simulate what chimiddleware.RequestID does: inject a known ID into context.
	ctx := context.WithValue(req.Context(), chimiddleware.RequestIDKey, "test-req-id")
	req = req.WithContext(ctx)

	h.ServeHTTP(httptest.NewRecorder(), req)

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	return logEntry
}

// TestSlogLogger_logsRequestFields verifies that the SlogLogger middleware
// writes a structured JSON log line containing method, path, status, size,
// duration, and the request ID placed in context by chi's RequestID middleware.
func TestSlogLogger_logsRequestFields(t *testing.T) {
	logEntry := serveLogged(t, http.MethodGet, "/trains/T001", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("hello"))
	})

	require.Equal(t, "INFO", logEntry["level"])
	require.Equal(t, "GET", logEntry["method"])
	require.Equal(t, "/trains/T001", logEntry["path"])
	require.EqualValues(t, http.StatusOK, logEntry["status"])
	require.EqualValues(t, 5, logEntry["bytes"])
	require.Equal(t, "test-req-id", logEntry["request_id"])
	require.NotNil(t, logEntry["duration_ms"])
}

// TestSlogLogger_implicitOK verifies that a handler which never calls
// WriteHeader is logged as 200.
func TestSlogLogger_implicitOK(t *testing.T) {
	logEntry := serveLogged(t, http.MethodGet, "/healthz", func(http.ResponseWriter, *http.Request) {})

	require.EqualValues(t, http.StatusOK, logEntry["status"])
}

func TestSlogLogger_levelFollowsStatus(t *testing.T) {
	cases := map[int]string{
		http.StatusConflict:            "WARN",
		http.StatusNotFound:            "WARN",
		http.StatusInternalServerError: "ERROR",
	}
	for status, level := range cases {
		logEntry := serveLogged(t, http.MethodDelete, "/bookings/B1", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		})
		require.Equal(t, level, logEntry["level"], "status %d", status)
	}
}
