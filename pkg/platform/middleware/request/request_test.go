package request

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"automatik/pkg/requestcontext"
)

func TestRequestID(t *testing.T) {
	capture := func(dst *string) http.Handler {
		return RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*dst = requestcontext.RequestID(r.Context())
		}))
	}

	t.Run("generates UUID when no header provided", func(t *testing.T) {
		var captured string
		w := httptest.NewRecorder()
		capture(&captured).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/tenants", nil))

		assert.Len(t, captured, 36)
		assert.Equal(t, captured, w.Header().Get("X-Request-ID"))
	})

	t.Run("keeps valid client-provided ID", func(t *testing.T) {
		var captured string
		req := httptest.NewRequest(http.MethodGet, "/auth/tenants", nil)
		req.Header.Set("X-Request-ID", "trace.span_1234")
		w := httptest.NewRecorder()
		capture(&captured).ServeHTTP(w, req)

		assert.Equal(t, "trace.span_1234", captured)
		assert.Equal(t, "trace.span_1234", w.Header().Get("X-Request-ID"))
	})

	t.Run("replaces unsafe IDs", func(t *testing.T) {
		for _, unsafe := range []string{
			strings.Repeat("a", MaxRequestIDLength+1),
			"valid\ninjected-log-line",
			"request id",
			`request"id`,
			"request;id",
			`request\id`,
		} {
			var captured string
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Request-ID", unsafe)
			capture(&captured).ServeHTTP(httptest.NewRecorder(), req)

			assert.NotEqual(t, unsafe, captured)
			assert.Len(t, captured, 36, "unsafe id %q", unsafe)
		}
	})
}

func TestIsValidRequestID(t *testing.T) {
	assert.True(t, isValidRequestID("abc-123_x.y"))
	assert.True(t, isValidRequestID(strings.Repeat("x", MaxRequestIDLength)))
	assert.False(t, isValidRequestID(""))
	assert.False(t, isValidRequestID("has\ttab"))
}

func TestRecovery(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	handler := Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "internal_error", body["error"])
	assert.Contains(t, logs.String(), "panic recovered")
}

func TestLogger(t *testing.T) {
	t.Run("logs regular requests", func(t *testing.T) {
		var logs bytes.Buffer
		handler := Logger(slog.New(slog.NewJSONHandler(&logs, nil)))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/auth/tenants", nil))

		assert.Contains(t, logs.String(), `"status":403`)
		assert.Contains(t, logs.String(), `"path":"/auth/tenants"`)
	})

	t.Run("skips healthy probes", func(t *testing.T) {
		var logs bytes.Buffer
		handler := Logger(slog.New(slog.NewJSONHandler(&logs, nil)))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Empty(t, logs.String())
	})
}

func TestLatencyMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(LatencyMiddleware(m))
	r.Get("/convert/{tenant}/results/{filename}", func(http.ResponseWriter, *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/convert/oguz/results/a.xlsx", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/convert/oguz/results/b.xlsx", nil))

	assert.Equal(t, 1, testutil.CollectAndCount(m.EndpointLatency))
}
