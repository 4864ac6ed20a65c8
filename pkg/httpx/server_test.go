package httpx_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/itemtree/pkg/httpx"
)

func passthrough(next http.Handler) http.Handler { return next }

func newTestRouter(cfg httpx.ServerConfig) http.Handler {
	r := httpx.NewRouter(cfg, passthrough, passthrough, passthrough, passthrough)
	r.Post("/api/items", func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			if httpx.IsBodyTooLarge(err) {
				httpx.JSONError(w, http.StatusRequestEntityTooLarge, "too large")
				return
			}
			httpx.JSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		w.WriteHeader(http.StatusCreated)
	})
	return r
}

func errorKind(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body["kind"]
}

func TestNewRouter_SecurityHeaders(t *testing.T) {
	h := newTestRouter(httpx.ServerConfig{CORSAllowedOrigins: "*"})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/items", strings.NewReader("{}")))

	require.Equal(t, http.StatusCreated, rr.Code)
	checks := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
		"Content-Security-Policy": "default-src 'self'",
	}
	for header, expected := range checks {
		assert.Equal(t, expected, rr.Header().Get(header), header)
	}
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
}

func TestNewRouter_UnknownRouteIsJSON(t *testing.T) {
	h := newTestRouter(httpx.ServerConfig{CORSAllowedOrigins: "*"})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/nope", http.NoBody))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not_found", errorKind(t, rr))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/items", http.NoBody))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestNewRouter_BodyLimit(t *testing.T) {
	h := newTestRouter(httpx.ServerConfig{CORSAllowedOrigins: "*", MaxBodyBytes: 16})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/items", strings.NewReader(strings.Repeat("x", 8))))
	assert.Equal(t, http.StatusCreated, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/items", strings.NewReader(strings.Repeat("x", 17))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Equal(t, "payload_too_large", errorKind(t, rr))
}

func TestNewRouter_RateLimitRespondsJSON(t *testing.T) {
	h := newTestRouter(httpx.ServerConfig{CORSAllowedOrigins: "*", RateLimitPerMinute: 2})

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/api/items", strings.NewReader("{}"))
		req.RemoteAddr = "203.0.113.7:4000"
		last = httptest.NewRecorder()
		h.ServeHTTP(last, req)
		codes = append(codes, last.Code)
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "rate_limited", errorKind(t, last))
}

func TestCORSMiddleware_AllowsTenantHeader(t *testing.T) {
	h := httpx.CORSMiddleware("https://app.example.com")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/items", http.NoBody)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	req.Header.Set("Access-Control-Request-Headers", "X-Tenant-ID")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, strings.ToLower(rr.Header().Get("Access-Control-Allow-Headers")), "x-tenant-id")
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
}
