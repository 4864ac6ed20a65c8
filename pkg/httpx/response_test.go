package httpx_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/itemtree/pkg/httpx"
)

func TestJSON_setsHeadersAndBody(t *testing.T) {
	w := httptest.NewRecorder()
	httpx.JSON(w, http.StatusCreated, map[string]string{"id": "abc"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "abc", body["id"])
}

func TestJSONError_carriesKind(t *testing.T) {
	tests := []struct {
		status int
		kind   string
	}{
		{http.StatusBadRequest, "bad_request"},
		{http.StatusUnauthorized, "unauthorized"},
		{http.StatusNotFound, "not_found"},
		{http.StatusRequestEntityTooLarge, "payload_too_large"},
		{http.StatusTooManyRequests, "rate_limited"},
		{http.StatusBadGateway, "internal"},
		{http.StatusTeapot, "error"},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			w := httptest.NewRecorder()
			httpx.JSONError(w, tt.status, "something went wrong")

			assert.Equal(t, tt.status, w.Code)
			var body map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, "something went wrong", body["error"])
			assert.Equal(t, tt.kind, body["kind"])
		})
	}
}

func TestIsBodyTooLarge(t *testing.T) {
	wrapped := fmt.Errorf("decode: %w", &http.MaxBytesError{Limit: 10})
	assert.True(t, httpx.IsBodyTooLarge(wrapped))
	assert.False(t, httpx.IsBodyTooLarge(errors.New("unexpected EOF")))
}
