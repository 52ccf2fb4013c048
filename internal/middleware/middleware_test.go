package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/explorejh/travel-assistant/pkg/logger"
)

const testSecret = "test-secret"

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetUserID(r.Context())))
	})
}

func TestAuthAcceptsGuestToken(t *testing.T) {
	token, userID, expiresAt, err := IssueGuestToken(testSecret, time.Hour)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(userID, "guest-"))
	assert.True(t, expiresAt.After(time.Now()))

	h := Auth(testSecret, true)(echoUser())

	t.Run("header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, userID, rec.Body.String())
	})

	t.Run("query parameter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?access_token="+token, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, userID, rec.Body.String())
	})
}

func TestAuthRejects(t *testing.T) {
	otherToken, _, _, err := IssueGuestToken("another-secret", time.Hour)
	require.NoError(t, err)
	expiredToken, _, _, err := IssueGuestToken(testSecret, -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong secret", "Bearer " + otherToken},
		{"expired", "Bearer " + expiredToken},
	}

	h := Auth(testSecret, true)(echoUser())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuthDisabled(t *testing.T) {
	h := Auth(testSecret, false)(echoUser())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, AnonymousUserID, rec.Body.String())
}

func TestLoggingSetsCorrelationID(t *testing.T) {
	var seen string
	h := Logging(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetCorrelationID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Correlation-ID"))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))
}

func TestLoggingKeepsFlusher(t *testing.T) {
	h := Logging(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := w.(http.Flusher)
		assert.True(t, ok)
		_, ok = w.(http.Hijacker)
		assert.True(t, ok)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestValidation(t *testing.T) {
	assert.NoError(t, ValidateMessageText(""))
	assert.NoError(t, ValidateMessageText("Hundru Falls"))
	assert.Error(t, ValidateMessageText(strings.Repeat("a", MaxMessageLength+1)))
	assert.Error(t, ValidateMessageText("\xff\xfe"))

	assert.NoError(t, ValidateSessionID("0190f0a4-9d1e-7c3b-8a6f-2b4d5e6f7a8b"))
	assert.Error(t, ValidateSessionID("not-a-uuid"))
}
