package middleware

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/harentsoaR/lipi-scribe-api/internal/models"
	"github.com/harentsoaR/lipi-scribe-api/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userID":    c.GetString(ContextUserID),
			"userType":  c.GetString(ContextUserType),
			"requestID": c.GetString(ContextRequestID),
		})
	})
	r.POST("/echo", func(c *gin.Context) {
		var body map[string]string
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, body)
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func get(r http.Handler, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	tokens := utils.NewTokenIssuer("secret", time.Hour)
	r := newRouter(AuthMiddleware(tokens))

	token, err := tokens.Generate("user-1", models.UserTypeDoctor)
	require.NoError(t, err)
	expired, err := utils.NewTokenIssuer("secret", -time.Minute).Generate("user-1", models.UserTypeDoctor)
	require.NoError(t, err)
	foreign, err := utils.NewTokenIssuer("other", time.Hour).Generate("user-1", models.UserTypeDoctor)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + token, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong secret", "Bearer " + foreign, http.StatusUnauthorized},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set("Authorization", tt.header)
			}
			w := get(r, "/ping", h)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"userID":"user-1","userType":"doctor","requestID":""}`, w.Body.String())
			}
		})
	}
}

func TestRequireUserType(t *testing.T) {
	setType := func(userType string) gin.HandlerFunc {
		return func(c *gin.Context) { c.Set(ContextUserType, userType) }
	}

	w := get(newRouter(setType("doctor"), RequireUserType(models.UserTypeDoctor)), "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(newRouter(setType("patient"), RequireUserType(models.UserTypeDoctor)), "/ping", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Permission denied."}`, w.Body.String())
}

func TestRequestID(t *testing.T) {
	r := newRouter(RequestID())

	w := get(r, "/ping", nil)
	generated := w.Header().Get(HeaderXRequestID)
	assert.Len(t, generated, 36)
	assert.Contains(t, w.Body.String(), generated)

	h := http.Header{}
	h.Set(HeaderXRequestID, "abc-123")
	w = get(r, "/ping", h)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderXRequestID))
}

func TestRateLimiter(t *testing.T) {
	r := newRouter(NewRateLimiter(rate.Every(time.Hour), 2).Middleware())

	assert.Equal(t, http.StatusOK, get(r, "/ping", nil).Code)
	assert.Equal(t, http.StatusOK, get(r, "/ping", nil).Code)
	w := get(r, "/ping", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, w.Body.String())

	// Another client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	other := httptest.NewRecorder()
	r.ServeHTTP(other, req)
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestRateLimiterIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	r := newRouter(NewRateLimiter(rate.Every(time.Hour), 1).Middleware())
	require.NoError(t, r.SetTrustedProxies(nil))

	allowed := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code == http.StatusOK {
			allowed++
		}
	}
	assert.Equal(t, 1, allowed)
}

func TestRateLimiterTrustedProxy(t *testing.T) {
	r := newRouter(NewRateLimiter(rate.Every(time.Hour), 1).Middleware())
	require.NoError(t, r.SetTrustedProxies([]string{"10.0.0.9"}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "client %d", i)
	}
}

func TestSecurityHeaders(t *testing.T) {
	w := get(newRouter(SecurityHeaders()), "/ping", nil)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestRecovery(t *testing.T) {
	w := get(newRouter(Recovery()), "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}

func TestBodyLimit(t *testing.T) {
	r := newRouter(BodyLimit(32))

	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString(`{"a":"b"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString(`{"a":"`+string(bytes.Repeat([]byte("x"), 64))+`"}`))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestLoggerAndMetricsPassThrough(t *testing.T) {
	w := get(newRouter(RequestID(), Logger(), Metrics()), "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(newRouter(Logger(), Metrics()), "/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
