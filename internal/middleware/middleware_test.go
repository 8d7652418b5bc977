package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cityguide/internal/identity"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "testsecret"

func init() {
	gin.SetMode(gin.TestMode)
}

func generateTestToken(t *testing.T, secret, subject string, ttl time.Duration) string {
	t.Helper()
	claims := &jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestLoadIdentity(t *testing.T) {
	auth := NewAuth(testSecret)

	tests := []struct {
		name           string
		header         string
		cookieValue    string
		expectedStatus int
		expectedUser   string
	}{
		{
			name:           "No Token",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Valid Bearer",
			header:         "Bearer " + generateTestToken(t, testSecret, "user-1", 5*time.Minute),
			expectedStatus: http.StatusOK,
			expectedUser:   "user-1",
		},
		{
			name:           "Valid Cookie",
			cookieValue:    generateTestToken(t, testSecret, "user-2", 5*time.Minute),
			expectedStatus: http.StatusOK,
			expectedUser:   "user-2",
		},
		{
			name:           "Invalid Token",
			header:         "Bearer invalid",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong Secret",
			header:         "Bearer " + generateTestToken(t, "other", "user-1", 5*time.Minute),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Expired Token",
			header:         "Bearer " + generateTestToken(t, testSecret, "user-1", -time.Minute),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Missing Subject",
			header:         "Bearer " + generateTestToken(t, testSecret, "", 5*time.Minute),
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			var gotUser string
			r.GET("/", auth.LoadIdentity(), func(c *gin.Context) {
				gotUser = c.GetString(UserIDKey)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookieValue != "" {
				req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: tt.cookieValue})
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectedUser, gotUser)
		})
	}
}

func newSessionRouter(resolver *identity.Resolver, handler gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("session-secret"))))
	r.Use(SessionID())
	r.Use(NewAuth(testSecret).LoadIdentity())
	r.Use(ResolveIdentity(resolver, identity.NewFingerprintKey("fp-secret")))
	r.GET("/", handler)
	return r
}

func newTestResolver(t *testing.T) *identity.Resolver {
	t.Helper()
	cache, err := identity.NewSessionCache(16, time.Hour)
	require.NoError(t, err)
	return identity.NewResolver(cache)
}

func TestSessionIDIsStable(t *testing.T) {
	var seen []string
	r := newSessionRouter(newTestResolver(t), func(c *gin.Context) {
		seen = append(seen, c.GetString(SessionIDKey))
		c.Status(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, seen, 2)
	assert.NotEmpty(t, seen[0])
	assert.Equal(t, seen[0], seen[1])
}

func TestResolveIdentity(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		visitorID string
		kind      identity.Kind
	}{
		{name: "authenticated wins", header: "Bearer " + generateTestToken(t, testSecret, "user-1", time.Minute), visitorID: "abcdef123456", kind: identity.KindAuthenticated},
		{name: "anonymous visitor", visitorID: "abcdef123456", kind: identity.KindAnonymous},
		{name: "malformed visitor id", visitorID: "bad id!", kind: identity.KindNone},
		{name: "short visitor id", visitorID: "abc", kind: identity.KindNone},
		{name: "nothing", kind: identity.KindNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got identity.Token
			r := newSessionRouter(newTestResolver(t), func(c *gin.Context) {
				got = CurrentIdentity(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.visitorID != "" {
				req.Header.Set(identity.VisitorIDHeader, tt.visitorID)
			}
			r.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.kind, got.Kind())
			if fp, ok := got.Fingerprint(); ok {
				assert.NotEqual(t, tt.visitorID, fp, "raw visitor id must not be used as fingerprint")
			}
		})
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl, err := NewRateLimiter(2)
	require.NoError(t, err)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(IdentityKey, identity.Anonymous(c.GetHeader("X-Test-Fp")))
		c.Next()
	})
	r.POST("/", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(fp string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-Test-Fp", fp)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusOK, do("fp-a").Code)
	assert.Equal(t, http.StatusOK, do("fp-a").Code)
	limited := do("fp-a")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "30", limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, do("fp-b").Code, "limits are per caller")
}

func TestRequestLoggerPassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)
}
