package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/iliyamo/room-reservation/internal/config"
	"github.com/iliyamo/room-reservation/internal/policy"
	"github.com/iliyamo/room-reservation/internal/utils"
)

const secret = "test-secret"

func token(t *testing.T, uid uint64, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, utils.Identity{UserID: uid, Username: "ann", Role: role}, 5)
	require.NoError(t, err)
	return tok.Token
}

func whoami(c echo.Context) error {
	a := Actor(c)
	return c.JSON(http.StatusOK, echo.Map{"id": a.UserID, "role": a.Role, "name": Username(c)})
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	e := echo.New()
	e.GET("/me", whoami, JWTAuth(secret))

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing bearer token")

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = serve(e, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token")

	for _, scheme := range []string{"Bearer ", "Token "} {
		req = httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", scheme+token(t, 7, policy.RoleUser))
		rec = serve(e, req)
		assert.Equal(t, http.StatusOK, rec.Code, scheme)
		assert.JSONEq(t, `{"id":7,"role":"USER","name":"ann"}`, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token(t, 8, policy.RoleAdmin)})
	rec = serve(e, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":8,"role":"ADMIN","name":"ann"}`, rec.Body.String())
}

func TestOptionalJWT(t *testing.T) {
	e := echo.New()
	e.GET("/", whoami, OptionalJWT(secret))

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":0,"role":"","name":""}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, 3, policy.RoleUser))
	rec = serve(e, req)
	assert.JSONEq(t, `{"id":3,"role":"USER","name":"ann"}`, rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	admin := RequireRole(policy.RoleAdmin)
	e.GET("/admin", whoami, OptionalJWT(secret), admin)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, 3, policy.RoleUser))
	assert.Equal(t, http.StatusForbidden, serve(e, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, 1, policy.RoleAdmin))
	assert.Equal(t, http.StatusOK, serve(e, req).Code)
}

func TestRequireLogin(t *testing.T) {
	e := echo.New()
	e.GET("/new/", whoami, OptionalJWT(secret), RequireLogin("/auth/login/"))

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/new/?room=2", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth/login/?next=%2Fnew%2F%3Froom%3D2", rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/new/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token(t, 3, policy.RoleUser)})
	assert.Equal(t, http.StatusOK, serve(e, req).Code)
}

func TestMemoryLimiter(t *testing.T) {
	m := NewMemoryLimiter(rate.Every(time.Minute), 2, time.Minute)
	now := time.Now()

	assert.True(t, m.check("a", now).allowed)
	assert.True(t, m.check("a", now).allowed)
	d := m.check("a", now)
	assert.False(t, d.allowed)
	assert.Greater(t, d.retry, time.Duration(0))
	assert.True(t, m.check("b", now).allowed, "keys are independent")

	// idle buckets are swept after ttl
	m.check("c", now.Add(2*time.Minute))
	m.mu.Lock()
	_, kept := m.limiters["a"]
	m.mu.Unlock()
	assert.False(t, kept)
}

func TestTokenBucket_InMemoryFallback(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip",
		Prefix:         "rl",
	}
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, NewTokenBucket(cfg, nil))

	for i := 0; i < 2; i++ {
		rec := serve(e, httptest.NewRequest(http.MethodGet, "/x", nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "too_many_requests")
}

func TestTokenBucket_Disabled(t *testing.T) {
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
		NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil))
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusNoContent, serve(e, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
	}
}

func TestResponseCache_InMemory(t *testing.T) {
	cfg := config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{"GET": true},
		TTL:         time.Minute,
		KeyStrategy: "route_query",
		Prefix:      "rc",
	}
	rc := NewResponseCache(cfg, nil)

	var calls int32
	e := echo.New()
	e.GET("/rooms", func(c echo.Context) error {
		n := atomic.AddInt32(&calls, 1)
		return c.JSON(http.StatusOK, echo.Map{"call": n})
	}, rc.Middleware())

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/rooms", nil))
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"call":1}`, rec.Body.String())

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/rooms", nil))
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"call":1}`, rec.Body.String())
	assert.Equal(t, echo.MIMEApplicationJSON, rec.Header().Get(echo.HeaderContentType))

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/rooms?datetime_from=x", nil))
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"), "query is part of the key")

	require.NoError(t, rc.Purge(context.Background()))
	rec = serve(e, httptest.NewRequest(http.MethodGet, "/rooms", nil))
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestResponseCache_PurgeDuringMissDropsFill(t *testing.T) {
	rc := NewResponseCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "rc"}, nil)

	var calls int32
	e := echo.New()
	e.GET("/rooms", func(c echo.Context) error {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			// a reservation commits while this read is in flight
			require.NoError(t, rc.Purge(context.Background()))
		}
		return c.JSON(http.StatusOK, echo.Map{"call": n})
	}, rc.Middleware())

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/rooms", nil))
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/rooms", nil))
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"), "response read before the purge must not be served")
	assert.JSONEq(t, `{"call":2}`, rec.Body.String())

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/rooms", nil))
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"call":2}`, rec.Body.String())
}

func TestResponseCache_SkipsErrors(t *testing.T) {
	rc := NewResponseCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "rc"}, nil)
	e := echo.New()
	e.GET("/bad", func(c echo.Context) error {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "x"})
	}, rc.Middleware())

	serve(e, httptest.NewRequest(http.MethodGet, "/bad", nil))
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/bad", nil))
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(201, hdr, []byte(`{"a":1}`))
	require.NoError(t, err)

	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, 201, status)
	assert.Equal(t, hdr, got)
	assert.Equal(t, `{"a":1}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 0})
	assert.False(t, ok)
}
