package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/fridge-share/internal/config"
	"github.com/iliyamo/fridge-share/internal/utils"
)

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"user_id": c.Get("user_id"), "provider": c.Get("provider")})
	}, JWTAuth("secret"))

	tok, err := utils.NewAccessToken("secret", "u1", "google", 5, time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := serve(e, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":"u1","provider":"google"}`, rec.Body.String())

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other, err := utils.NewAccessToken("other", "u1", "google", 5, time.Now())
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+other.Token)
	assert.Equal(t, http.StatusUnauthorized, serve(e, req).Code)

	expired, err := utils.NewAccessToken("secret", "u1", "google", 5, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+expired.Token)
	assert.Equal(t, http.StatusUnauthorized, serve(e, req).Code)
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/invites", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/invites")

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_route"}
	assert.Equal(t, "rl:ip:10.0.0.1:route:POST /v1/invites", buildRateKey(cfg, c))

	cfg.KeyStrategy = "user"
	assert.Equal(t, "rl:user:anon", buildRateKey(cfg, c))
	c.Set("user_id", "u1")
	assert.Equal(t, "rl:user:u1", buildRateKey(cfg, c))

	cfg.KeyStrategy = "bogus"
	assert.Equal(t, "rl:ip:10.0.0.1:user:u1:route:POST /v1/invites", buildRateKey(cfg, c))
}

func TestTokenBucketDisabledPassesThrough(t *testing.T) {
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
		NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil, zap.NewNop()))
	for range 5 {
		assert.Equal(t, http.StatusNoContent, serve(e, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
	}
}

func TestParseVerdict(t *testing.T) {
	v, ok := parseVerdict([]any{int64(1), int64(4), int64(0)})
	require.True(t, ok)
	assert.True(t, v.allowed)
	assert.EqualValues(t, 4, v.remaining)

	_, ok = parseVerdict("nope")
	assert.False(t, ok)
}

func TestRequestLogKeepsStatus(t *testing.T) {
	e := echo.New()
	e.Use(RequestLog(zap.NewNop()))
	e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusTeapot, "no") })
	assert.Equal(t, http.StatusTeapot, serve(e, httptest.NewRequest(http.MethodGet, "/boom", nil)).Code)
}
