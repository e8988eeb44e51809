package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/fridge-share/internal/service"
)

func TestStatusFor(t *testing.T) {
	cases := map[service.Kind]int{
		service.KindValidation:      http.StatusBadRequest,
		service.KindConflict:        http.StatusBadRequest,
		service.KindUnauthenticated: http.StatusUnauthorized,
		service.KindForbidden:       http.StatusForbidden,
		service.KindNotFound:        http.StatusNotFound,
		service.KindExpired:         http.StatusGone,
		service.KindIntegrity:       http.StatusInternalServerError,
		service.KindInternal:        http.StatusInternalServerError,
	}
	for k, want := range cases {
		assert.Equal(t, want, statusFor(k), k.String())
	}
}

func TestParseDate(t *testing.T) {
	d, ok := parseDate("2026-03-10")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), d)

	d, ok = parseDate("2026-03-10T15:04:05+02:00")
	assert.True(t, ok)
	assert.Equal(t, 13, d.Hour())

	_, ok = parseDate("tomorrow")
	assert.False(t, ok)
}

func TestFailHidesServerErrorText(t *testing.T) {
	cases := []struct {
		err    error
		status int
		body   string
	}{
		{&service.Error{Kind: service.KindIntegrity, Message: "FridgeNotFound"}, http.StatusInternalServerError, `{"error":"internal error"}`},
		{fmt.Errorf("load fridge: %w", &service.Error{Kind: service.KindInternal, Message: "db down"}), http.StatusInternalServerError, `{"error":"internal error"}`},
		{service.ErrInviteExpired, http.StatusGone, `{"error":"Invite has expired"}`},
	}
	e := echo.New()
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		require.NoError(t, fail(c, zap.NewNop(), tc.err))
		assert.Equal(t, tc.status, rec.Code)
		assert.JSONEq(t, tc.body, rec.Body.String())
	}
}
