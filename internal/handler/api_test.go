package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/iliyamo/fridge-share/internal/app"
	"github.com/iliyamo/fridge-share/internal/handler"
	"github.com/iliyamo/fridge-share/internal/mail"
	"github.com/iliyamo/fridge-share/internal/repository/memory"
	"github.com/iliyamo/fridge-share/internal/router"
	"github.com/iliyamo/fridge-share/internal/service"
)

const secret = "test-secret"

type APISuite struct {
	suite.Suite
	e *echo.Echo
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	log := zap.NewNop()
	svc := service.New(app.MemoryStores(memory.New()), mail.LogSender{}, mail.NewLinks("http://app.test", "/"),
		service.Config{JWTSecret: secret, BcryptCost: 4}, service.Options{Logger: log})
	h := router.Handlers{
		Auth:          handler.NewAuthHandler(svc, secret, log),
		Fridges:       handler.NewFridgeHandler(svc, log),
		Invites:       handler.NewInviteHandler(svc, log),
		Items:         handler.NewItemHandler(svc, log),
		Notifications: handler.NewNotificationHandler(svc, log),
	}
	pass := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	s.e = echo.New()
	s.e.GET("/healthz", handler.Health(nil))
	router.RegisterRoutes(s.e, h, pass)
	router.RegisterProtected(s.e, h, secret, pass)
}

func (s *APISuite) call(method, path string, body any, token string) (int, map[string]any) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	out := map[string]any{}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec.Code, out
}

func (s *APISuite) callList(path, token string) (int, []map[string]any) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	var out []map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec.Code, out
}

func tokenOf(link any) string {
	u, _ := url.Parse(link.(string))
	return u.Query().Get("token")
}

// register signs up, verifies and logs in, returning the access token.
func (s *APISuite) register(email, name string) string {
	code, body := s.call(http.MethodPost, "/v1/auth/signup", echo.Map{"email": email, "password": "secret1", "name": name}, "")
	s.Require().Equal(http.StatusCreated, code, body)
	s.Require().Equal(false, body["email_sent"])

	code, _ = s.call(http.MethodGet, "/v1/auth/verify-email?token="+tokenOf(body["verification_link"]), nil, "")
	s.Require().Equal(http.StatusOK, code)

	code, body = s.call(http.MethodPost, "/v1/auth/login", echo.Map{"email": email, "password": "secret1"}, "")
	s.Require().Equal(http.StatusOK, code, body)
	return body["access"].(map[string]any)["token"].(string)
}

func (s *APISuite) TestHealth() {
	code, body := s.call(http.MethodGet, "/healthz", nil, "")
	s.Equal(http.StatusOK, code)
	s.Equal("OK", body["status"])
}

func (s *APISuite) TestLoginBeforeVerificationIsForbidden() {
	code, _ := s.call(http.MethodPost, "/v1/auth/signup", echo.Map{"email": "a@x.com", "password": "secret1", "name": "Max"}, "")
	s.Require().Equal(http.StatusCreated, code)

	code, body := s.call(http.MethodPost, "/v1/auth/login", echo.Map{"email": "a@x.com", "password": "secret1"}, "")
	s.Equal(http.StatusForbidden, code)
	s.NotEmpty(body["error"])

	code, _ = s.call(http.MethodPost, "/v1/auth/login", echo.Map{"email": "a@x.com", "password": "wrong!!"}, "")
	s.Equal(http.StatusUnauthorized, code)
}

func (s *APISuite) TestProtectedRoutesNeedToken() {
	code, _ := s.call(http.MethodGet, "/v1/me", nil, "")
	s.Equal(http.StatusUnauthorized, code)
	code, _ = s.call(http.MethodGet, "/v1/fridges", nil, "garbage")
	s.Equal(http.StatusUnauthorized, code)
}

func (s *APISuite) TestEnsureAndItems() {
	tok := s.register("a@x.com", "Max")

	code, body := s.call(http.MethodPost, "/v1/fridges/ensure", echo.Map{}, tok)
	s.Require().Equal(http.StatusOK, code)
	fridgeID := body["fridge_id"].(string)

	code, again := s.call(http.MethodPost, "/v1/fridges/ensure", echo.Map{}, tok)
	s.Require().Equal(http.StatusOK, code)
	s.Equal(fridgeID, again["fridge_id"])

	code, body = s.call(http.MethodPost, "/v1/fridges/"+fridgeID+"/items",
		echo.Map{"name": "Milk", "expiry_date": "2099-01-02"}, tok)
	s.Require().Equal(http.StatusCreated, code, body)
	itemID := body["id"].(string)

	code, _ = s.call(http.MethodPost, "/v1/fridges/"+fridgeID+"/items",
		echo.Map{"name": "Eggs", "expiry_date": "soon"}, tok)
	s.Equal(http.StatusBadRequest, code)

	code, body = s.call(http.MethodPatch, "/v1/items/"+itemID, echo.Map{"is_opened": true}, tok)
	s.Require().Equal(http.StatusOK, code)
	s.Equal(true, body["is_opened"])

	code, items := s.callList("/v1/fridges/"+fridgeID+"/items", tok)
	s.Equal(http.StatusOK, code)
	s.Len(items, 1)

	code, _ = s.call(http.MethodDelete, "/v1/items/"+itemID, nil, tok)
	s.Equal(http.StatusNoContent, code)
	code, _ = s.call(http.MethodDelete, "/v1/items/"+itemID, nil, tok)
	s.Equal(http.StatusNotFound, code)
}

func (s *APISuite) TestInviteFlow() {
	maxTok := s.register("a@x.com", "Max")
	yaraTok := s.register("b@x.com", "Yara")

	code, body := s.call(http.MethodPost, "/v1/invites",
		echo.Map{"invitee_email": "b@x.com", "fridge_name": "Flat"}, maxTok)
	s.Require().Equal(http.StatusCreated, code, body)
	s.Equal(false, body["email_sent"])
	token := tokenOf(body["accept_link"])

	code, preview := s.call(http.MethodGet, "/v1/invites/"+token, nil, "")
	s.Require().Equal(http.StatusOK, code)
	s.Equal("Flat", preview["fridge_name"])
	s.Equal("pending", preview["status"])

	code, n := s.call(http.MethodGet, "/v1/notifications/unread-count", nil, yaraTok)
	s.Require().Equal(http.StatusOK, code)
	before := n["count"].(float64)
	s.GreaterOrEqual(before, float64(1))

	code, accepted := s.call(http.MethodPost, "/v1/invites/accept", echo.Map{"token": token}, yaraTok)
	s.Require().Equal(http.StatusOK, code, accepted)
	shared := accepted["fridge_id"].(string)

	code, again := s.call(http.MethodPost, "/v1/invites/accept", echo.Map{"token": token}, yaraTok)
	s.Require().Equal(http.StatusOK, code)
	s.Equal(shared, again["fridge_id"])
	s.Equal(true, again["already_accepted"])

	code, fridges := s.callList("/v1/fridges", yaraTok)
	s.Require().Equal(http.StatusOK, code)
	s.Require().Len(fridges, 2)
	s.Equal(true, fridges[0]["is_personal"])
	s.Equal(shared, fridges[1]["id"])

	code, body = s.call(http.MethodPost, "/v1/invites/accept", echo.Map{"token": "missing"}, yaraTok)
	s.Equal(http.StatusNotFound, code)
	s.Equal("Invite not found", body["error"])
}

func (s *APISuite) TestSelfInviteIsBadRequest() {
	tok := s.register("a@x.com", "Max")
	code, body := s.call(http.MethodPost, "/v1/invites",
		echo.Map{"invitee_email": "a@x.com", "fridge_name": "Flat"}, tok)
	s.Equal(http.StatusBadRequest, code)
	s.NotEmpty(body["error"])
}

func (s *APISuite) TestRefreshAndLogout() {
	code, body := s.call(http.MethodPost, "/v1/auth/google/signup", echo.Map{"user_id": "g-1", "email": "g@x.com", "name": "Gus"}, "")
	s.Require().Equal(http.StatusCreated, code, body)
	refresh := body["refresh"].(map[string]any)["token"].(string)

	code, body = s.call(http.MethodPost, "/v1/auth/refresh", echo.Map{"refresh_token": refresh}, "")
	s.Require().Equal(http.StatusOK, code)
	rotated := body["refresh"].(map[string]any)["token"].(string)

	code, _ = s.call(http.MethodPost, "/v1/auth/refresh", echo.Map{"refresh_token": refresh}, "")
	s.Equal(http.StatusUnauthorized, code)

	code, _ = s.call(http.MethodPost, "/v1/auth/logout", echo.Map{"refresh_token": rotated}, "")
	s.Equal(http.StatusNoContent, code)
	code, _ = s.call(http.MethodPost, "/v1/auth/refresh-access", echo.Map{"refresh_token": rotated}, "")
	s.Equal(http.StatusUnauthorized, code)

	code, _ = s.call(http.MethodPost, "/v1/auth/logout", echo.Map{}, "")
	s.Equal(http.StatusBadRequest, code)
}
