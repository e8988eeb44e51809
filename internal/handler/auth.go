package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/fridge-share/internal/model"
	"github.com/iliyamo/fridge-share/internal/service"
	"github.com/iliyamo/fridge-share/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Accounts  *service.Accounts
	Sessions  *service.Sessions
	JWTSecret string
	Log       *zap.Logger
}

func NewAuthHandler(s *service.Services, jwtSecret string, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Accounts: s.Accounts, Sessions: s.Sessions, JWTSecret: jwtSecret, Log: log}
}

// ----- DTOs -----

type signupReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type googleReq struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}
type emailReq struct {
	Email string `json:"email"`
}
type resetReq struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type userPart struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
type authResp struct {
	User     userPart      `json:"user"`
	FridgeID string        `json:"fridge_id,omitempty"`
	Access   service.Token `json:"access"`
	Refresh  service.Token `json:"refresh"`
}

// CheckEmail: report whether an address is registered and how.
func (h *AuthHandler) CheckEmail(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	st, err := h.Accounts.CheckEmail(ctx, c.Param("email"))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, st)
}

// Signup: create an unverified account with its personal fridge. No
// session is issued until the address is verified.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.Accounts.SignUp(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return fail(c, h.Log, err)
	}
	body := echo.Map{
		"user":       userPart{ID: res.Account.ID, Email: res.Account.Email, Name: res.Account.Name},
		"fridge_id":  res.FridgeID,
		"email_sent": res.MailSent,
		"message":    "Check your email to verify your account",
	}
	if !res.MailSent {
		body["verification_link"] = res.VerificationLink
	}
	return c.JSON(http.StatusCreated, body)
}

// VerifyEmail: consume the token from a verification link.
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	acc, err := h.Accounts.VerifyEmail(ctx, c.QueryParam("token"))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"verified": true, "email": acc.Email})
}

// ResendVerification always answers 200 so unknown addresses are not revealed.
func (h *AuthHandler) ResendVerification(c echo.Context) error {
	var req emailReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return badRequest(c, "email required")
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	link, err := h.Accounts.ResendVerification(ctx, req.Email)
	if err != nil {
		return fail(c, h.Log, err)
	}
	body := echo.Map{"message": "If the account exists and is unverified, a new link was sent"}
	if link != "" {
		body["verification_link"] = link
	}
	return c.JSON(http.StatusOK, body)
}

// Login: verify credentials and return a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return badRequest(c, "email/password required")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	acc, err := h.Accounts.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return fail(c, h.Log, err)
	}
	pair, err := h.Sessions.Issue(ctx, acc.ID, model.ProviderPassword)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, authResp{
		User:    userPart{ID: acc.ID, Email: acc.Email, Name: acc.Name},
		Access:  pair.Access,
		Refresh: pair.Refresh,
	})
}

// GoogleSignup: register a Google identity verified upstream.
func (h *AuthHandler) GoogleSignup(c echo.Context) error {
	var req googleReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	fridgeID, err := h.Accounts.GoogleSignUp(ctx, req.UserID, req.Email, req.Name)
	if err != nil {
		return fail(c, h.Log, err)
	}
	pair, err := h.Sessions.Issue(ctx, req.UserID, model.ProviderGoogle)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, authResp{
		User:     userPart{ID: req.UserID, Email: strings.ToLower(strings.TrimSpace(req.Email)), Name: strings.TrimSpace(req.Name)},
		FridgeID: fridgeID,
		Access:   pair.Access,
		Refresh:  pair.Refresh,
	})
}

// GoogleLogin: admit a Google identity that signed up before.
func (h *AuthHandler) GoogleLogin(c echo.Context) error {
	var req googleReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	p, err := h.Accounts.GoogleSignIn(ctx, req.UserID)
	if err != nil {
		return fail(c, h.Log, err)
	}
	pair, err := h.Sessions.Issue(ctx, p.UserID, model.ProviderGoogle)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, authResp{
		User:     userPart{ID: p.UserID, Email: p.Email, Name: p.Name},
		FridgeID: p.FridgeID,
		Access:   pair.Access,
		Refresh:  pair.Refresh,
	})
}

// Refresh: validate by hash, revoke old, issue new.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return badRequest(c, "refresh_token required")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	pair, err := h.Sessions.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, pair)
}

// RefreshAccess: return a new access token WITHOUT rotating the refresh token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return badRequest(c, "refresh_token required")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	access, err := h.Sessions.RefreshAccess(ctx, req.RefreshToken)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"access": access})
}

// Logout revokes the session named by refresh_token, or every session of
// the bearer when no refresh token is sent.
func (h *AuthHandler) Logout(c echo.Context) error {
	var bearer string
	if raw, ok := strings.CutPrefix(c.Request().Header.Get("Authorization"), "Bearer "); ok {
		if claims, err := utils.ParseAccessToken(h.JWTSecret, raw); err == nil {
			bearer = claims.UserID
		}
	}
	var req refreshReq
	_ = c.Bind(&req)
	refresh := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := requestContext(c)
	defer cancel()

	switch {
	case refresh != "":
		if err := h.Sessions.Revoke(ctx, refresh); err != nil {
			return fail(c, h.Log, err)
		}
	case bearer != "":
		if err := h.Sessions.RevokeAll(ctx, bearer); err != nil {
			return fail(c, h.Log, err)
		}
	default:
		return badRequest(c, "provide Authorization header or refresh_token")
	}
	return c.NoContent(http.StatusNoContent)
}

// ForgotPassword always answers 200 so unknown addresses are not revealed.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req emailReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return badRequest(c, "email required")
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	link, err := h.Accounts.RequestPasswordReset(ctx, req.Email)
	if err != nil {
		return fail(c, h.Log, err)
	}
	body := echo.Map{"message": "If the account exists, a reset link was sent"}
	if link != "" {
		body["reset_link"] = link
	}
	return c.JSON(http.StatusOK, body)
}

// ResetPassword: consume a reset token. All sessions are revoked.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		return badRequest(c, "token required")
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.Accounts.ResetPassword(ctx, req.Token, req.Password); err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password updated"})
}

// Me describes the signed-in user.
func (h *AuthHandler) Me(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	me, err := h.Accounts.Describe(ctx, userID(c))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, me)
}
