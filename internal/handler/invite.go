package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/fridge-share/internal/model"
	"github.com/iliyamo/fridge-share/internal/service"
)

// InviteHandler serves invite creation, preview and acceptance.
type InviteHandler struct {
	Invites  *service.Invites
	Sessions *service.Sessions
	Log      *zap.Logger
}

func NewInviteHandler(s *service.Services, log *zap.Logger) *InviteHandler {
	return &InviteHandler{Invites: s.Invites, Sessions: s.Sessions, Log: log}
}

type createInviteReq struct {
	InviteeEmail string `json:"invitee_email"`
	FridgeName   string `json:"fridge_name"`
	FridgeID     string `json:"fridge_id"`
}

type acceptReq struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type acceptAccountReq struct {
	Token    string `json:"token"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type inviteResp struct {
	Invite     *model.Invite `json:"invite"`
	EmailSent  bool          `json:"email_sent"`
	AcceptLink string        `json:"accept_link,omitempty"`
}

type acceptResp struct {
	FridgeID        string        `json:"fridge_id"`
	UserID          string        `json:"user_id"`
	AlreadyAccepted bool          `json:"already_accepted"`
	Session         *service.Pair `json:"session,omitempty"`
}

// The accept link is only returned when the mail did not go out.
func inviteResponse(res *service.InviteResult) inviteResp {
	out := inviteResp{Invite: res.Invite, EmailSent: res.MailSent}
	if !res.MailSent {
		out.AcceptLink = res.AcceptLink
	}
	return out
}

// CreateFridge invites an existing user to share a fridge.
func (h *InviteHandler) CreateFridge(c echo.Context) error {
	return h.create(c, h.Invites.CreateFridgeInvite)
}

// CreateAccount invites someone without an account; accepting creates it.
func (h *InviteHandler) CreateAccount(c echo.Context) error {
	return h.create(c, h.Invites.CreateAccountInvite)
}

func (h *InviteHandler) create(c echo.Context, op func(ctx context.Context, req service.InviteRequest) (*service.InviteResult, error)) error {
	var req createInviteReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if strings.TrimSpace(req.InviteeEmail) == "" {
		return badRequest(c, "invitee_email required")
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	res, err := op(ctx, service.InviteRequest{
		InviterID:    userID(c),
		InviteeEmail: req.InviteeEmail,
		FridgeName:   req.FridgeName,
		FridgeID:     req.FridgeID,
	})
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, inviteResponse(res))
}

// Preview is public so the accept page can render before sign-in.
func (h *InviteHandler) Preview(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	p, err := h.Invites.Preview(ctx, c.Param("token"))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Accept joins the caller to the invite's shared fridge.
func (h *InviteHandler) Accept(c echo.Context) error {
	var req acceptReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		return badRequest(c, "token required")
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	res, err := h.Invites.Accept(ctx, req.Token, userID(c), req.Email, req.Name)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, acceptResp{FridgeID: res.FridgeID, UserID: res.UserID, AlreadyAccepted: res.AlreadyAccepted})
}

// AcceptAccount creates the invitee's account, joins the shared fridge
// and signs the new account in.
func (h *InviteHandler) AcceptAccount(c echo.Context) error {
	var req acceptAccountReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		return badRequest(c, "token required")
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	res, err := h.Invites.AcceptAccount(ctx, req.Token, req.Password, req.Name)
	if err != nil {
		return fail(c, h.Log, err)
	}
	pair, err := h.Sessions.Issue(ctx, res.UserID, model.ProviderPassword)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, acceptResp{
		FridgeID:        res.FridgeID,
		UserID:          res.UserID,
		AlreadyAccepted: res.AlreadyAccepted,
		Session:         pair,
	})
}
