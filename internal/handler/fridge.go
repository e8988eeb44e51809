package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/fridge-share/internal/service"
)

// FridgeHandler serves the profile resolver and fridge membership endpoints.
type FridgeHandler struct {
	Resolver *service.Resolver
	Fridges  *service.Fridges
	Log      *zap.Logger
}

func NewFridgeHandler(s *service.Services, log *zap.Logger) *FridgeHandler {
	return &FridgeHandler{Resolver: s.Resolver, Fridges: s.Fridges, Log: log}
}

type ensureReq struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type renameReq struct {
	Name string `json:"name"`
}

// Ensure returns the caller's fridge id, creating profile and personal
// fridge on first use. Safe to call on every app start.
func (h *FridgeHandler) Ensure(c echo.Context) error {
	var req ensureReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	fridgeID, err := h.Resolver.Ensure(ctx, userID(c), req.Email, req.Name)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"fridge_id": fridgeID})
}

// List returns every fridge the caller belongs to, personal first.
func (h *FridgeHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	fridges, err := h.Resolver.ListFridges(ctx, userID(c))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, fridges)
}

func (h *FridgeHandler) Rename(c echo.Context) error {
	var req renameReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	f, err := h.Fridges.Rename(ctx, userID(c), c.Param("id"), req.Name)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, f)
}

// Leave removes the caller from a shared fridge.
func (h *FridgeHandler) Leave(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.Fridges.Leave(ctx, userID(c), c.Param("id")); err != nil {
		return fail(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
