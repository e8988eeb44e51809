package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/fridge-share/internal/service"
)

// ItemHandler serves fridge items and their categories.
type ItemHandler struct {
	Items      *service.Items
	Categories *service.Categories
	Log        *zap.Logger
}

func NewItemHandler(s *service.Services, log *zap.Logger) *ItemHandler {
	return &ItemHandler{Items: s.Items, Categories: s.Categories, Log: log}
}

type createItemReq struct {
	Name       string `json:"name"`
	ExpiryDate string `json:"expiry_date"`
	IsOpened   bool   `json:"is_opened"`
	CategoryID string `json:"category_id"`
}

type patchItemReq struct {
	Name       *string `json:"name"`
	ExpiryDate *string `json:"expiry_date"`
	IsOpened   *bool   `json:"is_opened"`
	CategoryID *string `json:"category_id"`
}

type categoryReq struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (h *ItemHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	items, err := h.Items.List(ctx, userID(c), c.Param("id"))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ItemHandler) Create(c echo.Context) error {
	var req createItemReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	expiry, ok := parseDate(req.ExpiryDate)
	if !ok {
		return badRequest(c, "expiry_date must be YYYY-MM-DD or RFC 3339")
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	it, err := h.Items.Create(ctx, userID(c), service.ItemInput{
		FridgeID:   c.Param("id"),
		Name:       req.Name,
		ExpiryDate: expiry,
		IsOpened:   req.IsOpened,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, it)
}

func (h *ItemHandler) Update(c echo.Context) error {
	var req patchItemReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	patch := service.ItemPatch{Name: req.Name, IsOpened: req.IsOpened, CategoryID: req.CategoryID}
	if req.ExpiryDate != nil {
		t, ok := parseDate(*req.ExpiryDate)
		if !ok {
			return badRequest(c, "expiry_date must be YYYY-MM-DD or RFC 3339")
		}
		patch.ExpiryDate = &t
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	it, err := h.Items.Update(ctx, userID(c), c.Param("id"), patch)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, it)
}

func (h *ItemHandler) Delete(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.Items.Delete(ctx, userID(c), c.Param("id")); err != nil {
		return fail(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Clear deletes every item in a fridge.
func (h *ItemHandler) Clear(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	n, err := h.Items.Clear(ctx, userID(c), c.Param("id"))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": n})
}

func (h *ItemHandler) ListCategories(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	cats, err := h.Categories.List(ctx, userID(c), c.Param("id"))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *ItemHandler) CreateCategory(c echo.Context) error {
	var req categoryReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	cat, err := h.Categories.Create(ctx, userID(c), c.Param("id"), req.Name, req.Color)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *ItemHandler) UpdateCategory(c echo.Context) error {
	var req categoryReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	cat, err := h.Categories.Update(ctx, userID(c), c.Param("id"), req.Name, req.Color)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, cat)
}

// DeleteCategory uncategorises the category's items before removing it.
func (h *ItemHandler) DeleteCategory(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.Categories.Delete(ctx, userID(c), c.Param("id")); err != nil {
		return fail(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

