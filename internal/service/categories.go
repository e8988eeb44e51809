package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/fridge-share/internal/model"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Categories manages per-fridge item categories.
type Categories struct {
	env
	st Stores
}

func validCategory(name, color string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", newErr(KindValidation, "name is required")
	}
	if len(name) > 50 {
		return "", "", newErr(KindValidation, "name must be at most 50 characters")
	}
	color = strings.TrimSpace(color)
	if color == "" {
		color = model.DefaultCategoryColor
	}
	if !hexColor.MatchString(color) {
		return "", "", newErr(KindValidation, "color must look like #rrggbb")
	}
	return name, color, nil
}

var errCategoryExists = newErr(KindConflict, "A category with this name already exists")

func (s *Categories) Create(ctx context.Context, userID, fridgeID, name, color string) (*model.Category, error) {
	name, color, err := validCategory(name, color)
	if err != nil {
		return nil, err
	}
	if _, err := memberFridge(ctx, s.st, userID, fridgeID); err != nil {
		return nil, err
	}
	c := &model.Category{ID: uuid.NewString(), FridgeID: fridgeID, Name: name, Color: color}
	err = s.st.Categories.Create(ctx, c)
	if isDuplicate(err) {
		return nil, errCategoryExists
	}
	if err != nil {
		return nil, internal("create category", err)
	}
	return c, nil
}

func (s *Categories) List(ctx context.Context, userID, fridgeID string) ([]model.Category, error) {
	if _, err := memberFridge(ctx, s.st, userID, fridgeID); err != nil {
		return nil, err
	}
	out, err := s.st.Categories.ListByFridge(ctx, fridgeID)
	if err != nil {
		return nil, internal("list categories", err)
	}
	if out == nil {
		out = []model.Category{}
	}
	return out, nil
}

func (s *Categories) owned(ctx context.Context, userID, id string) (*model.Category, error) {
	c, err := s.st.Categories.GetByID(ctx, id)
	if isNotFound(err) {
		return nil, newErr(KindNotFound, "Category not found")
	}
	if err != nil {
		return nil, internal("load category", err)
	}
	if _, err := memberFridge(ctx, s.st, userID, c.FridgeID); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Categories) Update(ctx context.Context, userID, id, name, color string) (*model.Category, error) {
	c, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if color == "" {
		color = c.Color
	}
	if c.Name, c.Color, err = validCategory(name, color); err != nil {
		return nil, err
	}
	err = s.st.Categories.Update(ctx, c)
	if isDuplicate(err) {
		return nil, errCategoryExists
	}
	if err != nil {
		return nil, internal("update category", err)
	}
	return c, nil
}

// Delete removes a category. Its items stay, uncategorized.
func (s *Categories) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if _, err := s.st.Items.ClearCategory(ctx, id); err != nil {
		return internal("clear category", err)
	}
	if err := s.st.Categories.Delete(ctx, id); err != nil && !isNotFound(err) {
		return internal("delete category", err)
	}
	return nil
}
