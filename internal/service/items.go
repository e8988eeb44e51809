package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/fridge-share/internal/model"
)

// Items manages fridge contents. Every operation is gated on fridge
// membership.
type Items struct {
	env
	st       Stores
	notifier *Notifier
}

// ItemInput creates an item. An empty FridgeID means the caller's
// profile fridge.
type ItemInput struct {
	FridgeID   string
	Name       string
	ExpiryDate time.Time
	IsOpened   bool
	CategoryID string
}

// ItemPatch updates the non-nil fields of an item.
type ItemPatch struct {
	Name       *string
	ExpiryDate *time.Time
	IsOpened   *bool
	CategoryID *string
}

// Create adds an item and emits first-item and expiring notifications.
func (s *Items) Create(ctx context.Context, userID string, in ItemInput) (*model.FridgeItem, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, newErr(KindValidation, "name is required")
	}
	if in.ExpiryDate.IsZero() {
		return nil, newErr(KindValidation, "expiry_date is required")
	}
	fridgeID := in.FridgeID
	if fridgeID == "" {
		p, err := s.st.Profiles.GetByUserID(ctx, userID)
		if isNotFound(err) {
			return nil, newErr(KindNotFound, "Profile not found")
		}
		if err != nil {
			return nil, internal("load profile", err)
		}
		fridgeID = p.FridgeID
	}
	f, err := memberFridge(ctx, s.st, userID, fridgeID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, f.ID, in.CategoryID); err != nil {
		return nil, err
	}

	it := &model.FridgeItem{
		ID:         uuid.NewString(),
		FridgeID:   f.ID,
		UserID:     userID,
		Name:       name,
		ExpiryDate: in.ExpiryDate,
		IsOpened:   in.IsOpened,
		CategoryID: in.CategoryID,
	}
	if in.IsOpened {
		now := s.now()
		it.OpenedDate = &now
	}
	if err := s.st.Items.Create(ctx, it); err != nil {
		return nil, internal("create item", err)
	}

	if n, err := s.st.Items.CountByUser(ctx, userID); err == nil && n == 1 {
		s.notifier.emitQuietly(ctx, model.Notification{
			UserID:   userID,
			Type:     model.NotificationFirstItemAdded,
			Title:    "First item added",
			Message:  "Nice! " + name + " is now being tracked.",
			Metadata: model.NotificationMetadata{FridgeID: f.ID, ItemID: it.ID},
			DedupKey: string(model.NotificationFirstItemAdded),
		})
	}
	s.notifier.checkItemExpiring(ctx, it)
	return it, nil
}

// List returns the items of a fridge the user belongs to.
func (s *Items) List(ctx context.Context, userID, fridgeID string) ([]model.FridgeItem, error) {
	if _, err := memberFridge(ctx, s.st, userID, fridgeID); err != nil {
		return nil, err
	}
	items, err := s.st.Items.ListByFridge(ctx, fridgeID)
	if err != nil {
		return nil, internal("list items", err)
	}
	if items == nil {
		items = []model.FridgeItem{}
	}
	return items, nil
}

// owned loads an item whose fridge the user belongs to.
func (s *Items) owned(ctx context.Context, userID, itemID string) (*model.FridgeItem, error) {
	it, err := s.st.Items.GetByID(ctx, itemID)
	if isNotFound(err) {
		return nil, newErr(KindNotFound, "Item not found")
	}
	if err != nil {
		return nil, internal("load item", err)
	}
	if _, err := memberFridge(ctx, s.st, userID, it.FridgeID); err != nil {
		return nil, err
	}
	return it, nil
}

// Update applies patch. Opening an item stamps OpenedDate; closing it
// clears the stamp.
func (s *Items) Update(ctx context.Context, userID, itemID string, patch ItemPatch) (*model.FridgeItem, error) {
	it, err := s.owned(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, newErr(KindValidation, "name cannot be empty")
		}
		it.Name = name
	}
	if patch.ExpiryDate != nil {
		if patch.ExpiryDate.IsZero() {
			return nil, newErr(KindValidation, "expiry_date cannot be empty")
		}
		it.ExpiryDate = *patch.ExpiryDate
	}
	if patch.IsOpened != nil && *patch.IsOpened != it.IsOpened {
		it.IsOpened = *patch.IsOpened
		if it.IsOpened {
			now := s.now()
			it.OpenedDate = &now
		} else {
			it.OpenedDate = nil
		}
	}
	if patch.CategoryID != nil {
		if err := s.checkCategory(ctx, it.FridgeID, *patch.CategoryID); err != nil {
			return nil, err
		}
		it.CategoryID = *patch.CategoryID
	}
	if err := s.st.Items.Update(ctx, it); err != nil {
		if isNotFound(err) {
			return nil, newErr(KindNotFound, "Item not found")
		}
		return nil, internal("update item", err)
	}
	s.notifier.checkItemExpiring(ctx, it)
	return it, nil
}

// Delete removes one item.
func (s *Items) Delete(ctx context.Context, userID, itemID string) error {
	if _, err := s.owned(ctx, userID, itemID); err != nil {
		return err
	}
	if err := s.st.Items.Delete(ctx, itemID); err != nil && !isNotFound(err) {
		return internal("delete item", err)
	}
	return nil
}

// Clear removes every item of a fridge and returns how many went.
func (s *Items) Clear(ctx context.Context, userID, fridgeID string) (int64, error) {
	if _, err := memberFridge(ctx, s.st, userID, fridgeID); err != nil {
		return 0, err
	}
	n, err := s.st.Items.DeleteByFridge(ctx, fridgeID)
	if err != nil {
		return 0, internal("clear items", err)
	}
	return n, nil
}

func (s *Items) checkCategory(ctx context.Context, fridgeID, categoryID string) error {
	if categoryID == "" {
		return nil
	}
	c, err := s.st.Categories.GetByID(ctx, categoryID)
	if isNotFound(err) || (err == nil && c.FridgeID != fridgeID) {
		return newErr(KindValidation, "category does not belong to this fridge")
	}
	if err != nil {
		return internal("load category", err)
	}
	return nil
}
