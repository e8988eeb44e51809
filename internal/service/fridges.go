package service

import (
	"context"
	"strings"

	"github.com/iliyamo/fridge-share/internal/model"
	"github.com/iliyamo/fridge-share/internal/queue"
)

// Fridges covers member-only fridge maintenance.
type Fridges struct {
	env
	st Stores
}

// memberFridge loads fridgeID and checks userID belongs to it.
func memberFridge(ctx context.Context, st Stores, userID, fridgeID string) (*model.Fridge, error) {
	f, err := st.Fridges.GetByID(ctx, fridgeID)
	if isNotFound(err) {
		return nil, newErr(KindNotFound, "Fridge not found")
	}
	if err != nil {
		return nil, internal("load fridge", err)
	}
	if !f.HasMember(userID) {
		return nil, ErrNotMember
	}
	return f, nil
}

// Rename sets a fridge's name. Any member may rename.
func (s *Fridges) Rename(ctx context.Context, userID, fridgeID, name string) (*model.Fridge, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newErr(KindValidation, "name is required")
	}
	if len(name) > 100 {
		return nil, newErr(KindValidation, "name must be at most 100 characters")
	}
	f, err := memberFridge(ctx, s.st, userID, fridgeID)
	if err != nil {
		return nil, err
	}
	if err := s.st.Fridges.Rename(ctx, f.ID, name); err != nil {
		return nil, internal("rename fridge", err)
	}
	f.Name = name
	return f, nil
}

// Leave removes the user from a shared fridge. Leaving your personal
// fridge is refused since the profile would point at a fridge you are
// not in.
func (s *Fridges) Leave(ctx context.Context, userID, fridgeID string) error {
	f, err := memberFridge(ctx, s.st, userID, fridgeID)
	if err != nil {
		return err
	}
	p, err := s.st.Profiles.GetByUserID(ctx, userID)
	if err != nil && !isNotFound(err) {
		return internal("load profile", err)
	}
	if p != nil && p.FridgeID == f.ID {
		return newErr(KindValidation, "You cannot leave your personal fridge")
	}
	if err := s.st.Fridges.RemoveMember(ctx, f.ID, userID); err != nil {
		return internal("remove member", err)
	}
	s.publish(ctx, queue.Event{Type: queue.EventMemberLeft, UserID: userID, FridgeID: f.ID, FridgeName: f.Name})
	return nil
}
