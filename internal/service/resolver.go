package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/fridge-share/internal/model"
	"github.com/iliyamo/fridge-share/internal/queue"
)

// Resolver guarantees every user has a Profile pointing at a fridge they
// belong to.
type Resolver struct {
	env
	st Stores
}

// Ensure returns the id of the user's personal fridge, creating the
// Profile (and a personal fridge) on first use and repairing membership
// drift for existing profiles. It is idempotent.
func (r *Resolver) Ensure(ctx context.Context, userID, email, name string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", newErr(KindValidation, "userId is required")
	}
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)

	p, err := r.st.Profiles.GetByUserID(ctx, userID)
	switch {
	case isNotFound(err):
		p, err = r.createProfile(ctx, userID, email, name)
		if err != nil {
			return "", err
		}
	case err != nil:
		return "", internal("load profile", err)
	default:
		if (email != "" && email != p.Email) || (name != "" && name != p.Name) {
			if err := r.st.Profiles.UpdateContact(ctx, userID, email, name); err != nil {
				return "", internal("update profile", err)
			}
		}
	}

	f, err := r.st.Fridges.GetByID(ctx, p.FridgeID)
	if isNotFound(err) {
		r.log.Error("profile points at missing fridge",
			zap.String("user_id", userID), zap.String("fridge_id", p.FridgeID))
		return "", newErr(KindIntegrity, "FridgeNotFound")
	}
	if err != nil {
		return "", internal("load fridge", err)
	}
	if !f.HasMember(userID) {
		if err := r.st.Fridges.AddMember(ctx, f.ID, userID); err != nil {
			return "", internal("repair membership", err)
		}
		moved, err := r.st.Items.RepointUser(ctx, userID, f.ID)
		if err != nil {
			return "", internal("repoint items", err)
		}
		r.log.Info("repaired fridge membership",
			zap.String("user_id", userID), zap.String("fridge_id", f.ID), zap.Int64("items_moved", moved))
	}
	return f.ID, nil
}

// createProfile adopts a fridge the user already sits alone in, then any
// fridge containing them, and only then creates a personal fridge.
func (r *Resolver) createProfile(ctx context.Context, userID, email, name string) (*model.Profile, error) {
	f, err := r.st.Fridges.FindPersonalCandidate(ctx, userID)
	if isNotFound(err) {
		f, err = r.st.Fridges.FindAnyContaining(ctx, userID)
	}
	if isNotFound(err) {
		f, err = r.createPersonalFridge(ctx, userID, name)
	}
	if err != nil {
		return nil, internal("resolve fridge", err)
	}
	return r.insertProfile(ctx, userID, email, name, f.ID)
}

// personalFridge finds or creates the fridge userID owns alone. Unlike
// createProfile it never adopts a shared fridge.
func (r *Resolver) personalFridge(ctx context.Context, userID, name string) (*model.Fridge, error) {
	f, err := r.st.Fridges.FindPersonalCandidate(ctx, userID)
	if isNotFound(err) {
		return r.createPersonalFridge(ctx, userID, name)
	}
	return f, err
}

// createPersonalFridge relies on the unique personal_owner key: the
// loser of a concurrent first ensure re-reads the winner's fridge.
func (r *Resolver) createPersonalFridge(ctx context.Context, userID, name string) (*model.Fridge, error) {
	f := &model.Fridge{
		ID:            uuid.NewString(),
		Name:          model.PersonalFridgeName(name),
		Members:       []string{userID},
		PersonalOwner: userID,
	}
	err := r.st.Fridges.Create(ctx, f)
	if isDuplicate(err) {
		return r.st.Fridges.FindByPersonalOwner(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	r.metrics.FridgeCreated("personal")
	r.publish(ctx, queue.Event{Type: queue.EventFridgeCreated, UserID: userID, FridgeID: f.ID, FridgeName: f.Name})
	return f, nil
}

// insertProfile creates the profile; if another request created it
// first, that one wins and is returned.
func (r *Resolver) insertProfile(ctx context.Context, userID, email, name, fridgeID string) (*model.Profile, error) {
	p := &model.Profile{UserID: userID, Email: email, Name: name, FridgeID: fridgeID}
	err := r.st.Profiles.Create(ctx, p)
	if isDuplicate(err) {
		existing, gerr := r.st.Profiles.GetByUserID(ctx, userID)
		if gerr != nil {
			return nil, internal("reload profile", gerr)
		}
		return existing, nil
	}
	if err != nil {
		return nil, internal("create profile", err)
	}
	return p, nil
}

// FridgeView is a fridge annotated for one user.
type FridgeView struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Members    []string `json:"members"`
	IsPersonal bool     `json:"is_personal"`
}

// ListFridges returns every fridge the user belongs to, personal first.
func (r *Resolver) ListFridges(ctx context.Context, userID string) ([]FridgeView, error) {
	p, err := r.st.Profiles.GetByUserID(ctx, userID)
	if err != nil && !isNotFound(err) {
		return nil, internal("load profile", err)
	}
	fridges, err := r.st.Fridges.ListByMember(ctx, userID)
	if err != nil {
		return nil, internal("list fridges", err)
	}
	out := make([]FridgeView, 0, len(fridges))
	for i := range fridges {
		f := &fridges[i]
		v := FridgeView{ID: f.ID, Name: f.DisplayName(), Members: f.Members, IsPersonal: model.IsPersonal(f, p)}
		if v.IsPersonal {
			out = append([]FridgeView{v}, out...)
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// IsPersonal reports whether fridgeID is the user's personal fridge.
func (r *Resolver) IsPersonal(ctx context.Context, userID, fridgeID string) (bool, error) {
	p, err := r.st.Profiles.GetByUserID(ctx, userID)
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, internal("load profile", err)
	}
	f, err := r.st.Fridges.GetByID(ctx, fridgeID)
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, internal("load fridge", err)
	}
	return model.IsPersonal(f, p), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
