package model

import (
	"strings"
	"time"
)

// DefaultSharedFridgeName is shown for fridges created without a name.
const DefaultSharedFridgeName = "Shared Fridge"

// Fridge is a container of items shared by its members.
//
// PersonalOwner and SourceInvite are creation guards: each is unique when
// set, so concurrent find-or-create paths converge on one row. Whether a
// fridge is personal is still decided by IsPersonal, never by these keys.
type Fridge struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name,omitempty"`
	Members       []string  `db:"-" json:"members"`
	PersonalOwner string    `db:"personal_owner" json:"-"`
	SourceInvite  string    `db:"source_invite" json:"-"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// HasMember reports whether userID is in the member set.
func (f *Fridge) HasMember(userID string) bool {
	for _, m := range f.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// DisplayName returns the fridge name or the shared-fridge default.
func (f *Fridge) DisplayName() string {
	if f.Name == "" {
		return DefaultSharedFridgeName
	}
	return f.Name
}

// IsPersonal reports whether f is p's personal fridge. The profile owner
// must be its sole member, and either the profile points at it or it was
// created as that owner's personal fridge. The second case keeps the
// emptied fridge personal after an account invite repoints the profile.
func IsPersonal(f *Fridge, p *Profile) bool {
	if f == nil || p == nil {
		return false
	}
	if len(f.Members) != 1 || f.Members[0] != p.UserID {
		return false
	}
	return p.FridgeID == f.ID || f.PersonalOwner == p.UserID
}

// OwnedAlone reports whether f was created as a personal fridge and its
// owner is still the only member.
func (f *Fridge) OwnedAlone() bool {
	return f.PersonalOwner != "" && len(f.Members) == 1 && f.Members[0] == f.PersonalOwner
}

// PersonalFridgeName formats the default name of a user's own fridge.
// Names ending in "s" take a bare apostrophe ("James' Fridge").
func PersonalFridgeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.HasSuffix(strings.ToLower(name), "s") {
		return name + "' Fridge"
	}
	return name + "'s Fridge"
}
