package model

import (
	"errors"
	"time"
)

// InviteType selects what acceptance does.
type InviteType string

const (
	// InviteFridge asks an existing account holder to share a fridge.
	InviteFridge InviteType = "fridge"
	// InviteAccount asks someone without an account to sign up and share.
	InviteAccount InviteType = "account"
)

// InviteStatus is the persisted discriminator of InviteState.
type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusExpired  InviteStatus = "expired"
)

// ErrInvalidTransition is returned when a transition is not allowed from
// the current state (e.g. accepting an expired invite).
var ErrInvalidTransition = errors.New("invalid invite state transition")

// Invite is a single-use, time-limited capability identified by Token.
// FridgeID is filled either at creation (invites to an existing fridge)
// or when acceptance materialises the shared fridge.
type Invite struct {
	ID           string       `db:"id" json:"id"`
	Token        string       `db:"token" json:"token"`
	InviterID    string       `db:"inviter_id" json:"inviter_id"`
	InviteeEmail string       `db:"invitee_email" json:"invitee_email"`
	Type         InviteType   `db:"invite_type" json:"type"`
	FridgeName   string       `db:"fridge_name" json:"fridge_name,omitempty"`
	FridgeID     string       `db:"fridge_id" json:"fridge_id,omitempty"`
	Status       InviteStatus `db:"status" json:"status"`
	ExpiresAt    time.Time    `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// InviteState is the lifecycle position of an invite: Pending, Accepted
// or Expired. Transitions go through Accept and Expire, which return the
// next state instead of mutating the invite.
type InviteState interface {
	Status() InviteStatus
}

// Pending invites can be accepted until they expire.
type Pending struct{}

// Accepted invites remember the fridge the invitee joined.
type Accepted struct{ FridgeID string }

// Expired invites are terminal.
type Expired struct{}

func (Pending) Status() InviteStatus  { return InviteStatusPending }
func (Accepted) Status() InviteStatus { return InviteStatusAccepted }
func (Expired) Status() InviteStatus  { return InviteStatusExpired }

// StateAt derives the invite's state at now. A pending invite whose
// expiry has passed reads as Expired even before it is persisted so.
func (i *Invite) StateAt(now time.Time) InviteState {
	switch i.Status {
	case InviteStatusAccepted:
		return Accepted{FridgeID: i.FridgeID}
	case InviteStatusExpired:
		return Expired{}
	}
	if now.After(i.ExpiresAt) {
		return Expired{}
	}
	return Pending{}
}

// Accept moves a pending invite to Accepted. Accepting an already
// accepted invite returns it unchanged so repeated acceptance is a no-op.
func Accept(s InviteState, fridgeID string) (InviteState, error) {
	switch st := s.(type) {
	case Pending:
		if fridgeID == "" {
			return s, ErrInvalidTransition
		}
		return Accepted{FridgeID: fridgeID}, nil
	case Accepted:
		return st, nil
	}
	return s, ErrInvalidTransition
}

// Expire moves a pending invite to Expired. Expired is idempotent;
// accepted invites never expire.
func Expire(s InviteState) (InviteState, error) {
	switch s.(type) {
	case Pending, Expired:
		return Expired{}, nil
	}
	return s, ErrInvalidTransition
}

// WithState returns a copy of the invite carrying state s.
func (i Invite) WithState(s InviteState) Invite {
	i.Status = s.Status()
	if a, ok := s.(Accepted); ok {
		i.FridgeID = a.FridgeID
	}
	return i
}
