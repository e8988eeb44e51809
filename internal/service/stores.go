package service

import (
	"context"
	"time"

	"github.com/iliyamo/fridge-share/internal/model"
)

// AccountStore persists email/password accounts. Create returns
// repository.ErrDuplicate when the email is taken.
type AccountStore interface {
	Create(ctx context.Context, a *model.Account) error
	GetByID(ctx context.Context, id string) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	GetByVerificationToken(ctx context.Context, tokenHash string) (*model.Account, error)
	GetByResetToken(ctx context.Context, tokenHash string) (*model.Account, error)
	SetVerificationToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	MarkVerified(ctx context.Context, id string) error
	SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// ProfileStore persists profiles keyed by user id. Create returns
// repository.ErrDuplicate when the user already has one.
type ProfileStore interface {
	Create(ctx context.Context, p *model.Profile) error
	GetByUserID(ctx context.Context, userID string) (*model.Profile, error)
	GetByEmail(ctx context.Context, email string) (*model.Profile, error)
	UpdateContact(ctx context.Context, userID, email, name string) error
	SetFridge(ctx context.Context, userID, fridgeID string) error
	List(ctx context.Context) ([]model.Profile, error)
}

// FridgeStore persists fridges and their member sets. Create returns
// repository.ErrDuplicate when PersonalOwner or SourceInvite is taken.
type FridgeStore interface {
	Create(ctx context.Context, f *model.Fridge) error
	GetByID(ctx context.Context, id string) (*model.Fridge, error)
	// FindPersonalCandidate returns the oldest fridge whose only member is userID.
	FindPersonalCandidate(ctx context.Context, userID string) (*model.Fridge, error)
	// FindAnyContaining returns the oldest fridge userID is a member of.
	FindAnyContaining(ctx context.Context, userID string) (*model.Fridge, error)
	FindByPersonalOwner(ctx context.Context, userID string) (*model.Fridge, error)
	FindBySourceInvite(ctx context.Context, token string) (*model.Fridge, error)
	ListByMember(ctx context.Context, userID string) ([]model.Fridge, error)
	List(ctx context.Context) ([]model.Fridge, error)
	AddMember(ctx context.Context, fridgeID, userID string) error
	RemoveMember(ctx context.Context, fridgeID, userID string) error
	Rename(ctx context.Context, fridgeID, name string) error
	Delete(ctx context.Context, id string) error
}

// InviteStore persists invites keyed by token.
type InviteStore interface {
	Create(ctx context.Context, inv *model.Invite) error
	GetByToken(ctx context.Context, token string) (*model.Invite, error)
	// AttachFridge sets fridge_id to fridgeID if it currently equals
	// expected ("" for none), else returns repository.ErrConflict.
	AttachFridge(ctx context.Context, token, expected, fridgeID string) error
	// Transition moves the invite from one status to another and returns
	// repository.ErrConflict when the stored status is not from.
	Transition(ctx context.Context, token string, from, to model.InviteStatus) error
	// ListPendingFor returns unexpired pending fridge invites for email.
	ListPendingFor(ctx context.Context, email string, now time.Time) ([]model.Invite, error)
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteByFridge(ctx context.Context, fridgeID string) (int64, error)
}

// ItemStore persists fridge items.
type ItemStore interface {
	Create(ctx context.Context, it *model.FridgeItem) error
	GetByID(ctx context.Context, id string) (*model.FridgeItem, error)
	ListByFridge(ctx context.Context, fridgeID string) ([]model.FridgeItem, error)
	Update(ctx context.Context, it *model.FridgeItem) error
	Delete(ctx context.Context, id string) error
	DeleteByFridge(ctx context.Context, fridgeID string) (int64, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	// RepointUser moves every item userID added outside fridgeID into it.
	RepointUser(ctx context.Context, userID, fridgeID string) (int64, error)
	// MoveFridge moves every item of one fridge into another.
	MoveFridge(ctx context.Context, fromFridgeID, toFridgeID string) (int64, error)
	// ListUnopenedExpiring returns unopened items with from <= expiry < to.
	ListUnopenedExpiring(ctx context.Context, from, to time.Time) ([]model.FridgeItem, error)
	ClearCategory(ctx context.Context, categoryID string) (int64, error)
}

// CategoryStore persists categories. Create and Update return
// repository.ErrDuplicate when the name is taken within the fridge.
type CategoryStore interface {
	Create(ctx context.Context, c *model.Category) error
	GetByID(ctx context.Context, id string) (*model.Category, error)
	ListByFridge(ctx context.Context, fridgeID string) ([]model.Category, error)
	Update(ctx context.Context, c *model.Category) error
	Delete(ctx context.Context, id string) error
	DeleteByFridge(ctx context.Context, fridgeID string) (int64, error)
}

// NotificationStore persists notifications. Create returns
// repository.ErrDuplicate when (UserID, DedupKey) already exists.
type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	GetByID(ctx context.Context, id string) (*model.Notification, error)
	// ListByUser returns newest first; read filters when non-nil.
	ListByUser(ctx context.Context, userID string, read *bool, limit int) ([]model.Notification, error)
	FindByInviteToken(ctx context.Context, userID, token string) (*model.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id string) error
	CountUnread(ctx context.Context, userID string) (int, error)
}

// TokenStore persists hashed refresh tokens.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID, provider, tokenHash string, exp time.Time) error
	// ValidateRefresh returns the owning session of a live token.
	ValidateRefresh(ctx context.Context, tokenHash string, now time.Time) (*model.RefreshToken, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

// Stores groups every store a Services bundle needs.
type Stores struct {
	Accounts      AccountStore
	Profiles      ProfileStore
	Fridges       FridgeStore
	Invites       InviteStore
	Items         ItemStore
	Categories    CategoryStore
	Notifications NotificationStore
	Tokens        TokenStore
}
