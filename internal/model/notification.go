package model

import "time"

// NotificationType enumerates the kinds of user-facing events.
type NotificationType string

const (
	NotificationAccountCreated       NotificationType = "account_created"
	NotificationFirstItemAdded       NotificationType = "first_item_added"
	NotificationItemExpiringTomorrow NotificationType = "item_expiring_tomorrow"
	NotificationFridgeInvite         NotificationType = "fridge_invite"
	NotificationFridgeJoined         NotificationType = "fridge_joined"
)

// NotificationMetadata carries the optional references of a notification.
type NotificationMetadata struct {
	FridgeID    string `db:"fridge_id" json:"fridge_id,omitempty"`
	ItemID      string `db:"item_id" json:"item_id,omitempty"`
	InviteID    string `db:"invite_id" json:"invite_id,omitempty"`
	InviteToken string `db:"invite_token" json:"invite_token,omitempty"`
}

// Notification is a per-user message. DedupKey, when set, is unique per
// user and makes repeated emission of the same event a no-op.
//
// Virtual notifications synthesized from pending invites are never
// stored; their ID is "invite_<inviteID>".
type Notification struct {
	ID        string               `db:"id" json:"id"`
	UserID    string               `db:"user_id" json:"user_id"`
	Type      NotificationType     `db:"type" json:"type"`
	Title     string               `db:"title" json:"title"`
	Message   string               `db:"message" json:"message"`
	IsRead    bool                 `db:"is_read" json:"is_read"`
	Metadata  NotificationMetadata `db:"metadata" json:"metadata"`
	DedupKey  string               `db:"dedup_key" json:"-"`
	Virtual   bool                 `db:"-" json:"virtual,omitempty"`
	CreatedAt time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt time.Time            `db:"updated_at" json:"updated_at"`
}
