// Package queue carries domain events over RabbitMQ. Events are fire and
// forget: publishing failures are logged and never fail the request that
// produced them.
package queue

import "time"

// QueueName is the durable queue all fridge events go through.
const QueueName = "fridge.events"

// Event types.
const (
	EventAccountCreated = "account.created"
	EventFridgeCreated  = "fridge.created"
	EventInviteCreated  = "invite.created"
	EventInviteAccepted = "invite.accepted"
	EventMemberLeft     = "fridge.member_left"
)

// Event is the JSON payload published for every domain event.
type Event struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id,omitempty"`
	FridgeID   string    `json:"fridge_id,omitempty"`
	FridgeName string    `json:"fridge_name,omitempty"`
	InviteID   string    `json:"invite_id,omitempty"`
	InviteType string    `json:"invite_type,omitempty"`
	Email      string    `json:"email,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
