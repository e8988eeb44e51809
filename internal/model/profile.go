package model

import "time"

// Profile is the per-user anchor record. FridgeID points at the fridge
// treated as the user's personal fridge; at most one Profile exists per
// UserID.
type Profile struct {
	UserID    string    `db:"user_id" json:"user_id"`
	Email     string    `db:"email" json:"email,omitempty"`
	Name      string    `db:"name" json:"name,omitempty"`
	FridgeID  string    `db:"fridge_id" json:"fridge_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
