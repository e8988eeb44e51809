package model

import "time"

// FridgeItem is a tracked food item. UserID records who added it;
// visibility is decided by fridge membership, not by UserID.
type FridgeItem struct {
	ID         string     `db:"id" json:"id"`
	FridgeID   string     `db:"fridge_id" json:"fridge_id"`
	UserID     string     `db:"user_id" json:"user_id"`
	Name       string     `db:"name" json:"name"`
	ExpiryDate time.Time  `db:"expiry_date" json:"expiry_date"`
	IsOpened   bool       `db:"is_opened" json:"is_opened"`
	OpenedDate *time.Time `db:"opened_date" json:"opened_date,omitempty"`
	CategoryID string     `db:"category_id" json:"category_id,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// DefaultCategoryColor is used when a category is created without one.
const DefaultCategoryColor = "#6200ee"

// Category groups items within a fridge. Names are unique per fridge.
type Category struct {
	ID        string    `db:"id" json:"id"`
	FridgeID  string    `db:"fridge_id" json:"fridge_id"`
	Name      string    `db:"name" json:"name"`
	Color     string    `db:"color" json:"color"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
