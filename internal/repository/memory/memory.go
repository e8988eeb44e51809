// Package memory implements every store on top of process memory. It
// enforces the same unique keys as the MySQL schema so find-or-create
// paths behave identically in tests and in STORE_DRIVER=memory mode.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/fridge-share/internal/model"
)

// DB is the shared state behind the typed store views.
type DB struct {
	mu            sync.RWMutex
	accounts      map[string]model.Account
	profiles      map[string]model.Profile
	fridges       map[string]model.Fridge
	invites       map[string]model.Invite
	items         map[string]model.FridgeItem
	categories    map[string]model.Category
	notifications map[string]model.Notification
	tokens        map[string]model.RefreshToken
	fridgeSeq     map[string]uint64
	nextSeq       uint64
	nextTokenID   uint64
	now           func() time.Time
}

// New returns an empty database.
func New() *DB {
	return &DB{
		accounts:      map[string]model.Account{},
		profiles:      map[string]model.Profile{},
		fridges:       map[string]model.Fridge{},
		invites:       map[string]model.Invite{},
		items:         map[string]model.FridgeItem{},
		categories:    map[string]model.Category{},
		notifications: map[string]model.Notification{},
		tokens:        map[string]model.RefreshToken{},
		fridgeSeq:     map[string]uint64{},
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the timestamp source for created_at/updated_at.
func (d *DB) SetClock(now func() time.Time) { d.now = now }

func (d *DB) Accounts() *AccountStore           { return &AccountStore{d} }
func (d *DB) Profiles() *ProfileStore           { return &ProfileStore{d} }
func (d *DB) Fridges() *FridgeStore             { return &FridgeStore{d} }
func (d *DB) Invites() *InviteStore             { return &InviteStore{d} }
func (d *DB) Items() *ItemStore                 { return &ItemStore{d} }
func (d *DB) Categories() *CategoryStore        { return &CategoryStore{d} }
func (d *DB) Notifications() *NotificationStore { return &NotificationStore{d} }
func (d *DB) Tokens() *TokenStore               { return &TokenStore{d} }

func sameEmail(a, b string) bool { return a != "" && strings.EqualFold(a, b) }

func cloneFridge(f model.Fridge) *model.Fridge {
	f.Members = append([]string(nil), f.Members...)
	return &f
}

// sortFridges orders by creation, oldest first. Must be called with mu held.
func (d *DB) sortFridges(fs []model.Fridge) {
	sort.Slice(fs, func(i, j int) bool { return d.fridgeSeq[fs[i].ID] < d.fridgeSeq[fs[j].ID] })
}
