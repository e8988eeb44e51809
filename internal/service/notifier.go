package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/iliyamo/fridge-share/internal/model"
)

// NotificationListLimit caps how many notifications a list returns.
const NotificationListLimit = 100

// Notifier stores user notifications and synthesizes virtual ones for
// pending invites.
type Notifier struct {
	env
	st Stores
}

// Emit stores a notification. When DedupKey is set and already used for
// the user, Emit returns (nil, nil).
func (n *Notifier) Emit(ctx context.Context, note model.Notification) (*model.Notification, error) {
	note.ID = ksuid.New().String()
	note.IsRead = false
	if note.CreatedAt.IsZero() {
		note.CreatedAt = n.now()
	}
	err := n.st.Notifications.Create(ctx, &note)
	if isDuplicate(err) {
		return nil, nil
	}
	if err != nil {
		return nil, internal("create notification", err)
	}
	n.metrics.NotificationEmitted(string(note.Type))
	return &note, nil
}

// emitQuietly is Emit for side-effect notifications whose failure must
// not fail the operation that triggered them.
func (n *Notifier) emitQuietly(ctx context.Context, note model.Notification) {
	if _, err := n.Emit(ctx, note); err != nil {
		n.log.Warn("emit notification failed",
			zap.String("type", string(note.Type)), zap.String("user_id", note.UserID), zap.Error(err))
	}
}

// ListForUser returns stored notifications merged with one virtual entry
// per pending invite that has no stored counterpart, newest first.
func (n *Notifier) ListForUser(ctx context.Context, userID string, read *bool) ([]model.Notification, error) {
	stored, err := n.st.Notifications.ListByUser(ctx, userID, read, NotificationListLimit)
	if err != nil {
		return nil, internal("list notifications", err)
	}
	out := stored
	if read == nil || !*read {
		virtual, err := n.virtualInvites(ctx, userID)
		if err != nil {
			return nil, err
		}
		out = append(out, virtual...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > NotificationListLimit {
		out = out[:NotificationListLimit]
	}
	return out, nil
}

// UnreadCount is unread stored rows plus pending invites not yet
// represented by a stored row.
func (n *Notifier) UnreadCount(ctx context.Context, userID string) (int, error) {
	count, err := n.st.Notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, internal("count notifications", err)
	}
	virtual, err := n.virtualInvites(ctx, userID)
	if err != nil {
		return 0, err
	}
	return count + len(virtual), nil
}

func (n *Notifier) virtualInvites(ctx context.Context, userID string) ([]model.Notification, error) {
	p, err := n.st.Profiles.GetByUserID(ctx, userID)
	if isNotFound(err) || (err == nil && p.Email == "") {
		return nil, nil
	}
	if err != nil {
		return nil, internal("load profile", err)
	}
	invites, err := n.st.Invites.ListPendingFor(ctx, p.Email, n.now())
	if err != nil {
		return nil, internal("list invites", err)
	}
	var out []model.Notification
	for _, inv := range invites {
		_, err := n.st.Notifications.FindByInviteToken(ctx, userID, inv.Token)
		if err == nil {
			continue
		}
		if !isNotFound(err) {
			return nil, internal("find invite notification", err)
		}
		title, msg := inviteText(ctx, n.st, &inv)
		out = append(out, model.Notification{
			ID:      "invite_" + inv.ID,
			UserID:  userID,
			Type:    model.NotificationFridgeInvite,
			Title:   title,
			Message: msg,
			Metadata: model.NotificationMetadata{
				FridgeID:    inv.FridgeID,
				InviteID:    inv.ID,
				InviteToken: inv.Token,
			},
			Virtual:   true,
			CreatedAt: inv.CreatedAt,
			UpdatedAt: inv.CreatedAt,
		})
	}
	return out, nil
}

// inviteText renders the invite notification title and body.
func inviteText(ctx context.Context, st Stores, inv *model.Invite) (string, string) {
	inviter := "Someone"
	if p, err := st.Profiles.GetByUserID(ctx, inv.InviterID); err == nil && p.Name != "" {
		inviter = p.Name
	}
	fridge := inv.FridgeName
	if fridge == "" {
		fridge = model.DefaultSharedFridgeName
	}
	return fmt.Sprintf("Invitation to %q", fridge),
		fmt.Sprintf("%s invited you to join %q. Click to accept!", inviter, fridge)
}

// owned loads a stored notification belonging to userID.
func (n *Notifier) owned(ctx context.Context, userID, id string) (*model.Notification, error) {
	note, err := n.st.Notifications.GetByID(ctx, id)
	if isNotFound(err) || (err == nil && note.UserID != userID) {
		return nil, newErr(KindNotFound, "Notification not found")
	}
	if err != nil {
		return nil, internal("load notification", err)
	}
	return note, nil
}

// MarkRead marks one of the user's notifications read.
func (n *Notifier) MarkRead(ctx context.Context, userID, id string) (*model.Notification, error) {
	note, err := n.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := n.st.Notifications.MarkRead(ctx, id); err != nil {
		return nil, internal("mark read", err)
	}
	note.IsRead = true
	return note, nil
}

// MarkAllRead marks every stored notification of the user read.
func (n *Notifier) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	count, err := n.st.Notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, internal("mark all read", err)
	}
	return count, nil
}

// Delete removes one of the user's notifications.
func (n *Notifier) Delete(ctx context.Context, userID, id string) error {
	if _, err := n.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := n.st.Notifications.Delete(ctx, id); err != nil {
		return internal("delete notification", err)
	}
	return nil
}

// dayBounds returns [start of t's calendar day, start of next day) in loc.
func dayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	lt := t.In(loc)
	start := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// CheckExpiringItems notifies every member of a fridge holding an
// unopened item that expires tomorrow. At most one notification exists
// per (user, item, day), so the check is safe to run repeatedly.
func (n *Notifier) CheckExpiringItems(ctx context.Context) (int, error) {
	_, tomorrow := dayBounds(n.now(), n.cfg.Location)
	items, err := n.st.Items.ListUnopenedExpiring(ctx, tomorrow, tomorrow.AddDate(0, 0, 1))
	if err != nil {
		return 0, internal("list expiring items", err)
	}
	created := 0
	for i := range items {
		c, err := n.notifyExpiring(ctx, &items[i])
		if err != nil {
			return created, err
		}
		created += c
	}
	if created > 0 {
		n.log.Info("expiring item notifications sent", zap.Int("count", created))
	}
	return created, nil
}

// checkItemExpiring runs the expiring check for one freshly written item.
func (n *Notifier) checkItemExpiring(ctx context.Context, it *model.FridgeItem) {
	_, tomorrow := dayBounds(n.now(), n.cfg.Location)
	end := tomorrow.AddDate(0, 0, 1)
	if it.IsOpened || it.ExpiryDate.Before(tomorrow) || !it.ExpiryDate.Before(end) {
		return
	}
	if _, err := n.notifyExpiring(ctx, it); err != nil {
		n.log.Warn("expiring check failed", zap.String("item_id", it.ID), zap.Error(err))
	}
}

func (n *Notifier) notifyExpiring(ctx context.Context, it *model.FridgeItem) (int, error) {
	f, err := n.st.Fridges.GetByID(ctx, it.FridgeID)
	if isNotFound(err) {
		n.log.Warn("item references missing fridge", zap.String("item_id", it.ID), zap.String("fridge_id", it.FridgeID))
		return 0, nil
	}
	if err != nil {
		return 0, internal("load fridge", err)
	}
	day := n.now().In(n.cfg.Location).Format("2006-01-02")
	created := 0
	for _, member := range f.Members {
		note, err := n.Emit(ctx, model.Notification{
			UserID:   member,
			Type:     model.NotificationItemExpiringTomorrow,
			Title:    "Item expiring tomorrow",
			Message:  fmt.Sprintf("%s in %s expires tomorrow.", it.Name, f.DisplayName()),
			Metadata: model.NotificationMetadata{FridgeID: f.ID, ItemID: it.ID},
			DedupKey: fmt.Sprintf("%s:%s:%s", model.NotificationItemExpiringTomorrow, it.ID, day),
		})
		if err != nil {
			return created, err
		}
		if note != nil {
			created++
		}
	}
	return created, nil
}
