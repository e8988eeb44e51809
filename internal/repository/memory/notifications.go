package memory

import (
	"context"
	"sort"

	"github.com/iliyamo/fridge-share/internal/model"
	"github.com/iliyamo/fridge-share/internal/repository"
)

// NotificationStore is the in-memory notification store.
type NotificationStore struct{ db *DB }

func (s *NotificationStore) Create(_ context.Context, n *model.Notification) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.notifications[n.ID]; ok {
		return repository.ErrDuplicate
	}
	if n.DedupKey != "" {
		for _, other := range s.db.notifications {
			if other.UserID == n.UserID && other.DedupKey == n.DedupKey {
				return repository.ErrDuplicate
			}
		}
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.db.now()
	}
	n.UpdatedAt = n.CreatedAt
	s.db.notifications[n.ID] = *n
	return nil
}

func (s *NotificationStore) GetByID(_ context.Context, id string) (*model.Notification, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	n, ok := s.db.notifications[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &n, nil
}

func (s *NotificationStore) ListByUser(_ context.Context, userID string, read *bool, limit int) ([]model.Notification, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	var out []model.Notification
	for _, n := range s.db.notifications {
		if n.UserID != userID || (read != nil && n.IsRead != *read) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *NotificationStore) FindByInviteToken(_ context.Context, userID, token string) (*model.Notification, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	for _, n := range s.db.notifications {
		if n.UserID == userID && token != "" && n.Metadata.InviteToken == token {
			return &n, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *NotificationStore) MarkRead(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	n, ok := s.db.notifications[id]
	if !ok {
		return repository.ErrNotFound
	}
	n.IsRead = true
	n.UpdatedAt = s.db.now()
	s.db.notifications[id] = n
	return nil
}

func (s *NotificationStore) MarkAllRead(_ context.Context, userID string) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var count int64
	now := s.db.now()
	for id, n := range s.db.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			n.UpdatedAt = now
			s.db.notifications[id] = n
			count++
		}
	}
	return count, nil
}

func (s *NotificationStore) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.notifications[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.db.notifications, id)
	return nil
}

func (s *NotificationStore) CountUnread(_ context.Context, userID string) (int, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	count := 0
	for _, n := range s.db.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}
