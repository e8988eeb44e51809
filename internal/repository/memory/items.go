package memory

import (
	"context"
	"sort"
	"time"

	"github.com/iliyamo/fridge-share/internal/model"
	"github.com/iliyamo/fridge-share/internal/repository"
)

// ItemStore is the in-memory fridge item store.
type ItemStore struct{ db *DB }

func (s *ItemStore) Create(_ context.Context, it *model.FridgeItem) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.items[it.ID]; ok {
		return repository.ErrDuplicate
	}
	now := s.db.now()
	it.CreatedAt, it.UpdatedAt = now, now
	s.db.items[it.ID] = *it
	return nil
}

func (s *ItemStore) GetByID(_ context.Context, id string) (*model.FridgeItem, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	it, ok := s.db.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &it, nil
}

func (s *ItemStore) ListByFridge(_ context.Context, fridgeID string) ([]model.FridgeItem, error) {
	out := s.filter(func(it model.FridgeItem) bool { return it.FridgeID == fridgeID })
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiryDate.Before(out[j].ExpiryDate) })
	return out, nil
}

func (s *ItemStore) Update(_ context.Context, it *model.FridgeItem) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.items[it.ID]; !ok {
		return repository.ErrNotFound
	}
	it.UpdatedAt = s.db.now()
	s.db.items[it.ID] = *it
	return nil
}

func (s *ItemStore) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.db.items, id)
	return nil
}

func (s *ItemStore) DeleteByFridge(_ context.Context, fridgeID string) (int64, error) {
	return s.mutate(func(it *model.FridgeItem) (bool, bool) { return it.FridgeID == fridgeID, true }), nil
}

func (s *ItemStore) CountByUser(_ context.Context, userID string) (int, error) {
	return len(s.filter(func(it model.FridgeItem) bool { return it.UserID == userID })), nil
}

func (s *ItemStore) RepointUser(_ context.Context, userID, fridgeID string) (int64, error) {
	return s.mutate(func(it *model.FridgeItem) (bool, bool) {
		if it.UserID != userID || it.FridgeID == fridgeID {
			return false, false
		}
		it.FridgeID = fridgeID
		return true, false
	}), nil
}

func (s *ItemStore) MoveFridge(_ context.Context, fromFridgeID, toFridgeID string) (int64, error) {
	return s.mutate(func(it *model.FridgeItem) (bool, bool) {
		if it.FridgeID != fromFridgeID || fromFridgeID == toFridgeID {
			return false, false
		}
		it.FridgeID = toFridgeID
		return true, false
	}), nil
}

func (s *ItemStore) ListUnopenedExpiring(_ context.Context, from, to time.Time) ([]model.FridgeItem, error) {
	out := s.filter(func(it model.FridgeItem) bool {
		return !it.IsOpened && !it.ExpiryDate.Before(from) && it.ExpiryDate.Before(to)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *ItemStore) ClearCategory(_ context.Context, categoryID string) (int64, error) {
	return s.mutate(func(it *model.FridgeItem) (bool, bool) {
		if it.CategoryID != categoryID {
			return false, false
		}
		it.CategoryID = ""
		return true, false
	}), nil
}

func (s *ItemStore) filter(match func(model.FridgeItem) bool) []model.FridgeItem {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	var out []model.FridgeItem
	for _, it := range s.db.items {
		if match(it) {
			out = append(out, it)
		}
	}
	return out
}

// mutate applies fn to every item; fn reports whether it changed the
// item and whether the item should be removed instead.
func (s *ItemStore) mutate(fn func(*model.FridgeItem) (changed, remove bool)) int64 {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	now := s.db.now()
	for id, it := range s.db.items {
		changed, remove := fn(&it)
		if !changed {
			continue
		}
		n++
		if remove {
			delete(s.db.items, id)
			continue
		}
		it.UpdatedAt = now
		s.db.items[id] = it
	}
	return n
}
