package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/iliyamo/fridge-share/internal/model"
	"github.com/iliyamo/fridge-share/internal/repository"
)

// CategoryStore is the in-memory category store.
type CategoryStore struct{ db *DB }

func (s *CategoryStore) Create(_ context.Context, c *model.Category) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.categories[c.ID]; ok || s.nameTaken(c) {
		return repository.ErrDuplicate
	}
	now := s.db.now()
	c.CreatedAt, c.UpdatedAt = now, now
	s.db.categories[c.ID] = *c
	return nil
}

func (s *CategoryStore) GetByID(_ context.Context, id string) (*model.Category, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	c, ok := s.db.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (s *CategoryStore) ListByFridge(_ context.Context, fridgeID string) ([]model.Category, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	var out []model.Category
	for _, c := range s.db.categories {
		if c.FridgeID == fridgeID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *CategoryStore) Update(_ context.Context, c *model.Category) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.categories[c.ID]; !ok {
		return repository.ErrNotFound
	}
	if s.nameTaken(c) {
		return repository.ErrDuplicate
	}
	c.UpdatedAt = s.db.now()
	s.db.categories[c.ID] = *c
	return nil
}

func (s *CategoryStore) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.db.categories, id)
	return nil
}

func (s *CategoryStore) DeleteByFridge(_ context.Context, fridgeID string) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for id, c := range s.db.categories {
		if c.FridgeID == fridgeID {
			delete(s.db.categories, id)
			n++
		}
	}
	return n, nil
}

// nameTaken must be called with mu held.
func (s *CategoryStore) nameTaken(c *model.Category) bool {
	for _, other := range s.db.categories {
		if other.ID != c.ID && other.FridgeID == c.FridgeID && strings.EqualFold(other.Name, c.Name) {
			return true
		}
	}
	return false
}
