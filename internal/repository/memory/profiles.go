package memory

import (
	"context"
	"sort"

	"github.com/iliyamo/fridge-share/internal/model"
	"github.com/iliyamo/fridge-share/internal/repository"
)

// ProfileStore is the in-memory profile store.
type ProfileStore struct{ db *DB }

func (s *ProfileStore) Create(_ context.Context, p *model.Profile) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.profiles[p.UserID]; ok {
		return repository.ErrDuplicate
	}
	now := s.db.now()
	p.CreatedAt, p.UpdatedAt = now, now
	s.db.profiles[p.UserID] = *p
	return nil
}

func (s *ProfileStore) GetByUserID(_ context.Context, userID string) (*model.Profile, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	p, ok := s.db.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (s *ProfileStore) GetByEmail(_ context.Context, email string) (*model.Profile, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	var found *model.Profile
	for _, p := range s.db.profiles {
		if sameEmail(p.Email, email) && (found == nil || p.CreatedAt.Before(found.CreatedAt)) {
			p := p
			found = &p
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (s *ProfileStore) UpdateContact(_ context.Context, userID, email, name string) error {
	return s.update(userID, func(p *model.Profile) {
		if email != "" {
			p.Email = email
		}
		if name != "" {
			p.Name = name
		}
	})
}

func (s *ProfileStore) SetFridge(_ context.Context, userID, fridgeID string) error {
	return s.update(userID, func(p *model.Profile) { p.FridgeID = fridgeID })
}

func (s *ProfileStore) List(_ context.Context) ([]model.Profile, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := make([]model.Profile, 0, len(s.db.profiles))
	for _, p := range s.db.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *ProfileStore) update(userID string, fn func(*model.Profile)) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.profiles[userID]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&p)
	p.UpdatedAt = s.db.now()
	s.db.profiles[userID] = p
	return nil
}
