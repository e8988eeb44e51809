package memory

import (
	"context"

	"github.com/iliyamo/fridge-share/internal/model"
	"github.com/iliyamo/fridge-share/internal/repository"
)

// FridgeStore is the in-memory fridge store.
type FridgeStore struct{ db *DB }

func (s *FridgeStore) Create(_ context.Context, f *model.Fridge) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.fridges[f.ID]; ok {
		return repository.ErrDuplicate
	}
	for _, existing := range s.db.fridges {
		if f.PersonalOwner != "" && existing.PersonalOwner == f.PersonalOwner {
			return repository.ErrDuplicate
		}
		if f.SourceInvite != "" && existing.SourceInvite == f.SourceInvite {
			return repository.ErrDuplicate
		}
	}
	now := s.db.now()
	f.CreatedAt, f.UpdatedAt = now, now
	f.Members = dedupe(f.Members)
	s.db.nextSeq++
	s.db.fridgeSeq[f.ID] = s.db.nextSeq
	s.db.fridges[f.ID] = *cloneFridge(*f)
	return nil
}

func (s *FridgeStore) GetByID(_ context.Context, id string) (*model.Fridge, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	f, ok := s.db.fridges[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneFridge(f), nil
}

func (s *FridgeStore) FindPersonalCandidate(_ context.Context, userID string) (*model.Fridge, error) {
	return s.first(func(f model.Fridge) bool { return len(f.Members) == 1 && f.Members[0] == userID })
}

func (s *FridgeStore) FindAnyContaining(_ context.Context, userID string) (*model.Fridge, error) {
	return s.first(func(f model.Fridge) bool { return f.HasMember(userID) })
}

func (s *FridgeStore) FindByPersonalOwner(_ context.Context, userID string) (*model.Fridge, error) {
	return s.first(func(f model.Fridge) bool { return userID != "" && f.PersonalOwner == userID })
}

func (s *FridgeStore) FindBySourceInvite(_ context.Context, token string) (*model.Fridge, error) {
	return s.first(func(f model.Fridge) bool { return token != "" && f.SourceInvite == token })
}

func (s *FridgeStore) ListByMember(_ context.Context, userID string) ([]model.Fridge, error) {
	return s.filter(func(f model.Fridge) bool { return f.HasMember(userID) }), nil
}

func (s *FridgeStore) List(_ context.Context) ([]model.Fridge, error) {
	return s.filter(func(model.Fridge) bool { return true }), nil
}

func (s *FridgeStore) AddMember(_ context.Context, fridgeID, userID string) error {
	return s.update(fridgeID, func(f *model.Fridge) {
		if !f.HasMember(userID) {
			f.Members = append(f.Members, userID)
		}
	})
}

func (s *FridgeStore) RemoveMember(_ context.Context, fridgeID, userID string) error {
	return s.update(fridgeID, func(f *model.Fridge) {
		kept := f.Members[:0]
		for _, m := range f.Members {
			if m != userID {
				kept = append(kept, m)
			}
		}
		f.Members = kept
	})
}

func (s *FridgeStore) Rename(_ context.Context, fridgeID, name string) error {
	return s.update(fridgeID, func(f *model.Fridge) { f.Name = name })
}

func (s *FridgeStore) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.fridges[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.db.fridges, id)
	delete(s.db.fridgeSeq, id)
	return nil
}

func (s *FridgeStore) first(match func(model.Fridge) bool) (*model.Fridge, error) {
	fs := s.filter(match)
	if len(fs) == 0 {
		return nil, repository.ErrNotFound
	}
	return &fs[0], nil
}

func (s *FridgeStore) filter(match func(model.Fridge) bool) []model.Fridge {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	var out []model.Fridge
	for _, f := range s.db.fridges {
		if match(f) {
			out = append(out, *cloneFridge(f))
		}
	}
	s.db.sortFridges(out)
	return out
}

func (s *FridgeStore) update(id string, fn func(*model.Fridge)) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	f, ok := s.db.fridges[id]
	if !ok {
		return repository.ErrNotFound
	}
	c := cloneFridge(f)
	fn(c)
	c.UpdatedAt = s.db.now()
	s.db.fridges[id] = *c
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
