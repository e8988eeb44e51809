package memory

import (
	"context"
	"sort"
	"time"

	"github.com/iliyamo/fridge-share/internal/model"
	"github.com/iliyamo/fridge-share/internal/repository"
)

// InviteStore is the in-memory invite store, keyed by token.
type InviteStore struct{ db *DB }

func (s *InviteStore) Create(_ context.Context, inv *model.Invite) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.invites[inv.Token]; ok {
		return repository.ErrDuplicate
	}
	now := s.db.now()
	inv.CreatedAt, inv.UpdatedAt = now, now
	s.db.invites[inv.Token] = *inv
	return nil
}

func (s *InviteStore) GetByToken(_ context.Context, token string) (*model.Invite, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	inv, ok := s.db.invites[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &inv, nil
}

func (s *InviteStore) AttachFridge(_ context.Context, token, expected, fridgeID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	inv, ok := s.db.invites[token]
	if !ok {
		return repository.ErrNotFound
	}
	if inv.FridgeID != expected {
		return repository.ErrConflict
	}
	inv.FridgeID = fridgeID
	inv.UpdatedAt = s.db.now()
	s.db.invites[token] = inv
	return nil
}

func (s *InviteStore) Transition(_ context.Context, token string, from, to model.InviteStatus) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	inv, ok := s.db.invites[token]
	if !ok {
		return repository.ErrNotFound
	}
	if inv.Status != from {
		return repository.ErrConflict
	}
	inv.Status = to
	inv.UpdatedAt = s.db.now()
	s.db.invites[token] = inv
	return nil
}

func (s *InviteStore) ListPendingFor(_ context.Context, email string, now time.Time) ([]model.Invite, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	var out []model.Invite
	for _, inv := range s.db.invites {
		if inv.Type == model.InviteFridge && inv.Status == model.InviteStatusPending &&
			sameEmail(inv.InviteeEmail, email) && inv.ExpiresAt.After(now) {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InviteStore) DeleteExpiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for token, inv := range s.db.invites {
		if inv.ExpiresAt.Before(cutoff) {
			delete(s.db.invites, token)
			n++
		}
	}
	return n, nil
}

func (s *InviteStore) DeleteByFridge(_ context.Context, fridgeID string) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for token, inv := range s.db.invites {
		if inv.FridgeID == fridgeID {
			delete(s.db.invites, token)
			n++
		}
	}
	return n, nil
}
