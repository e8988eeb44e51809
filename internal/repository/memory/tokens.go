package memory

import (
	"context"
	"time"

	"github.com/iliyamo/fridge-share/internal/model"
	"github.com/iliyamo/fridge-share/internal/repository"
)

// TokenStore is the in-memory refresh token store, keyed by hash.
type TokenStore struct{ db *DB }

func (s *TokenStore) StoreRefresh(_ context.Context, userID, provider, tokenHash string, exp time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.tokens[tokenHash]; ok {
		return repository.ErrDuplicate
	}
	s.db.nextTokenID++
	s.db.tokens[tokenHash] = model.RefreshToken{
		ID:        s.db.nextTokenID,
		UserID:    userID,
		Provider:  provider,
		TokenHash: tokenHash,
		ExpiresAt: exp,
		CreatedAt: s.db.now(),
	}
	return nil
}

func (s *TokenStore) ValidateRefresh(_ context.Context, tokenHash string, now time.Time) (*model.RefreshToken, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	t, ok := s.db.tokens[tokenHash]
	if !ok || t.RevokedAt != nil || now.After(t.ExpiresAt) {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (s *TokenStore) RevokeByHash(_ context.Context, tokenHash string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if t, ok := s.db.tokens[tokenHash]; ok && t.RevokedAt == nil {
		now := s.db.now()
		t.RevokedAt = &now
		s.db.tokens[tokenHash] = t
	}
	return nil
}

func (s *TokenStore) RevokeAllForUser(_ context.Context, userID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	now := s.db.now()
	for h, t := range s.db.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
			s.db.tokens[h] = t
		}
	}
	return nil
}
