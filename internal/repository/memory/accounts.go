package memory

import (
	"context"
	"time"

	"github.com/iliyamo/fridge-share/internal/model"
	"github.com/iliyamo/fridge-share/internal/repository"
)

// AccountStore is the in-memory account store.
type AccountStore struct{ db *DB }

func (s *AccountStore) Create(_ context.Context, a *model.Account) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.accounts[a.ID]; ok {
		return repository.ErrDuplicate
	}
	for _, existing := range s.db.accounts {
		if sameEmail(existing.Email, a.Email) {
			return repository.ErrDuplicate
		}
	}
	now := s.db.now()
	a.CreatedAt, a.UpdatedAt = now, now
	s.db.accounts[a.ID] = *a
	return nil
}

func (s *AccountStore) GetByID(_ context.Context, id string) (*model.Account, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	a, ok := s.db.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (s *AccountStore) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	return s.find(func(a model.Account) bool { return sameEmail(a.Email, email) })
}

func (s *AccountStore) GetByVerificationToken(_ context.Context, tokenHash string) (*model.Account, error) {
	return s.find(func(a model.Account) bool { return tokenHash != "" && a.VerificationToken == tokenHash })
}

func (s *AccountStore) GetByResetToken(_ context.Context, tokenHash string) (*model.Account, error) {
	return s.find(func(a model.Account) bool { return tokenHash != "" && a.ResetToken == tokenHash })
}

func (s *AccountStore) SetVerificationToken(_ context.Context, id, tokenHash string, expiresAt time.Time) error {
	return s.update(id, func(a *model.Account) {
		a.VerificationToken = tokenHash
		a.VerificationExpiresAt = &expiresAt
	})
}

func (s *AccountStore) MarkVerified(_ context.Context, id string) error {
	return s.update(id, func(a *model.Account) {
		a.EmailVerified = true
		a.VerificationToken = ""
		a.VerificationExpiresAt = nil
	})
}

func (s *AccountStore) SetResetToken(_ context.Context, id, tokenHash string, expiresAt time.Time) error {
	return s.update(id, func(a *model.Account) {
		a.ResetToken = tokenHash
		a.ResetExpiresAt = &expiresAt
	})
}

func (s *AccountStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	return s.update(id, func(a *model.Account) {
		a.PasswordHash = passwordHash
		a.ResetToken = ""
		a.ResetExpiresAt = nil
	})
}

func (s *AccountStore) find(match func(model.Account) bool) (*model.Account, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	for _, a := range s.db.accounts {
		if match(a) {
			a := a
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *AccountStore) update(id string, fn func(*model.Account)) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	a, ok := s.db.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&a)
	a.UpdatedAt = s.db.now()
	s.db.accounts[id] = a
	return nil
}
