package service

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/fridge-share/internal/utils"
)

// Sessions issues and rotates access/refresh token pairs.
type Sessions struct {
	env
	st Stores
}

// Token is a bearer token and its expiry.
type Token struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// Pair is an access token with its refresh token.
type Pair struct {
	UserID   string `json:"user_id"`
	Provider string `json:"provider"`
	Access   Token  `json:"access"`
	Refresh  Token  `json:"refresh"`
}

var errInvalidRefresh = newErr(KindUnauthenticated, "invalid refresh")

// Issue creates a new session for userID.
func (s *Sessions) Issue(ctx context.Context, userID, provider string) (*Pair, error) {
	now := s.now()
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, userID, provider, s.cfg.AccessTTLMin, now)
	if err != nil {
		return nil, internal("issue access", err)
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays, now)
	if err != nil {
		return nil, internal("issue refresh", err)
	}
	if err := s.st.Tokens.StoreRefresh(ctx, userID, provider, utils.HashToken(refresh.Raw), refresh.Exp); err != nil {
		return nil, internal("save refresh", err)
	}
	return &Pair{
		UserID:   userID,
		Provider: provider,
		Access:   Token{Token: access.Token, Expires: access.Exp},
		Refresh:  Token{Token: refresh.Raw, Expires: refresh.Exp},
	}, nil
}

// Refresh validates raw, revokes it and issues a new pair.
func (s *Sessions) Refresh(ctx context.Context, raw string) (*Pair, error) {
	hash := utils.HashToken(strings.TrimSpace(raw))
	rt, err := s.st.Tokens.ValidateRefresh(ctx, hash, s.now())
	if isNotFound(err) {
		return nil, errInvalidRefresh
	}
	if err != nil {
		return nil, internal("validate refresh", err)
	}
	if err := s.st.Tokens.RevokeByHash(ctx, hash); err != nil {
		return nil, internal("revoke refresh", err)
	}
	return s.Issue(ctx, rt.UserID, rt.Provider)
}

// RefreshAccess returns a new access token without rotating raw.
func (s *Sessions) RefreshAccess(ctx context.Context, raw string) (*Token, error) {
	rt, err := s.st.Tokens.ValidateRefresh(ctx, utils.HashToken(strings.TrimSpace(raw)), s.now())
	if isNotFound(err) {
		return nil, errInvalidRefresh
	}
	if err != nil {
		return nil, internal("validate refresh", err)
	}
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, rt.UserID, rt.Provider, s.cfg.AccessTTLMin, s.now())
	if err != nil {
		return nil, internal("issue access", err)
	}
	return &Token{Token: access.Token, Expires: access.Exp}, nil
}

// Revoke ends one session identified by its refresh token.
func (s *Sessions) Revoke(ctx context.Context, raw string) error {
	hash := utils.HashToken(strings.TrimSpace(raw))
	if _, err := s.st.Tokens.ValidateRefresh(ctx, hash, s.now()); err != nil {
		if isNotFound(err) {
			return errInvalidRefresh
		}
		return internal("validate refresh", err)
	}
	if err := s.st.Tokens.RevokeByHash(ctx, hash); err != nil {
		return internal("revoke refresh", err)
	}
	return nil
}

// RevokeAll ends every session of userID.
func (s *Sessions) RevokeAll(ctx context.Context, userID string) error {
	if err := s.st.Tokens.RevokeAllForUser(ctx, userID); err != nil {
		return internal("revoke sessions", err)
	}
	return nil
}
