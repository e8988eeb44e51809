// Package storetest holds the behavioural contract every store
// implementation must satisfy. Backends run it from their own tests.
package storetest

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/iliyamo/fridge-share/internal/model"
	"github.com/iliyamo/fridge-share/internal/repository"
	"github.com/iliyamo/fridge-share/internal/service"
)

// Suite exercises a fresh service.Stores per test.
type Suite struct {
	suite.Suite
	// NewStores returns empty stores; it runs before each test.
	NewStores func() service.Stores

	ctx context.Context
	st  service.Stores
	now time.Time
}

func (s *Suite) SetupTest() {
	s.ctx = context.Background()
	s.st = s.NewStores()
	s.now = time.Now().UTC().Truncate(time.Second)
}

func id() string { return uuid.NewString() }

func (s *Suite) account(email string) *model.Account {
	a := &model.Account{ID: id(), Email: email, PasswordHash: "x", Name: "N"}
	s.Require().NoError(s.st.Accounts.Create(s.ctx, a))
	return a
}

func (s *Suite) fridge(members ...string) *model.Fridge {
	f := &model.Fridge{ID: id(), Name: "F", Members: members}
	s.Require().NoError(s.st.Fridges.Create(s.ctx, f))
	return f
}

func (s *Suite) TestAccountEmailUnique() {
	a := s.account("a@x.com")
	err := s.st.Accounts.Create(s.ctx, &model.Account{ID: id(), Email: "A@X.com", PasswordHash: "x"})
	s.ErrorIs(err, repository.ErrDuplicate)

	got, err := s.st.Accounts.GetByEmail(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.Equal(a.ID, got.ID)

	_, err = s.st.Accounts.GetByID(s.ctx, "missing")
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *Suite) TestAccountTokens() {
	a := s.account("a@x.com")
	exp := s.now.Add(time.Hour)
	s.Require().NoError(s.st.Accounts.SetVerificationToken(s.ctx, a.ID, "vhash", exp))
	got, err := s.st.Accounts.GetByVerificationToken(s.ctx, "vhash")
	s.Require().NoError(err)
	s.Equal(a.ID, got.ID)
	s.Require().NotNil(got.VerificationExpiresAt)
	s.WithinDuration(exp, *got.VerificationExpiresAt, time.Second)

	s.Require().NoError(s.st.Accounts.MarkVerified(s.ctx, a.ID))
	_, err = s.st.Accounts.GetByVerificationToken(s.ctx, "vhash")
	s.ErrorIs(err, repository.ErrNotFound)

	s.Require().NoError(s.st.Accounts.SetResetToken(s.ctx, a.ID, "rhash", exp))
	got, err = s.st.Accounts.GetByResetToken(s.ctx, "rhash")
	s.Require().NoError(err)
	s.True(got.EmailVerified)
	s.Require().NoError(s.st.Accounts.UpdatePassword(s.ctx, a.ID, "new"))
	_, err = s.st.Accounts.GetByResetToken(s.ctx, "rhash")
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *Suite) TestProfiles() {
	f := s.fridge("u1")
	p := &model.Profile{UserID: "u1", Email: "u1@x.com", Name: "U", FridgeID: f.ID}
	s.Require().NoError(s.st.Profiles.Create(s.ctx, p))
	s.ErrorIs(s.st.Profiles.Create(s.ctx, &model.Profile{UserID: "u1", FridgeID: f.ID}), repository.ErrDuplicate)

	got, err := s.st.Profiles.GetByEmail(s.ctx, "U1@x.com")
	s.Require().NoError(err)
	s.Equal("u1", got.UserID)

	g := s.fridge("u1")
	s.Require().NoError(s.st.Profiles.SetFridge(s.ctx, "u1", g.ID))
	s.Require().NoError(s.st.Profiles.UpdateContact(s.ctx, "u1", "new@x.com", "Una"))
	got, err = s.st.Profiles.GetByUserID(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal(g.ID, got.FridgeID)
	s.Equal("new@x.com", got.Email)
	s.Equal("Una", got.Name)

	all, err := s.st.Profiles.List(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *Suite) TestFridgeGuardsAndMembership() {
	personal := &model.Fridge{ID: id(), Name: "Mine", Members: []string{"u1"}, PersonalOwner: "u1"}
	s.Require().NoError(s.st.Fridges.Create(s.ctx, personal))
	err := s.st.Fridges.Create(s.ctx, &model.Fridge{ID: id(), Members: []string{"u1"}, PersonalOwner: "u1"})
	s.ErrorIs(err, repository.ErrDuplicate)

	shared := &model.Fridge{ID: id(), Name: "Ours", Members: []string{"u1", "u2"}, SourceInvite: "tok"}
	s.Require().NoError(s.st.Fridges.Create(s.ctx, shared))
	err = s.st.Fridges.Create(s.ctx, &model.Fridge{ID: id(), Members: []string{"u2"}, SourceInvite: "tok"})
	s.ErrorIs(err, repository.ErrDuplicate)

	got, err := s.st.Fridges.FindBySourceInvite(s.ctx, "tok")
	s.Require().NoError(err)
	s.Equal(shared.ID, got.ID)
	got, err = s.st.Fridges.FindByPersonalOwner(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal(personal.ID, got.ID)

	got, err = s.st.Fridges.FindPersonalCandidate(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal(personal.ID, got.ID)
	_, err = s.st.Fridges.FindPersonalCandidate(s.ctx, "u2")
	s.ErrorIs(err, repository.ErrNotFound)
	got, err = s.st.Fridges.FindAnyContaining(s.ctx, "u2")
	s.Require().NoError(err)
	s.Equal(shared.ID, got.ID)

	s.Require().NoError(s.st.Fridges.AddMember(s.ctx, shared.ID, "u3"))
	s.Require().NoError(s.st.Fridges.AddMember(s.ctx, shared.ID, "u3"))
	s.Require().NoError(s.st.Fridges.RemoveMember(s.ctx, shared.ID, "u1"))
	s.Require().NoError(s.st.Fridges.Rename(s.ctx, shared.ID, "Flat"))
	got, err = s.st.Fridges.GetByID(s.ctx, shared.ID)
	s.Require().NoError(err)
	s.ElementsMatch([]string{"u2", "u3"}, got.Members)
	s.Equal("Flat", got.Name)

	mine, err := s.st.Fridges.ListByMember(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal(personal.ID, mine[0].ID)

	s.Require().NoError(s.st.Fridges.Delete(s.ctx, shared.ID))
	_, err = s.st.Fridges.GetByID(s.ctx, shared.ID)
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *Suite) invite(email string, expires time.Time) *model.Invite {
	inv := &model.Invite{
		ID: id(), Token: strings.ReplaceAll(id(), "-", ""), InviterID: "u1", InviteeEmail: email,
		Type: model.InviteFridge, FridgeName: "Family", Status: model.InviteStatusPending, ExpiresAt: expires,
	}
	s.Require().NoError(s.st.Invites.Create(s.ctx, inv))
	return inv
}

func (s *Suite) TestInviteCompareAndSet() {
	inv := s.invite("b@x.com", s.now.Add(time.Hour))

	s.Require().NoError(s.st.Invites.AttachFridge(s.ctx, inv.Token, "", "f1"))
	s.ErrorIs(s.st.Invites.AttachFridge(s.ctx, inv.Token, "", "f2"), repository.ErrConflict)

	s.Require().NoError(s.st.Invites.Transition(s.ctx, inv.Token, model.InviteStatusPending, model.InviteStatusAccepted))
	err := s.st.Invites.Transition(s.ctx, inv.Token, model.InviteStatusPending, model.InviteStatusExpired)
	s.ErrorIs(err, repository.ErrConflict)

	got, err := s.st.Invites.GetByToken(s.ctx, inv.Token)
	s.Require().NoError(err)
	s.Equal(model.InviteStatusAccepted, got.Status)
	s.Equal("f1", got.FridgeID)

	_, err = s.st.Invites.GetByToken(s.ctx, "missing")
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *Suite) TestInviteQueries() {
	live := s.invite("b@x.com", s.now.Add(time.Hour))
	s.invite("b@x.com", s.now.Add(-time.Hour))
	s.invite("c@x.com", s.now.Add(time.Hour))

	pending, err := s.st.Invites.ListPendingFor(s.ctx, "B@x.com", s.now)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal(live.Token, pending[0].Token)

	n, err := s.st.Invites.DeleteExpiredBefore(s.ctx, s.now)
	s.Require().NoError(err)
	s.EqualValues(1, n)

	s.Require().NoError(s.st.Invites.AttachFridge(s.ctx, live.Token, "", "f9"))
	n, err = s.st.Invites.DeleteByFridge(s.ctx, "f9")
	s.Require().NoError(err)
	s.EqualValues(1, n)
}

func (s *Suite) item(fridgeID, userID string, expiry time.Time, opened bool) *model.FridgeItem {
	it := &model.FridgeItem{ID: id(), FridgeID: fridgeID, UserID: userID, Name: "I", ExpiryDate: expiry, IsOpened: opened}
	s.Require().NoError(s.st.Items.Create(s.ctx, it))
	return it
}

func (s *Suite) TestItems() {
	f1, f2 := s.fridge("u1"), s.fridge("u1", "u2")
	day := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	a := s.item(f1.ID, "u1", day, false)
	s.item(f1.ID, "u1", day, true)
	s.item(f2.ID, "u2", day.AddDate(0, 0, 3), false)

	n, err := s.st.Items.CountByUser(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal(2, n)

	expiring, err := s.st.Items.ListUnopenedExpiring(s.ctx, day, day.AddDate(0, 0, 1))
	s.Require().NoError(err)
	s.Require().Len(expiring, 1)
	s.Equal(a.ID, expiring[0].ID)

	moved, err := s.st.Items.MoveFridge(s.ctx, f1.ID, f2.ID)
	s.Require().NoError(err)
	s.EqualValues(2, moved)
	moved, err = s.st.Items.RepointUser(s.ctx, "u1", f1.ID)
	s.Require().NoError(err)
	s.EqualValues(2, moved)

	a.Name, a.CategoryID = "Renamed", ""
	s.Require().NoError(s.st.Items.Update(s.ctx, a))
	got, err := s.st.Items.GetByID(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal("Renamed", got.Name)
	s.Equal(f1.ID, got.FridgeID)

	s.Require().NoError(s.st.Items.Delete(s.ctx, a.ID))
	s.ErrorIs(s.st.Items.Delete(s.ctx, a.ID), repository.ErrNotFound)
	n64, err := s.st.Items.DeleteByFridge(s.ctx, f1.ID)
	s.Require().NoError(err)
	s.EqualValues(1, n64)
}

func (s *Suite) TestCategories() {
	f := s.fridge("u1")
	c := &model.Category{ID: id(), FridgeID: f.ID, Name: "Dairy", Color: model.DefaultCategoryColor}
	s.Require().NoError(s.st.Categories.Create(s.ctx, c))
	err := s.st.Categories.Create(s.ctx, &model.Category{ID: id(), FridgeID: f.ID, Name: "dairy", Color: "#000000"})
	s.ErrorIs(err, repository.ErrDuplicate)

	other := s.fridge("u2")
	s.Require().NoError(s.st.Categories.Create(s.ctx, &model.Category{ID: id(), FridgeID: other.ID, Name: "Dairy", Color: "#000000"}))

	it := s.item(f.ID, "u1", s.now, false)
	it.CategoryID = c.ID
	s.Require().NoError(s.st.Items.Update(s.ctx, it))
	n, err := s.st.Items.ClearCategory(s.ctx, c.ID)
	s.Require().NoError(err)
	s.EqualValues(1, n)

	s.Require().NoError(s.st.Categories.Delete(s.ctx, c.ID))
	list, err := s.st.Categories.ListByFridge(s.ctx, f.ID)
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *Suite) TestNotificationDedup() {
	n := &model.Notification{
		ID: id(), UserID: "u1", Type: model.NotificationFridgeInvite, Title: "t", Message: "m",
		Metadata: model.NotificationMetadata{InviteToken: "tok", InviteID: "i1"},
		DedupKey: "fridge_invite:tok", CreatedAt: s.now,
	}
	s.Require().NoError(s.st.Notifications.Create(s.ctx, n))
	dup := *n
	dup.ID = id()
	s.ErrorIs(s.st.Notifications.Create(s.ctx, &dup), repository.ErrDuplicate)

	plain := &model.Notification{ID: id(), UserID: "u1", Type: model.NotificationFridgeJoined, Title: "t", Message: "m", CreatedAt: s.now.Add(time.Second)}
	s.Require().NoError(s.st.Notifications.Create(s.ctx, plain))

	got, err := s.st.Notifications.FindByInviteToken(s.ctx, "u1", "tok")
	s.Require().NoError(err)
	s.Equal(n.ID, got.ID)
	s.Equal("i1", got.Metadata.InviteID)

	list, err := s.st.Notifications.ListByUser(s.ctx, "u1", nil, 10)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(plain.ID, list[0].ID)

	s.Require().NoError(s.st.Notifications.MarkRead(s.ctx, n.ID))
	unread, err := s.st.Notifications.CountUnread(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal(1, unread)
	read := true
	list, err = s.st.Notifications.ListByUser(s.ctx, "u1", &read, 10)
	s.Require().NoError(err)
	s.Len(list, 1)

	count, err := s.st.Notifications.MarkAllRead(s.ctx, "u1")
	s.Require().NoError(err)
	s.EqualValues(1, count)
	s.Require().NoError(s.st.Notifications.Delete(s.ctx, plain.ID))
	_, err = s.st.Notifications.GetByID(s.ctx, plain.ID)
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *Suite) TestRefreshTokens() {
	exp := s.now.Add(time.Hour)
	s.Require().NoError(s.st.Tokens.StoreRefresh(s.ctx, "u1", model.ProviderPassword, "h1", exp))
	s.Require().NoError(s.st.Tokens.StoreRefresh(s.ctx, "u1", model.ProviderPassword, "h2", exp))

	rt, err := s.st.Tokens.ValidateRefresh(s.ctx, "h1", s.now)
	s.Require().NoError(err)
	s.Equal("u1", rt.UserID)
	_, err = s.st.Tokens.ValidateRefresh(s.ctx, "h1", exp.Add(time.Minute))
	s.ErrorIs(err, repository.ErrNotFound)

	s.Require().NoError(s.st.Tokens.RevokeByHash(s.ctx, "h1"))
	_, err = s.st.Tokens.ValidateRefresh(s.ctx, "h1", s.now)
	s.ErrorIs(err, repository.ErrNotFound)

	s.Require().NoError(s.st.Tokens.RevokeAllForUser(s.ctx, "u1"))
	_, err = s.st.Tokens.ValidateRefresh(s.ctx, "h2", s.now)
	s.ErrorIs(err, repository.ErrNotFound)
}
