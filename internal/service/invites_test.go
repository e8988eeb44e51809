package service_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/iliyamo/fridge-share/internal/model"
	"github.com/iliyamo/fridge-share/internal/service"
)

type InvitesSuite struct {
	ServiceSuite
	x, xFridge string
	y, yFridge string
}

func TestInvitesSuite(t *testing.T) {
	suite.Run(t, new(InvitesSuite))
}

func (s *InvitesSuite) SetupTest() {
	s.ServiceSuite.SetupTest()
	s.x, s.xFridge = s.signUp("a@x.com", "Max")
	s.y, s.yFridge = s.signUp("b@x.com", "Yara")
}

func (s *InvitesSuite) invite(fridgeName string) *model.Invite {
	res, err := s.svc.Invites.CreateFridgeInvite(s.ctx, service.InviteRequest{
		InviterID: s.x, InviteeEmail: "B@x.com", FridgeName: fridgeName,
	})
	s.Require().NoError(err)
	return res.Invite
}

func (s *InvitesSuite) TestAcceptCreatesSharedFridge() {
	inv := s.invite("Family")
	s.Equal(model.InviteStatusPending, inv.Status)
	s.Empty(inv.FridgeID)
	s.Equal("b@x.com", inv.InviteeEmail)
	s.Equal(s.clock.Now().Add(72*time.Hour), inv.ExpiresAt)

	res, err := s.svc.Invites.Accept(s.ctx, inv.Token, s.y, "b@x.com", "Yara")
	s.Require().NoError(err)
	s.False(res.AlreadyAccepted)

	shared := s.fridge(res.FridgeID)
	s.Equal("Family", shared.Name)
	s.ElementsMatch([]string{s.x, s.y}, shared.Members)

	stored, err := s.db.Invites().GetByToken(s.ctx, inv.Token)
	s.Require().NoError(err)
	s.Equal(model.InviteStatusAccepted, stored.Status)
	s.Equal(res.FridgeID, stored.FridgeID)

	again, err := s.svc.Invites.Accept(s.ctx, inv.Token, s.y, "b@x.com", "Yara")
	s.Require().NoError(err)
	s.True(again.AlreadyAccepted)
	s.Equal(res.FridgeID, again.FridgeID)
	s.Equal(3, s.fridgeCount())

	s.Len(s.notificationsOf(s.x, model.NotificationFridgeJoined), 1)
	s.Len(s.notificationsOf(s.y, model.NotificationFridgeJoined), 1)
}

func (s *InvitesSuite) TestPersonalFridgeSurvivesSharing() {
	item, err := s.svc.Items.Create(s.ctx, s.y, service.ItemInput{Name: "Milk", ExpiryDate: s.clock.Now().AddDate(0, 0, 7)})
	s.Require().NoError(err)
	s.Equal(s.yFridge, item.FridgeID)

	res, err := s.svc.Invites.Accept(s.ctx, s.invite("Family").Token, s.y, "b@x.com", "Yara")
	s.Require().NoError(err)

	personal := s.fridge(s.yFridge)
	s.Equal([]string{s.y}, personal.Members)
	s.Equal(s.yFridge, s.profile(s.y).FridgeID)
	items, err := s.svc.Items.List(s.ctx, s.y, s.yFridge)
	s.Require().NoError(err)
	s.Len(items, 1)

	fridgeID, err := s.svc.Resolver.Ensure(s.ctx, s.y, "b@x.com", "Yara")
	s.Require().NoError(err)
	s.Equal(s.yFridge, fridgeID)

	views, err := s.svc.Resolver.ListFridges(s.ctx, s.y)
	s.Require().NoError(err)
	s.Require().Len(views, 2)
	s.Equal(s.yFridge, views[0].ID)
	s.True(views[0].IsPersonal)
	s.Equal(res.FridgeID, views[1].ID)
	s.False(views[1].IsPersonal)
}

func (s *InvitesSuite) TestConcurrentAcceptConverges() {
	inv := s.invite("Family")

	const n = 8
	ids := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := s.svc.Invites.Accept(s.ctx, inv.Token, s.y, "b@x.com", "Yara")
			errs[i] = err
			if err == nil {
				ids[i] = res.FridgeID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		s.Require().NoError(errs[i])
		s.Equal(ids[0], ids[i])
	}
	s.Equal(3, s.fridgeCount())
	s.ElementsMatch([]string{s.x, s.y}, s.fridge(ids[0]).Members)
	s.Len(s.notificationsOf(s.y, model.NotificationFridgeJoined), 1)
}

func (s *InvitesSuite) TestExpiredInvite() {
	inv := s.invite("Family")
	s.clock.Advance(73 * time.Hour)

	_, err := s.svc.Invites.Accept(s.ctx, inv.Token, s.y, "b@x.com", "Yara")
	s.ErrorIs(err, service.ErrInviteExpired)
	s.requireKind(err, service.KindExpired)

	stored, err := s.db.Invites().GetByToken(s.ctx, inv.Token)
	s.Require().NoError(err)
	s.Equal(model.InviteStatusExpired, stored.Status)
	s.Equal(2, s.fridgeCount())

	_, err = s.svc.Invites.Accept(s.ctx, inv.Token, s.y, "b@x.com", "Yara")
	s.ErrorIs(err, service.ErrInviteExpired)
	_, err = s.svc.Invites.Preview(s.ctx, inv.Token)
	s.ErrorIs(err, service.ErrInviteExpired)
}

func (s *InvitesSuite) TestAcceptRejects() {
	inv := s.invite("Family")

	_, err := s.svc.Invites.Accept(s.ctx, "no-such-token", s.y, "", "")
	s.ErrorIs(err, service.ErrInviteNotFound)

	_, err = s.svc.Invites.Accept(s.ctx, inv.Token, s.x, "a@x.com", "Max")
	s.requireKind(err, service.KindValidation)

	_, err = s.svc.Invites.Accept(s.ctx, inv.Token, "", "", "")
	s.requireKind(err, service.KindValidation)
}

func (s *InvitesSuite) TestCreateFridgeInviteRejects() {
	s.Run("no account for invitee", func() {
		_, err := s.svc.Invites.CreateFridgeInvite(s.ctx, service.InviteRequest{
			InviterID: s.x, InviteeEmail: "nobody@x.com", FridgeName: "Family",
		})
		s.requireKind(err, service.KindForbidden)
	})
	s.Run("self invite", func() {
		_, err := s.svc.Invites.CreateFridgeInvite(s.ctx, service.InviteRequest{
			InviterID: s.x, InviteeEmail: "a@x.com", FridgeName: "Family",
		})
		s.requireKind(err, service.KindValidation)
	})
	s.Run("missing fridge name", func() {
		_, err := s.svc.Invites.CreateFridgeInvite(s.ctx, service.InviteRequest{
			InviterID: s.x, InviteeEmail: "b@x.com",
		})
		s.ErrorIs(err, service.ErrFridgeNameMissing)
	})
	s.Run("personal fridge", func() {
		_, err := s.svc.Invites.CreateFridgeInvite(s.ctx, service.InviteRequest{
			InviterID: s.x, InviteeEmail: "b@x.com", FridgeID: s.xFridge,
		})
		s.requireKind(err, service.KindValidation)
	})
	s.Run("unknown inviter", func() {
		_, err := s.svc.Invites.CreateFridgeInvite(s.ctx, service.InviteRequest{
			InviterID: "ghost", InviteeEmail: "b@x.com", FridgeName: "Family",
		})
		s.requireKind(err, service.KindNotFound)
	})
	s.Equal(0, len(s.notificationsOf(s.y, model.NotificationFridgeInvite)))
}

func (s *InvitesSuite) TestInviteIntoExistingSharedFridge() {
	first, err := s.svc.Invites.Accept(s.ctx, s.invite("Family").Token, s.y, "b@x.com", "Yara")
	s.Require().NoError(err)
	zID, _ := s.signUp("c@x.com", "Zoe")

	res, err := s.svc.Invites.CreateFridgeInvite(s.ctx, service.InviteRequest{
		InviterID: s.y, InviteeEmail: "c@x.com", FridgeID: first.FridgeID,
	})
	s.Require().NoError(err)
	s.Equal("Family", res.Invite.FridgeName)
	s.Equal(first.FridgeID, res.Invite.FridgeID)

	joined, err := s.svc.Invites.Accept(s.ctx, res.Invite.Token, zID, "c@x.com", "Zoe")
	s.Require().NoError(err)
	s.Equal(first.FridgeID, joined.FridgeID)
	s.ElementsMatch([]string{s.x, s.y, zID}, s.fridge(first.FridgeID).Members)
	s.Equal(4, s.fridgeCount())
}

func (s *InvitesSuite) TestMailFailureReturnsLink() {
	s.sender.fail = true
	res, err := s.svc.Invites.CreateFridgeInvite(s.ctx, service.InviteRequest{
		InviterID: s.x, InviteeEmail: "b@x.com", FridgeName: "Family",
	})
	s.Require().NoError(err)
	s.False(res.MailSent)
	s.Equal("http://app.test/Fridge-app/invite/accept?token="+res.Invite.Token, res.AcceptLink)
}

func (s *InvitesSuite) TestPreview() {
	inv := s.invite("Family")
	p, err := s.svc.Invites.Preview(s.ctx, inv.Token)
	s.Require().NoError(err)
	s.Equal("Max", p.InviterName)
	s.Equal("Family", p.FridgeName)
	s.Equal(model.InviteStatusPending, p.Status)
	s.True(p.HasAccount)

	_, err = s.svc.Invites.Preview(s.ctx, "missing")
	s.ErrorIs(err, service.ErrInviteNotFound)
}

func (s *InvitesSuite) TestAccountInviteMigratesInviter() {
	item, err := s.svc.Items.Create(s.ctx, s.x, service.ItemInput{Name: "Eggs", ExpiryDate: s.clock.Now().AddDate(0, 0, 5)})
	s.Require().NoError(err)

	_, err = s.svc.Invites.CreateAccountInvite(s.ctx, service.InviteRequest{
		InviterID: s.x, InviteeEmail: "b@x.com", FridgeName: "Home",
	})
	s.requireKind(err, service.KindConflict)

	created, err := s.svc.Invites.CreateAccountInvite(s.ctx, service.InviteRequest{
		InviterID: s.x, InviteeEmail: "new@x.com", FridgeName: "Home",
	})
	s.Require().NoError(err)
	s.Equal(model.InviteAccount, created.Invite.Type)
	s.Empty(s.notificationsOf(s.x, model.NotificationFridgeInvite))

	_, err = s.svc.Invites.Accept(s.ctx, created.Invite.Token, s.y, "b@x.com", "Yara")
	s.requireKind(err, service.KindValidation)

	res, err := s.svc.Invites.AcceptAccount(s.ctx, created.Invite.Token, "secret9", "Nia")
	s.Require().NoError(err)
	s.NotEmpty(res.UserID)

	acc, err := s.svc.Accounts.Authenticate(s.ctx, "new@x.com", "secret9")
	s.Require().NoError(err)
	s.Equal(res.UserID, acc.ID)

	shared := s.fridge(res.FridgeID)
	s.Equal("Home", shared.Name)
	s.ElementsMatch([]string{s.x, res.UserID}, shared.Members)
	s.Equal(res.FridgeID, s.profile(s.x).FridgeID)

	moved, err := s.db.Items().GetByID(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Equal(res.FridgeID, moved.FridgeID)

	old := s.fridge(s.xFridge)
	s.Equal([]string{s.x}, old.Members)

	invitee := s.profile(res.UserID)
	s.NotEqual(res.FridgeID, invitee.FridgeID)
	s.Equal("Nia's Fridge", s.fridge(invitee.FridgeID).Name)

	again, err := s.svc.Invites.AcceptAccount(s.ctx, created.Invite.Token, "secret9", "Nia")
	s.Require().NoError(err)
	s.True(again.AlreadyAccepted)
	s.Equal(res.UserID, again.UserID)

	_, err = s.svc.Invites.AcceptAccount(s.ctx, created.Invite.Token, "wrong-pw", "Nia")
	s.requireKind(err, service.KindConflict)
}

func (s *InvitesSuite) TestMigratedInviterKeepsPersonalFridge() {
	created, err := s.svc.Invites.CreateAccountInvite(s.ctx, service.InviteRequest{
		InviterID: s.x, InviteeEmail: "new@x.com", FridgeName: "Home",
	})
	s.Require().NoError(err)
	res, err := s.svc.Invites.AcceptAccount(s.ctx, created.Invite.Token, "secret9", "Nia")
	s.Require().NoError(err)

	views, err := s.svc.Resolver.ListFridges(s.ctx, s.x)
	s.Require().NoError(err)
	s.Require().Len(views, 2)
	s.Equal(s.xFridge, views[0].ID)
	s.True(views[0].IsPersonal)
	s.Equal(res.FridgeID, views[1].ID)
	s.False(views[1].IsPersonal)

	rep, err := s.svc.Admin.PurgeSharedFridges(s.ctx, false)
	s.Require().NoError(err)
	s.Zero(rep.Fridges)
	s.Equal([]string{s.x}, s.fridge(s.xFridge).Members)

	_, err = s.svc.Invites.CreateFridgeInvite(s.ctx, service.InviteRequest{
		InviterID: s.x, InviteeEmail: "b@x.com", FridgeID: s.xFridge,
	})
	s.requireKind(err, service.KindValidation)
}

func (s *InvitesSuite) TestAccountInviteIntoExistingFridgeLeavesInviterItems() {
	joined, err := s.svc.Invites.Accept(s.ctx, s.invite("Family").Token, s.y, "b@x.com", "Yara")
	s.Require().NoError(err)
	private, err := s.svc.Items.Create(s.ctx, s.y, service.ItemInput{Name: "Private", ExpiryDate: s.clock.Now().AddDate(0, 0, 4)})
	s.Require().NoError(err)
	s.Equal(s.yFridge, private.FridgeID)

	created, err := s.svc.Invites.CreateAccountInvite(s.ctx, service.InviteRequest{
		InviterID: s.y, InviteeEmail: "new@x.com", FridgeID: joined.FridgeID,
	})
	s.Require().NoError(err)
	res, err := s.svc.Invites.AcceptAccount(s.ctx, created.Invite.Token, "secret9", "Nia")
	s.Require().NoError(err)
	s.Equal(joined.FridgeID, res.FridgeID)
	s.ElementsMatch([]string{s.x, s.y, res.UserID}, s.fridge(joined.FridgeID).Members)

	kept, err := s.db.Items().GetByID(s.ctx, private.ID)
	s.Require().NoError(err)
	s.Equal(s.yFridge, kept.FridgeID)
	s.Equal(s.yFridge, s.profile(s.y).FridgeID)
	s.Equal(s.xFridge, s.profile(s.x).FridgeID)
}
