package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/iliyamo/fridge-share/internal/model"
	"github.com/iliyamo/fridge-share/internal/service"
)

type NotifierSuite struct {
	ServiceSuite
	x, y string
}

func TestNotifierSuite(t *testing.T) {
	suite.Run(t, new(NotifierSuite))
}

func (s *NotifierSuite) SetupTest() {
	s.ServiceSuite.SetupTest()
	s.x, _ = s.signUp("a@x.com", "Max")
	s.y, _ = s.signUp("b@x.com", "Yara")
	s.clock.Advance(time.Minute)
}

func (s *NotifierSuite) TestPendingInviteListedOnce() {
	created, err := s.svc.Invites.CreateFridgeInvite(s.ctx, service.InviteRequest{InviterID: s.x, InviteeEmail: "b@x.com", FridgeName: "Family"})
	s.Require().NoError(err)

	list, err := s.svc.Notifications.ListForUser(s.ctx, s.y, nil)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(model.NotificationFridgeInvite, list[0].Type)
	s.False(list[0].Virtual)
	s.Equal(created.Invite.Token, list[0].Metadata.InviteToken)
	s.Equal(`Invitation to "Family"`, list[0].Title)

	count, err := s.svc.Notifications.UnreadCount(s.ctx, s.y)
	s.Require().NoError(err)
	s.Equal(2, count)

	// with the stored row gone the invite still shows, synthesized
	s.Require().NoError(s.svc.Notifications.Delete(s.ctx, s.y, list[0].ID))
	list, err = s.svc.Notifications.ListForUser(s.ctx, s.y, nil)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	var virtual *model.Notification
	for i := range list {
		if list[i].Virtual {
			virtual = &list[i]
		}
	}
	s.Require().NotNil(virtual)
	s.Equal("invite_"+created.Invite.ID, virtual.ID)
	count, err = s.svc.Notifications.UnreadCount(s.ctx, s.y)
	s.Require().NoError(err)
	s.Equal(2, count)

	read := true
	list, err = s.svc.Notifications.ListForUser(s.ctx, s.y, &read)
	s.Require().NoError(err)
	s.Empty(list)

	_, err = s.svc.Invites.Accept(s.ctx, created.Invite.Token, s.y, "b@x.com", "Yara")
	s.Require().NoError(err)
	list, err = s.svc.Notifications.ListForUser(s.ctx, s.y, nil)
	s.Require().NoError(err)
	for _, n := range list {
		s.False(n.Virtual)
	}
}

func (s *NotifierSuite) TestAcceptMarksInviteNotificationRead() {
	created, err := s.svc.Invites.CreateFridgeInvite(s.ctx, service.InviteRequest{InviterID: s.x, InviteeEmail: "b@x.com", FridgeName: "Family"})
	s.Require().NoError(err)
	_, err = s.svc.Invites.Accept(s.ctx, created.Invite.Token, s.y, "b@x.com", "Yara")
	s.Require().NoError(err)

	invites := s.notificationsOf(s.y, model.NotificationFridgeInvite)
	s.Require().Len(invites, 1)
	s.True(invites[0].IsRead)
}

func (s *NotifierSuite) TestOwnership() {
	mine := s.notificationsOf(s.x, model.NotificationAccountCreated)
	s.Require().Len(mine, 1)

	_, err := s.svc.Notifications.MarkRead(s.ctx, s.y, mine[0].ID)
	s.requireKind(err, service.KindNotFound)
	s.requireKind(s.svc.Notifications.Delete(s.ctx, s.y, mine[0].ID), service.KindNotFound)

	n, err := s.svc.Notifications.MarkRead(s.ctx, s.x, mine[0].ID)
	s.Require().NoError(err)
	s.True(n.IsRead)

	count, err := s.svc.Notifications.UnreadCount(s.ctx, s.x)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *NotifierSuite) TestMarkAllRead() {
	_, err := s.svc.Notifications.Emit(s.ctx, model.Notification{UserID: s.x, Type: model.NotificationFridgeJoined, Title: "t", Message: "m"})
	s.Require().NoError(err)
	n, err := s.svc.Notifications.MarkAllRead(s.ctx, s.x)
	s.Require().NoError(err)
	s.EqualValues(2, n)
	count, err := s.svc.Notifications.UnreadCount(s.ctx, s.x)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *NotifierSuite) TestEmitDedup() {
	note := model.Notification{UserID: s.x, Type: model.NotificationFridgeJoined, Title: "t", Message: "m", DedupKey: "k"}
	first, err := s.svc.Notifications.Emit(s.ctx, note)
	s.Require().NoError(err)
	s.NotNil(first)
	second, err := s.svc.Notifications.Emit(s.ctx, note)
	s.Require().NoError(err)
	s.Nil(second)
}

func (s *NotifierSuite) TestExpiringCheckOncePerDay() {
	tomorrow := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	_, err := s.svc.Items.Create(s.ctx, s.x, service.ItemInput{Name: "Yoghurt", ExpiryDate: tomorrow})
	s.Require().NoError(err)
	s.Len(s.notificationsOf(s.x, model.NotificationItemExpiringTomorrow), 1)

	for i := 0; i < 2; i++ {
		created, err := s.svc.Notifications.CheckExpiringItems(s.ctx)
		s.Require().NoError(err)
		s.Zero(created)
	}
	s.Len(s.notificationsOf(s.x, model.NotificationItemExpiringTomorrow), 1)

	_, err = s.svc.Items.Create(s.ctx, s.x, service.ItemInput{Name: "Open cheese", ExpiryDate: tomorrow, IsOpened: true})
	s.Require().NoError(err)
	_, err = s.svc.Items.Create(s.ctx, s.x, service.ItemInput{Name: "Rice", ExpiryDate: tomorrow.AddDate(0, 1, 0)})
	s.Require().NoError(err)
	s.Len(s.notificationsOf(s.x, model.NotificationItemExpiringTomorrow), 1)
}

func (s *NotifierSuite) TestExpiringNotifiesEveryMember() {
	created, err := s.svc.Invites.CreateFridgeInvite(s.ctx, service.InviteRequest{InviterID: s.x, InviteeEmail: "b@x.com", FridgeName: "Family"})
	s.Require().NoError(err)
	res, err := s.svc.Invites.Accept(s.ctx, created.Invite.Token, s.y, "b@x.com", "Yara")
	s.Require().NoError(err)

	_, err = s.svc.Items.Create(s.ctx, s.y, service.ItemInput{
		FridgeID: res.FridgeID, Name: "Fish", ExpiryDate: s.clock.Now().AddDate(0, 0, 2),
	})
	s.Require().NoError(err)
	s.clock.Advance(24 * time.Hour)

	n, err := s.svc.Notifications.CheckExpiringItems(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, n)
	s.Len(s.notificationsOf(s.x, model.NotificationItemExpiringTomorrow), 1)
	s.Len(s.notificationsOf(s.y, model.NotificationItemExpiringTomorrow), 1)
}
