package service_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/iliyamo/fridge-share/internal/model"
	"github.com/iliyamo/fridge-share/internal/service"
)

type AccountsSuite struct{ ServiceSuite }

func TestAccountsSuite(t *testing.T) {
	suite.Run(t, new(AccountsSuite))
}

func (s *AccountsSuite) TestSignUpCreatesPersonalFridge() {
	res, err := s.svc.Accounts.SignUp(s.ctx, " A@X.com ", "secret1", "Max")
	s.Require().NoError(err)

	s.Equal("a@x.com", res.Account.Email)
	s.False(res.Account.EmailVerified)
	s.True(res.MailSent)
	s.Empty(res.VerificationLink)

	f := s.fridge(res.FridgeID)
	s.Equal("Max's Fridge", f.Name)
	s.Equal([]string{res.Account.ID}, f.Members)
	s.Equal(res.FridgeID, s.profile(res.Account.ID).FridgeID)
	s.Len(s.notificationsOf(res.Account.ID, model.NotificationAccountCreated), 1)
}

func (s *AccountsSuite) TestSignUpNameEndingInS() {
	_, fridgeID := s.signUp("chris@x.com", "Chris")
	s.Equal("Chris' Fridge", s.fridge(fridgeID).Name)
}

func (s *AccountsSuite) TestSignUpRejects() {
	s.signUp("a@x.com", "Max")

	s.Run("duplicate email", func() {
		_, err := s.svc.Accounts.SignUp(s.ctx, "A@x.com", "secret1", "Other")
		s.ErrorIs(err, service.ErrDuplicateEmail)
	})
	s.Run("short password", func() {
		_, err := s.svc.Accounts.SignUp(s.ctx, "b@x.com", "123", "B")
		s.requireKind(err, service.KindValidation)
	})
	s.Run("google email", func() {
		_, err := s.svc.Accounts.GoogleSignUp(s.ctx, "g-1", "g@x.com", "Gina")
		s.Require().NoError(err)
		_, err = s.svc.Accounts.SignUp(s.ctx, "g@x.com", "secret1", "Gina")
		s.requireKind(err, service.KindConflict)
	})
}

func (s *AccountsSuite) TestVerifyThenAuthenticate() {
	s.signUp("a@x.com", "Max")

	_, err := s.svc.Accounts.Authenticate(s.ctx, "a@x.com", "secret1")
	s.ErrorIs(err, service.ErrEmailNotVerified)

	token := tokenFromLink(s.sender.last().Link)
	s.Require().NotEmpty(token)
	acc, err := s.svc.Accounts.VerifyEmail(s.ctx, token)
	s.Require().NoError(err)
	s.True(acc.EmailVerified)

	_, err = s.svc.Accounts.Authenticate(s.ctx, "a@x.com", "wrong-pass")
	s.ErrorIs(err, service.ErrInvalidCredentials)
	acc, err = s.svc.Accounts.Authenticate(s.ctx, "A@X.COM", "secret1")
	s.Require().NoError(err)
	s.Equal("a@x.com", acc.Email)

	_, err = s.svc.Accounts.VerifyEmail(s.ctx, token)
	s.Error(err)
}

func (s *AccountsSuite) TestVerificationLinkReturnedWhenMailFails() {
	s.sender.fail = true
	res, err := s.svc.Accounts.SignUp(s.ctx, "a@x.com", "secret1", "Max")
	s.Require().NoError(err)
	s.False(res.MailSent)
	s.Contains(res.VerificationLink, "/Fridge-app/verify-email?token=")
}

func (s *AccountsSuite) TestCheckEmail() {
	s.signUp("a@x.com", "Max")
	_, err := s.svc.Accounts.GoogleSignUp(s.ctx, "g-1", "g@x.com", "Gina")
	s.Require().NoError(err)

	st, err := s.svc.Accounts.CheckEmail(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.Equal(service.EmailStatus{Exists: true}, st)

	st, err = s.svc.Accounts.CheckEmail(s.ctx, "g@x.com")
	s.Require().NoError(err)
	s.True(st.Exists)
	s.True(st.HasGoogleAccount)

	st, err = s.svc.Accounts.CheckEmail(s.ctx, "nobody@x.com")
	s.Require().NoError(err)
	s.False(st.Exists)
}

func (s *AccountsSuite) TestGoogleSignUpAndSignIn() {
	fridgeID, err := s.svc.Accounts.GoogleSignUp(s.ctx, "g-1", "g@x.com", "Gus")
	s.Require().NoError(err)
	s.Equal("Gus' Fridge", s.fridge(fridgeID).Name)

	_, err = s.svc.Accounts.GoogleSignUp(s.ctx, "g-1", "g@x.com", "Gus")
	s.requireKind(err, service.KindConflict)

	p, err := s.svc.Accounts.GoogleSignIn(s.ctx, "g-1")
	s.Require().NoError(err)
	s.Equal(fridgeID, p.FridgeID)

	_, err = s.svc.Accounts.GoogleSignIn(s.ctx, "g-unknown")
	s.requireKind(err, service.KindForbidden)
}

func (s *AccountsSuite) TestPasswordReset() {
	userID, _ := s.signUp("a@x.com", "Max")
	pair, err := s.svc.Sessions.Issue(s.ctx, userID, model.ProviderPassword)
	s.Require().NoError(err)

	link, err := s.svc.Accounts.RequestPasswordReset(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.Empty(link)
	token := tokenFromLink(s.sender.last().Link)
	s.Require().NotEmpty(token)

	s.Require().NoError(s.svc.Accounts.ResetPassword(s.ctx, token, "newsecret"))
	_, err = s.svc.Accounts.Authenticate(s.ctx, "a@x.com", "newsecret")
	s.NoError(err)

	_, err = s.svc.Sessions.Refresh(s.ctx, pair.Refresh.Token)
	s.requireKind(err, service.KindUnauthenticated)

	link, err = s.svc.Accounts.RequestPasswordReset(s.ctx, "nobody@x.com")
	s.NoError(err)
	s.Empty(link)
}

func (s *AccountsSuite) TestSessionsRotate() {
	userID, _ := s.signUp("a@x.com", "Max")
	pair, err := s.svc.Sessions.Issue(s.ctx, userID, model.ProviderPassword)
	s.Require().NoError(err)

	access, err := s.svc.Sessions.RefreshAccess(s.ctx, pair.Refresh.Token)
	s.Require().NoError(err)
	s.NotEmpty(access.Token)

	next, err := s.svc.Sessions.Refresh(s.ctx, pair.Refresh.Token)
	s.Require().NoError(err)
	s.Equal(userID, next.UserID)
	s.NotEqual(pair.Refresh.Token, next.Refresh.Token)

	_, err = s.svc.Sessions.Refresh(s.ctx, pair.Refresh.Token)
	s.requireKind(err, service.KindUnauthenticated)

	s.Require().NoError(s.svc.Sessions.Revoke(s.ctx, next.Refresh.Token))
	_, err = s.svc.Sessions.RefreshAccess(s.ctx, next.Refresh.Token)
	s.requireKind(err, service.KindUnauthenticated)
}

func (s *AccountsSuite) TestDescribe() {
	userID, fridgeID := s.signUp("a@x.com", "Max")
	me, err := s.svc.Accounts.Describe(s.ctx, userID)
	s.Require().NoError(err)
	s.Equal(service.Me{UserID: userID, Email: "a@x.com", Name: "Max", FridgeID: fridgeID}, *me)
}
