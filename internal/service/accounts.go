package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/fridge-share/internal/mail"
	"github.com/iliyamo/fridge-share/internal/model"
	"github.com/iliyamo/fridge-share/internal/queue"
	"github.com/iliyamo/fridge-share/internal/utils"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// Accounts handles sign-up, verification and credential checks for both
// email/password and Google identities.
type Accounts struct {
	env
	st       Stores
	resolver *Resolver
	notifier *Notifier
	mailer   *mailer
	links    mail.Links
}

// SignUpResult is returned by SignUp. VerificationLink is only set when
// the verification mail could not be delivered.
type SignUpResult struct {
	Account          *model.Account
	FridgeID         string
	VerificationLink string
	MailSent         bool
}

// SignUp creates an unverified account, its profile and personal fridge,
// and mails a verification link.
func (s *Accounts) SignUp(ctx context.Context, email, password, name string) (*SignUpResult, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if email == "" || !strings.Contains(email, "@") {
		return nil, newErr(KindValidation, "A valid email is required")
	}
	if name == "" {
		return nil, newErr(KindValidation, "Name is required")
	}
	if len(password) < MinPasswordLength {
		return nil, newErr(KindValidation, "Password must be at least 6 characters")
	}

	if _, err := s.st.Accounts.GetByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !isNotFound(err) {
		return nil, internal("lookup account", err)
	}
	if _, err := s.st.Profiles.GetByEmail(ctx, email); err == nil {
		return nil, newErr(KindConflict, "This email is linked to a Google account. Please sign in with Google.")
	} else if !isNotFound(err) {
		return nil, internal("lookup profile", err)
	}

	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, internal("hash password", err)
	}
	acc := &model.Account{ID: uuid.NewString(), Email: email, PasswordHash: hash, Name: name}
	if err := s.st.Accounts.Create(ctx, acc); err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, internal("create account", err)
	}

	fridgeID, err := s.resolver.Ensure(ctx, acc.ID, email, name)
	if err != nil {
		return nil, err
	}
	s.welcome(ctx, acc.ID, email)

	res := &SignUpResult{Account: acc, FridgeID: fridgeID}
	link, sent, err := s.sendVerification(ctx, acc)
	if err != nil {
		return nil, err
	}
	res.MailSent = sent
	if !sent {
		res.VerificationLink = link
	}
	return res, nil
}

func (s *Accounts) welcome(ctx context.Context, userID, email string) {
	s.notifier.emitQuietly(ctx, model.Notification{
		UserID:   userID,
		Type:     model.NotificationAccountCreated,
		Title:    "Welcome!",
		Message:  "Your account is ready. Start by adding items to your fridge.",
		DedupKey: string(model.NotificationAccountCreated),
	})
	s.publish(ctx, queue.Event{Type: queue.EventAccountCreated, UserID: userID, Email: email})
}

// sendVerification issues a fresh token and mails it.
func (s *Accounts) sendVerification(ctx context.Context, acc *model.Account) (string, bool, error) {
	raw, err := utils.RandomHex(32)
	if err != nil {
		return "", false, internal("generate token", err)
	}
	if err := s.st.Accounts.SetVerificationToken(ctx, acc.ID, utils.HashToken(raw), s.now().Add(s.cfg.VerificationTTL)); err != nil {
		return "", false, internal("store verification token", err)
	}
	link := s.links.VerifyEmail(raw)
	msg, err := mail.Verification(acc.Email, acc.Name, link)
	if err != nil {
		return "", false, internal("render mail", err)
	}
	return link, s.mailer.deliver(ctx, "verification", msg), nil
}

// ResendVerification mails a new link to an unverified account. Unknown
// or verified addresses succeed silently.
func (s *Accounts) ResendVerification(ctx context.Context, email string) (string, error) {
	acc, err := s.st.Accounts.GetByEmail(ctx, normalizeEmail(email))
	if isNotFound(err) {
		return "", nil
	}
	if err != nil {
		return "", internal("lookup account", err)
	}
	if acc.EmailVerified {
		return "", nil
	}
	link, sent, err := s.sendVerification(ctx, acc)
	if err != nil || sent {
		return "", err
	}
	return link, nil
}

// VerifyEmail consumes a verification token.
func (s *Accounts) VerifyEmail(ctx context.Context, token string) (*model.Account, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	acc, err := s.st.Accounts.GetByVerificationToken(ctx, utils.HashToken(token))
	if isNotFound(err) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, internal("lookup token", err)
	}
	if acc.VerificationExpiresAt == nil || s.now().After(*acc.VerificationExpiresAt) {
		return nil, ErrInvalidToken
	}
	if err := s.st.Accounts.MarkVerified(ctx, acc.ID); err != nil {
		return nil, internal("mark verified", err)
	}
	acc.EmailVerified = true
	return acc, nil
}

// Authenticate checks email/password credentials. Unverified accounts
// are refused after the password check so the answer does not leak
// which addresses exist.
func (s *Accounts) Authenticate(ctx context.Context, email, password string) (*model.Account, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, newErr(KindValidation, "email/password required")
	}
	acc, err := s.st.Accounts.GetByEmail(ctx, email)
	if isNotFound(err) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, internal("lookup account", err)
	}
	if !utils.VerifyPassword(acc.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !acc.EmailVerified {
		return nil, ErrEmailNotVerified
	}
	return acc, nil
}

// EmailStatus answers the pre-sign-in email check.
type EmailStatus struct {
	Exists           bool `json:"exists"`
	HasGoogleAccount bool `json:"has_google_account"`
	IsEmailVerified  bool `json:"is_email_verified"`
}

// CheckEmail reports whether an address belongs to a password account
// or a Google profile.
func (s *Accounts) CheckEmail(ctx context.Context, email string) (EmailStatus, error) {
	email = normalizeEmail(email)
	if email == "" {
		return EmailStatus{}, newErr(KindValidation, "email is required")
	}
	var st EmailStatus
	acc, err := s.st.Accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		st.Exists, st.IsEmailVerified = true, acc.EmailVerified
	case !isNotFound(err):
		return EmailStatus{}, internal("lookup account", err)
	}
	if !st.Exists {
		if _, err := s.st.Profiles.GetByEmail(ctx, email); err == nil {
			st.Exists, st.HasGoogleAccount, st.IsEmailVerified = true, true, true
		} else if !isNotFound(err) {
			return EmailStatus{}, internal("lookup profile", err)
		}
	}
	return st, nil
}

// HasAccount reports whether email belongs to any identity.
func (s *Accounts) HasAccount(ctx context.Context, email string) (bool, error) {
	st, err := s.CheckEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return st.Exists, nil
}

// GoogleSignUp registers a Google identity. The caller has already
// verified the Google credential; userID is the Google subject.
func (s *Accounts) GoogleSignUp(ctx context.Context, userID, email, name string) (string, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if userID == "" || email == "" || name == "" {
		return "", newErr(KindValidation, "userId, email and name are required")
	}
	if _, err := s.st.Profiles.GetByUserID(ctx, userID); err == nil {
		return "", newErr(KindConflict, "Account already exists. Please sign in instead.")
	} else if !isNotFound(err) {
		return "", internal("lookup profile", err)
	}
	if _, err := s.st.Accounts.GetByEmail(ctx, email); err == nil {
		return "", newErr(KindConflict, "This email is registered with a password. Please sign in with email.")
	} else if !isNotFound(err) {
		return "", internal("lookup account", err)
	}
	if p, err := s.st.Profiles.GetByEmail(ctx, email); err == nil && p.UserID != userID {
		return "", newErr(KindConflict, "This email is already linked to another Google account.")
	} else if err != nil && !isNotFound(err) {
		return "", internal("lookup profile", err)
	}

	fridgeID, err := s.resolver.Ensure(ctx, userID, email, name)
	if err != nil {
		return "", err
	}
	s.welcome(ctx, userID, email)
	s.log.Info("google account created", zap.String("user_id", userID))
	return fridgeID, nil
}

// GoogleSignIn admits a Google identity that has signed up before.
func (s *Accounts) GoogleSignIn(ctx context.Context, userID string) (*model.Profile, error) {
	if userID == "" {
		return nil, newErr(KindValidation, "userId is required")
	}
	p, err := s.st.Profiles.GetByUserID(ctx, userID)
	if isNotFound(err) {
		return nil, newErr(KindForbidden, "Account not found. Please sign up first.")
	}
	if err != nil {
		return nil, internal("lookup profile", err)
	}
	if _, err := s.st.Accounts.GetByID(ctx, userID); err == nil {
		return nil, newErr(KindForbidden, "This account uses email and password.")
	}
	return p, nil
}

// RequestPasswordReset mails a reset link when the account exists. It
// succeeds for unknown addresses too. The returned link is non-empty
// only when delivery failed for an existing account.
func (s *Accounts) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	acc, err := s.st.Accounts.GetByEmail(ctx, normalizeEmail(email))
	if isNotFound(err) {
		return "", nil
	}
	if err != nil {
		return "", internal("lookup account", err)
	}
	raw, err := utils.RandomHex(32)
	if err != nil {
		return "", internal("generate token", err)
	}
	if err := s.st.Accounts.SetResetToken(ctx, acc.ID, utils.HashToken(raw), s.now().Add(s.cfg.ResetTTL)); err != nil {
		return "", internal("store reset token", err)
	}
	link := s.links.ResetPassword(raw)
	msg, err := mail.PasswordReset(acc.Email, link)
	if err != nil {
		return "", internal("render mail", err)
	}
	if s.mailer.deliver(ctx, "password_reset", msg) {
		return "", nil
	}
	return link, nil
}

// ResetPassword consumes a reset token and sets a new password. A
// successful reset also proves ownership of the address.
func (s *Accounts) ResetPassword(ctx context.Context, token, password string) error {
	if len(password) < MinPasswordLength {
		return newErr(KindValidation, "Password must be at least 6 characters")
	}
	acc, err := s.st.Accounts.GetByResetToken(ctx, utils.HashToken(strings.TrimSpace(token)))
	if isNotFound(err) {
		return ErrInvalidToken
	}
	if err != nil {
		return internal("lookup token", err)
	}
	if acc.ResetExpiresAt == nil || s.now().After(*acc.ResetExpiresAt) {
		return ErrInvalidToken
	}
	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return internal("hash password", err)
	}
	if err := s.st.Accounts.UpdatePassword(ctx, acc.ID, hash); err != nil {
		return internal("update password", err)
	}
	if !acc.EmailVerified {
		if err := s.st.Accounts.MarkVerified(ctx, acc.ID); err != nil {
			return internal("mark verified", err)
		}
	}
	if err := s.st.Tokens.RevokeAllForUser(ctx, acc.ID); err != nil {
		return internal("revoke sessions", err)
	}
	return nil
}

// Me describes the signed-in user.
type Me struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	EmailVerified bool   `json:"email_verified"`
	FridgeID      string `json:"fridge_id,omitempty"`
}

// Describe loads the identity behind a session.
func (s *Accounts) Describe(ctx context.Context, userID string) (*Me, error) {
	me := &Me{UserID: userID}
	p, err := s.st.Profiles.GetByUserID(ctx, userID)
	if err == nil {
		me.Email, me.Name, me.FridgeID, me.EmailVerified = p.Email, p.Name, p.FridgeID, true
	} else if !isNotFound(err) {
		return nil, internal("load profile", err)
	}
	acc, err := s.st.Accounts.GetByID(ctx, userID)
	if err == nil {
		me.Email, me.Name, me.EmailVerified = acc.Email, acc.Name, acc.EmailVerified
	} else if !isNotFound(err) {
		return nil, internal("load account", err)
	}
	if acc == nil && p == nil {
		return nil, newErr(KindNotFound, "User not found")
	}
	return me, nil
}
