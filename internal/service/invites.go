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

// Invites runs the invite lifecycle: creation, preview and acceptance.
type Invites struct {
	env
	st       Stores
	resolver *Resolver
	notifier *Notifier
	mailer   *mailer
	links    mail.Links
}

// InviteRequest describes a new invite. FridgeID is optional: when set,
// the invitee joins that existing shared fridge instead of a new one.
type InviteRequest struct {
	InviterID    string
	InviteeEmail string
	FridgeName   string
	FridgeID     string
}

// InviteResult is returned by invite creation. AcceptLink is always
// filled; callers surface it when MailSent is false.
type InviteResult struct {
	Invite     *model.Invite
	AcceptLink string
	MailSent   bool
}

// AcceptResult is returned by acceptance.
type AcceptResult struct {
	FridgeID        string
	UserID          string
	AlreadyAccepted bool
}

var (
	errInviterProfileMissing = newErr(KindIntegrity, "InviterProfileMissing")
	errInviteeHasNoAccount   = newErr(KindForbidden, "No account exists for this email. Send an account invite instead.")
)

// CreateFridgeInvite invites an existing account holder to share a fridge.
func (s *Invites) CreateFridgeInvite(ctx context.Context, req InviteRequest) (*InviteResult, error) {
	inviter, email, err := s.prepare(ctx, &req)
	if err != nil {
		return nil, err
	}
	inviteeID, err := s.identityFor(ctx, email)
	if err != nil {
		return nil, err
	}
	if inviteeID == "" {
		return nil, errInviteeHasNoAccount
	}
	if inviteeID == inviter.UserID {
		return nil, newErr(KindValidation, "You cannot invite yourself")
	}

	inv, err := s.persist(ctx, model.InviteFridge, inviter.UserID, email, req.FridgeName, req.FridgeID)
	if err != nil {
		return nil, err
	}
	title, body := inviteText(ctx, s.st, inv)
	s.notifier.emitQuietly(ctx, model.Notification{
		UserID:  inviteeID,
		Type:    model.NotificationFridgeInvite,
		Title:   title,
		Message: body,
		Metadata: model.NotificationMetadata{
			FridgeID: inv.FridgeID, InviteID: inv.ID, InviteToken: inv.Token,
		},
		DedupKey:  string(model.NotificationFridgeInvite) + ":" + inv.Token,
		CreatedAt: inv.CreatedAt,
	})

	link := s.links.InviteAccept(inv.Token)
	msg, err := mail.FridgeInvite(email, inviter.Name, inviter.Email, inv.FridgeName, link, s.validHours())
	if err != nil {
		return nil, internal("render mail", err)
	}
	return &InviteResult{Invite: inv, AcceptLink: link, MailSent: s.mailer.deliver(ctx, "fridge_invite", msg)}, nil
}

// CreateAccountInvite invites someone without an account. Accepting it
// creates their account and then joins them like a fridge invite.
func (s *Invites) CreateAccountInvite(ctx context.Context, req InviteRequest) (*InviteResult, error) {
	inviter, email, err := s.prepare(ctx, &req)
	if err != nil {
		return nil, err
	}
	inviteeID, err := s.identityFor(ctx, email)
	if err != nil {
		return nil, err
	}
	if inviteeID != "" {
		return nil, newErr(KindConflict, "This email already has an account. Send a fridge invite instead.")
	}
	inv, err := s.persist(ctx, model.InviteAccount, inviter.UserID, email, req.FridgeName, req.FridgeID)
	if err != nil {
		return nil, err
	}
	link := s.links.InviteAccept(inv.Token)
	msg, err := mail.AccountInvite(email, inviter.Name, inviter.Email, inv.FridgeName, link, s.validHours())
	if err != nil {
		return nil, internal("render mail", err)
	}
	return &InviteResult{Invite: inv, AcceptLink: link, MailSent: s.mailer.deliver(ctx, "account_invite", msg)}, nil
}

// prepare validates the request, loads the inviter and resolves an
// existing target fridge.
func (s *Invites) prepare(ctx context.Context, req *InviteRequest) (*model.Profile, string, error) {
	email := normalizeEmail(req.InviteeEmail)
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", newErr(KindValidation, "A valid invitee email is required")
	}
	req.FridgeName = strings.TrimSpace(req.FridgeName)

	inviter, err := s.st.Profiles.GetByUserID(ctx, req.InviterID)
	if isNotFound(err) {
		return nil, "", newErr(KindNotFound, "Inviter profile not found")
	}
	if err != nil {
		return nil, "", internal("load inviter", err)
	}
	if inviter.Email != "" && inviter.Email == email {
		return nil, "", newErr(KindValidation, "You cannot invite yourself")
	}

	if req.FridgeID != "" {
		f, err := memberFridge(ctx, s.st, inviter.UserID, req.FridgeID)
		if err != nil {
			return nil, "", err
		}
		if model.IsPersonal(f, inviter) {
			return nil, "", newErr(KindValidation, "Your personal fridge cannot be shared. Name a new shared fridge instead.")
		}
		if req.FridgeName == "" {
			req.FridgeName = f.DisplayName()
		}
	}
	if req.FridgeName == "" {
		return nil, "", ErrFridgeNameMissing
	}
	return inviter, email, nil
}

// identityFor returns the user id owning email, or "" when none does.
func (s *Invites) identityFor(ctx context.Context, email string) (string, error) {
	acc, err := s.st.Accounts.GetByEmail(ctx, email)
	if err == nil {
		return acc.ID, nil
	}
	if !isNotFound(err) {
		return "", internal("lookup account", err)
	}
	p, err := s.st.Profiles.GetByEmail(ctx, email)
	if err == nil {
		return p.UserID, nil
	}
	if !isNotFound(err) {
		return "", internal("lookup profile", err)
	}
	return "", nil
}

func (s *Invites) persist(ctx context.Context, kind model.InviteType, inviterID, email, fridgeName, fridgeID string) (*model.Invite, error) {
	token, err := utils.RandomHex(32)
	if err != nil {
		return nil, internal("generate token", err)
	}
	inv := &model.Invite{
		ID:           uuid.NewString(),
		Token:        token,
		InviterID:    inviterID,
		InviteeEmail: email,
		Type:         kind,
		FridgeName:   fridgeName,
		FridgeID:     fridgeID,
		Status:       model.InviteStatusPending,
		ExpiresAt:    s.now().Add(s.cfg.InviteTTL),
	}
	if err := s.st.Invites.Create(ctx, inv); err != nil {
		return nil, internal("create invite", err)
	}
	s.metrics.InviteCreated(string(kind))
	s.publish(ctx, queue.Event{
		Type: queue.EventInviteCreated, UserID: inviterID, InviteID: inv.ID,
		InviteType: string(kind), FridgeName: fridgeName, FridgeID: fridgeID, Email: email,
	})
	return inv, nil
}

func (s *Invites) validHours() int { return int(s.cfg.InviteTTL.Hours()) }

// InvitePreview is what an invitee sees before accepting.
type InvitePreview struct {
	Token        string             `json:"token"`
	Type         model.InviteType   `json:"type"`
	Status       model.InviteStatus `json:"status"`
	FridgeName   string             `json:"fridge_name"`
	FridgeID     string             `json:"fridge_id,omitempty"`
	InviterName  string             `json:"inviter_name"`
	InviteeEmail string             `json:"invitee_email"`
	HasAccount   bool               `json:"has_account"`
	ExpiresAt    string             `json:"expires_at"`
}

// Preview describes a pending or accepted invite. Reading an invite past
// its expiry persists the expired state and returns ErrInviteExpired.
func (s *Invites) Preview(ctx context.Context, token string) (*InvitePreview, error) {
	inv, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}
	if _, ok := inv.StateAt(s.now()).(model.Expired); ok {
		s.expire(ctx, inv)
		return nil, ErrInviteExpired
	}
	inviterName := "Someone"
	if p, err := s.st.Profiles.GetByUserID(ctx, inv.InviterID); err == nil && p.Name != "" {
		inviterName = p.Name
	}
	inviteeID, err := s.identityFor(ctx, inv.InviteeEmail)
	if err != nil {
		return nil, err
	}
	return &InvitePreview{
		Token:        inv.Token,
		Type:         inv.Type,
		Status:       inv.Status,
		FridgeName:   inv.FridgeName,
		FridgeID:     inv.FridgeID,
		InviterName:  inviterName,
		InviteeEmail: inv.InviteeEmail,
		HasAccount:   inviteeID != "",
		ExpiresAt:    inv.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}

// Accept joins userID to the fridge behind a fridge invite. It is safe
// to retry and to race: repeated calls return the same fridge id.
func (s *Invites) Accept(ctx context.Context, token, userID, email, name string) (*AcceptResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, newErr(KindValidation, "userId is required")
	}
	inv, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}
	if done, res, err := s.gate(ctx, inv); done {
		if res != nil {
			res.UserID = userID
		}
		return res, err
	}
	if inv.Type != model.InviteFridge {
		return nil, newErr(KindValidation, "This invite requires creating an account")
	}
	if userID == inv.InviterID {
		return nil, newErr(KindValidation, "You cannot accept your own invite")
	}
	fridgeID, err := s.join(ctx, inv, userID, email, name)
	if err != nil {
		return nil, err
	}
	return &AcceptResult{FridgeID: fridgeID, UserID: userID}, nil
}

// AcceptAccount bootstraps the invitee's account from an account invite
// and then joins them. A retry after a partial failure reuses the account
// when the password matches.
func (s *Invites) AcceptAccount(ctx context.Context, token, password, name string) (*AcceptResult, error) {
	inv, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}
	if done, res, err := s.gate(ctx, inv); done {
		if err != nil {
			return nil, err
		}
		acc, err := s.st.Accounts.GetByEmail(ctx, inv.InviteeEmail)
		if err != nil || !utils.VerifyPassword(acc.PasswordHash, password) {
			return nil, newErr(KindConflict, "This invite was already accepted. Sign in instead.")
		}
		res.UserID = acc.ID
		return res, nil
	}
	if inv.Type != model.InviteAccount {
		return nil, newErr(KindValidation, "This invite is for an existing account. Sign in to accept it.")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newErr(KindValidation, "Name is required")
	}
	if len(password) < MinPasswordLength {
		return nil, newErr(KindValidation, "Password must be at least 6 characters")
	}

	acc, err := s.bootstrapAccount(ctx, inv.InviteeEmail, password, name)
	if err != nil {
		return nil, err
	}
	fridgeID, err := s.join(ctx, inv, acc.ID, acc.Email, name)
	if err != nil {
		return nil, err
	}
	s.notifier.emitQuietly(ctx, model.Notification{
		UserID:   acc.ID,
		Type:     model.NotificationAccountCreated,
		Title:    "Welcome!",
		Message:  "Your account is ready and your shared fridge is waiting.",
		DedupKey: string(model.NotificationAccountCreated),
	})
	return &AcceptResult{FridgeID: fridgeID, UserID: acc.ID}, nil
}

func (s *Invites) bootstrapAccount(ctx context.Context, email, password, name string) (*model.Account, error) {
	existing, err := s.st.Accounts.GetByEmail(ctx, email)
	if err == nil {
		if !utils.VerifyPassword(existing.PasswordHash, password) {
			return nil, newErr(KindConflict, "An account already exists for this email. Sign in to accept the invite.")
		}
		return existing, nil
	}
	if !isNotFound(err) {
		return nil, internal("lookup account", err)
	}
	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, internal("hash password", err)
	}
	// the invite link reached this inbox, which proves the address
	acc := &model.Account{ID: uuid.NewString(), Email: email, PasswordHash: hash, Name: name, EmailVerified: true}
	err = s.st.Accounts.Create(ctx, acc)
	if isDuplicate(err) {
		return s.bootstrapAccount(ctx, email, password, name)
	}
	if err != nil {
		return nil, internal("create account", err)
	}
	s.publish(ctx, queue.Event{Type: queue.EventAccountCreated, UserID: acc.ID, Email: email})
	return acc, nil
}

func (s *Invites) load(ctx context.Context, token string) (*model.Invite, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, newErr(KindValidation, "token is required")
	}
	inv, err := s.st.Invites.GetByToken(ctx, token)
	if isNotFound(err) {
		return nil, ErrInviteNotFound
	}
	if err != nil {
		return nil, internal("load invite", err)
	}
	return inv, nil
}

// gate short-circuits accepted and expired invites. done is false only
// for invites that are still pending.
func (s *Invites) gate(ctx context.Context, inv *model.Invite) (bool, *AcceptResult, error) {
	switch st := inv.StateAt(s.now()).(type) {
	case model.Accepted:
		return true, &AcceptResult{FridgeID: st.FridgeID, AlreadyAccepted: true}, nil
	case model.Expired:
		s.expire(ctx, inv)
		return true, nil, ErrInviteExpired
	}
	return false, nil, nil
}

// expire persists the expired state of a pending invite past its expiry.
func (s *Invites) expire(ctx context.Context, inv *model.Invite) {
	if inv.Status != model.InviteStatusPending {
		return
	}
	next, err := model.Expire(model.Pending{})
	if err != nil {
		return
	}
	err = s.st.Invites.Transition(ctx, inv.Token, model.InviteStatusPending, next.Status())
	switch {
	case err == nil:
		s.metrics.InviteExpired()
	case isConflict(err):
	default:
		s.log.Warn("persist invite expiry failed", zap.String("invite_id", inv.ID), zap.Error(err))
	}
}

// join runs the convergent acceptance steps. Each step is idempotent so
// a retry from the top reaches the same state.
func (s *Invites) join(ctx context.Context, inv *model.Invite, userID, email, name string) (string, error) {
	f, err := s.materialize(ctx, inv, userID)
	if err != nil {
		return "", err
	}
	if err := s.ensureInviteeProfile(ctx, userID, email, name); err != nil {
		return "", err
	}
	// only a fridge created for this invite receives the inviter's items
	if inv.Type == model.InviteAccount && f.SourceInvite == inv.Token {
		if err := s.migrateInviter(ctx, inv, f.ID); err != nil {
			return "", err
		}
	}

	next, err := model.Accept(model.Pending{}, f.ID)
	if err != nil {
		return "", internal("accept invite", err)
	}
	err = s.st.Invites.Transition(ctx, inv.Token, model.InviteStatusPending, next.Status())
	if isConflict(err) {
		// lost a race: trust whatever the winner stored
		cur, gerr := s.st.Invites.GetByToken(ctx, inv.Token)
		if gerr != nil {
			return "", internal("reload invite", gerr)
		}
		if cur.Status == model.InviteStatusAccepted {
			return cur.FridgeID, nil
		}
		return "", ErrInviteExpired
	}
	if err != nil {
		return "", internal("mark invite accepted", err)
	}

	s.metrics.InviteAccepted(string(inv.Type))
	s.afterAccept(ctx, inv, f, userID)
	return f.ID, nil
}

// materialize resolves the shared fridge and makes userID a member.
// Fridges created here carry the invite token as a unique source key,
// so concurrent acceptances converge on one fridge.
func (s *Invites) materialize(ctx context.Context, inv *model.Invite, userID string) (*model.Fridge, error) {
	if inv.FridgeID != "" {
		f, err := s.st.Fridges.GetByID(ctx, inv.FridgeID)
		switch {
		case err == nil:
			if !f.HasMember(userID) {
				if err := s.st.Fridges.AddMember(ctx, f.ID, userID); err != nil {
					return nil, internal("add member", err)
				}
				f.Members = append(f.Members, userID)
			}
			return f, nil
		case !isNotFound(err):
			return nil, internal("load fridge", err)
		}
		s.log.Warn("invite references missing fridge; creating a new one",
			zap.String("invite_id", inv.ID), zap.String("fridge_id", inv.FridgeID))
	}

	if inv.FridgeName == "" {
		return nil, ErrFridgeNameMissing
	}
	if _, err := s.st.Profiles.GetByUserID(ctx, inv.InviterID); err != nil {
		if isNotFound(err) {
			s.log.Error("invite references missing inviter profile",
				zap.String("invite_id", inv.ID), zap.String("inviter_id", inv.InviterID))
			return nil, errInviterProfileMissing
		}
		return nil, internal("load inviter", err)
	}

	f := &model.Fridge{
		ID:           uuid.NewString(),
		Name:         inv.FridgeName,
		Members:      []string{inv.InviterID, userID},
		SourceInvite: inv.Token,
	}
	err := s.st.Fridges.Create(ctx, f)
	switch {
	case err == nil:
		s.metrics.FridgeCreated("shared")
		s.publish(ctx, queue.Event{Type: queue.EventFridgeCreated, UserID: inv.InviterID, FridgeID: f.ID, FridgeName: f.Name})
	case isDuplicate(err):
		if f, err = s.st.Fridges.FindBySourceInvite(ctx, inv.Token); err != nil {
			return nil, internal("reload shared fridge", err)
		}
		for _, m := range []string{inv.InviterID, userID} {
			if !f.HasMember(m) {
				if err := s.st.Fridges.AddMember(ctx, f.ID, m); err != nil {
					return nil, internal("add member", err)
				}
				f.Members = append(f.Members, m)
			}
		}
	default:
		return nil, internal("create shared fridge", err)
	}

	if err := s.st.Invites.AttachFridge(ctx, inv.Token, inv.FridgeID, f.ID); err != nil {
		if !isConflict(err) {
			return nil, internal("attach fridge", err)
		}
		cur, gerr := s.st.Invites.GetByToken(ctx, inv.Token)
		if gerr != nil {
			return nil, internal("reload invite", gerr)
		}
		if cur.FridgeID != f.ID {
			s.log.Error("invite attached to a different fridge",
				zap.String("invite_id", inv.ID), zap.String("stored", cur.FridgeID), zap.String("resolved", f.ID))
			return nil, newErr(KindIntegrity, "InviteFridgeMismatch")
		}
	}
	return f, nil
}

// ensureInviteeProfile gives a first-time invitee a profile anchored on
// a personal fridge of their own, never on the shared one.
func (s *Invites) ensureInviteeProfile(ctx context.Context, userID, email, name string) error {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	p, err := s.st.Profiles.GetByUserID(ctx, userID)
	if err == nil {
		if (email != "" && email != p.Email) || (name != "" && name != p.Name) {
			if err := s.st.Profiles.UpdateContact(ctx, userID, email, name); err != nil {
				return internal("update profile", err)
			}
		}
		return nil
	}
	if !isNotFound(err) {
		return internal("load profile", err)
	}
	f, err := s.resolver.personalFridge(ctx, userID, name)
	if err != nil {
		return internal("personal fridge", err)
	}
	_, err = s.resolver.insertProfile(ctx, userID, email, name, f.ID)
	return err
}

// migrateInviter moves the inviter's personal items into the new shared
// fridge and repoints their profile there. The emptied personal fridge is
// kept and stays personal through its PersonalOwner key.
func (s *Invites) migrateInviter(ctx context.Context, inv *model.Invite, sharedID string) error {
	p, err := s.st.Profiles.GetByUserID(ctx, inv.InviterID)
	if isNotFound(err) {
		return errInviterProfileMissing
	}
	if err != nil {
		return internal("load inviter", err)
	}
	if p.FridgeID == sharedID {
		return nil
	}
	old, err := s.st.Fridges.GetByID(ctx, p.FridgeID)
	if err != nil && !isNotFound(err) {
		return internal("load inviter fridge", err)
	}
	if err == nil && model.IsPersonal(old, p) {
		moved, err := s.st.Items.MoveFridge(ctx, old.ID, sharedID)
		if err != nil {
			return internal("move items", err)
		}
		s.log.Info("moved inviter items into shared fridge",
			zap.String("inviter_id", inv.InviterID), zap.String("fridge_id", sharedID), zap.Int64("items", moved))
	}
	if err := s.st.Profiles.SetFridge(ctx, inv.InviterID, sharedID); err != nil {
		return internal("repoint inviter profile", err)
	}
	return nil
}

func (s *Invites) afterAccept(ctx context.Context, inv *model.Invite, f *model.Fridge, userID string) {
	joiner := "Someone"
	if p, err := s.st.Profiles.GetByUserID(ctx, userID); err == nil && p.Name != "" {
		joiner = p.Name
	}
	if n, err := s.st.Notifications.FindByInviteToken(ctx, userID, inv.Token); err == nil && !n.IsRead && n.Type == model.NotificationFridgeInvite {
		_ = s.st.Notifications.MarkRead(ctx, n.ID)
	}
	key := string(model.NotificationFridgeJoined) + ":" + inv.Token
	meta := model.NotificationMetadata{FridgeID: f.ID, InviteID: inv.ID, InviteToken: inv.Token}
	s.notifier.emitQuietly(ctx, model.Notification{
		UserID: inv.InviterID, Type: model.NotificationFridgeJoined,
		Title:   "Invite accepted",
		Message: joiner + " joined \"" + f.DisplayName() + "\".",
		// inviter notes carry no token so they never mask the invitee's invite entry
		Metadata: model.NotificationMetadata{FridgeID: f.ID, InviteID: inv.ID},
		DedupKey: key,
	})
	s.notifier.emitQuietly(ctx, model.Notification{
		UserID: userID, Type: model.NotificationFridgeJoined,
		Title:    "You joined a fridge",
		Message:  "You now share \"" + f.DisplayName() + "\".",
		Metadata: meta,
		DedupKey: key,
	})
	s.publish(ctx, queue.Event{
		Type: queue.EventInviteAccepted, UserID: userID, FridgeID: f.ID, FridgeName: f.Name,
		InviteID: inv.ID, InviteType: string(inv.Type),
	})
}
