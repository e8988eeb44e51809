package service_test

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/iliyamo/fridge-share/internal/mail"
	"github.com/iliyamo/fridge-share/internal/model"
	"github.com/iliyamo/fridge-share/internal/repository/memory"
	"github.com/iliyamo/fridge-share/internal/service"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type recordingSender struct {
	mu   sync.Mutex
	sent []mail.Message
	fail bool
}

func (r *recordingSender) Send(_ context.Context, msg mail.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("smtp: connection refused")
	}
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingSender) last() mail.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return mail.Message{}
	}
	return r.sent[len(r.sent)-1]
}

func stores(db *memory.DB) service.Stores {
	return service.Stores{
		Accounts:      db.Accounts(),
		Profiles:      db.Profiles(),
		Fridges:       db.Fridges(),
		Invites:       db.Invites(),
		Items:         db.Items(),
		Categories:    db.Categories(),
		Notifications: db.Notifications(),
		Tokens:        db.Tokens(),
	}
}

// ServiceSuite runs the domain services over a fresh in-memory store.
type ServiceSuite struct {
	suite.Suite
	ctx    context.Context
	db     *memory.DB
	clock  *clock
	sender *recordingSender
	svc    *service.Services
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = &clock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	s.db = memory.New()
	s.db.SetClock(s.clock.Now)
	s.sender = &recordingSender{}
	s.svc = service.New(stores(s.db), s.sender, mail.NewLinks("http://app.test", "/Fridge-app"), service.Config{
		JWTSecret:       "test-secret",
		BcryptCost:      4,
		InviteTTL:       72 * time.Hour,
		InviteRetention: 24 * time.Hour,
	}, service.Options{Now: s.clock.Now})
}

// signUp registers a password account and returns its id and personal fridge.
func (s *ServiceSuite) signUp(email, name string) (string, string) {
	res, err := s.svc.Accounts.SignUp(s.ctx, email, "secret1", name)
	s.Require().NoError(err)
	return res.Account.ID, res.FridgeID
}

func (s *ServiceSuite) fridge(id string) *model.Fridge {
	f, err := s.db.Fridges().GetByID(s.ctx, id)
	s.Require().NoError(err)
	return f
}

func (s *ServiceSuite) fridgeCount() int {
	all, err := s.db.Fridges().List(s.ctx)
	s.Require().NoError(err)
	return len(all)
}

func (s *ServiceSuite) profile(userID string) *model.Profile {
	p, err := s.db.Profiles().GetByUserID(s.ctx, userID)
	s.Require().NoError(err)
	return p
}

func (s *ServiceSuite) notificationsOf(userID string, typ model.NotificationType) []model.Notification {
	all, err := s.db.Notifications().ListByUser(s.ctx, userID, nil, 0)
	s.Require().NoError(err)
	var out []model.Notification
	for _, n := range all {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

func (s *ServiceSuite) requireKind(err error, kind service.Kind) {
	s.Require().Error(err)
	s.Equal(kind, service.KindOf(err), err.Error())
}

func tokenFromLink(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return u.Query().Get("token")
}
