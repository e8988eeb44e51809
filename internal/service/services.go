// Package service implements the fridge-sharing domain: accounts and
// sessions, the personal-fridge resolver, the invite lifecycle,
// notifications and the item and category catalogue.
//
// Stores offer single-record atomicity only. Multi-step operations are
// written so every step is idempotent and find-or-create paths converge
// through unique keys, so a retry or a concurrent duplicate request lands
// on the same records.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/fridge-share/internal/mail"
	"github.com/iliyamo/fridge-share/internal/metrics"
	"github.com/iliyamo/fridge-share/internal/queue"
)

// Config holds the tunables services read.
type Config struct {
	JWTSecret       string
	AccessTTLMin    int
	RefreshTTLDays  int
	BcryptCost      int
	InviteTTL       time.Duration
	InviteRetention time.Duration
	VerificationTTL time.Duration
	ResetTTL        time.Duration
	Location        *time.Location
	MailTimeout     time.Duration
}

func (c Config) withDefaults() Config {
	if c.AccessTTLMin <= 0 {
		c.AccessTTLMin = 60
	}
	if c.RefreshTTLDays <= 0 {
		c.RefreshTTLDays = 30
	}
	if c.BcryptCost <= 0 {
		c.BcryptCost = 10
	}
	if c.InviteTTL <= 0 {
		c.InviteTTL = 72 * time.Hour
	}
	if c.InviteRetention < 0 {
		c.InviteRetention = 0
	}
	if c.VerificationTTL <= 0 {
		c.VerificationTTL = 24 * time.Hour
	}
	if c.ResetTTL <= 0 {
		c.ResetTTL = time.Hour
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	if c.MailTimeout <= 0 {
		c.MailTimeout = 10 * time.Second
	}
	return c
}

// Options carries the ambient collaborators. Zero values are replaced by
// no-op implementations.
type Options struct {
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Events  EventPublisher
	Now     func() time.Time
}

// env is embedded by every service.
type env struct {
	cfg     Config
	log     *zap.Logger
	metrics *metrics.Metrics
	events  EventPublisher
	now     func() time.Time
}

func newEnv(cfg Config, o Options) env {
	e := env{cfg: cfg.withDefaults(), log: o.Logger, metrics: o.Metrics, events: o.Events, now: o.Now}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.events == nil {
		e.events = nopPublisher{}
	}
	if e.now == nil {
		e.now = func() time.Time { return time.Now().UTC() }
	}
	return e
}

// publish emits a domain event, detached from the request's deadline.
func (e env) publish(ctx context.Context, ev queue.Event) {
	ev.OccurredAt = e.now()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := e.events.Publish(ctx, ev); err != nil {
		e.log.Warn("publish event failed", zap.String("event", ev.Type), zap.Error(err))
	}
}

// Services bundles every domain service over one set of stores.
type Services struct {
	Accounts      *Accounts
	Sessions      *Sessions
	Resolver      *Resolver
	Fridges       *Fridges
	Invites       *Invites
	Notifications *Notifier
	Items         *Items
	Categories    *Categories
	Admin         *Admin
}

// New wires the services together.
func New(st Stores, sender mail.Sender, links mail.Links, cfg Config, o Options) *Services {
	e := newEnv(cfg, o)
	notifier := &Notifier{env: e, st: st}
	resolver := &Resolver{env: e, st: st}
	sessions := &Sessions{env: e, st: st}
	return &Services{
		Accounts:      &Accounts{env: e, st: st, resolver: resolver, notifier: notifier, mailer: newMailer(e, sender), links: links},
		Sessions:      sessions,
		Resolver:      resolver,
		Fridges:       &Fridges{env: e, st: st},
		Invites:       &Invites{env: e, st: st, resolver: resolver, notifier: notifier, mailer: newMailer(e, sender), links: links},
		Notifications: notifier,
		Items:         &Items{env: e, st: st, notifier: notifier},
		Categories:    &Categories{env: e, st: st},
		Admin:         &Admin{env: e, st: st, notifier: notifier},
	}
}
