// Package metrics exposes Prometheus counters for the fridge-sharing
// flows. A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks invite, fridge, notification and mail outcomes.
type Metrics struct {
	InvitesCreated       *prometheus.CounterVec
	InvitesAccepted      *prometheus.CounterVec
	InvitesExpired       prometheus.Counter
	FridgesCreated       *prometheus.CounterVec
	NotificationsEmitted *prometheus.CounterVec
	MailFailures         *prometheus.CounterVec
	SweepRuns            *prometheus.CounterVec
}

// New registers all counters on reg. Pass prometheus.DefaultRegisterer in
// the server and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		InvitesCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fridgeshare_invites_created_total",
			Help: "Invites created, by invite type",
		}, []string{"type"}),
		InvitesAccepted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fridgeshare_invites_accepted_total",
			Help: "Invites accepted for the first time, by invite type",
		}, []string{"type"}),
		InvitesExpired: f.NewCounter(prometheus.CounterOpts{
			Name: "fridgeshare_invites_expired_total",
			Help: "Invites moved to expired on read",
		}),
		FridgesCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fridgeshare_fridges_created_total",
			Help: "Fridges created, by kind (personal, shared)",
		}, []string{"kind"}),
		NotificationsEmitted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fridgeshare_notifications_emitted_total",
			Help: "Stored notifications, by type",
		}, []string{"type"}),
		MailFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fridgeshare_mail_failures_total",
			Help: "Mail sends that failed or had no transport, by template",
		}, []string{"template"}),
		SweepRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fridgeshare_sweep_runs_total",
			Help: "Background sweep executions, by job and outcome",
		}, []string{"job", "outcome"}),
	}
}

func (m *Metrics) InviteCreated(kind string) {
	if m != nil {
		m.InvitesCreated.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) InviteAccepted(kind string) {
	if m != nil {
		m.InvitesAccepted.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) InviteExpired() {
	if m != nil {
		m.InvitesExpired.Inc()
	}
}

func (m *Metrics) FridgeCreated(kind string) {
	if m != nil {
		m.FridgesCreated.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) NotificationEmitted(kind string) {
	if m != nil {
		m.NotificationsEmitted.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) MailFailed(template string) {
	if m != nil {
		m.MailFailures.WithLabelValues(template).Inc()
	}
}

func (m *Metrics) SweepRan(job string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.SweepRuns.WithLabelValues(job, outcome).Inc()
}
