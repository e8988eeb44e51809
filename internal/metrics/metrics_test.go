package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersIncrement(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.InviteCreated("fridge")
	m.InviteCreated("fridge")
	m.InviteAccepted("account")
	m.SweepRan("invites", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.InvitesCreated.WithLabelValues("fridge")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InvitesAccepted.WithLabelValues("account")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SweepRuns.WithLabelValues("invites", "error")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.InviteCreated("fridge")
		m.FridgeCreated("personal")
		m.MailFailed("invite")
		m.SweepRan("expiring", nil)
	})
}
