package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fridge-share/internal/app"
	"github.com/iliyamo/fridge-share/internal/mail"
	"github.com/iliyamo/fridge-share/internal/model"
	"github.com/iliyamo/fridge-share/internal/repository/memory"
	"github.com/iliyamo/fridge-share/internal/service"
)

func newAdmin(t *testing.T) (*service.Admin, *memory.DB) {
	t.Helper()
	db := memory.New()
	svc := service.New(app.MemoryStores(db), mail.LogSender{}, mail.NewLinks("http://app.test", "/"),
		service.Config{JWTSecret: "s", BcryptCost: 4}, service.Options{})
	return svc.Admin, db
}

func TestRunPurgeSharedDryRun(t *testing.T) {
	admin, db := newAdmin(t)
	ctx := context.Background()
	require.NoError(t, db.Fridges().Create(ctx, &model.Fridge{ID: "orphan", Name: "Old", Members: []string{"u1"}}))

	var out bytes.Buffer
	require.NoError(t, run(ctx, admin, "purge-shared", []string{"-dry-run"}, &out))
	assert.Contains(t, out.String(), `"fridges": 1`)
	assert.Contains(t, out.String(), `"dry_run": true`)

	_, err := db.Fridges().GetByID(ctx, "orphan")
	assert.NoError(t, err)

	out.Reset()
	require.NoError(t, run(ctx, admin, "purge-shared", nil, &out))
	_, err = db.Fridges().GetByID(ctx, "orphan")
	assert.Error(t, err)
}

func TestRunPurgeExpiredInvites(t *testing.T) {
	admin, db := newAdmin(t)
	ctx := context.Background()
	require.NoError(t, db.Invites().Create(ctx, &model.Invite{
		ID: "i1", Token: "t1", InviterID: "u1", InviteeEmail: "b@x.com",
		Type: model.InviteFridge, Status: model.InviteStatusPending,
		ExpiresAt: time.Now().Add(-48 * time.Hour),
	}))

	var out bytes.Buffer
	require.NoError(t, run(ctx, admin, "purge-expired-invites", nil, &out))
	assert.JSONEq(t, `{"deleted": 1}`, out.String())
}

func TestRunUnknownCommand(t *testing.T) {
	admin, _ := newAdmin(t)
	err := run(context.Background(), admin, "nope", nil, &bytes.Buffer{})
	assert.ErrorContains(t, err, "unknown command")
}
