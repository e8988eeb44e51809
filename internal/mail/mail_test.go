package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/fridge-share/internal/config"
)

func TestLinksNormalisation(t *testing.T) {
	cases := []struct {
		frontend, base, want string
	}{
		{"http://localhost:5173", "/Fridge-app", "http://localhost:5173/Fridge-app"},
		{"http://localhost:5173///", "/Fridge-app", "http://localhost:5173/Fridge-app"},
		{"https://x.github.io/Fridge-app/", "/Fridge-app", "https://x.github.io/Fridge-app"},
		{"https://x.github.io/fridge-app", "Fridge-app", "https://x.github.io/fridge-app"},
		{"https://app.example.com", "", "https://app.example.com"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NewLinks(tc.frontend, tc.base).Base(), tc.frontend)
	}

	l := NewLinks("http://localhost:5173", "/Fridge-app")
	assert.Equal(t, "http://localhost:5173/Fridge-app/invite/accept?token=abc", l.InviteAccept("abc"))
	assert.Equal(t, "http://localhost:5173/Fridge-app/verify-email?token=t", l.VerifyEmail("t"))
}

func TestTemplatesEscapeAndCarryLink(t *testing.T) {
	msg, err := FridgeInvite("bob@example.com", "<Alice>", "alice@example.com", "Family", "http://x/invite/accept?token=1", 72)
	require.NoError(t, err)
	assert.Contains(t, msg.HTML, "&lt;Alice&gt;")
	assert.Contains(t, msg.HTML, "http://x/invite/accept?token=1")
	assert.Equal(t, "alice@example.com", msg.ReplyTo)
	assert.Equal(t, "http://x/invite/accept?token=1", msg.Link)

	msg, err = FridgeInvite("bob@example.com", "", "", "Family", "l", 1)
	require.NoError(t, err)
	assert.Contains(t, msg.Subject, "Someone")
}

func TestNewSenderWithoutProviderLogs(t *testing.T) {
	s, err := NewSender(config.MailConfig{}, zap.NewNop())
	require.NoError(t, err)
	err = s.Send(context.Background(), Message{To: "a@b.c", Link: "l"})
	assert.ErrorIs(t, err, ErrNoTransport)
}

func TestNewSenderBuildsSMTPClient(t *testing.T) {
	s, err := NewSender(config.MailConfig{
		Provider: config.MailProviderSMTP, Host: "localhost", Port: 2525,
		Username: "u", Password: "p", From: "bot@example.com",
	}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, s)
}
