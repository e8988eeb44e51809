// Package mail delivers the invite, verification and password reset
// mails. The transport is chosen once at startup; when none is
// configured, links are logged instead and callers fall back to
// returning them in the API response.
package mail

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/iliyamo/fridge-share/internal/config"
)

// ErrNoTransport is returned by senders that cannot deliver mail.
var ErrNoTransport = errors.New("mail: no transport configured")

// Message is one outgoing HTML mail.
type Message struct {
	To       string
	FromName string // display name; the address is the configured sender
	ReplyTo  string
	Subject  string
	HTML     string
	Text     string
	// Link is the actionable URL in the mail, logged when delivery is skipped.
	Link string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender returns the transport described by cfg, or a LogSender when
// no provider is configured.
func NewSender(cfg config.MailConfig, log *zap.Logger) (Sender, error) {
	if !cfg.Enabled() {
		return LogSender{Log: log}, nil
	}
	return NewSMTPSender(cfg, log)
}

// LogSender writes the message link to the log and reports
// ErrNoTransport so callers surface the link themselves.
type LogSender struct {
	Log *zap.Logger
}

func (s LogSender) Send(_ context.Context, msg Message) error {
	if s.Log != nil {
		s.Log.Info("mail transport not configured; link not delivered",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.String("link", msg.Link))
	}
	return ErrNoTransport
}
