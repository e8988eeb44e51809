package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/iliyamo/fridge-share/internal/mail"
)

// mailer sends best-effort mail: the record the mail refers to is
// already durable, so failure only changes what the caller returns.
type mailer struct {
	env
	sender mail.Sender
}

func newMailer(e env, s mail.Sender) *mailer {
	if s == nil {
		s = mail.LogSender{Log: e.log}
	}
	return &mailer{env: e, sender: s}
}

// deliver reports whether the message left the process.
func (m *mailer) deliver(ctx context.Context, template string, msg mail.Message) bool {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.MailTimeout)
	defer cancel()
	err := m.sender.Send(ctx, msg)
	if err == nil {
		return true
	}
	m.metrics.MailFailed(template)
	if errors.Is(err, mail.ErrNoTransport) {
		return false
	}
	m.log.Warn("mail delivery failed; returning link instead",
		zap.String("template", template), zap.String("to", msg.To), zap.Error(err))
	return false
}
