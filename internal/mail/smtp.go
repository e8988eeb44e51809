package mail

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/iliyamo/fridge-share/internal/config"
)

// SMTPSender delivers through a generic SMTP server or Gmail.
type SMTPSender struct {
	from   string
	client *gomail.Client
	log    *zap.Logger
}

// NewSMTPSender builds a go-mail client from cfg. No connection is made
// until the first Send.
func NewSMTPSender(cfg config.MailConfig, log *zap.Logger) (*SMTPSender, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTimeout(15 * time.Second),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password))
	}
	switch {
	case cfg.Secure:
		opts = append(opts, gomail.WithSSL())
	case cfg.Provider == config.MailProviderGmail:
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	default:
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}
	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mail client: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SMTPSender{from: cfg.From, client: client, log: log}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMsg()
	var err error
	if msg.FromName != "" {
		err = m.FromFormat(msg.FromName, s.from)
	} else {
		err = m.From(s.from)
	}
	if err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			s.log.Debug("ignoring invalid reply-to", zap.String("reply_to", msg.ReplyTo), zap.Error(err))
		}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	if msg.Text != "" {
		m.AddAlternativeString(gomail.TypeTextPlain, msg.Text)
	}
	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("mail send: %w", err)
	}
	s.log.Info("mail sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}
