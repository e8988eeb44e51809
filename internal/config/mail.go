package config

import (
	"strings"
)

// Mail providers selected by LoadMailConfig.
const (
	MailProviderNone  = ""
	MailProviderSMTP  = "smtp"
	MailProviderGmail = "gmail"
)

const (
	defaultFrontendURL = "http://localhost:5173"
	defaultBasePath    = "/Fridge-app"
	defaultMailFrom    = "no-reply@bia.app"
)

// MailConfig selects the mail transport and the links embedded in mails.
type MailConfig struct {
	Provider string
	Host     string
	Port     int
	Secure   bool // implicit TLS (SMTPS) instead of STARTTLS
	Username string
	Password string
	From     string

	FrontendURL string
	BasePath    string
}

// LoadMailConfig picks a provider once at startup: a generic SMTP host
// when SMTP_HOST is set, otherwise Gmail when GMAIL_USER and
// GMAIL_APP_PASSWORD are set, otherwise none (links are only logged).
func LoadMailConfig() MailConfig {
	mc := MailConfig{
		FrontendURL: getenv("FRONTEND_URL", defaultFrontendURL),
		BasePath:    getenv("FRONTEND_BASE_PATH", defaultBasePath),
	}
	switch {
	case getenv("SMTP_HOST", "") != "":
		mc.Provider = MailProviderSMTP
		mc.Host = getenv("SMTP_HOST", "")
		mc.Port = envInt("SMTP_PORT", 587)
		mc.Secure = envBool("SMTP_SECURE", false)
		mc.Username = getenv("SMTP_USER", "")
		mc.Password = getenv("SMTP_PASS", "")
		mc.From = firstNonEmpty(getenv("MAIL_FROM", ""), mc.Username, defaultMailFrom)
	case getenv("GMAIL_USER", "") != "" && getenv("GMAIL_APP_PASSWORD", "") != "":
		mc.Provider = MailProviderGmail
		mc.Host = "smtp.gmail.com"
		mc.Port = 587
		mc.Username = getenv("GMAIL_USER", "")
		mc.Password = getenv("GMAIL_APP_PASSWORD", "")
		// Gmail rewrites foreign From addresses, so send as the mailbox owner.
		mc.From = mc.Username
	default:
		mc.From = firstNonEmpty(getenv("MAIL_FROM", ""), defaultMailFrom)
	}
	mc.From = strings.TrimSpace(mc.From)
	return mc
}

// Enabled reports whether a transport is configured.
func (m MailConfig) Enabled() bool { return m.Provider != MailProviderNone }
