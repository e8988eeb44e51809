package mail

import (
	"net/url"
	"strings"

	"github.com/iliyamo/fridge-share/internal/config"
)

// Links builds the frontend URLs embedded in mails.
type Links struct {
	base string
}

// NewLinks normalises the frontend URL: trailing slashes are removed and
// the base path is appended unless the URL already ends with it.
func NewLinks(frontendURL, basePath string) Links {
	base := strings.TrimRight(strings.TrimSpace(frontendURL), "/")
	basePath = "/" + strings.Trim(basePath, "/")
	if basePath != "/" && !strings.HasSuffix(strings.ToLower(base), strings.ToLower(basePath)) {
		base += basePath
	}
	return Links{base: base}
}

// LinksFromConfig is NewLinks over the mail configuration.
func LinksFromConfig(cfg config.MailConfig) Links {
	return NewLinks(cfg.FrontendURL, cfg.BasePath)
}

// Base returns the normalised frontend root.
func (l Links) Base() string { return l.base }

// InviteAccept is the link an invitee follows to accept an invite.
func (l Links) InviteAccept(token string) string {
	return l.base + "/invite/accept?token=" + url.QueryEscape(token)
}

// VerifyEmail is the link confirming a new account's address.
func (l Links) VerifyEmail(token string) string {
	return l.base + "/verify-email?token=" + url.QueryEscape(token)
}

// ResetPassword is the link to the password reset form.
func (l Links) ResetPassword(token string) string {
	return l.base + "/reset-password?token=" + url.QueryEscape(token)
}
