package mail

import (
	"bytes"
	"fmt"
	"html/template"
)

var layout = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;color:#222">
<h2>{{.Heading}}</h2>
<p>{{.Body}}</p>
<p><a href="{{.Link}}" style="background:#6200ee;color:#fff;padding:10px 18px;border-radius:6px;text-decoration:none">{{.Action}}</a></p>
<p style="font-size:12px;color:#666">If the button does not work, paste this link into your browser:<br>{{.Link}}</p>
{{if .Footer}}<p style="font-size:12px;color:#666">{{.Footer}}</p>{{end}}
</body></html>`))

type view struct {
	Heading, Body, Action, Link, Footer string
}

func render(v view) (string, error) {
	var buf bytes.Buffer
	if err := layout.Execute(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FridgeInvite renders the invitation to join a shared fridge.
func FridgeInvite(to, inviterName, inviterEmail, fridgeName, link string, validHours int) (Message, error) {
	if inviterName == "" {
		inviterName = "Someone"
	}
	html, err := render(view{
		Heading: "You're invited to share a fridge",
		Body:    fmt.Sprintf("%s invited you to join %q.", inviterName, fridgeName),
		Action:  "Accept invitation",
		Link:    link,
		Footer:  fmt.Sprintf("This invitation expires in %d hours.", validHours),
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       to,
		FromName: inviterName,
		ReplyTo:  inviterEmail,
		Subject:  fmt.Sprintf("%s invited you to %q", inviterName, fridgeName),
		HTML:     html,
		Text:     fmt.Sprintf("%s invited you to join %q: %s", inviterName, fridgeName, link),
		Link:     link,
	}, nil
}

// AccountInvite renders the invitation to create an account and share.
func AccountInvite(to, inviterName, inviterEmail, fridgeName, link string, validHours int) (Message, error) {
	if inviterName == "" {
		inviterName = "Someone"
	}
	html, err := render(view{
		Heading: "Join your household's fridge",
		Body:    fmt.Sprintf("%s wants to share %q with you. Create your account to get started.", inviterName, fridgeName),
		Action:  "Create account",
		Link:    link,
		Footer:  fmt.Sprintf("This invitation expires in %d hours.", validHours),
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       to,
		FromName: inviterName,
		ReplyTo:  inviterEmail,
		Subject:  fmt.Sprintf("%s invited you to join %q", inviterName, fridgeName),
		HTML:     html,
		Text:     fmt.Sprintf("%s invited you to create an account and share %q: %s", inviterName, fridgeName, link),
		Link:     link,
	}, nil
}

// Verification renders the address confirmation mail.
func Verification(to, name, link string) (Message, error) {
	html, err := render(view{
		Heading: "Confirm your email",
		Body:    fmt.Sprintf("Hi %s, please confirm your email address to finish signing up.", name),
		Action:  "Verify email",
		Link:    link,
		Footer:  "The link is valid for 24 hours.",
	})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Verify your email", HTML: html, Link: link,
		Text: "Verify your email: " + link}, nil
}

// PasswordReset renders the reset mail.
func PasswordReset(to, link string) (Message, error) {
	html, err := render(view{
		Heading: "Reset your password",
		Body:    "We received a request to reset your password. If it wasn't you, ignore this mail.",
		Action:  "Choose a new password",
		Link:    link,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Reset your password", HTML: html, Link: link,
		Text: "Reset your password: " + link}, nil
}
