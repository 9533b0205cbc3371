// Package mail renders and delivers the transactional emails of the service.
package mail

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	texttemplate "text/template"
	"time"
)

type Kind string

const (
	KindVerifyEmail     Kind = "verify-email"
	KindResetPassword   Kind = "reset-password"
	KindWorkspaceInvite Kind = "workspace-invite"
)

var ErrUnknownKind = errors.New("mail: unknown kind")

// Message is a single email. Data must be the payload type of Kind.
type Message struct {
	Kind Kind
	To   string
	Data any
}

// Sender delivers messages. Callers treat a failed send as non-fatal.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type VerifyEmail struct {
	Name      string
	Code      string
	ExpiresIn time.Duration
}

type ResetPassword struct {
	Name      string
	Link      string
	ExpiresIn time.Duration
}

type WorkspaceInvite struct {
	InviterName   string
	WorkspaceName string
	Role          string
	Link          string
	ExpiresIn     time.Duration
}

//go:embed templates/*.html
var templateFS embed.FS

// Each template file defines a "subject" and an "html" block. Subjects are
// plain header text and go through text/template.
type kindTemplates struct {
	subject *texttemplate.Template
	html    *template.Template
}

var templates = map[Kind]kindTemplates{
	KindVerifyEmail:     mustParse("templates/verify-email.html"),
	KindResetPassword:   mustParse("templates/reset-password.html"),
	KindWorkspaceInvite: mustParse("templates/workspace-invite.html"),
}

func mustParse(name string) kindTemplates {
	funcs := map[string]any{"duration": humanDuration}
	return kindTemplates{
		subject: texttemplate.Must(texttemplate.New("").Funcs(funcs).ParseFS(templateFS, name)),
		html:    template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, name)),
	}
}

// Rendered is a message ready for a transport.
type Rendered struct {
	Subject string
	HTML    string
}

// Render executes the templates of msg.Kind against msg.Data.
func Render(msg Message) (Rendered, error) {
	tmpl, ok := templates[msg.Kind]
	if !ok {
		return Rendered{}, fmt.Errorf("%w: %q", ErrUnknownKind, msg.Kind)
	}
	if err := checkPayload(msg); err != nil {
		return Rendered{}, err
	}

	var subject, body bytes.Buffer
	if err := tmpl.subject.ExecuteTemplate(&subject, "subject", msg.Data); err != nil {
		return Rendered{}, fmt.Errorf("mail: render subject: %w", err)
	}
	if err := tmpl.html.ExecuteTemplate(&body, "html", msg.Data); err != nil {
		return Rendered{}, fmt.Errorf("mail: render body: %w", err)
	}
	return Rendered{Subject: subject.String(), HTML: body.String()}, nil
}

func checkPayload(msg Message) error {
	var ok bool
	switch msg.Kind {
	case KindVerifyEmail:
		_, ok = msg.Data.(VerifyEmail)
	case KindResetPassword:
		_, ok = msg.Data.(ResetPassword)
	case KindWorkspaceInvite:
		_, ok = msg.Data.(WorkspaceInvite)
	}
	if !ok {
		return fmt.Errorf("mail: payload %T does not match kind %q", msg.Data, msg.Kind)
	}
	return nil
}

func humanDuration(d time.Duration) string {
	plural := func(n int, unit string) string {
		if n == 1 {
			return "1 " + unit
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}

	switch {
	case d >= 24*time.Hour && d%(24*time.Hour) == 0:
		return plural(int(d/(24*time.Hour)), "day")
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	default:
		return plural(int(d/time.Minute), "minute")
	}
}
