// Package notification turns user lifecycle events into emails. It hangs off
// the event bus so a slow or failing mail path never blocks a request.
package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/rahmatagung/user-management/internal/core/events"
)

// Sender delivers a rendered message. The default implementation only logs;
// a real SMTP or provider-backed sender can be swapped in at wiring time.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// LogSender writes outgoing mail to the structured log instead of sending
// it. Useful in development and as a safe default.
type LogSender struct {
	Logger *slog.Logger
}

func (s *LogSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	s.Logger.Info("outgoing email",
		"to", to,
		"subject", subject,
		"body_bytes", len(htmlBody),
	)
	return nil
}

type Service struct {
	sender Sender
	logger *slog.Logger
	tmpl   *template.Template
}

func NewService(sender Sender, logger *slog.Logger) (*Service, error) {
	tmpl, err := template.New("notification").Parse(mailTemplates)
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}

	return &Service{
		sender: sender,
		logger: logger,
		tmpl:   tmpl,
	}, nil
}

// Register subscribes the notification handlers to the event bus.
func (s *Service) Register(bus *events.EventBus) {
	bus.Subscribe(events.UserRegistered, s.handleUserRegistered)
	bus.Subscribe(events.UserRoleChanged, s.handleRoleChanged)
	bus.Subscribe(events.UserPasswordChanged, s.handlePasswordChanged)
}

func (s *Service) handleUserRegistered(ctx context.Context, event events.Event) error {
	data, ok := event.Payload().(map[string]interface{})
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.EventType())
	}

	return s.send(ctx, "welcome", data, "Welcome aboard")
}

func (s *Service) handleRoleChanged(ctx context.Context, event events.Event) error {
	data, ok := event.Payload().(map[string]interface{})
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.EventType())
	}

	return s.send(ctx, "role_changed", data, "Your role has changed")
}

func (s *Service) handlePasswordChanged(ctx context.Context, event events.Event) error {
	data, ok := event.Payload().(map[string]interface{})
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.EventType())
	}

	return s.send(ctx, "password_changed", data, "Your password was changed")
}

func (s *Service) send(ctx context.Context, templateName string, data map[string]interface{}, subject string) error {
	to, _ := data["email"].(string)
	if to == "" {
		return fmt.Errorf("event payload has no email address")
	}

	var body bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("render %s: %w", templateName, err)
	}

	if err := s.sender.Send(ctx, to, subject, body.String()); err != nil {
		return fmt.Errorf("send %s to %s: %w", templateName, to, err)
	}

	s.logger.Debug("notification sent", "template", templateName, "to", to)
	return nil
}

const mailTemplates = `
{{define "welcome"}}
<h2>Welcome, {{.username}}!</h2>
<p>Your account has been created. You can sign in with your email address.</p>
{{end}}

{{define "role_changed"}}
<h2>Hello {{.username}},</h2>
<p>Your role was changed from <strong>{{.previous_role}}</strong> to <strong>{{.new_role}}</strong> by {{.changed_by}}.</p>
<p>If this is unexpected, contact your administrator.</p>
{{end}}

{{define "password_changed"}}
<h2>Hello {{.username}},</h2>
<p>Your password was just changed.</p>
<p>If you did not do this, reset your password immediately and contact your administrator.</p>
{{end}}
`
