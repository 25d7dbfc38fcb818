package email

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/org-directory/internal/core/events"
)

// Listener subscribes to user lifecycle events and sends the matching
// email. It runs off the event bus so a failed delivery can never roll
// back the user record that triggered it.
type Listener struct {
	sender  Sender
	baseURL string
	logger  *slog.Logger
}

func NewListener(sender Sender, baseURL string, logger *slog.Logger) *Listener {
	return &Listener{
		sender:  sender,
		baseURL: baseURL,
		logger:  logger,
	}
}

func (l *Listener) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeUserRegistered, l.handleActivation)
	bus.Subscribe(events.EventTypeActivationResent, l.handleActivation)
	bus.Subscribe(events.EventTypePasswordResetAsked, l.handlePasswordReset)
}

func (l *Listener) handleActivation(ctx context.Context, event events.Event) error {
	address, token, ok := l.recipient(event)
	if !ok {
		return nil
	}

	link := ActivationLink(l.baseURL, token)
	if err := l.sender.Send(ctx, address, "Activate your account", activationBody(link)); err != nil {
		l.logger.Error("activation email failed", "event_id", event.EventID(), "error", err)
	}
	return nil
}

func (l *Listener) handlePasswordReset(ctx context.Context, event events.Event) error {
	address, token, ok := l.recipient(event)
	if !ok {
		return nil
	}

	link := PasswordResetLink(l.baseURL, token)
	if err := l.sender.Send(ctx, address, "Reset your password", passwordResetBody(link)); err != nil {
		l.logger.Error("password reset email failed", "event_id", event.EventID(), "error", err)
	}
	return nil
}

func (l *Listener) recipient(event events.Event) (address, token string, ok bool) {
	data, isMap := event.Payload().(map[string]interface{})
	if !isMap {
		l.logger.Warn("email event with unexpected payload", "event_id", event.EventID())
		return "", "", false
	}
	address, _ = data["email"].(string)
	token, _ = data["token"].(string)
	if address == "" || token == "" {
		l.logger.Warn("email event missing recipient or token", "event_id", event.EventID())
		return "", "", false
	}
	return address, token, true
}
