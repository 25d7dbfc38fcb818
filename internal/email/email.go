package email

import (
	"context"
	"fmt"
)

// Sender delivers a pre-rendered HTML body to a single recipient.
// Delivery failures are logged by callers and never propagated to the
// request that triggered them.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

func activationBody(link string) string {
	return fmt.Sprintf(`<p>Click the link to activate your account:</p><a href="%s">%s</a>`, link, link)
}

func passwordResetBody(link string) string {
	return fmt.Sprintf(`<p>Click the link to reset your password:</p><a href="%s">%s</a>`, link, link)
}

func ActivationLink(baseURL, token string) string {
	return baseURL + "/api/v1/auth/activation?token=" + token
}

func PasswordResetLink(baseURL, token string) string {
	return baseURL + "/api/v1/auth/activate-forgot-password?token=" + token
}
