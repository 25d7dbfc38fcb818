package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeUserRegistered     = "user.registered"
	EventTypeActivationResent   = "user.activation_resent"
	EventTypePasswordResetAsked = "user.password_reset_requested"
)

// NewUserRegisteredEvent fires after a pending user and its confirmation
// token have been committed; the email listener picks it up.
func NewUserRegisteredEvent(userID int64, email, token string) Event {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      EventTypeUserRegistered,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"user_id": userID,
			"email":   email,
			"token":   token,
		},
	}
}

func NewActivationResentEvent(userID int64, email, token string) Event {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      EventTypeActivationResent,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"user_id": userID,
			"email":   email,
			"token":   token,
		},
	}
}

func NewPasswordResetRequestedEvent(userID int64, email, token string) Event {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      EventTypePasswordResetAsked,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"user_id": userID,
			"email":   email,
			"token":   token,
		},
	}
}
