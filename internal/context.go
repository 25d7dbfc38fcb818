package internal

import (
	"context"
	"time"
)

// Caller is the authenticated principal resolved from the bearer token.
// It is threaded explicitly through every service call instead of being
// looked up from a global security context, so services stay testable
// without a simulated request pipeline.
type Caller struct {
	UserID       int64
	Email        string
	Role         Role
	DepartmentID int64
}

func (c Caller) IsAdmin() bool   { return c.Role == RoleAdmin }
func (c Caller) IsManager() bool { return c.Role == RoleManager }

type ctxKey string

const ContextCallerKey ctxKey = "caller"

func CallerFromContext(ctx context.Context) (Caller, bool) {
	if ctx == nil {
		return Caller{}, false
	}
	caller, ok := ctx.Value(ContextCallerKey).(Caller)
	return caller, ok
}

func ContextWithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, ContextCallerKey, caller)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
