package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	core "github.com/frahmantamala/org-directory/internal"
	"github.com/frahmantamala/org-directory/internal/user"
)

// ConfirmationToken is the single-use token mailed out for account
// activation and password resets. Expiry is checked lazily when the token
// is presented, never by a background job.
type ConfirmationToken struct {
	ID          int64      `json:"-" gorm:"primaryKey"`
	Token       string     `json:"token"`
	UserID      int64      `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
}

func (ConfirmationToken) TableName() string { return "confirmation_tokens" }

// validForActivation: unused, unexpired, and the account still awaits
// activation.
func (t *ConfirmationToken) validForActivation(u *user.User) *core.AppError {
	if err := t.usable(u); err != nil {
		return err
	}
	if u.Active {
		return core.NewConflictError("account is already active", core.ErrCodeAlreadyActive)
	}
	return nil
}

// validForPasswordReset: same checks minus the inactive requirement; an
// active user resets their password all the time.
func (t *ConfirmationToken) validForPasswordReset(u *user.User) *core.AppError {
	return t.usable(u)
}

func (t *ConfirmationToken) usable(u *user.User) *core.AppError {
	if t.ConfirmedAt != nil {
		return core.NewConflictError("token has already been used", core.ErrCodeAlreadyConfirmed)
	}
	if time.Now().After(t.ExpiresAt) {
		return core.ErrTokenExpired
	}
	if u.DeletedAt != nil {
		return core.ErrUserDeleted
	}
	return nil
}

// Repository is the persistence surface the auth service needs: users,
// roles, departments for placement checks, and confirmation tokens.
type Repository interface {
	GetUserByID(ctx context.Context, id int64) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, u *user.User) error
	UpdateUser(ctx context.Context, u *user.User) error
	GetRoleByName(ctx context.Context, name core.Role) (*user.Role, error)
	DepartmentExists(ctx context.Context, id int64) (bool, error)
	CreateToken(ctx context.Context, t *ConfirmationToken) error
	GetToken(ctx context.Context, token string) (*ConfirmationToken, error)
	UpdateToken(ctx context.Context, t *ConfirmationToken) error
	InTx(ctx context.Context, fn func(Repository) error) error
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims identify the account a token was issued to. The caller context
// is always rebuilt from the stored user row when a token is presented;
// the claims only say who to load.
type Claims struct {
	UserID       int64  `json:"user_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	DepartmentID int64  `json:"department_id"`
	jwt.RegisteredClaims
}

// TokenGenerator creates and validates the JWT pair.
type TokenGenerator interface {
	GenerateAccessToken(u *user.User) (string, error)
	GenerateRefreshToken(u *user.User) (string, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}
