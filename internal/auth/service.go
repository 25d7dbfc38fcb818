package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	core "github.com/frahmantamala/org-directory/internal"
	"github.com/frahmantamala/org-directory/internal/authz"
	"github.com/frahmantamala/org-directory/internal/core/events"
	"github.com/frahmantamala/org-directory/internal/user"
)

// Service covers registration, activation, login, token refresh and the
// password-reset flow. New accounts start pending: no password, inactive,
// disabled. The confirmation email carries a single-use token; presenting
// it with a password activates the account.
type Service struct {
	repo            Repository
	tokens          TokenGenerator
	resolver        *authz.Resolver
	bus             *events.EventBus
	bcryptCost      int
	confirmationTTL time.Duration
	logger          *slog.Logger
}

func NewService(repo Repository, tokens TokenGenerator, resolver *authz.Resolver, bus *events.EventBus, cfg core.SecurityConfig, logger *slog.Logger) *Service {
	cost := cfg.BCryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	ttl := cfg.ConfirmationTokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		repo:            repo,
		tokens:          tokens,
		resolver:        resolver,
		bus:             bus,
		bcryptCost:      cost,
		confirmationTTL: ttl,
		logger:          logger,
	}
}

// Register is the self-service path: anyone may create a pending Employee
// account. Privileged roles can only be granted through RegisterByManager.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*user.User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	role, err := requestedRole(dto.RoleName)
	if err != nil {
		return nil, err
	}
	if role != core.RoleEmployee {
		return nil, core.NewForbiddenError("self-service registration can only create Employee accounts", core.ErrCodeInsufficientScope)
	}

	return s.createPendingUser(ctx, dto.Email, dto.FirstName, dto.LastName, dto.DepartmentID, role)
}

// RegisterByManager creates an account on behalf of someone else. The
// caller needs authority over both the requested role and the destination
// department; an omitted department defaults to the caller's own.
func (s *Service) RegisterByManager(ctx context.Context, caller core.Caller, dto RegisterByManagerDTO) (*user.User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	role, err := requestedRole(dto.RoleName)
	if err != nil {
		return nil, err
	}
	if err := s.resolver.CanAssignRole(caller, role); err != nil {
		return nil, err
	}

	departmentID := dto.DepartmentID
	if departmentID == 0 {
		departmentID = caller.DepartmentID
	}
	if err := s.resolver.CanPlaceInDepartment(ctx, caller, departmentID); err != nil {
		return nil, err
	}

	created, regErr := s.createPendingUser(ctx, dto.Email, dto.FirstName, dto.LastName, departmentID, role)
	if regErr != nil {
		return nil, regErr
	}
	s.logger.Info("user registered by manager", "user_id", created.ID, "caller_id", caller.UserID, "role", role)
	return created, nil
}

func (s *Service) createPendingUser(ctx context.Context, email, firstName, lastName string, departmentID int64, role core.Role) (*user.User, error) {
	var created *user.User
	var token *ConfirmationToken

	err := s.repo.InTx(ctx, func(tx Repository) error {
		taken, err := tx.EmailExists(ctx, email)
		if err != nil {
			return fmt.Errorf("check email uniqueness: %w", err)
		}
		if taken {
			return core.NewConflictError("email already in use", core.ErrCodeEmailInUse)
		}

		exists, err := tx.DepartmentExists(ctx, departmentID)
		if err != nil {
			return fmt.Errorf("check department existence: %w", err)
		}
		if !exists {
			return core.NewNotFoundError(fmt.Sprintf("department not found with id: %d", departmentID), core.ErrCodeDepartmentNotFound)
		}

		record, err := tx.GetRoleByName(ctx, role)
		if err != nil {
			return err
		}

		u := &user.User{
			Email:        email,
			FirstName:    firstName,
			LastName:     lastName,
			RoleID:       record.ID,
			Role:         *record,
			DepartmentID: departmentID,
			Active:       false,
			Enabled:      false,
			CreatedAt:    time.Now(),
		}
		if err := tx.CreateUser(ctx, u); err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		token = s.newConfirmationToken(u.ID)
		if err := tx.CreateToken(ctx, token); err != nil {
			return fmt.Errorf("create confirmation token: %w", err)
		}

		created = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.NewUserRegisteredEvent(created.ID, created.Email, token.Token))
	s.logger.Info("user registered", "user_id", created.ID, "department_id", departmentID)
	return created, nil
}

// Authenticate verifies credentials and account state, then issues the
// token pair. A missing user and a wrong password are indistinguishable to
// the caller.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	u, err := s.repo.GetUserByEmail(ctx, dto.Email)
	if err != nil {
		return AuthTokens{}, core.ErrInvalidCredentials
	}
	if u.PasswordHash == nil {
		return AuthTokens{}, core.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(dto.Password)); err != nil {
		return AuthTokens{}, core.ErrInvalidCredentials
	}
	if err := loginableState(u); err != nil {
		return AuthTokens{}, err
	}

	return s.issueTokens(u)
}

// RefreshTokens re-checks the account state so a refresh token outlives
// neither a disable nor a delete.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	u, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return AuthTokens{}, core.ErrInvalidToken
	}
	if err := loginableState(u); err != nil {
		return AuthTokens{}, err
	}

	return s.issueTokens(u)
}

// CheckActivation validates a mailed activation token without consuming
// it, so the activation page can reject dead links before asking for a
// password.
func (s *Service) CheckActivation(ctx context.Context, token string) error {
	if token == "" {
		return core.ErrInvalidToken
	}
	record, err := s.repo.GetToken(ctx, token)
	if err != nil {
		return err
	}
	u, err := s.repo.GetUserByID(ctx, record.UserID)
	if err != nil {
		return err
	}
	if appErr := record.validForActivation(u); appErr != nil {
		return appErr
	}
	return nil
}

// Confirm consumes the activation token, sets the chosen password and
// flips the account to active. Token consumption and the user write share
// one transaction so a token can never activate two requests.
func (s *Service) Confirm(ctx context.Context, dto ConfirmDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return AuthTokens{}, core.NewInternalError("hash password", err)
	}

	var activated *user.User
	err = s.repo.InTx(ctx, func(tx Repository) error {
		record, err := tx.GetToken(ctx, dto.Token)
		if err != nil {
			return err
		}
		u, err := tx.GetUserByID(ctx, record.UserID)
		if err != nil {
			return err
		}
		if appErr := record.validForActivation(u); appErr != nil {
			return appErr
		}
		if u.Email != dto.Email {
			return core.ErrInvalidToken
		}

		hashStr := string(hash)
		u.PasswordHash = &hashStr
		u.Active = true
		u.Enabled = true
		if err := tx.UpdateUser(ctx, u); err != nil {
			return fmt.Errorf("persist activation: %w", err)
		}

		now := time.Now()
		record.ConfirmedAt = &now
		if err := tx.UpdateToken(ctx, record); err != nil {
			return fmt.Errorf("consume confirmation token: %w", err)
		}

		activated = u
		return nil
	})
	if err != nil {
		return AuthTokens{}, err
	}

	s.logger.Info("account activated", "user_id", activated.ID)
	return s.issueTokens(activated)
}

// ResendActivation issues a fresh token for a still-pending account.
func (s *Service) ResendActivation(ctx context.Context, email string) error {
	if err := (EmailDTO{Email: email}).Validate(); err != nil {
		return err
	}

	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u.DeletedAt != nil {
		return core.ErrUserDeleted
	}
	if u.Active {
		return core.NewConflictError("account is already active", core.ErrCodeAlreadyActive)
	}

	token := s.newConfirmationToken(u.ID)
	if err := s.repo.CreateToken(ctx, token); err != nil {
		return fmt.Errorf("create confirmation token: %w", err)
	}

	s.bus.Publish(ctx, events.NewActivationResentEvent(u.ID, u.Email, token.Token))
	s.logger.Info("activation resent", "user_id", u.ID)
	return nil
}

// ForgotPassword issues a reset token for an active account.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	if err := (EmailDTO{Email: email}).Validate(); err != nil {
		return err
	}

	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u.DeletedAt != nil {
		return core.ErrUserDeleted
	}
	if !u.Active {
		return core.ErrUserInactive
	}

	token := s.newConfirmationToken(u.ID)
	if err := s.repo.CreateToken(ctx, token); err != nil {
		return fmt.Errorf("create confirmation token: %w", err)
	}

	s.bus.Publish(ctx, events.NewPasswordResetRequestedEvent(u.ID, u.Email, token.Token))
	s.logger.Info("password reset requested", "user_id", u.ID)
	return nil
}

// ResetPassword consumes a reset token and stores the new password.
func (s *Service) ResetPassword(ctx context.Context, dto ResetPasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return core.NewInternalError("hash password", err)
	}

	var userID int64
	err = s.repo.InTx(ctx, func(tx Repository) error {
		record, err := tx.GetToken(ctx, dto.Token)
		if err != nil {
			return err
		}
		u, err := tx.GetUserByID(ctx, record.UserID)
		if err != nil {
			return err
		}
		if appErr := record.validForPasswordReset(u); appErr != nil {
			return appErr
		}

		hashStr := string(hash)
		u.PasswordHash = &hashStr
		if err := tx.UpdateUser(ctx, u); err != nil {
			return fmt.Errorf("persist new password: %w", err)
		}

		now := time.Now()
		record.ConfirmedAt = &now
		if err := tx.UpdateToken(ctx, record); err != nil {
			return fmt.Errorf("consume confirmation token: %w", err)
		}

		userID = u.ID
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("password reset", "user_id", userID)
	return nil
}

// ValidateSession checks the access token and then re-validates the
// account against the store, so a soft delete or disable cuts off access
// immediately instead of when the token expires. The caller is built from
// the fresh row, which also picks up role and department changes made
// after the token was issued.
func (s *Service) ValidateSession(ctx context.Context, tokenString string) (core.Caller, error) {
	claims, err := s.tokens.ValidateAccessToken(tokenString)
	if err != nil {
		return core.Caller{}, err
	}

	u, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return core.Caller{}, core.ErrInvalidToken
	}
	if err := loginableState(u); err != nil {
		return core.Caller{}, err
	}

	return core.Caller{
		UserID:       u.ID,
		Email:        u.Email,
		Role:         u.RoleName(),
		DepartmentID: u.DepartmentID,
	}, nil
}

func (s *Service) issueTokens(u *user.User) (AuthTokens, error) {
	access, err := s.tokens.GenerateAccessToken(u)
	if err != nil {
		return AuthTokens{}, core.NewInternalError("sign access token", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(u)
	if err != nil {
		return AuthTokens{}, core.NewInternalError("sign refresh token", err)
	}
	return AuthTokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) newConfirmationToken(userID int64) *ConfirmationToken {
	now := time.Now()
	return &ConfirmationToken{
		Token:     uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.confirmationTTL),
	}
}

func requestedRole(name string) (core.Role, *core.AppError) {
	if name == "" {
		return core.RoleEmployee, nil
	}
	return core.ParseRole(name)
}

func loginableState(u *user.User) error {
	switch u.State() {
	case user.StateDeleted:
		return core.ErrUserDeleted
	case user.StatePending:
		return core.ErrUserInactive
	case user.StateDisabled:
		return core.ErrUserDisabled
	}
	return nil
}
