package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	core "github.com/frahmantamala/org-directory/internal"
	"github.com/frahmantamala/org-directory/internal/authz"
	"github.com/frahmantamala/org-directory/internal/core/validation"
)

// Service is the user lifecycle manager. Every mutating operation asks the
// resolver first; only on approval does it mutate and persist, with the
// no-op and already-deleted guards re-checked inside the transaction.
type Service struct {
	repo        Repository
	resolver    *authz.Resolver
	scope       authz.ScopeQuerier
	departments DepartmentStore
	logger      *slog.Logger
}

func NewService(repo Repository, resolver *authz.Resolver, scope authz.ScopeQuerier, departments DepartmentStore, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		resolver:    resolver,
		scope:       scope,
		departments: departments,
		logger:      logger,
	}
}

func (s *Service) GetSelf(ctx context.Context, caller core.Caller) (*User, error) {
	return s.repo.GetByID(ctx, caller.UserID)
}

func (s *Service) GetByID(ctx context.Context, caller core.Caller, id int64) (*User, error) {
	if id <= 0 {
		return nil, core.NewValidationError("user id must be positive", core.ErrCodeInvalidID)
	}
	if err := s.resolver.CanListUsers(caller); err != nil {
		return nil, err
	}

	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.resolver.CanActOnUser(ctx, caller, authz.ActionReadUser, target.Principal()); err != nil {
		return nil, err
	}
	return target, nil
}

// List returns all users for admins and the caller's subtree for managers.
func (s *Service) List(ctx context.Context, caller core.Caller, page, size int) ([]*User, error) {
	if err := s.resolver.CanListUsers(caller); err != nil {
		return nil, err
	}
	if size <= 0 {
		size = 10
	}
	if page < 0 {
		page = 0
	}
	offset := page * size

	if caller.IsManager() {
		departmentIDs, err := s.scope.DescendantsIncludingSelf(ctx, caller.DepartmentID)
		if err != nil {
			return nil, core.NewInternalError("resolve manager scope", err)
		}
		return s.repo.ListByDepartmentIDs(ctx, departmentIDs, size, offset)
	}

	return s.repo.List(ctx, size, offset)
}

// ListByDepartment serves the manager endpoints for a single department,
// optionally widened to the department's subtree.
func (s *Service) ListByDepartment(ctx context.Context, caller core.Caller, departmentID int64, includeChildren bool) ([]*User, error) {
	if departmentID <= 0 {
		return nil, core.NewValidationError("department id must be positive", core.ErrCodeInvalidID)
	}
	if err := s.resolver.CanActOnDepartment(ctx, caller, authz.ActionReadDepartment, departmentID); err != nil {
		return nil, err
	}

	departmentIDs := []int64{departmentID}
	if includeChildren {
		var err error
		departmentIDs, err = s.scope.DescendantsIncludingSelf(ctx, departmentID)
		if err != nil {
			return nil, core.NewInternalError("resolve department subtree", err)
		}
	}
	return s.repo.ListByDepartmentIDs(ctx, departmentIDs, 0, 0)
}

// UpdateSelf is the self-service profile path: it skips the department
// scope check but can never change role or department, and a deleted
// account cannot reactivate itself.
func (s *Service) UpdateSelf(ctx context.Context, caller core.Caller, dto UpdateSelfDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var updated *User
	err := s.repo.InTx(ctx, func(tx Repository) error {
		u, err := tx.GetByID(ctx, caller.UserID)
		if err != nil {
			return err
		}
		if u.DeletedAt != nil {
			return core.ErrUserDeleted
		}

		if dto.Email != nil && *dto.Email != u.Email {
			if err := s.emailMustBeFree(ctx, tx, *dto.Email, u.ID); err != nil {
				return err
			}
			u.Email = *dto.Email
		}
		if dto.FirstName != nil {
			u.FirstName = *dto.FirstName
		}
		if dto.LastName != nil {
			u.LastName = *dto.LastName
		}
		if dto.Enabled != nil {
			u.Enabled = *dto.Enabled
		}

		if err := tx.Update(ctx, u); err != nil {
			return fmt.Errorf("persist self update: %w", err)
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user updated own profile", "user_id", caller.UserID)
	return updated, nil
}

// Update applies an admin/manager edit to another user: names, email,
// enabled flag, and optionally department and role, each with its own
// authority and no-op guard.
func (s *Service) Update(ctx context.Context, caller core.Caller, dto UpdateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var updated *User
	err := s.repo.InTx(ctx, func(tx Repository) error {
		target, err := tx.GetByID(ctx, dto.UserID)
		if err != nil {
			return err
		}
		if err := s.resolver.CanActOnUser(ctx, caller, authz.ActionUpdateUser, target.Principal()); err != nil {
			return err
		}
		if target.DeletedAt != nil {
			return core.NewConflictError("user is deleted and cannot be updated", core.ErrCodeAlreadyDeleted)
		}
		// A disabled account only accepts the update that re-enables it.
		if !target.Enabled && (dto.Enabled == nil || !*dto.Enabled) {
			return core.NewConflictError("user is disabled; re-enable the account first", core.ErrCodeUserDisabled)
		}

		if dto.Email != nil && *dto.Email != target.Email {
			if err := s.emailMustBeFree(ctx, tx, *dto.Email, target.ID); err != nil {
				return err
			}
			target.Email = *dto.Email
		}
		if dto.FirstName != nil {
			target.FirstName = *dto.FirstName
		}
		if dto.LastName != nil {
			target.LastName = *dto.LastName
		}
		if dto.Enabled != nil {
			target.Enabled = *dto.Enabled
		}

		if dto.DepartmentID != nil {
			if err := s.applyDepartmentChange(ctx, tx, caller, target, *dto.DepartmentID); err != nil {
				return err
			}
		}
		if dto.RoleName != nil {
			role, err := core.ParseRole(*dto.RoleName)
			if err != nil {
				return err
			}
			if err := s.applyRoleChange(ctx, tx, caller, target, role); err != nil {
				return err
			}
		}

		if err := tx.Update(ctx, target); err != nil {
			return fmt.Errorf("persist user update: %w", err)
		}
		updated = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user updated", "user_id", dto.UserID, "caller_id", caller.UserID)
	return updated, nil
}

// MoveDepartment reassigns a user to another department. Authority must
// hold on both sides: over the user where they are now, and over the
// destination department.
func (s *Service) MoveDepartment(ctx context.Context, caller core.Caller, userID, departmentID int64) (*User, error) {
	if userID <= 0 || departmentID <= 0 {
		return nil, core.NewValidationError("user id and department id must be positive", core.ErrCodeInvalidID)
	}

	var moved *User
	err := s.repo.InTx(ctx, func(tx Repository) error {
		target, err := tx.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := s.resolver.CanActOnUser(ctx, caller, authz.ActionMoveUserDepartment, target.Principal()); err != nil {
			return err
		}
		if target.DeletedAt != nil {
			return core.NewConflictError("user is deleted and cannot be moved", core.ErrCodeAlreadyDeleted)
		}
		if err := s.applyDepartmentChange(ctx, tx, caller, target, departmentID); err != nil {
			return err
		}
		if err := tx.Update(ctx, target); err != nil {
			return fmt.Errorf("persist department move: %w", err)
		}
		moved = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user moved department", "user_id", userID, "department_id", departmentID, "caller_id", caller.UserID)
	return moved, nil
}

// ChangeRole assigns a different role to the target user.
func (s *Service) ChangeRole(ctx context.Context, caller core.Caller, userID int64, roleName string) (*User, error) {
	if userID <= 0 {
		return nil, core.NewValidationError("user id must be positive", core.ErrCodeInvalidID)
	}
	if err := validation.IsValidRoleName(roleName); err != nil {
		return nil, err
	}
	role, appErr := core.ParseRole(roleName)
	if appErr != nil {
		return nil, appErr
	}

	var changed *User
	err := s.repo.InTx(ctx, func(tx Repository) error {
		target, err := tx.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := s.resolver.CanActOnUser(ctx, caller, authz.ActionChangeUserRole, target.Principal()); err != nil {
			return err
		}
		if target.DeletedAt != nil {
			return core.NewConflictError("user is deleted and cannot change role", core.ErrCodeAlreadyDeleted)
		}
		if err := s.applyRoleChange(ctx, tx, caller, target, role); err != nil {
			return err
		}
		if err := tx.Update(ctx, target); err != nil {
			return fmt.Errorf("persist role change: %w", err)
		}
		changed = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user role changed", "user_id", userID, "role", role, "caller_id", caller.UserID)
	return changed, nil
}

// SoftDelete marks the user deleted and disabled. The already-deleted
// guard runs in the same transaction as the write so concurrent duplicate
// requests cannot both succeed.
func (s *Service) SoftDelete(ctx context.Context, caller core.Caller, userID int64) (*User, error) {
	if userID <= 0 {
		return nil, core.NewValidationError("user id must be positive", core.ErrCodeInvalidID)
	}
	if caller.UserID == userID {
		return nil, core.NewForbiddenError("you cannot delete your own account", core.ErrCodeSelfDelete)
	}

	var deleted *User
	err := s.repo.InTx(ctx, func(tx Repository) error {
		target, err := tx.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := s.resolver.CanActOnUser(ctx, caller, authz.ActionDeleteUser, target.Principal()); err != nil {
			return err
		}
		if target.DeletedAt != nil || !target.Enabled {
			return core.NewConflictError("user is already deleted", core.ErrCodeAlreadyDeleted)
		}

		now := time.Now()
		target.DeletedAt = &now
		target.Enabled = false
		if err := tx.Update(ctx, target); err != nil {
			return fmt.Errorf("persist soft delete: %w", err)
		}
		deleted = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user soft deleted", "user_id", userID, "caller_id", caller.UserID)
	return deleted, nil
}

// HardDelete removes the row entirely. Admin only.
func (s *Service) HardDelete(ctx context.Context, caller core.Caller, userID int64) error {
	if userID <= 0 {
		return core.NewValidationError("user id must be positive", core.ErrCodeInvalidID)
	}
	if caller.UserID == userID {
		return core.NewForbiddenError("you cannot delete your own account", core.ErrCodeSelfDelete)
	}

	err := s.repo.InTx(ctx, func(tx Repository) error {
		target, err := tx.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := s.resolver.CanActOnUser(ctx, caller, authz.ActionHardDeleteUser, target.Principal()); err != nil {
			return err
		}
		return tx.HardDelete(ctx, userID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("user hard deleted", "user_id", userID, "caller_id", caller.UserID)
	return nil
}

func (s *Service) applyDepartmentChange(ctx context.Context, tx Repository, caller core.Caller, target *User, departmentID int64) error {
	if target.DepartmentID == departmentID {
		return core.NewConflictError("user is already in that department", core.ErrCodeAlreadyInState)
	}
	if err := s.resolver.CanPlaceInDepartment(ctx, caller, departmentID); err != nil {
		return err
	}
	exists, err := s.departments.Exists(ctx, departmentID)
	if err != nil {
		return core.NewInternalError("check department existence", err)
	}
	if !exists {
		return core.NewNotFoundError(fmt.Sprintf("department not found with id: %d", departmentID), core.ErrCodeDepartmentNotFound)
	}
	target.DepartmentID = departmentID
	return nil
}

func (s *Service) applyRoleChange(ctx context.Context, tx Repository, caller core.Caller, target *User, role core.Role) error {
	if target.RoleName() == role {
		return core.NewConflictError("user already has that role", core.ErrCodeAlreadyInState)
	}
	if err := s.resolver.CanAssignRole(caller, role); err != nil {
		return err
	}
	record, err := tx.GetRoleByName(ctx, role)
	if err != nil {
		return err
	}
	target.RoleID = record.ID
	target.Role = *record
	return nil
}

func (s *Service) emailMustBeFree(ctx context.Context, tx Repository, email string, excludeUserID int64) error {
	if err := validation.IsValidEmail(email); err != nil {
		return err
	}
	taken, err := tx.EmailExists(ctx, email, excludeUserID)
	if err != nil {
		return fmt.Errorf("check email uniqueness: %w", err)
	}
	if taken {
		return core.NewConflictError("email already in use", core.ErrCodeEmailInUse)
	}
	return nil
}
