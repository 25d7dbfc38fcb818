package authz

import (
	"context"
	"fmt"
	"log/slog"

	core "github.com/frahmantamala/org-directory/internal"
)

// Resolver is the pure authorization decision point. Every mutating
// operation asks it before touching the store; it reads the hierarchy but
// never writes anything. Rejections carry a specific human-readable reason
// that callers surface verbatim.
type Resolver struct {
	scope  ScopeQuerier
	logger *slog.Logger
}

func NewResolver(scope ScopeQuerier, logger *slog.Logger) *Resolver {
	return &Resolver{
		scope:  scope,
		logger: logger,
	}
}

// CanActOnUser decides whether caller may perform action on the target user.
// The decision is always a conjunction: role permits the action, the scope
// predicate holds, and target-specific guards (admin targets, self-delete)
// pass.
func (r *Resolver) CanActOnUser(ctx context.Context, caller core.Caller, action Action, target Target) error {
	switch caller.Role {
	case core.RoleAdmin:
		if deletesUser(action) && caller.UserID == target.UserID {
			return core.NewForbiddenError("you cannot delete your own account", core.ErrCodeSelfDelete)
		}
		return nil

	case core.RoleManager:
		if action == ActionHardDeleteUser {
			return core.NewForbiddenError("only admins can permanently delete users", core.ErrCodeInsufficientScope)
		}
		if deletesUser(action) && caller.UserID == target.UserID {
			return core.NewForbiddenError("you cannot delete your own account", core.ErrCodeSelfDelete)
		}
		if (deletesUser(action) || action == ActionChangeUserRole) && target.Role == core.RoleAdmin {
			return core.NewForbiddenError("you cannot delete or change the role of admin users", core.ErrCodeAdminTarget)
		}

		in, err := r.inScope(ctx, caller, target.DepartmentID)
		if err != nil {
			return err
		}
		if !in {
			r.logger.Warn("manager scope rejection",
				"caller_id", caller.UserID,
				"caller_department", caller.DepartmentID,
				"target_department", target.DepartmentID,
				"action", action)
			return core.NewForbiddenError("you can only act on users from your own department or its child departments", core.ErrCodeInsufficientScope)
		}
		return nil

	case core.RoleEmployee:
		if (action == ActionReadUser || action == ActionUpdateUser) && caller.UserID == target.UserID {
			return nil
		}
		return core.NewForbiddenError("employees may only manage their own profile", core.ErrCodeInsufficientScope)
	}

	return core.NewForbiddenError("unknown caller role", core.ErrCodeInvalidRole)
}

// CanActOnDepartment gates department reads/updates/deletes. Managers may
// read and update departments in scope; only admins delete.
func (r *Resolver) CanActOnDepartment(ctx context.Context, caller core.Caller, action Action, departmentID int64) error {
	switch caller.Role {
	case core.RoleAdmin:
		return nil

	case core.RoleManager:
		if action == ActionDeleteDepartment {
			return core.NewForbiddenError("only admins can delete departments", core.ErrCodeInsufficientScope)
		}
		in, err := r.inScope(ctx, caller, departmentID)
		if err != nil {
			return err
		}
		if !in {
			return core.NewForbiddenError("you can only act on your own department or its child departments", core.ErrCodeInsufficientScope)
		}
		return nil

	case core.RoleEmployee:
		return core.NewForbiddenError("employees cannot manage departments", core.ErrCodeInsufficientScope)
	}

	return core.NewForbiddenError("unknown caller role", core.ErrCodeInvalidRole)
}

// CanAssignRole guards role creation and role changes: a manager can never
// hand out the Admin role, to anyone.
func (r *Resolver) CanAssignRole(caller core.Caller, newRole core.Role) error {
	switch caller.Role {
	case core.RoleAdmin:
		return nil
	case core.RoleManager:
		if newRole == core.RoleAdmin {
			return core.NewForbiddenError("managers cannot assign the Admin role", core.ErrCodeAdminTarget)
		}
		return nil
	}
	return core.NewForbiddenError("you are not authorized to assign roles", core.ErrCodeInsufficientScope)
}

// CanPlaceInDepartment checks destination authority for registrations and
// department moves; it holds independently of the source-side check.
func (r *Resolver) CanPlaceInDepartment(ctx context.Context, caller core.Caller, departmentID int64) error {
	switch caller.Role {
	case core.RoleAdmin:
		return nil
	case core.RoleManager:
		in, err := r.inScope(ctx, caller, departmentID)
		if err != nil {
			return err
		}
		if !in {
			return core.NewForbiddenError("the target department is outside your scope", core.ErrCodeInsufficientScope)
		}
		return nil
	}
	return core.NewForbiddenError("you are not authorized to assign departments", core.ErrCodeInsufficientScope)
}

// CanListUsers gates the user listing endpoints; the listing itself is
// narrowed to the manager's subtree by the lifecycle service.
func (r *Resolver) CanListUsers(caller core.Caller) error {
	if caller.IsAdmin() || caller.IsManager() {
		return nil
	}
	return core.NewForbiddenError("you are not authorized to read users", core.ErrCodeInsufficientScope)
}

func (r *Resolver) inScope(ctx context.Context, caller core.Caller, departmentID int64) (bool, error) {
	if departmentID == caller.DepartmentID {
		return true, nil
	}
	scope, err := r.scope.DescendantsIncludingSelf(ctx, caller.DepartmentID)
	if err != nil {
		return false, core.NewInternalError(fmt.Sprintf("resolve scope of department %d", caller.DepartmentID), err)
	}
	for _, id := range scope {
		if id == departmentID {
			return true, nil
		}
	}
	return false, nil
}

func deletesUser(action Action) bool {
	return action == ActionDeleteUser || action == ActionHardDeleteUser
}
