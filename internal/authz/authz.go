package authz

import (
	"context"

	core "github.com/frahmantamala/org-directory/internal"
)

// Action names an operation the resolver can authorize.
type Action string

const (
	ActionReadUser           Action = "user.read"
	ActionUpdateUser         Action = "user.update"
	ActionDeleteUser         Action = "user.delete"
	ActionHardDeleteUser     Action = "user.hard_delete"
	ActionMoveUserDepartment Action = "user.move_department"
	ActionChangeUserRole     Action = "user.change_role"

	ActionReadDepartment   Action = "department.read"
	ActionUpdateDepartment Action = "department.update"
	ActionDeleteDepartment Action = "department.delete"
)

// Target is the minimal principal shape the resolver needs: never the full
// user aggregate, just identity, role and department position.
type Target struct {
	UserID       int64
	Role         core.Role
	DepartmentID int64
}

// ScopeQuerier answers "which departments fall under this one". Implemented
// by the hierarchy service.
type ScopeQuerier interface {
	DescendantsIncludingSelf(ctx context.Context, departmentID int64) ([]int64, error)
}
