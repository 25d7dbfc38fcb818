package user

import (
	"context"
	"time"

	core "github.com/frahmantamala/org-directory/internal"
	"github.com/frahmantamala/org-directory/internal/authz"
)

// Role is the persisted role record; names are constrained to the closed
// set in core.Role.
type Role struct {
	ID   int64  `json:"id" gorm:"primaryKey"`
	Name string `json:"name"`
}

func (Role) TableName() string { return "roles" }

type User struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	PasswordHash *string    `json:"-" gorm:"column:password_hash"`
	RoleID       int64      `json:"-"`
	Role         Role       `json:"role" gorm:"foreignKey:RoleID"`
	DepartmentID int64      `json:"department_id"`
	Active       bool       `json:"active"`
	Enabled      bool       `json:"enabled"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "users" }

// State is derived from active/enabled/deleted_at, not stored.
type State string

const (
	StatePending  State = "pending"
	StateActive   State = "active"
	StateDisabled State = "disabled"
	StateDeleted  State = "deleted"
)

func (u *User) State() State {
	switch {
	case u.DeletedAt != nil:
		return StateDeleted
	case !u.Enabled:
		if !u.Active {
			return StatePending
		}
		return StateDisabled
	default:
		return StateActive
	}
}

func (u *User) RoleName() core.Role {
	return core.Role(u.Role.Name)
}

// Principal reduces the aggregate to the minimal target shape the
// authorization resolver works with.
func (u *User) Principal() authz.Target {
	return authz.Target{
		UserID:       u.ID,
		Role:         u.RoleName(),
		DepartmentID: u.DepartmentID,
	}
}

// Repository is the persistence surface for users and roles. Reads return
// soft-deleted records too; state checks belong to the service. InTx binds
// the check-and-set guards to the same transaction as the write.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	EmailExists(ctx context.Context, email string, excludeUserID int64) (bool, error)
	Update(ctx context.Context, u *User) error
	HardDelete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*User, error)
	ListByDepartmentIDs(ctx context.Context, departmentIDs []int64, limit, offset int) ([]*User, error)
	GetRoleByName(ctx context.Context, name core.Role) (*Role, error)
	GetRoleByID(ctx context.Context, id int64) (*Role, error)
	InTx(ctx context.Context, fn func(Repository) error) error
}

// DepartmentStore is the slice of the department domain the lifecycle
// service needs: existence of a live department.
type DepartmentStore interface {
	Exists(ctx context.Context, id int64) (bool, error)
}
