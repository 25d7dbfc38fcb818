package department

import (
	"context"
	"time"
)

// DepartmentType is a lookup table (office, warehouse, branch, ...).
type DepartmentType struct {
	ID   int64  `json:"id" gorm:"primaryKey"`
	Name string `json:"name"`
}

func (DepartmentType) TableName() string { return "department_types" }

type Department struct {
	ID        int64      `json:"id" gorm:"primaryKey"`
	Name      string     `json:"name"`
	CompanyID int64      `json:"company_id"`
	TypeID    int64      `json:"type_id"`
	TownID    int64      `json:"town_id"`
	Address   string     `json:"address"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (Department) TableName() string { return "departments" }

// Repository persists departments and performs the user-side cascades.
// The existence checks against companies, towns and department types read
// those tables directly so this package does not depend on their services.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Department, error)
	GetByName(ctx context.Context, name string) (*Department, error)
	NameExists(ctx context.Context, name string, excludeID int64) (bool, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]*Department, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*Department, error)
	Create(ctx context.Context, d *Department) error
	Update(ctx context.Context, d *Department) error
	SoftDelete(ctx context.Context, id int64, at time.Time) error
	HardDelete(ctx context.Context, id int64) error
	SoftDeleteUsers(ctx context.Context, departmentID int64, at time.Time) (int64, error)
	HardDeleteUsers(ctx context.Context, departmentID int64) (int64, error)
	DeleteHierarchyEdges(ctx context.Context, departmentID int64) error

	CompanyIsActive(ctx context.Context, id int64) (bool, error)
	TypeExists(ctx context.Context, id int64) (bool, error)
	TownIsLive(ctx context.Context, id int64) (bool, error)

	ListTypes(ctx context.Context) ([]*DepartmentType, error)

	InTx(ctx context.Context, fn func(Repository) error) error
}
