package hierarchy

import (
	"context"
	"time"
)

// Edge is a directed parent->child relationship between two departments.
// The edge set forms a DAG: multiple parents are allowed, cycles are not.
type Edge struct {
	ParentDepartmentID int64     `json:"parent_department_id" gorm:"primaryKey;column:parent_department_id"`
	ChildDepartmentID  int64     `json:"child_department_id" gorm:"primaryKey;column:child_department_id"`
	CreatedAt          time.Time `json:"created_at"`
}

func (Edge) TableName() string { return "department_hierarchy" }

// Repository is the persistence surface for hierarchy edges. InTx runs fn
// against a transaction-scoped repository; AddEdge relies on this so the
// cycle check and the insert cannot be interleaved with a concurrent
// insertion.
type Repository interface {
	EdgeExists(ctx context.Context, parentID, childID int64) (bool, error)
	CreateEdge(ctx context.Context, edge *Edge) error
	DeleteEdge(ctx context.Context, parentID, childID int64) error
	ParentIDs(ctx context.Context, childID int64) ([]int64, error)
	ChildIDs(ctx context.Context, parentID int64) ([]int64, error)
	ListEdges(ctx context.Context) ([]*Edge, error)
	DepartmentExists(ctx context.Context, id int64) (bool, error)
	InTx(ctx context.Context, fn func(Repository) error) error
}
