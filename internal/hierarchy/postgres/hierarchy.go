package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/frahmantamala/org-directory/internal/hierarchy"
)

// HierarchyRepository implements hierarchy.Repository using GORM.
type HierarchyRepository struct {
	db *gorm.DB
}

func NewHierarchyRepository(db *gorm.DB) hierarchy.Repository {
	return &HierarchyRepository{db: db}
}

func (r *HierarchyRepository) EdgeExists(ctx context.Context, parentID, childID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&hierarchy.Edge{}).
		Where("parent_department_id = ? AND child_department_id = ?", parentID, childID).
		Count(&count).Error
	return count > 0, err
}

func (r *HierarchyRepository) CreateEdge(ctx context.Context, edge *hierarchy.Edge) error {
	return r.db.WithContext(ctx).Create(edge).Error
}

func (r *HierarchyRepository) DeleteEdge(ctx context.Context, parentID, childID int64) error {
	return r.db.WithContext(ctx).
		Where("parent_department_id = ? AND child_department_id = ?", parentID, childID).
		Delete(&hierarchy.Edge{}).Error
}

func (r *HierarchyRepository) ParentIDs(ctx context.Context, childID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&hierarchy.Edge{}).
		Where("child_department_id = ?", childID).
		Pluck("parent_department_id", &ids).Error
	return ids, err
}

func (r *HierarchyRepository) ChildIDs(ctx context.Context, parentID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&hierarchy.Edge{}).
		Where("parent_department_id = ?", parentID).
		Pluck("child_department_id", &ids).Error
	return ids, err
}

func (r *HierarchyRepository) ListEdges(ctx context.Context) ([]*hierarchy.Edge, error) {
	var edges []*hierarchy.Edge
	err := r.db.WithContext(ctx).
		Order("parent_department_id, child_department_id").
		Find(&edges).Error
	return edges, err
}

func (r *HierarchyRepository) DepartmentExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("departments").
		Where("id = ? AND deleted_at IS NULL", id).
		Count(&count).Error
	return count > 0, err
}

// InTx runs fn against a repository bound to a single transaction so the
// cycle check and edge write cannot interleave with concurrent inserts.
func (r *HierarchyRepository) InTx(ctx context.Context, fn func(hierarchy.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&HierarchyRepository{db: tx})
	})
}
