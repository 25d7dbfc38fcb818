package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	core "github.com/frahmantamala/org-directory/internal"
	"github.com/frahmantamala/org-directory/internal/department"
)

// DepartmentRepository implements department.Repository using GORM. The
// user cascades are bulk updates so a large department deletes in one
// statement per table.
type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) department.Repository {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*department.Department, error) {
	var d department.Department
	err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.NewNotFoundError(fmt.Sprintf("department not found with id: %d", id), core.ErrCodeDepartmentNotFound)
		}
		return nil, fmt.Errorf("query department by id: %w", err)
	}
	return &d, nil
}

func (r *DepartmentRepository) GetByName(ctx context.Context, name string) (*department.Department, error) {
	var d department.Department
	err := r.db.WithContext(ctx).First(&d, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.NewNotFoundError("department not found with name: "+name, core.ErrCodeDepartmentNotFound)
		}
		return nil, fmt.Errorf("query department by name: %w", err)
	}
	return &d, nil
}

func (r *DepartmentRepository) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&department.Department{}).Where("name = ?", name)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *DepartmentRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&department.Department{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Count(&count).Error
	return count > 0, err
}

func (r *DepartmentRepository) List(ctx context.Context) ([]*department.Department, error) {
	var depts []*department.Department
	err := r.db.WithContext(ctx).Where("deleted_at IS NULL").Order("id").Find(&depts).Error
	return depts, err
}

func (r *DepartmentRepository) ListByIDs(ctx context.Context, ids []int64) ([]*department.Department, error) {
	if len(ids) == 0 {
		return []*department.Department{}, nil
	}
	var depts []*department.Department
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&depts).Error
	return depts, err
}

func (r *DepartmentRepository) Create(ctx context.Context, d *department.Department) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DepartmentRepository) Update(ctx context.Context, d *department.Department) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *DepartmentRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&department.Department{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"deleted_at": at, "active": false}).Error
}

func (r *DepartmentRepository) HardDelete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&department.Department{}, "id = ?", id).Error
}

func (r *DepartmentRepository) SoftDeleteUsers(ctx context.Context, departmentID int64, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Table("users").
		Where("department_id = ? AND deleted_at IS NULL", departmentID).
		Updates(map[string]interface{}{"deleted_at": at, "enabled": false})
	return res.RowsAffected, res.Error
}

func (r *DepartmentRepository) HardDeleteUsers(ctx context.Context, departmentID int64) (int64, error) {
	res := r.db.WithContext(ctx).Exec("DELETE FROM users WHERE department_id = ?", departmentID)
	return res.RowsAffected, res.Error
}

func (r *DepartmentRepository) DeleteHierarchyEdges(ctx context.Context, departmentID int64) error {
	return r.db.WithContext(ctx).
		Exec("DELETE FROM department_hierarchy WHERE parent_department_id = ? OR child_department_id = ?", departmentID, departmentID).Error
}

func (r *DepartmentRepository) CompanyIsActive(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("companies").
		Where("id = ? AND active AND deleted_at IS NULL", id).
		Count(&count).Error
	return count > 0, err
}

func (r *DepartmentRepository) TypeExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&department.DepartmentType{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *DepartmentRepository) TownIsLive(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("towns").
		Where("id = ? AND deleted_at IS NULL", id).
		Count(&count).Error
	return count > 0, err
}

func (r *DepartmentRepository) ListTypes(ctx context.Context) ([]*department.DepartmentType, error) {
	var types []*department.DepartmentType
	err := r.db.WithContext(ctx).Order("id").Find(&types).Error
	return types, err
}

func (r *DepartmentRepository) InTx(ctx context.Context, fn func(department.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&DepartmentRepository{db: tx})
	})
}
