package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	core "github.com/frahmantamala/org-directory/internal"
	"github.com/frahmantamala/org-directory/internal/user"
)

// UserRepository implements user.Repository using GORM. Single-record
// lookups include soft-deleted rows so the service can run its lifecycle
// guards; listings exclude them.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).Preload("Role").First(&u, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.NewNotFoundError(fmt.Sprintf("user not found with id: %d", id), core.ErrCodeUserNotFound)
		}
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).Preload("Role").First(&u, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.NewNotFoundError("user not found with email: "+email, core.ErrCodeUserNotFound)
		}
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string, excludeUserID int64) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&user.User{}).Where("email = ?", email)
	if excludeUserID > 0 {
		q = q.Where("id <> ?", excludeUserID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	return r.db.WithContext(ctx).Omit("Role").Save(u).Error
}

func (r *UserRepository) HardDelete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&user.User{}, "id = ?", id).Error
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*user.User, error) {
	var users []*user.User
	q := r.db.WithContext(ctx).Preload("Role").
		Where("deleted_at IS NULL").
		Order("id")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	err := q.Find(&users).Error
	return users, err
}

func (r *UserRepository) ListByDepartmentIDs(ctx context.Context, departmentIDs []int64, limit, offset int) ([]*user.User, error) {
	if len(departmentIDs) == 0 {
		return []*user.User{}, nil
	}
	var users []*user.User
	q := r.db.WithContext(ctx).Preload("Role").
		Where("department_id IN ?", departmentIDs).
		Where("deleted_at IS NULL").
		Order("id")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	err := q.Find(&users).Error
	return users, err
}

func (r *UserRepository) GetRoleByName(ctx context.Context, name core.Role) (*user.Role, error) {
	var role user.Role
	err := r.db.WithContext(ctx).First(&role, "name = ?", string(name)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.NewNotFoundError("role not found: "+string(name), core.ErrCodeRoleNotFound)
		}
		return nil, fmt.Errorf("query role by name: %w", err)
	}
	return &role, nil
}

func (r *UserRepository) GetRoleByID(ctx context.Context, id int64) (*user.Role, error) {
	var role user.Role
	err := r.db.WithContext(ctx).First(&role, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.NewNotFoundError(fmt.Sprintf("role not found with id: %d", id), core.ErrCodeRoleNotFound)
		}
		return nil, fmt.Errorf("query role by id: %w", err)
	}
	return &role, nil
}

func (r *UserRepository) InTx(ctx context.Context, fn func(user.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UserRepository{db: tx})
	})
}
