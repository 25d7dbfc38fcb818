package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	core "github.com/frahmantamala/org-directory/internal"
	"github.com/frahmantamala/org-directory/internal/auth"
	"github.com/frahmantamala/org-directory/internal/user"
)

// AuthRepository implements auth.Repository using GORM.
type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) auth.Repository {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) GetUserByID(ctx context.Context, id int64) (*user.User, error) {
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

func (r *AuthRepository) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
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

func (r *AuthRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&user.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *AuthRepository) CreateUser(ctx context.Context, u *user.User) error {
	return r.db.WithContext(ctx).Omit("Role").Create(u).Error
}

func (r *AuthRepository) UpdateUser(ctx context.Context, u *user.User) error {
	return r.db.WithContext(ctx).Omit("Role").Save(u).Error
}

func (r *AuthRepository) GetRoleByName(ctx context.Context, name core.Role) (*user.Role, error) {
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

func (r *AuthRepository) DepartmentExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("departments").
		Where("id = ? AND deleted_at IS NULL", id).
		Count(&count).Error
	return count > 0, err
}

func (r *AuthRepository) CreateToken(ctx context.Context, t *auth.ConfirmationToken) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *AuthRepository) GetToken(ctx context.Context, token string) (*auth.ConfirmationToken, error) {
	var record auth.ConfirmationToken
	err := r.db.WithContext(ctx).First(&record, "token = ?", token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrInvalidToken
		}
		return nil, fmt.Errorf("query confirmation token: %w", err)
	}
	return &record, nil
}

func (r *AuthRepository) UpdateToken(ctx context.Context, t *auth.ConfirmationToken) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *AuthRepository) InTx(ctx context.Context, fn func(auth.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AuthRepository{db: tx})
	})
}
