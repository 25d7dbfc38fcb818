package user

import (
	"time"

	errors "github.com/frahmantamala/org-directory/internal"
	"github.com/frahmantamala/org-directory/internal/core/validation"
)

// UpdateSelfDTO carries the fields a user may change on their own record.
type UpdateSelfDTO struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Enabled   *bool   `json:"enabled,omitempty"`
}

func (d UpdateSelfDTO) Validate() *errors.AppError {
	if d.FirstName != nil {
		if err := validation.IsValidName(*d.FirstName); err != nil {
			return err
		}
	}
	if d.LastName != nil {
		if err := validation.IsValidName(*d.LastName); err != nil {
			return err
		}
	}
	if d.Email != nil {
		if err := validation.IsValidEmail(*d.Email); err != nil {
			return err
		}
	}
	return nil
}

// UpdateUserDTO is the admin/manager edit of another user's record.
type UpdateUserDTO struct {
	UserID       int64   `json:"user_id"`
	FirstName    *string `json:"first_name,omitempty"`
	LastName     *string `json:"last_name,omitempty"`
	Email        *string `json:"email,omitempty"`
	DepartmentID *int64  `json:"department_id,omitempty"`
	RoleName     *string `json:"role_name,omitempty"`
	Enabled      *bool   `json:"enabled,omitempty"`
}

func (d UpdateUserDTO) Validate() *errors.AppError {
	if d.UserID <= 0 {
		return errors.NewValidationError("user id must be positive", errors.ErrCodeInvalidID)
	}
	if d.FirstName != nil {
		if err := validation.IsValidName(*d.FirstName); err != nil {
			return err
		}
	}
	if d.LastName != nil {
		if err := validation.IsValidName(*d.LastName); err != nil {
			return err
		}
	}
	if d.Email != nil {
		if err := validation.IsValidEmail(*d.Email); err != nil {
			return err
		}
	}
	if d.DepartmentID != nil {
		if err := validation.IsValidDepartmentID(*d.DepartmentID); err != nil {
			return err
		}
	}
	if d.RoleName != nil {
		if err := validation.IsValidRoleName(*d.RoleName); err != nil {
			return err
		}
	}
	return nil
}

type MoveDepartmentDTO struct {
	UserID       int64 `json:"user_id"`
	DepartmentID int64 `json:"department_id"`
}

func (d MoveDepartmentDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("user_id", d.UserID).Required().PositiveID()
	v.Field("department_id", d.DepartmentID).Required().PositiveID()
	return v.Validate()
}

type ChangeRoleDTO struct {
	UserID   int64  `json:"user_id"`
	RoleName string `json:"role_name"`
}

func (d ChangeRoleDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("user_id", d.UserID).Required().PositiveID()
	v.Field("role_name", d.RoleName).Required()
	return v.Validate()
}

type UserIDDTO struct {
	ID int64 `json:"id"`
}

func (d UserIDDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("id", d.ID).Required().PositiveID()
	return v.Validate()
}

// SimpleUser is the reduced listing shape without lifecycle internals.
type SimpleUser struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	RoleName     string `json:"role"`
	DepartmentID int64  `json:"department_id"`
	Active       bool   `json:"active"`
	Enabled      bool   `json:"enabled"`
}

func ToSimpleUser(u *User) SimpleUser {
	return SimpleUser{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		RoleName:     u.Role.Name,
		DepartmentID: u.DepartmentID,
		Active:       u.Active,
		Enabled:      u.Enabled,
	}
}

// ListResponse wraps user listings with paging echoes.
type ListResponse struct {
	Users []SimpleUser `json:"users"`
	Page  int          `json:"page"`
	Size  int          `json:"size"`
}

// DetailedListResponse exposes full records instead of the SimpleUser
// projection.
type DetailedListResponse struct {
	Users []*User `json:"users"`
	Page  int     `json:"page"`
	Size  int     `json:"size"`
}

// DeletedResponse echoes the record state after a soft delete.
type DeletedResponse struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	Enabled   bool       `json:"enabled"`
	DeletedAt *time.Time `json:"deleted_at"`
}
