package department

import (
	errors "github.com/frahmantamala/org-directory/internal"
	"github.com/frahmantamala/org-directory/internal/core/validation"
)

type CreateDepartmentDTO struct {
	Name      string `json:"name"`
	CompanyID int64  `json:"company_id"`
	TypeID    int64  `json:"type_id"`
	TownID    int64  `json:"town_id"`
	Address   string `json:"address"`
}

func (d CreateDepartmentDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(150)
	v.Field("company_id", d.CompanyID).Required().PositiveID()
	v.Field("type_id", d.TypeID).Required().PositiveID()
	v.Field("town_id", d.TownID).Required().PositiveID()
	return v.Validate()
}

type UpdateDepartmentDTO struct {
	DepartmentID int64   `json:"department_id"`
	Name         *string `json:"name,omitempty"`
	Address      *string `json:"address,omitempty"`
	TypeID       *int64  `json:"type_id,omitempty"`
	TownID       *int64  `json:"town_id,omitempty"`
	Active       *bool   `json:"active,omitempty"`
}

func (d UpdateDepartmentDTO) Validate() *errors.AppError {
	if d.DepartmentID <= 0 {
		return errors.NewValidationError("department id must be positive", errors.ErrCodeInvalidID)
	}
	if d.Name != nil {
		if err := validation.IsValidName(*d.Name); err != nil {
			return err
		}
	}
	if d.TypeID != nil && *d.TypeID <= 0 {
		return errors.NewValidationError("type id must be positive", errors.ErrCodeInvalidID)
	}
	if d.TownID != nil && *d.TownID <= 0 {
		return errors.NewValidationError("town id must be positive", errors.ErrCodeInvalidID)
	}
	return nil
}
