package hierarchy

import (
	errors "github.com/frahmantamala/org-directory/internal"
	"github.com/frahmantamala/org-directory/internal/core/validation"
)

// EdgeDTO is the transport shape for adding or removing a hierarchy edge.
type EdgeDTO struct {
	ParentDepartmentID int64 `json:"parent_department_id"`
	ChildDepartmentID  int64 `json:"child_department_id"`
}

func (d EdgeDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("parent_department_id", d.ParentDepartmentID).Required().PositiveID()
	v.Field("child_department_id", d.ChildDepartmentID).Required().PositiveID()
	return v.Validate()
}
