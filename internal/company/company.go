package company

import (
	"context"
	"time"

	errors "github.com/frahmantamala/org-directory/internal"
	"github.com/frahmantamala/org-directory/internal/core/validation"
)

type CompanyType struct {
	ID   int64  `json:"id" gorm:"primaryKey"`
	Name string `json:"name"`
}

func (CompanyType) TableName() string { return "company_types" }

type Company struct {
	ID        int64      `json:"id" gorm:"primaryKey"`
	Name      string     `json:"name"`
	ShortName string     `json:"short_name"`
	TypeID    int64      `json:"type_id"`
	TownID    int64      `json:"town_id"`
	Address   string     `json:"address"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (Company) TableName() string { return "companies" }

type Repository interface {
	GetByID(ctx context.Context, id int64) (*Company, error)
	NameExists(ctx context.Context, name string, excludeID int64) (bool, error)
	List(ctx context.Context) ([]*Company, error)
	Create(ctx context.Context, c *Company) error
	Update(ctx context.Context, c *Company) error
	SoftDelete(ctx context.Context, id int64, at time.Time) error
	TypeExists(ctx context.Context, id int64) (bool, error)
	TownIsLive(ctx context.Context, id int64) (bool, error)
	ListTypes(ctx context.Context) ([]*CompanyType, error)
	InTx(ctx context.Context, fn func(Repository) error) error
}

type CreateCompanyDTO struct {
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	TypeID    int64  `json:"type_id"`
	TownID    int64  `json:"town_id"`
	Address   string `json:"address"`
}

func (d CreateCompanyDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(200)
	v.Field("short_name", d.ShortName).Required().MaxLength(50)
	v.Field("type_id", d.TypeID).Required().PositiveID()
	v.Field("town_id", d.TownID).Required().PositiveID()
	return v.Validate()
}

type UpdateCompanyDTO struct {
	CompanyID int64   `json:"company_id"`
	Name      *string `json:"name,omitempty"`
	ShortName *string `json:"short_name,omitempty"`
	Address   *string `json:"address,omitempty"`
	Active    *bool   `json:"active,omitempty"`
}

func (d UpdateCompanyDTO) Validate() *errors.AppError {
	if d.CompanyID <= 0 {
		return errors.NewValidationError("company id must be positive", errors.ErrCodeInvalidID)
	}
	if d.Name != nil {
		if err := validation.IsValidName(*d.Name); err != nil {
			return err
		}
	}
	return nil
}
