package geo

import (
	"context"
	"time"

	errors "github.com/frahmantamala/org-directory/internal"
	"github.com/frahmantamala/org-directory/internal/core/validation"
)

// The location taxonomy is a three-level chain: a City contains Regions,
// a Region contains Towns, and departments and companies sit in Towns.

type City struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (City) TableName() string { return "cities" }

type Region struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name"`
	CityID    int64     `json:"city_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Region) TableName() string { return "regions" }

type Town struct {
	ID        int64      `json:"id" gorm:"primaryKey"`
	Name      string     `json:"name"`
	RegionID  int64      `json:"region_id"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (Town) TableName() string { return "towns" }

type Repository interface {
	GetCity(ctx context.Context, id int64) (*City, error)
	ListCities(ctx context.Context) ([]*City, error)
	CreateCity(ctx context.Context, c *City) error

	GetRegion(ctx context.Context, id int64) (*Region, error)
	ListRegionsByCity(ctx context.Context, cityID int64) ([]*Region, error)
	CreateRegion(ctx context.Context, r *Region) error

	GetTown(ctx context.Context, id int64) (*Town, error)
	ListTownsByRegion(ctx context.Context, regionID int64) ([]*Town, error)
	CreateTown(ctx context.Context, t *Town) error
	SoftDeleteTown(ctx context.Context, id int64, at time.Time) error
	TownInUse(ctx context.Context, id int64) (bool, error)

	InTx(ctx context.Context, fn func(Repository) error) error
}

type CreateCityDTO struct {
	Name string `json:"name"`
}

func (d CreateCityDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	return v.Validate()
}

type CreateRegionDTO struct {
	Name   string `json:"name"`
	CityID int64  `json:"city_id"`
}

func (d CreateRegionDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("city_id", d.CityID).Required().PositiveID()
	return v.Validate()
}

type CreateTownDTO struct {
	Name     string `json:"name"`
	RegionID int64  `json:"region_id"`
}

func (d CreateTownDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("region_id", d.RegionID).Required().PositiveID()
	return v.Validate()
}
