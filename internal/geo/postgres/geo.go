package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	core "github.com/frahmantamala/org-directory/internal"
	"github.com/frahmantamala/org-directory/internal/geo"
)

type GeoRepository struct {
	db *gorm.DB
}

func NewGeoRepository(db *gorm.DB) geo.Repository {
	return &GeoRepository{db: db}
}

func (r *GeoRepository) GetCity(ctx context.Context, id int64) (*geo.City, error) {
	var c geo.City
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.NewNotFoundError(fmt.Sprintf("city not found with id: %d", id), core.ErrCodeCityNotFound)
		}
		return nil, fmt.Errorf("query city: %w", err)
	}
	return &c, nil
}

func (r *GeoRepository) ListCities(ctx context.Context) ([]*geo.City, error) {
	var cities []*geo.City
	err := r.db.WithContext(ctx).Order("id").Find(&cities).Error
	return cities, err
}

func (r *GeoRepository) CreateCity(ctx context.Context, c *geo.City) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *GeoRepository) GetRegion(ctx context.Context, id int64) (*geo.Region, error) {
	var region geo.Region
	err := r.db.WithContext(ctx).First(&region, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.NewNotFoundError(fmt.Sprintf("region not found with id: %d", id), core.ErrCodeRegionNotFound)
		}
		return nil, fmt.Errorf("query region: %w", err)
	}
	return &region, nil
}

func (r *GeoRepository) ListRegionsByCity(ctx context.Context, cityID int64) ([]*geo.Region, error) {
	var regions []*geo.Region
	err := r.db.WithContext(ctx).Where("city_id = ?", cityID).Order("id").Find(&regions).Error
	return regions, err
}

func (r *GeoRepository) CreateRegion(ctx context.Context, region *geo.Region) error {
	return r.db.WithContext(ctx).Create(region).Error
}

func (r *GeoRepository) GetTown(ctx context.Context, id int64) (*geo.Town, error) {
	var town geo.Town
	err := r.db.WithContext(ctx).First(&town, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.NewNotFoundError(fmt.Sprintf("town not found with id: %d", id), core.ErrCodeTownNotFound)
		}
		return nil, fmt.Errorf("query town: %w", err)
	}
	return &town, nil
}

func (r *GeoRepository) ListTownsByRegion(ctx context.Context, regionID int64) ([]*geo.Town, error) {
	var towns []*geo.Town
	err := r.db.WithContext(ctx).
		Where("region_id = ? AND deleted_at IS NULL", regionID).
		Order("id").Find(&towns).Error
	return towns, err
}

func (r *GeoRepository) CreateTown(ctx context.Context, town *geo.Town) error {
	return r.db.WithContext(ctx).Create(town).Error
}

func (r *GeoRepository) SoftDeleteTown(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&geo.Town{}).
		Where("id = ?", id).
		Update("deleted_at", at).Error
}

func (r *GeoRepository) TownInUse(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("departments").
		Where("town_id = ? AND deleted_at IS NULL", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	err = r.db.WithContext(ctx).Table("companies").
		Where("town_id = ? AND deleted_at IS NULL", id).
		Count(&count).Error
	return count > 0, err
}

func (r *GeoRepository) InTx(ctx context.Context, fn func(geo.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GeoRepository{db: tx})
	})
}
