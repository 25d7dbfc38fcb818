package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	core "github.com/frahmantamala/org-directory/internal"
	"github.com/frahmantamala/org-directory/internal/company"
)

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) company.Repository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) GetByID(ctx context.Context, id int64) (*company.Company, error) {
	var c company.Company
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.NewNotFoundError(fmt.Sprintf("company not found with id: %d", id), core.ErrCodeCompanyNotFound)
		}
		return nil, fmt.Errorf("query company by id: %w", err)
	}
	return &c, nil
}

func (r *CompanyRepository) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&company.Company{}).Where("name = ?", name)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *CompanyRepository) List(ctx context.Context) ([]*company.Company, error) {
	var companies []*company.Company
	err := r.db.WithContext(ctx).Where("deleted_at IS NULL").Order("id").Find(&companies).Error
	return companies, err
}

func (r *CompanyRepository) Create(ctx context.Context, c *company.Company) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CompanyRepository) Update(ctx context.Context, c *company.Company) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *CompanyRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&company.Company{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"deleted_at": at, "active": false}).Error
}

func (r *CompanyRepository) TypeExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&company.CompanyType{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *CompanyRepository) TownIsLive(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("towns").
		Where("id = ? AND deleted_at IS NULL", id).
		Count(&count).Error
	return count > 0, err
}

func (r *CompanyRepository) ListTypes(ctx context.Context) ([]*company.CompanyType, error) {
	var types []*company.CompanyType
	err := r.db.WithContext(ctx).Order("id").Find(&types).Error
	return types, err
}

func (r *CompanyRepository) InTx(ctx context.Context, fn func(company.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&CompanyRepository{db: tx})
	})
}
