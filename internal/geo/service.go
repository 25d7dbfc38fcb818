package geo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	core "github.com/frahmantamala/org-directory/internal"
)

// Service manages the city/region/town taxonomy. Mutation is admin-only;
// a town still referenced by departments or companies cannot be deleted.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) CreateCity(ctx context.Context, caller core.Caller, dto CreateCityDTO) (*City, error) {
	if !caller.IsAdmin() {
		return nil, core.NewForbiddenError("only admins can manage locations", core.ErrCodeInsufficientScope)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	city := &City{Name: dto.Name, CreatedAt: time.Now()}
	if err := s.repo.CreateCity(ctx, city); err != nil {
		return nil, fmt.Errorf("create city: %w", err)
	}

	s.logger.Info("city created", "city_id", city.ID, "caller_id", caller.UserID)
	return city, nil
}

func (s *Service) ListCities(ctx context.Context) ([]*City, error) {
	return s.repo.ListCities(ctx)
}

func (s *Service) CreateRegion(ctx context.Context, caller core.Caller, dto CreateRegionDTO) (*Region, error) {
	if !caller.IsAdmin() {
		return nil, core.NewForbiddenError("only admins can manage locations", core.ErrCodeInsufficientScope)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetCity(ctx, dto.CityID); err != nil {
		return nil, err
	}

	region := &Region{Name: dto.Name, CityID: dto.CityID, CreatedAt: time.Now()}
	if err := s.repo.CreateRegion(ctx, region); err != nil {
		return nil, fmt.Errorf("create region: %w", err)
	}

	s.logger.Info("region created", "region_id", region.ID, "city_id", dto.CityID, "caller_id", caller.UserID)
	return region, nil
}

func (s *Service) ListRegions(ctx context.Context, cityID int64) ([]*Region, error) {
	if cityID <= 0 {
		return nil, core.NewValidationError("city id must be positive", core.ErrCodeInvalidID)
	}
	return s.repo.ListRegionsByCity(ctx, cityID)
}

func (s *Service) CreateTown(ctx context.Context, caller core.Caller, dto CreateTownDTO) (*Town, error) {
	if !caller.IsAdmin() {
		return nil, core.NewForbiddenError("only admins can manage locations", core.ErrCodeInsufficientScope)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetRegion(ctx, dto.RegionID); err != nil {
		return nil, err
	}

	town := &Town{Name: dto.Name, RegionID: dto.RegionID, CreatedAt: time.Now()}
	if err := s.repo.CreateTown(ctx, town); err != nil {
		return nil, fmt.Errorf("create town: %w", err)
	}

	s.logger.Info("town created", "town_id", town.ID, "region_id", dto.RegionID, "caller_id", caller.UserID)
	return town, nil
}

func (s *Service) ListTowns(ctx context.Context, regionID int64) ([]*Town, error) {
	if regionID <= 0 {
		return nil, core.NewValidationError("region id must be positive", core.ErrCodeInvalidID)
	}
	return s.repo.ListTownsByRegion(ctx, regionID)
}

// DeleteTown soft-deletes a town; once deleted it can no longer be
// attached to departments or companies.
func (s *Service) DeleteTown(ctx context.Context, caller core.Caller, id int64) error {
	if !caller.IsAdmin() {
		return core.NewForbiddenError("only admins can manage locations", core.ErrCodeInsufficientScope)
	}
	if id <= 0 {
		return core.NewValidationError("town id must be positive", core.ErrCodeInvalidID)
	}

	err := s.repo.InTx(ctx, func(tx Repository) error {
		town, err := tx.GetTown(ctx, id)
		if err != nil {
			return err
		}
		if town.DeletedAt != nil {
			return core.NewConflictError("town is already deleted", core.ErrCodeAlreadyDeleted)
		}

		inUse, err := tx.TownInUse(ctx, id)
		if err != nil {
			return fmt.Errorf("check town references: %w", err)
		}
		if inUse {
			return core.NewConflictError("town is still referenced by departments or companies", core.ErrCodeAlreadyInState)
		}
		return tx.SoftDeleteTown(ctx, id, time.Now())
	})
	if err != nil {
		return err
	}

	s.logger.Info("town soft deleted", "town_id", id, "caller_id", caller.UserID)
	return nil
}
