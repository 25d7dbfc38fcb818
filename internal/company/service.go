package company

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	core "github.com/frahmantamala/org-directory/internal"
)

// Service manages companies and the company type lookup. All mutation is
// admin-only; everyone authenticated may read.
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

func (s *Service) Create(ctx context.Context, caller core.Caller, dto CreateCompanyDTO) (*Company, error) {
	if !caller.IsAdmin() {
		return nil, core.NewForbiddenError("only admins can create companies", core.ErrCodeInsufficientScope)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	company := &Company{
		Name:      dto.Name,
		ShortName: dto.ShortName,
		TypeID:    dto.TypeID,
		TownID:    dto.TownID,
		Address:   dto.Address,
		Active:    true,
		CreatedAt: time.Now(),
	}

	err := s.repo.InTx(ctx, func(tx Repository) error {
		taken, err := tx.NameExists(ctx, dto.Name, 0)
		if err != nil {
			return fmt.Errorf("check company name: %w", err)
		}
		if taken {
			return core.NewConflictError("company name already in use", core.ErrCodeNameInUse)
		}

		exists, err := tx.TypeExists(ctx, dto.TypeID)
		if err != nil {
			return fmt.Errorf("check company type: %w", err)
		}
		if !exists {
			return core.NewNotFoundError(fmt.Sprintf("company type not found with id: %d", dto.TypeID), core.ErrCodeCompanyNotFound)
		}

		live, err := tx.TownIsLive(ctx, dto.TownID)
		if err != nil {
			return fmt.Errorf("check town: %w", err)
		}
		if !live {
			return core.NewNotFoundError(fmt.Sprintf("town not found with id: %d", dto.TownID), core.ErrCodeTownNotFound)
		}

		return tx.Create(ctx, company)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("company created", "company_id", company.ID, "caller_id", caller.UserID)
	return company, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Company, error) {
	if id <= 0 {
		return nil, core.NewValidationError("company id must be positive", core.ErrCodeInvalidID)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Company, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListTypes(ctx context.Context) ([]*CompanyType, error) {
	return s.repo.ListTypes(ctx)
}

func (s *Service) Update(ctx context.Context, caller core.Caller, dto UpdateCompanyDTO) (*Company, error) {
	if !caller.IsAdmin() {
		return nil, core.NewForbiddenError("only admins can update companies", core.ErrCodeInsufficientScope)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var updated *Company
	err := s.repo.InTx(ctx, func(tx Repository) error {
		company, err := tx.GetByID(ctx, dto.CompanyID)
		if err != nil {
			return err
		}
		if company.DeletedAt != nil {
			return core.NewConflictError("company is deleted and cannot be updated", core.ErrCodeAlreadyDeleted)
		}

		if dto.Name != nil && *dto.Name != company.Name {
			taken, err := tx.NameExists(ctx, *dto.Name, company.ID)
			if err != nil {
				return fmt.Errorf("check company name: %w", err)
			}
			if taken {
				return core.NewConflictError("company name already in use", core.ErrCodeNameInUse)
			}
			company.Name = *dto.Name
		}
		if dto.ShortName != nil {
			company.ShortName = *dto.ShortName
		}
		if dto.Address != nil {
			company.Address = *dto.Address
		}
		if dto.Active != nil {
			company.Active = *dto.Active
		}

		if err := tx.Update(ctx, company); err != nil {
			return fmt.Errorf("persist company update: %w", err)
		}
		updated = company
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("company updated", "company_id", dto.CompanyID, "caller_id", caller.UserID)
	return updated, nil
}

func (s *Service) SoftDelete(ctx context.Context, caller core.Caller, id int64) error {
	if !caller.IsAdmin() {
		return core.NewForbiddenError("only admins can delete companies", core.ErrCodeInsufficientScope)
	}
	if id <= 0 {
		return core.NewValidationError("company id must be positive", core.ErrCodeInvalidID)
	}

	err := s.repo.InTx(ctx, func(tx Repository) error {
		company, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if company.DeletedAt != nil {
			return core.NewConflictError("company is already deleted", core.ErrCodeAlreadyDeleted)
		}
		return tx.SoftDelete(ctx, id, time.Now())
	})
	if err != nil {
		return err
	}

	s.logger.Info("company soft deleted", "company_id", id, "caller_id", caller.UserID)
	return nil
}
