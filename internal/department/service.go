package department

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	core "github.com/frahmantamala/org-directory/internal"
	"github.com/frahmantamala/org-directory/internal/authz"
)

// Service manages departments. Creation and deletion are admin work;
// managers may read and update departments inside their hierarchy scope.
// Deleting a department cascades to its users in the same transaction.
type Service struct {
	repo     Repository
	resolver *authz.Resolver
	scope    authz.ScopeQuerier
	logger   *slog.Logger
}

func NewService(repo Repository, resolver *authz.Resolver, scope authz.ScopeQuerier, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		scope:    scope,
		logger:   logger,
	}
}

func (s *Service) Create(ctx context.Context, caller core.Caller, dto CreateDepartmentDTO) (*Department, error) {
	if !caller.IsAdmin() {
		return nil, core.NewForbiddenError("only admins can create departments", core.ErrCodeInsufficientScope)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	dept := &Department{
		Name:      dto.Name,
		CompanyID: dto.CompanyID,
		TypeID:    dto.TypeID,
		TownID:    dto.TownID,
		Address:   dto.Address,
		Active:    true,
		CreatedAt: time.Now(),
	}

	err := s.repo.InTx(ctx, func(tx Repository) error {
		taken, err := tx.NameExists(ctx, dto.Name, 0)
		if err != nil {
			return fmt.Errorf("check department name: %w", err)
		}
		if taken {
			return core.NewConflictError("department name already in use", core.ErrCodeNameInUse)
		}
		if err := s.referencesMustBeLive(ctx, tx, dto.CompanyID, dto.TypeID, dto.TownID); err != nil {
			return err
		}
		return tx.Create(ctx, dept)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("department created", "department_id", dept.ID, "caller_id", caller.UserID)
	return dept, nil
}

func (s *Service) GetByID(ctx context.Context, caller core.Caller, id int64) (*Department, error) {
	if id <= 0 {
		return nil, core.NewValidationError("department id must be positive", core.ErrCodeInvalidID)
	}
	if err := s.resolver.CanActOnDepartment(ctx, caller, authz.ActionReadDepartment, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByName(ctx context.Context, caller core.Caller, name string) (*Department, error) {
	if name == "" {
		return nil, core.NewValidationError("department name is required", core.ErrCodeValidationFailed)
	}
	dept, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.resolver.CanActOnDepartment(ctx, caller, authz.ActionReadDepartment, dept.ID); err != nil {
		return nil, err
	}
	return dept, nil
}

// List returns every department for admins and the caller's subtree for
// managers.
func (s *Service) List(ctx context.Context, caller core.Caller) ([]*Department, error) {
	if !caller.IsAdmin() && !caller.IsManager() {
		return nil, core.NewForbiddenError("you are not authorized to list departments", core.ErrCodeInsufficientScope)
	}

	if caller.IsManager() {
		ids, err := s.scope.DescendantsIncludingSelf(ctx, caller.DepartmentID)
		if err != nil {
			return nil, core.NewInternalError("resolve manager scope", err)
		}
		return s.repo.ListByIDs(ctx, ids)
	}

	return s.repo.List(ctx)
}

func (s *Service) ListTypes(ctx context.Context) ([]*DepartmentType, error) {
	return s.repo.ListTypes(ctx)
}

func (s *Service) Update(ctx context.Context, caller core.Caller, dto UpdateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.resolver.CanActOnDepartment(ctx, caller, authz.ActionUpdateDepartment, dto.DepartmentID); err != nil {
		return nil, err
	}

	var updated *Department
	err := s.repo.InTx(ctx, func(tx Repository) error {
		dept, err := tx.GetByID(ctx, dto.DepartmentID)
		if err != nil {
			return err
		}
		if dept.DeletedAt != nil {
			return core.NewConflictError("department is deleted and cannot be updated", core.ErrCodeAlreadyDeleted)
		}

		if dto.Name != nil && *dto.Name != dept.Name {
			taken, err := tx.NameExists(ctx, *dto.Name, dept.ID)
			if err != nil {
				return fmt.Errorf("check department name: %w", err)
			}
			if taken {
				return core.NewConflictError("department name already in use", core.ErrCodeNameInUse)
			}
			dept.Name = *dto.Name
		}
		if dto.Address != nil {
			dept.Address = *dto.Address
		}
		if dto.Active != nil {
			dept.Active = *dto.Active
		}
		if dto.TypeID != nil {
			exists, err := tx.TypeExists(ctx, *dto.TypeID)
			if err != nil {
				return fmt.Errorf("check department type: %w", err)
			}
			if !exists {
				return core.NewNotFoundError(fmt.Sprintf("department type not found with id: %d", *dto.TypeID), core.ErrCodeDepartmentNotFound)
			}
			dept.TypeID = *dto.TypeID
		}
		if dto.TownID != nil {
			live, err := tx.TownIsLive(ctx, *dto.TownID)
			if err != nil {
				return fmt.Errorf("check town: %w", err)
			}
			if !live {
				return core.NewNotFoundError(fmt.Sprintf("town not found with id: %d", *dto.TownID), core.ErrCodeTownNotFound)
			}
			dept.TownID = *dto.TownID
		}

		if err := tx.Update(ctx, dept); err != nil {
			return fmt.Errorf("persist department update: %w", err)
		}
		updated = dept
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("department updated", "department_id", dto.DepartmentID, "caller_id", caller.UserID)
	return updated, nil
}

// SoftDelete marks the department deleted and soft-disables every user
// still assigned to it, all in one transaction.
func (s *Service) SoftDelete(ctx context.Context, caller core.Caller, id int64) error {
	if id <= 0 {
		return core.NewValidationError("department id must be positive", core.ErrCodeInvalidID)
	}
	if err := s.resolver.CanActOnDepartment(ctx, caller, authz.ActionDeleteDepartment, id); err != nil {
		return err
	}

	var affected int64
	err := s.repo.InTx(ctx, func(tx Repository) error {
		dept, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if dept.DeletedAt != nil {
			return core.NewConflictError("department is already deleted", core.ErrCodeAlreadyDeleted)
		}

		now := time.Now()
		if err := tx.SoftDelete(ctx, id, now); err != nil {
			return fmt.Errorf("soft delete department: %w", err)
		}
		affected, err = tx.SoftDeleteUsers(ctx, id, now)
		if err != nil {
			return fmt.Errorf("cascade soft delete to users: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("department soft deleted", "department_id", id, "users_affected", affected, "caller_id", caller.UserID)
	return nil
}

// HardDelete removes the department, its users and its hierarchy edges.
func (s *Service) HardDelete(ctx context.Context, caller core.Caller, id int64) error {
	if id <= 0 {
		return core.NewValidationError("department id must be positive", core.ErrCodeInvalidID)
	}
	if err := s.resolver.CanActOnDepartment(ctx, caller, authz.ActionDeleteDepartment, id); err != nil {
		return err
	}

	var affected int64
	err := s.repo.InTx(ctx, func(tx Repository) error {
		if _, err := tx.GetByID(ctx, id); err != nil {
			return err
		}

		var err error
		affected, err = tx.HardDeleteUsers(ctx, id)
		if err != nil {
			return fmt.Errorf("cascade hard delete to users: %w", err)
		}
		if err := tx.DeleteHierarchyEdges(ctx, id); err != nil {
			return fmt.Errorf("delete hierarchy edges: %w", err)
		}
		if err := tx.HardDelete(ctx, id); err != nil {
			return fmt.Errorf("hard delete department: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("department hard deleted", "department_id", id, "users_removed", affected, "caller_id", caller.UserID)
	return nil
}

// Exists reports whether a live department with the id exists; the user
// lifecycle service uses it for placement checks.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func (s *Service) referencesMustBeLive(ctx context.Context, tx Repository, companyID, typeID, townID int64) error {
	active, err := tx.CompanyIsActive(ctx, companyID)
	if err != nil {
		return fmt.Errorf("check company: %w", err)
	}
	if !active {
		return core.NewNotFoundError(fmt.Sprintf("active company not found with id: %d", companyID), core.ErrCodeCompanyNotFound)
	}

	exists, err := tx.TypeExists(ctx, typeID)
	if err != nil {
		return fmt.Errorf("check department type: %w", err)
	}
	if !exists {
		return core.NewNotFoundError(fmt.Sprintf("department type not found with id: %d", typeID), core.ErrCodeDepartmentNotFound)
	}

	live, err := tx.TownIsLive(ctx, townID)
	if err != nil {
		return fmt.Errorf("check town: %w", err)
	}
	if !live {
		return core.NewNotFoundError(fmt.Sprintf("town not found with id: %d", townID), core.ErrCodeTownNotFound)
	}
	return nil
}
