package hierarchy

import (
	"context"
	"fmt"
	"log/slog"

	core "github.com/frahmantamala/org-directory/internal"
)

// Service maintains the department hierarchy graph and answers
// ancestor/descendant queries for authorization scoping.
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

// AddEdge inserts a parent->child edge. The duplicate, self-edge and cycle
// checks run in the same transaction as the insert.
func (s *Service) AddEdge(ctx context.Context, caller core.Caller, parentID, childID int64) (*Edge, error) {
	if !caller.IsAdmin() {
		return nil, core.NewForbiddenError("only admins can manage the department hierarchy", core.ErrCodeInsufficientScope)
	}
	if parentID <= 0 || childID <= 0 {
		return nil, core.NewValidationError("department ids must be positive", core.ErrCodeInvalidID)
	}
	if parentID == childID {
		return nil, core.NewInvalidHierarchyError("a department cannot be its own parent", core.ErrCodeSelfEdge)
	}

	edge := &Edge{ParentDepartmentID: parentID, ChildDepartmentID: childID}

	err := s.repo.InTx(ctx, func(tx Repository) error {
		if err := departmentMustExist(ctx, tx, parentID); err != nil {
			return err
		}
		if err := departmentMustExist(ctx, tx, childID); err != nil {
			return err
		}

		exists, err := tx.EdgeExists(ctx, parentID, childID)
		if err != nil {
			return fmt.Errorf("check edge existence: %w", err)
		}
		if exists {
			return core.NewConflictError("hierarchy relationship already exists between departments", core.ErrCodeDuplicateEdge)
		}

		// Walking parent-edges upward from the proposed parent must never
		// reach the proposed child, or the new edge closes a cycle.
		ancestors, err := walk(ctx, tx, parentID, tx.ParentIDs)
		if err != nil {
			return fmt.Errorf("collect ancestors of %d: %w", parentID, err)
		}
		if ancestors[childID] {
			return core.NewInvalidHierarchyError("this relationship would create a circular dependency", core.ErrCodeCircularHierarchy)
		}

		return tx.CreateEdge(ctx, edge)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("hierarchy edge added", "parent_id", parentID, "child_id", childID, "caller_id", caller.UserID)
	return edge, nil
}

// RemoveEdge deletes the exact edge; other edges of the subtree are untouched.
func (s *Service) RemoveEdge(ctx context.Context, caller core.Caller, parentID, childID int64) error {
	if !caller.IsAdmin() {
		return core.NewForbiddenError("only admins can manage the department hierarchy", core.ErrCodeInsufficientScope)
	}

	err := s.repo.InTx(ctx, func(tx Repository) error {
		exists, err := tx.EdgeExists(ctx, parentID, childID)
		if err != nil {
			return fmt.Errorf("check edge existence: %w", err)
		}
		if !exists {
			return core.NewNotFoundError("hierarchy relationship does not exist between these departments", core.ErrCodeEdgeNotFound)
		}
		return tx.DeleteEdge(ctx, parentID, childID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("hierarchy edge removed", "parent_id", parentID, "child_id", childID, "caller_id", caller.UserID)
	return nil
}

// ListEdges returns every edge in the graph.
func (s *Service) ListEdges(ctx context.Context, caller core.Caller) ([]*Edge, error) {
	if !caller.IsAdmin() && !caller.IsManager() {
		return nil, core.NewForbiddenError("only admins and managers can read the department hierarchy", core.ErrCodeInsufficientScope)
	}
	return s.repo.ListEdges(ctx)
}

// ChildrenOf returns direct children only. An empty result is not an error.
func (s *Service) ChildrenOf(ctx context.Context, departmentID int64) ([]int64, error) {
	return s.repo.ChildIDs(ctx, departmentID)
}

// ParentsOf returns direct parents only.
func (s *Service) ParentsOf(ctx context.Context, departmentID int64) ([]int64, error) {
	return s.repo.ParentIDs(ctx, departmentID)
}

// DescendantsOf computes the full transitive closure of children. The walk
// is iterative with a visited set, so diamond-shaped graphs yield each
// department exactly once and a malformed cycle cannot hang the walk.
func (s *Service) DescendantsOf(ctx context.Context, departmentID int64) ([]int64, error) {
	reached, err := walk(ctx, s.repo, departmentID, s.repo.ChildIDs)
	if err != nil {
		return nil, err
	}
	return collect(reached), nil
}

// AncestorsOf computes the full transitive closure of parents.
func (s *Service) AncestorsOf(ctx context.Context, departmentID int64) ([]int64, error) {
	reached, err := walk(ctx, s.repo, departmentID, s.repo.ParentIDs)
	if err != nil {
		return nil, err
	}
	return collect(reached), nil
}

// DescendantsIncludingSelf is the manager-scoping query: a manager's own
// department unioned with its whole subtree.
func (s *Service) DescendantsIncludingSelf(ctx context.Context, departmentID int64) ([]int64, error) {
	reached, err := walk(ctx, s.repo, departmentID, s.repo.ChildIDs)
	if err != nil {
		return nil, err
	}
	out := collect(reached)
	return append(out, departmentID), nil
}

// walk expands one hop at a time from start, deduplicating via the visited
// set. The start node itself is excluded from the result.
func walk(ctx context.Context, repo Repository, start int64, next func(context.Context, int64) ([]int64, error)) (map[int64]bool, error) {
	visited := map[int64]bool{start: true}
	reached := make(map[int64]bool)
	queue := []int64{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		hop, err := next(ctx, current)
		if err != nil {
			return nil, err
		}
		for _, id := range hop {
			if visited[id] {
				continue
			}
			visited[id] = true
			reached[id] = true
			queue = append(queue, id)
		}
	}

	return reached, nil
}

func collect(set map[int64]bool) []int64 {
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

func departmentMustExist(ctx context.Context, repo Repository, id int64) error {
	exists, err := repo.DepartmentExists(ctx, id)
	if err != nil {
		return fmt.Errorf("check department %d: %w", id, err)
	}
	if !exists {
		return core.NewNotFoundError(fmt.Sprintf("department not found with id: %d", id), core.ErrCodeDepartmentNotFound)
	}
	return nil
}
