package hierarchy

import (
	"context"
	"log/slog"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	core "github.com/frahmantamala/org-directory/internal"
)

func TestHierarchy(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Hierarchy Module Suite")
}

type edgeKey struct {
	parent, child int64
}

// mockHierarchyRepository keeps the graph in memory; InTx runs against the
// same state, which is enough for the service-level invariants.
type mockHierarchyRepository struct {
	edges       map[edgeKey]bool
	departments map[int64]bool
}

func newMockHierarchyRepository(departments ...int64) *mockHierarchyRepository {
	m := &mockHierarchyRepository{
		edges:       make(map[edgeKey]bool),
		departments: make(map[int64]bool),
	}
	for _, id := range departments {
		m.departments[id] = true
	}
	return m
}

func (m *mockHierarchyRepository) addEdge(parent, child int64) {
	m.edges[edgeKey{parent, child}] = true
}

func (m *mockHierarchyRepository) EdgeExists(_ context.Context, parentID, childID int64) (bool, error) {
	return m.edges[edgeKey{parentID, childID}], nil
}

func (m *mockHierarchyRepository) CreateEdge(_ context.Context, edge *Edge) error {
	m.edges[edgeKey{edge.ParentDepartmentID, edge.ChildDepartmentID}] = true
	return nil
}

func (m *mockHierarchyRepository) DeleteEdge(_ context.Context, parentID, childID int64) error {
	delete(m.edges, edgeKey{parentID, childID})
	return nil
}

func (m *mockHierarchyRepository) ParentIDs(_ context.Context, childID int64) ([]int64, error) {
	var ids []int64
	for k := range m.edges {
		if k.child == childID {
			ids = append(ids, k.parent)
		}
	}
	return ids, nil
}

func (m *mockHierarchyRepository) ChildIDs(_ context.Context, parentID int64) ([]int64, error) {
	var ids []int64
	for k := range m.edges {
		if k.parent == parentID {
			ids = append(ids, k.child)
		}
	}
	return ids, nil
}

func (m *mockHierarchyRepository) ListEdges(_ context.Context) ([]*Edge, error) {
	var edges []*Edge
	for k := range m.edges {
		edges = append(edges, &Edge{ParentDepartmentID: k.parent, ChildDepartmentID: k.child})
	}
	return edges, nil
}

func (m *mockHierarchyRepository) DepartmentExists(_ context.Context, id int64) (bool, error) {
	return m.departments[id], nil
}

func (m *mockHierarchyRepository) InTx(_ context.Context, fn func(Repository) error) error {
	return fn(m)
}

var _ = ginkgo.Describe("HierarchyService", func() {
	var (
		service *Service
		repo    *mockHierarchyRepository
		admin   core.Caller
		manager core.Caller
		ctx     context.Context
	)

	ginkgo.BeforeEach(func() {
		repo = newMockHierarchyRepository(1, 2, 3, 4, 5)
		service = NewService(repo, slog.Default())
		admin = core.Caller{UserID: 1, Role: core.RoleAdmin, DepartmentID: 1}
		manager = core.Caller{UserID: 2, Role: core.RoleManager, DepartmentID: 2}
		ctx = context.Background()
	})

	ginkgo.Describe("AddEdge", func() {
		ginkgo.It("creates a new edge", func() {
			edge, err := service.AddEdge(ctx, admin, 1, 2)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(edge.ParentDepartmentID).To(gomega.Equal(int64(1)))
			gomega.Expect(edge.ChildDepartmentID).To(gomega.Equal(int64(2)))
			gomega.Expect(repo.edges[edgeKey{1, 2}]).To(gomega.BeTrue())
		})

		ginkgo.It("rejects non-admin callers", func() {
			_, err := service.AddEdge(ctx, manager, 1, 2)

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(core.ErrorTypeForbidden))
		})

		ginkgo.It("rejects a self-referencing edge", func() {
			_, err := service.AddEdge(ctx, admin, 3, 3)

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(core.ErrorTypeInvalidHierarchy))
			gomega.Expect(appErr.Code).To(gomega.Equal(core.ErrCodeSelfEdge))
		})

		ginkgo.It("rejects a duplicate edge as a conflict", func() {
			repo.addEdge(1, 2)

			_, err := service.AddEdge(ctx, admin, 1, 2)

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(core.ErrorTypeConflict))
			gomega.Expect(appErr.Code).To(gomega.Equal(core.ErrCodeDuplicateEdge))
		})

		ginkgo.It("rejects a direct cycle", func() {
			repo.addEdge(1, 2)

			_, err := service.AddEdge(ctx, admin, 2, 1)

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(core.ErrCodeCircularHierarchy))
		})

		ginkgo.It("rejects a transitive cycle", func() {
			repo.addEdge(1, 2)
			repo.addEdge(2, 3)

			_, err := service.AddEdge(ctx, admin, 3, 1)

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(core.ErrCodeCircularHierarchy))
		})

		ginkgo.It("rejects edges to unknown departments", func() {
			_, err := service.AddEdge(ctx, admin, 1, 99)

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(core.ErrorTypeNotFound))
		})

		ginkgo.It("allows a diamond shape, which is not a cycle", func() {
			repo.addEdge(1, 2)
			repo.addEdge(1, 3)
			repo.addEdge(2, 4)

			_, err := service.AddEdge(ctx, admin, 3, 4)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("RemoveEdge", func() {
		ginkgo.It("removes an existing edge", func() {
			repo.addEdge(1, 2)

			err := service.RemoveEdge(ctx, admin, 1, 2)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.edges[edgeKey{1, 2}]).To(gomega.BeFalse())
		})

		ginkgo.It("returns not found for an absent edge", func() {
			err := service.RemoveEdge(ctx, admin, 1, 2)

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(core.ErrorTypeNotFound))
		})
	})

	ginkgo.Describe("transitive closures", func() {
		ginkgo.BeforeEach(func() {
			// 1 -> 2 -> 4, 1 -> 3 -> 4 (diamond), 4 -> 5
			repo.addEdge(1, 2)
			repo.addEdge(1, 3)
			repo.addEdge(2, 4)
			repo.addEdge(3, 4)
			repo.addEdge(4, 5)
		})

		ginkgo.It("returns each descendant once despite the diamond", func() {
			ids, err := service.DescendantsOf(ctx, 1)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(ids).To(gomega.ConsistOf(int64(2), int64(3), int64(4), int64(5)))
		})

		ginkgo.It("excludes the start node from descendants", func() {
			ids, err := service.DescendantsOf(ctx, 4)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(ids).To(gomega.ConsistOf(int64(5)))
		})

		ginkgo.It("includes the start node in the scoping query", func() {
			ids, err := service.DescendantsIncludingSelf(ctx, 4)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(ids).To(gomega.ConsistOf(int64(4), int64(5)))
		})

		ginkgo.It("collects ancestors through both diamond arms", func() {
			ids, err := service.AncestorsOf(ctx, 4)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(ids).To(gomega.ConsistOf(int64(1), int64(2), int64(3)))
		})

		ginkgo.It("returns an empty slice for a leaf", func() {
			ids, err := service.DescendantsOf(ctx, 5)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(ids).To(gomega.BeEmpty())
		})

		ginkgo.It("returns single hops only from ChildrenOf", func() {
			ids, err := service.ChildrenOf(ctx, 1)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(ids).To(gomega.ConsistOf(int64(2), int64(3)))
		})
	})
})
