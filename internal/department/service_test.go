package department

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	core "github.com/frahmantamala/org-directory/internal"
	"github.com/frahmantamala/org-directory/internal/authz"
)

func TestDepartment(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Department Module Suite")
}

type fakeScope struct {
	subtrees map[int64][]int64
}

func (f *fakeScope) DescendantsIncludingSelf(_ context.Context, departmentID int64) ([]int64, error) {
	if ids, ok := f.subtrees[departmentID]; ok {
		return ids, nil
	}
	return []int64{departmentID}, nil
}

type userRow struct {
	departmentID int64
	enabled      bool
	deletedAt    *time.Time
}

type mockDepartmentRepository struct {
	departments map[int64]*Department
	users       map[int64]*userRow
	edges       map[[2]int64]bool
	companies   map[int64]bool
	types       map[int64]bool
	towns       map[int64]bool
	nextID      int64
}

func newMockDepartmentRepository() *mockDepartmentRepository {
	return &mockDepartmentRepository{
		departments: make(map[int64]*Department),
		users:       make(map[int64]*userRow),
		edges:       make(map[[2]int64]bool),
		companies:   map[int64]bool{1: true},
		types:       map[int64]bool{1: true},
		towns:       map[int64]bool{1: true},
		nextID:      1,
	}
}

func (m *mockDepartmentRepository) add(d *Department) *Department {
	if d.ID == 0 {
		d.ID = m.nextID
	}
	if d.ID >= m.nextID {
		m.nextID = d.ID + 1
	}
	m.departments[d.ID] = d
	return d
}

func (m *mockDepartmentRepository) GetByID(_ context.Context, id int64) (*Department, error) {
	if d, ok := m.departments[id]; ok {
		copied := *d
		return &copied, nil
	}
	return nil, core.NewNotFoundError("department not found", core.ErrCodeDepartmentNotFound)
}

func (m *mockDepartmentRepository) GetByName(_ context.Context, name string) (*Department, error) {
	for _, d := range m.departments {
		if d.Name == name && d.DeletedAt == nil {
			copied := *d
			return &copied, nil
		}
	}
	return nil, core.NewNotFoundError("department not found", core.ErrCodeDepartmentNotFound)
}

func (m *mockDepartmentRepository) NameExists(_ context.Context, name string, excludeID int64) (bool, error) {
	for _, d := range m.departments {
		if d.Name == name && d.ID != excludeID && d.DeletedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockDepartmentRepository) Exists(_ context.Context, id int64) (bool, error) {
	d, ok := m.departments[id]
	return ok && d.DeletedAt == nil, nil
}

func (m *mockDepartmentRepository) List(_ context.Context) ([]*Department, error) {
	var out []*Department
	for _, d := range m.departments {
		if d.DeletedAt == nil {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDepartmentRepository) ListByIDs(_ context.Context, ids []int64) ([]*Department, error) {
	var out []*Department
	for _, id := range ids {
		if d, ok := m.departments[id]; ok && d.DeletedAt == nil {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDepartmentRepository) Create(_ context.Context, d *Department) error {
	d.ID = m.nextID
	m.nextID++
	copied := *d
	m.departments[d.ID] = &copied
	return nil
}

func (m *mockDepartmentRepository) Update(_ context.Context, d *Department) error {
	copied := *d
	m.departments[d.ID] = &copied
	return nil
}

func (m *mockDepartmentRepository) SoftDelete(_ context.Context, id int64, at time.Time) error {
	if d, ok := m.departments[id]; ok {
		d.DeletedAt = &at
		d.Active = false
	}
	return nil
}

func (m *mockDepartmentRepository) HardDelete(_ context.Context, id int64) error {
	delete(m.departments, id)
	return nil
}

func (m *mockDepartmentRepository) SoftDeleteUsers(_ context.Context, departmentID int64, at time.Time) (int64, error) {
	var n int64
	for _, u := range m.users {
		if u.departmentID == departmentID && u.deletedAt == nil {
			u.deletedAt = &at
			u.enabled = false
			n++
		}
	}
	return n, nil
}

func (m *mockDepartmentRepository) HardDeleteUsers(_ context.Context, departmentID int64) (int64, error) {
	var n int64
	for id, u := range m.users {
		if u.departmentID == departmentID {
			delete(m.users, id)
			n++
		}
	}
	return n, nil
}

func (m *mockDepartmentRepository) DeleteHierarchyEdges(_ context.Context, departmentID int64) error {
	for k := range m.edges {
		if k[0] == departmentID || k[1] == departmentID {
			delete(m.edges, k)
		}
	}
	return nil
}

func (m *mockDepartmentRepository) CompanyIsActive(_ context.Context, id int64) (bool, error) {
	return m.companies[id], nil
}

func (m *mockDepartmentRepository) TypeExists(_ context.Context, id int64) (bool, error) {
	return m.types[id], nil
}

func (m *mockDepartmentRepository) TownIsLive(_ context.Context, id int64) (bool, error) {
	return m.towns[id], nil
}

func (m *mockDepartmentRepository) ListTypes(_ context.Context) ([]*DepartmentType, error) {
	return []*DepartmentType{{ID: 1, Name: "office"}}, nil
}

func (m *mockDepartmentRepository) InTx(_ context.Context, fn func(Repository) error) error {
	return fn(m)
}

func str(s string) *string { return &s }

var _ = ginkgo.Describe("DepartmentService", func() {
	var (
		service *Service
		repo    *mockDepartmentRepository
		admin   core.Caller
		manager core.Caller
		ctx     context.Context
	)

	ginkgo.BeforeEach(func() {
		repo = newMockDepartmentRepository()
		scope := &fakeScope{subtrees: map[int64][]int64{10: {10, 11}}}
		resolver := authz.NewResolver(scope, slog.Default())
		service = NewService(repo, resolver, scope, slog.Default())
		ctx = context.Background()

		admin = core.Caller{UserID: 1, Role: core.RoleAdmin, DepartmentID: 1}
		manager = core.Caller{UserID: 2, Role: core.RoleManager, DepartmentID: 10}

		repo.add(&Department{ID: 10, Name: "Engineering", CompanyID: 1, TypeID: 1, TownID: 1, Active: true})
		repo.add(&Department{ID: 11, Name: "Platform", CompanyID: 1, TypeID: 1, TownID: 1, Active: true})
		repo.add(&Department{ID: 20, Name: "Finance", CompanyID: 1, TypeID: 1, TownID: 1, Active: true})
	})

	ginkgo.Describe("Create", func() {
		ginkgo.It("creates an active department", func() {
			dept, err := service.Create(ctx, admin, CreateDepartmentDTO{
				Name: "Legal", CompanyID: 1, TypeID: 1, TownID: 1, Address: "4th floor",
			})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(dept.ID).ToNot(gomega.BeZero())
			gomega.Expect(dept.Active).To(gomega.BeTrue())
		})

		ginkgo.It("is admin-only", func() {
			_, err := service.Create(ctx, manager, CreateDepartmentDTO{
				Name: "Legal", CompanyID: 1, TypeID: 1, TownID: 1,
			})

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(core.ErrorTypeForbidden))
		})

		ginkgo.It("rejects a duplicate name", func() {
			_, err := service.Create(ctx, admin, CreateDepartmentDTO{
				Name: "Engineering", CompanyID: 1, TypeID: 1, TownID: 1,
			})

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(core.ErrCodeNameInUse))
		})

		ginkgo.It("rejects an inactive company", func() {
			repo.companies[2] = false

			_, err := service.Create(ctx, admin, CreateDepartmentDTO{
				Name: "Legal", CompanyID: 2, TypeID: 1, TownID: 1,
			})

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(core.ErrCodeCompanyNotFound))
		})

		ginkgo.It("rejects a dead town", func() {
			_, err := service.Create(ctx, admin, CreateDepartmentDTO{
				Name: "Legal", CompanyID: 1, TypeID: 1, TownID: 9,
			})

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(core.ErrCodeTownNotFound))
		})
	})

	ginkgo.Describe("reads", func() {
		ginkgo.It("lets managers read inside their subtree", func() {
			dept, err := service.GetByID(ctx, manager, 11)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(dept.Name).To(gomega.Equal("Platform"))
		})

		ginkgo.It("forbids managers outside the subtree", func() {
			_, err := service.GetByID(ctx, manager, 20)

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(core.ErrorTypeForbidden))
		})

		ginkgo.It("resolves by name before the scope check", func() {
			dept, err := service.GetByName(ctx, admin, "Finance")

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(dept.ID).To(gomega.Equal(int64(20)))
		})
	})

	ginkgo.Describe("List", func() {
		ginkgo.It("returns every department to admins", func() {
			depts, err := service.List(ctx, admin)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(depts).To(gomega.HaveLen(3))
		})

		ginkgo.It("narrows managers to their subtree", func() {
			depts, err := service.List(ctx, manager)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			ids := make([]int64, 0, len(depts))
			for _, d := range depts {
				ids = append(ids, d.ID)
			}
			gomega.Expect(ids).To(gomega.ConsistOf(int64(10), int64(11)))
		})

		ginkgo.It("rejects employees", func() {
			employee := core.Caller{UserID: 3, Role: core.RoleEmployee, DepartmentID: 11}

			_, err := service.List(ctx, employee)

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(core.ErrorTypeForbidden))
		})
	})

	ginkgo.Describe("Update", func() {
		ginkgo.It("renames with a uniqueness check", func() {
			dept, err := service.Update(ctx, admin, UpdateDepartmentDTO{DepartmentID: 11, Name: str("Core Platform")})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(dept.Name).To(gomega.Equal("Core Platform"))
		})

		ginkgo.It("conflicts when the new name is taken", func() {
			_, err := service.Update(ctx, admin, UpdateDepartmentDTO{DepartmentID: 11, Name: str("Finance")})

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(core.ErrCodeNameInUse))
		})

		ginkgo.It("refuses edits on a deleted department", func() {
			now := time.Now()
			repo.departments[11].DeletedAt = &now

			_, err := service.Update(ctx, admin, UpdateDepartmentDTO{DepartmentID: 11, Address: str("Elsewhere")})

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(core.ErrCodeAlreadyDeleted))
		})
	})

	ginkgo.Describe("SoftDelete", func() {
		ginkgo.BeforeEach(func() {
			repo.users[1] = &userRow{departmentID: 11, enabled: true}
			repo.users[2] = &userRow{departmentID: 11, enabled: true}
			repo.users[3] = &userRow{departmentID: 20, enabled: true}
		})

		ginkgo.It("cascades to the department's users", func() {
			err := service.SoftDelete(ctx, admin, 11)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.departments[11].DeletedAt).ToNot(gomega.BeNil())
			gomega.Expect(repo.users[1].deletedAt).ToNot(gomega.BeNil())
			gomega.Expect(repo.users[1].enabled).To(gomega.BeFalse())
			gomega.Expect(repo.users[3].deletedAt).To(gomega.BeNil())
		})

		ginkgo.It("conflicts on a second delete", func() {
			gomega.Expect(service.SoftDelete(ctx, admin, 11)).To(gomega.Succeed())

			err := service.SoftDelete(ctx, admin, 11)

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(core.ErrCodeAlreadyDeleted))
		})

		ginkgo.It("is never available to managers", func() {
			err := service.SoftDelete(ctx, manager, 11)

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(core.ErrorTypeForbidden))
			gomega.Expect(repo.departments[11].DeletedAt).To(gomega.BeNil())
		})
	})

	ginkgo.Describe("HardDelete", func() {
		ginkgo.It("removes the department, its users and its edges", func() {
			repo.users[1] = &userRow{departmentID: 11, enabled: true}
			repo.edges[[2]int64{10, 11}] = true
			repo.edges[[2]int64{11, 12}] = true
			repo.edges[[2]int64{10, 20}] = true

			err := service.HardDelete(ctx, admin, 11)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.departments).ToNot(gomega.HaveKey(int64(11)))
			gomega.Expect(repo.users).To(gomega.BeEmpty())
			gomega.Expect(repo.edges).To(gomega.HaveLen(1))
		})

		ginkgo.It("returns not found for an unknown id", func() {
			err := service.HardDelete(ctx, admin, 99)

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(core.ErrorTypeNotFound))
		})
	})
})
