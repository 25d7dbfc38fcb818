package user

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

func TestUser(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "User Module Suite")
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

type fakeDepartments struct {
	existing map[int64]bool
}

func (f *fakeDepartments) Exists(_ context.Context, id int64) (bool, error) {
	return f.existing[id], nil
}

type mockUserRepository struct {
	users map[int64]*User
	roles map[string]*Role
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[int64]*User),
		roles: map[string]*Role{
			"Admin":    {ID: 1, Name: "Admin"},
			"Manager":  {ID: 2, Name: "Manager"},
			"Employee": {ID: 3, Name: "Employee"},
		},
	}
}

func (m *mockUserRepository) add(u *User) *User {
	m.users[u.ID] = u
	return u
}

func (m *mockUserRepository) GetByID(_ context.Context, id int64) (*User, error) {
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, core.NewNotFoundError("user not found", core.ErrCodeUserNotFound)
}

func (m *mockUserRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, core.NewNotFoundError("user not found", core.ErrCodeUserNotFound)
}

func (m *mockUserRepository) EmailExists(_ context.Context, email string, excludeUserID int64) (bool, error) {
	for _, u := range m.users {
		if u.Email == email && u.ID != excludeUserID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) Update(_ context.Context, u *User) error {
	copied := *u
	m.users[u.ID] = &copied
	return nil
}

func (m *mockUserRepository) HardDelete(_ context.Context, id int64) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepository) List(_ context.Context, limit, offset int) ([]*User, error) {
	var out []*User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserRepository) ListByDepartmentIDs(_ context.Context, departmentIDs []int64, limit, offset int) ([]*User, error) {
	wanted := make(map[int64]bool)
	for _, id := range departmentIDs {
		wanted[id] = true
	}
	var out []*User
	for _, u := range m.users {
		if wanted[u.DepartmentID] {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserRepository) GetRoleByName(_ context.Context, name core.Role) (*Role, error) {
	if role, ok := m.roles[string(name)]; ok {
		return role, nil
	}
	return nil, core.NewNotFoundError("role not found", core.ErrCodeRoleNotFound)
}

func (m *mockUserRepository) GetRoleByID(_ context.Context, id int64) (*Role, error) {
	for _, role := range m.roles {
		if role.ID == id {
			return role, nil
		}
	}
	return nil, core.NewNotFoundError("role not found", core.ErrCodeRoleNotFound)
}

func (m *mockUserRepository) InTx(_ context.Context, fn func(Repository) error) error {
	return fn(m)
}

func str(s string) *string { return &s }
func i64(i int64) *int64   { return &i }
func boolp(b bool) *bool   { return &b }

var _ = ginkgo.Describe("UserService", func() {
	var (
		service  *Service
		repo     *mockUserRepository
		admin    core.Caller
		manager  core.Caller
		employee core.Caller
		ctx      context.Context
	)

	ginkgo.BeforeEach(func() {
		repo = newMockUserRepository()
		scope := &fakeScope{subtrees: map[int64][]int64{10: {10, 11}}}
		departments := &fakeDepartments{existing: map[int64]bool{1: true, 10: true, 11: true, 20: true}}
		resolver := authz.NewResolver(scope, slog.Default())
		service = NewService(repo, resolver, scope, departments, slog.Default())
		ctx = context.Background()

		admin = core.Caller{UserID: 1, Role: core.RoleAdmin, DepartmentID: 1}
		manager = core.Caller{UserID: 2, Role: core.RoleManager, DepartmentID: 10}
		employee = core.Caller{UserID: 3, Role: core.RoleEmployee, DepartmentID: 11}

		repo.add(&User{ID: 1, Email: "admin@mail.com", FirstName: "Ada", LastName: "Admin", RoleID: 1, Role: Role{ID: 1, Name: "Admin"}, DepartmentID: 1, Active: true, Enabled: true})
		repo.add(&User{ID: 2, Email: "mara@mail.com", FirstName: "Mara", LastName: "Manager", RoleID: 2, Role: Role{ID: 2, Name: "Manager"}, DepartmentID: 10, Active: true, Enabled: true})
		repo.add(&User{ID: 3, Email: "eve@mail.com", FirstName: "Eve", LastName: "Employee", RoleID: 3, Role: Role{ID: 3, Name: "Employee"}, DepartmentID: 11, Active: true, Enabled: true})
		repo.add(&User{ID: 4, Email: "out@mail.com", FirstName: "Otto", LastName: "Outside", RoleID: 3, Role: Role{ID: 3, Name: "Employee"}, DepartmentID: 20, Active: true, Enabled: true})
	})

	ginkgo.Describe("GetByID", func() {
		ginkgo.It("forbids employees from reading others", func() {
			_, err := service.GetByID(ctx, employee, 4)

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(core.ErrorTypeForbidden))
		})

		ginkgo.It("returns forbidden, not not-found, for out-of-scope targets", func() {
			_, err := service.GetByID(ctx, manager, 4)

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(core.ErrorTypeForbidden))
		})

		ginkgo.It("lets a manager read inside the subtree", func() {
			u, err := service.GetByID(ctx, manager, 3)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(u.Email).To(gomega.Equal("eve@mail.com"))
		})
	})

	ginkgo.Describe("List", func() {
		ginkgo.It("narrows manager listings to the subtree", func() {
			users, err := service.List(ctx, manager, 0, 50)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			for _, u := range users {
				gomega.Expect([]int64{10, 11}).To(gomega.ContainElement(u.DepartmentID))
			}
		})

		ginkgo.It("rejects employees", func() {
			_, err := service.List(ctx, employee, 0, 50)
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("UpdateSelf", func() {
		ginkgo.It("updates names and email", func() {
			u, err := service.UpdateSelf(ctx, employee, UpdateSelfDTO{FirstName: str("Evelyn"), Email: str("evelyn@mail.com")})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(u.FirstName).To(gomega.Equal("Evelyn"))
			gomega.Expect(u.Email).To(gomega.Equal("evelyn@mail.com"))
		})

		ginkgo.It("rejects an email already in use", func() {
			_, err := service.UpdateSelf(ctx, employee, UpdateSelfDTO{Email: str("mara@mail.com")})

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(core.ErrCodeEmailInUse))
		})

		ginkgo.It("refuses updates on a deleted account", func() {
			now := time.Now()
			repo.users[3].DeletedAt = &now

			_, err := service.UpdateSelf(ctx, employee, UpdateSelfDTO{FirstName: str("Evelyn")})

			gomega.Expect(err).To(gomega.Equal(core.ErrUserDeleted))
		})
	})

	ginkgo.Describe("Update", func() {
		ginkgo.It("refuses any edit of a disabled user except re-enabling", func() {
			repo.users[3].Enabled = false

			_, err := service.Update(ctx, admin, UpdateUserDTO{UserID: 3, FirstName: str("Evelyn")})

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(core.ErrorTypeConflict))
		})

		ginkgo.It("accepts the update that re-enables a disabled user", func() {
			repo.users[3].Enabled = false

			u, err := service.Update(ctx, admin, UpdateUserDTO{UserID: 3, Enabled: boolp(true), FirstName: str("Evelyn")})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(u.Enabled).To(gomega.BeTrue())
			gomega.Expect(u.FirstName).To(gomega.Equal("Evelyn"))
		})

		ginkgo.It("applies department and role changes with their own guards", func() {
			u, err := service.Update(ctx, admin, UpdateUserDTO{UserID: 3, DepartmentID: i64(10), RoleName: str("Manager")})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(u.DepartmentID).To(gomega.Equal(int64(10)))
			gomega.Expect(u.Role.Name).To(gomega.Equal("Manager"))
		})
	})

	ginkgo.Describe("MoveDepartment", func() {
		ginkgo.It("moves a user inside the manager's authority", func() {
			u, err := service.MoveDepartment(ctx, manager, 3, 10)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(u.DepartmentID).To(gomega.Equal(int64(10)))
		})

		ginkgo.It("treats a move to the current department as a conflict", func() {
			_, err := service.MoveDepartment(ctx, admin, 3, 11)

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(core.ErrCodeAlreadyInState))
		})

		ginkgo.It("requires authority over the destination", func() {
			_, err := service.MoveDepartment(ctx, manager, 3, 20)

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(core.ErrorTypeForbidden))
		})

		ginkgo.It("rejects a move to an unknown department", func() {
			_, err := service.MoveDepartment(ctx, admin, 3, 999)

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(core.ErrorTypeNotFound))
		})
	})

	ginkgo.Describe("ChangeRole", func() {
		ginkgo.It("accepts the legacy User alias for Employee", func() {
			repo.users[3].RoleID = 2
			repo.users[3].Role = Role{ID: 2, Name: "Manager"}

			u, err := service.ChangeRole(ctx, admin, 3, "User")

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(u.Role.Name).To(gomega.Equal("Employee"))
		})

		ginkgo.It("treats a same-role change as a conflict", func() {
			_, err := service.ChangeRole(ctx, admin, 3, "Employee")

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(core.ErrCodeAlreadyInState))
		})

		ginkgo.It("forbids a manager from granting Admin", func() {
			_, err := service.ChangeRole(ctx, manager, 3, "Admin")

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(core.ErrCodeAdminTarget))
		})

		ginkgo.It("rejects unknown role names", func() {
			_, err := service.ChangeRole(ctx, admin, 3, "Overlord")
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("SoftDelete", func() {
		ginkgo.It("marks the user deleted and disabled", func() {
			u, err := service.SoftDelete(ctx, admin, 3)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(u.DeletedAt).ToNot(gomega.BeNil())
			gomega.Expect(u.Enabled).To(gomega.BeFalse())
		})

		ginkgo.It("rejects a second delete as a conflict", func() {
			_, err := service.SoftDelete(ctx, admin, 3)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.SoftDelete(ctx, admin, 3)

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(core.ErrCodeAlreadyDeleted))
		})

		ginkgo.It("forbids deleting your own account", func() {
			_, err := service.SoftDelete(ctx, admin, 1)

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(core.ErrCodeSelfDelete))
		})

		ginkgo.It("forbids a manager from deleting an admin", func() {
			repo.add(&User{ID: 5, Email: "boss@mail.com", RoleID: 1, Role: Role{ID: 1, Name: "Admin"}, DepartmentID: 11, Active: true, Enabled: true})

			_, err := service.SoftDelete(ctx, manager, 5)

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(core.ErrCodeAdminTarget))
		})
	})

	ginkgo.Describe("HardDelete", func() {
		ginkgo.It("removes the row for admins", func() {
			err := service.HardDelete(ctx, admin, 3)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.users).ToNot(gomega.HaveKey(int64(3)))
		})

		ginkgo.It("is never available to managers", func() {
			err := service.HardDelete(ctx, manager, 3)

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(core.ErrorTypeForbidden))
			gomega.Expect(repo.users).To(gomega.HaveKey(int64(3)))
		})
	})
})
