package authz

import (
	"context"
	"log/slog"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	core "github.com/frahmantamala/org-directory/internal"
)

func TestAuthz(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Authz Module Suite")
}

// fakeScope answers descendant queries from a fixed map.
type fakeScope struct {
	subtrees map[int64][]int64
}

func (f *fakeScope) DescendantsIncludingSelf(_ context.Context, departmentID int64) ([]int64, error) {
	if ids, ok := f.subtrees[departmentID]; ok {
		return ids, nil
	}
	return []int64{departmentID}, nil
}

var _ = ginkgo.Describe("Resolver", func() {
	var (
		resolver *Resolver
		admin    core.Caller
		manager  core.Caller
		employee core.Caller
		ctx      context.Context
	)

	ginkgo.BeforeEach(func() {
		// manager sits in department 10; 11 and 12 are its subtree
		scope := &fakeScope{subtrees: map[int64][]int64{
			10: {10, 11, 12},
		}}
		resolver = NewResolver(scope, slog.Default())
		admin = core.Caller{UserID: 1, Role: core.RoleAdmin, DepartmentID: 1}
		manager = core.Caller{UserID: 2, Role: core.RoleManager, DepartmentID: 10}
		employee = core.Caller{UserID: 3, Role: core.RoleEmployee, DepartmentID: 11}
		ctx = context.Background()
	})

	ginkgo.Describe("CanActOnUser", func() {
		ginkgo.Context("as admin", func() {
			ginkgo.It("allows acting on anyone", func() {
				target := Target{UserID: 9, Role: core.RoleManager, DepartmentID: 42}
				err := resolver.CanActOnUser(ctx, admin, ActionDeleteUser, target)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
			})

			ginkgo.It("forbids deleting itself", func() {
				target := Target{UserID: admin.UserID, Role: core.RoleAdmin, DepartmentID: 1}
				err := resolver.CanActOnUser(ctx, admin, ActionDeleteUser, target)

				appErr, ok := core.IsAppError(err)
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(appErr.Code).To(gomega.Equal(core.ErrCodeSelfDelete))
			})

			ginkgo.It("forbids hard-deleting itself", func() {
				target := Target{UserID: admin.UserID, Role: core.RoleAdmin, DepartmentID: 1}
				err := resolver.CanActOnUser(ctx, admin, ActionHardDeleteUser, target)
				gomega.Expect(err).To(gomega.HaveOccurred())
			})
		})

		ginkgo.Context("as manager", func() {
			ginkgo.It("allows acting inside the subtree", func() {
				target := Target{UserID: 9, Role: core.RoleEmployee, DepartmentID: 12}
				err := resolver.CanActOnUser(ctx, manager, ActionUpdateUser, target)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
			})

			ginkgo.It("forbids acting outside the subtree", func() {
				target := Target{UserID: 9, Role: core.RoleEmployee, DepartmentID: 99}
				err := resolver.CanActOnUser(ctx, manager, ActionUpdateUser, target)

				appErr, ok := core.IsAppError(err)
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(appErr.Type).To(gomega.Equal(core.ErrorTypeForbidden))
				gomega.Expect(appErr.Code).To(gomega.Equal(core.ErrCodeInsufficientScope))
			})

			ginkgo.It("forbids hard deletes regardless of scope", func() {
				target := Target{UserID: 9, Role: core.RoleEmployee, DepartmentID: 10}
				err := resolver.CanActOnUser(ctx, manager, ActionHardDeleteUser, target)
				gomega.Expect(err).To(gomega.HaveOccurred())
			})

			ginkgo.It("forbids deleting an admin even inside scope", func() {
				target := Target{UserID: 9, Role: core.RoleAdmin, DepartmentID: 11}
				err := resolver.CanActOnUser(ctx, manager, ActionDeleteUser, target)

				appErr, ok := core.IsAppError(err)
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(appErr.Code).To(gomega.Equal(core.ErrCodeAdminTarget))
			})

			ginkgo.It("forbids re-roling an admin", func() {
				target := Target{UserID: 9, Role: core.RoleAdmin, DepartmentID: 11}
				err := resolver.CanActOnUser(ctx, manager, ActionChangeUserRole, target)
				gomega.Expect(err).To(gomega.HaveOccurred())
			})

			ginkgo.It("forbids deleting itself", func() {
				target := Target{UserID: manager.UserID, Role: core.RoleManager, DepartmentID: 10}
				err := resolver.CanActOnUser(ctx, manager, ActionDeleteUser, target)

				appErr, ok := core.IsAppError(err)
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(appErr.Code).To(gomega.Equal(core.ErrCodeSelfDelete))
			})
		})

		ginkgo.Context("as employee", func() {
			ginkgo.It("allows reading and updating its own profile", func() {
				target := Target{UserID: employee.UserID, Role: core.RoleEmployee, DepartmentID: 11}
				gomega.Expect(resolver.CanActOnUser(ctx, employee, ActionReadUser, target)).To(gomega.Succeed())
				gomega.Expect(resolver.CanActOnUser(ctx, employee, ActionUpdateUser, target)).To(gomega.Succeed())
			})

			ginkgo.It("forbids everything aimed at others", func() {
				target := Target{UserID: 9, Role: core.RoleEmployee, DepartmentID: 11}
				err := resolver.CanActOnUser(ctx, employee, ActionReadUser, target)
				gomega.Expect(err).To(gomega.HaveOccurred())
			})

			ginkgo.It("forbids deleting even itself", func() {
				target := Target{UserID: employee.UserID, Role: core.RoleEmployee, DepartmentID: 11}
				err := resolver.CanActOnUser(ctx, employee, ActionDeleteUser, target)
				gomega.Expect(err).To(gomega.HaveOccurred())
			})
		})
	})

	ginkgo.Describe("CanActOnDepartment", func() {
		ginkgo.It("allows admins everything", func() {
			gomega.Expect(resolver.CanActOnDepartment(ctx, admin, ActionDeleteDepartment, 99)).To(gomega.Succeed())
		})

		ginkgo.It("allows managers to update inside scope", func() {
			gomega.Expect(resolver.CanActOnDepartment(ctx, manager, ActionUpdateDepartment, 11)).To(gomega.Succeed())
		})

		ginkgo.It("forbids managers outside scope", func() {
			err := resolver.CanActOnDepartment(ctx, manager, ActionUpdateDepartment, 99)
			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("forbids managers from deleting departments", func() {
			err := resolver.CanActOnDepartment(ctx, manager, ActionDeleteDepartment, 11)
			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("forbids employees entirely", func() {
			err := resolver.CanActOnDepartment(ctx, employee, ActionReadDepartment, 11)
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("CanAssignRole", func() {
		ginkgo.It("lets admins assign any role", func() {
			gomega.Expect(resolver.CanAssignRole(admin, core.RoleAdmin)).To(gomega.Succeed())
		})

		ginkgo.It("lets managers assign Manager and Employee", func() {
			gomega.Expect(resolver.CanAssignRole(manager, core.RoleManager)).To(gomega.Succeed())
			gomega.Expect(resolver.CanAssignRole(manager, core.RoleEmployee)).To(gomega.Succeed())
		})

		ginkgo.It("forbids managers from assigning Admin", func() {
			err := resolver.CanAssignRole(manager, core.RoleAdmin)

			appErr, ok := core.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(core.ErrCodeAdminTarget))
		})

		ginkgo.It("forbids employees from assigning anything", func() {
			err := resolver.CanAssignRole(employee, core.RoleEmployee)
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("CanPlaceInDepartment", func() {
		ginkgo.It("checks destination authority independently of source", func() {
			gomega.Expect(resolver.CanPlaceInDepartment(ctx, manager, 12)).To(gomega.Succeed())

			err := resolver.CanPlaceInDepartment(ctx, manager, 99)
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})
})
