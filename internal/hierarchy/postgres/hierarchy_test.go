package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frahmantamala/org-directory/internal/hierarchy"
	hierarchyPostgres "github.com/frahmantamala/org-directory/internal/hierarchy/postgres"
)

func TestHierarchyPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Hierarchy Postgres Suite")
}

// SQLiteDepartment is a SQLite-compatible slice of the departments table,
// just enough for the existence queries.
type SQLiteDepartment struct {
	ID        int64      `gorm:"primaryKey"`
	Name      string     `gorm:"column:name;not null"`
	DeletedAt *time.Time `gorm:"column:deleted_at"`
}

func (SQLiteDepartment) TableName() string {
	return "departments"
}

var _ = Describe("Hierarchy PostgreSQL Repository", func() {
	var (
		db   *gorm.DB
		repo hierarchy.Repository
		ctx  context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteDepartment{}, &hierarchy.Edge{})
		Expect(err).NotTo(HaveOccurred())

		for id, name := range map[int64]string{1: "Group", 2: "Engineering", 3: "Finance"} {
			Expect(db.Create(&SQLiteDepartment{ID: id, Name: name}).Error).NotTo(HaveOccurred())
		}

		repo = hierarchyPostgres.NewHierarchyRepository(db)
		ctx = context.Background()
	})

	Describe("CreateEdge and EdgeExists", func() {
		It("should persist an edge and find it again", func() {
			err := repo.CreateEdge(ctx, &hierarchy.Edge{ParentDepartmentID: 1, ChildDepartmentID: 2})
			Expect(err).NotTo(HaveOccurred())

			exists, err := repo.EdgeExists(ctx, 1, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())
		})

		It("should not report the reverse direction", func() {
			err := repo.CreateEdge(ctx, &hierarchy.Edge{ParentDepartmentID: 1, ChildDepartmentID: 2})
			Expect(err).NotTo(HaveOccurred())

			exists, err := repo.EdgeExists(ctx, 2, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})

		It("should reject a duplicate edge via the composite primary key", func() {
			err := repo.CreateEdge(ctx, &hierarchy.Edge{ParentDepartmentID: 1, ChildDepartmentID: 2})
			Expect(err).NotTo(HaveOccurred())

			err = repo.CreateEdge(ctx, &hierarchy.Edge{ParentDepartmentID: 1, ChildDepartmentID: 2})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("DeleteEdge", func() {
		It("should remove only the named edge", func() {
			Expect(repo.CreateEdge(ctx, &hierarchy.Edge{ParentDepartmentID: 1, ChildDepartmentID: 2})).To(Succeed())
			Expect(repo.CreateEdge(ctx, &hierarchy.Edge{ParentDepartmentID: 1, ChildDepartmentID: 3})).To(Succeed())

			Expect(repo.DeleteEdge(ctx, 1, 2)).To(Succeed())

			exists, err := repo.EdgeExists(ctx, 1, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())

			exists, err = repo.EdgeExists(ctx, 1, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())
		})
	})

	Describe("ParentIDs and ChildIDs", func() {
		BeforeEach(func() {
			Expect(repo.CreateEdge(ctx, &hierarchy.Edge{ParentDepartmentID: 1, ChildDepartmentID: 2})).To(Succeed())
			Expect(repo.CreateEdge(ctx, &hierarchy.Edge{ParentDepartmentID: 1, ChildDepartmentID: 3})).To(Succeed())
			Expect(repo.CreateEdge(ctx, &hierarchy.Edge{ParentDepartmentID: 2, ChildDepartmentID: 3})).To(Succeed())
		})

		It("should list direct children only", func() {
			ids, err := repo.ChildIDs(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(ConsistOf(int64(2), int64(3)))
		})

		It("should list all direct parents", func() {
			ids, err := repo.ParentIDs(ctx, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(ConsistOf(int64(1), int64(2)))
		})

		It("should return empty for a root", func() {
			ids, err := repo.ParentIDs(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(BeEmpty())
		})
	})

	Describe("ListEdges", func() {
		It("should return every edge in deterministic order", func() {
			Expect(repo.CreateEdge(ctx, &hierarchy.Edge{ParentDepartmentID: 2, ChildDepartmentID: 3})).To(Succeed())
			Expect(repo.CreateEdge(ctx, &hierarchy.Edge{ParentDepartmentID: 1, ChildDepartmentID: 2})).To(Succeed())

			edges, err := repo.ListEdges(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(edges).To(HaveLen(2))
			Expect(edges[0].ParentDepartmentID).To(Equal(int64(1)))
			Expect(edges[1].ParentDepartmentID).To(Equal(int64(2)))
		})
	})

	Describe("DepartmentExists", func() {
		It("should see live departments", func() {
			exists, err := repo.DepartmentExists(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())
		})

		It("should not see unknown ids", func() {
			exists, err := repo.DepartmentExists(ctx, 99)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})

		It("should not see soft-deleted departments", func() {
			now := time.Now()
			err := db.Model(&SQLiteDepartment{}).Where("id = ?", 3).Update("deleted_at", &now).Error
			Expect(err).NotTo(HaveOccurred())

			exists, err := repo.DepartmentExists(ctx, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})
	})

	Describe("InTx", func() {
		It("should roll back every write when fn fails", func() {
			err := repo.InTx(ctx, func(tx hierarchy.Repository) error {
				if err := tx.CreateEdge(ctx, &hierarchy.Edge{ParentDepartmentID: 1, ChildDepartmentID: 2}); err != nil {
					return err
				}
				return errors.New("boom")
			})
			Expect(err).To(HaveOccurred())

			exists, err := repo.EdgeExists(ctx, 1, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})

		It("should commit when fn succeeds", func() {
			err := repo.InTx(ctx, func(tx hierarchy.Repository) error {
				return tx.CreateEdge(ctx, &hierarchy.Edge{ParentDepartmentID: 1, ChildDepartmentID: 2})
			})
			Expect(err).NotTo(HaveOccurred())

			exists, err := repo.EdgeExists(ctx, 1, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())
		})
	})
})
