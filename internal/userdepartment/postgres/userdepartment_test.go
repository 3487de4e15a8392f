package postgres_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	departmentDatamodel "github.com/rahmatagung/user-management/internal/core/datamodel/department"
	"github.com/rahmatagung/user-management/internal/userdepartment"
	udPostgres "github.com/rahmatagung/user-management/internal/userdepartment/postgres"
)

func TestUserDepartmentPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "UserDepartment Postgres Suite")
}

type SQLiteUser struct {
	ID       int64  `gorm:"primaryKey"`
	Username string `gorm:"column:username;uniqueIndex;not null"`
}

func (SQLiteUser) TableName() string { return "users" }

var _ = Describe("UserDepartment PostgreSQL Repository", func() {
	var (
		ctx  context.Context
		db   *gorm.DB
		repo userdepartment.RepositoryAPI
	)

	membership := func(deptID int64, primary bool) userdepartment.Membership {
		return userdepartment.Membership{
			DepartmentID:     deptID,
			IsPrimary:        primary,
			AssignedByUserID: 1,
			AssignedAt:       time.Now(),
		}
	}

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(
			&SQLiteUser{},
			&departmentDatamodel.Department{},
			&departmentDatamodel.UserDepartment{},
		)
		Expect(err).NotTo(HaveOccurred())

		Expect(db.Create(&SQLiteUser{ID: 1, Username: "root.admin"}).Error).NotTo(HaveOccurred())
		Expect(db.Create(&SQLiteUser{ID: 42, Username: "jane.doe"}).Error).NotTo(HaveOccurred())

		for _, dept := range []departmentDatamodel.Department{
			{ID: 10, Name: "Engineering", Code: "ENG", IsActive: true},
			{ID: 20, Name: "Sales", Code: "SLS", IsActive: true},
			{ID: 30, Name: "Marketing", Code: "MKT", IsActive: true},
		} {
			Expect(db.Create(&dept).Error).NotTo(HaveOccurred())
		}

		repo = udPostgres.NewUserDepartmentRepository(db, slog.Default())
	})

	Describe("ReplaceMemberships", func() {
		It("should persist the full set with one primary", func() {
			err := repo.ReplaceMemberships(ctx, 42, []userdepartment.Membership{
				membership(10, false),
				membership(20, true),
				membership(30, false),
			})
			Expect(err).NotTo(HaveOccurred())

			memberships, err := repo.GetMemberships(ctx, 42)
			Expect(err).NotTo(HaveOccurred())
			Expect(memberships).To(HaveLen(3))

			var primaries int
			for _, m := range memberships {
				if m.IsPrimary {
					primaries++
					Expect(m.DepartmentID).To(Equal(int64(20)))
				}
			}
			Expect(primaries).To(Equal(1))
		})

		It("should drop rows absent from the new set", func() {
			Expect(repo.ReplaceMemberships(ctx, 42, []userdepartment.Membership{
				membership(10, true),
				membership(20, false),
			})).NotTo(HaveOccurred())

			Expect(repo.ReplaceMemberships(ctx, 42, []userdepartment.Membership{
				membership(30, true),
			})).NotTo(HaveOccurred())

			memberships, err := repo.GetMemberships(ctx, 42)
			Expect(err).NotTo(HaveOccurred())
			Expect(memberships).To(HaveLen(1))
			Expect(memberships[0].DepartmentID).To(Equal(int64(30)))
		})

		It("should not touch other users' memberships", func() {
			Expect(repo.ReplaceMemberships(ctx, 1, []userdepartment.Membership{
				membership(10, true),
			})).NotTo(HaveOccurred())

			Expect(repo.ReplaceMemberships(ctx, 42, []userdepartment.Membership{
				membership(20, true),
			})).NotTo(HaveOccurred())

			memberships, err := repo.GetMemberships(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(memberships).To(HaveLen(1))
			Expect(memberships[0].DepartmentID).To(Equal(int64(10)))
		})

		It("should resolve department name and code in reads", func() {
			Expect(repo.ReplaceMemberships(ctx, 42, []userdepartment.Membership{
				membership(10, true),
			})).NotTo(HaveOccurred())

			memberships, err := repo.GetMemberships(ctx, 42)
			Expect(err).NotTo(HaveOccurred())
			Expect(memberships[0].DepartmentName).To(Equal("Engineering"))
			Expect(memberships[0].DepartmentCode).To(Equal("ENG"))
		})
	})

	Describe("SetPrimary", func() {
		BeforeEach(func() {
			Expect(repo.ReplaceMemberships(ctx, 42, []userdepartment.Membership{
				membership(10, true),
				membership(20, false),
			})).NotTo(HaveOccurred())
		})

		It("should move the primary flag atomically", func() {
			Expect(repo.SetPrimary(ctx, 42, 20)).NotTo(HaveOccurred())

			memberships, err := repo.GetMemberships(ctx, 42)
			Expect(err).NotTo(HaveOccurred())

			for _, m := range memberships {
				Expect(m.IsPrimary).To(Equal(m.DepartmentID == int64(20)))
			}
		})

		It("should reject a non-member department", func() {
			err := repo.SetPrimary(ctx, 42, 30)
			Expect(err).To(Equal(userdepartment.ErrNotMember))
		})
	})

	Describe("Clear", func() {
		It("should delete all memberships and report the count", func() {
			Expect(repo.ReplaceMemberships(ctx, 42, []userdepartment.Membership{
				membership(10, true),
				membership(20, false),
			})).NotTo(HaveOccurred())

			removed, err := repo.Clear(ctx, 42)
			Expect(err).NotTo(HaveOccurred())
			Expect(removed).To(Equal(int64(2)))

			memberships, err := repo.GetMemberships(ctx, 42)
			Expect(err).NotTo(HaveOccurred())
			Expect(memberships).To(BeEmpty())
		})
	})

	Describe("HasMembership", func() {
		It("should report membership accurately", func() {
			Expect(repo.ReplaceMemberships(ctx, 42, []userdepartment.Membership{
				membership(10, true),
			})).NotTo(HaveOccurred())

			isMember, err := repo.HasMembership(ctx, 42, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(isMember).To(BeTrue())

			isMember, err = repo.HasMembership(ctx, 42, 20)
			Expect(err).NotTo(HaveOccurred())
			Expect(isMember).To(BeFalse())
		})
	})

	Describe("UserExists", func() {
		It("should find seeded users and miss unknown IDs", func() {
			exists, err := repo.UserExists(ctx, 42)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())

			exists, err = repo.UserExists(ctx, 999)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})
	})

	Describe("Stats", func() {
		It("should count members and primaries per department", func() {
			Expect(repo.ReplaceMemberships(ctx, 1, []userdepartment.Membership{
				membership(10, true),
			})).NotTo(HaveOccurred())
			Expect(repo.ReplaceMemberships(ctx, 42, []userdepartment.Membership{
				membership(10, false),
				membership(20, true),
			})).NotTo(HaveOccurred())

			stats, err := repo.Stats(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats).To(HaveLen(3))

			byID := make(map[int64]userdepartment.DepartmentStats)
			for _, s := range stats {
				byID[s.DepartmentID] = s
			}

			Expect(byID[10].MemberCount).To(Equal(int64(2)))
			Expect(byID[10].PrimaryCount).To(Equal(int64(1)))
			Expect(byID[20].MemberCount).To(Equal(int64(1)))
			Expect(byID[30].MemberCount).To(Equal(int64(0)))
		})
	})
})
