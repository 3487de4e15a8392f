package postgres_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rahmatagung/user-management/internal/audit"
	auditPostgres "github.com/rahmatagung/user-management/internal/audit/postgres"
	auditDatamodel "github.com/rahmatagung/user-management/internal/core/datamodel/audit"
)

func TestAuditPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Audit Postgres Suite")
}

// SQLite-compatible models for testing

type SQLiteRole struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"column:name;uniqueIndex;not null"`
}

func (SQLiteRole) TableName() string { return "roles" }

type SQLiteUser struct {
	ID       int64  `gorm:"primaryKey"`
	Username string `gorm:"column:username;uniqueIndex;not null"`
}

func (SQLiteUser) TableName() string { return "users" }

var _ = Describe("Audit PostgreSQL Repository", func() {
	var (
		ctx  context.Context
		db   *gorm.DB
		repo audit.RepositoryAPI
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(
			&SQLiteRole{},
			&SQLiteUser{},
			&auditDatamodel.UserRoleChangeLog{},
			&auditDatamodel.PasswordChangeLog{},
			&auditDatamodel.PasswordHistory{},
		)
		Expect(err).NotTo(HaveOccurred())

		Expect(db.Create(&SQLiteRole{ID: 2, Name: "Admin"}).Error).NotTo(HaveOccurred())
		Expect(db.Create(&SQLiteRole{ID: 5, Name: "User"}).Error).NotTo(HaveOccurred())
		Expect(db.Create(&SQLiteUser{ID: 1, Username: "root.admin"}).Error).NotTo(HaveOccurred())
		Expect(db.Create(&SQLiteUser{ID: 42, Username: "jane.doe"}).Error).NotTo(HaveOccurred())

		repo = auditPostgres.NewAuditRepository(db)
	})

	Describe("AppendRoleChange", func() {
		It("should persist a role change entry", func() {
			err := repo.AppendRoleChange(ctx, audit.RoleChange{
				UserID:          42,
				PreviousRoleID:  5,
				NewRoleID:       2,
				ChangedByUserID: 1,
				Reason:          "promotion",
			})
			Expect(err).NotTo(HaveOccurred())

			var count int64
			db.Model(&auditDatamodel.UserRoleChangeLog{}).Count(&count)
			Expect(count).To(Equal(int64(1)))
		})
	})

	Describe("GetRoleHistory", func() {
		BeforeEach(func() {
			for i, reason := range []string{"first", "second", "third"} {
				row := auditDatamodel.UserRoleChangeLog{
					UserID:          42,
					PreviousRoleID:  5,
					NewRoleID:       2,
					ChangedByUserID: 1,
					Reason:          reason,
					CreatedAt:       time.Now().Add(time.Duration(i-3) * 24 * time.Hour),
				}
				Expect(db.Create(&row).Error).NotTo(HaveOccurred())
			}
		})

		It("should return entries newest first with role names resolved", func() {
			entries, err := repo.GetRoleHistory(ctx, 42, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(3))
			Expect(entries[0].Reason).To(Equal("third"))
			Expect(entries[0].PreviousRoleName).To(Equal("User"))
			Expect(entries[0].NewRoleName).To(Equal("Admin"))
			Expect(entries[0].ChangedByName).To(Equal("root.admin"))
		})

		It("should honor the from/to range", func() {
			from := time.Now().Add(-36 * time.Hour)
			entries, err := repo.GetRoleHistory(ctx, 42, &from, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(2))

			to := time.Now().Add(-60 * time.Hour)
			entries, err = repo.GetRoleHistory(ctx, 42, nil, &to)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Reason).To(Equal("first"))
		})

		It("should return empty history for a user with no changes", func() {
			entries, err := repo.GetRoleHistory(ctx, 999, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})
	})

	Describe("GetRecentPasswordHashes", func() {
		It("should return the newest hashes up to the limit", func() {
			for i := 0; i < 7; i++ {
				row := auditDatamodel.PasswordHistory{
					UserID:       42,
					PasswordHash: "hash" + string(rune('a'+i)),
					CreatedAt:    time.Now().Add(time.Duration(i-7) * time.Hour),
				}
				Expect(db.Create(&row).Error).NotTo(HaveOccurred())
			}

			hashes, err := repo.GetRecentPasswordHashes(ctx, 42, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(hashes).To(HaveLen(5))
			Expect(hashes[0]).To(Equal("hashg"))
		})
	})

	Describe("retention deletes", func() {
		It("should delete only rows older than the cutoff", func() {
			old := auditDatamodel.UserRoleChangeLog{
				UserID: 42, PreviousRoleID: 5, NewRoleID: 2, ChangedByUserID: 1,
				CreatedAt: time.Now().Add(-40 * 24 * time.Hour),
			}
			recent := auditDatamodel.UserRoleChangeLog{
				UserID: 42, PreviousRoleID: 5, NewRoleID: 2, ChangedByUserID: 1,
				CreatedAt: time.Now().Add(-2 * 24 * time.Hour),
			}
			Expect(db.Create(&old).Error).NotTo(HaveOccurred())
			Expect(db.Create(&recent).Error).NotTo(HaveOccurred())

			deleted, err := repo.DeleteRoleChangesBefore(ctx, time.Now().Add(-30*24*time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(deleted).To(Equal(int64(1)))

			var count int64
			db.Model(&auditDatamodel.UserRoleChangeLog{}).Count(&count)
			Expect(count).To(Equal(int64(1)))
		})
	})

	Describe("TrimPasswordHistory", func() {
		It("should keep the newest N rows per user", func() {
			for userID := int64(1); userID <= 2; userID++ {
				for i := 0; i < 8; i++ {
					row := auditDatamodel.PasswordHistory{
						UserID:       userID,
						PasswordHash: "h",
						CreatedAt:    time.Now().Add(time.Duration(-i) * time.Hour),
					}
					Expect(db.Create(&row).Error).NotTo(HaveOccurred())
				}
			}

			deleted, err := repo.TrimPasswordHistory(ctx, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(deleted).To(Equal(int64(6)))

			var count int64
			db.Model(&auditDatamodel.PasswordHistory{}).Where("user_id = ?", 1).Count(&count)
			Expect(count).To(Equal(int64(5)))
		})
	})
})
