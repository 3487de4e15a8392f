package userdepartment

import (
	"context"
	"log/slog"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	internalErrors "github.com/rahmatagung/user-management/internal"
	"github.com/rahmatagung/user-management/internal/department"
)

func TestUserDepartment(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "UserDepartment Module Suite")
}

type mockMembershipRepository struct {
	users       map[int64]bool
	memberships map[int64][]Membership
	replaceLog  int
}

func newMockMembershipRepository() *mockMembershipRepository {
	return &mockMembershipRepository{
		users:       map[int64]bool{1: true, 42: true},
		memberships: make(map[int64][]Membership),
	}
}

func (m *mockMembershipRepository) UserExists(ctx context.Context, userID int64) (bool, error) {
	return m.users[userID], nil
}

func (m *mockMembershipRepository) GetMemberships(ctx context.Context, userID int64) ([]Membership, error) {
	out := make([]Membership, len(m.memberships[userID]))
	copy(out, m.memberships[userID])
	return out, nil
}

func (m *mockMembershipRepository) ReplaceMemberships(ctx context.Context, userID int64, memberships []Membership) error {
	m.replaceLog++
	rows := make([]Membership, len(memberships))
	copy(rows, memberships)
	m.memberships[userID] = rows
	return nil
}

func (m *mockMembershipRepository) Clear(ctx context.Context, userID int64) (int64, error) {
	removed := int64(len(m.memberships[userID]))
	delete(m.memberships, userID)
	return removed, nil
}

func (m *mockMembershipRepository) SetPrimary(ctx context.Context, userID, departmentID int64) error {
	rows := m.memberships[userID]
	found := false
	for i := range rows {
		if rows[i].DepartmentID == departmentID {
			found = true
		}
	}
	if !found {
		return ErrNotMember
	}
	for i := range rows {
		rows[i].IsPrimary = rows[i].DepartmentID == departmentID
	}
	return nil
}

func (m *mockMembershipRepository) HasMembership(ctx context.Context, userID, departmentID int64) (bool, error) {
	for _, row := range m.memberships[userID] {
		if row.DepartmentID == departmentID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockMembershipRepository) Stats(ctx context.Context) ([]DepartmentStats, error) {
	return nil, nil
}

type mockDeptRepository struct {
	departments map[int64]department.Department
}

func newMockDeptRepository() *mockDeptRepository {
	return &mockDeptRepository{
		departments: map[int64]department.Department{
			10: {ID: 10, Name: "Engineering", Code: "ENG", IsActive: true},
			20: {ID: 20, Name: "Sales", Code: "SLS", IsActive: true},
			30: {ID: 30, Name: "Marketing", Code: "MKT", IsActive: true},
			40: {ID: 40, Name: "Legacy", Code: "LGC", IsActive: false},
		},
	}
}

func (m *mockDeptRepository) Create(ctx context.Context, dept *department.Department) error { return nil }

func (m *mockDeptRepository) GetAll(ctx context.Context, activeOnly bool) ([]department.Department, error) {
	return nil, nil
}

func (m *mockDeptRepository) GetByID(ctx context.Context, id int64) (*department.Department, error) {
	if dept, ok := m.departments[id]; ok {
		return &dept, nil
	}
	return nil, department.ErrNotFound
}

func (m *mockDeptRepository) GetByCode(ctx context.Context, code string) (*department.Department, error) {
	return nil, department.ErrNotFound
}

func (m *mockDeptRepository) GetByIDs(ctx context.Context, ids []int64) ([]department.Department, error) {
	var out []department.Department
	for _, id := range ids {
		if dept, ok := m.departments[id]; ok {
			out = append(out, dept)
		}
	}
	return out, nil
}

func primaryOf(memberships []Membership) []int64 {
	var primaries []int64
	for _, m := range memberships {
		if m.IsPrimary {
			primaries = append(primaries, m.DepartmentID)
		}
	}
	return primaries
}

var _ = ginkgo.Describe("UserDepartmentService", func() {
	var (
		ctx      context.Context
		service  *Service
		mockRepo *mockMembershipRepository
		deptRepo *mockDeptRepository
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		mockRepo = newMockMembershipRepository()
		deptRepo = newMockDeptRepository()
		service = NewService(mockRepo, deptRepo, slog.Default())
	})

	ginkgo.Describe("AssignDepartments", func() {
		ginkgo.It("should replace the set and honor the requested primary", func() {
			primary := int64(20)
			memberships, err := service.AssignDepartments(ctx, 42, AssignDepartmentsDTO{
				DepartmentIDs:       []int64{10, 20, 30},
				PrimaryDepartmentID: &primary,
			}, 1)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(memberships).To(gomega.HaveLen(3))
			gomega.Expect(primaryOf(memberships)).To(gomega.Equal([]int64{20}))
		})

		ginkgo.It("should fall back to the lowest department ID as primary", func() {
			memberships, err := service.AssignDepartments(ctx, 42, AssignDepartmentsDTO{
				DepartmentIDs: []int64{30, 10, 20},
			}, 1)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(primaryOf(memberships)).To(gomega.Equal([]int64{10}))
		})

		ginkgo.It("should discard the previous set entirely", func() {
			_, err := service.AssignDepartments(ctx, 42, AssignDepartmentsDTO{
				DepartmentIDs: []int64{10, 20},
			}, 1)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			memberships, err := service.AssignDepartments(ctx, 42, AssignDepartmentsDTO{
				DepartmentIDs: []int64{30},
			}, 1)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(memberships).To(gomega.HaveLen(1))
			gomega.Expect(memberships[0].DepartmentID).To(gomega.Equal(int64(30)))
			gomega.Expect(memberships[0].IsPrimary).To(gomega.BeTrue())
		})

		ginkgo.It("should reject an empty department set", func() {
			_, err := service.AssignDepartments(ctx, 42, AssignDepartmentsDTO{}, 1)

			gomega.Expect(err).To(gomega.HaveOccurred())
			appErr, ok := internalErrors.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.StatusCode).To(gomega.Equal(400))
		})

		ginkgo.It("should reject duplicate department IDs", func() {
			_, err := service.AssignDepartments(ctx, 42, AssignDepartmentsDTO{
				DepartmentIDs: []int64{10, 10},
			}, 1)

			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("should reject a primary outside the assigned set", func() {
			primary := int64(30)
			_, err := service.AssignDepartments(ctx, 42, AssignDepartmentsDTO{
				DepartmentIDs:       []int64{10, 20},
				PrimaryDepartmentID: &primary,
			}, 1)

			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(mockRepo.replaceLog).To(gomega.Equal(0))
		})

		ginkgo.It("should reject unknown departments", func() {
			_, err := service.AssignDepartments(ctx, 42, AssignDepartmentsDTO{
				DepartmentIDs: []int64{10, 999},
			}, 1)

			gomega.Expect(err).To(gomega.Equal(internalErrors.ErrDepartmentNotFound))
		})

		ginkgo.It("should reject inactive departments", func() {
			_, err := service.AssignDepartments(ctx, 42, AssignDepartmentsDTO{
				DepartmentIDs: []int64{10, 40},
			}, 1)

			gomega.Expect(err).To(gomega.HaveOccurred())
			appErr, ok := internalErrors.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internalErrors.ErrCodeDepartmentInactive))
		})

		ginkgo.It("should reject an unknown user", func() {
			_, err := service.AssignDepartments(ctx, 999, AssignDepartmentsDTO{
				DepartmentIDs: []int64{10},
			}, 1)

			gomega.Expect(err).To(gomega.Equal(internalErrors.ErrUserNotFound))
		})
	})

	ginkgo.Describe("UpdateUserDepartments", func() {
		ginkgo.BeforeEach(func() {
			_, err := service.AssignDepartments(ctx, 42, AssignDepartmentsDTO{
				DepartmentIDs: []int64{10, 20},
			}, 1)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should add and remove in one request", func() {
			memberships, err := service.UpdateUserDepartments(ctx, 42, UpdateDepartmentsDTO{
				AddDepartmentIDs:    []int64{30},
				RemoveDepartmentIDs: []int64{20},
			}, 1)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(memberships).To(gomega.HaveLen(2))
			gomega.Expect(primaryOf(memberships)).To(gomega.Equal([]int64{10}))
		})

		ginkgo.It("should reject overlapping add and remove lists before any write", func() {
			writes := mockRepo.replaceLog

			_, err := service.UpdateUserDepartments(ctx, 42, UpdateDepartmentsDTO{
				AddDepartmentIDs:    []int64{30, 20},
				RemoveDepartmentIDs: []int64{20},
			}, 1)

			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(mockRepo.replaceLog).To(gomega.Equal(writes))
		})

		ginkgo.It("should treat adding an existing membership as a no-op", func() {
			memberships, err := service.UpdateUserDepartments(ctx, 42, UpdateDepartmentsDTO{
				AddDepartmentIDs: []int64{10, 30},
			}, 1)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(memberships).To(gomega.HaveLen(3))
		})

		ginkgo.It("should reject removing a department the user does not have", func() {
			_, err := service.UpdateUserDepartments(ctx, 42, UpdateDepartmentsDTO{
				RemoveDepartmentIDs: []int64{30},
			}, 1)

			gomega.Expect(err).To(gomega.Equal(internalErrors.ErrNotMember))
		})

		ginkgo.It("should flip the primary when the current one is removed", func() {
			memberships, err := service.UpdateUserDepartments(ctx, 42, UpdateDepartmentsDTO{
				RemoveDepartmentIDs: []int64{10},
			}, 1)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(primaryOf(memberships)).To(gomega.Equal([]int64{20}))
		})

		ginkgo.It("should honor an explicit new primary", func() {
			primary := int64(20)
			memberships, err := service.UpdateUserDepartments(ctx, 42, UpdateDepartmentsDTO{
				PrimaryDepartmentID: &primary,
			}, 1)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(primaryOf(memberships)).To(gomega.Equal([]int64{20}))
		})

		ginkgo.It("should reject an empty patch", func() {
			_, err := service.UpdateUserDepartments(ctx, 42, UpdateDepartmentsDTO{}, 1)

			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("should allow removing every membership", func() {
			memberships, err := service.UpdateUserDepartments(ctx, 42, UpdateDepartmentsDTO{
				RemoveDepartmentIDs: []int64{10, 20},
			}, 1)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(memberships).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("SetPrimaryDepartment", func() {
		ginkgo.BeforeEach(func() {
			_, err := service.AssignDepartments(ctx, 42, AssignDepartmentsDTO{
				DepartmentIDs: []int64{10, 20},
			}, 1)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should move the primary flag", func() {
			err := service.SetPrimaryDepartment(ctx, 42, SetPrimaryDTO{DepartmentID: 20})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			memberships, _ := service.GetUserDepartments(ctx, 42)
			gomega.Expect(primaryOf(memberships)).To(gomega.Equal([]int64{20}))
		})

		ginkgo.It("should reject a department the user does not have", func() {
			err := service.SetPrimaryDepartment(ctx, 42, SetPrimaryDTO{DepartmentID: 30})

			gomega.Expect(err).To(gomega.Equal(internalErrors.ErrNotMember))
		})
	})

	ginkgo.Describe("CheckMembership", func() {
		ginkgo.It("should report membership accurately", func() {
			_, err := service.AssignDepartments(ctx, 42, AssignDepartmentsDTO{
				DepartmentIDs: []int64{10},
			}, 1)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			isMember, err := service.CheckMembership(ctx, 42, 10)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(isMember).To(gomega.BeTrue())

			isMember, err = service.CheckMembership(ctx, 42, 20)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(isMember).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("ClearUserDepartments", func() {
		ginkgo.It("should remove every membership and report the count", func() {
			_, err := service.AssignDepartments(ctx, 42, AssignDepartmentsDTO{
				DepartmentIDs: []int64{10, 20, 30},
			}, 1)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			removed, err := service.ClearUserDepartments(ctx, 42)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(removed).To(gomega.Equal(int64(3)))

			memberships, _ := service.GetUserDepartments(ctx, 42)
			gomega.Expect(memberships).To(gomega.BeEmpty())
		})
	})
})
