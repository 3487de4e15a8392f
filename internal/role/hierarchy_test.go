package role

import (
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestRole(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Role Module Suite")
}

var _ = ginkgo.Describe("CanChangeRole", func() {
	ginkgo.Context("SuperAdmin actor", func() {
		ginkgo.It("should change any role including another SuperAdmin", func() {
			gomega.Expect(CanChangeRole(SuperAdmin, SuperAdmin, Viewer)).To(gomega.BeTrue())
			gomega.Expect(CanChangeRole(SuperAdmin, Viewer, SuperAdmin)).To(gomega.BeTrue())
			gomega.Expect(CanChangeRole(SuperAdmin, User, Admin)).To(gomega.BeTrue())
		})
	})

	ginkgo.Context("Admin actor", func() {
		ginkgo.It("should change any non-SuperAdmin target", func() {
			gomega.Expect(CanChangeRole(Admin, User, Manager)).To(gomega.BeTrue())
			gomega.Expect(CanChangeRole(Admin, Viewer, Admin)).To(gomega.BeTrue())
			gomega.Expect(CanChangeRole(Admin, Manager, SuperAdmin)).To(gomega.BeTrue())
		})

		ginkgo.It("should not touch a SuperAdmin target", func() {
			gomega.Expect(CanChangeRole(Admin, SuperAdmin, User)).To(gomega.BeFalse())
		})
	})

	ginkgo.Context("lower-ranked actors", func() {
		ginkgo.It("should require outranking the target", func() {
			gomega.Expect(CanChangeRole(Manager, User, Viewer)).To(gomega.BeTrue())
			gomega.Expect(CanChangeRole(Manager, Admin, Viewer)).To(gomega.BeFalse())
			gomega.Expect(CanChangeRole(Manager, Manager, Viewer)).To(gomega.BeFalse())
		})

		ginkgo.It("should not promote above the actor's own rank", func() {
			gomega.Expect(CanChangeRole(Manager, User, Admin)).To(gomega.BeFalse())
			gomega.Expect(CanChangeRole(Manager, User, Manager)).To(gomega.BeTrue())
			gomega.Expect(CanChangeRole(Editor, User, Manager)).To(gomega.BeFalse())
		})

		ginkgo.It("should deny Viewer actors any change", func() {
			gomega.Expect(CanChangeRole(Viewer, User, Viewer)).To(gomega.BeFalse())
		})
	})

	ginkgo.Context("unknown role names", func() {
		ginkgo.It("should deny", func() {
			gomega.Expect(CanChangeRole("Ghost", User, Viewer)).To(gomega.BeFalse())
			gomega.Expect(CanChangeRole(Manager, "Ghost", Viewer)).To(gomega.BeFalse())
			gomega.Expect(CanChangeRole(Manager, User, "Ghost")).To(gomega.BeFalse())
		})
	})
})

var _ = ginkgo.Describe("Rank", func() {
	ginkgo.It("should order roles by privilege", func() {
		superRank, ok := Rank(SuperAdmin)
		gomega.Expect(ok).To(gomega.BeTrue())

		viewerRank, ok := Rank(Viewer)
		gomega.Expect(ok).To(gomega.BeTrue())

		gomega.Expect(superRank).To(gomega.BeNumerically("<", viewerRank))
	})

	ginkgo.It("should report unknown names", func() {
		_, ok := Rank("Ghost")
		gomega.Expect(ok).To(gomega.BeFalse())
	})
})
