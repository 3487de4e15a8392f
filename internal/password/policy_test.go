package password

import (
	"strings"
	"testing"
	"unicode"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestPassword(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Password Policy Suite")
}

var _ = ginkgo.Describe("ValidateStrength", func() {
	ginkgo.Context("when the password satisfies every rule", func() {
		ginkgo.It("should return no violations", func() {
			violations := ValidateStrength("Str0ng!Pass")

			gomega.Expect(violations).To(gomega.BeEmpty())
		})
	})

	ginkgo.Context("when the password violates multiple rules", func() {
		ginkgo.It("should report every violated rule at once", func() {
			violations := ValidateStrength("abc")

			gomega.Expect(len(violations)).To(gomega.BeNumerically(">=", 4))
			gomega.Expect(violations).To(gomega.ContainElement(gomega.ContainSubstring("8 characters")))
			gomega.Expect(violations).To(gomega.ContainElement(gomega.ContainSubstring("uppercase")))
			gomega.Expect(violations).To(gomega.ContainElement(gomega.ContainSubstring("number")))
			gomega.Expect(violations).To(gomega.ContainElement(gomega.ContainSubstring("special character")))
		})
	})

	ginkgo.Context("when a single rule is violated", func() {
		ginkgo.It("should flag a missing uppercase letter", func() {
			violations := ValidateStrength("str0ng!pass")

			gomega.Expect(violations).To(gomega.HaveLen(1))
			gomega.Expect(violations[0]).To(gomega.ContainSubstring("uppercase"))
		})

		ginkgo.It("should flag a missing lowercase letter", func() {
			violations := ValidateStrength("STR0NG!PASS")

			gomega.Expect(violations).To(gomega.HaveLen(1))
			gomega.Expect(violations[0]).To(gomega.ContainSubstring("lowercase"))
		})

		ginkgo.It("should flag a missing digit", func() {
			violations := ValidateStrength("Strong!Pass")

			gomega.Expect(violations).To(gomega.HaveLen(1))
			gomega.Expect(violations[0]).To(gomega.ContainSubstring("number"))
		})

		ginkgo.It("should flag a missing special character", func() {
			violations := ValidateStrength("Str0ngPass")

			gomega.Expect(violations).To(gomega.HaveLen(1))
			gomega.Expect(violations[0]).To(gomega.ContainSubstring("special character"))
		})
	})

	ginkgo.Context("when the password is a common weak password", func() {
		ginkgo.It("should reject it regardless of letter case", func() {
			violations := ValidateStrength("PASSWORD")

			gomega.Expect(violations).To(gomega.ContainElement(gomega.ContainSubstring("too common")))
		})

		ginkgo.It("should reject password123", func() {
			violations := ValidateStrength("password123")

			gomega.Expect(violations).To(gomega.ContainElement(gomega.ContainSubstring("too common")))
		})
	})
})

var _ = ginkgo.Describe("IsStrong", func() {
	ginkgo.It("should accept a compliant password", func() {
		gomega.Expect(IsStrong("Val1d!Password")).To(gomega.BeTrue())
	})

	ginkgo.It("should reject a short password", func() {
		gomega.Expect(IsStrong("A1!b")).To(gomega.BeFalse())
	})
})

var _ = ginkgo.Describe("Generate", func() {
	ginkgo.It("should produce a password that passes the policy", func() {
		for i := 0; i < 20; i++ {
			generated, err := Generate()

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(generated).To(gomega.HaveLen(generatedLength))
			gomega.Expect(ValidateStrength(generated)).To(gomega.BeEmpty())
		}
	})

	ginkgo.It("should include one character from each required class", func() {
		generated, err := Generate()
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		var hasUpper, hasLower, hasDigit, hasSpecial bool
		for _, ch := range generated {
			switch {
			case unicode.IsUpper(ch):
				hasUpper = true
			case unicode.IsLower(ch):
				hasLower = true
			case unicode.IsDigit(ch):
				hasDigit = true
			case strings.ContainsRune(SpecialChars, ch):
				hasSpecial = true
			}
		}

		gomega.Expect(hasUpper).To(gomega.BeTrue())
		gomega.Expect(hasLower).To(gomega.BeTrue())
		gomega.Expect(hasDigit).To(gomega.BeTrue())
		gomega.Expect(hasSpecial).To(gomega.BeTrue())
	})

	ginkgo.It("should not repeat across invocations", func() {
		first, err1 := Generate()
		second, err2 := Generate()

		gomega.Expect(err1).ToNot(gomega.HaveOccurred())
		gomega.Expect(err2).ToNot(gomega.HaveOccurred())
		gomega.Expect(first).ToNot(gomega.Equal(second))
	})
})
