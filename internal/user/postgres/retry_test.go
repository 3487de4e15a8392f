package postgres

import (
	"errors"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("transaction retry", func() {
	var repo *UserRepository

	BeforeEach(func() {
		repo = &UserRepository{logger: slog.Default()}
	})

	Describe("withRetry", func() {
		It("should retry a serialization failure until it succeeds", func() {
			attempts := 0
			err := repo.withRetry(func() error {
				attempts++
				if attempts < 3 {
					return errors.New("could not serialize access due to concurrent update")
				}
				return nil
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(attempts).To(Equal(3))
		})

		It("should give up after the retry budget", func() {
			attempts := 0
			err := repo.withRetry(func() error {
				attempts++
				return errors.New("deadlock detected")
			})

			Expect(err).To(HaveOccurred())
			Expect(attempts).To(Equal(maxTxRetries))
		})

		It("should not retry other errors", func() {
			attempts := 0
			err := repo.withRetry(func() error {
				attempts++
				return errors.New("connection refused")
			})

			Expect(err).To(HaveOccurred())
			Expect(attempts).To(Equal(1))
		})
	})

	Describe("isRetryable", func() {
		It("should match serialization failures and unique collisions", func() {
			Expect(isRetryable(errors.New("deadlock detected"))).To(BeTrue())
			Expect(isRetryable(errors.New("ERROR: could not serialize access"))).To(BeTrue())
			Expect(isRetryable(errors.New("duplicate key value violates unique constraint"))).To(BeTrue())
			Expect(isRetryable(errors.New("UNIQUE constraint failed: users.username"))).To(BeTrue())
			Expect(isRetryable(errors.New("connection refused"))).To(BeFalse())
		})
	})
})
