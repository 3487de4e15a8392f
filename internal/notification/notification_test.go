package notification

import (
	"context"
	"log/slog"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/rahmatagung/user-management/internal/core/events"
)

func TestNotification(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Notification Module Suite")
}

type capturingSender struct {
	to      []string
	subject []string
	body    []string
}

func (c *capturingSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	c.to = append(c.to, to)
	c.subject = append(c.subject, subject)
	c.body = append(c.body, htmlBody)
	return nil
}

var _ = ginkgo.Describe("NotificationService", func() {
	var (
		service *Service
		sender  *capturingSender
		bus     *events.EventBus
		ctx     context.Context
	)

	ginkgo.BeforeEach(func() {
		var err error
		sender = &capturingSender{}
		service, err = NewService(sender, slog.Default())
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		bus = events.NewEventBus(slog.Default())
		service.Register(bus)
		ctx = context.Background()
	})

	ginkgo.It("should send a welcome email on registration", func() {
		event := events.NewUserRegisteredEvent(1, "jane.doe", "jane@example.com")

		err := bus.PublishSync(ctx, event)

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(sender.to).To(gomega.Equal([]string{"jane@example.com"}))
		gomega.Expect(sender.body[0]).To(gomega.ContainSubstring("jane.doe"))
	})

	ginkgo.It("should include both roles in the role change email", func() {
		event := events.NewUserRoleChangedEvent(1, "jane.doe", "jane@example.com", "User", "Manager", "root.admin")

		err := bus.PublishSync(ctx, event)

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(sender.body[0]).To(gomega.ContainSubstring("User"))
		gomega.Expect(sender.body[0]).To(gomega.ContainSubstring("Manager"))
		gomega.Expect(sender.body[0]).To(gomega.ContainSubstring("root.admin"))
	})

	ginkgo.It("should warn the user on password change", func() {
		event := events.NewUserPasswordChangedEvent(1, "jane.doe", "jane@example.com")

		err := bus.PublishSync(ctx, event)

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(sender.subject[0]).To(gomega.ContainSubstring("password"))
	})

	ginkgo.It("should fail when the payload has no email", func() {
		event := events.NewBaseEvent(events.UserRegistered, map[string]interface{}{
			"username": "jane.doe",
		})

		err := bus.PublishSync(ctx, event)

		gomega.Expect(err).To(gomega.HaveOccurred())
	})
})
