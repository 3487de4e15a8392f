package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestLogger(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Logger Suite")
}

var _ = ginkgo.Describe("context logger", func() {
	ginkgo.It("should round-trip a request-scoped logger", func() {
		var buf bytes.Buffer
		scoped := slog.New(slog.NewJSONHandler(&buf, nil)).With("request_id", "req-123")

		ctx := IntoContext(context.Background(), scoped)
		FromContext(ctx).Info("hello")

		gomega.Expect(buf.String()).To(gomega.ContainSubstring(`"request_id":"req-123"`))
		gomega.Expect(buf.String()).To(gomega.ContainSubstring("hello"))
	})

	ginkgo.It("should fall back to the process logger for a bare context", func() {
		l := FromContext(context.Background())

		gomega.Expect(l).NotTo(gomega.BeNil())
	})
})
