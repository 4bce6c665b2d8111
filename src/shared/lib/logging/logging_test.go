package logging_test

import (
	"bytes"
	"os"

	"github.com/apex/log"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/audio-worker/src/shared/lib/logging"
)

var _ = Describe("Setup", func() {
	var buffer *bytes.Buffer

	BeforeEach(func() {
		buffer = &bytes.Buffer{}
		DeferCleanup(func() {
			Expect(logging.Setup(os.Stderr, logging.TextFormat, "info")).To(Succeed())
		})
	})

	It("writes json lines", func() {
		Expect(logging.Setup(buffer, logging.JSONFormat, "info")).To(Succeed())

		log.WithField("device", "cpu").Info("Loading separation model")
		Expect(buffer.String()).To(ContainSubstring(`"message":"Loading separation model"`))
		Expect(buffer.String()).To(ContainSubstring(`"device":"cpu"`))
	})

	It("drops entries below the level", func() {
		Expect(logging.Setup(buffer, logging.TextFormat, "warn")).To(Succeed())

		log.Info("quiet")
		Expect(buffer.String()).To(BeEmpty())

		log.Warn("loud")
		Expect(buffer.String()).To(ContainSubstring("loud"))
	})

	It("defaults to info", func() {
		Expect(logging.Setup(buffer, "", "")).To(Succeed())

		log.Debug("hidden")
		log.Info("shown")
		Expect(buffer.String()).NotTo(ContainSubstring("hidden"))
		Expect(buffer.String()).To(ContainSubstring("shown"))
	})

	DescribeTable("rejects bad settings",
		func(format string, level string) {
			Expect(logging.Setup(buffer, format, level)).NotTo(Succeed())
		},
		Entry("unknown format", "xml", "info"),
		Entry("unknown level", "text", "chatty"),
	)
})
