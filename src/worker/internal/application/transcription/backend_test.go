package transcription_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/audio"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/capability"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/integration_test/dummy"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/transcription"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/errkind"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/working_dir"
)

var _ = Describe("SelectBackend", func() {
	var (
		basicPitch transcription.BasicPitch
		native     transcription.Native
	)

	BeforeEach(func() {
		workingDir, err := working_dir.NewWorkingDir(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())

		basicPitch = transcription.NewBasicPitch(dummy.NewDummyExecutor(), "python3", workingDir)
		native = transcription.NewNative(audio.NewLoader(audio.WAVDecoder{}))
	})

	withModel := capability.Set{TensorRuntime: true, TranscriptionModel: true}
	withoutModel := capability.Set{}

	DescribeTable("picks a backend",
		func(mode string, caps capability.Set, expected string) {
			backend, err := transcription.SelectBackend(mode, caps, basicPitch, native)
			Expect(err).NotTo(HaveOccurred())
			Expect(backend.Name()).To(Equal(expected))
		},
		Entry("auto with the model installed", transcription.BackendAuto, withModel, transcription.BackendBasicPitch),
		Entry("auto without the model", transcription.BackendAuto, withoutModel, transcription.BackendNative),
		Entry("unset mode behaves like auto", "", withModel, transcription.BackendBasicPitch),
		Entry("basic-pitch when installed", transcription.BackendBasicPitch, withModel, transcription.BackendBasicPitch),
		Entry("native even when the model is installed", transcription.BackendNative, withModel, transcription.BackendNative),
	)

	It("reports the missing model when basic-pitch is forced", func() {
		_, err := transcription.SelectBackend(transcription.BackendBasicPitch, withoutModel, basicPitch, native)
		Expect(errkind.Of(err)).To(Equal(errkind.DependencyMissing))
	})

	It("rejects an unknown backend", func() {
		_, err := transcription.SelectBackend("crepe", withModel, basicPitch, native)
		Expect(errkind.Of(err)).To(Equal(errkind.InvalidArgument))
	})
})
