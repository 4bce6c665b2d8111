package capability_test

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/capability"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/integration_test/dummy"
)

var _ = Describe("Prober", func() {
	var (
		dummyExecutor *dummy.Executor
		installed     map[string]bool
		accelerator   string
		prober        capability.Prober
	)

	BeforeEach(func() {
		installed = map[string]bool{
			"torch":       true,
			"demucs":      true,
			"basic_pitch": true,
		}
		accelerator = "cuda"

		dummyExecutor = dummy.NewDummyExecutor()
		dummyExecutor.HandlePython("python3", func(script string) ([]byte, error) {
			if strings.Contains(script, "cuda.is_available") {
				if !installed["torch"] {
					return nil, errors.New("No module named 'torch'")
				}
				return []byte(accelerator + "\n"), nil
			}

			for module, ok := range installed {
				if strings.Contains(script, module) && !ok {
					return []byte("ModuleNotFoundError: No module named '" + module + "'"), errors.New("exit status 1")
				}
			}
			return nil, nil
		})
		dummyExecutor.Handle("ffmpeg", func(_ string, _ []string) ([]byte, error) {
			return []byte("ffmpeg version 6.0"), nil
		})
	})

	JustBeforeEach(func() {
		prober = capability.NewProber(dummyExecutor, "python3", "ffmpeg")
	})

	Describe("with everything installed", func() {
		It("can separate stems on the accelerator", func() {
			set := prober.Probe(context.Background())
			Expect(set.CanSeparateStems()).To(BeTrue())
			Expect(set.MissingDependencies()).To(BeEmpty())
			Expect(set.TranscriptionModel).To(BeTrue())
			Expect(set.Device()).To(Equal(capability.CUDA))
		})
	})

	Describe("without an accelerator", func() {
		BeforeEach(func() {
			accelerator = "cpu"
		})

		It("still separates, on the cpu", func() {
			set := prober.Probe(context.Background())
			Expect(set.CanSeparateStems()).To(BeTrue())
			Expect(set.AccelDevice).To(BeFalse())
			Expect(set.Device()).To(Equal(capability.CPU))
		})
	})

	Describe("without the tensor runtime", func() {
		BeforeEach(func() {
			installed["torch"] = false
		})

		It("marks only the runtime and the accelerator as unavailable", func() {
			set := prober.Probe(context.Background())
			Expect(set.CanSeparateStems()).To(BeFalse())
			Expect(set.TensorRuntime).To(BeFalse())
			Expect(set.AccelDevice).To(BeFalse())
			Expect(set.SeparationModel).To(BeTrue())
			Expect(set.AudioCodec).To(BeTrue())
			Expect(set.MissingDependencies()).To(Equal([]string{"torch"}))
		})
	})

	Describe("without ffmpeg", func() {
		BeforeEach(func() {
			dummyExecutor = dummy.NewDummyExecutor()
			dummyExecutor.HandlePython("python3", func(string) ([]byte, error) {
				return []byte("cpu"), nil
			})
		})

		It("reports the codec as missing", func() {
			set := prober.Probe(context.Background())
			Expect(set.AudioCodec).To(BeFalse())
			Expect(set.CanSeparateStems()).To(BeFalse())
			Expect(set.MissingDependencies()).To(Equal([]string{"ffmpeg"}))
		})
	})

	Describe("without the separation model", func() {
		BeforeEach(func() {
			installed["demucs"] = false
		})

		It("cannot separate stems", func() {
			set := prober.Probe(context.Background())
			Expect(set.CanSeparateStems()).To(BeFalse())
			Expect(set.MissingDependencies()).To(Equal([]string{"demucs"}))
		})
	})

	It("only probes once", func() {
		first := prober.Probe(context.Background())
		callsAfterFirst := len(dummyExecutor.Calls)

		second := prober.Probe(context.Background())
		Expect(second).To(Equal(first))
		Expect(dummyExecutor.Calls).To(HaveLen(callsAfterFirst))
	})

	It("probes again when the first probe was interrupted", func() {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		interrupted := prober.Probe(cancelled)
		Expect(interrupted.AudioCodec).To(BeFalse())
		Expect(interrupted.CanSeparateStems()).To(BeFalse())

		set := prober.Probe(context.Background())
		Expect(set.AudioCodec).To(BeTrue())
		Expect(set.CanSeparateStems()).To(BeTrue())

		callsAfterLive := len(dummyExecutor.Calls)
		Expect(prober.Probe(context.Background())).To(Equal(set))
		Expect(dummyExecutor.Calls).To(HaveLen(callsAfterLive))
	})
})
