package audio_test

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/veedubyou/audio-worker/src/shared/testing"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/audio"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/audio/audiofakes"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/cerr"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/errkind"
)

var _ = Describe("Loader", func() {
	var (
		dir       string
		inputPath string

		primary   *audiofakes.FakeDecoder
		secondary *audiofakes.FakeDecoder
		loader    audio.Loader
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		inputPath = filepath.Join(dir, "input.bin")
		Expect(os.WriteFile(inputPath, []byte("not really audio"), 0644)).To(Succeed())

		primary = &audiofakes.FakeDecoder{}
		primary.NameReturns("primary")
		primary.FormatsReturns([]string{"WAV"})

		secondary = &audiofakes.FakeDecoder{}
		secondary.NameReturns("secondary")
		secondary.FormatsReturns([]string{"FLAC", "OGG"})

		loader = audio.NewLoader(primary, secondary)
	})

	Describe("when the primary decoder succeeds", func() {
		BeforeEach(func() {
			primary.DecodeReturns(decoded([]int{2}, 0.5, -0.5), nil)
		})

		It("never falls through to the secondary decoder", func() {
			waveform := ExpectSuccess(loader.Load(context.Background(), inputPath))
			Expect(waveform.Samples).To(Equal([][]float32{{0.5, -0.5}, {0.5, -0.5}}))
			Expect(primary.DecodeCallCount()).To(Equal(1))
			Expect(secondary.DecodeCallCount()).To(Equal(0))
		})
	})

	Describe("when the primary decoder fails", func() {
		BeforeEach(func() {
			primary.DecodeReturns(audio.Decoded{}, errors.New("no RIFF header"))
			secondary.DecodeReturns(decoded([]int{2, 2}, 0.1, 0.2, 0.3, 0.4), nil)
		})

		It("tries the secondary decoder once with the original path", func() {
			waveform := ExpectSuccess(loader.Load(context.Background(), inputPath))
			Expect(waveform.Samples).To(Equal([][]float32{{0.1, 0.2}, {0.3, 0.4}}))

			Expect(primary.DecodeCallCount()).To(Equal(1))
			Expect(secondary.DecodeCallCount()).To(Equal(1))
			_, path := secondary.DecodeArgsForCall(0)
			Expect(path).To(Equal(inputPath))
		})
	})

	Describe("when every decoder fails", func() {
		BeforeEach(func() {
			primary.DecodeReturns(audio.Decoded{}, errors.New("no RIFF header"))
			secondary.DecodeReturns(audio.Decoded{}, errors.New("invalid data found"))
		})

		It("reports an unsupported format naming what was attempted", func() {
			_, err := loader.Load(context.Background(), inputPath)
			Expect(err).To(HaveOccurred())
			Expect(errkind.Of(err)).To(Equal(errkind.UnsupportedFormat))
			Expect(err.Error()).To(ContainSubstring("WAV, FLAC, OGG"))

			fields := cerr.CollectFields(err)
			Expect(fields["attempted_decoders"]).To(Equal([]string{"primary", "secondary"}))
			Expect(fields["decoder_failures"]).To(HaveKeyWithValue("secondary", "invalid data found"))
		})

		It("does not retry", func() {
			_, _ = loader.Load(context.Background(), inputPath)
			Expect(primary.DecodeCallCount()).To(Equal(1))
			Expect(secondary.DecodeCallCount()).To(Equal(1))
		})
	})

	Describe("when the file does not exist", func() {
		It("reports not found without decoding", func() {
			_, err := loader.Load(context.Background(), filepath.Join(dir, "missing.wav"))
			Expect(errkind.Of(err)).To(Equal(errkind.NotFound))
			Expect(primary.DecodeCallCount()).To(Equal(0))
		})
	})

	Describe("when the file is not readable", func() {
		BeforeEach(func() {
			if os.Geteuid() == 0 {
				Skip("file permissions are not enforced for root")
			}
			Expect(os.Chmod(inputPath, 0)).To(Succeed())
		})

		It("reports permission denied", func() {
			_, err := loader.Load(context.Background(), inputPath)
			Expect(errkind.Of(err)).To(Equal(errkind.PermissionDenied))
		})
	})

	Describe("when the path is a directory", func() {
		It("rejects it as an invalid argument", func() {
			_, err := loader.Load(context.Background(), dir)
			Expect(errkind.Of(err)).To(Equal(errkind.InvalidArgument))
		})
	})
})

var _ = Describe("Native decoders", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("reads a stereo WAV file channels last", func() {
		path := filepath.Join(dir, "tone.wav")
		WriteSineWAV(path, 440, 0.5, 22050, 2)

		result := ExpectSuccess(audio.WAVDecoder{}.Decode(context.Background(), path))
		Expect(result.SampleRate).To(Equal(22050))
		Expect(result.Samples.Shape).To(Equal([]int{11025, 2}))
		for _, sample := range result.Samples.Data {
			Expect(sample).To(BeNumerically("<=", 1))
			Expect(sample).To(BeNumerically(">=", -1))
		}
	})

	It("reads a mono WAV file as a flat vector", func() {
		path := filepath.Join(dir, "mono.wav")
		WriteSineWAV(path, 220, 0.25, 8000, 1)

		result := ExpectSuccess(audio.WAVDecoder{}.Decode(context.Background(), path))
		Expect(result.Samples.Shape).To(Equal([]int{2000}))
	})

	It("reads back what WriteWAV wrote", func() {
		path := filepath.Join(dir, "stem.wav")
		left := []float32{0, 0.5, -0.5, 0.25}
		right := []float32{0.1, -0.1, 0.2, -0.2}
		Expect(audio.WriteWAV(path, [][]float32{left, right}, 44100)).To(Succeed())

		waveform := ExpectSuccess(audio.NewLoader(audio.WAVDecoder{}).Load(context.Background(), path))
		Expect(waveform.SampleRate).To(Equal(44100))
		Expect(waveform.Frames()).To(Equal(4))
		for i := range left {
			Expect(waveform.Samples[0][i]).To(BeNumerically("~", left[i], 0.001))
			Expect(waveform.Samples[1][i]).To(BeNumerically("~", right[i], 0.001))
		}
	})

	It("keeps samples beyond full scale when writing", func() {
		path := filepath.Join(dir, "loud.wav")
		Expect(audio.WriteWAV(path, [][]float32{{1.5, -1.25, 0}, {0.75, -2, 0}}, 44100)).To(Succeed())

		waveform := ExpectSuccess(audio.NewLoader(audio.WAVDecoder{}).Load(context.Background(), path))
		Expect(waveform.Samples[0]).To(Equal([]float32{1.5, -1.25, 0}))
		Expect(waveform.Samples[1]).To(Equal([]float32{0.75, -2, 0}))
	})

	DescribeTable("reads IEEE float WAV files",
		func(options FloatWAVOptions) {
			path := filepath.Join(dir, "float.wav")
			left := []float64{0, 0.5, -0.5, 0.25, 1}
			right := []float64{0.1, -0.1, 0.2, -0.2, -1}
			WriteFloatWAV(path, [][]float64{left, right}, 44100, options)

			result := ExpectSuccess(audio.WAVDecoder{}.Decode(context.Background(), path))
			Expect(result.SampleRate).To(Equal(44100))
			Expect(result.Samples.Shape).To(Equal([]int{5, 2}))
			for i := range left {
				Expect(result.Samples.Data[i*2]).To(BeNumerically("~", left[i], 1e-6))
				Expect(result.Samples.Data[i*2+1]).To(BeNumerically("~", right[i], 1e-6))
			}
		},
		Entry("32 bit", FloatWAVOptions{BitDepth: 32}),
		Entry("64 bit", FloatWAVOptions{BitDepth: 64}),
		Entry("32 bit extensible", FloatWAVOptions{BitDepth: 32, Extensible: true}),
		Entry("64 bit extensible", FloatWAVOptions{BitDepth: 64, Extensible: true}),
	)

	It("loads a stereo float WAV without any codec fallback", func() {
		path := filepath.Join(dir, "export.wav")
		frames := 44100
		left := make([]float64, frames)
		right := make([]float64, frames)
		for i := range left {
			left[i] = 0.25
			right[i] = -0.25
		}
		WriteFloatWAV(path, [][]float64{left, right}, 44100, FloatWAVOptions{BitDepth: 32})

		waveform := ExpectSuccess(audio.NewLoader(audio.WAVDecoder{}, audio.MP3Decoder{}).Load(context.Background(), path))
		Expect(waveform.SampleRate).To(Equal(44100))
		Expect(waveform.Frames()).To(Equal(frames))
		Expect(waveform.Samples[0][100]).To(BeNumerically("~", 0.25, 1e-6))
		Expect(waveform.Samples[1][100]).To(BeNumerically("~", -0.25, 1e-6))
	})

	It("refuses files that are not WAV", func() {
		path := filepath.Join(dir, "fake.wav")
		Expect(os.WriteFile(path, []byte("ID3 definitely not riff"), 0644)).To(Succeed())

		_, err := audio.WAVDecoder{}.Decode(context.Background(), path)
		Expect(err).To(HaveOccurred())
	})

	It("refuses files that are not MP3", func() {
		path := filepath.Join(dir, "fake.mp3")
		Expect(os.WriteFile(path, []byte{}, 0644)).To(Succeed())

		_, err := audio.MP3Decoder{}.Decode(context.Background(), path)
		Expect(err).To(HaveOccurred())
	})
})
