package audio

import (
	"fmt"
	"time"

	"github.com/veedubyou/audio-worker/src/worker/internal/lib/cerr"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/errkind"
)

const StereoChannels = 2

// Matrix is a dense row-major block of samples as a decoder produced it.
// Its orientation is whatever the decoder happens to use.
type Matrix struct {
	Shape []int
	Data  []float32
}

func (m Matrix) At(row, col int) float32 {
	return m.Data[row*m.Shape[1]+col]
}

func (m Matrix) String() string {
	return fmt.Sprint(m.Shape)
}

type Decoded struct {
	Samples    Matrix
	SampleRate int
}

// Waveform is always two equally long channels, channels first.
type Waveform struct {
	Samples    [][]float32
	SampleRate int
}

func (w Waveform) Frames() int {
	if len(w.Samples) == 0 {
		return 0
	}

	return len(w.Samples[0])
}

func (w Waveform) Duration() time.Duration {
	if w.SampleRate <= 0 {
		return 0
	}

	return time.Duration(float64(w.Frames()) / float64(w.SampleRate) * float64(time.Second))
}

func (w Waveform) Matrix() Matrix {
	frames := w.Frames()
	data := make([]float32, 0, len(w.Samples)*frames)
	for _, channel := range w.Samples {
		data = append(data, channel...)
	}

	return Matrix{Shape: []int{len(w.Samples), frames}, Data: data}
}

// Mono averages the channels together.
func (w Waveform) Mono() []float32 {
	frames := w.Frames()
	mono := make([]float32, frames)
	if len(w.Samples) == 0 {
		return mono
	}

	for _, channel := range w.Samples {
		for i, sample := range channel {
			mono[i] += sample
		}
	}

	scale := 1 / float32(len(w.Samples))
	for i := range mono {
		mono[i] *= scale
	}

	return mono
}

func (w Waveform) Validate() error {
	errctx := cerr.Fields(cerr.F{
		"channels":    len(w.Samples),
		"sample_rate": w.SampleRate,
	}).Mark(errkind.UnsupportedFormatMark)

	if len(w.Samples) != StereoChannels {
		return errctx.Error("Waveform must have exactly two channels")
	}

	if w.SampleRate <= 0 {
		return errctx.Error("Waveform has no valid sample rate")
	}

	frames := len(w.Samples[0])
	if frames == 0 {
		return errctx.Error("Waveform contains no samples")
	}

	if len(w.Samples[1]) != frames {
		return errctx.Field("left_frames", frames).
			Field("right_frames", len(w.Samples[1])).
			Error("Waveform channels differ in length")
	}

	return nil
}
