package audio

import (
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/cerr"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/errkind"
)

// Normalize canonicalizes whatever layout a decoder produced into a
// channels-first stereo waveform.
//
//	(N,)  mono vector          duplicated into both channels
//	(2,N) channels first       passed through
//	(N,2) channels last        transposed
//	(N,1) mono column          extracted and duplicated
//	(1,N) mono row             duplicated
//
// (2,N) is matched before (N,2) so that an already canonical waveform comes
// back unchanged even when N is 2. Anything else, including more than two
// channels, is rejected.
func Normalize(decoded Decoded) (Waveform, error) {
	m := decoded.Samples
	errctx := cerr.Field("shape", m.String()).Mark(errkind.UnsupportedFormatMark)

	expected := 1
	for _, dim := range m.Shape {
		expected *= dim
	}
	if len(m.Shape) == 0 || expected != len(m.Data) {
		return Waveform{}, errctx.Field("samples", len(m.Data)).
			Error("Decoded samples do not match their declared shape")
	}

	var channels [][]float32

	switch {
	case len(m.Shape) == 1:
		channels = duplicate(m.Data)

	case len(m.Shape) == 2 && m.Shape[0] == StereoChannels:
		frames := m.Shape[1]
		channels = [][]float32{
			clone(m.Data[:frames]),
			clone(m.Data[frames:]),
		}

	case len(m.Shape) == 2 && m.Shape[1] == StereoChannels:
		channels = transpose(m)

	case len(m.Shape) == 2 && m.Shape[1] == 1:
		channels = duplicate(m.Data)

	case len(m.Shape) == 2 && m.Shape[0] == 1:
		channels = duplicate(m.Data)

	default:
		return Waveform{}, errctx.Error("Unsupported channel layout, only mono and stereo audio can be processed")
	}

	waveform := Waveform{
		Samples:    channels,
		SampleRate: decoded.SampleRate,
	}

	if err := waveform.Validate(); err != nil {
		return Waveform{}, errctx.Wrap(err).Error("Decoded audio could not be normalized")
	}

	return waveform, nil
}

func duplicate(mono []float32) [][]float32 {
	return [][]float32{clone(mono), clone(mono)}
}

func transpose(m Matrix) [][]float32 {
	frames := m.Shape[0]
	left := make([]float32, frames)
	right := make([]float32, frames)

	for i := 0; i < frames; i++ {
		left[i] = m.At(i, 0)
		right[i] = m.At(i, 1)
	}

	return [][]float32{left, right}
}

func clone(samples []float32) []float32 {
	out := make([]float32, len(samples))
	copy(out, samples)
	return out
}
