package audio

import (
	"context"
	"encoding/binary"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/cerr"
)

var _ Decoder = MP3Decoder{}

// MP3Decoder always yields interleaved 16 bit stereo, so the result is
// channels last.
type MP3Decoder struct{}

func (MP3Decoder) Name() string {
	return "mp3"
}

func (MP3Decoder) Formats() []string {
	return []string{"MP3"}
}

func (MP3Decoder) Decode(_ context.Context, path string) (Decoded, error) {
	errctx := cerr.Field("path", path)

	file, err := os.Open(path)
	if err != nil {
		return Decoded{}, errctx.Wrap(err).Error("Failed to open file")
	}
	defer file.Close()

	decoder, err := mp3.NewDecoder(file)
	if err != nil {
		return Decoded{}, errctx.Wrap(err).Error("Not a decodable MP3 stream")
	}

	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return Decoded{}, errctx.Wrap(err).Error("Failed to decode MP3 frames")
	}

	const bytesPerFrame = 2 * StereoChannels
	frames := len(pcm) / bytesPerFrame
	if frames == 0 {
		return Decoded{}, errctx.Error("MP3 stream contains no audio frames")
	}

	samples := make([]float32, frames*StereoChannels)
	for i := range samples {
		samples[i] = float32(int16(binary.LittleEndian.Uint16(pcm[2*i:]))) / 32768
	}

	return Decoded{
		Samples:    Matrix{Shape: []int{frames, StereoChannels}, Data: samples},
		SampleRate: decoder.SampleRate(),
	}, nil
}
