package audio

import (
	"bufio"
	"context"
	"encoding/binary"
	"io"
	"os"

	"github.com/go-audio/riff"
	"github.com/go-audio/wav"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/cerr"
)

const (
	wavPCMFormat        = 1
	wavFloatFormat      = 3
	wavExtensibleFormat = 0xFFFE

	// the first two bytes of the extensible sub format GUID carry the real format
	extensibleSubFormatOffset = 24

	writtenWAVBitDepth = 32
)

var _ Decoder = WAVDecoder{}

// WAVDecoder reads integer PCM and IEEE float RIFF files and returns them
// channels last, or as a flat vector when the file is mono.
type WAVDecoder struct{}

func (WAVDecoder) Name() string {
	return "wav"
}

func (WAVDecoder) Formats() []string {
	return []string{"WAV"}
}

func (WAVDecoder) Decode(_ context.Context, path string) (Decoded, error) {
	errctx := cerr.Field("path", path)

	file, err := os.Open(path)
	if err != nil {
		return Decoded{}, errctx.Wrap(err).Error("Failed to open file")
	}
	defer file.Close()

	format, err := wavSampleFormat(file)
	if err != nil {
		return Decoded{}, errctx.Wrap(err).Error("Not a valid WAV file")
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return Decoded{}, errctx.Wrap(err).Error("Failed to rewind file")
	}

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return Decoded{}, errctx.Error("Not a valid WAV file")
	}

	channels := int(decoder.NumChans)
	if channels <= 0 {
		return Decoded{}, errctx.Error("WAV file declares no channels")
	}

	var samples []float32
	switch format {
	case wavPCMFormat:
		samples, err = readPCMSamples(decoder)
	case wavFloatFormat:
		samples, err = readFloatSamples(decoder)
	default:
		return Decoded{}, errctx.Field("wav_format", format).
			Error("Only PCM and IEEE float WAV files can be read directly")
	}
	if err != nil {
		return Decoded{}, errctx.Field("wav_format", format).Wrap(err).Error("Failed to read sample data")
	}

	frames := len(samples) / channels
	samples = samples[:frames*channels]

	shape := []int{frames, channels}
	if channels == 1 {
		shape = []int{frames}
	}

	return Decoded{
		Samples:    Matrix{Shape: shape, Data: samples},
		SampleRate: int(decoder.SampleRate),
	}, nil
}

// wavSampleFormat reads the fmt chunk and resolves extensible files to their
// sub format, which the wav package does not expose.
func wavSampleFormat(r io.Reader) (uint16, error) {
	parser := riff.New(r)
	if err := parser.ParseHeaders(); err != nil {
		return 0, err
	}

	if parser.Format != riff.WavFormatID {
		return 0, cerr.Field("riff_format", string(parser.Format[:])).Error("RIFF file is not WAVE")
	}

	for {
		chunk, err := parser.NextChunk()
		if err != nil {
			return 0, cerr.Wrap(err).Error("No fmt chunk found")
		}

		if chunk.ID != riff.FmtID {
			chunk.Drain()
			continue
		}

		header := make([]byte, chunk.Size)
		if _, err := io.ReadFull(chunk, header); err != nil {
			return 0, cerr.Wrap(err).Error("Failed to read fmt chunk")
		}

		if len(header) < 2 {
			return 0, cerr.Error("fmt chunk is too short")
		}

		format := binary.LittleEndian.Uint16(header)
		if format == wavExtensibleFormat {
			if len(header) < extensibleSubFormatOffset+2 {
				return 0, cerr.Error("Extensible fmt chunk has no sub format")
			}
			format = binary.LittleEndian.Uint16(header[extensibleSubFormatOffset:])
		}

		return format, nil
	}
}

func readPCMSamples(decoder *wav.Decoder) ([]float32, error) {
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, err
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(decoder.BitDepth)
	}

	return intsToFloats(buf.Data, bitDepth), nil
}

func readFloatSamples(decoder *wav.Decoder) ([]float32, error) {
	if err := decoder.FwdToPCM(); err != nil {
		return nil, err
	}

	bitDepth := int(decoder.BitDepth)
	reader := bufio.NewReader(io.LimitReader(decoder.PCMChunk, int64(decoder.PCMSize)))

	switch bitDepth {
	case 32:
		samples := make([]float32, decoder.PCMSize/4)
		if err := binary.Read(reader, binary.LittleEndian, samples); err != nil {
			return nil, err
		}
		return samples, nil

	case 64:
		wide := make([]float64, decoder.PCMSize/8)
		if err := binary.Read(reader, binary.LittleEndian, wide); err != nil {
			return nil, err
		}

		samples := make([]float32, len(wide))
		for i, v := range wide {
			samples[i] = float32(v)
		}
		return samples, nil

	default:
		return nil, cerr.Field("bit_depth", bitDepth).Error("Float WAV must be 32 or 64 bit")
	}
}

func intsToFloats(data []int, bitDepth int) []float32 {
	out := make([]float32, len(data))

	// 8 bit WAV is unsigned
	if bitDepth == 8 {
		for i, v := range data {
			out[i] = float32(v-128) / 128
		}
		return out
	}

	scale := float32(int64(1) << (bitDepth - 1))
	for i, v := range data {
		out[i] = float32(v) / scale
	}

	return out
}

// bufferedFile lets the encoder write frame by frame without a syscall per
// frame. Pending writes are flushed before every seek.
type bufferedFile struct {
	file   *os.File
	writer *bufio.Writer
}

func (b *bufferedFile) Write(p []byte) (int, error) {
	return b.writer.Write(p)
}

func (b *bufferedFile) Seek(offset int64, whence int) (int64, error) {
	if err := b.writer.Flush(); err != nil {
		return 0, err
	}
	return b.file.Seek(offset, whence)
}

// WriteWAV writes channels-first samples as 32 bit IEEE float, so model
// output above full scale survives unclipped.
func WriteWAV(path string, channels [][]float32, sampleRate int) error {
	errctx := cerr.Fields(cerr.F{
		"path":        path,
		"channels":    len(channels),
		"sample_rate": sampleRate,
	})

	if len(channels) == 0 {
		return errctx.Error("No channels to write")
	}

	file, err := os.Create(path)
	if err != nil {
		return errctx.Wrap(err).Error("Failed to create WAV file")
	}

	output := &bufferedFile{file: file, writer: bufio.NewWriter(file)}
	encoder := wav.NewEncoder(output, sampleRate, writtenWAVBitDepth, len(channels), wavFloatFormat)

	frames := len(channels[0])
	frame := make([]float32, len(channels))
	for i := 0; i < frames; i++ {
		for c, channel := range channels {
			frame[c] = channel[i]
		}

		if err := encoder.WriteFrame(frame); err != nil {
			_ = file.Close()
			return errctx.Wrap(err).Error("Failed to encode WAV data")
		}
	}

	if err := encoder.Close(); err != nil {
		_ = file.Close()
		return errctx.Wrap(err).Error("Failed to finalize WAV file")
	}

	if err := output.writer.Flush(); err != nil {
		_ = file.Close()
		return errctx.Wrap(err).Error("Failed to flush WAV file")
	}

	if err := file.Close(); err != nil {
		return errctx.Wrap(err).Error("Failed to close WAV file")
	}

	return nil
}
