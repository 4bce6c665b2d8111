package testing

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/onsi/gomega"
)

// WriteSineWAV writes a 16 bit PCM sine tone with the same signal on every
// channel.
func WriteSineWAV(path string, frequency float64, seconds float64, sampleRate int, channels int) {
	frames := int(seconds * float64(sampleRate))
	data := make([]int, 0, frames*channels)
	for i := 0; i < frames; i++ {
		value := int(0.5 * 32767 * math.Sin(2*math.Pi*frequency*float64(i)/float64(sampleRate)))
		for c := 0; c < channels; c++ {
			data = append(data, value)
		}
	}

	file, err := os.Create(path)
	gomega.ExpectWithOffset(1, err).NotTo(gomega.HaveOccurred())
	defer file.Close()

	encoder := wav.NewEncoder(file, sampleRate, 16, channels, 1)
	err = encoder.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	})
	gomega.ExpectWithOffset(1, err).NotTo(gomega.HaveOccurred())
	gomega.ExpectWithOffset(1, encoder.Close()).To(gomega.Succeed())
}

type FloatWAVOptions struct {
	BitDepth   int
	Extensible bool
}

// WriteFloatWAV writes channels-first samples as an IEEE float WAV, either
// with a plain fmt chunk or a WAVE_FORMAT_EXTENSIBLE one.
func WriteFloatWAV(path string, channels [][]float64, sampleRate int, options FloatWAVOptions) {
	bytesPerSample := options.BitDepth / 8
	numChannels := len(channels)
	frames := len(channels[0])

	data := &bytes.Buffer{}
	for i := 0; i < frames; i++ {
		for _, channel := range channels {
			var err error
			if options.BitDepth == 64 {
				err = binary.Write(data, binary.LittleEndian, channel[i])
			} else {
				err = binary.Write(data, binary.LittleEndian, float32(channel[i]))
			}
			gomega.ExpectWithOffset(1, err).NotTo(gomega.HaveOccurred())
		}
	}

	fmtChunk := &bytes.Buffer{}
	format := uint16(3)
	if options.Extensible {
		format = 0xFFFE
	}
	blockAlign := numChannels * bytesPerSample
	fields := []any{
		format,
		uint16(numChannels),
		uint32(sampleRate),
		uint32(sampleRate * blockAlign),
		uint16(blockAlign),
		uint16(options.BitDepth),
	}
	if options.Extensible {
		fields = append(fields,
			uint16(22),
			uint16(options.BitDepth),
			uint32(0),
			// KSDATAFORMAT_SUBTYPE_IEEE_FLOAT
			[16]byte{0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71},
		)
	}
	for _, field := range fields {
		gomega.ExpectWithOffset(1, binary.Write(fmtChunk, binary.LittleEndian, field)).To(gomega.Succeed())
	}

	file := &bytes.Buffer{}
	file.WriteString("RIFF")
	gomega.ExpectWithOffset(1, binary.Write(file, binary.LittleEndian, uint32(4+8+fmtChunk.Len()+8+data.Len()))).To(gomega.Succeed())
	file.WriteString("WAVEfmt ")
	gomega.ExpectWithOffset(1, binary.Write(file, binary.LittleEndian, uint32(fmtChunk.Len()))).To(gomega.Succeed())
	file.Write(fmtChunk.Bytes())
	file.WriteString("data")
	gomega.ExpectWithOffset(1, binary.Write(file, binary.LittleEndian, uint32(data.Len()))).To(gomega.Succeed())
	file.Write(data.Bytes())

	gomega.ExpectWithOffset(1, os.WriteFile(path, file.Bytes(), 0644)).To(gomega.Succeed())
}
