package audio

import (
	"context"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/cerr"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/errkind"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

//counterfeiter:generate . Decoder
type Decoder interface {
	Name() string
	Formats() []string
	Decode(ctx context.Context, path string) (Decoded, error)
}

// Loader tries each decoder in order, once, against the original file.
type Loader struct {
	decoders []Decoder
}

func NewLoader(decoders ...Decoder) Loader {
	return Loader{decoders: decoders}
}

func (l Loader) SupportedFormats() []string {
	seen := map[string]bool{}
	formats := []string{}
	for _, decoder := range l.decoders {
		for _, format := range decoder.Formats() {
			if !seen[format] {
				seen[format] = true
				formats = append(formats, format)
			}
		}
	}

	return formats
}

func (l Loader) Load(ctx context.Context, path string) (Waveform, error) {
	if err := CheckReadable(path); err != nil {
		return Waveform{}, err
	}

	logger := log.WithField("path", path)

	attempted := []string{}
	failures := map[string]string{}

	for _, decoder := range l.decoders {
		if ctx.Err() != nil {
			return Waveform{}, cerr.Wrap(ctx.Err()).Error("Context cancelled while decoding audio")
		}

		attempted = append(attempted, decoder.Name())

		decoded, err := decoder.Decode(ctx, path)
		if err != nil {
			logger.WithField("decoder", decoder.Name()).
				WithError(err).
				Debug("Decoder could not read file, trying the next one")
			failures[decoder.Name()] = err.Error()
			continue
		}

		logger.WithFields(log.Fields{
			"decoder":     decoder.Name(),
			"shape":       decoded.Samples.String(),
			"sample_rate": decoded.SampleRate,
		}).Info("Decoded audio file")

		return Normalize(decoded)
	}

	return Waveform{}, cerr.Fields(cerr.F{
		"input_file":         path,
		"attempted_decoders": attempted,
		"decoder_failures":   failures,
		"supported_formats":  l.SupportedFormats(),
	}).Mark(errkind.UnsupportedFormatMark).
		Error("Unsupported audio format. Supported formats: " + strings.Join(l.SupportedFormats(), ", "))
}

// CheckReadable distinguishes a missing input from an unreadable one before
// any decoder gets to it.
func CheckReadable(path string) error {
	errctx := cerr.Field("input_file", path)

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return errctx.Mark(errkind.NotFoundMark).Wrap(err).Error("Input file not found")
	case errors.Is(err, os.ErrPermission):
		return errctx.Mark(errkind.PermissionDeniedMark).Wrap(err).Error("Permission denied reading input file")
	case err != nil:
		return errctx.Wrap(err).Error("Failed to stat input file")
	}

	if info.IsDir() {
		return errctx.Mark(errkind.InvalidArgumentMark).Error("Input path is a directory, not an audio file")
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return errctx.Mark(errkind.PermissionDeniedMark).Wrap(err).Error("Permission denied reading input file")
		}
		return errctx.Wrap(err).Error("Failed to open input file")
	}

	return file.Close()
}
