package transcription

import (
	"context"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/audio"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/cerr"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/errkind"
)

type Transcriber struct {
	backend Backend
}

func NewTranscriber(backend Backend) Transcriber {
	return Transcriber{backend: backend}
}

func (t Transcriber) Extract(ctx context.Context, inputPath string, outputPath string) (Summary, error) {
	if err := audio.CheckReadable(inputPath); err != nil {
		return Summary{}, err
	}

	absOutputPath, err := filepath.Abs(outputPath)
	if err != nil {
		return Summary{}, cerr.Field("output_path", outputPath).
			Mark(errkind.InvalidArgumentMark).
			Wrap(err).Error("Cannot convert output path to absolute format")
	}

	errctx := cerr.Fields(cerr.F{
		"input_file":  inputPath,
		"output_path": absOutputPath,
		"backend":     t.backend.Name(),
	})

	if err := os.MkdirAll(filepath.Dir(absOutputPath), os.ModePerm); err != nil {
		if errors.Is(err, os.ErrPermission) {
			return Summary{}, errctx.Mark(errkind.PermissionDeniedMark).
				Wrap(err).Error("Permission denied creating output directory")
		}
		return Summary{}, errctx.Mark(errkind.InvalidArgumentMark).
			Wrap(err).Error("Failed to create output directory")
	}

	logger := log.WithFields(log.Fields{
		"inputPath": inputPath,
		"backend":   t.backend.Name(),
	})
	logger.Info("Extracting MIDI")

	if err := t.backend.Transcribe(ctx, inputPath, absOutputPath); err != nil {
		return Summary{}, err
	}

	if _, err := os.Stat(absOutputPath); err != nil {
		return Summary{}, errctx.Mark(errkind.ModelInferenceFailureMark).
			Wrap(err).Error("Transcription finished without producing a MIDI file")
	}

	details, err := Summarize(absOutputPath)
	if err != nil {
		return Summary{}, errctx.Mark(errkind.ModelInferenceFailureMark).
			Wrap(err).Error("Transcription produced an unreadable MIDI file")
	}
	details.Backend = t.backend.Name()

	logger.WithField("num_notes", details.NumNotes).Info("Finished extracting MIDI")

	return Summary{
		MIDIPath: filepath.ToSlash(absOutputPath),
		Details:  details,
	}, nil
}
