package transcription

import (
	"context"

	"github.com/apex/log"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/audio"
)

type AudioLoader interface {
	Load(ctx context.Context, path string) (audio.Waveform, error)
}

var _ Backend = Native{}

// Native is a monophonic pitch tracker that needs no python at all.
type Native struct {
	loader AudioLoader
	config TrackerConfig
}

func NewNative(loader AudioLoader) Native {
	return Native{
		loader: loader,
		config: DefaultTrackerConfig,
	}
}

func (Native) Name() string {
	return BackendNative
}

func (n Native) Transcribe(ctx context.Context, inputPath string, outputPath string) error {
	waveform, err := n.loader.Load(ctx, inputPath)
	if err != nil {
		return err
	}

	notes := TrackNotes(waveform.Mono(), waveform.SampleRate, n.config)

	log.WithFields(log.Fields{
		"inputPath": inputPath,
		"notes":     len(notes),
	}).Info("Tracked notes")

	return WriteNotes(outputPath, notes)
}
