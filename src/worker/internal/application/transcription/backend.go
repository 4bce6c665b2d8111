package transcription

import (
	"context"

	"github.com/veedubyou/audio-worker/src/worker/internal/application/capability"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/cerr"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/errkind"
)

const (
	BackendAuto       = "auto"
	BackendBasicPitch = "basic-pitch"
	BackendNative     = "native"
)

// shared by every backend
const (
	MinimumNoteLength = 0.05
	MinimumFrequency  = 20.0
	MaximumFrequency  = 2000.0
)

type Backend interface {
	Name() string
	// Transcribe writes a Standard MIDI File to outputPath.
	Transcribe(ctx context.Context, inputPath string, outputPath string) error
}

// SelectBackend resolves the configured mode against what is installed.
// auto prefers the neural model and falls back to the native tracker.
func SelectBackend(mode string, capabilities capability.Set, basicPitch Backend, native Backend) (Backend, error) {
	switch mode {
	case "", BackendAuto:
		if capabilities.TranscriptionModel {
			return basicPitch, nil
		}
		return native, nil

	case BackendBasicPitch:
		if !capabilities.TranscriptionModel {
			return nil, cerr.Field("missing_dependencies", []string{capability.TranscriptionModelDependency}).
				Mark(errkind.DependencyMissingMark).
				Error("Required dependencies for MIDI extraction are not installed")
		}
		return basicPitch, nil

	case BackendNative:
		return native, nil

	default:
		return nil, cerr.Field("transcription_backend", mode).
			Mark(errkind.InvalidArgumentMark).
			Error("Unknown transcription backend")
	}
}
