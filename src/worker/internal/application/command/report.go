package command

import (
	"github.com/veedubyou/audio-worker/src/worker/internal/application/capability"
)

type CapabilityReport struct {
	CanSeparateStems     bool              `json:"can_separate_stems"`
	CanExtractMIDI       bool              `json:"can_extract_midi"`
	MissingDependencies  []string          `json:"missing_dependencies"`
	Device               capability.Device `json:"device"`
	TranscriptionBackend string            `json:"transcription_backend,omitempty"`
	Capabilities         capability.Set    `json:"capabilities"`
}
