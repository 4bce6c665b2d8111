package capability

import (
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/cerr"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/errkind"
)

type Device string

const (
	CPU  Device = "cpu"
	CUDA Device = "cuda"
	MPS  Device = "mps"
)

// Set is computed once per process and never changes afterwards.
type Set struct {
	TensorRuntime      bool   `json:"tensor_runtime"`
	AccelDevice        bool   `json:"accel_device"`
	AccelDeviceName    Device `json:"accel_device_name,omitempty"`
	AudioCodec         bool   `json:"audio_codec"`
	SeparationModel    bool   `json:"separation_model"`
	TranscriptionModel bool   `json:"transcription_model"`
}

const (
	TensorRuntimeDependency      = "torch"
	AudioCodecDependency         = "ffmpeg"
	SeparationModelDependency    = "demucs"
	TranscriptionModelDependency = "basic-pitch"
)

func (s Set) CanSeparateStems() bool {
	return s.TensorRuntime && s.AudioCodec && s.SeparationModel
}

// MissingDependencies lists what stops stem separation from being possible.
func (s Set) MissingDependencies() []string {
	missing := []string{}
	if !s.TensorRuntime {
		missing = append(missing, TensorRuntimeDependency)
	}
	if !s.AudioCodec {
		missing = append(missing, AudioCodecDependency)
	}
	if !s.SeparationModel {
		missing = append(missing, SeparationModelDependency)
	}

	return missing
}

// Device picks the accelerator when one was found, otherwise the CPU.
func (s Set) Device() Device {
	if s.AccelDevice && s.AccelDeviceName != "" {
		return s.AccelDeviceName
	}

	return CPU
}

// ParseDevice accepts an explicit device override. Empty means no override.
func ParseDevice(device string) (Device, error) {
	switch Device(device) {
	case "", CPU, CUDA, MPS:
		return Device(device), nil
	default:
		return "", cerr.Field("device", device).
			Mark(errkind.InvalidArgumentMark).
			Error("Unknown device, expected one of cpu, cuda, mps")
	}
}
