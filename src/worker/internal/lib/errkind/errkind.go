package errkind

import (
	"github.com/cockroachdb/errors"
)

type Kind string

const (
	NotFound                 Kind = "NotFound"
	PermissionDenied         Kind = "PermissionDenied"
	UnsupportedFormat        Kind = "UnsupportedFormat"
	DependencyMissing        Kind = "DependencyMissing"
	InsufficientDeviceMemory Kind = "InsufficientDeviceMemory"
	ModelInferenceFailure    Kind = "ModelInferenceFailure"
	InvalidArgument          Kind = "InvalidArgument"
	UnknownAction            Kind = "UnknownAction"
	Internal                 Kind = "Internal"
)

var (
	NotFoundMark                 = errors.New("audio_worker_not_found")
	PermissionDeniedMark         = errors.New("audio_worker_permission_denied")
	UnsupportedFormatMark        = errors.New("audio_worker_unsupported_format")
	DependencyMissingMark        = errors.New("audio_worker_dependency_missing")
	InsufficientDeviceMemoryMark = errors.New("audio_worker_insufficient_device_memory")
	ModelInferenceFailureMark    = errors.New("audio_worker_model_inference_failure")
	InvalidArgumentMark          = errors.New("audio_worker_invalid_argument")
	UnknownActionMark            = errors.New("audio_worker_unknown_action")
)

// ordered from the most to the least specific, the first match wins
var classification = []struct {
	kind Kind
	mark error
}{
	{InsufficientDeviceMemory, InsufficientDeviceMemoryMark},
	{DependencyMissing, DependencyMissingMark},
	{NotFound, NotFoundMark},
	{PermissionDenied, PermissionDeniedMark},
	{UnsupportedFormat, UnsupportedFormatMark},
	{InvalidArgument, InvalidArgumentMark},
	{UnknownAction, UnknownActionMark},
	{ModelInferenceFailure, ModelInferenceFailureMark},
}

func MarkOf(kind Kind) error {
	for _, c := range classification {
		if c.kind == kind {
			return c.mark
		}
	}

	return nil
}

func Of(err error) Kind {
	if err == nil {
		return ""
	}

	for _, c := range classification {
		if errors.Is(err, c.mark) {
			return c.kind
		}
	}

	return Internal
}

func Is(err error, kind Kind) bool {
	return Of(err) == kind
}
