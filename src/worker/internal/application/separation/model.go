package separation

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/capability"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

// Tensor is a dense row-major float32 block.
type Tensor struct {
	Shape []int
	Data  []float32
}

func (t Tensor) Size() int {
	size := 1
	for _, dim := range t.Shape {
		size *= dim
	}

	return size
}

type InferenceParams struct {
	Shifts  int     `json:"shifts"`
	Split   bool    `json:"split"`
	Overlap float64 `json:"overlap"`
}

// one pass, windowed with a quarter overlap between windows
var DefaultInference = InferenceParams{
	Shifts:  1,
	Split:   true,
	Overlap: 0.25,
}

// ErrDeviceOutOfMemory is returned by a Model when the compute device could
// not allocate what inference needed.
var ErrDeviceOutOfMemory = errors.New("compute device ran out of memory")

//counterfeiter:generate . Model
type Model interface {
	// Sources names the stems along the source dimension of Apply's output.
	Sources() []string
	// Apply takes (batch, channels, frames) and returns
	// (batch, sources, channels, frames).
	Apply(ctx context.Context, input Tensor, params InferenceParams) (Tensor, error)
	Close() error
}

//counterfeiter:generate . ModelLoader
type ModelLoader interface {
	Load(ctx context.Context, device capability.Device) (Model, error)
}
