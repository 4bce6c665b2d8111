package separation

import (
	"context"
	"os"
	"path/filepath"
	"slices"

	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/audio"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/capability"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/cerr"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/errkind"
)

type State string

const (
	Uninitialized State = "uninitialized"
	ModelLoaded   State = "model_loaded"
	Separated     State = "separated"
	Failed        State = "failed"
)

// Engine owns one model for the length of one invocation.
// Uninitialized -> ModelLoaded -> Separated, and any error moves it to
// Failed, which it never leaves.
type Engine struct {
	capabilities capability.Set
	loader       ModelLoader
	device       capability.Device
	params       InferenceParams

	state State
	model Model
}

func NewEngine(capabilities capability.Set, loader ModelLoader, device capability.Device) *Engine {
	if device == "" {
		device = capabilities.Device()
	}

	return &Engine{
		capabilities: capabilities,
		loader:       loader,
		device:       device,
		params:       DefaultInference,
		state:        Uninitialized,
	}
}

func (e *Engine) State() State {
	return e.state
}

func (e *Engine) Device() capability.Device {
	return e.device
}

// PrepareOutputDir creates the directory and proves it is writable, so that
// a bad destination is caught before any model work starts.
func (e *Engine) PrepareOutputDir(outputDir string) (string, error) {
	absOutputDir, err := filepath.Abs(outputDir)
	if err != nil {
		return "", e.fail(cerr.Field("output_directory", outputDir).
			Mark(errkind.InvalidArgumentMark).
			Wrap(err).Error("Cannot convert output directory to absolute format"))
	}

	errctx := cerr.Field("output_directory", absOutputDir)

	if err := os.MkdirAll(absOutputDir, os.ModePerm); err != nil {
		if errors.Is(err, os.ErrPermission) {
			return "", e.fail(errctx.Mark(errkind.PermissionDeniedMark).
				Wrap(err).Error("Permission denied creating output directory"))
		}
		return "", e.fail(errctx.Mark(errkind.InvalidArgumentMark).
			Wrap(err).Error("Failed to create output directory"))
	}

	probe, err := os.CreateTemp(absOutputDir, ".write-check-*")
	if err != nil {
		return "", e.fail(errctx.Mark(errkind.PermissionDeniedMark).
			Wrap(err).Error("No write permission for output directory"))
	}
	_ = probe.Close()
	_ = os.Remove(probe.Name())

	return absOutputDir, nil
}

// CheckCapabilities fails fast, before any input is looked at, when the
// environment can't separate stems at all.
func (e *Engine) CheckCapabilities() error {
	if !e.capabilities.CanSeparateStems() {
		return e.fail(cerr.Field("missing_dependencies", e.capabilities.MissingDependencies()).
			Mark(errkind.DependencyMissingMark).
			Error("Required dependencies for stem separation are not installed"))
	}

	return nil
}

func (e *Engine) LoadModel(ctx context.Context) error {
	switch e.state {
	case ModelLoaded:
		return nil
	case Failed:
		return cerr.Error("Separation engine has already failed")
	case Separated:
		return cerr.Error("Separation engine has already been used")
	}

	if err := e.CheckCapabilities(); err != nil {
		return err
	}

	logger := log.WithField("device", e.device)
	logger.Info("Loading separation model")

	model, err := e.loader.Load(ctx, e.device)
	if err != nil {
		return e.fail(e.classifyModelError(err, "Failed to load separation model"))
	}

	sources := model.Sources()
	for _, name := range StemNames {
		if slices.Index(sources, name) < 0 {
			_ = model.Close()
			return e.fail(cerr.Fields(cerr.F{
				"model_sources": sources,
				"missing_stem":  name,
			}).Mark(errkind.ModelInferenceFailureMark).
				Error("Separation model does not produce every expected stem"))
		}
	}

	e.model = model
	e.state = ModelLoaded
	logger.Info("Separation model loaded")

	return nil
}

func (e *Engine) Separate(ctx context.Context, waveform audio.Waveform, outputDir string) (StemSet, error) {
	if e.state != ModelLoaded {
		return nil, cerr.Field("state", e.state).Error("Separation model is not loaded")
	}

	if err := waveform.Validate(); err != nil {
		return nil, e.fail(err)
	}

	errctx := cerr.Fields(cerr.F{
		"output_directory": outputDir,
		"device":           e.device,
	})

	frames := waveform.Frames()
	input := Tensor{
		Shape: []int{1, audio.StereoChannels, frames},
		Data:  waveform.Matrix().Data,
	}

	logger := log.WithFields(log.Fields{
		"frames":     frames,
		"sampleRate": waveform.SampleRate,
		"device":     e.device,
	})
	logger.Info("Running separation model")

	output, err := e.model.Apply(ctx, input, e.params)
	if err != nil {
		return nil, e.fail(e.classifyModelError(err, "Model inference failed"))
	}

	output, err = squeezeBatch(output)
	if err != nil {
		return nil, e.fail(errctx.Mark(errkind.ModelInferenceFailureMark).
			Wrap(err).Error("Model returned an unexpected result"))
	}

	sources := e.model.Sources()
	expectedShape := []int{len(sources), audio.StereoChannels, frames}
	if !slices.Equal(output.Shape, expectedShape) || len(output.Data) != output.Size() {
		return nil, e.fail(errctx.Fields(cerr.F{
			"output_shape":   output.Shape,
			"expected_shape": expectedShape,
		}).Mark(errkind.ModelInferenceFailureMark).
			Error("Model output does not match the input waveform"))
	}

	stems := StemSet{}
	for _, name := range StemNames {
		stemPath := filepath.Join(outputDir, name+".wav")
		channels := stemChannels(output, slices.Index(sources, name), frames)

		if err := audio.WriteWAV(stemPath, channels, waveform.SampleRate); err != nil {
			_ = os.Remove(stemPath)
			removeStems(stems)
			return nil, e.fail(errctx.Field("stem", name).
				Wrap(err).Error("Failed to save stem"))
		}

		stems = append(stems, Stem{Name: name, Path: filepath.ToSlash(stemPath)})
	}

	e.state = Separated
	logger.Info("Finished separating stems")

	return stems, nil
}

func (e *Engine) Close() error {
	if e.model == nil {
		return nil
	}

	model := e.model
	e.model = nil
	return model.Close()
}

func (e *Engine) fail(err error) error {
	e.state = Failed
	return err
}

func (e *Engine) classifyModelError(err error, msg string) error {
	errctx := cerr.Field("device", e.device)

	if errors.Is(err, ErrDeviceOutOfMemory) {
		return errctx.Mark(errkind.InsufficientDeviceMemoryMark).
			Wrap(err).Error("Not enough device memory for audio processing")
	}

	return errctx.Mark(errkind.ModelInferenceFailureMark).Wrap(err).Error(msg)
}

func squeezeBatch(t Tensor) (Tensor, error) {
	if len(t.Shape) == 4 {
		if t.Shape[0] != 1 {
			return Tensor{}, cerr.Field("shape", t.Shape).Error("Expected a batch of one")
		}
		return Tensor{Shape: t.Shape[1:], Data: t.Data}, nil
	}

	if len(t.Shape) == 3 {
		return t, nil
	}

	return Tensor{}, cerr.Field("shape", t.Shape).Error("Expected sources, channels and frames")
}

func stemChannels(t Tensor, source int, frames int) [][]float32 {
	channels := make([][]float32, audio.StereoChannels)
	base := source * audio.StereoChannels * frames
	for c := range channels {
		start := base + c*frames
		channels[c] = t.Data[start : start+frames]
	}

	return channels
}

func removeStems(stems StemSet) {
	for _, stem := range stems {
		if err := os.Remove(filepath.FromSlash(stem.Path)); err != nil {
			log.WithError(err).WithField("path", stem.Path).Warn("Failed to clean up partial stem")
		}
	}
}
