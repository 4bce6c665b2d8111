package command

import (
	"context"
	"fmt"
	"math"
	"runtime/debug"

	"github.com/apex/log"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/audio"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/capability"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/cloud_storage/store"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/response"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/separation"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/transcription"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/cerr"
)

type Prober interface {
	Probe(ctx context.Context) capability.Set
}

type Config struct {
	// empty picks the accelerator when there is one
	Device               capability.Device
	TranscriptionBackend string
}

// Decoders is the decoding ladder. Codec is only tried when the codec library
// was found on this machine.
type Decoders struct {
	Native []audio.Decoder
	Codec  audio.Decoder
}

func (d Decoders) Loader(capabilities capability.Set) audio.Loader {
	decoders := append([]audio.Decoder{}, d.Native...)
	if capabilities.AudioCodec && d.Codec != nil {
		decoders = append(decoders, d.Codec)
	}

	return audio.NewLoader(decoders...)
}

type Dispatcher struct {
	prober      Prober
	decoders    Decoders
	modelLoader separation.ModelLoader
	basicPitch  transcription.Backend
	paths       Paths
	config      Config
}

func NewDispatcher(
	prober Prober,
	decoders Decoders,
	modelLoader separation.ModelLoader,
	basicPitch transcription.Backend,
	paths Paths,
	config Config,
) Dispatcher {
	return Dispatcher{
		prober:      prober,
		decoders:    decoders,
		modelLoader: modelLoader,
		basicPitch:  basicPitch,
		paths:       paths,
		config:      config,
	}
}

type handler func(ctx context.Context, args Args) (any, error)

func (d Dispatcher) handlers() map[string]handler {
	return map[string]handler{
		GetCapabilities:   d.capabilityReport,
		CheckCapabilities: d.capabilityReport,
		SeparateStems: func(ctx context.Context, args Args) (any, error) {
			return d.separateStems(ctx, NewSeparateStemsArgs(args))
		},
		ExtractMIDI: func(ctx context.Context, args Args) (any, error) {
			return d.extractMIDI(ctx, NewExtractMIDIArgs(args))
		},
	}
}

// Dispatch always answers with exactly one envelope, whatever happens inside
// the action.
func (d Dispatcher) Dispatch(ctx context.Context, action string, args Args) (envelope response.Envelope) {
	logger := log.WithField("action", action)

	defer func() {
		if r := recover(); r != nil {
			err := cerr.Field("panic", fmt.Sprint(r)).Error("Unexpected failure while running action")
			logger.WithField("stack", string(debug.Stack())).
				WithError(err).
				Error("Recovered from panic")
			envelope = response.FromError(action, err)
		}
	}()

	handle, ok := d.handlers()[action]
	if !ok {
		return response.FromError(action, unknownActionError(action))
	}

	if err := ValidateArgs(action, args); err != nil {
		return response.FromError(action, err)
	}

	logger.Info("Running action")

	result, err := handle(ctx, args)
	if err != nil {
		cerr.Log(err)
		return response.FromError(action, err)
	}

	logger.Info("Action succeeded")
	return response.Success(result)
}

func (d Dispatcher) Report(ctx context.Context) CapabilityReport {
	capabilities := d.prober.Probe(ctx)

	device := d.config.Device
	if device == "" {
		device = capabilities.Device()
	}

	report := CapabilityReport{
		CanSeparateStems:    capabilities.CanSeparateStems(),
		MissingDependencies: capabilities.MissingDependencies(),
		Device:              device,
		Capabilities:        capabilities,
	}

	backend, err := d.transcriptionBackend(capabilities)
	if err == nil {
		report.CanExtractMIDI = true
		report.TranscriptionBackend = backend.Name()
	}

	return report
}

func (d Dispatcher) capabilityReport(ctx context.Context, _ Args) (any, error) {
	return d.Report(ctx), nil
}

func (d Dispatcher) transcriptionBackend(capabilities capability.Set) (transcription.Backend, error) {
	native := transcription.NewNative(d.decoders.Loader(capabilities))
	return transcription.SelectBackend(d.config.TranscriptionBackend, capabilities, d.basicPitch, native)
}

type SeparationDetails struct {
	InputFile       string            `json:"input_file"`
	OutputDirectory string            `json:"output_directory"`
	Device          capability.Device `json:"device"`
	SampleRate      int               `json:"sample_rate"`
	Duration        float64           `json:"duration"`
}

type SeparationResult struct {
	Stems   separation.StemSet `json:"stems"`
	Details SeparationDetails  `json:"details"`
}

func (d Dispatcher) separateStems(ctx context.Context, args SeparateStemsArgs) (SeparationResult, error) {
	inputArg, outputArg := args.InputPath, args.OutputDir
	capabilities := d.prober.Probe(ctx)

	engine := separation.NewEngine(capabilities, d.modelLoader, d.config.Device)
	defer func() {
		if err := engine.Close(); err != nil {
			log.WithError(err).Warn("Failed to close separation model")
		}
	}()

	if err := engine.CheckCapabilities(); err != nil {
		return SeparationResult{}, err
	}

	inputPath, cleanupInput, err := d.paths.Input(ctx, inputArg)
	if err != nil {
		return SeparationResult{}, err
	}
	defer cleanupInput()

	if err := audio.CheckReadable(inputPath); err != nil {
		return SeparationResult{}, err
	}

	localOutputDir, cleanupOutput, err := d.paths.OutputDir(outputArg)
	if err != nil {
		return SeparationResult{}, err
	}
	defer cleanupOutput()

	outputDir, err := engine.PrepareOutputDir(localOutputDir)
	if err != nil {
		return SeparationResult{}, err
	}

	// decoding is cheap next to starting the model, so a bad input fails first
	waveform, err := d.decoders.Loader(capabilities).Load(ctx, inputPath)
	if err != nil {
		return SeparationResult{}, err
	}

	if err := engine.LoadModel(ctx); err != nil {
		return SeparationResult{}, err
	}

	stems, err := engine.Separate(ctx, waveform, outputDir)
	if err != nil {
		return SeparationResult{}, err
	}

	published := separation.StemSet{}
	for _, stem := range stems {
		destination := stem.Path
		if outputArg != localOutputDir {
			destination = store.JoinURL(outputArg, stem.Name+".wav")
		}

		stemPath, err := d.paths.Publish(ctx, stem.Path, destination)
		if err != nil {
			return SeparationResult{}, cerr.Field("stem", stem.Name).Wrap(err).Error("Failed to publish stem")
		}

		published = append(published, separation.Stem{Name: stem.Name, Path: stemPath})
	}

	reportedDir := outputDir
	if outputArg != localOutputDir {
		reportedDir = outputArg
	}

	return SeparationResult{
		Stems: published,
		Details: SeparationDetails{
			InputFile:       inputArg,
			OutputDirectory: reportedDir,
			Device:          engine.Device(),
			SampleRate:      waveform.SampleRate,
			Duration:        math.Round(waveform.Duration().Seconds()*100) / 100,
		},
	}, nil
}

func (d Dispatcher) extractMIDI(ctx context.Context, args ExtractMIDIArgs) (transcription.Summary, error) {
	inputArg, outputArg := args.InputPath, args.OutputPath
	capabilities := d.prober.Probe(ctx)

	backend, err := d.transcriptionBackend(capabilities)
	if err != nil {
		return transcription.Summary{}, err
	}

	inputPath, cleanupInput, err := d.paths.Input(ctx, inputArg)
	if err != nil {
		return transcription.Summary{}, err
	}
	defer cleanupInput()

	outputPath, cleanupOutput, err := d.paths.OutputFile(outputArg)
	if err != nil {
		return transcription.Summary{}, err
	}
	defer cleanupOutput()

	summary, err := transcription.NewTranscriber(backend).Extract(ctx, inputPath, outputPath)
	if err != nil {
		return transcription.Summary{}, err
	}

	if outputPath != outputArg {
		summary.MIDIPath, err = d.paths.Publish(ctx, outputPath, outputArg)
		if err != nil {
			return transcription.Summary{}, err
		}
	}

	return summary, nil
}
