package capability

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/executor"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/cerr"
	"golang.org/x/sync/errgroup"
)

const checkTimeout = 2 * time.Minute

const accelDeviceScript = `import torch
if torch.cuda.is_available():
    print("cuda")
elif getattr(torch.backends, "mps", None) is not None and torch.backends.mps.is_available():
    print("mps")
else:
    print("cpu")
`

// Prober checks every dependency independently. A failing check only marks
// its own capability as unavailable; nothing it does can fail the caller.
type Prober struct {
	executor      executor.Executor
	pythonBinPath string
	ffmpegBinPath string

	mutex  *sync.Mutex
	probed *bool
	result *Set
}

func NewProber(executor executor.Executor, pythonBinPath string, ffmpegBinPath string) Prober {
	return Prober{
		executor:      executor,
		pythonBinPath: pythonBinPath,
		ffmpegBinPath: ffmpegBinPath,
		mutex:         &sync.Mutex{},
		probed:        new(bool),
		result:        &Set{},
	}
}

// Probe runs the checks on first use and remembers the outcome. A probe cut
// short by its context is returned but not remembered, since its failed
// checks say nothing about what is installed.
func (p Prober) Probe(ctx context.Context) Set {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if *p.probed {
		return *p.result
	}

	set := p.probe(ctx)
	if ctx.Err() != nil {
		log.WithError(ctx.Err()).Warn("Capability probe was interrupted, it will be retried")
		return set
	}

	*p.result = set
	*p.probed = true
	log.WithFields(log.Fields{
		"tensor_runtime":      set.TensorRuntime,
		"accel_device":        set.AccelDeviceName,
		"audio_codec":         set.AudioCodec,
		"separation_model":    set.SeparationModel,
		"transcription_model": set.TranscriptionModel,
	}).Info("Probed capabilities")

	return set
}

func (p Prober) probe(ctx context.Context) Set {
	var (
		set         Set
		accelDevice Device
	)

	group, groupCtx := errgroup.WithContext(ctx)
	check := func(dependency string, fn func(context.Context) error, available *bool) {
		group.Go(func() error {
			checkCtx, cancel := context.WithTimeout(groupCtx, checkTimeout)
			defer cancel()

			err := fn(checkCtx)
			if err != nil {
				log.WithField("dependency", dependency).
					WithFields(cerr.CollectFields(err)).
					WithError(err).
					Warn("Dependency is unavailable")
			}

			*available = err == nil
			return nil
		})
	}

	accelAvailable := false
	check(TensorRuntimeDependency, p.pythonImports("torch"), &set.TensorRuntime)
	check("accelerator", func(ctx context.Context) error {
		device, err := p.accelDevice(ctx)
		accelDevice = device
		return err
	}, &accelAvailable)
	check(AudioCodecDependency, p.ffmpeg, &set.AudioCodec)
	check(SeparationModelDependency, p.pythonImports("demucs.pretrained", "demucs.apply"), &set.SeparationModel)
	check(TranscriptionModelDependency, p.pythonImports("basic_pitch"), &set.TranscriptionModel)

	_ = group.Wait()

	if set.TensorRuntime && accelAvailable && accelDevice != CPU {
		set.AccelDevice = true
		set.AccelDeviceName = accelDevice
	}

	return set
}

func (p Prober) pythonImports(modules ...string) func(context.Context) error {
	return func(ctx context.Context) error {
		script := "import " + strings.Join(modules, ", ")
		errctx := cerr.Field("python_bin_path", p.pythonBinPath).Field("script", script)

		cmd := p.executor.CommandContext(ctx, p.pythonBinPath, "-c", script)
		output, err := cmd.CombinedOutput()
		if err != nil {
			return errctx.Field("python_output", string(output)).
				Wrap(err).Error("Python could not import module")
		}

		return nil
	}
}

func (p Prober) accelDevice(ctx context.Context) (Device, error) {
	cmd := p.executor.CommandContext(ctx, p.pythonBinPath, "-c", accelDeviceScript)
	output, err := cmd.Output()
	if err != nil {
		return CPU, cerr.Field("python_bin_path", p.pythonBinPath).
			Wrap(err).Error("Failed to query accelerator availability")
	}

	switch Device(strings.TrimSpace(string(output))) {
	case CUDA:
		return CUDA, nil
	case MPS:
		return MPS, nil
	default:
		return CPU, nil
	}
}

func (p Prober) ffmpeg(ctx context.Context) error {
	errctx := cerr.Field("ffmpeg_bin_path", p.ffmpegBinPath)

	binPath, err := p.executor.LookPath(p.ffmpegBinPath)
	if err != nil {
		return errctx.Wrap(err).Error("ffmpeg could not be found")
	}

	output, err := p.executor.CommandContext(ctx, binPath, "-version").CombinedOutput()
	if err != nil {
		return errctx.Field("ffmpeg_output", string(output)).
			Wrap(err).Error("ffmpeg failed to report its version")
	}

	return nil
}
