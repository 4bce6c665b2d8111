package transcription

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/apex/log"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/executor"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/cerr"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/errkind"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/working_dir"
)

//go:embed transcribe.py
var transcribeScript []byte

const transcribeScriptName = "basic_pitch_transcribe.py"

var _ Backend = BasicPitch{}

type BasicPitch struct {
	executor      executor.Executor
	pythonBinPath string
	workingDir    working_dir.WorkingDir
}

func NewBasicPitch(executor executor.Executor, pythonBinPath string, workingDir working_dir.WorkingDir) BasicPitch {
	return BasicPitch{
		executor:      executor,
		pythonBinPath: pythonBinPath,
		workingDir:    workingDir,
	}
}

func (BasicPitch) Name() string {
	return BackendBasicPitch
}

func (b BasicPitch) Transcribe(ctx context.Context, inputPath string, outputPath string) error {
	scriptPath := filepath.Join(b.workingDir.Root(), transcribeScriptName)
	if err := os.WriteFile(scriptPath, transcribeScript, 0644); err != nil {
		return cerr.Field("script_path", scriptPath).Wrap(err).Error("Failed to write transcription script")
	}

	args := []string{
		"-u", scriptPath,
		"--input", inputPath,
		"--output", outputPath,
		"--minimum-note-length", strconv.FormatFloat(MinimumNoteLength, 'f', -1, 64),
		"--minimum-frequency", strconv.FormatFloat(MinimumFrequency, 'f', -1, 64),
		"--maximum-frequency", strconv.FormatFloat(MaximumFrequency, 'f', -1, 64),
	}

	errctx := cerr.Field("python_bin_path", b.pythonBinPath).Field("basic_pitch_args", args)

	logger := log.WithFields(log.Fields{
		"inputPath":  inputPath,
		"outputPath": outputPath,
	})
	logger.Info("Running basic-pitch")

	cmd := b.executor.CommandContext(ctx, b.pythonBinPath, args...)
	cmd.SetDir(b.workingDir.Root())

	output, err := cmd.CombinedOutput()
	if err != nil {
		return errctx.Field("basic_pitch_output", string(output)).
			Mark(errkind.ModelInferenceFailureMark).
			Wrap(err).
			Error(fmt.Sprintf("Error occurred while running basic-pitch: %s", string(output)))
	}

	logger.Debug(string(output))
	logger.Info("Finished basic-pitch")

	return nil
}
