package audio

import (
	"context"
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/executor"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/cerr"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/working_dir"
)

var _ Decoder = FFmpegDecoder{}

// FFmpegDecoder hands anything the native decoders can't read to ffmpeg,
// transcoding it to a scratch PCM WAV that is then read like any other.
type FFmpegDecoder struct {
	ffmpegBinPath string
	workingDir    working_dir.WorkingDir
	executor      executor.Executor
}

func NewFFmpegDecoder(ffmpegBinPath string, workingDir working_dir.WorkingDir, executor executor.Executor) FFmpegDecoder {
	return FFmpegDecoder{
		ffmpegBinPath: ffmpegBinPath,
		workingDir:    workingDir,
		executor:      executor,
	}
}

func (FFmpegDecoder) Name() string {
	return "ffmpeg"
}

func (FFmpegDecoder) Formats() []string {
	return []string{"FLAC", "OGG", "OPUS", "M4A", "AAC", "AIFF"}
}

func (f FFmpegDecoder) Decode(ctx context.Context, path string) (Decoded, error) {
	scratchPath, err := f.workingDir.NewScratchFile("decode", ".wav")
	if err != nil {
		return Decoded{}, cerr.Wrap(err).Error("Failed to allocate scratch file for ffmpeg")
	}
	defer os.Remove(scratchPath)

	args := []string{
		"-nostdin", "-hide_banner", "-loglevel", "error", "-y",
		"-i", path,
		"-vn", "-acodec", "pcm_s16le", "-f", "wav",
		scratchPath,
	}

	errctx := cerr.Field("ffmpeg_bin_path", f.ffmpegBinPath).Field("ffmpeg_args", args)

	log.WithFields(log.Fields{
		"path":        path,
		"scratchPath": scratchPath,
	}).Debug("Running ffmpeg to transcode audio")

	cmd := f.executor.CommandContext(ctx, f.ffmpegBinPath, args...)
	cmd.SetDir(f.workingDir.Root())

	output, err := cmd.CombinedOutput()
	if err != nil {
		return Decoded{}, errctx.Field("ffmpeg_output", string(output)).
			Wrap(err).
			Error(fmt.Sprintf("Error occurred while running ffmpeg: %s", string(output)))
	}

	decoded, err := WAVDecoder{}.Decode(ctx, scratchPath)
	if err != nil {
		return Decoded{}, errctx.Wrap(err).Error("Failed to read ffmpeg output")
	}

	return decoded, nil
}
