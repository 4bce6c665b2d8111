package command

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/apex/log"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/cloud_storage/store"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/cerr"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/errkind"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/working_dir"
)

// Paths lets every action accept gs:// URLs next to local paths. Remote inputs
// are downloaded into the working dir and remote outputs are produced locally
// and uploaded afterwards.
type Paths struct {
	fileStore  store.FileStore
	workingDir working_dir.WorkingDir
}

// NewPaths takes a nil file store when cloud storage isn't configured.
func NewPaths(fileStore store.FileStore, workingDir working_dir.WorkingDir) Paths {
	return Paths{
		fileStore:  fileStore,
		workingDir: workingDir,
	}
}

func (p Paths) checkRemote(fileURL string) error {
	if p.fileStore == nil {
		return cerr.Field("file_url", fileURL).
			Mark(errkind.InvalidArgumentMark).
			Error("Cloud storage is not configured, only local paths can be used")
	}

	_, _, err := store.SplitURL(fileURL)
	return err
}

func noCleanup() {}

func (p Paths) newScratchDir(prefix string) (string, func(), error) {
	dir, err := p.workingDir.NewScratchDir(prefix)
	if err != nil {
		return "", noCleanup, err
	}

	return dir, func() {
		if err := os.RemoveAll(dir); err != nil {
			log.WithError(err).WithField("dir", dir).Warn("Failed to remove scratch dir")
		}
	}, nil
}

// Input returns a local path holding the input. The cleanup func removes
// anything that was downloaded and is always safe to call.
func (p Paths) Input(ctx context.Context, inputPath string) (string, func(), error) {
	if !store.IsRemote(inputPath) {
		return inputPath, noCleanup, nil
	}

	if err := p.checkRemote(inputPath); err != nil {
		return "", noCleanup, err
	}

	contents, err := p.fileStore.GetFile(ctx, inputPath)
	if err != nil {
		return "", noCleanup, cerr.Field("input_file", inputPath).Wrap(err).Error("Failed to download input file")
	}

	dir, cleanup, err := p.newScratchDir("input")
	if err != nil {
		return "", noCleanup, err
	}

	localPath := filepath.Join(dir, path.Base(inputPath))
	if err := os.WriteFile(localPath, contents, 0644); err != nil {
		cleanup()
		return "", noCleanup, cerr.Field("local_path", localPath).Wrap(err).Error("Failed to save downloaded input file")
	}

	log.WithFields(log.Fields{
		"input_file": inputPath,
		"local_path": localPath,
	}).Info("Downloaded input file")

	return localPath, cleanup, nil
}

// OutputDir returns the local directory to produce outputs into. The cleanup
// func must only run once the outputs have been published.
func (p Paths) OutputDir(outputDir string) (string, func(), error) {
	if !store.IsRemote(outputDir) {
		return outputDir, noCleanup, nil
	}

	if err := p.checkRemote(store.JoinURL(outputDir, "probe")); err != nil {
		return "", noCleanup, err
	}

	return p.newScratchDir("output")
}

// OutputFile returns the local file to produce an output into, with the same
// cleanup contract as OutputDir.
func (p Paths) OutputFile(outputPath string) (string, func(), error) {
	if !store.IsRemote(outputPath) {
		return outputPath, noCleanup, nil
	}

	if err := p.checkRemote(outputPath); err != nil {
		return "", noCleanup, err
	}

	dir, cleanup, err := p.newScratchDir("output")
	if err != nil {
		return "", noCleanup, err
	}

	return filepath.Join(dir, path.Base(outputPath)), cleanup, nil
}

// Publish uploads a produced file when its destination is remote and
// returns where the caller can find it.
func (p Paths) Publish(ctx context.Context, localPath string, destination string) (string, error) {
	if !store.IsRemote(destination) {
		return filepath.ToSlash(localPath), nil
	}

	errctx := cerr.Fields(cerr.F{
		"local_path":  localPath,
		"destination": destination,
	})

	contents, err := os.ReadFile(localPath)
	if err != nil {
		return "", errctx.Wrap(err).Error("Failed to read output file for upload")
	}

	if err := p.fileStore.WriteFile(ctx, destination, contents); err != nil {
		return "", errctx.Wrap(err).Error("Failed to upload output file")
	}

	return destination, nil
}
