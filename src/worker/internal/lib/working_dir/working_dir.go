package working_dir

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/cerr"
)

type WorkingDir struct {
	root string
}

func NewWorkingDir(dir string) (WorkingDir, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return WorkingDir{}, cerr.Field("dir", dir).Wrap(err).Error("Failed to convert working dir to absolute format")
	}

	if err := os.MkdirAll(absDir, os.ModePerm); err != nil {
		return WorkingDir{}, cerr.Field("dir", absDir).Wrap(err).Error("Failed to create working dir")
	}

	return WorkingDir{root: absDir}, nil
}

func (w WorkingDir) Root() string {
	return w.root
}

func (w WorkingDir) TempDir() string {
	return filepath.Join(w.root, "tmp")
}

// NewScratchDir makes a fresh, uniquely named directory under the temp dir.
// The caller owns it and is expected to remove it.
func (w WorkingDir) NewScratchDir(prefix string) (string, error) {
	dir := filepath.Join(w.TempDir(), prefix+"-"+uuid.NewString())
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", cerr.Field("dir", dir).Wrap(err).Error("Failed to create scratch dir")
	}

	return dir, nil
}

// NewScratchFile returns a unique path under the temp dir without creating it.
func (w WorkingDir) NewScratchFile(prefix string, ext string) (string, error) {
	if err := os.MkdirAll(w.TempDir(), os.ModePerm); err != nil {
		return "", cerr.Field("dir", w.TempDir()).Wrap(err).Error("Failed to create temp dir")
	}

	return filepath.Join(w.TempDir(), prefix+"-"+uuid.NewString()+ext), nil
}

func (w WorkingDir) String() string {
	return w.root
}
