package dummy

import (
	"context"
	"sync"

	"github.com/veedubyou/audio-worker/src/worker/internal/application/cloud_storage/store"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/cerr"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/errkind"
)

var _ store.FileStore = &FileStore{}

type FileStore struct {
	mutex       sync.Mutex
	files       map[string][]byte
	Unavailable bool
}

func NewDummyFileStore() *FileStore {
	return &FileStore{
		files: map[string][]byte{},
	}
}

func (f *FileStore) GetFile(_ context.Context, fileURL string) ([]byte, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.Unavailable {
		return nil, NetworkFailure
	}

	if _, _, err := store.SplitURL(fileURL); err != nil {
		return nil, err
	}

	contents, ok := f.files[fileURL]
	if !ok {
		return nil, cerr.Field("file_url", fileURL).
			Mark(errkind.NotFoundMark).
			Wrap(NotFound).Error("Input file not found")
	}

	return append([]byte{}, contents...), nil
}

func (f *FileStore) WriteFile(_ context.Context, fileURL string, contents []byte) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.Unavailable {
		return NetworkFailure
	}

	if _, _, err := store.SplitURL(fileURL); err != nil {
		return err
	}

	f.files[fileURL] = append([]byte{}, contents...)
	return nil
}

func (f *FileStore) Has(fileURL string) bool {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	_, ok := f.files[fileURL]
	return ok
}
