package store

import (
	"context"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/cockroachdb/errors"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/cerr"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/errkind"
	"google.golang.org/api/option"
)

const GSScheme = "gs://"

type FileStore interface {
	GetFile(ctx context.Context, fileURL string) ([]byte, error)
	WriteFile(ctx context.Context, fileURL string, contents []byte) error
}

// IsRemote tells apart object URLs from local paths.
func IsRemote(path string) bool {
	return strings.HasPrefix(path, GSScheme)
}

// SplitURL breaks gs://bucket/some/object into its bucket and object name.
func SplitURL(fileURL string) (string, string, error) {
	errctx := cerr.Field("file_url", fileURL).Mark(errkind.InvalidArgumentMark)

	if !IsRemote(fileURL) {
		return "", "", errctx.Error("File URL is not a cloud storage URL")
	}

	bucket, object, found := strings.Cut(strings.TrimPrefix(fileURL, GSScheme), "/")
	if !found || bucket == "" || object == "" {
		return "", "", errctx.Error("File URL needs both a bucket and an object name")
	}

	return bucket, object, nil
}

func JoinURL(base string, leaf string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(leaf, "/")
}

var _ FileStore = GoogleFileStore{}

type GoogleFileStore struct {
	client *storage.Client
}

func NewGoogleFileStore(opts ...option.ClientOption) (GoogleFileStore, error) {
	client, err := storage.NewClient(context.Background(), opts...)
	if err != nil {
		return GoogleFileStore{}, cerr.Wrap(err).Error("Failed to create cloud storage client")
	}

	return GoogleFileStore{client: client}, nil
}

func (g GoogleFileStore) GetFile(ctx context.Context, fileURL string) ([]byte, error) {
	bucket, object, err := SplitURL(fileURL)
	if err != nil {
		return nil, err
	}

	errctx := cerr.Field("file_url", fileURL)

	reader, err := g.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return nil, errctx.Mark(errkind.NotFoundMark).Wrap(err).Error("Input file not found")
		}
		return nil, errctx.Wrap(err).Error("Failed to open object for reading")
	}
	defer reader.Close()

	contents, err := io.ReadAll(reader)
	if err != nil {
		return nil, errctx.Wrap(err).Error("Failed to read object")
	}

	return contents, nil
}

func (g GoogleFileStore) WriteFile(ctx context.Context, fileURL string, contents []byte) error {
	bucket, object, err := SplitURL(fileURL)
	if err != nil {
		return err
	}

	errctx := cerr.Field("file_url", fileURL)

	writer := g.client.Bucket(bucket).Object(object).NewWriter(ctx)
	if _, err := writer.Write(contents); err != nil {
		_ = writer.Close()
		return errctx.Wrap(err).Error("Failed to write object")
	}

	if err := writer.Close(); err != nil {
		return errctx.Wrap(err).Error("Failed to finish writing object")
	}

	return nil
}

func (g GoogleFileStore) Close() error {
	return g.client.Close()
}
