package item

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// BlobStorage stores image blobs and returns a durable reference URL.
type BlobStorage interface {
	Store(ctx context.Context, filename string, blob []byte) (string, error)
}

// LocalBlobStorage writes blobs under the instance data directory, in
// assets/{timestamp}_{filename}, and serves them by relative path.
type LocalBlobStorage struct {
	dataDir string
}

// NewLocalBlobStorage creates a blob storage rooted at dataDir.
func NewLocalBlobStorage(dataDir string) *LocalBlobStorage {
	return &LocalBlobStorage{dataDir: dataDir}
}

// Store writes the blob and returns its slash-separated relative path.
func (s *LocalBlobStorage) Store(_ context.Context, filename string, blob []byte) (string, error) {
	internalPath := filepath.ToSlash(filepath.Join("assets",
		fmt.Sprintf("%d_%s", time.Now().Unix(), filename)))

	osPath := filepath.Join(s.dataDir, filepath.FromSlash(internalPath))
	if err := os.MkdirAll(filepath.Dir(osPath), os.ModePerm); err != nil {
		return "", errors.Wrap(err, "failed to create assets directory")
	}
	if err := os.WriteFile(osPath, blob, 0644); err != nil {
		return "", errors.Wrap(err, "failed to write blob")
	}
	return internalPath, nil
}
