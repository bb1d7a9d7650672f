package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dfryer1193/newsroom/article/domain"
)

var _ domain.BlobStore = (*FileBlobStore)(nil)

// FileBlobStore reads article markdown from a directory on local disk.
type FileBlobStore struct {
	root string
}

func NewFileBlobStore(root string) *FileBlobStore {
	return &FileBlobStore{root: root}
}

// GetBytes reads the file at path relative to the store root.
// Paths escaping the root are rejected.
func (s *FileBlobStore) GetBytes(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cleaned := filepath.Clean("/" + filepath.FromSlash(strings.TrimSpace(path)))
	if cleaned == string(filepath.Separator) {
		return nil, fmt.Errorf("invalid blob path %q", path)
	}
	if !filepath.IsLocal(strings.TrimPrefix(cleaned, string(filepath.Separator))) {
		return nil, fmt.Errorf("invalid blob path %q", path)
	}

	data, err := os.ReadFile(filepath.Join(s.root, cleaned))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrBlobNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", path, err)
	}

	return data, nil
}
