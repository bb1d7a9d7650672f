package persistence

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dfryer1193/newsroom/article/domain"
)

func TestFileBlobStore_GetBytes(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "articles"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "articles", "a.md"), []byte("# Hello"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(filepath.Dir(root), "outside.md"), []byte("secret"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Remove(filepath.Join(filepath.Dir(root), "outside.md")) })

	store := NewFileBlobStore(root)

	tests := []struct {
		name     string
		path     string
		want     string
		notFound bool
		wantErr  bool
	}{
		{name: "Relative path", path: "articles/a.md", want: "# Hello"},
		{name: "Leading slash", path: "/articles/a.md", want: "# Hello"},
		{name: "Missing", path: "articles/b.md", notFound: true, wantErr: true},
		{name: "Traversal stays in root", path: "../outside.md", notFound: true, wantErr: true},
		{name: "Empty path", path: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.GetBytes(context.Background(), tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetBytes() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.notFound && !errors.Is(err, domain.ErrBlobNotFound) {
				t.Errorf("GetBytes() error = %v, want ErrBlobNotFound", err)
			}
			if string(got) != tt.want {
				t.Errorf("GetBytes() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFileBlobStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewFileBlobStore(t.TempDir()).GetBytes(ctx, "a.md"); !errors.Is(err, context.Canceled) {
		t.Errorf("GetBytes() error = %v, want context.Canceled", err)
	}
}
