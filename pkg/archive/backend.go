// Package archive stores encoded graph documents on local disk or in an S3
// bucket.
package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Common sentinel errors
var (
	ErrNotFound      = errors.New("saved graph not found")
	ErrBadLocation   = errors.New("invalid location")
	ErrNoObjectStore = errors.New("object storage not configured")
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o644
)

// Backend reads and writes whole blobs by key.
type Backend interface {
	Write(ctx context.Context, key string, data []byte) error
	Read(ctx context.Context, key string) ([]byte, error)
}

// FileBackend keeps blobs as files. Relative keys resolve against Root.
type FileBackend struct {
	Root string
}

// NewFileBackend creates a backend rooted at dir. An empty dir means the
// working directory.
func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{Root: dir}
}

func (b *FileBackend) path(key string) string {
	if filepath.IsAbs(key) || b.Root == "" {
		return filepath.Clean(key)
	}
	return filepath.Join(b.Root, key)
}

// Write replaces the file atomically: data goes to a temporary file in the
// same directory which is then renamed over the target. On error the
// previous file, if any, is untouched.
func (b *FileBackend) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target := b.path(key)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", target, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", target, err)
	}
	if err := os.Chmod(tmpName, filePermissions); err != nil {
		return fmt.Errorf("chmod %s: %w", target, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("replace %s: %w", target, err)
	}
	committed = true
	return nil
}

// Read returns the file contents. A missing file yields ErrNotFound.
func (b *FileBackend) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target := b.path(key)
	data, err := os.ReadFile(target)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, target)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", target, err)
	}
	return data, nil
}
