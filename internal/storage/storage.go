package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrInvalidName is returned for names that are not a single path element.
var ErrInvalidName = errors.New("invalid file name")

// FileStore is a flat directory of blobs keyed by file name.
type FileStore interface {
	// Save writes r under name and returns the number of bytes written. It
	// fails if name already exists.
	Save(ctx context.Context, name string, r io.Reader) (int64, error)
	// Read returns the content of name. Missing files yield an error
	// matching fs.ErrNotExist.
	Read(ctx context.Context, name string) ([]byte, error)
	// Remove deletes name. Missing files yield an error matching fs.ErrNotExist.
	Remove(ctx context.Context, name string) error
	// Root returns the directory backing the store.
	Root() string
}

// Local stores files in a directory on the local filesystem.
type Local struct {
	root string
}

var _ FileStore = (*Local)(nil)

// NewLocal returns a store rooted at dir. The directory is created lazily.
func NewLocal(dir string) *Local {
	return &Local{root: dir}
}

// Root returns the backing directory.
func (l *Local) Root() string {
	return l.root
}

func (l *Local) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(l.root, name), nil
}

// Save creates the directory if needed and streams r into a new file.
func (l *Local) Save(ctx context.Context, name string, r io.Reader) (int64, error) {
	p, err := l.path(name)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(l.root, 0o755); err != nil {
		return 0, fmt.Errorf("create storage dir: %w", err)
	}

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}

	n, err := io.Copy(f, &ctxReader{ctx: ctx, r: r})
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(p)
		return 0, fmt.Errorf("write file: %w", err)
	}
	return n, nil
}

// Read returns the whole file.
func (l *Local) Read(ctx context.Context, name string) ([]byte, error) {
	p, err := l.path(name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

// Remove deletes the file.
func (l *Local) Remove(ctx context.Context, name string) error {
	p, err := l.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// IsNotExist reports whether err means the file is absent.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// ctxReader stops a copy once the request context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
