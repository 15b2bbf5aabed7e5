// Package storage resolves bitstream file names to readable content.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"docsgraph/internal/domain"
)

// Source opens named files for upload.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// DirSource serves files from a staging directory. Names are reduced to their
// base element so callers cannot escape the directory.
type DirSource struct {
	dir string
}

// NewDirSource creates a source rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Dir returns the staging directory.
func (s *DirSource) Dir() string {
	return s.dir
}

// Open returns the staged file, or an error wrapping domain.ErrNotFound.
func (s *DirSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	base, err := Clean(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.dir, base))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("staged file %q: %w", base, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("open staged file: %w", err)
	}
	return f, nil
}

// Clean returns the final path element of name. It rejects names with no
// usable file name.
func Clean(name string) (string, error) {
	base := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(name, `\`, "/")))
	if base == "/" || base == "." || base == ".." {
		return "", &domain.ValidationError{Message: fmt.Sprintf("invalid file name %q", name)}
	}
	return base, nil
}
