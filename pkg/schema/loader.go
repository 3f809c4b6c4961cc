package schema

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LoadFile reads schema text from disk. The returned document is not parsed;
// call Document.Schema or Parse to validate it.
func LoadFile(ctx context.Context, path string) (Document, error) {
	if path == "" {
		return Document{}, errors.New("schema loader: file path is required")
	}
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return Document{}, fmt.Errorf("schema loader: resolve %q: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return Document{}, fmt.Errorf("schema loader: read %q: %w", path, err)
	}
	return NewDocument(SourceFromFile(path), data)
}

// LoadFS reads schema text from an fs.FS entry.
func LoadFS(ctx context.Context, files fs.FS, name string) (Document, error) {
	if name == "" {
		return Document{}, errors.New("schema loader: fs path is required")
	}
	if files == nil {
		return Document{}, errors.New("schema loader: fs is nil")
	}
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	data, err := fs.ReadFile(files, name)
	if err != nil {
		return Document{}, fmt.Errorf("schema loader: read %q: %w", name, err)
	}
	return NewDocument(SourceFromFS(name), data)
}
