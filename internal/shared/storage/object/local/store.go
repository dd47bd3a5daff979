// Package local keeps exports on the local filesystem for development.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"resume-builder/internal/shared/storage/object"
)

// Store implements ObjectStore under one base directory.
type Store struct {
	baseDir string
}

// New creates a new local object store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

var _ object.ObjectStore = (*Store)(nil)

func (s *Store) path(key string) (string, string, error) {
	clean, err := object.CleanKey(key)
	if err != nil {
		return "", "", err
	}
	return clean, filepath.Join(s.baseDir, filepath.FromSlash(clean)), nil
}

// Put writes the export to a temp file and renames it into place, so a
// concurrent download never sees a partial file.
func (s *Store) Put(ctx context.Context, owner, fileName, contentType string, r io.Reader) (object.Object, error) {
	if err := ctx.Err(); err != nil {
		return object.Object{}, err
	}
	key, err := object.ExportKey(owner, fileName)
	if err != nil {
		return object.Object{}, err
	}
	_, fullPath, err := s.path(key)
	if err != nil {
		return object.Object{}, err
	}
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return object.Object{}, fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return object.Object{}, fmt.Errorf("create temp: %w", err)
	}
	written, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return object.Object{}, fmt.Errorf("write export: %w", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		os.Remove(tmp.Name())
		return object.Object{}, fmt.Errorf("rename export: %w", err)
	}
	if contentType == "" {
		contentType = object.ContentTypeFor(key)
	}
	return object.Object{Key: key, FileName: object.FileName(key), Size: written, ContentType: contentType}, nil
}

// Open opens a stored export for reading.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, object.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, object.Object{}, err
	}
	clean, fullPath, err := s.path(key)
	if err != nil {
		return nil, object.Object{}, err
	}
	f, err := os.Open(fullPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, object.Object{}, fmt.Errorf("%w: %s", object.ErrNotFound, clean)
	}
	if err != nil {
		return nil, object.Object{}, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, object.Object{}, err
	}
	return f, object.Object{
		Key:         clean,
		FileName:    object.FileName(clean),
		Size:        info.Size(),
		ContentType: object.ContentTypeFor(clean),
	}, nil
}

// Delete removes a stored export.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean, fullPath, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", object.ErrNotFound, clean)
		}
		return err
	}
	return nil
}
