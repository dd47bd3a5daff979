// Package object stores exported documents.
package object

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"

	"resume-builder/internal/shared/util"
)

var (
	// ErrInvalidKey is returned for keys that escape the store root.
	ErrInvalidKey = errors.New("invalid storage key")
	ErrNotFound   = errors.New("object not found")
)

const exportsDir = "exports"

// Object describes a stored export.
type Object struct {
	Key         string `json:"key"`
	FileName    string `json:"fileName"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// ObjectStore saves and retrieves exported files.
type ObjectStore interface {
	// Put stores r under the owner's export namespace.
	Put(ctx context.Context, owner, fileName, contentType string, r io.Reader) (Object, error)
	// Open returns the body and metadata of a stored export. Size is -1 when unknown.
	Open(ctx context.Context, key string) (io.ReadCloser, Object, error)
	Delete(ctx context.Context, key string) error
}

// ExportKey returns the storage key for a new export of fileName by owner:
// <owner hash>/exports/<uuid>_<file name>.
func ExportKey(owner, fileName string) (string, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}
	return util.OwnerPrefix(owner) + path.Join(exportsDir, uuid.NewString()+"_"+name), nil
}

// OwnedBy reports whether key lies in owner's export namespace.
func OwnedBy(key, owner string) bool {
	return strings.HasPrefix(key, util.OwnerPrefix(owner)+exportsDir+"/")
}

// FileName recovers the file name a key was created for.
func FileName(key string) string {
	base := path.Base(key)
	if id, name, ok := strings.Cut(base, "_"); ok && uuid.Validate(id) == nil {
		return name
	}
	return base
}

// exportTypes covers the export formats; mime's table lacks .docx on most systems.
var exportTypes = map[string]string{
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".pdf":  "application/pdf",
	".html": "text/html; charset=utf-8",
}

// ContentTypeFor guesses a content type from the key's extension.
func ContentTypeFor(key string) string {
	ext := strings.ToLower(path.Ext(key))
	if ct, ok := exportTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// CleanKey rejects absolute keys and keys that climb out of the root.
func CleanKey(key string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(key, "\\", "/"))
	if clean == "." || strings.HasPrefix(clean, "..") || strings.HasPrefix(clean, "/") {
		return "", ErrInvalidKey
	}
	return clean, nil
}
