package object

import (
	"errors"
	"strings"
	"testing"
)

func TestExportKeyLayout(t *testing.T) {
	key, err := ExportKey("guest:abc", "Platform Resume.docx")
	if err != nil {
		t.Fatalf("ExportKey: %v", err)
	}
	parts := strings.Split(key, "/")
	if len(parts) != 3 || parts[1] != "exports" {
		t.Fatalf("unexpected key %q", key)
	}
	if !OwnedBy(key, "guest:abc") || OwnedBy(key, "guest:abd") {
		t.Fatalf("ownership check failed for %q", key)
	}
	if got := FileName(key); got != "Platform Resume.docx" {
		t.Fatalf("expected file name back, got %q", got)
	}
}

func TestFileNameWithoutUUIDPrefix(t *testing.T) {
	if got := FileName("x/exports/my_file.pdf"); got != "my_file.pdf" {
		t.Fatalf("expected base name kept, got %q", got)
	}
}

func TestContentTypeFor(t *testing.T) {
	if got := ContentTypeFor("a/b.unknownext"); got != "application/octet-stream" {
		t.Fatalf("unexpected fallback %q", got)
	}
	if got := ContentTypeFor("a/b.html"); !strings.HasPrefix(got, "text/html") {
		t.Fatalf("unexpected html type %q", got)
	}
}

func TestCleanKey(t *testing.T) {
	if got, err := CleanKey(`abc\exports\x.docx`); err != nil || got != "abc/exports/x.docx" {
		t.Fatalf("unexpected clean %q %v", got, err)
	}
	for _, key := range []string{"", ".", "../x", "/abs", "a/../../b"} {
		if _, err := CleanKey(key); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("%q: expected ErrInvalidKey, got %v", key, err)
		}
	}
}
