// Package extract reads the text back out of exported documents so renders
// can be checked after the fact.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"

	"resume-builder/internal/shared/storage/object"
	"resume-builder/resume/preview"
)

// Kind is a supported export payload.
type Kind string

const (
	KindUnknown Kind = ""
	KindPDF     Kind = "pdf"
	KindDOCX    Kind = "docx"
	KindHTML    Kind = "html"
)

// ErrUnsupported is returned for payloads that are not an export.
var ErrUnsupported = errors.New("unsupported export payload")

// maxStoredBytes caps how much of a stored export is read back.
const maxStoredBytes = 20 << 20

var readers = map[Kind]func([]byte) ([]string, error){
	KindPDF:  pdfLines,
	KindDOCX: docxLines,
	KindHTML: htmlLines,
}

// Text returns the non-blank text lines of an HTML, DOCX or PDF export.
func Text(ctx context.Context, data []byte, contentType, fileName string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	kind := Detect(contentType, fileName, data)
	read, ok := readers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: content type %q", ErrUnsupported, contentType)
	}
	lines, err := read(data)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", kind, err)
	}
	return compact(lines), nil
}

// FromStore reads a stored export and returns its text lines.
func FromStore(ctx context.Context, store object.ObjectStore, key string) ([]string, error) {
	body, meta, err := store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxStoredBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return Text(ctx, data, meta.ContentType, meta.FileName)
}

// Contains reports whether any line contains want.
func Contains(lines []string, want string) bool {
	for _, l := range lines {
		if strings.Contains(l, want) {
			return true
		}
	}
	return false
}

// Detect picks the payload kind from the declared content type, then the
// payload bytes, then the file extension.
func Detect(contentType, fileName string, data []byte) Kind {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch ct {
	case "application/pdf":
		return KindPDF
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return KindDOCX
	case "text/html":
		return KindHTML
	}
	switch {
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return KindPDF
	case hasWordBody(data):
		return KindDOCX
	case hasHTMLRoot(data):
		return KindHTML
	}
	switch strings.ToLower(path.Ext(fileName)) {
	case ".pdf":
		return KindPDF
	case ".docx":
		return KindDOCX
	case ".html", ".htm":
		return KindHTML
	}
	return KindUnknown
}

func pdfLines(data []byte) ([]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	var lines []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		for _, row := range rows {
			var sb strings.Builder
			for _, word := range row.Content {
				sb.WriteString(word.S)
			}
			lines = append(lines, sb.String())
		}
	}
	return lines, nil
}

func docxLines(data []byte) ([]string, error) {
	return preview.DOCXText(data)
}

func htmlLines(data []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	var lines []string
	doc.Find("body h1, body h2, body h3, body p, body li, body span.range").Each(func(_ int, s *goquery.Selection) {
		lines = append(lines, s.Text())
	})
	return lines, nil
}

func compact(lines []string) []string {
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func hasWordBody(data []byte) bool {
	if !bytes.HasPrefix(data, []byte("PK")) {
		return false
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			return true
		}
	}
	return false
}

func hasHTMLRoot(data []byte) bool {
	head := bytes.TrimSpace(data)
	if len(head) > 256 {
		head = head[:256]
	}
	head = bytes.ToLower(head)
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}
