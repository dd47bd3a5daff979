package util

import (
	"errors"
	"strings"
	"unicode"
)

// ErrInvalidFileName is returned for names that are empty or try to traverse directories.
var ErrInvalidFileName = errors.New("invalid file name")

const maxFileNameRunes = 120

// SanitizeFileName turns a document label such as "Staff Engineer at Acme.docx"
// into a name safe for a storage key and a Content-Disposition header.
// Separators, reserved and control characters become "_", runs of spaces
// collapse, and the stem is cut so the extension survives.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	var b strings.Builder
	lastSpace := false
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
			}
			lastSpace = true
		case strings.ContainsRune(`/\<>:"|?*`, r) || unicode.IsControl(r):
			b.WriteRune('_')
			lastSpace = false
		default:
			b.WriteRune(r)
			lastSpace = false
		}
	}
	s := strings.Trim(b.String(), " .")
	if s == "" || strings.Trim(s, "_") == "" {
		return "", ErrInvalidFileName
	}
	return truncateStem(s, maxFileNameRunes), nil
}

func truncateStem(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	ext := ""
	if i := strings.LastIndexByte(s, '.'); i > 0 && len(s)-i <= 6 {
		ext = s[i:]
	}
	stem := []rune(strings.TrimSuffix(s, ext))
	keep := limit - len([]rune(ext))
	if keep > len(stem) {
		keep = len(stem)
	}
	return strings.TrimRight(string(stem[:keep]), " .") + ext
}
