package preview

import (
	"strings"
	"time"

	"resume-builder/resume/model"
)

// ProjectCoverLetter maps a cover letter to a preview with a single letter
// section holding one item per paragraph of content.
func ProjectCoverLetter(c model.CoverLetter) Preview {
	p := Preview{
		Header: Header{
			Name:    joinNonEmpty(" - ", c.JobTitle, c.CompanyName),
			Title:   recipientLine(c.RecipientName),
			Contact: formatLongDate(c.ApplicationDate),
		},
	}
	if paragraphs := Paragraphs(c.Content); len(paragraphs) > 0 {
		p.Sections = append(p.Sections, Section{
			Kind:    SectionLetter,
			Heading: Headings[SectionLetter],
			Items:   paragraphs,
		})
	}
	return p
}

// Paragraphs splits text on blank lines, trimming each paragraph.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, block := range strings.Split(text, "\n\n") {
		if block = strings.TrimSpace(block); block != "" {
			out = append(out, block)
		}
	}
	return out
}

func recipientLine(name string) string {
	if strings.TrimSpace(name) == "" {
		return ""
	}
	return "Dear " + name + ","
}

func formatLongDate(s string) string {
	if t, err := time.Parse("2006-01-02", strings.TrimSpace(s)); err == nil {
		return t.Format("January 2, 2006")
	}
	return FormatMonthYear(s)
}
