// Package preview projects a draft into a read-only representation and
// renders it as HTML, DOCX or PDF. Every writer consumes the same Preview so
// the exported file carries exactly the sections shown live.
package preview

import (
	"strings"
	"time"

	"resume-builder/resume/model"
)

// SectionKind identifies one preview section.
type SectionKind string

const (
	SectionSummary        SectionKind = "summary"
	SectionExperience     SectionKind = "experience"
	SectionEducation      SectionKind = "education"
	SectionSkills         SectionKind = "skills"
	SectionCertifications SectionKind = "certifications"
	SectionLetter         SectionKind = "letter"
)

// Headings shown for each section.
var Headings = map[SectionKind]string{
	SectionSummary:        "Professional Summary",
	SectionExperience:     "Experience",
	SectionEducation:      "Education",
	SectionSkills:         "Skills",
	SectionCertifications: "Certifications",
	SectionLetter:         "Letter",
}

// Header is the top block of the document.
type Header struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Contact string `json:"contact"`
	Links   string `json:"links"`
}

// Entry is one experience or education item.
type Entry struct {
	Title    string `json:"title"`
	Range    string `json:"range"`
	Subtitle string `json:"subtitle"`
	Body     string `json:"body,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// Section is one titled block. Depending on the kind it carries free text,
// entries or a bullet list.
type Section struct {
	Kind    SectionKind `json:"kind"`
	Heading string      `json:"heading"`
	Text    string      `json:"text,omitempty"`
	Entries []Entry     `json:"entries,omitempty"`
	Items   []string    `json:"items,omitempty"`
}

// Preview is the projected document.
type Preview struct {
	Header   Header    `json:"header"`
	Sections []Section `json:"sections"`
}

// SectionKinds lists the section kinds in display order.
func (p Preview) SectionKinds() []SectionKind {
	out := make([]SectionKind, len(p.Sections))
	for i, s := range p.Sections {
		out[i] = s.Kind
	}
	return out
}

// Has reports whether a section of kind k is present.
func (p Preview) Has(k SectionKind) bool {
	for _, s := range p.Sections {
		if s.Kind == k {
			return true
		}
	}
	return false
}

// Project maps a draft to its preview. It never modifies d.
func Project(d model.Draft) Preview {
	info := d.PersonalInfo
	p := Preview{
		Header: Header{
			Name:    info.Name,
			Title:   d.Title,
			Contact: joinNonEmpty(" • ", info.Phone, place(info.Location), info.Email),
			Links:   joinNonEmpty(" • ", info.LinkedIn, info.Website),
		},
	}

	if strings.TrimSpace(d.Summary) != "" {
		p.Sections = append(p.Sections, Section{
			Kind:    SectionSummary,
			Heading: Headings[SectionSummary],
			Text:    d.Summary,
		})
	}

	experience := Section{Kind: SectionExperience, Heading: Headings[SectionExperience]}
	for _, e := range d.WorkExperience {
		experience.Entries = append(experience.Entries, Entry{
			Title:    e.Position,
			Range:    DateRange(e.StartDate, e.EndDate, e.IsCurrent),
			Subtitle: joinNonEmpty(" - ", e.CompanyName, place(e.Location)),
			Body:     e.Description,
		})
	}
	p.Sections = append(p.Sections, experience)

	education := Section{Kind: SectionEducation, Heading: Headings[SectionEducation]}
	for _, e := range d.Education {
		entry := Entry{
			Title:    e.Degree,
			Range:    DateRange(e.StartDate, e.EndDate, e.IsCurrent),
			Subtitle: joinNonEmpty(" - ", e.Institution, place(e.Location)),
		}
		if e.FieldOfStudy != "" {
			entry.Body = e.FieldOfStudy
		}
		if e.GPA != "" {
			entry.Detail = "GPA: " + e.GPA
		}
		education.Entries = append(education.Entries, entry)
	}
	p.Sections = append(p.Sections, education)

	if skills := nonBlank(d.Skills); len(skills) > 0 {
		p.Sections = append(p.Sections, Section{
			Kind:    SectionSkills,
			Heading: Headings[SectionSkills],
			Items:   skills,
		})
	}

	var certs []string
	for _, c := range d.Certifications {
		if strings.TrimSpace(c.Name) != "" {
			certs = append(certs, c.Name)
		}
	}
	if len(certs) > 0 {
		p.Sections = append(p.Sections, Section{
			Kind:    SectionCertifications,
			Heading: Headings[SectionCertifications],
			Items:   certs,
		})
	}
	return p
}

var dateLayouts = []string{"2006-01-02", "2006-01", time.RFC3339, "2006-01-02T15:04:05.000Z07:00"}

// FormatMonthYear renders a stored date as "Jan 2021". Empty or unparseable
// input yields "".
func FormatMonthYear(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("Jan 2006")
		}
	}
	return ""
}

// DateRange renders "start - end", with "Present" as the end for current
// entries. A missing end date leaves the end blank.
func DateRange(start, end string, current bool) string {
	to := FormatMonthYear(end)
	if current {
		to = "Present"
	}
	return FormatMonthYear(start) + " - " + to
}

func place(loc model.Location) string {
	return joinNonEmpty(", ", loc.City, loc.Country)
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func nonBlank(items []string) []string {
	var out []string
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
