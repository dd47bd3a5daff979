package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"resume-builder/resume/preview"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the projected resume to the terminal",
	RunE:  runPreview,
}

var (
	previewInput string
	previewWidth int
)

func init() {
	previewCmd.Flags().StringVarP(&previewInput, "in", "i", "", "Path to resume JSON (default: built-in sample)")
	previewCmd.Flags().IntVarP(&previewWidth, "width", "w", 80, "Render width in columns")

	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, _ []string) error {
	d, err := loadDraft(previewInput)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTerminal(preview.Project(d), previewWidth))
	return nil
}

type termStyles struct {
	name    lipgloss.Style
	subtle  lipgloss.Style
	heading lipgloss.Style
	title   lipgloss.Style
	box     lipgloss.Style
}

func newTermStyles(width int) termStyles {
	return termStyles{
		name:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#" + preview.NameColor)),
		subtle:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		heading: lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("#" + preview.HeadingColor)).MarginTop(1),
		title:   lipgloss.NewStyle().Bold(true),
		box:     lipgloss.NewStyle().Width(width).Padding(0, 1).Border(lipgloss.RoundedBorder()),
	}
}

// renderTerminal lays the preview out as styled text.
func renderTerminal(p preview.Preview, width int) string {
	if width < 40 {
		width = 40
	}
	st := newTermStyles(width - 4)

	var lines []string
	header := []string{st.name.Render(strings.ToUpper(p.Header.Name))}
	for _, s := range []string{p.Header.Title, p.Header.Contact, p.Header.Links} {
		if s != "" {
			header = append(header, st.subtle.Render(s))
		}
	}
	lines = append(lines, lipgloss.PlaceHorizontal(width-4, lipgloss.Center, lipgloss.JoinVertical(lipgloss.Center, header...)))

	for _, sec := range p.Sections {
		lines = append(lines, st.heading.Render(sec.Heading))
		if sec.Text != "" {
			lines = append(lines, sec.Text)
		}
		for _, e := range sec.Entries {
			gap := width - 4 - lipgloss.Width(e.Title) - lipgloss.Width(e.Range)
			if gap < 1 {
				gap = 1
			}
			lines = append(lines, st.title.Render(e.Title)+strings.Repeat(" ", gap)+st.subtle.Render(e.Range))
			if e.Subtitle != "" {
				lines = append(lines, st.subtle.Italic(true).Render(e.Subtitle))
			}
			for _, s := range []string{e.Body, e.Detail} {
				if s != "" {
					lines = append(lines, s)
				}
			}
		}
		for _, item := range sec.Items {
			if sec.Kind == preview.SectionLetter {
				lines = append(lines, item, "")
				continue
			}
			lines = append(lines, "• "+item)
		}
	}
	return st.box.Render(strings.Join(lines, "\n"))
}
