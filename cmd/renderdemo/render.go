package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"resume-builder/internal/extract"
	"resume-builder/resume/model"
	"resume-builder/resume/preview"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a resume to HTML, DOCX or PDF",
	RunE:  runRender,
}

var (
	renderInput    string
	renderOutput   string
	renderFormat   string
	renderValidate bool
	renderChrome   string
)

func init() {
	renderCmd.Flags().StringVarP(&renderInput, "in", "i", "", "Path to resume JSON (default: built-in sample)")
	renderCmd.Flags().StringVarP(&renderOutput, "out", "o", "./out/resume", "Output path without extension")
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "docx", "Output format: html, docx or pdf")
	renderCmd.Flags().BoolVar(&renderValidate, "validate", false, "Run submit-time validation before rendering")
	renderCmd.Flags().StringVar(&renderChrome, "chrome", "", "Chrome binary for PDF output")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	d, err := loadDraft(renderInput)
	if err != nil {
		return err
	}
	path, err := renderTo(cmd.Context(), d, renderOutput, renderFormat, renderValidate)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "OK: wrote %s\n", path)
	return nil
}

// renderTo writes d to out plus the format's extension and returns the path.
func renderTo(ctx context.Context, d model.Draft, out, format string, validate bool) (string, error) {
	if validate {
		if err := model.Validate(d); err != nil {
			return "", err
		}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	format = strings.ToLower(strings.TrimSpace(format))
	p := preview.Project(d)

	var (
		data []byte
		err  error
	)
	switch format {
	case "html":
		data, err = preview.HTML(p)
	case "docx":
		data, err = preview.RenderDOCX(p)
	case "pdf":
		exporter := &preview.PDFExporter{Timeout: time.Minute, ExecPath: renderChrome}
		data, err = exporter.Export(ctx, p)
	default:
		return "", fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return "", fmt.Errorf("render %s: %w", format, err)
	}
	if err := verifyOutput(ctx, data, format, p.Header.Name); err != nil {
		return "", err
	}

	path := out + "." + format
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// verifyOutput reads the rendered file back and checks the header survived.
func verifyOutput(ctx context.Context, data []byte, format, name string) error {
	lines, err := extract.Text(ctx, data, "", "out."+format)
	if err != nil {
		return fmt.Errorf("verify %s: %w", format, err)
	}
	// PDF text runs lose their spacing, so only check that something came back.
	if format == "pdf" {
		if len(lines) == 0 {
			return fmt.Errorf("verify pdf: no text extracted")
		}
		return nil
	}
	if name != "" && !extract.Contains(lines, name) {
		return fmt.Errorf("verify %s: name %q missing from output", format, name)
	}
	return nil
}
