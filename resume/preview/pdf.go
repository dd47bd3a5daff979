package preview

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// PDFExporter prints the HTML preview to PDF through headless Chrome.
// Requires Chrome/Chromium to be installed on the system.
type PDFExporter struct {
	Timeout time.Duration
	// ExecPath overrides the browser binary. Empty uses chromedp's lookup.
	ExecPath string
}

// NewPDFExporter returns an exporter with a 30 second timeout.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{Timeout: 30 * time.Second}
}

// Export renders p to HTML and prints it to PDF.
func (e *PDFExporter) Export(ctx context.Context, p Preview) ([]byte, error) {
	html, err := HTML(p)
	if err != nil {
		return nil, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if e.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(e.ExecPath))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.5).
				WithPaperHeight(11).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("pdf rendering failed: %w", err)
	}
	return pdf, nil
}
