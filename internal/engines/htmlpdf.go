// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engines

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/savagelysubtle/transmute/internal/registry"
	"github.com/savagelysubtle/transmute/pkg/types"
)

const defaultRenderTimeout = 30 * time.Second

// htmlPDFPlugin prints an HTML document to PDF through headless Chrome.
func htmlPDFPlugin(cfg types.EngineConfig) registry.Plugin {
	timeout := cfg.RenderTimeout
	if timeout <= 0 {
		timeout = defaultRenderTimeout
	}

	return registry.Plugin{
		Source:          "html",
		Target:          "pdf",
		Name:            "chrome-pdf-printer",
		Description:     "Render HTML to PDF with headless Chrome",
		Version:         version,
		Author:          author,
		Priority:        10,
		SupportsBatch:   true,
		SupportsOptions: true,
		MaxFileSizeMB:   25,
		Convert: func(input, output string, options map[string]any) (string, error) {
			if output == "" {
				output = defaultOutput(input, ".pdf")
			}
			if err := printHTMLToPDF(input, output, timeout, optBool(options, types.OptionLandscape)); err != nil {
				return "", err
			}
			return output, nil
		},
	}
}

func printHTMLToPDF(input, output string, timeout time.Duration, landscape bool) error {
	abs, err := filepath.Abs(input)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", input, err)
	}
	fileURL := "file://" + abs

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	taskCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	var pdfData []byte
	err = chromedp.Run(taskCtx,
		chromedp.Navigate(fileURL),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithLandscape(landscape).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfData = data
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", input, err)
	}

	if err := os.WriteFile(output, pdfData, 0o644); err != nil {
		return fmt.Errorf("writing PDF %s: %w", output, err)
	}
	return nil
}
