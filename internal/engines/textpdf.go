// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engines

import (
	"fmt"
	"os"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/savagelysubtle/transmute/internal/registry"
	"github.com/savagelysubtle/transmute/pkg/types"
)

// textPDFPlugin renders Markdown or plain text to PDF with gofpdf. Markdown
// headings get larger bold type; everything else flows as body text.
func textPDFPlugin(source, description string) registry.Plugin {
	return registry.Plugin{
		Source:          source,
		Target:          "pdf",
		Name:            source + "-pdf-renderer",
		Description:     description,
		Version:         version,
		Author:          author,
		Priority:        10,
		SupportsBatch:   true,
		SupportsOptions: true,
		MaxFileSizeMB:   50,
		Convert: func(input, output string, options map[string]any) (string, error) {
			if output == "" {
				output = defaultOutput(input, ".pdf")
			}
			data, err := os.ReadFile(input)
			if err != nil {
				return "", fmt.Errorf("reading %s: %w", input, err)
			}
			if err := renderTextPDF(string(data), output, options); err != nil {
				return "", err
			}
			return output, nil
		},
	}
}

func renderTextPDF(content, output string, options map[string]any) error {
	orientation := "P"
	if optBool(options, types.OptionLandscape) {
		orientation = "L"
	}

	pdf := gofpdf.New(orientation, "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	if title := optString(options, types.OptionTitle); title != "" {
		pdf.SetTitle(title, true)
	}

	for _, line := range strings.Split(content, "\n") {
		level, text := headingLevel(line)
		switch {
		case level > 0:
			size := 18.0 - 2*float64(level-1)
			if size < 12 {
				size = 12
			}
			pdf.SetFont("Helvetica", "B", size)
			pdf.MultiCell(0, size/2, tr(text), "", "L", false)
			pdf.Ln(2)
		case strings.TrimSpace(line) == "":
			pdf.Ln(4)
		default:
			pdf.SetFont("Helvetica", "", 11)
			pdf.MultiCell(0, 5.5, tr(line), "", "L", false)
		}
	}

	if err := pdf.OutputFileAndClose(output); err != nil {
		return fmt.Errorf("writing PDF %s: %w", output, err)
	}
	return nil
}

// headingLevel parses a Markdown ATX heading. Returns 0 for non-headings.
func headingLevel(line string) (int, string) {
	trimmed := strings.TrimLeft(line, "#")
	level := len(line) - len(trimmed)
	if level == 0 || level > 6 || !strings.HasPrefix(trimmed, " ") {
		return 0, line
	}
	return level, strings.TrimSpace(trimmed)
}
