// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engines

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/savagelysubtle/transmute/internal/registry"
	"github.com/savagelysubtle/transmute/pkg/types"
)

const defaultOCRBinary = "ocrmypdf"

// exitPriorOcrFound is ocrmypdf's exit code for "this document already has
// a text layer". The batch executor retries that case once with force_ocr.
const exitPriorOcrFound = 6

// ocrPlugin turns a scanned PDF into an editable (searchable) PDF by
// running ocrmypdf. This is the producer of the typed prior-text signal.
func ocrPlugin(cfg types.EngineConfig) registry.Plugin {
	bin := cfg.OCRBinary
	if bin == "" {
		bin = defaultOCRBinary
	}

	return registry.Plugin{
		Source:          "pdf",
		Target:          "editable",
		Name:            "ocrmypdf",
		Description:     "Add an OCR text layer to a PDF",
		Version:         version,
		Author:          author,
		Priority:        10,
		SupportsBatch:   true,
		SupportsOptions: true,
		MaxFileSizeMB:   500,
		Convert: func(input, output string, options map[string]any) (string, error) {
			if output == "" {
				output = defaultOutput(input, ".pdf")
			}

			args := []string{"--output-type", "pdf"}
			if optBool(options, types.OptionForceOCR) {
				args = append(args, "--force-ocr")
			}
			if lang := optString(options, "language"); lang != "" {
				args = append(args, "--language", lang)
			}
			args = append(args, input, output)

			var stderr bytes.Buffer
			cmd := exec.Command(bin, args...)
			cmd.Stderr = &stderr

			if err := cmd.Run(); err != nil {
				return "", classifyOCRError(err, input, stderr.String())
			}
			return output, nil
		},
	}
}

// classifyOCRError maps ocrmypdf failures onto the error taxonomy. The
// prior-text condition is identified by exit code, not by grepping the
// tool's message text.
func classifyOCRError(err error, input, stderr string) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == exitPriorOcrFound {
		return &types.PriorTextError{Path: input}
	}

	detail := strings.TrimSpace(stderr)
	if detail != "" {
		return fmt.Errorf("ocr of %s failed: %w: %s", input, err, firstLine(detail))
	}
	return fmt.Errorf("ocr of %s failed: %w", input, err)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
