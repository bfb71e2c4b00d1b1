// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the data model shared across the conversion pipeline:
// conversion requests and results, batch summaries, the error taxonomy, and
// stage configuration.
package types

import (
	"fmt"
	"strings"
)

// Option keys recognized by converter plugins. Converters ignore keys they
// do not understand.
const (
	// OptionForceOCR forces re-OCR of a document that already has a text
	// layer. Set by the batch executor on its structural retry.
	OptionForceOCR = "force_ocr"

	// OptionTitle overrides the document title in generated output.
	OptionTitle = "title"

	// OptionLandscape selects landscape page orientation for PDF output.
	OptionLandscape = "landscape"
)

// ConversionType is a parsed "src2tgt" pair, e.g. "pdf2md" or "html2pdf".
type ConversionType struct {
	Source string
	Target string
}

// ParseConversionType splits s on the first "2". Both sides must be
// non-empty; anything else is a ValidationError.
func ParseConversionType(s string) (ConversionType, error) {
	src, tgt, ok := strings.Cut(s, "2")
	if !ok || src == "" || tgt == "" {
		return ConversionType{}, Validationf(
			"invalid conversion type %q: expected \"src2tgt\", e.g. \"pdf2md\"", s)
	}
	return ConversionType{Source: strings.ToLower(src), Target: strings.ToLower(tgt)}, nil
}

func (c ConversionType) String() string {
	return fmt.Sprintf("%s2%s", c.Source, c.Target)
}

// ConversionRequest is one external request: a single conversion, a batch,
// or an N-ary merge. Created per invocation and discarded after use.
type ConversionRequest struct {
	// Type is the raw "src2tgt" conversion type string.
	Type string

	// Inputs holds the input file paths (one for single, N for batch/merge).
	Inputs []string

	// Output is the output file for single/merge, or the output directory
	// for batch. Empty lets converters apply their default.
	Output string

	// Options are converter-specific settings passed through verbatim.
	Options map[string]any
}

// ConversionResult is the outcome of one file's conversion within a batch.
type ConversionResult struct {
	InputPath  string  `json:"input_path" yaml:"input_path"`
	OutputPath string  `json:"output_path" yaml:"output_path"`
	Success    bool    `json:"success" yaml:"success"`
	Duration   float64 `json:"duration" yaml:"duration"` // seconds
	Error      string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// BatchSummary aggregates the results of one batch run. TotalFiles always
// equals Successful + Failed, and Results is sorted by input path so output
// is deterministic regardless of completion order.
type BatchSummary struct {
	TotalFiles int                `json:"total_files"`
	Successful int                `json:"successful"`
	Failed     int                `json:"failed"`
	TotalTime  float64            `json:"total_time"` // seconds
	Results    []ConversionResult `json:"results"`
}

// HasFailures reports whether any file in the batch failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// ProgressCallback is invoked by the batch executor after each file
// finishes, in completion order. index counts finished files starting at 1.
// errMsg is empty on success. A panicking callback is contained by the
// executor and never affects the batch outcome.
type ProgressCallback func(index, total int, inputPath string, success bool, duration float64, errMsg string)
