// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge combines PDF documents with pdfcpu.
package merge

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PDFMerger merges N PDFs into one file. It satisfies the gateway's Merger
// interface; the gateway owns input-count and existence validation.
type PDFMerger struct{}

// Merge writes the concatenation of inputs, in order, to output.
func (PDFMerger) Merge(inputs []string, output string) error {
	if err := api.MergeCreateFile(inputs, output, false, nil); err != nil {
		return fmt.Errorf("pdfcpu merge into %s: %w", output, err)
	}
	return nil
}
