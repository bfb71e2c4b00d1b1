// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engines

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/savagelysubtle/transmute/internal/registry"
	"github.com/savagelysubtle/transmute/pkg/types"
)

// textMarkdownPlugin wraps plain text in a minimal Markdown document: a
// title heading derived from the filename, then the content verbatim.
func textMarkdownPlugin() registry.Plugin {
	return registry.Plugin{
		Source:          "txt",
		Target:          "md",
		Name:            "text-markdown",
		Description:     "Wrap plain text as Markdown",
		Version:         version,
		Author:          author,
		Priority:        10,
		SupportsBatch:   true,
		SupportsOptions: true,
		MaxFileSizeMB:   50,
		Convert: func(input, output string, options map[string]any) (string, error) {
			if output == "" {
				output = defaultOutput(input, ".md")
			}
			data, err := os.ReadFile(input)
			if err != nil {
				return "", fmt.Errorf("reading %s: %w", input, err)
			}

			title := optString(options, types.OptionTitle)
			if title == "" {
				base := filepath.Base(input)
				title = strings.TrimSuffix(base, filepath.Ext(base))
			}

			var b strings.Builder
			fmt.Fprintf(&b, "# %s\n\n", title)
			b.Write(data)
			if !strings.HasSuffix(b.String(), "\n") {
				b.WriteString("\n")
			}

			if err := os.WriteFile(output, []byte(b.String()), 0o644); err != nil {
				return "", fmt.Errorf("writing %s: %w", output, err)
			}
			return output, nil
		},
	}
}
