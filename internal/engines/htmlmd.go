// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engines

import (
	"fmt"
	"os"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/microcosm-cc/bluemonday"

	"github.com/savagelysubtle/transmute/internal/registry"
)

// htmlMarkdownPlugin converts HTML to Markdown. Input is sanitized first so
// scripts and event handlers in untrusted documents never reach the
// converter or the output.
func htmlMarkdownPlugin() registry.Plugin {
	policy := bluemonday.UGCPolicy()

	return registry.Plugin{
		Source:          "html",
		Target:          "md",
		Name:            "html-markdown",
		Description:     "Convert sanitized HTML to Markdown",
		Version:         version,
		Author:          author,
		Priority:        10,
		SupportsBatch:   true,
		SupportsOptions: true,
		MaxFileSizeMB:   25,
		Convert: func(input, output string, options map[string]any) (string, error) {
			if output == "" {
				output = defaultOutput(input, ".md")
			}
			data, err := os.ReadFile(input)
			if err != nil {
				return "", fmt.Errorf("reading %s: %w", input, err)
			}

			md, err := htmlToMarkdown(policy, data)
			if err != nil {
				return "", fmt.Errorf("converting %s: %w", input, err)
			}

			if err := os.WriteFile(output, []byte(md), 0o644); err != nil {
				return "", fmt.Errorf("writing %s: %w", output, err)
			}
			return output, nil
		},
	}
}

func htmlToMarkdown(policy *bluemonday.Policy, html []byte) (string, error) {
	clean := policy.SanitizeBytes(html)
	return htmltomarkdown.ConvertString(string(clean))
}
