// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engines

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/savagelysubtle/transmute/internal/container"
	"github.com/savagelysubtle/transmute/internal/registry"
	"github.com/savagelysubtle/transmute/pkg/types"
)

const defaultMarkitdownImage = "markitdown:latest"

// markitdownPlugin converts PDF to Markdown by piping the document through
// the markitdown container image. The runtime is detected lazily at call
// time so registration succeeds on hosts without docker or podman.
func markitdownPlugin(cfg types.EngineConfig) registry.Plugin {
	image := cfg.MarkitdownImage
	if image == "" {
		image = defaultMarkitdownImage
	}

	return registry.Plugin{
		Source:          "pdf",
		Target:          "md",
		Name:            "markitdown",
		Description:     "Convert PDF to Markdown via the markitdown container",
		Version:         version,
		Author:          author,
		Priority:        10,
		SupportsBatch:   true,
		SupportsOptions: true,
		MaxFileSizeMB:   200,
		Convert: func(input, output string, options map[string]any) (string, error) {
			if output == "" {
				output = defaultOutput(input, ".md")
			}

			ctx := context.Background()
			rt, err := container.Detect(ctx)
			if err != nil {
				return "", err
			}
			if err := rt.HasImage(ctx, image); err != nil {
				return "", err
			}

			f, err := os.Open(input)
			if err != nil {
				return "", fmt.Errorf("opening %s: %w", input, err)
			}
			defer f.Close()

			var out bytes.Buffer
			if err := rt.Run(ctx, image, f, &out); err != nil {
				return "", fmt.Errorf("converting %s with markitdown: %w", input, err)
			}
			if out.Len() == 0 {
				return "", fmt.Errorf("markitdown produced empty output for %s", input)
			}

			if err := os.WriteFile(output, out.Bytes(), 0o644); err != nil {
				return "", fmt.Errorf("writing %s: %w", output, err)
			}
			return output, nil
		},
	}
}
