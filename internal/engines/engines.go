// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engines provides the built-in converter plugins and registers
// them explicitly at startup. Each engine is glue around an external
// library or tool; the orchestration layer treats them all as opaque
// ConvertFuncs. Engines whose collaborator is unavailable (container
// runtime, ocrmypdf binary) still register and fail per file at call time.
package engines

import (
	"path/filepath"
	"strings"

	"github.com/savagelysubtle/transmute/internal/registry"
	"github.com/savagelysubtle/transmute/pkg/types"
)

const (
	author  = "transmute"
	version = "1.2.0"
)

// RegisterAll registers every built-in plugin with reg.
func RegisterAll(reg *registry.Registry, cfg types.EngineConfig) error {
	plugins := []registry.Plugin{
		textPDFPlugin("md", "Render Markdown to PDF"),
		textPDFPlugin("txt", "Render plain text to PDF"),
		htmlPDFPlugin(cfg),
		htmlMarkdownPlugin(),
		emlMarkdownPlugin(),
		markitdownPlugin(cfg),
		ocrPlugin(cfg),
		textMarkdownPlugin(),
	}
	for _, p := range plugins {
		if err := reg.Register(p); err != nil {
			return err
		}
	}
	return nil
}

// defaultOutput places output next to the input with ext; when that would
// overwrite the input itself, a suffix keeps them apart.
func defaultOutput(input, ext string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	out := base + ext
	if out == input {
		out = base + "-converted" + ext
	}
	return out
}

// optBool reads a boolean option, tolerating absent or differently-typed
// values per the converter option convention.
func optBool(options map[string]any, key string) bool {
	v, _ := options[key].(bool)
	return v
}

// optString reads a string option, empty when absent.
func optString(options map[string]any, key string) string {
	v, _ := options[key].(string)
	return v
}
