// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConversionConfig holds settings for batch execution.
type ConversionConfig struct {
	// MaxWorkers bounds the batch worker pool (default 4).
	MaxWorkers int `json:"max_workers" yaml:"max_workers"`

	// OutputDir is the default directory for converted output. Empty lets
	// each converter place output next to its input.
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// EngineConfig holds settings for the built-in converter engines.
type EngineConfig struct {
	// MarkitdownImage is the container image used for PDF-to-Markdown
	// conversion (default "markitdown:latest").
	MarkitdownImage string `json:"markitdown_image" yaml:"markitdown_image"`

	// OCRBinary is the ocrmypdf executable used for editable-PDF
	// conversion (default "ocrmypdf").
	OCRBinary string `json:"ocr_binary" yaml:"ocr_binary"`

	// RenderTimeout bounds a single headless-browser render (default 30s).
	RenderTimeout time.Duration `json:"render_timeout" yaml:"render_timeout"`
}

// ScanConfig holds settings for optional ClamAV input scanning.
type ScanConfig struct {
	// Enabled switches pre-conversion virus scanning on.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// ClamdAddress is the clamd daemon address (default "localhost:3310").
	ClamdAddress string `json:"clamd_address" yaml:"clamd_address"`
}

// HistoryConfig holds settings for the batch history store.
type HistoryConfig struct {
	// Dir is the directory holding the history database. Empty disables
	// history recording.
	Dir string `json:"dir" yaml:"dir"`
}

// AppConfig groups all stage configurations.
type AppConfig struct {
	Conversion ConversionConfig `json:"conversion" yaml:"conversion"`
	Engines    EngineConfig     `json:"engines" yaml:"engines"`
	Scan       ScanConfig       `json:"scan" yaml:"scan"`
	History    HistoryConfig    `json:"history" yaml:"history"`
}
