// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the transmute CLI, a document format
// conversion tool. Format-specific work is delegated to converter engines;
// the CLI surface wires the registry, batch executor, and gateway together.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/savagelysubtle/transmute/internal/engines"
	"github.com/savagelysubtle/transmute/internal/registry"
	"github.com/savagelysubtle/transmute/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Exit codes at the process boundary.
const (
	exitOK         = 0
	exitFailure    = 1
	exitBadRequest = 2
)

// rootCmd is the base command for the transmute CLI.
var rootCmd = &cobra.Command{
	Use:   "transmute",
	Short: "Convert documents between formats",
	Long: `transmute converts documents between formats (PDF, Markdown, HTML, EML,
plain text) through a registry of converter plugins. Single files, concurrent
batches, and PDF merges are separate subcommands; --porcelain switches output
to the tagged line protocol consumed by the desktop UI.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./transmute.yaml or ~/.config/transmute/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("transmute")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "transmute"))
		}
	}

	viper.SetEnvPrefix("TRANSMUTE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// appConfig resolves configuration from viper with defaults.
func appConfig() types.AppConfig {
	cfg := types.AppConfig{
		Conversion: types.ConversionConfig{
			MaxWorkers: viper.GetInt("conversion.max_workers"),
			OutputDir:  viper.GetString("conversion.output_dir"),
		},
		Engines: types.EngineConfig{
			MarkitdownImage: viper.GetString("engines.markitdown_image"),
			OCRBinary:       viper.GetString("engines.ocr_binary"),
			RenderTimeout:   viper.GetDuration("engines.render_timeout"),
		},
		Scan: types.ScanConfig{
			Enabled:      viper.GetBool("scan.enabled"),
			ClamdAddress: viper.GetString("scan.clamd_address"),
		},
		History: types.HistoryConfig{
			Dir: viper.GetString("history.dir"),
		},
	}
	if cfg.Conversion.MaxWorkers < 1 {
		cfg.Conversion.MaxWorkers = 4
	}
	if cfg.Engines.RenderTimeout <= 0 {
		cfg.Engines.RenderTimeout = 30 * time.Second
	}
	return cfg
}

// newRegistry builds the plugin catalog. Engine registration is the one
// explicit discovery step; nothing registers itself on import.
func newRegistry(cfg types.AppConfig) (*registry.Registry, error) {
	reg := registry.New()
	if err := engines.RegisterAll(reg, cfg.Engines); err != nil {
		return nil, err
	}
	return reg, nil
}

// exitCode classifies an error for the process boundary: rejected requests
// exit 2, everything else 1.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ve *types.ValidationError
	if errors.As(err, &ve) {
		return exitBadRequest
	}
	return exitFailure
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}
