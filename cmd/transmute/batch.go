// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/savagelysubtle/transmute/internal/batch"
	"github.com/savagelysubtle/transmute/internal/gateway"
	"github.com/savagelysubtle/transmute/internal/history"
	"github.com/savagelysubtle/transmute/internal/merge"
	"github.com/savagelysubtle/transmute/internal/progress"
	"github.com/savagelysubtle/transmute/internal/protocol"
	"github.com/savagelysubtle/transmute/internal/scan"
	"github.com/savagelysubtle/transmute/pkg/types"
)

var batchCmd = &cobra.Command{
	Use:   "batch [files...]",
	Short: "Convert many documents concurrently",
	Long: `Batch converts a set of files concurrently through a bounded worker pool.
One file failing does not stop the rest; the summary reports per-file
outcomes. Files can be listed as arguments or discovered with --input-dir.`,
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	conversionType, _ := cmd.Flags().GetString("type")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	workers, _ := cmd.Flags().GetInt("workers")
	porcelain, _ := cmd.Flags().GetBool("porcelain")
	inputDir, _ := cmd.Flags().GetString("input-dir")
	rawOptions, _ := cmd.Flags().GetStringSlice("option")

	options, err := parseOptions(rawOptions)
	if err != nil {
		return err
	}

	inputs := args
	if inputDir != "" {
		found, err := discoverInputs(inputDir, conversionType)
		if err != nil {
			return err
		}
		inputs = append(inputs, found...)
	}

	cfg := appConfig()
	if cmd.Flags().Changed("scan") {
		cfg.Scan.Enabled, _ = cmd.Flags().GetBool("scan")
	}
	if outputDir == "" {
		outputDir = cfg.Conversion.OutputDir
	}
	if outputDir == "" {
		outputDir = "."
	}

	reg, err := newRegistry(cfg)
	if err != nil {
		return err
	}
	tracker := progress.NewTracker(progress.DefaultMaxOperations)
	scanner := scan.New(cfg.Scan.Enabled, cfg.Scan.ClamdAddress)
	executor := batch.NewExecutor(reg, tracker, scanner, cfg.Conversion, os.Stderr)
	emitter := protocol.NewEmitter(protocolWriter(porcelain))
	gw := gateway.New(reg, executor, &merge.PDFMerger{}, emitter)

	var extra types.ProgressCallback
	var bar *progressbar.ProgressBar
	if !porcelain && len(inputs) > 0 {
		bar = progressbar.NewOptions(len(inputs),
			progressbar.OptionSetDescription("converting"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		extra = func(index, total int, input string, success bool, duration float64, errMsg string) {
			bar.Add(1)
		}
	}

	startedAt := time.Now()
	summary, err := gw.ConvertBatch(types.ConversionRequest{
		Type:    conversionType,
		Inputs:  inputs,
		Output:  outputDir,
		Options: options,
	}, workers, extra)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	if cfg.History.Dir != "" {
		if herr := recordBatch(cfg.History.Dir, conversionType, startedAt, summary); herr != nil {
			fmt.Fprintf(os.Stderr, "warning: recording batch history: %v\n", herr)
		}
	}

	if !porcelain {
		printBatchReport(os.Stdout, summary)
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d of %d file(s) failed", summary.Failed, summary.TotalFiles)
	}
	return nil
}

// discoverInputs walks dir collecting files whose extension matches the
// conversion's source format.
func discoverInputs(dir, conversionType string) ([]string, error) {
	ct, err := types.ParseConversionType(conversionType)
	if err != nil {
		return nil, err
	}
	wantExt := batch.ExtensionFor(ct.Source)

	var inputs []string
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), wantExt) {
			inputs = append(inputs, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	return inputs, nil
}

func recordBatch(dir, conversionType string, startedAt time.Time, summary types.BatchSummary) error {
	store, err := history.Open(dir)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Record(context.Background(), conversionType, startedAt, summary)
}

func printBatchReport(w io.Writer, summary types.BatchSummary) {
	for _, r := range summary.Results {
		base := filepath.Base(r.InputPath)
		if r.Success {
			fmt.Fprintf(w, "converted: %s (%.2fs)\n", base, r.Duration)
		} else {
			fmt.Fprintf(w, "failed:  %s (%s)\n", base, r.Error)
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d failed (total: %d, %.2fs)\n",
		summary.Successful, summary.Failed, summary.TotalFiles, summary.TotalTime)
}

func init() {
	batchCmd.Flags().StringP("type", "t", "", "conversion type, e.g. pdf2md (required)")
	batchCmd.Flags().String("output-dir", "", "directory for converted files (default: current directory)")
	batchCmd.Flags().IntP("workers", "w", 0, "worker pool size (0 = configured default)")
	batchCmd.Flags().Bool("scan", false, "scan inputs with clamd before converting")
	batchCmd.Flags().Bool("porcelain", false, "emit machine-readable protocol lines on stdout")
	batchCmd.Flags().String("input-dir", "", "discover input files under this directory")
	batchCmd.Flags().StringSlice("option", nil, "converter option as key=value (repeatable)")
	batchCmd.MarkFlagRequired("type")

	rootCmd.AddCommand(batchCmd)
}
