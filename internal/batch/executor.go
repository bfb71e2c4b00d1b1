// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch runs many independent conversion jobs across a bounded
// worker pool with per-file failure isolation. The only cross-file
// guarantees are the count invariant (total = successful + failed) and the
// final sort of results by input path.
package batch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/savagelysubtle/transmute/internal/progress"
	"github.com/savagelysubtle/transmute/internal/registry"
	"github.com/savagelysubtle/transmute/internal/scan"
	"github.com/savagelysubtle/transmute/pkg/types"
)

// defaultMaxWorkers bounds the pool when neither the caller nor the
// configuration names a size.
const defaultMaxWorkers = 4

// editableTarget is the target format of OCR-adding conversions, the only
// conversions eligible for the forced-OCR retry.
const editableTarget = "editable"

// Executor schedules batch conversions. The registry is read-only during
// execution; the tracker is the only shared mutable state and guards itself.
type Executor struct {
	registry   *registry.Registry
	tracker    *progress.Tracker
	scanner    *scan.Scanner
	maxWorkers int
	warnw      io.Writer
}

// NewExecutor builds an executor. tracker may be nil to skip bookkeeping,
// scanner may be nil or disabled to skip input screening, and warnw receives
// non-fatal notices (nil discards them).
func NewExecutor(reg *registry.Registry, tracker *progress.Tracker, scanner *scan.Scanner, cfg types.ConversionConfig, warnw io.Writer) *Executor {
	workers := cfg.MaxWorkers
	if workers < 1 {
		workers = defaultMaxWorkers
	}
	if warnw == nil {
		warnw = io.Discard
	}
	return &Executor{
		registry:   reg,
		tracker:    tracker,
		scanner:    scanner,
		maxWorkers: workers,
		warnw:      warnw,
	}
}

// RunBatch converts all input files with the preferred plugin for
// conversionType. Validation failures (malformed type, no plugin) abort
// before any worker starts or file is touched; everything after that is
// absorbed per file into the summary. callback fires after each file in
// completion order; maxWorkers <= 0 uses the configured default.
func (e *Executor) RunBatch(conversionType string, inputFiles []string, outputDir string, maxWorkers int, callback types.ProgressCallback, options map[string]any) (types.BatchSummary, error) {
	start := time.Now()

	ct, err := types.ParseConversionType(conversionType)
	if err != nil {
		return types.BatchSummary{}, err
	}

	plugin := e.registry.Converter(ct.Source, ct.Target)
	if plugin == nil {
		return types.BatchSummary{}, &types.InfrastructureError{
			Reason: fmt.Sprintf("no converter registered for %s; available conversions: %s",
				conversionType, strings.Join(e.registry.Pairs(), ", ")),
		}
	}

	workers := maxWorkers
	if workers < 1 {
		workers = e.maxWorkers
	}
	if workers > len(inputFiles) && len(inputFiles) > 0 {
		workers = len(inputFiles)
	}

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return types.BatchSummary{}, &types.InfrastructureError{
				Reason: fmt.Sprintf("creating output directory %s: %v", outputDir, err),
			}
		}
	}

	opID := ""
	if e.tracker != nil {
		opID = e.tracker.StartOperation("batch "+conversionType, len(inputFiles),
			map[string]string{"conversion_type": conversionType})
	}

	tasks := make(chan string)
	results := make(chan types.ConversionResult)

	for i := 0; i < workers; i++ {
		go func() {
			for input := range tasks {
				results <- e.convertOne(plugin, input, outputDir, options)
			}
		}()
	}

	go func() {
		for _, input := range inputFiles {
			tasks <- input
		}
		close(tasks)
	}()

	summary := types.BatchSummary{TotalFiles: len(inputFiles)}
	for done := 0; done < len(inputFiles); done++ {
		res := <-results
		if res.Success {
			summary.Successful++
		} else {
			summary.Failed++
		}
		summary.Results = append(summary.Results, res)

		if e.tracker != nil {
			e.tracker.UpdateProgress(opID, done+1, filepath.Base(res.InputPath))
		}
		e.fireCallback(callback, done+1, len(inputFiles), res)
	}

	sort.Slice(summary.Results, func(i, j int) bool {
		return summary.Results[i].InputPath < summary.Results[j].InputPath
	})
	summary.TotalTime = time.Since(start).Seconds()

	if e.tracker != nil {
		errMsg := ""
		if summary.Failed > 0 {
			errMsg = fmt.Sprintf("%d of %d files failed", summary.Failed, summary.TotalFiles)
		}
		e.tracker.CompleteOperation(opID, summary.Failed == 0, errMsg)
	}

	return summary, nil
}

// convertOne converts a single file, absorbing every failure into the
// result. The forced-OCR retry runs synchronously in the same worker.
func (e *Executor) convertOne(plugin *registry.Plugin, input, outputDir string, options map[string]any) types.ConversionResult {
	start := time.Now()

	outPath := ""
	if outputDir != "" {
		outPath = filepath.Join(outputDir, outputName(input, plugin.Target))
	}
	res := types.ConversionResult{InputPath: input, OutputPath: outPath}

	if _, err := os.Stat(input); err != nil {
		res.Duration = time.Since(start).Seconds()
		res.Error = fmt.Sprintf("input file missing: %v", err)
		return res
	}

	if e.scanner.Enabled() {
		scanRes, err := e.scanner.ScanFile(input)
		if err != nil {
			res.Duration = time.Since(start).Seconds()
			res.Error = fmt.Sprintf("virus scan failed: %v", err)
			return res
		}
		if scanRes.Infected {
			res.Duration = time.Since(start).Seconds()
			res.Error = "threat detected: " + scanRes.ThreatSummary()
			return res
		}
	}

	written, err := plugin.Convert(input, outPath, options)
	if err != nil && plugin.Target == editableTarget && types.IsPriorText(err) {
		retryOpts := make(map[string]any, len(options)+1)
		for k, v := range options {
			retryOpts[k] = v
		}
		retryOpts[types.OptionForceOCR] = true
		written, err = plugin.Convert(input, outPath, retryOpts)
	}

	res.Duration = time.Since(start).Seconds()
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.Success = true
	res.OutputPath = written
	return res
}

// fireCallback invokes the caller-supplied callback, containing any panic so
// a misbehaving observer cannot abort the batch.
func (e *Executor) fireCallback(cb types.ProgressCallback, index, total int, res types.ConversionResult) {
	if cb == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(e.warnw, "warning: progress callback panicked on %s: %v\n", res.InputPath, r)
		}
	}()
	cb(index, total, res.InputPath, res.Success, res.Duration, res.Error)
}

// outputName swaps the input's extension for the target format's. The
// "editable" target keeps PDF, since editable output is still a PDF file.
func outputName(input, target string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return base + ExtensionFor(target)
}

// ExtensionFor maps a target format name to an output file extension.
func ExtensionFor(target string) string {
	switch target {
	case "md", "markdown":
		return ".md"
	case "pdf", editableTarget:
		return ".pdf"
	case "txt", "text":
		return ".txt"
	case "html":
		return ".html"
	default:
		return "." + target
	}
}
