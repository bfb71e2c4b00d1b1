// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gateway is the single entry point translating external requests
// (single conversion, batch, merge) into registry lookups and executor
// calls, mirroring every outcome onto the protocol stream. All request
// validation happens before any conversion attempt.
package gateway

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/savagelysubtle/transmute/internal/batch"
	"github.com/savagelysubtle/transmute/internal/protocol"
	"github.com/savagelysubtle/transmute/internal/registry"
	"github.com/savagelysubtle/transmute/pkg/types"
)

// Merger combines N PDF inputs into one output document. The concrete
// implementation lives in internal/merge.
type Merger interface {
	Merge(inputs []string, output string) error
}

// Gateway routes requests to the registry, executor, and merger.
type Gateway struct {
	registry *registry.Registry
	executor *batch.Executor
	merger   Merger
	emit     *protocol.Emitter
}

// New builds a gateway emitting protocol lines through emit.
func New(reg *registry.Registry, exec *batch.Executor, merger Merger, emit *protocol.Emitter) *Gateway {
	return &Gateway{registry: reg, executor: exec, merger: merger, emit: emit}
}

// ConvertSingle runs one conversion on the calling goroutine and returns
// the written output path. Converter failures are reported on the stream as
// a terminal ERROR and then propagated.
func (g *Gateway) ConvertSingle(req types.ConversionRequest) (string, error) {
	if len(req.Inputs) != 1 {
		err := types.Validationf("single conversion takes exactly one input file, got %d", len(req.Inputs))
		g.emit.Error(err, "single_error")
		return "", err
	}
	input := req.Inputs[0]

	if _, err := os.Stat(input); err != nil {
		verr := types.Validationf("input file %s: %v", input, err)
		g.emit.Error(verr, "single_error")
		return "", verr
	}

	ct, err := types.ParseConversionType(req.Type)
	if err != nil {
		g.emit.Error(err, "single_error")
		return "", err
	}

	plugin := g.registry.Converter(ct.Source, ct.Target)
	if plugin == nil {
		ierr := &types.InfrastructureError{
			Reason: fmt.Sprintf("no converter registered for %s; available conversions: %s",
				req.Type, strings.Join(g.registry.Pairs(), ", ")),
		}
		g.emit.Error(ierr, "single_error")
		return "", ierr
	}

	base := filepath.Base(input)
	g.emit.Progress(protocol.Progress{
		Current: 0, Total: 1,
		Message:  fmt.Sprintf("converting %s with %s", base, plugin.Name),
		Type:     "single_progress",
		Filename: base,
	})

	out, err := plugin.Convert(input, req.Output, req.Options)
	if err != nil {
		cerr := &types.ConversionError{Input: input, Err: err}
		g.emit.Error(cerr, "single_error")
		return "", cerr
	}

	g.emit.Progress(protocol.Progress{
		Current: 1, Total: 1,
		Message:  "conversion complete",
		Type:     "single_progress",
		Filename: base,
	})
	g.emit.Result(protocol.Result{
		Success:    true,
		Message:    fmt.Sprintf("converted %s to %s", base, filepath.Base(out)),
		OutputPath: out,
	})
	return out, nil
}

// ConvertBatch delegates to the executor, streaming one BATCH_PROGRESS line
// per finished file and a terminal BATCH_RESULT with the summary. extra is
// chained after the protocol reporting so a caller can also observe
// completions (e.g. a terminal progress bar).
func (g *Gateway) ConvertBatch(req types.ConversionRequest, maxWorkers int, extra types.ProgressCallback) (types.BatchSummary, error) {
	if len(req.Inputs) == 0 {
		err := types.Validationf("batch conversion requires at least one input file")
		g.emit.Error(err, "batch_error")
		return types.BatchSummary{}, err
	}

	callback := func(index, total int, input string, success bool, duration float64, errMsg string) {
		status := protocol.StatusSuccess
		var errField *string
		if !success {
			status = protocol.StatusError
			errField = &errMsg
		}
		g.emit.BatchProgress(protocol.BatchProgress{
			FileIndex:       index,
			TotalFiles:      total,
			FileName:        filepath.Base(input),
			Status:          status,
			OverallProgress: 100 * index / total,
			Time:            duration,
			Error:           errField,
		})
		if extra != nil {
			extra(index, total, input, success, duration, errMsg)
		}
	}

	summary, err := g.executor.RunBatch(req.Type, req.Inputs, req.Output, maxWorkers, callback, req.Options)
	if err != nil {
		g.emit.Error(err, "batch_error")
		return types.BatchSummary{}, err
	}

	g.emit.BatchResult(summary)
	return summary, nil
}

// Merge validates the request and delegates to the merge collaborator. When
// no output path is supplied one is derived next to the first input.
func (g *Gateway) Merge(inputs []string, output string) (string, error) {
	if len(inputs) < 2 {
		err := types.Validationf("merge requires at least two input files, got %d", len(inputs))
		g.emit.Error(err, "merge_error")
		return "", err
	}
	for _, in := range inputs {
		if _, err := os.Stat(in); err != nil {
			verr := types.Validationf("input file %s: %v", in, err)
			g.emit.Error(verr, "merge_error")
			return "", verr
		}
	}
	if output == "" {
		output = filepath.Join(filepath.Dir(inputs[0]), "merged.pdf")
	}

	if err := g.merger.Merge(inputs, output); err != nil {
		merr := fmt.Errorf("merging %d files: %w", len(inputs), err)
		g.emit.Error(merr, "merge_error")
		return "", merr
	}

	g.emit.Result(protocol.Result{
		Success:    true,
		Message:    fmt.Sprintf("merged %d files into %s", len(inputs), filepath.Base(output)),
		OutputPath: output,
	})
	return output, nil
}
