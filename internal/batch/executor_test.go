// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savagelysubtle/transmute/internal/progress"
	"github.com/savagelysubtle/transmute/internal/registry"
	"github.com/savagelysubtle/transmute/pkg/types"
)

// echoPlugin registers a converter that copies input to output verbatim.
func echoPlugin(t *testing.T, reg *registry.Registry, source, target string) {
	t.Helper()
	err := reg.Register(registry.Plugin{
		Source:  source,
		Target:  target,
		Name:    "echo",
		Version: "1.0.0",
		Convert: func(input, output string, options map[string]any) (string, error) {
			data, err := os.ReadFile(input)
			if err != nil {
				return "", err
			}
			if output == "" {
				output = input + "." + target
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return "", err
			}
			return output, nil
		},
	})
	require.NoError(t, err)
}

// writeInputs creates n small input files under dir and returns their paths.
func writeInputs(t *testing.T, dir string, n int) []string {
	t.Helper()
	paths := make([]string, n)
	for i := range paths {
		paths[i] = filepath.Join(dir, fmt.Sprintf("doc-%02d.txt", i))
		require.NoError(t, os.WriteFile(paths[i], []byte("content"), 0o644))
	}
	return paths
}

func newExecutor(reg *registry.Registry) *Executor {
	return NewExecutor(reg, progress.NewTracker(0), nil, types.ConversionConfig{MaxWorkers: 2}, nil)
}

func TestRunBatch_MalformedTypeFailsBeforeSideEffects(t *testing.T) {
	reg := registry.New()
	echoPlugin(t, reg, "txt", "out")
	e := newExecutor(reg)

	outDir := filepath.Join(t.TempDir(), "out")

	for _, bad := range []string{"txt-out", "2out", "txt2", "", "2"} {
		_, err := e.RunBatch(bad, []string{"a.txt"}, outDir, 2, nil, nil)
		var ve *types.ValidationError
		assert.ErrorAs(t, err, &ve, "type %q should fail validation", bad)
	}

	_, err := os.Stat(outDir)
	assert.True(t, os.IsNotExist(err), "no output directory may be created on validation failure")
}

func TestRunBatch_UnknownPairListsAvailable(t *testing.T) {
	reg := registry.New()
	echoPlugin(t, reg, "txt", "out")
	echoPlugin(t, reg, "md", "pdf")
	e := newExecutor(reg)

	_, err := e.RunBatch("docx2epub", []string{"a.docx"}, "", 2, nil, nil)

	var infra *types.InfrastructureError
	require.ErrorAs(t, err, &infra)
	assert.Contains(t, err.Error(), "md2pdf")
	assert.Contains(t, err.Error(), "txt2out")
}

func TestRunBatch_EndToEnd(t *testing.T) {
	reg := registry.New()
	echoPlugin(t, reg, "txt", "out")
	e := newExecutor(reg)

	inDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")
	inputs := writeInputs(t, inDir, 2)

	summary, err := e.RunBatch("txt2out", inputs, outDir, 2, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalFiles)
	assert.Equal(t, 2, summary.Successful)
	assert.Equal(t, 0, summary.Failed)

	for _, in := range inputs {
		base := filepath.Base(in)
		want := filepath.Join(outDir, base[:len(base)-len(".txt")]+".out")
		_, err := os.Stat(want)
		assert.NoError(t, err, "expected output file %s", want)
	}
}

func TestRunBatch_MissingFilesAreIsolated(t *testing.T) {
	reg := registry.New()
	echoPlugin(t, reg, "txt", "out")
	e := newExecutor(reg)

	inDir := t.TempDir()
	inputs := writeInputs(t, inDir, 3)
	missing := []string{
		filepath.Join(inDir, "ghost-1.txt"),
		filepath.Join(inDir, "ghost-2.txt"),
	}
	all := append(append([]string{}, inputs...), missing...)

	summary, err := e.RunBatch("txt2out", all, filepath.Join(inDir, "out"), 3, nil, nil)
	require.NoError(t, err, "per-file failures never abort the batch")

	assert.Equal(t, len(all), summary.Successful+summary.Failed)
	assert.GreaterOrEqual(t, summary.Failed, len(missing))
	assert.Equal(t, 3, summary.Successful)

	for _, res := range summary.Results {
		if !res.Success {
			assert.Contains(t, res.Error, "missing")
		}
	}
}

func TestRunBatch_ResultsSortedDespiteCompletionOrder(t *testing.T) {
	reg := registry.New()
	// Delays invert natural completion order: earlier names finish last.
	err := reg.Register(registry.Plugin{
		Source: "txt", Target: "out", Name: "sleepy", Version: "1.0.0",
		Convert: func(input, output string, options map[string]any) (string, error) {
			if filepath.Base(input) < "doc-02.txt" {
				time.Sleep(50 * time.Millisecond)
			}
			return input + ".out", nil
		},
	})
	require.NoError(t, err)
	e := newExecutor(reg)

	inputs := writeInputs(t, t.TempDir(), 4)
	summary, err := e.RunBatch("txt2out", inputs, "", 4, nil, nil)
	require.NoError(t, err)

	assert.True(t, sort.SliceIsSorted(summary.Results, func(i, j int) bool {
		return summary.Results[i].InputPath < summary.Results[j].InputPath
	}), "results must be sorted by input path")
}

func TestRunBatch_RetryOnPriorText(t *testing.T) {
	reg := registry.New()
	var calls int32
	var forcedOnRetry atomic.Bool

	err := reg.Register(registry.Plugin{
		Source: "pdf", Target: "editable", Name: "ocr", Version: "1.0.0",
		Convert: func(input, output string, options map[string]any) (string, error) {
			n := atomic.AddInt32(&calls, 1)
			force, _ := options[types.OptionForceOCR].(bool)
			if !force {
				return "", &types.PriorTextError{Path: input}
			}
			forcedOnRetry.Store(n == 2)
			return input + ".pdf", nil
		},
	})
	require.NoError(t, err)
	e := newExecutor(reg)

	inDir := t.TempDir()
	input := filepath.Join(inDir, "scan.pdf")
	require.NoError(t, os.WriteFile(input, []byte("pdf"), 0o644))

	summary, err := e.RunBatch("pdf2editable", []string{input}, "", 1, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Successful)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "converter must run exactly twice")
	assert.True(t, forcedOnRetry.Load(), "retry must carry force_ocr=true")
}

func TestRunBatch_RetryOnlyOnce(t *testing.T) {
	reg := registry.New()
	var calls int32
	err := reg.Register(registry.Plugin{
		Source: "pdf", Target: "editable", Name: "ocr", Version: "1.0.0",
		Convert: func(input, output string, options map[string]any) (string, error) {
			atomic.AddInt32(&calls, 1)
			return "", &types.PriorTextError{Path: input}
		},
	})
	require.NoError(t, err)
	e := newExecutor(reg)

	inDir := t.TempDir()
	input := filepath.Join(inDir, "scan.pdf")
	require.NoError(t, os.WriteFile(input, []byte("pdf"), 0o644))

	summary, err := e.RunBatch("pdf2editable", []string{input}, "", 1, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed, "second failure is terminal for the file")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRunBatch_NoRetryForNonEditableTargets(t *testing.T) {
	reg := registry.New()
	var calls int32
	err := reg.Register(registry.Plugin{
		Source: "pdf", Target: "md", Name: "conv", Version: "1.0.0",
		Convert: func(input, output string, options map[string]any) (string, error) {
			atomic.AddInt32(&calls, 1)
			return "", &types.PriorTextError{Path: input}
		},
	})
	require.NoError(t, err)
	e := newExecutor(reg)

	inDir := t.TempDir()
	input := filepath.Join(inDir, "doc.pdf")
	require.NoError(t, os.WriteFile(input, []byte("pdf"), 0o644))

	summary, err := e.RunBatch("pdf2md", []string{input}, "", 1, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "retry applies only to editable targets")
}

func TestRunBatch_CallbackPanicIsContained(t *testing.T) {
	reg := registry.New()
	echoPlugin(t, reg, "txt", "out")
	e := newExecutor(reg)

	inputs := writeInputs(t, t.TempDir(), 4)

	baseline, err := e.RunBatch("txt2out", inputs, "", 2, nil, nil)
	require.NoError(t, err)

	panicky := func(index, total int, input string, success bool, duration float64, errMsg string) {
		panic("observer gone wrong")
	}
	summary, err := e.RunBatch("txt2out", inputs, "", 2, panicky, nil)
	require.NoError(t, err)

	assert.Equal(t, baseline.Successful, summary.Successful)
	assert.Equal(t, baseline.Failed, summary.Failed)
}

func TestRunBatch_CallbackOrderAndCounts(t *testing.T) {
	reg := registry.New()
	echoPlugin(t, reg, "txt", "out")
	e := newExecutor(reg)

	inputs := writeInputs(t, t.TempDir(), 5)

	var mu sync.Mutex
	var indices []int
	cb := func(index, total int, input string, success bool, duration float64, errMsg string) {
		mu.Lock()
		defer mu.Unlock()
		indices = append(indices, index)
		assert.Equal(t, 5, total)
	}

	_, err := e.RunBatch("txt2out", inputs, "", 3, cb, nil)
	require.NoError(t, err)

	require.Len(t, indices, 5)
	for i, idx := range indices {
		assert.Equal(t, i+1, idx, "callback index counts completions starting at 1")
	}
}

func TestRunBatch_TrackerBookkeeping(t *testing.T) {
	reg := registry.New()
	echoPlugin(t, reg, "txt", "out")
	tracker := progress.NewTracker(0)
	e := NewExecutor(reg, tracker, nil, types.ConversionConfig{MaxWorkers: 2}, nil)

	inputs := writeInputs(t, t.TempDir(), 3)
	_, err := e.RunBatch("txt2out", inputs, "", 2, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, tracker.Len())
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{"md", ".md"},
		{"markdown", ".md"},
		{"pdf", ".pdf"},
		{"editable", ".pdf"},
		{"txt", ".txt"},
		{"html", ".html"},
		{"epub", ".epub"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtensionFor(tt.target), "target %s", tt.target)
	}
}
