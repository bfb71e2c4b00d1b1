// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/savagelysubtle/transmute/pkg/types"
)

// decodeLine splits "TAG:{json}" and unmarshals the payload into dst.
func decodeLine(t *testing.T, line string, wantTag string, dst any) {
	t.Helper()
	tag, payload, ok := strings.Cut(line, ":")
	if !ok {
		t.Fatalf("line %q has no tag separator", line)
	}
	if tag != wantTag {
		t.Fatalf("tag = %q, want %q", tag, wantTag)
	}
	if err := json.Unmarshal([]byte(payload), dst); err != nil {
		t.Fatalf("payload of %q does not parse: %v", line, err)
	}
}

func TestEmitter_Progress(t *testing.T) {
	var buf bytes.Buffer
	e := NewEmitter(&buf)

	err := e.Progress(Progress{Current: 1, Total: 3, Message: "converting", Type: "single_progress", Filename: "a.pdf"})
	if err != nil {
		t.Fatal(err)
	}

	var got Progress
	decodeLine(t, strings.TrimRight(buf.String(), "\n"), TagProgress, &got)
	if got.Current != 1 || got.Total != 3 || got.Filename != "a.pdf" {
		t.Errorf("roundtrip mismatch: %+v", got)
	}
}

func TestEmitter_BatchProgressFieldNames(t *testing.T) {
	var buf bytes.Buffer
	e := NewEmitter(&buf)

	msg := "broken header"
	if err := e.BatchProgress(BatchProgress{
		FileIndex: 2, TotalFiles: 5, FileName: "b.docx",
		Status: StatusError, OverallProgress: 40, Time: 1.25, Error: &msg,
	}); err != nil {
		t.Fatal(err)
	}

	line := buf.String()
	// The UI consumer depends on these exact key spellings.
	for _, key := range []string{`"fileIndex"`, `"totalFiles"`, `"fileName"`, `"status"`, `"overallProgress"`, `"time"`, `"error"`} {
		if !strings.Contains(line, key) {
			t.Errorf("line missing key %s: %s", key, line)
		}
	}
}

func TestEmitter_BatchProgressNullError(t *testing.T) {
	var buf bytes.Buffer
	e := NewEmitter(&buf)

	if err := e.BatchProgress(BatchProgress{FileIndex: 1, TotalFiles: 1, FileName: "a", Status: StatusSuccess, OverallProgress: 100}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"error":null`) {
		t.Errorf("success entries carry an explicit null error: %s", buf.String())
	}
}

func TestEmitter_BatchResult(t *testing.T) {
	var buf bytes.Buffer
	e := NewEmitter(&buf)

	summary := types.BatchSummary{
		TotalFiles: 2, Successful: 1, Failed: 1, TotalTime: 0.5,
		Results: []types.ConversionResult{
			{InputPath: "a.txt", OutputPath: "a.md", Success: true, Duration: 0.2},
			{InputPath: "b.txt", Success: false, Duration: 0.3, Error: "boom"},
		},
	}
	if err := e.BatchResult(summary); err != nil {
		t.Fatal(err)
	}

	var got types.BatchSummary
	decodeLine(t, strings.TrimRight(buf.String(), "\n"), TagBatchResult, &got)
	if got.TotalFiles != 2 || got.Successful != 1 || got.Failed != 1 {
		t.Errorf("summary mismatch: %+v", got)
	}
	if len(got.Results) != 2 {
		t.Fatalf("results length = %d, want 2", len(got.Results))
	}
}

func TestEmitter_Error(t *testing.T) {
	var buf bytes.Buffer
	e := NewEmitter(&buf)

	if err := e.Error(errors.New("no converter for docx2epub"), "batch_error"); err != nil {
		t.Fatal(err)
	}

	var got ErrorMessage
	decodeLine(t, strings.TrimRight(buf.String(), "\n"), TagError, &got)
	if got.Err != "no converter for docx2epub" || got.Type != "batch_error" {
		t.Errorf("roundtrip mismatch: %+v", got)
	}
}

func TestEmitter_ConcurrentLinesStayWhole(t *testing.T) {
	var buf bytes.Buffer
	e := NewEmitter(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_ = e.Progress(Progress{Current: j, Total: 25, Message: "step", Type: "t", Filename: "f"})
			}
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 16*25 {
		t.Fatalf("line count = %d, want %d", len(lines), 16*25)
	}
	for _, line := range lines {
		var got Progress
		decodeLine(t, line, TagProgress, &got)
	}
}
