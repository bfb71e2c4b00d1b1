// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package protocol implements the line-oriented message stream consumed by
// an external UI process: one JSON object per line, prefixed with a tag and
// a colon. Consumers treat unknown prefixes as log noise, so plain prints
// may share the stream.
package protocol

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/savagelysubtle/transmute/pkg/types"
)

// Line tags. The payload shapes are fixed per tag.
const (
	TagProgress      = "PROGRESS"
	TagBatchProgress = "BATCH_PROGRESS"
	TagResult        = "RESULT"
	TagBatchResult   = "BATCH_RESULT"
	TagError         = "ERROR"
)

// Statuses carried by BATCH_PROGRESS lines.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Progress reports fine-grained progress of a single conversion.
type Progress struct {
	Current  int    `json:"current"`
	Total    int    `json:"total"`
	Message  string `json:"message"`
	Type     string `json:"type"`
	Filename string `json:"filename"`
}

// BatchProgress reports one finished file within a batch.
type BatchProgress struct {
	FileIndex       int     `json:"fileIndex"`
	TotalFiles      int     `json:"totalFiles"`
	FileName        string  `json:"fileName"`
	Status          string  `json:"status"`
	OverallProgress int     `json:"overallProgress"`
	Time            float64 `json:"time"`
	Error           *string `json:"error"`
}

// Result is the terminal message of a successful single conversion or merge.
type Result struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	OutputPath string `json:"output_path,omitempty"`
}

// ErrorMessage is the terminal message of a failed operation.
type ErrorMessage struct {
	Err  string `json:"error"`
	Type string `json:"type"`
}

// Emitter serializes tagged messages onto a single writer. Safe for
// concurrent use; each message is one atomic line.
type Emitter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewEmitter writes protocol lines to w.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// Emit writes one "TAG:{json}" line.
func (e *Emitter) Emit(tag string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s message: %w", tag, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	_, err = fmt.Fprintf(e.w, "%s:%s\n", tag, data)
	return err
}

// Progress emits a PROGRESS line.
func (e *Emitter) Progress(p Progress) error {
	return e.Emit(TagProgress, p)
}

// BatchProgress emits a BATCH_PROGRESS line.
func (e *Emitter) BatchProgress(p BatchProgress) error {
	return e.Emit(TagBatchProgress, p)
}

// Result emits a terminal RESULT line.
func (e *Emitter) Result(r Result) error {
	return e.Emit(TagResult, r)
}

// BatchResult emits the terminal BATCH_RESULT line carrying the summary.
func (e *Emitter) BatchResult(s types.BatchSummary) error {
	return e.Emit(TagBatchResult, s)
}

// Error emits a terminal ERROR line. kind names the failing surface, e.g.
// "single_error" or "batch_error".
func (e *Emitter) Error(err error, kind string) error {
	return e.Emit(TagError, ErrorMessage{Err: err.Error(), Type: kind})
}
