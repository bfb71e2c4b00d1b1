// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scan wraps an optional ClamAV daemon used to screen input
// documents before conversion. When no daemon is reachable the scanner is
// disabled and every check passes.
package scan

import (
	"fmt"
	"os"
	"strings"

	clamd "github.com/dutchcoders/go-clamd"
)

const defaultClamdAddress = "localhost:3310"

// Scanner screens files through clamd. The zero value is a disabled scanner.
type Scanner struct {
	enabled bool
	client  *clamd.Clamd
}

// Result is the outcome of scanning one file.
type Result struct {
	Scanned  bool
	Infected bool
	Threats  []string
}

// New connects to the clamd daemon at address (default localhost:3310).
// When enabled is false, or the daemon does not answer a ping, it returns a
// disabled scanner rather than an error: scanning is an optional layer.
func New(enabled bool, address string) *Scanner {
	if !enabled {
		return &Scanner{}
	}
	if address == "" {
		address = defaultClamdAddress
	}

	client := clamd.NewClamd("tcp://" + address)
	if err := client.Ping(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: clamd at %s unreachable, input scanning disabled: %v\n", address, err)
		return &Scanner{}
	}
	return &Scanner{enabled: true, client: client}
}

// Enabled reports whether scans actually run.
func (s *Scanner) Enabled() bool {
	return s != nil && s.enabled
}

// ScanFile streams the file through clamd. A disabled scanner returns a
// clean, unscanned result.
func (s *Scanner) ScanFile(path string) (Result, error) {
	if !s.Enabled() {
		return Result{}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("opening %s for scanning: %w", path, err)
	}
	defer f.Close()

	responses, err := s.client.ScanStream(f, make(chan bool))
	if err != nil {
		return Result{}, fmt.Errorf("scanning %s: %w", path, err)
	}

	result := Result{Scanned: true}
	for r := range responses {
		if r.Status == clamd.RES_FOUND {
			result.Infected = true
			result.Threats = append(result.Threats, r.Description)
		}
	}
	return result, nil
}

// ThreatSummary formats the threat list for error messages.
func (r Result) ThreatSummary() string {
	return strings.Join(r.Threats, ", ")
}
