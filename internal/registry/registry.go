// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package registry catalogs converter plugins by (source, target) format
// pair and selects among competitors by priority.
package registry

import (
	"fmt"
	"sort"
	"sync"
)

// ConvertFunc performs one conversion. outputPath may be empty, in which
// case the converter applies its own default placement. It returns the path
// actually written. Implementations must return an error on failure, never
// a bad path, and must ignore option keys they do not recognize.
type ConvertFunc func(inputPath, outputPath string, options map[string]any) (string, error)

// Plugin is a registered conversion capability. Immutable once registered.
type Plugin struct {
	Source  string
	Target  string
	Convert ConvertFunc

	Name        string
	Description string
	Version     string
	Author      string

	// Priority ranks competing plugins for the same pair; lower wins.
	Priority        int
	SupportsBatch   bool
	SupportsOptions bool
	MaxFileSizeMB   float64
}

// RegistrationError reports a plugin missing a required field.
type RegistrationError struct {
	Field string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("plugin registration: missing required field %s", e.Field)
}

type pair struct {
	source, target string
}

// Registry is the in-memory plugin catalog. Registration normally happens
// once at startup; reads during batch execution take the read lock only.
type Registry struct {
	mu      sync.RWMutex
	entries map[pair][]Plugin // slices keep registration order
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[pair][]Plugin)}
}

// Register adds a plugin. A plugin with the same (source, target, name)
// triple replaces the earlier entry in place, keeping its registration
// position.
func (r *Registry) Register(p Plugin) error {
	switch {
	case p.Source == "":
		return &RegistrationError{Field: "source"}
	case p.Target == "":
		return &RegistrationError{Field: "target"}
	case p.Name == "":
		return &RegistrationError{Field: "name"}
	case p.Convert == nil:
		return &RegistrationError{Field: "convert"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := pair{p.Source, p.Target}
	for i, existing := range r.entries[key] {
		if existing.Name == p.Name {
			r.entries[key][i] = p
			return nil
		}
	}
	r.entries[key] = append(r.entries[key], p)
	return nil
}

// Converter returns the preferred plugin for (source, target): the lowest
// priority value, ties broken by registration order. Nil when no plugin is
// registered for the pair.
func (r *Registry) Converter(source, target string) *Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	candidates := r.entries[pair{source, target}]
	if len(candidates) == 0 {
		return nil
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Priority < best.Priority {
			best = c
		}
	}
	return &best
}

// Converters returns all plugins for (source, target), ascending by
// priority with registration order preserved among equals.
func (r *Registry) Converters(source, target string) []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	candidates := r.entries[pair{source, target}]
	out := make([]Plugin, len(candidates))
	copy(out, candidates)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}

// AvailableConversions returns a snapshot of registered pairs as
// source → sorted target list, for diagnostics and error messages.
func (r *Registry) AvailableConversions() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]map[string]bool)
	for key := range r.entries {
		if seen[key.source] == nil {
			seen[key.source] = make(map[string]bool)
		}
		seen[key.source][key.target] = true
	}

	out := make(map[string][]string, len(seen))
	for source, targets := range seen {
		for target := range targets {
			out[source] = append(out[source], target)
		}
		sort.Strings(out[source])
	}
	return out
}

// Pairs returns the registered conversion types as sorted "src2tgt" strings.
func (r *Registry) Pairs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.entries))
	for key := range r.entries {
		out = append(out, key.source+"2"+key.target)
	}
	sort.Strings(out)
	return out
}
