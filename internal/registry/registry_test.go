// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"testing"
)

func echoConvert(inputPath, outputPath string, options map[string]any) (string, error) {
	return outputPath, nil
}

func plugin(source, target, name string, priority int) Plugin {
	return Plugin{
		Source:   source,
		Target:   target,
		Name:     name,
		Version:  "1.0.0",
		Priority: priority,
		Convert:  echoConvert,
	}
}

func TestRegister_MissingFields(t *testing.T) {
	tests := []struct {
		name      string
		plugin    Plugin
		wantField string
	}{
		{"missing source", Plugin{Target: "md", Name: "x", Convert: echoConvert}, "source"},
		{"missing target", Plugin{Source: "pdf", Name: "x", Convert: echoConvert}, "target"},
		{"missing name", Plugin{Source: "pdf", Target: "md", Convert: echoConvert}, "name"},
		{"missing convert", Plugin{Source: "pdf", Target: "md", Name: "x"}, "convert"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New().Register(tt.plugin)
			regErr, ok := err.(*RegistrationError)
			if !ok {
				t.Fatalf("expected *RegistrationError, got %v", err)
			}
			if regErr.Field != tt.wantField {
				t.Errorf("field = %q, want %q", regErr.Field, tt.wantField)
			}
		})
	}
}

func TestConverter_PrioritySelection(t *testing.T) {
	r := New()
	for _, p := range []Plugin{
		plugin("pdf", "md", "slow-but-accurate", 10),
		plugin("pdf", "md", "fast", 1),
		plugin("pdf", "md", "fallback", 50),
	} {
		if err := r.Register(p); err != nil {
			t.Fatal(err)
		}
	}

	got := r.Converter("pdf", "md")
	if got == nil {
		t.Fatal("expected a plugin")
	}
	if got.Name != "fast" {
		t.Errorf("selected %q, want %q", got.Name, "fast")
	}
	if got.Source != "pdf" || got.Target != "md" {
		t.Errorf("pair = %s2%s, want pdf2md", got.Source, got.Target)
	}
}

func TestConverter_TieBrokenByRegistrationOrder(t *testing.T) {
	r := New()
	if err := r.Register(plugin("html", "pdf", "first", 5)); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(plugin("html", "pdf", "second", 5)); err != nil {
		t.Fatal(err)
	}

	if got := r.Converter("html", "pdf"); got.Name != "first" {
		t.Errorf("selected %q, want %q (first registered wins ties)", got.Name, "first")
	}
}

func TestConverter_Idempotent(t *testing.T) {
	r := New()
	if err := r.Register(plugin("pdf", "md", "a", 2)); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(plugin("pdf", "md", "b", 1)); err != nil {
		t.Fatal(err)
	}

	first := r.Converter("pdf", "md")
	second := r.Converter("pdf", "md")
	if first.Name != second.Name || first.Version != second.Version || first.Priority != second.Priority {
		t.Errorf("successive lookups differ: %+v vs %+v", first, second)
	}
}

func TestConverter_NoMatch(t *testing.T) {
	if got := New().Converter("docx", "epub"); got != nil {
		t.Errorf("expected nil, got %q", got.Name)
	}
}

func TestRegister_DuplicateTripleOverwrites(t *testing.T) {
	r := New()
	old := plugin("md", "pdf", "renderer", 3)
	old.Version = "1.0.0"
	if err := r.Register(old); err != nil {
		t.Fatal(err)
	}

	replacement := plugin("md", "pdf", "renderer", 3)
	replacement.Version = "2.0.0"
	if err := r.Register(replacement); err != nil {
		t.Fatal(err)
	}

	all := r.Converters("md", "pdf")
	if len(all) != 1 {
		t.Fatalf("expected 1 plugin after overwrite, got %d", len(all))
	}
	if all[0].Version != "2.0.0" {
		t.Errorf("version = %q, want the replacement's 2.0.0", all[0].Version)
	}
}

func TestConverters_SortedByPriority(t *testing.T) {
	r := New()
	for _, p := range []Plugin{
		plugin("pdf", "md", "c", 30),
		plugin("pdf", "md", "a", 10),
		plugin("pdf", "md", "b", 20),
	} {
		if err := r.Register(p); err != nil {
			t.Fatal(err)
		}
	}

	got := r.Converters("pdf", "md")
	want := []string{"a", "b", "c"}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("position %d = %q, want %q", i, got[i].Name, name)
		}
	}
}

func TestAvailableConversions(t *testing.T) {
	r := New()
	for _, p := range []Plugin{
		plugin("pdf", "md", "a", 1),
		plugin("pdf", "editable", "b", 1),
		plugin("html", "pdf", "c", 1),
	} {
		if err := r.Register(p); err != nil {
			t.Fatal(err)
		}
	}

	conversions := r.AvailableConversions()
	if len(conversions["pdf"]) != 2 {
		t.Errorf("pdf targets = %v, want 2 entries", conversions["pdf"])
	}
	if conversions["pdf"][0] != "editable" || conversions["pdf"][1] != "md" {
		t.Errorf("pdf targets not sorted: %v", conversions["pdf"])
	}

	pairs := r.Pairs()
	want := []string{"html2pdf", "pdf2editable", "pdf2md"}
	if len(pairs) != len(want) {
		t.Fatalf("pairs = %v, want %v", pairs, want)
	}
	for i := range want {
		if pairs[i] != want[i] {
			t.Errorf("pairs[%d] = %q, want %q", i, pairs[i], want[i])
		}
	}
}
