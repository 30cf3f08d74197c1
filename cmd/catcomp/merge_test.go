package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/loopcontext/catcomp"
)

func TestExportMergeRoundTrip(t *testing.T) {
	catalog := writeSample(t)
	dir := t.TempDir()
	exported := filepath.Join(dir, "english.yaml")

	if err := runExport(&exportConfig{catalog: catalog, format: "yaml", out: exported}); err != nil {
		t.Fatalf("export: %v", err)
	}

	translated := []byte("language: deutsch\nset:\n  MSG_HELLO: Hallo\n  MSG_UIN: \"UIN:\"\n  MSG_GONE: weg\n")
	in := filepath.Join(dir, "deutsch.yaml")
	if err := os.WriteFile(in, translated, 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "merged.cs")
	if err := runMerge(&mergeConfig{source: catalog, in: in, out: out}); err != nil {
		t.Fatalf("merge: %v", err)
	}

	merged, err := catcomp.ParseFile(out)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct{ ident, lang, want string }{
		{"MSG_HELLO", "deutsch", "Hallo"},
		{"MSG_OK", "deutsch", "OK"},
		{"MSG_HELLO", "polski", "Cześć"},
	}
	for _, tt := range tests {
		got, err := merged.Lookup(tt.ident, tt.lang)
		if err != nil || got != tt.want {
			t.Errorf("Lookup(%s, %s) = %q, %v; want %q", tt.ident, tt.lang, got, err, tt.want)
		}
	}
	if _, ok := merged.Entry("MSG_GONE"); ok {
		t.Error("unknown identifier was merged")
	}
}

func TestRunMergeRequiresInputs(t *testing.T) {
	if err := runMerge(&mergeConfig{}); err == nil {
		t.Fatal("expected error without -source and -in")
	}
}

func TestRunExportTOML(t *testing.T) {
	out := filepath.Join(t.TempDir(), "active.pl.toml")
	if err := runExport(&exportConfig{catalog: writeSample(t), format: "toml", lang: "polski", out: out}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("empty TOML export")
	}
	if err := runExport(&exportConfig{catalog: writeSample(t), format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}
