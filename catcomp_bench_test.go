package catcomp_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/loopcontext/catcomp"
	"github.com/loopcontext/catcomp/test"
)

func makeBenchLocale(b *testing.B, observer catcomp.Observer) *catcomp.Locale {
	b.Helper()
	table, err := catcomp.Parse([]byte(test.SampleCatalog))
	if err != nil {
		b.Fatalf("failed to parse fixture: %v", err)
	}
	a, err := catcomp.Emit(table, table.Targets()[1])
	if err != nil {
		b.Fatalf("failed to compile catalog: %v", err)
	}
	tmpDir, err := os.MkdirTemp("", "catcomp-bench-*")
	if err != nil {
		b.Fatalf("failed to create temp dir: %v", err)
	}
	b.Cleanup(func() { _ = os.RemoveAll(tmpDir) })
	path := filepath.Join(tmpDir, "sample.catalog")
	if err := os.WriteFile(path, a.Data, 0o600); err != nil {
		b.Fatalf("failed to write fixture: %v", err)
	}

	loc, err := catcomp.NewLocale(catcomp.LocaleConfig{Builtin: table, CatalogPath: path, Observer: observer})
	if err != nil {
		b.Fatalf("failed to create locale: %v", err)
	}
	b.Cleanup(loc.Close)
	return loc
}

type noopObserver struct{}

func (noopObserver) OnBuiltinFallback(lang string, identifier string) {}
func (noopObserver) OnStringMissing(key string)                       {}
func (noopObserver) OnCatalogRejected(path string, reason string)     {}

func BenchmarkParse(b *testing.B) {
	src := []byte(test.SampleCatalog)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = catcomp.Parse(src)
	}
}

func BenchmarkLookup(b *testing.B) {
	table, err := catcomp.Parse([]byte(test.SampleCatalog))
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = table.Lookup("MSG_UIN", "polski")
	}
}

func BenchmarkGetStringFromCatalog(b *testing.B) {
	loc := makeBenchLocale(b, nil)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = loc.GetString(1)
	}
}

func BenchmarkGetStringBuiltinFallbackObserverEnabled(b *testing.B) {
	loc := makeBenchLocale(b, noopObserver{})
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = loc.GetString(2)
	}
}

func BenchmarkEmitC(b *testing.B) {
	table, err := catcomp.Parse([]byte(test.SampleCatalog))
	if err != nil {
		b.Fatal(err)
	}
	target := table.Targets()[0]
	var buf bytes.Buffer
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a, _ := catcomp.Emit(table, target)
		buf.Reset()
		buf.Write(a.Data)
	}
}
