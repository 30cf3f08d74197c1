package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/loopcontext/catcomp"
)

type exportConfig struct {
	catalog  string
	format   string
	lang     string
	out      string
	fallback string
}

func usageExport() {
	fmt.Fprintf(os.Stderr, `usage: catcomp export [options] <catalog>

Export writes the strings of one language, in source order for YAML or as a
go-i18n message file for TOML. Output goes to -out or stdout.

Flags:
`)
}

func parseExportFlags(args []string, defaults exportConfig) (*exportConfig, error) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		usageExport()
		fs.PrintDefaults()
	}
	cfg := defaults
	fs.StringVar(&cfg.format, "format", "yaml", "Output format: yaml or toml.")
	fs.StringVar(&cfg.lang, "lang", "", "Language to export (default: base language).")
	fs.StringVar(&cfg.out, "out", "", "Output file (default stdout).")
	fs.StringVar(&cfg.fallback, "fallback", cfg.fallback, "Policy for incomplete entries: none or base.")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, fmt.Errorf("export: exactly one catalog file is required")
	}
	cfg.catalog = fs.Arg(0)
	return &cfg, nil
}

func runExportCommand(args []string) error {
	pcfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg, err := parseExportFlags(args, exportConfig{fallback: pcfg.Build.Fallback})
	if err != nil {
		return err
	}
	return runExport(cfg)
}

func runExport(cfg *exportConfig) error {
	table, err := parseCatalog(cfg.catalog, cfg.fallback)
	if err != nil {
		return err
	}
	lang := cfg.lang
	if lang == "" {
		lang = table.BaseLanguage()
	}
	var buf bytes.Buffer
	switch strings.ToLower(cfg.format) {
	case "yaml":
		err = catcomp.ExportYAML(table, lang, &buf)
	case "toml":
		err = catcomp.ExportTOML(table, lang, &buf)
	default:
		return fmt.Errorf("export: unknown format %q", cfg.format)
	}
	if err != nil {
		return err
	}
	if cfg.out == "" {
		_, err = os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(cfg.out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", cfg.out, err)
	}
	logger.Printf("wrote %s", cfg.out)
	return nil
}

func runLookupCommand(args []string) error {
	fs := flag.NewFlagSet("lookup", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: catcomp lookup <catalog> <identifier> <language>\n")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 3 {
		fs.Usage()
		return fmt.Errorf("lookup: expected 3 arguments, got %d", fs.NArg())
	}
	pcfg, err := loadConfig()
	if err != nil {
		return err
	}
	table, err := parseCatalog(fs.Arg(0), pcfg.Build.Fallback)
	if err != nil {
		return err
	}
	s, err := table.Lookup(fs.Arg(1), fs.Arg(2))
	if err != nil {
		return err
	}
	fmt.Println(s)
	return nil
}
