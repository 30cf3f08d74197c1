package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/loopcontext/catcomp"
)

// mergeConfig holds flags for the merge command.
type mergeConfig struct {
	source   string
	in       string
	lang     string
	out      string
	fallback string
}

func usageMerge() {
	fmt.Fprintf(os.Stderr, `usage: catcomp merge [options]

Merge adds or replaces one language of a catalog with the strings of a YAML file
written by 'catcomp export'. Identifiers missing or empty in the YAML get the
base-language string as placeholder. The merged catalog is written to -out
(default: the source file).

Flags:
`)
}

func parseMergeFlags(args []string, defaults mergeConfig) (*mergeConfig, error) {
	fs := flag.NewFlagSet("merge", flag.ExitOnError)
	fs.Usage = func() {
		usageMerge()
		fs.PrintDefaults()
	}
	cfg := defaults
	fs.StringVar(&cfg.source, "source", "", "Source catalog file. Required.")
	fs.StringVar(&cfg.in, "in", "", "Translated YAML file. Required.")
	fs.StringVar(&cfg.lang, "lang", "", "Language name (default: the YAML 'language' field).")
	fs.StringVar(&cfg.out, "out", "", "Output catalog file (default: -source).")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func runMergeCommand(args []string) error {
	pcfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg, err := parseMergeFlags(args, mergeConfig{fallback: pcfg.Build.Fallback})
	if err != nil {
		return err
	}
	return runMerge(cfg)
}

func runMerge(cfg *mergeConfig) error {
	if cfg.source == "" || cfg.in == "" {
		return fmt.Errorf("merge: -source and -in are required")
	}
	table, err := parseCatalog(cfg.source, cfg.fallback)
	if err != nil {
		return err
	}
	f, err := os.Open(cfg.in)
	if err != nil {
		return fmt.Errorf("read %s: %w", cfg.in, err)
	}
	msgs, err := catcomp.ImportYAML(f)
	f.Close()
	if err != nil {
		return err
	}
	if cfg.lang != "" {
		msgs.Language = cfg.lang
	}

	merged, report, err := catcomp.Merge(table, msgs)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := catcomp.Format(merged, &buf); err != nil {
		return err
	}
	outPath := cfg.out
	if outPath == "" {
		outPath = cfg.source
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	action := "updated"
	if report.Added {
		action = "added"
	}
	logger.Printf("%s language %s in %s", action, report.Language, outPath)
	if len(report.Placeholders) > 0 {
		logger.Printf("%d placeholder(s): %s", len(report.Placeholders), strings.Join(report.Placeholders, ", "))
	}
	if len(report.Unknown) > 0 {
		logger.Printf("dropped %d unknown identifier(s): %s", len(report.Unknown), strings.Join(report.Unknown, ", "))
	}
	return nil
}
