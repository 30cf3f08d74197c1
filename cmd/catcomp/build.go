package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/loopcontext/catcomp"
)

type buildConfig struct {
	catalog  string
	outdir   string
	kind     string
	fallback string
}

func usageBuild() {
	fmt.Fprintf(os.Stderr, `usage: catcomp build [options] <catalog>

Build parses the catalog and generates every ## TARGET it declares. Relative
target paths are resolved against -outdir. A failing target is reported and the
remaining targets are still generated.

Flags:
`)
}

func parseBuildFlags(args []string, defaults buildConfig) (*buildConfig, error) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	fs.Usage = func() {
		usageBuild()
		fs.PrintDefaults()
	}
	cfg := defaults
	fs.StringVar(&cfg.outdir, "outdir", cfg.outdir, "Root directory for relative target paths.")
	fs.StringVar(&cfg.kind, "target", "", "Only build targets of this kind ("+strings.Join(catcomp.KindNames(), ", ")+").")
	fs.StringVar(&cfg.fallback, "fallback", cfg.fallback, "Policy for incomplete entries: none or base.")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, fmt.Errorf("build: exactly one catalog file is required")
	}
	cfg.catalog = fs.Arg(0)
	return &cfg, nil
}

func runBuildCommand(args []string) error {
	pcfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg, err := parseBuildFlags(args, buildConfig{outdir: pcfg.Build.OutDir, fallback: pcfg.Build.Fallback})
	if err != nil {
		return err
	}
	return runBuild(cfg, catcomp.DirSink{Root: cfg.outdir})
}

func runBuild(cfg *buildConfig, sink catcomp.Sink) error {
	table, err := parseCatalog(cfg.catalog, cfg.fallback)
	if err != nil {
		return err
	}
	targets := table.Targets()
	if cfg.kind != "" {
		kind, err := catcomp.ParseTargetKind(cfg.kind)
		if err != nil {
			return err
		}
		var selected []catcomp.Target
		for _, t := range targets {
			if t.Kind == kind {
				selected = append(selected, t)
			}
		}
		targets = selected
	}
	if len(targets) == 0 {
		logger.Printf("%s: no targets to build", cfg.catalog)
		return nil
	}
	artifacts, err := catcomp.BuildTargets(table, sink, targets)
	for _, a := range artifacts {
		if a.Data == nil {
			logger.Printf("checked %s (%d entries, no code)", a.Target, table.Len())
			continue
		}
		logger.Printf("wrote %s (%d bytes)", a.Path, len(a.Data))
	}
	return err
}
