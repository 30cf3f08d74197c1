package main

import (
	"fmt"
	"log"
	"os"

	"github.com/loopcontext/catcomp"
	"github.com/loopcontext/catcomp/internal/config"
)

var logger = log.New(os.Stderr, "catcomp: ", 0)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	sub := os.Args[1]
	args := os.Args[2:]
	var err error
	switch sub {
	case "build":
		err = runBuildCommand(args)
	case "check":
		err = runCheckCommand(args)
	case "lookup":
		err = runLookupCommand(args)
	case "export":
		err = runExportCommand(args)
	case "merge":
		err = runMergeCommand(args)
	case "help", "-h", "--help":
		usage()
		os.Exit(0)
	default:
		logger.Printf("unknown subcommand %q", sub)
		usage()
		os.Exit(1)
	}
	if err != nil {
		logger.Print(err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `catcomp - catalog compiler for SimpleCat style catalog descriptions

usage: catcomp <command> [options] <catalog>

commands:
  build     Generate every target declared in the catalog header.
  check     Validate the catalog; optionally cross-check identifiers used in Go code.
  lookup    Print one string: catcomp lookup <catalog> <identifier> <language>.
  export    Write one language as YAML or go-i18n TOML.
  merge     Add or replace a language from a YAML export.

Use 'catcomp <command> -h' for command-specific flags. Defaults come from the
nearest catcomp.toml and the CATCOMP_OUTDIR / CATCOMP_FALLBACK variables.
`)
}

// loadConfig reads the project configuration for the current directory.
func loadConfig() (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, path, err := config.FindAndLoad(wd)
	if err != nil {
		return nil, err
	}
	if path != "" {
		logger.Printf("using %s", path)
	}
	return cfg, nil
}

// parseCatalog parses path with the configured fallback policy.
func parseCatalog(path string, fallback string) (*catcomp.Table, error) {
	policy, err := catcomp.ParseFallbackPolicy(fallback)
	if err != nil {
		return nil, err
	}
	return catcomp.ParseFile(path, catcomp.WithFallback(policy))
}
