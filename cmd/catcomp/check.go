package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// checkConfig holds flags for the check command.
type checkConfig struct {
	catalog      string
	src          []string
	includeTests bool
	catcompPkg   string
	excludeDirs  []string
	fallback     string
}

func usageCheck() {
	fmt.Fprintf(os.Stderr, `usage: catcomp check [options] <catalog>

Check parses and validates the catalog. With -src, it also scans Go code for
identifiers passed as string literals to Lookup, String and MustString, reports
identifiers the catalog does not define (an error) and catalog identifiers no
code references (a notice).

Flags:
`)
}

func parseCheckFlags(args []string, defaults checkConfig) (*checkConfig, error) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	fs.Usage = func() {
		usageCheck()
		fs.PrintDefaults()
	}
	cfg := defaults
	var src, exclude string
	fs.StringVar(&src, "src", strings.Join(cfg.src, ","), "Comma-separated Go source paths to scan.")
	fs.StringVar(&exclude, "exclude", strings.Join(cfg.excludeDirs, ","), "Comma-separated dir names to skip (e.g. vendor).")
	fs.BoolVar(&cfg.includeTests, "include-tests", false, "Include _test.go files.")
	fs.StringVar(&cfg.catcompPkg, "catcomp-pkg", "github.com/loopcontext/catcomp", "Import path of catcomp (only files importing it are scanned).")
	fs.StringVar(&cfg.fallback, "fallback", cfg.fallback, "Policy for incomplete entries: none or base.")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, fmt.Errorf("check: exactly one catalog file is required")
	}
	cfg.catalog = fs.Arg(0)
	cfg.src = splitList(src)
	cfg.excludeDirs = splitList(exclude)
	return &cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func runCheckCommand(args []string) error {
	pcfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg, err := parseCheckFlags(args, checkConfig{
		src:         pcfg.Check.Src,
		excludeDirs: pcfg.Check.Exclude,
		fallback:    pcfg.Build.Fallback,
	})
	if err != nil {
		return err
	}
	return runCheck(cfg)
}

func runCheck(cfg *checkConfig) error {
	table, err := parseCatalog(cfg.catalog, cfg.fallback)
	if err != nil {
		return err
	}
	logger.Printf("%s: %d entries, languages %s", cfg.catalog, table.Len(), strings.Join(table.Languages(), ", "))
	if len(cfg.src) == 0 {
		return nil
	}

	ext := newKeyExtractor(cfg.catcompPkg)
	if err := ext.scan(cfg.src, cfg.excludeDirs, cfg.includeTests); err != nil {
		return err
	}
	var unknown []string
	for _, key := range ext.sortedKeys() {
		if _, ok := table.Entry(key); !ok {
			unknown = append(unknown, key)
		}
	}
	for _, e := range table.Entries() {
		if _, used := ext.keys[e.Identifier]; !used {
			logger.Printf("notice: %s is not referenced", e.Identifier)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("check: %d identifier(s) used in code but missing from %s: %s",
			len(unknown), cfg.catalog, strings.Join(unknown, ", "))
	}
	return nil
}

// keyExtractor collects catalog identifiers referenced from Go files via AST.
type keyExtractor struct {
	catcompImport  string
	importsCatcomp bool
	keys           map[string]struct{}
	methodArgIdx   map[string]int
}

func newKeyExtractor(catcompImport string) *keyExtractor {
	return &keyExtractor{
		catcompImport: catcompImport,
		keys:          make(map[string]struct{}),
		methodArgIdx: map[string]int{
			"Lookup":     0,
			"String":     0,
			"MustString": 0,
		},
	}
}

func (e *keyExtractor) scan(paths []string, exclude []string, includeTests bool) error {
	excludeSet := make(map[string]struct{}, len(exclude))
	for _, d := range exclude {
		excludeSet[d] = struct{}{}
	}
	wanted := func(p string) bool {
		if filepath.Ext(p) != ".go" {
			return false
		}
		return includeTests || !strings.HasSuffix(p, "_test.go")
	}
	for _, path := range paths {
		path = filepath.Clean(path)
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			if !wanted(path) {
				continue
			}
			if err := e.extractPath(path); err != nil {
				return err
			}
			continue
		}
		err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if _, skip := excludeSet[info.Name()]; skip && p != path {
					return filepath.SkipDir
				}
				return nil
			}
			if !wanted(p) {
				return nil
			}
			return e.extractPath(p)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *keyExtractor) extractPath(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return e.extractFromFile(path, src)
}

func (e *keyExtractor) extractFromFile(path string, src []byte) error {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, src, 0)
	if err != nil {
		return err
	}
	e.importsCatcomp = false
	for _, imp := range f.Imports {
		if imp.Path != nil && strings.Trim(imp.Path.Value, `"`) == e.catcompImport {
			e.importsCatcomp = true
			break
		}
	}
	if !e.importsCatcomp {
		return nil
	}
	ast.Walk(e, f)
	return nil
}

func (e *keyExtractor) Visit(node ast.Node) ast.Visitor {
	call, ok := node.(*ast.CallExpr)
	if !ok {
		return e
	}
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return e
	}
	idx, ok := e.methodArgIdx[sel.Sel.Name]
	if !ok || idx >= len(call.Args) {
		return e
	}
	if key := e.extractString(call.Args[idx]); key != "" {
		e.keys[key] = struct{}{}
	}
	return e
}

func (e *keyExtractor) extractString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.BasicLit:
		if t.Kind == token.STRING {
			s, err := strconv.Unquote(t.Value)
			if err != nil {
				return ""
			}
			return s
		}
	case *ast.BinaryExpr:
		if t.Op == token.ADD {
			x, y := e.extractString(t.X), e.extractString(t.Y)
			if x == "" || y == "" {
				return ""
			}
			return x + y
		}
	}
	return ""
}

func (e *keyExtractor) sortedKeys() []string {
	out := make([]string, 0, len(e.keys))
	for k := range e.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
