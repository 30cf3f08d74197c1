package csource

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"io"
	"path/filepath"
	"strconv"
	"strings"
)

// PackageName derives the Go package of a generated file from its directory,
// falling back to "translations".
func PackageName(path string) string {
	dir := filepath.Base(filepath.Dir(path))
	name := strings.ToLower(strings.NewReplacer("-", "_", ".", "_").Replace(dir))
	if !token.IsIdentifier(name) || name == "_" {
		return "translations"
	}
	return name
}

// WriteGo writes a gofmt'ed file declaring one string constant per message.
func WriteGo(w io.Writer, path string, opts Options, msgs []Message) error {
	var b bytes.Buffer
	fmt.Fprintf(&b, "// Code generated by catcomp")
	if opts.Source != "" {
		fmt.Fprintf(&b, " from %s", opts.Source)
	}
	b.WriteString("; DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", PackageName(path))
	if opts.Language != "" {
		fmt.Fprintf(&b, "// Messages in %s.\n", opts.Language)
	}
	b.WriteString("const (\n")
	for _, m := range msgs {
		if !token.IsIdentifier(m.Symbol) {
			return fmt.Errorf("csource: %q is not a valid Go identifier", m.Symbol)
		}
		fmt.Fprintf(&b, "\t%s = %s\n", m.Symbol, strconv.Quote(m.Text))
	}
	b.WriteString(")\n")

	src, err := format.Source(b.Bytes())
	if err != nil {
		return fmt.Errorf("csource: format generated Go: %w", err)
	}
	_, err = w.Write(src)
	return err
}

// ReadGo recovers symbol -> string from the string constants of a Go file.
func ReadGo(r io.Reader) (map[string]string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f, err := parser.ParseFile(token.NewFileSet(), "generated.go", src, 0)
	if err != nil {
		return nil, err
	}
	out := map[string]string{}
	for _, decl := range f.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.CONST {
			continue
		}
		for _, spec := range gen.Specs {
			vs := spec.(*ast.ValueSpec)
			for i, name := range vs.Names {
				if i >= len(vs.Values) {
					continue
				}
				lit, ok := vs.Values[i].(*ast.BasicLit)
				if !ok || lit.Kind != token.STRING {
					continue
				}
				s, err := strconv.Unquote(lit.Value)
				if err != nil {
					return nil, fmt.Errorf("csource: constant %s: %w", name.Name, err)
				}
				out[name.Name] = s
			}
		}
	}
	return out, nil
}
