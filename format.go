package catcomp

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Format writes t as catalog source text. Parsing the output yields an equal table.
func Format(t *Table, w io.Writer) error {
	bw := bufio.NewWriter(w)
	h := t.header
	if h.Version != nil {
		fmt.Fprintf(bw, "## Version %s\n", h.Version)
	}
	fmt.Fprintf(bw, "## Languages %s\n", strings.Join(h.Languages, " "))
	for _, lang := range h.Languages {
		if cs, ok := h.Codesets[lang]; ok {
			fmt.Fprintf(bw, "## Codeset %s %d\n", lang, int(cs))
		}
	}
	if h.CharsPerLine > 0 {
		fmt.Fprintf(bw, "## SimpleCatConfig CharsPerLine %d\n", h.CharsPerLine)
	}
	keys := make([]string, 0, len(h.Config))
	for k := range h.Config {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(bw, "## SimpleCatConfig %s %s\n", k, h.Config[k])
	}
	for _, target := range h.Targets {
		fmt.Fprintf(bw, "## TARGET %s %s \"%s\"", target.Kind, target.Language, target.Path)
		if target.Flags != 0 {
			fmt.Fprintf(bw, " %s", target.Flags)
		}
		bw.WriteByte('\n')
	}
	for _, e := range t.entries {
		bw.WriteString(e.Identifier)
		bw.WriteByte('\n')
		for _, s := range e.Strings {
			if strings.ContainsAny(s, "\r\n") || s == blockTerminator {
				return newCatalogError(ErrMalformedEntry, e.Line, e.Identifier, "string cannot be written as one catalog line", nil)
			}
			bw.WriteString(s)
			bw.WriteByte('\n')
		}
		bw.WriteString(blockTerminator + "\n")
	}
	if err := bw.Flush(); err != nil {
		return newCatalogError(ErrIO, 0, "", "write catalog", err)
	}
	return nil
}
