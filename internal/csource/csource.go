// Package csource generates embedded-source artifacts: CatComp style C headers
// and Go constant files. Strings are written in the notation they have in the
// catalog; the readers in this package recover that notation from generated files.
package csource

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Message is one symbol of a generated file.
type Message struct {
	Symbol string
	ID     uint32
	Text   string
}

// Options control the generated file.
type Options struct {
	// Source names the catalog in the generated comment.
	Source string
	// Language is the catalog language bound to the symbols.
	Language string
	// CharsPerLine wraps C string literals; zero disables wrapping.
	CharsPerLine int
}

// Symbol maps a catalog identifier to a C or Go identifier.
func Symbol(identifier string) string {
	return strings.ReplaceAll(identifier, ".", "_")
}

// Guard derives the include guard from the header path, e.g. "translations.h"
// becomes TRANSLATIONS_H.
func Guard(path string) string {
	base := filepath.Base(path)
	var b strings.Builder
	for _, r := range strings.ToUpper(base) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	guard := b.String()
	if guard == "" || (guard[0] >= '0' && guard[0] <= '9') {
		guard = "_" + guard
	}
	return guard
}

// WriteC writes a header with message numbers, strings and a CatCompArray.
func WriteC(w io.Writer, path string, opts Options, msgs []Message) error {
	bw := bufio.NewWriter(w)
	guard := Guard(path)

	fmt.Fprintf(bw, "/* %s: generated by catcomp", filepath.Base(path))
	if opts.Source != "" {
		fmt.Fprintf(bw, " from %s", opts.Source)
	}
	if opts.Language != "" {
		fmt.Fprintf(bw, " (%s)", opts.Language)
	}
	bw.WriteString(". Do not edit. */\n\n")
	fmt.Fprintf(bw, "#ifndef %s\n#define %s 1\n\n", guard, guard)

	bw.WriteString("#ifdef CATCOMP_ARRAY\n#ifndef CATCOMP_NUMBERS\n#define CATCOMP_NUMBERS\n#endif\n#ifndef CATCOMP_STRINGS\n#define CATCOMP_STRINGS\n#endif\n#endif\n\n")
	bw.WriteString("#ifdef CATCOMP_BLOCK\n#ifndef CATCOMP_STRINGS\n#define CATCOMP_STRINGS\n#endif\n#endif\n\n")

	bw.WriteString("#ifdef CATCOMP_NUMBERS\n\n")
	for _, m := range msgs {
		fmt.Fprintf(bw, "#define %s %d\n", m.Symbol, m.ID)
	}
	bw.WriteString("\n#endif /* CATCOMP_NUMBERS */\n\n")

	bw.WriteString("#ifdef CATCOMP_STRINGS\n\n")
	for _, m := range msgs {
		writeDefine(bw, m.Symbol+"_STR", m.Text, opts.CharsPerLine)
	}
	bw.WriteString("\n#endif /* CATCOMP_STRINGS */\n\n")

	bw.WriteString("#ifdef CATCOMP_ARRAY\n\n")
	bw.WriteString("struct CatCompArrayType\n{\n\tLONG   cca_ID;\n\tSTRPTR cca_Str;\n};\n\n")
	bw.WriteString("static const struct CatCompArrayType CatCompArray[] =\n{\n")
	for _, m := range msgs {
		fmt.Fprintf(bw, "\t{%s, (STRPTR)%s_STR},\n", m.Symbol, m.Symbol)
	}
	bw.WriteString("};\n\n#endif /* CATCOMP_ARRAY */\n\n")
	fmt.Fprintf(bw, "#endif /* %s */\n", guard)
	return bw.Flush()
}

func writeDefine(w *bufio.Writer, name string, text string, width int) {
	chunks := wrap(quoteC(text), width)
	fmt.Fprintf(w, "#define %s \"%s\"", name, chunks[0])
	for _, c := range chunks[1:] {
		fmt.Fprintf(w, "\\\n\t\"%s\"", c)
	}
	w.WriteByte('\n')
}

// quoteC escapes double quotes that are not already escaped. Everything else,
// escape sequences included, is kept as written in the catalog.
func quoteC(s string) string {
	var b strings.Builder
	backslashes := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' && backslashes%2 == 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
		if c == '\\' {
			backslashes++
		} else {
			backslashes = 0
		}
	}
	// a dangling backslash would escape the closing quote
	if backslashes%2 != 0 {
		b.WriteByte('\\')
	}
	return b.String()
}

// wrap cuts a C literal body into chunks of at most width runes without
// splitting an escape sequence.
func wrap(s string, width int) []string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return []string{s}
	}
	var chunks []string
	var cur strings.Builder
	n := 0
	for _, unit := range literalUnits(s) {
		u := utf8.RuneCountInString(unit)
		if n > 0 && n+u > width {
			chunks = append(chunks, cur.String())
			cur.Reset()
			n = 0
		}
		cur.WriteString(unit)
		n += u
	}
	if cur.Len() > 0 || len(chunks) == 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

func literalUnits(s string) []string {
	var units []string
	for i := 0; i < len(s); {
		if s[i] != '\\' || i+1 >= len(s) {
			_, size := utf8.DecodeRuneInString(s[i:])
			units = append(units, s[i:i+size])
			i += size
			continue
		}
		j := i + 2
		switch {
		case s[i+1] == 'x':
			for j < len(s) && isHex(s[j]) {
				j++
			}
		case isOctal(s[i+1]):
			for j < len(s) && j < i+4 && isOctal(s[j]) {
				j++
			}
		}
		units = append(units, s[i:j])
		i = j
	}
	return units
}

func isOctal(c byte) bool {
	return c >= '0' && c <= '7'
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// ReadC recovers symbol -> string from the `#define <SYMBOL>_STR "..."` lines
// of a header written by WriteC. Escaped quotes are turned back into plain quotes,
// so the result equals the catalog text only up to C escaping: a catalog `\"`
// reads back as `"` and a trailing lone `\` reads back as `\\`.
func ReadC(r io.Reader) (map[string]string, error) {
	out := map[string]string{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	var logical strings.Builder
	for sc.Scan() {
		line := sc.Text()
		if cont, ok := continuation(line); ok {
			logical.WriteString(cont)
			continue
		}
		logical.WriteString(line)
		if err := readDefine(logical.String(), out); err != nil {
			return nil, err
		}
		logical.Reset()
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if logical.Len() > 0 {
		if err := readDefine(logical.String(), out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// continuation reports whether line ends with a backslash outside any literal.
func continuation(line string) (string, bool) {
	trimmed := strings.TrimRight(line, " \t")
	if !strings.HasSuffix(trimmed, "\\") {
		return "", false
	}
	inLit := false
	for i := 0; i < len(trimmed)-1; i++ {
		switch trimmed[i] {
		case '\\':
			if inLit {
				i++
			}
		case '"':
			inLit = !inLit
		}
	}
	if inLit {
		return "", false
	}
	return trimmed[:len(trimmed)-1], true
}

func readDefine(line string, out map[string]string) error {
	fields := strings.Fields(line)
	if len(fields) < 3 || fields[0] != "#define" || !strings.HasSuffix(fields[1], "_STR") {
		return nil
	}
	rest := strings.TrimSpace(line[strings.Index(line, fields[1])+len(fields[1]):])
	if !strings.HasPrefix(rest, `"`) {
		return nil
	}
	var b strings.Builder
	for len(rest) > 0 {
		rest = strings.TrimLeft(rest, " \t")
		if rest == "" {
			break
		}
		if rest[0] != '"' {
			return fmt.Errorf("csource: unexpected %q in %s", rest, fields[1])
		}
		i := 1
		for ; i < len(rest); i++ {
			if rest[i] == '\\' && i+1 < len(rest) {
				if rest[i+1] == '"' {
					b.WriteByte('"')
				} else {
					b.WriteByte('\\')
					b.WriteByte(rest[i+1])
				}
				i++
				continue
			}
			if rest[i] == '"' {
				break
			}
			b.WriteByte(rest[i])
		}
		if i >= len(rest) {
			return fmt.Errorf("csource: unterminated literal in %s", fields[1])
		}
		rest = rest[i+1:]
	}
	out[strings.TrimSuffix(fields[1], "_STR")] = b.String()
	return nil
}
