package catcomp

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

const blockTerminator = ";"

var versionRegex = regexp.MustCompile(`^\$VER:\s+(\S+)\s+(\d+)\.(\d+)(?:\s+\(([^)]*)\))?\s*$`)

// FallbackPolicy decides what happens when an entry lacks a translation.
type FallbackPolicy int

const (
	// FallbackNone rejects incomplete entries with ErrMalformedEntry.
	FallbackNone FallbackPolicy = iota
	// FallbackBase fills missing or empty translations with the base-language string.
	FallbackBase
)

// ParseFallbackPolicy accepts "none" or "base".
func ParseFallbackPolicy(s string) (FallbackPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return FallbackNone, nil
	case "base":
		return FallbackBase, nil
	default:
		return FallbackNone, fmt.Errorf("unknown fallback policy %q", s)
	}
}

func (p FallbackPolicy) String() string {
	if p == FallbackBase {
		return "base"
	}
	return "none"
}

type parseConfig struct {
	fallback FallbackPolicy
}

type ParseOption func(*parseConfig)

// WithFallback sets the policy for incomplete entries.
func WithFallback(policy FallbackPolicy) ParseOption {
	return func(cfg *parseConfig) {
		cfg.fallback = policy
	}
}

// ParseFile reads and parses the catalog description at path.
func ParseFile(path string, opts ...ParseOption) (*Table, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, newCatalogError(ErrIO, 0, "", "read "+path, err)
	}
	return Parse(src, opts...)
}

// Parse reads header directives and entry blocks. Strings are kept byte for
// byte, apart from the line terminator.
func Parse(src []byte, opts ...ParseOption) (*Table, error) {
	var cfg parseConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	p := &parser{
		cfg:   cfg,
		lines: splitLines(string(src)),
		header: Header{
			Codesets: map[string]Codeset{},
			Config:   map[string]string{},
		},
		seen: map[string]int{},
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	return NewTable(p.header, p.entries)
}

func splitLines(src string) []string {
	src = strings.TrimPrefix(src, "\ufeff")
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

type parser struct {
	cfg     parseConfig
	lines   []string
	pos     int
	header  Header
	entries []Entry
	seen    map[string]int
}

func (p *parser) run() error {
	for p.pos < len(p.lines) {
		lineNo := p.pos + 1
		trimmed := strings.TrimSpace(p.lines[p.pos])
		p.pos++
		switch {
		case trimmed == "":
			continue
		case strings.HasPrefix(trimmed, "##"):
			if err := p.directive(lineNo, strings.TrimSpace(trimmed[2:])); err != nil {
				return err
			}
		case trimmed == blockTerminator:
			return newCatalogError(ErrParse, lineNo, "", "block terminator without identifier", nil)
		default:
			if err := p.entry(lineNo, trimmed); err != nil {
				return err
			}
		}
	}
	return p.checkLanguages()
}

func (p *parser) entry(lineNo int, ident string) error {
	if len(p.header.Languages) == 0 {
		return newCatalogError(ErrParse, lineNo, ident, "entry before ## Languages", nil)
	}
	if !identifierRegex.MatchString(ident) {
		return newCatalogError(ErrParse, lineNo, ident, "invalid identifier", nil)
	}
	var strs []string
	terminated := false
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		p.pos++
		if line == blockTerminator {
			terminated = true
			break
		}
		strs = append(strs, line)
	}
	if !terminated {
		return newCatalogError(ErrMalformedEntry, lineNo, ident, "missing block terminator", nil)
	}
	want := len(p.header.Languages)
	if len(strs) > want || len(strs) == 0 || (len(strs) < want && p.cfg.fallback != FallbackBase) {
		return newCatalogError(ErrMalformedEntry, lineNo, ident, fmt.Sprintf("%d translations for %d languages", len(strs), want), nil)
	}
	if p.cfg.fallback == FallbackBase {
		for len(strs) < want {
			strs = append(strs, "")
		}
		for i := 1; i < want; i++ {
			if strs[i] == "" {
				strs[i] = strs[0]
			}
		}
	}
	if first, dup := p.seen[ident]; dup {
		return newCatalogError(ErrDuplicateIdentifier, lineNo, ident, fmt.Sprintf("first defined on line %d", first), nil)
	}
	p.seen[ident] = lineNo
	p.entries = append(p.entries, Entry{Identifier: ident, Strings: strs, Line: lineNo})
	return nil
}

func (p *parser) directive(lineNo int, body string) error {
	name := body
	rest := ""
	if idx := strings.IndexAny(body, " \t"); idx >= 0 {
		name, rest = body[:idx], strings.TrimSpace(body[idx+1:])
	}
	if name == "" {
		return newCatalogError(ErrParse, lineNo, "", "empty directive", nil)
	}
	switch strings.ToLower(name) {
	case "version":
		return p.version(lineNo, rest)
	case "languages":
		return p.languages(lineNo, rest)
	case "codeset":
		return p.codeset(lineNo, rest)
	case "simplecatconfig":
		return p.config(lineNo, rest)
	case "target":
		return p.target(lineNo, rest)
	default:
		return newCatalogError(ErrParse, lineNo, "", fmt.Sprintf("unknown directive %q", name), nil)
	}
}

func (p *parser) version(lineNo int, rest string) error {
	m := versionRegex.FindStringSubmatch(rest)
	if m == nil {
		return newCatalogError(ErrParse, lineNo, "", fmt.Sprintf("malformed version %q", rest), nil)
	}
	major, _ := strconv.Atoi(m[2])
	minor, _ := strconv.Atoi(m[3])
	p.header.Version = &Version{Name: m[1], Major: major, Minor: minor, Date: m[4]}
	return nil
}

func (p *parser) languages(lineNo int, rest string) error {
	if len(p.header.Languages) > 0 {
		return newCatalogError(ErrParse, lineNo, "", "languages declared twice", nil)
	}
	langs := strings.Fields(rest)
	if len(langs) == 0 {
		return newCatalogError(ErrParse, lineNo, "", "no languages declared", nil)
	}
	seen := map[string]struct{}{}
	for _, lang := range langs {
		lang = normalizeLanguage(lang)
		if _, dup := seen[lang]; dup {
			return newCatalogError(ErrParse, lineNo, "", fmt.Sprintf("language %q declared twice", lang), nil)
		}
		seen[lang] = struct{}{}
		p.header.Languages = append(p.header.Languages, lang)
	}
	return nil
}

func (p *parser) codeset(lineNo int, rest string) error {
	args := strings.Fields(rest)
	if len(args) != 2 {
		return newCatalogError(ErrParse, lineNo, "", "usage: ## Codeset <language> <codeset>", nil)
	}
	cs, err := CodesetByName(args[1])
	if err != nil || cs < 0 {
		return newCatalogError(ErrParse, lineNo, "", fmt.Sprintf("invalid codeset %q", args[1]), err)
	}
	lang := normalizeLanguage(args[0])
	if !p.declared(lang) {
		return newCatalogError(ErrUnknownLanguage, lineNo, "", fmt.Sprintf("codeset for %q", lang), nil)
	}
	p.header.Codesets[lang] = cs
	return nil
}

func (p *parser) config(lineNo int, rest string) error {
	args := strings.Fields(rest)
	if len(args) != 2 {
		return newCatalogError(ErrParse, lineNo, "", "usage: ## SimpleCatConfig <option> <value>", nil)
	}
	if strings.EqualFold(args[0], "CharsPerLine") {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 0 {
			return newCatalogError(ErrParse, lineNo, "", fmt.Sprintf("invalid CharsPerLine %q", args[1]), nil)
		}
		p.header.CharsPerLine = n
		return nil
	}
	p.header.Config[args[0]] = args[1]
	return nil
}

func (p *parser) target(lineNo int, rest string) error {
	args, err := splitQuoted(rest)
	if err != nil {
		return newCatalogError(ErrParse, lineNo, "", "target", err)
	}
	if len(args) < 3 {
		return newCatalogError(ErrParse, lineNo, "", `usage: ## TARGET <kind> <language> "<path>" [flags]`, nil)
	}
	kind, err := ParseTargetKind(args[0])
	if err != nil {
		return newCatalogError(ErrParse, lineNo, "", "target", err)
	}
	t := Target{Kind: kind, Language: normalizeLanguage(args[1]), Path: args[2], Line: lineNo}
	if t.Path == "" {
		return newCatalogError(ErrParse, lineNo, "", "target path is empty", nil)
	}
	for _, word := range args[3:] {
		flag, err := ParseTargetFlag(word)
		if err != nil {
			return newCatalogError(ErrParse, lineNo, "", "target", err)
		}
		if kind.allowedFlags()&flag == 0 {
			return newCatalogError(ErrParse, lineNo, "", fmt.Sprintf("flag %s not valid for %s targets", flag, kind), nil)
		}
		t.Flags |= flag
	}
	p.header.Targets = append(p.header.Targets, t)
	return nil
}

func (p *parser) declared(lang string) bool {
	for _, l := range p.header.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// checkLanguages runs once the whole file is read, since TARGET lines may come
// before ## Languages.
func (p *parser) checkLanguages() error {
	if len(p.header.Languages) == 0 {
		return newCatalogError(ErrParse, 0, "", "no ## Languages directive", nil)
	}
	for _, t := range p.header.Targets {
		if !p.declared(t.Language) {
			return newCatalogError(ErrUnknownLanguage, t.Line, "", fmt.Sprintf("target %s uses %q", t.Kind, t.Language), nil)
		}
	}
	return nil
}

// splitQuoted splits on whitespace; a double-quoted field may contain spaces.
func splitQuoted(s string) ([]string, error) {
	var out []string
	var cur strings.Builder
	inQuote, inField := false, false
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			inField = true
		case !inQuote && (r == ' ' || r == '\t'):
			if inField {
				out = append(out, cur.String())
				cur.Reset()
				inField = false
			}
		default:
			cur.WriteRune(r)
			inField = true
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated quote in %q", s)
	}
	if inField {
		out = append(out, cur.String())
	}
	return out, nil
}
