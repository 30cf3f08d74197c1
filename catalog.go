// Package catcomp parses SimpleCat/CatComp style catalog descriptions, answers
// lookups by identifier and language, and generates the per-target artifacts
// declared in the catalog header: embedded source (C or Go) and compiled
// binary catalogs.
package catcomp

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/language"
)

var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// MessageCatalog is the read-only view the consuming application needs.
type MessageCatalog interface {
	Lookup(identifier string, lang string) (string, error)
	LookupID(id uint32, lang string) (string, error)
	Languages() []string
}

// Table is a parsed catalog. It is never mutated after construction and may be
// shared between goroutines without locking.
type Table struct {
	header  Header
	entries []Entry
	index   map[string]int
	langIdx map[string]int
}

var _ MessageCatalog = (*Table)(nil)

func normalizeLanguage(lang string) string {
	return strings.TrimSpace(strings.ToLower(lang))
}

// NewTable validates header and entries and builds the lookup indexes. Entry IDs
// are assigned from the entry position.
func NewTable(h Header, entries []Entry) (*Table, error) {
	t := &Table{
		header:  copyHeader(h),
		entries: make([]Entry, len(entries)),
		index:   make(map[string]int, len(entries)),
		langIdx: make(map[string]int, len(h.Languages)),
	}
	for i, lang := range t.header.Languages {
		lang = normalizeLanguage(lang)
		if lang == "" {
			return nil, newCatalogError(ErrParse, 0, "", "empty language name", nil)
		}
		if _, dup := t.langIdx[lang]; dup {
			return nil, newCatalogError(ErrParse, 0, "", fmt.Sprintf("language %q declared twice", lang), nil)
		}
		t.header.Languages[i] = lang
		t.langIdx[lang] = i
	}
	for i, e := range entries {
		e.ID = uint32(i)
		e.Strings = append([]string(nil), e.Strings...)
		t.entries[i] = e
		t.index[e.Identifier] = i
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func copyHeader(h Header) Header {
	out := h
	out.Languages = append([]string(nil), h.Languages...)
	out.Targets = append([]Target(nil), h.Targets...)
	out.Codesets = make(map[string]Codeset, len(h.Codesets))
	for lang, cs := range h.Codesets {
		out.Codesets[normalizeLanguage(lang)] = cs
	}
	out.Config = make(map[string]string, len(h.Config))
	for k, v := range h.Config {
		out.Config[k] = v
	}
	if h.Version != nil {
		v := *h.Version
		out.Version = &v
	}
	return out
}

// Validate checks the table invariants: one string per declared language for
// every entry, unique well-formed identifiers, and declared languages for every
// codeset and target.
func (t *Table) Validate() error {
	if len(t.header.Languages) == 0 {
		return newCatalogError(ErrParse, 0, "", "no languages declared", nil)
	}
	seen := make(map[string]int, len(t.entries))
	for _, e := range t.entries {
		if !identifierRegex.MatchString(e.Identifier) {
			return newCatalogError(ErrParse, e.Line, e.Identifier, "invalid identifier", nil)
		}
		if first, dup := seen[e.Identifier]; dup {
			return newCatalogError(ErrDuplicateIdentifier, e.Line, e.Identifier, fmt.Sprintf("first defined on line %d", first), nil)
		}
		seen[e.Identifier] = e.Line
		if len(e.Strings) != len(t.header.Languages) {
			return newCatalogError(ErrMalformedEntry, e.Line, e.Identifier,
				fmt.Sprintf("%d translations for %d languages", len(e.Strings), len(t.header.Languages)), nil)
		}
	}
	for lang := range t.header.Codesets {
		if _, ok := t.langIdx[lang]; !ok {
			return newCatalogError(ErrUnknownLanguage, 0, "", fmt.Sprintf("codeset for %q", lang), nil)
		}
	}
	for _, target := range t.header.Targets {
		if _, ok := t.langIdx[normalizeLanguage(target.Language)]; !ok {
			return newCatalogError(ErrUnknownLanguage, target.Line, "", fmt.Sprintf("target %s uses %q", target.Kind, target.Language), nil)
		}
	}
	return nil
}

// Header returns a copy of the catalog header.
func (t *Table) Header() Header {
	return copyHeader(t.header)
}

func (t *Table) Languages() []string {
	return append([]string(nil), t.header.Languages...)
}

func (t *Table) BaseLanguage() string {
	return t.header.BaseLanguage()
}

func (t *Table) Targets() []Target {
	return append([]Target(nil), t.header.Targets...)
}

func (t *Table) Len() int {
	return len(t.entries)
}

// Entries returns the entries in source order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	for i, e := range t.entries {
		e.Strings = append([]string(nil), e.Strings...)
		out[i] = e
	}
	return out
}

// Entry returns the entry named identifier.
func (t *Table) Entry(identifier string) (Entry, bool) {
	i, ok := t.index[identifier]
	if !ok {
		return Entry{}, false
	}
	e := t.entries[i]
	e.Strings = append([]string(nil), e.Strings...)
	return e, true
}

// Codeset returns the codeset declared for lang, CodesetDefault when none was.
func (t *Table) Codeset(lang string) Codeset {
	return t.header.Codesets[normalizeLanguage(lang)]
}

func (t *Table) languageIndex(lang string) (int, error) {
	li, ok := t.langIdx[normalizeLanguage(lang)]
	if !ok {
		return 0, newCatalogError(ErrUnknownLanguage, 0, "", fmt.Sprintf("%q", lang), nil)
	}
	return li, nil
}

// Lookup returns the string of identifier in lang exactly as it appears in the
// source. Placeholders are left for the caller to substitute.
func (t *Table) Lookup(identifier string, lang string) (string, error) {
	li, err := t.languageIndex(lang)
	if err != nil {
		return "", err
	}
	i, ok := t.index[identifier]
	if !ok {
		return "", newCatalogError(ErrUnknownIdentifier, 0, identifier, "", nil)
	}
	return t.entries[i].Strings[li], nil
}

// LookupID is Lookup by numeric message ID.
func (t *Table) LookupID(id uint32, lang string) (string, error) {
	li, err := t.languageIndex(lang)
	if err != nil {
		return "", err
	}
	if int64(id) >= int64(len(t.entries)) {
		return "", newCatalogError(ErrUnknownIdentifier, 0, "", fmt.Sprintf("id %d", id), nil)
	}
	return t.entries[id].Strings[li], nil
}

// Strings returns identifier -> string for lang.
func (t *Table) Strings(lang string) (map[string]string, error) {
	li, err := t.languageIndex(lang)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(t.entries))
	for _, e := range t.entries {
		out[e.Identifier] = e.Strings[li]
	}
	return out, nil
}

// Match picks the declared language that best serves the given BCP 47 tags.
func (t *Table) Match(tags ...language.Tag) (string, bool) {
	var supported []language.Tag
	var names []string
	for _, lang := range t.header.Languages {
		tag, err := LanguageTag(lang)
		if err != nil {
			continue
		}
		supported = append(supported, tag)
		names = append(names, lang)
	}
	if len(supported) == 0 {
		return "", false
	}
	_, idx, conf := language.NewMatcher(supported).Match(tags...)
	if conf == language.No {
		return "", false
	}
	return names[idx], true
}
