package catcomp

import "sort"

// MergeReport describes what Merge did.
type MergeReport struct {
	Language string
	// Added is true when the language was not declared before.
	Added bool
	// Placeholders lists identifiers that got the base-language string because
	// the translation was missing or empty.
	Placeholders []string
	// Unknown lists translated identifiers the table does not define; they are dropped.
	Unknown []string
}

// Merge returns a copy of t in which the column of m.Language holds the strings
// of m. A new language is appended to the declared languages.
func Merge(t *Table, m *Messages) (*Table, MergeReport, error) {
	lang := normalizeLanguage(m.Language)
	report := MergeReport{Language: lang}
	h := copyHeader(t.header)
	li, exists := t.langIdx[lang]
	if !exists {
		h.Languages = append(h.Languages, lang)
		li = len(h.Languages) - 1
		report.Added = true
	}
	if m.Codeset != CodesetDefault {
		h.Codesets[lang] = m.Codeset
	}

	entries := make([]Entry, len(t.entries))
	for i, e := range t.entries {
		strs := append([]string(nil), e.Strings...)
		if !exists {
			strs = append(strs, "")
		}
		s, ok := m.Set[e.Identifier]
		if !ok || s == "" {
			s = e.Strings[0]
			report.Placeholders = append(report.Placeholders, e.Identifier)
		}
		strs[li] = s
		e.Strings = strs
		entries[i] = e
	}
	for ident := range m.Set {
		if _, ok := t.index[ident]; !ok {
			report.Unknown = append(report.Unknown, ident)
		}
	}
	sort.Strings(report.Unknown)

	merged, err := NewTable(h, entries)
	if err != nil {
		return nil, report, err
	}
	return merged, report, nil
}
