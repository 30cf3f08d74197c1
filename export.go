package catcomp

import (
	"fmt"
	"io"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v2"
)

// catalogLanguages maps the language names used in catalog headers to BCP 47 tags.
var catalogLanguages = map[string]language.Tag{
	"english":    language.English,
	"polski":     language.Polish,
	"deutsch":    language.German,
	"français":   language.French,
	"francais":   language.French,
	"español":    language.Spanish,
	"espanol":    language.Spanish,
	"italiano":   language.Italian,
	"nederlands": language.Dutch,
	"svenska":    language.Swedish,
	"dansk":      language.Danish,
	"norsk":      language.Norwegian,
	"suomi":      language.Finnish,
	"português":  language.Portuguese,
	"portugues":  language.Portuguese,
	"czech":      language.Czech,
	"čeština":    language.Czech,
	"magyar":     language.Hungarian,
	"russian":    language.Russian,
	"russky":     language.Russian,
	"greek":      language.Greek,
	"türkçe":     language.Turkish,
	"hrvatski":   language.Croatian,
	"srpski":     language.Serbian,
	"slovensko":  language.Slovenian,
}

// LanguageTag maps a catalog language name ("polski") to a BCP 47 tag. Names that
// are already tags ("pl", "en-GB") are parsed as such.
func LanguageTag(name string) (language.Tag, error) {
	name = normalizeLanguage(name)
	if tag, ok := catalogLanguages[name]; ok {
		return tag, nil
	}
	tag, err := language.Parse(name)
	if err != nil {
		return language.Und, newCatalogError(ErrUnknownLanguage, 0, "", fmt.Sprintf("no language tag for %q", name), err)
	}
	return tag, nil
}

// ExportYAML writes the strings of lang as a YAML document, entries in source order.
func ExportYAML(t *Table, lang string, w io.Writer) error {
	li, err := t.languageIndex(lang)
	if err != nil {
		return err
	}
	name := t.header.Languages[li]
	doc := yaml.MapSlice{{Key: "language", Value: name}}
	if cs := t.header.Codesets[name]; cs != CodesetDefault {
		doc = append(doc, yaml.MapItem{Key: "codeset", Value: int(cs)})
	}
	set := make(yaml.MapSlice, 0, len(t.entries))
	for _, e := range t.entries {
		set = append(set, yaml.MapItem{Key: e.Identifier, Value: e.Strings[li]})
	}
	doc = append(doc, yaml.MapItem{Key: "set", Value: set})
	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal YAML: %w", err)
	}
	if _, err := w.Write(out); err != nil {
		return newCatalogError(ErrIO, 0, "", "write YAML", err)
	}
	return nil
}

// ImportYAML reads a document written by ExportYAML.
func ImportYAML(r io.Reader) (*Messages, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, newCatalogError(ErrIO, 0, "", "read YAML", err)
	}
	var m Messages
	if err := yaml.Unmarshal(src, &m); err != nil {
		return nil, newCatalogError(ErrParse, 0, "", "unmarshal YAML", err)
	}
	m.Language = normalizeLanguage(m.Language)
	if m.Language == "" {
		return nil, newCatalogError(ErrParse, 0, "", "YAML document has no language", nil)
	}
	if m.Set == nil {
		m.Set = map[string]string{}
	}
	return &m, nil
}

// ExportTOML writes the strings of lang as a go-i18n message file.
func ExportTOML(t *Table, lang string, w io.Writer) error {
	strs, err := t.Strings(lang)
	if err != nil {
		return err
	}
	out, err := toml.Marshal(strs)
	if err != nil {
		return fmt.Errorf("marshal TOML: %w", err)
	}
	if _, err := w.Write(out); err != nil {
		return newCatalogError(ErrIO, 0, "", "write TOML", err)
	}
	return nil
}

// Bundle loads every language of the table into a go-i18n bundle whose default
// language is the base language. The bundle also accepts TOML message files.
func Bundle(t *Table) (*i18n.Bundle, error) {
	base, err := LanguageTag(t.BaseLanguage())
	if err != nil {
		return nil, err
	}
	bundle := i18n.NewBundle(base)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	for li, lang := range t.header.Languages {
		tag, err := LanguageTag(lang)
		if err != nil {
			return nil, err
		}
		msgs := make([]*i18n.Message, 0, len(t.entries))
		for _, e := range t.entries {
			msgs = append(msgs, &i18n.Message{ID: e.Identifier, Other: e.Strings[li]})
		}
		if err := bundle.AddMessages(tag, msgs...); err != nil {
			return nil, fmt.Errorf("bundle %s: %w", lang, err)
		}
	}
	return bundle, nil
}

// TextCatalog builds an x/text message catalog with the base language as fallback.
func TextCatalog(t *Table) (*catalog.Builder, error) {
	base, err := LanguageTag(t.BaseLanguage())
	if err != nil {
		return nil, err
	}
	b := catalog.NewBuilder(catalog.Fallback(base))
	for li, lang := range t.header.Languages {
		tag, err := LanguageTag(lang)
		if err != nil {
			return nil, err
		}
		for _, e := range t.entries {
			if err := b.SetString(tag, e.Identifier, e.Strings[li]); err != nil {
				return nil, fmt.Errorf("catalog %s/%s: %w", lang, e.Identifier, err)
			}
		}
	}
	return b, nil
}
