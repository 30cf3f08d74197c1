package catcomp

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"path"
	"strings"

	"github.com/loopcontext/catcomp/internal/csource"
	"github.com/loopcontext/catcomp/internal/ctlg"
)

// Emit generates the artifact of one target in memory. Embedded targets carry
// one symbol per identifier; a NoCode target is validated and comes back with
// neither data nor symbols.
func Emit(t *Table, target Target) (*Artifact, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	li, ok := t.langIdx[normalizeLanguage(target.Language)]
	if !ok {
		return nil, newCatalogError(ErrUnknownLanguage, target.Line, "", fmt.Sprintf("target %s uses %q", target.Kind, target.Language), nil)
	}
	a := &Artifact{Target: target, Path: target.Path}
	switch target.Kind {
	case KindC, KindGo:
		msgs, err := t.embeddedMessages(li, target.Kind)
		if err != nil {
			return nil, err
		}
		if target.Flags.Has(FlagNoCode) {
			return a, nil
		}
		opts := csource.Options{
			Source:       t.sourceName(),
			Language:     t.header.Languages[li],
			CharsPerLine: t.header.CharsPerLine,
		}
		var buf bytes.Buffer
		if target.Kind == KindC {
			err = csource.WriteC(&buf, target.Path, opts, msgs)
		} else {
			err = csource.WriteGo(&buf, target.Path, opts, msgs)
		}
		if err != nil {
			return nil, newCatalogError(ErrParse, target.Line, "", "generate "+target.Kind.String(), err)
		}
		a.Data = buf.Bytes()
		for _, m := range msgs {
			a.Symbols = append(a.Symbols, m.Symbol)
		}
	case KindCatalog:
		data, err := t.compileCatalog(li, target.Flags.Has(FlagOptimize))
		if err != nil {
			return nil, err
		}
		p, err := t.catalogPath(target)
		if err != nil {
			return nil, err
		}
		a.Path = p
		a.Data = data
	case KindYAML, KindTOML:
		var buf bytes.Buffer
		var err error
		if target.Kind == KindYAML {
			err = ExportYAML(t, target.Language, &buf)
		} else {
			err = ExportTOML(t, target.Language, &buf)
		}
		if err != nil {
			return nil, err
		}
		a.Data = buf.Bytes()
	default:
		return nil, newCatalogError(ErrParse, target.Line, "", fmt.Sprintf("unsupported target kind %s", target.Kind), nil)
	}
	return a, nil
}

func (t *Table) sourceName() string {
	if t.header.Version == nil {
		return ""
	}
	v := t.header.Version
	return fmt.Sprintf("%s %d.%d", v.Name, v.Major, v.Minor)
}

// embeddedMessages maps identifiers to symbols; two identifiers may not share
// one. C headers also define <SYMBOL>_STR, so that name is reserved as well.
func (t *Table) embeddedMessages(li int, kind TargetKind) ([]csource.Message, error) {
	msgs := make([]csource.Message, 0, len(t.entries))
	owner := make(map[string]string, 2*len(t.entries))
	for _, e := range t.entries {
		sym := csource.Symbol(e.Identifier)
		if kind == KindGo && token.IsKeyword(sym) {
			return nil, newCatalogError(ErrParse, e.Line, e.Identifier, fmt.Sprintf("symbol %s is a Go keyword", sym), nil)
		}
		names := []string{sym}
		if kind == KindC {
			names = append(names, sym+"_STR")
		}
		for _, name := range names {
			if other, dup := owner[name]; dup {
				return nil, newCatalogError(ErrDuplicateIdentifier, e.Line, e.Identifier, fmt.Sprintf("symbol %s also used by %s", name, other), nil)
			}
		}
		for _, name := range names {
			owner[name] = e.Identifier
		}
		msgs = append(msgs, csource.Message{Symbol: sym, ID: e.ID, Text: e.Strings[li]})
	}
	return msgs, nil
}

// catalogPath resolves a directory target ("bin/catalogs/polski/") to the file
// named after the catalog version.
func (t *Table) catalogPath(target Target) (string, error) {
	if !strings.HasSuffix(target.Path, "/") {
		return target.Path, nil
	}
	if t.header.Version == nil {
		return "", newCatalogError(ErrParse, target.Line, "", "directory target needs a ## Version name", nil)
	}
	return path.Join(target.Path, t.header.Version.Name), nil
}

func (t *Table) compileCatalog(li int, optimize bool) ([]byte, error) {
	lang := t.header.Languages[li]
	cs := t.header.Codesets[lang]
	enc, err := cs.Encoding()
	if err != nil {
		return nil, newCatalogError(ErrEncoding, 0, "", lang, err)
	}
	c := &ctlg.Catalog{Language: lang, Codeset: uint32(cs)}
	if t.header.Version != nil {
		c.Version = t.header.Version.String()
	}
	for _, e := range t.entries {
		s := e.Strings[li]
		if optimize && s == e.Strings[0] {
			continue
		}
		text := []byte(s)
		if enc != nil {
			text, err = enc.NewEncoder().Bytes(text)
			if err != nil {
				return nil, newCatalogError(ErrEncoding, e.Line, e.Identifier, fmt.Sprintf("not representable in %s", cs.Name()), err)
			}
		}
		c.Strings = append(c.Strings, ctlg.String{ID: e.ID, Text: text})
	}
	data, err := ctlg.Encode(c)
	if err != nil {
		return nil, newCatalogError(ErrEncoding, 0, "", lang, err)
	}
	return data, nil
}

// WriteArtifact writes a through sink. The destination is closed on every path;
// write and close failures are reported as ErrIO.
func WriteArtifact(sink Sink, a *Artifact) (err error) {
	w, err := sink.Create(a.Path)
	if err != nil {
		return newCatalogError(ErrIO, a.Target.Line, "", "create "+a.Path, err)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = newCatalogError(ErrIO, a.Target.Line, "", "close "+a.Path, cerr)
		}
	}()
	if _, err := w.Write(a.Data); err != nil {
		return newCatalogError(ErrIO, a.Target.Line, "", "write "+a.Path, err)
	}
	return nil
}

// Build emits and writes every target of the table. A failing target does not
// stop the others; the returned error joins all target failures.
func Build(t *Table, sink Sink) ([]*Artifact, error) {
	return BuildTargets(t, sink, t.header.Targets)
}

// BuildTargets is Build restricted to the given targets.
func BuildTargets(t *Table, sink Sink, targets []Target) ([]*Artifact, error) {
	var artifacts []*Artifact
	var errs []error
	for _, target := range targets {
		a, err := Emit(t, target)
		if err != nil {
			errs = append(errs, fmt.Errorf("target %s: %w", target, err))
			continue
		}
		if a.Data != nil {
			if err := WriteArtifact(sink, a); err != nil {
				errs = append(errs, fmt.Errorf("target %s: %w", target, err))
				continue
			}
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, errors.Join(errs...)
}
