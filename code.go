package catcomp

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// Codeset is the character set of a language, as an IANA MIB number. Zero means
// the language has no codeset of its own and inherits the platform default, which
// for this toolchain is UTF-8: strings are written as they appear in the source.
// YAML accepts the number or an IANA name (e.g. codeset: 5 or codeset: "ISO-8859-2").
type Codeset int

const (
	CodesetDefault Codeset = 0
	CodesetUTF8    Codeset = 106
)

// UnmarshalYAML allows codeset to be given as int or IANA name in YAML.
func (c *Codeset) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var v interface{}
	if err := unmarshal(&v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*c = CodesetDefault
		return nil
	case int:
		*c = Codeset(t)
		return nil
	case string:
		cs, err := CodesetByName(t)
		if err != nil {
			return err
		}
		*c = cs
		return nil
	default:
		return fmt.Errorf("codeset must be int or string, got %T", v)
	}
}

// CodesetByName resolves an IANA charset name or a decimal MIB number.
func CodesetByName(name string) (Codeset, error) {
	name = strings.TrimSpace(name)
	if n, err := strconv.Atoi(name); err == nil {
		return Codeset(n), nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return 0, fmt.Errorf("unsupported codeset %q", name)
	}
	if enc == unicode.UTF8 {
		return CodesetUTF8, nil
	}
	if cm, ok := enc.(*charmap.Charmap); ok {
		mib, _ := cm.ID()
		return Codeset(mib), nil
	}
	return 0, fmt.Errorf("unsupported codeset %q", name)
}

// Encoding returns the encoder for the codeset. It returns nil for the default
// and UTF-8 codesets, in which case strings are used as they are.
func (c Codeset) Encoding() (encoding.Encoding, error) {
	if c == CodesetDefault || c == CodesetUTF8 {
		return nil, nil
	}
	for _, enc := range charmap.All {
		cm, ok := enc.(*charmap.Charmap)
		if !ok {
			continue
		}
		if mib, _ := cm.ID(); Codeset(mib) == c {
			return cm, nil
		}
	}
	return nil, fmt.Errorf("unsupported codeset %d", int(c))
}

// Name returns the IANA name of the codeset, or "" for the default.
func (c Codeset) Name() string {
	if c == CodesetDefault {
		return ""
	}
	if c == CodesetUTF8 {
		return "UTF-8"
	}
	enc, err := c.Encoding()
	if err != nil || enc == nil {
		return strconv.Itoa(int(c))
	}
	name, err := ianaindex.IANA.Name(enc)
	if err != nil {
		return strconv.Itoa(int(c))
	}
	return name
}
