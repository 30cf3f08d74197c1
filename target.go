package catcomp

import (
	"fmt"
	"sort"
	"strings"
)

// TargetKind selects what a target generates.
type TargetKind int

const (
	// KindC is an embedded-source target: a CatComp style C header.
	KindC TargetKind = iota + 1
	// KindCatalog is a compiled binary catalog for one language.
	KindCatalog
	// KindGo is an embedded-source target producing a Go file.
	KindGo
	// KindYAML and KindTOML export one language for external tools.
	KindYAML
	KindTOML
)

var targetKindNames = map[TargetKind]string{
	KindC:       "C",
	KindCatalog: "CATALOG",
	KindGo:      "GO",
	KindYAML:    "YAML",
	KindTOML:    "TOML",
}

func (k TargetKind) String() string {
	if name, ok := targetKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TargetKind(%d)", int(k))
}

// Embedded reports whether the kind produces source code with one symbol per identifier.
func (k TargetKind) Embedded() bool {
	return k == KindC || k == KindGo
}

// ParseTargetKind accepts the directive spelling of a kind, case-insensitively.
func ParseTargetKind(s string) (TargetKind, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for kind, name := range targetKindNames {
		if name == s {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown target kind %q", s)
}

// TargetFlags is the set of options given after the target path.
type TargetFlags uint8

const (
	// FlagNoCode validates an embedded target without generating any code.
	FlagNoCode TargetFlags = 1 << iota
	// FlagOptimize drops catalog strings that equal the base-language string.
	FlagOptimize
)

var targetFlagNames = []struct {
	flag TargetFlags
	name string
}{
	{FlagNoCode, "NoCode"},
	{FlagOptimize, "Optimize"},
}

func (f TargetFlags) Has(flag TargetFlags) bool {
	return f&flag != 0
}

func (f TargetFlags) String() string {
	var names []string
	for _, fl := range targetFlagNames {
		if f.Has(fl.flag) {
			names = append(names, fl.name)
		}
	}
	return strings.Join(names, " ")
}

// ParseTargetFlag maps one flag word to its flag, case-insensitively.
func ParseTargetFlag(s string) (TargetFlags, error) {
	for _, fl := range targetFlagNames {
		if strings.EqualFold(fl.name, s) {
			return fl.flag, nil
		}
	}
	return 0, fmt.Errorf("unknown target flag %q", s)
}

// allowedFlags lists the flags that make sense for each kind.
func (k TargetKind) allowedFlags() TargetFlags {
	switch {
	case k.Embedded():
		return FlagNoCode
	case k == KindCatalog:
		return FlagOptimize
	default:
		return 0
	}
}

func (t Target) String() string {
	s := fmt.Sprintf("%s %s %q", t.Kind, t.Language, t.Path)
	if t.Flags != 0 {
		s += " " + t.Flags.String()
	}
	return s
}

// KindNames returns the directive spellings of all kinds, sorted.
func KindNames() []string {
	names := make([]string, 0, len(targetKindNames))
	for _, name := range targetKindNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
