package catcomp

import "strconv"

// Version is the parsed `$VER:` string of a catalog header.
type Version struct {
	Name  string
	Major int
	Minor int
	Date  string
}

// String renders the version the way it appears after `## Version`.
func (v Version) String() string {
	if v.Name == "" {
		return ""
	}
	s := "$VER: " + v.Name + " " + strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor)
	if v.Date != "" {
		s += " (" + v.Date + ")"
	}
	return s
}

// Header holds the directives that precede the entry blocks.
type Header struct {
	Version      *Version
	Languages    []string
	Codesets     map[string]Codeset
	CharsPerLine int
	Config       map[string]string // other SimpleCatConfig options, verbatim
	Targets      []Target
}

// BaseLanguage is the first declared language.
func (h Header) BaseLanguage() string {
	if len(h.Languages) == 0 {
		return ""
	}
	return h.Languages[0]
}

// Entry is one message: an identifier and one string per declared language,
// in declaration order.
type Entry struct {
	Identifier string
	ID         uint32
	Strings    []string
	Line       int
}

// Target describes one generated output.
type Target struct {
	Kind     TargetKind
	Language string
	Path     string
	Flags    TargetFlags
	Line     int
}

// Artifact is the in-memory result of emitting a target.
type Artifact struct {
	Target  Target
	Path    string
	Data    []byte
	Symbols []string
}

// Messages is the YAML export document of one language.
type Messages struct {
	Language string            `yaml:"language"`
	Codeset  Codeset           `yaml:"codeset,omitempty"`
	Set      map[string]string `yaml:"set"`
}
