package catcomp

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/loopcontext/catcomp/internal/ctlg"
)

const overflowStatKey = "__overflow__"

// Observer receives locale events on a dedicated goroutine. Panics raised by an
// observer are swallowed.
type Observer interface {
	// OnBuiltinFallback reports a string the loaded catalog does not provide.
	OnBuiltinFallback(lang string, identifier string)
	// OnStringMissing reports a lookup of an identifier or ID the builtin table lacks.
	OnStringMissing(key string)
	// OnCatalogRejected reports a catalog that could not be used.
	OnCatalogRejected(path string, reason string)
}

// LocaleConfig configures NewLocale.
type LocaleConfig struct {
	// Builtin holds the compiled-in strings; its base language is the default.
	Builtin *Table
	// CatalogPath is an optional compiled catalog to load on top of Builtin.
	CatalogPath string
	// Version is the required catalog major version; 0 accepts any.
	Version int
	// Strict turns a missing or unusable catalog into an error instead of a
	// silent fallback to the builtin strings.
	Strict         bool
	Observer       Observer
	ObserverBuffer int
	StatsMaxKeys   int
	NowFn          func() time.Time
}

// LocaleStats is a snapshot of the locale counters.
type LocaleStats struct {
	BuiltinFallbacks map[string]int
	MissingStrings   map[string]int
	RejectedCatalogs map[string]int
	DroppedEvents    map[string]int
	LoadedAt         time.Time
}

type observerEventType int

const (
	observerEventBuiltinFallback observerEventType = iota
	observerEventStringMissing
	observerEventCatalogRejected
)

type observerEvent struct {
	kind   observerEventType
	lang   string
	key    string
	path   string
	reason string
}

type localeStats struct {
	mu               sync.Mutex
	builtinFallbacks map[string]int
	missingStrings   map[string]int
	rejectedCatalogs map[string]int
	droppedEvents    map[string]int
	maxKeys          int
	loadedAt         time.Time
}

func sanitizeStatKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "unknown"
	}
	if len(key) > 120 {
		return key[:120]
	}
	return key
}

func (s *localeStats) increment(target map[string]int, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if target == nil {
		return
	}
	key = sanitizeStatKey(key)
	if s.maxKeys > 0 {
		if _, exists := target[key]; !exists {
			if _, hasOverflow := target[overflowStatKey]; hasOverflow {
				if len(target) >= s.maxKeys {
					key = overflowStatKey
				}
			} else if len(target) >= s.maxKeys-1 {
				key = overflowStatKey
			}
		}
	}
	target[key]++
}

func (s *localeStats) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.builtinFallbacks = map[string]int{}
	s.missingStrings = map[string]int{}
	s.rejectedCatalogs = map[string]int{}
	s.droppedEvents = map[string]int{}
}

func (s *localeStats) snapshot() LocaleStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	copyMap := func(input map[string]int) map[string]int {
		output := make(map[string]int, len(input))
		for k, v := range input {
			output[k] = v
		}
		return output
	}

	return LocaleStats{
		BuiltinFallbacks: copyMap(s.builtinFallbacks),
		MissingStrings:   copyMap(s.missingStrings),
		RejectedCatalogs: copyMap(s.rejectedCatalogs),
		DroppedEvents:    copyMap(s.droppedEvents),
		LoadedAt:         s.loadedAt,
	}
}

// Locale is the consuming application's view of a catalog: builtin strings,
// optionally overridden by a compiled catalog. Strings never change after
// NewLocale returns.
type Locale struct {
	builtin  *Table
	language string
	strings  map[uint32]string
	cfg      LocaleConfig
	stats    localeStats

	obsMu        sync.RWMutex
	observerCh   chan observerEvent
	observerDone chan struct{}
}

// NewLocale builds a locale. Without a catalog, or when the catalog cannot be
// used and Strict is off, every string comes from the builtin table.
func NewLocale(cfg LocaleConfig) (*Locale, error) {
	if cfg.Builtin == nil {
		return nil, errors.New("locale: builtin table is required")
	}
	if cfg.NowFn == nil {
		cfg.NowFn = time.Now
	}
	if cfg.ObserverBuffer <= 0 {
		cfg.ObserverBuffer = 1024
	}
	if cfg.StatsMaxKeys <= 0 {
		cfg.StatsMaxKeys = 512
	}
	l := &Locale{
		builtin:  cfg.Builtin,
		language: cfg.Builtin.BaseLanguage(),
		cfg:      cfg,
		stats: localeStats{
			builtinFallbacks: map[string]int{},
			missingStrings:   map[string]int{},
			rejectedCatalogs: map[string]int{},
			droppedEvents:    map[string]int{},
			maxKeys:          cfg.StatsMaxKeys,
		},
	}
	l.startObserverWorker()
	if cfg.CatalogPath != "" {
		if err := l.loadCatalog(cfg.CatalogPath); err != nil {
			if cfg.Strict {
				l.Close()
				return nil, err
			}
			l.onCatalogRejected(cfg.CatalogPath, err.Error())
		}
	}
	l.stats.loadedAt = cfg.NowFn()
	return l, nil
}

func (l *Locale) loadCatalog(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return newCatalogError(ErrIO, 0, "", "open catalog", err)
	}
	defer f.Close()
	c, err := ctlg.Read(f)
	if err != nil {
		return newCatalogError(ErrParse, 0, "", "read catalog "+path, err)
	}
	if l.cfg.Version != 0 {
		major, ok := catalogMajor(c.Version)
		if !ok || major != l.cfg.Version {
			return newCatalogError(ErrParse, 0, "", fmt.Sprintf("catalog version %q, want %d", c.Version, l.cfg.Version), nil)
		}
	}
	lang := normalizeLanguage(c.Language)
	if _, ok := l.builtin.langIdx[lang]; !ok {
		return newCatalogError(ErrUnknownLanguage, 0, "", fmt.Sprintf("catalog language %q", c.Language), nil)
	}
	enc, err := Codeset(c.Codeset).Encoding()
	if err != nil {
		return newCatalogError(ErrEncoding, 0, "", "catalog codeset", err)
	}
	strs := make(map[uint32]string, len(c.Strings))
	for _, s := range c.Strings {
		text := s.Text
		if enc != nil {
			text, err = enc.NewDecoder().Bytes(text)
			if err != nil {
				return newCatalogError(ErrEncoding, 0, "", fmt.Sprintf("catalog string %d", s.ID), err)
			}
		}
		strs[s.ID] = string(text)
	}
	l.strings = strs
	l.language = lang
	return nil
}

func catalogMajor(version string) (int, bool) {
	m := versionRegex.FindStringSubmatch(strings.TrimSpace(version))
	if m == nil {
		return 0, false
	}
	major, err := strconv.Atoi(m[2])
	return major, err == nil
}

// Language is the language strings are served in: the catalog language when a
// catalog is loaded, the builtin base language otherwise.
func (l *Locale) Language() string {
	return l.language
}

// GetString returns the string for a message ID. Strings absent from the catalog
// come from the builtin table; unknown IDs yield "".
func (l *Locale) GetString(id uint32) string {
	if s, ok := l.strings[id]; ok {
		return s
	}
	if int64(id) >= int64(len(l.builtin.entries)) {
		l.onStringMissing(strconv.FormatUint(uint64(id), 10))
		return ""
	}
	e := l.builtin.entries[id]
	if l.strings != nil {
		l.onBuiltinFallback(l.language, e.Identifier)
	}
	return e.Strings[0]
}

// String is GetString by identifier.
func (l *Locale) String(identifier string) (string, error) {
	i, ok := l.builtin.index[identifier]
	if !ok {
		l.onStringMissing(identifier)
		return "", newCatalogError(ErrUnknownIdentifier, 0, identifier, "", nil)
	}
	return l.GetString(uint32(i)), nil
}

// MustString is String for identifiers known at compile time; unknown ones yield "".
func (l *Locale) MustString(identifier string) string {
	s, _ := l.String(identifier)
	return s
}

func safeObserverCall(fn func()) {
	defer func() {
		_ = recover()
	}()
	fn()
}

func (l *Locale) startObserverWorker() {
	if l.cfg.Observer == nil || l.observerCh != nil {
		return
	}
	l.observerCh = make(chan observerEvent, l.cfg.ObserverBuffer)
	l.observerDone = make(chan struct{})
	go func(ch <-chan observerEvent, done chan<- struct{}) {
		defer close(done)
		for evt := range ch {
			switch evt.kind {
			case observerEventBuiltinFallback:
				safeObserverCall(func() {
					l.cfg.Observer.OnBuiltinFallback(evt.lang, evt.key)
				})
			case observerEventStringMissing:
				safeObserverCall(func() {
					l.cfg.Observer.OnStringMissing(evt.key)
				})
			case observerEventCatalogRejected:
				safeObserverCall(func() {
					l.cfg.Observer.OnCatalogRejected(evt.path, evt.reason)
				})
			}
		}
	}(l.observerCh, l.observerDone)
}

func (l *Locale) publishObserverEvent(evt observerEvent) {
	l.obsMu.RLock()
	defer l.obsMu.RUnlock()
	if l.observerCh == nil {
		if l.cfg.Observer != nil {
			l.stats.increment(l.stats.droppedEvents, "observer_closed")
		}
		return
	}
	select {
	case l.observerCh <- evt:
	default:
		l.stats.increment(l.stats.droppedEvents, "observer_queue_full")
	}
}

func (l *Locale) onBuiltinFallback(lang string, identifier string) {
	l.stats.increment(l.stats.builtinFallbacks, lang+":"+identifier)
	l.publishObserverEvent(observerEvent{kind: observerEventBuiltinFallback, lang: lang, key: identifier})
}

func (l *Locale) onStringMissing(key string) {
	l.stats.increment(l.stats.missingStrings, key)
	l.publishObserverEvent(observerEvent{kind: observerEventStringMissing, key: key})
}

func (l *Locale) onCatalogRejected(path string, reason string) {
	l.stats.increment(l.stats.rejectedCatalogs, path)
	l.publishObserverEvent(observerEvent{kind: observerEventCatalogRejected, path: path, reason: reason})
}

func (l *Locale) SnapshotStats() LocaleStats {
	return l.stats.snapshot()
}

func (l *Locale) ResetStats() {
	l.stats.reset()
}

// Close stops the observer worker after it has delivered the queued events.
func (l *Locale) Close() {
	l.obsMu.Lock()
	defer l.obsMu.Unlock()
	if l.observerCh == nil {
		return
	}
	close(l.observerCh)
	<-l.observerDone
	l.observerCh = nil
	l.observerDone = nil
}
