package catcomp_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/loopcontext/catcomp"
	"github.com/loopcontext/catcomp/internal/csource"
	"github.com/loopcontext/catcomp/internal/ctlg"
	"github.com/loopcontext/catcomp/test"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

const ggCatalog = "testdata/gg.module.cs"

type mockObserver struct {
	mu        sync.Mutex
	fallbacks []string
	missing   []string
	rejected  []string
}

func (o *mockObserver) OnBuiltinFallback(lang string, identifier string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fallbacks = append(o.fallbacks, lang+":"+identifier)
}

func (o *mockObserver) OnStringMissing(key string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.missing = append(o.missing, key)
}

func (o *mockObserver) OnCatalogRejected(path string, reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rejected = append(o.rejected, path)
}

func (o *mockObserver) snapshot() ([]string, []string, []string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.fallbacks...), append([]string(nil), o.missing...), append([]string(nil), o.rejected...)
}

var _ = Describe("Catalog description", func() {
	var table *catcomp.Table

	BeforeEach(func() {
		var err error
		table, err = catcomp.ParseFile(ggCatalog)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should read every entry in source order", func() {
		Expect(table.Len()).To(Equal(29))
		Expect(table.Languages()).To(Equal([]string{"english", "polski"}))
		entries := table.Entries()
		Expect(entries[0].Identifier).To(Equal("MSG_PREFS_GG_BASIC"))
		Expect(entries[28].Identifier).To(Equal("MSG_PUBDIR_MENU_ENTRY_TITLE"))
		Expect(entries[28].ID).To(Equal(uint32(28)))
	})

	It("should read the header", func() {
		h := table.Header()
		Expect(h.Version).NotTo(BeNil())
		Expect(h.Version.Name).To(Equal("gg.module.catalog"))
		Expect(h.Version.Major).To(Equal(2))
		Expect(h.Version.Date).To(Equal("06.04.2022"))
		Expect(h.CharsPerLine).To(Equal(200))
		Expect(h.Codesets).To(HaveKeyWithValue("polski", catcomp.CodesetDefault))
		Expect(h.Targets).To(HaveLen(2))
		Expect(h.Targets[0].Flags.Has(catcomp.FlagNoCode)).To(BeTrue())
		Expect(h.Targets[1].Flags.Has(catcomp.FlagOptimize)).To(BeTrue())
	})

	It("should look up a string by identifier and language", func() {
		s, err := table.Lookup("MSG_PREFS_GG_BASIC_UIN", "polski")
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(Equal("Numer GG:"))
	})

	It("should keep placeholders and escapes verbatim", func() {
		s, err := table.Lookup("MSG_MODULE_MSG_PIC_SEND_FAILED", "english")
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(Equal("Failed to send picture with ID: %ls!"))
		s, err = table.Lookup("MSG_PREFS_GG_OTHER_SUPPORT_AVATARS_HELP", "english")
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(ContainSubstring(`avatars.\n(Needs`))
	})

	It("should reject an undeclared language", func() {
		_, err := table.Lookup("MSG_PREFS_GG_BASIC_UIN", "german")
		Expect(errors.Is(err, catcomp.ErrUnknownLanguage)).To(BeTrue())
	})

	It("should reject an unknown identifier", func() {
		_, err := table.Lookup("MSG_DOES_NOT_EXIST", "english")
		Expect(errors.Is(err, catcomp.ErrUnknownIdentifier)).To(BeTrue())
	})

	It("should format back to the source text", func() {
		src, err := os.ReadFile(ggCatalog)
		Expect(err).NotTo(HaveOccurred())
		var buf bytes.Buffer
		Expect(catcomp.Format(table, &buf)).To(Succeed())
		Expect(buf.String()).To(Equal(string(src)))
	})
})

var _ = Describe("Targets", func() {
	var table *catcomp.Table

	BeforeEach(func() {
		var err error
		table, err = catcomp.ParseFile(ggCatalog)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should only validate a NoCode header target", func() {
		a, err := catcomp.Emit(table, table.Targets()[0])
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Data).To(BeNil())
		Expect(a.Symbols).To(BeEmpty())
	})

	It("should generate the header once NoCode is dropped", func() {
		target := table.Targets()[0]
		target.Flags = 0
		a, err := catcomp.Emit(table, target)
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Symbols).To(HaveLen(29))

		got, err := csource.ReadC(bytes.NewReader(a.Data))
		Expect(err).NotTo(HaveOccurred())
		want, err := table.Strings("english")
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(want))
		Expect(string(a.Data)).To(ContainSubstring("#define MSG_PREFS_GG_BASIC_UIN 1\n"))
	})

	It("should compile the optimized polski catalog into the version-named file", func() {
		a, err := catcomp.Emit(table, table.Targets()[1])
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Path).To(Equal("bin/catalogs/polski/gg.module.catalog"))

		c, err := ctlg.Decode(a.Data)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Language).To(Equal("polski"))
		Expect(c.Version).To(Equal("$VER: gg.module.catalog 2.0 (06.04.2022)"))
		// OK, o and IP: are the same in both languages
		Expect(c.Strings).To(HaveLen(26))
		text, ok := c.Lookup(1)
		Expect(ok).To(BeTrue())
		Expect(string(text)).To(Equal("Numer GG:"))
		_, ok = c.Lookup(21)
		Expect(ok).To(BeFalse())
	})

	It("should write every target below the output directory", func() {
		dir, err := os.MkdirTemp("", "catcomp-suite-*")
		Expect(err).NotTo(HaveOccurred())
		defer os.RemoveAll(dir)

		artifacts, err := catcomp.Build(table, catcomp.DirSink{Root: dir})
		Expect(err).NotTo(HaveOccurred())
		Expect(artifacts).To(HaveLen(2))
		Expect(filepath.Join(dir, "translations.h")).NotTo(BeAnExistingFile())
		Expect(filepath.Join(dir, "bin", "catalogs", "polski", "gg.module.catalog")).To(BeAnExistingFile())
	})
})

var _ = Describe("Locale", func() {
	var (
		table       *catcomp.Table
		catalogPath string
		dir         string
	)

	BeforeEach(func() {
		var err error
		table, err = catcomp.ParseFile(ggCatalog)
		Expect(err).NotTo(HaveOccurred())
		dir, err = os.MkdirTemp("", "catcomp-locale-*")
		Expect(err).NotTo(HaveOccurred())
		_, err = catcomp.Build(table, catcomp.DirSink{Root: dir})
		Expect(err).NotTo(HaveOccurred())
		catalogPath = filepath.Join(dir, "bin", "catalogs", "polski", "gg.module.catalog")
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	It("should serve catalog strings and fall back to builtin ones", func() {
		obs := &mockObserver{}
		loc, err := catcomp.NewLocale(catcomp.LocaleConfig{
			Builtin:     table,
			CatalogPath: catalogPath,
			Version:     2,
			Observer:    obs,
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(loc.Language()).To(Equal("polski"))
		Expect(loc.MustString("MSG_PREFS_GG_BASIC_PASS")).To(Equal("Hasło:"))
		Expect(loc.MustString("MSG_MULTILOGON_WINDOW_LIST_IP")).To(Equal("IP:"))
		Expect(loc.GetString(1000)).To(Equal(""))
		loc.Close()

		fallbacks, missing, rejected := obs.snapshot()
		Expect(fallbacks).To(Equal([]string{"polski:MSG_MULTILOGON_WINDOW_LIST_IP"}))
		Expect(missing).To(Equal([]string{"1000"}))
		Expect(rejected).To(BeEmpty())
	})

	It("should ignore a catalog of another major version", func() {
		obs := &mockObserver{}
		loc, err := catcomp.NewLocale(catcomp.LocaleConfig{
			Builtin:     table,
			CatalogPath: catalogPath,
			Version:     3,
			Observer:    obs,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(loc.MustString("MSG_PREFS_GG_BASIC_PASS")).To(Equal("Password:"))
		Expect(loc.SnapshotStats().RejectedCatalogs).To(HaveKeyWithValue(catalogPath, 1))
		loc.Close()

		_, _, rejected := obs.snapshot()
		Expect(rejected).To(Equal([]string{catalogPath}))
	})

	It("should fail in strict mode", func() {
		_, err := catcomp.NewLocale(catcomp.LocaleConfig{
			Builtin:     table,
			CatalogPath: catalogPath,
			Version:     3,
			Strict:      true,
		})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Sample fixture", func() {
	It("should merge a YAML translation back into the catalog", func() {
		table, err := catcomp.Parse([]byte(test.SampleCatalog))
		Expect(err).NotTo(HaveOccurred())

		var buf bytes.Buffer
		Expect(catcomp.ExportYAML(table, "english", &buf)).To(Succeed())
		msgs, err := catcomp.ImportYAML(&buf)
		Expect(err).NotTo(HaveOccurred())
		msgs.Language = "deutsch"
		msgs.Set["MSG_HELLO"] = "Hallo"

		merged, report, err := catcomp.Merge(table, msgs)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Added).To(BeTrue())
		Expect(report.Placeholders).To(BeEmpty())

		s, err := merged.Lookup("MSG_HELLO", "deutsch")
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(Equal("Hallo"))
	})
})
