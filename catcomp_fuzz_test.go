package catcomp_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/loopcontext/catcomp"
	"github.com/loopcontext/catcomp/internal/ctlg"
	"github.com/loopcontext/catcomp/test"
)

func FuzzParse(f *testing.F) {
	f.Add([]byte(test.SampleCatalog))
	f.Add([]byte("## Languages english\nMSG_A\n%ls \\n \"x\"\n;\n"))
	f.Add([]byte("## TARGET C x \"\n"))
	f.Add([]byte(";\n;\n"))

	f.Fuzz(func(t *testing.T, src []byte) {
		table, err := catcomp.Parse(src)
		if err != nil {
			var cerr catcomp.Error
			if !errors.As(err, &cerr) {
				t.Fatalf("error %T is not a catalog error", err)
			}
			return
		}
		for _, target := range table.Targets() {
			_, _ = catcomp.Emit(table, target)
		}
		var buf bytes.Buffer
		if err := catcomp.Format(table, &buf); err != nil {
			return
		}
		again, err := catcomp.Parse(buf.Bytes())
		if err != nil {
			t.Fatalf("formatted catalog does not parse: %v\n%s", err, buf.Bytes())
		}
		if again.Len() != table.Len() {
			t.Fatalf("formatted catalog has %d entries, want %d", again.Len(), table.Len())
		}
	})
}

func FuzzDecodeCatalog(f *testing.F) {
	table, err := catcomp.Parse([]byte(test.SampleCatalog))
	if err != nil {
		f.Fatal(err)
	}
	a, err := catcomp.Emit(table, table.Targets()[1])
	if err != nil {
		f.Fatal(err)
	}
	f.Add(a.Data)
	f.Add([]byte("FORM\x00\x00\x00\x04CTLG"))

	f.Fuzz(func(t *testing.T, data []byte) {
		_, _ = ctlg.Decode(data)
	})
}
