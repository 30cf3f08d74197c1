package ctlg

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeDecode(t *testing.T) {
	in := &Catalog{
		Version:  "$VER: gg.module.catalog 2.0 (06.04.2022)",
		Language: "polski",
		Codeset:  5,
		Strings: []String{
			{ID: 3, Text: []byte("Numer GG:")},
			{ID: 0, Text: []byte("Ustawienia u\xbfytkownika")},
			{ID: 7, Text: []byte(`a\nb`)},
			{ID: 9, Text: []byte("")},
		},
	}
	data, err := Encode(in)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("FORM")) || string(data[8:12]) != "CTLG" {
		t.Fatalf("bad magic: %q", data[:12])
	}
	if len(data)%2 != 0 {
		t.Errorf("odd file size %d", len(data))
	}
	out, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	want := &Catalog{
		Version:  in.Version,
		Language: in.Language,
		Codeset:  5,
		Strings: []String{
			{ID: 0, Text: []byte("Ustawienia u\xbfytkownika")},
			{ID: 3, Text: []byte("Numer GG:")},
			{ID: 7, Text: []byte(`a\nb`)},
			{ID: 9},
		},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if got, ok := out.Lookup(3); !ok || string(got) != "Numer GG:" {
		t.Errorf("Lookup(3) = %q, %v", got, ok)
	}
	if _, ok := out.Lookup(4); ok {
		t.Error("Lookup(4) should miss")
	}
}

func TestEncodeRejectsDuplicateIDs(t *testing.T) {
	_, err := Encode(&Catalog{Language: "english", Strings: []String{{ID: 1, Text: []byte("a")}, {ID: 1, Text: []byte("b")}}})
	if err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestDecodeErrors(t *testing.T) {
	good, err := Encode(&Catalog{Language: "english", Strings: []String{{ID: 1, Text: []byte("hello")}}})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrNotCatalog},
		{"wrong type", append([]byte("FORM\x00\x00\x00\x04ILBM"), 0), ErrNotCatalog},
		{"truncated", good[:len(good)-6], ErrCorrupt},
		{"no lang", []byte("FORM\x00\x00\x00\x04CTLG"), ErrCorrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReadSkipsUnknownChunks(t *testing.T) {
	data, err := Encode(&Catalog{Language: "english", Strings: []String{{ID: 2, Text: []byte("x")}}})
	if err != nil {
		t.Fatal(err)
	}
	// splice an unknown odd-sized chunk right after the CTLG type id
	extra := []byte("ANNO\x00\x00\x00\x03abc\x00")
	spliced := append(append(append([]byte{}, data[:12]...), extra...), data[12:]...)
	size := uint32(len(spliced) - 8)
	spliced[4], spliced[5], spliced[6], spliced[7] = byte(size>>24), byte(size>>16), byte(size>>8), byte(size)

	c, err := Read(bytes.NewReader(spliced))
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := c.Lookup(2); !ok || string(got) != "x" {
		t.Errorf("Lookup(2) = %q, %v", got, ok)
	}
}
