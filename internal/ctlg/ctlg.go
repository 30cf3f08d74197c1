// Package ctlg reads and writes compiled catalogs in the IFF "FORM CTLG" layout.
//
// A catalog is a FORM of type CTLG holding, in order:
//
//	FVER  version string, NUL terminated (optional)
//	LANG  language name, NUL terminated
//	CSET  32 bytes: codeset (u32) and seven reserved u32 words
//	STRS  repeated {id u32, length u32, bytes, NUL, padding to 4 bytes}
//
// All integers are big-endian. The STRS length counts the string bytes and the
// terminating NUL, not the padding. Chunks are padded to an even size.
package ctlg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"
)

var (
	ErrNotCatalog = errors.New("ctlg: not an IFF CTLG file")
	ErrCorrupt    = errors.New("ctlg: corrupt catalog")
)

const csetSize = 32

// String is one catalog message.
type String struct {
	ID   uint32
	Text []byte
}

// Catalog is the decoded content of a catalog file.
type Catalog struct {
	Version  string
	Language string
	Codeset  uint32
	Strings  []String
}

// Lookup returns the bytes stored for id.
func (c *Catalog) Lookup(id uint32) ([]byte, bool) {
	i := sort.Search(len(c.Strings), func(i int) bool { return c.Strings[i].ID >= id })
	if i < len(c.Strings) && c.Strings[i].ID == id {
		return c.Strings[i].Text, true
	}
	return nil, false
}

// Encode serialises c. Strings are written in ascending ID order.
func Encode(c *Catalog) ([]byte, error) {
	strs := append([]String(nil), c.Strings...)
	sort.Slice(strs, func(i, j int) bool { return strs[i].ID < strs[j].ID })

	var body bytes.Buffer
	body.WriteString("CTLG")
	if c.Version != "" {
		writeChunk(&body, "FVER", cString(c.Version))
	}
	writeChunk(&body, "LANG", cString(c.Language))
	cset := make([]byte, csetSize)
	binary.BigEndian.PutUint32(cset, c.Codeset)
	writeChunk(&body, "CSET", cset)

	var strsChunk bytes.Buffer
	var hdr [8]byte
	for i, s := range strs {
		if i > 0 && strs[i-1].ID == s.ID {
			return nil, fmt.Errorf("ctlg: duplicate string id %d", s.ID)
		}
		if bytes.IndexByte(s.Text, 0) >= 0 {
			return nil, fmt.Errorf("ctlg: string %d contains NUL", s.ID)
		}
		binary.BigEndian.PutUint32(hdr[0:4], s.ID)
		binary.BigEndian.PutUint32(hdr[4:8], uint32(len(s.Text)+1))
		strsChunk.Write(hdr[:])
		strsChunk.Write(s.Text)
		strsChunk.WriteByte(0)
		for strsChunk.Len()%4 != 0 {
			strsChunk.WriteByte(0)
		}
	}
	writeChunk(&body, "STRS", strsChunk.Bytes())

	var out bytes.Buffer
	out.WriteString("FORM")
	var size [4]byte
	binary.BigEndian.PutUint32(size[:], uint32(body.Len()))
	out.Write(size[:])
	out.Write(body.Bytes())
	return out.Bytes(), nil
}

func cString(s string) []byte {
	return append([]byte(s), 0)
}

func writeChunk(w *bytes.Buffer, id string, data []byte) {
	var size [4]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(data)))
	w.WriteString(id)
	w.Write(size[:])
	w.Write(data)
	if len(data)%2 != 0 {
		w.WriteByte(0)
	}
}

// Read decodes a catalog from r.
func Read(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode parses a catalog image. Unknown chunks are skipped.
func Decode(data []byte) (*Catalog, error) {
	if len(data) < 12 || string(data[0:4]) != "FORM" || string(data[8:12]) != "CTLG" {
		return nil, ErrNotCatalog
	}
	formSize := binary.BigEndian.Uint32(data[4:8])
	if formSize < 4 || uint64(formSize)+8 > uint64(len(data)) {
		return nil, fmt.Errorf("%w: FORM size %d exceeds file", ErrCorrupt, formSize)
	}
	body := data[12 : 8+formSize]

	c := &Catalog{}
	seenLang := false
	for len(body) > 0 {
		if len(body) < 8 {
			return nil, fmt.Errorf("%w: truncated chunk header", ErrCorrupt)
		}
		id := string(body[0:4])
		size := binary.BigEndian.Uint32(body[4:8])
		if uint64(size) > uint64(len(body)-8) {
			return nil, fmt.Errorf("%w: chunk %s size %d exceeds FORM", ErrCorrupt, id, size)
		}
		chunk := body[8 : 8+size]
		next := 8 + int(size)
		if size%2 != 0 && next < len(body) {
			next++
		}
		body = body[next:]

		switch id {
		case "FVER":
			c.Version = trimNUL(chunk)
		case "LANG":
			c.Language = trimNUL(chunk)
			seenLang = true
		case "CSET":
			if len(chunk) < 4 {
				return nil, fmt.Errorf("%w: short CSET chunk", ErrCorrupt)
			}
			c.Codeset = binary.BigEndian.Uint32(chunk[0:4])
		case "STRS":
			strs, err := decodeStrings(chunk)
			if err != nil {
				return nil, err
			}
			c.Strings = append(c.Strings, strs...)
		}
	}
	if !seenLang {
		return nil, fmt.Errorf("%w: missing LANG chunk", ErrCorrupt)
	}
	sort.Slice(c.Strings, func(i, j int) bool { return c.Strings[i].ID < c.Strings[j].ID })
	for i := 1; i < len(c.Strings); i++ {
		if c.Strings[i-1].ID == c.Strings[i].ID {
			return nil, fmt.Errorf("%w: duplicate string id %d", ErrCorrupt, c.Strings[i].ID)
		}
	}
	return c, nil
}

func decodeStrings(chunk []byte) ([]String, error) {
	var out []String
	for len(chunk) > 0 {
		if len(chunk) < 8 {
			return nil, fmt.Errorf("%w: truncated STRS entry", ErrCorrupt)
		}
		id := binary.BigEndian.Uint32(chunk[0:4])
		n := binary.BigEndian.Uint32(chunk[4:8])
		if n == 0 || uint64(n) > uint64(len(chunk)-8) {
			return nil, fmt.Errorf("%w: string %d length %d", ErrCorrupt, id, n)
		}
		text := chunk[8 : 8+n-1]
		out = append(out, String{ID: id, Text: append([]byte(nil), text...)})
		adv := 8 + int(n)
		if rem := adv % 4; rem != 0 {
			adv += 4 - rem
		}
		if adv > len(chunk) {
			adv = len(chunk)
		}
		chunk = chunk[adv:]
	}
	return out, nil
}

func trimNUL(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
