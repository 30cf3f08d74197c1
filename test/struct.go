package test

import (
	"bytes"
	"sync"
)

// SampleCatalog is a two-language catalog with one target of each built-in kind.
const SampleCatalog = `## Version $VER: sample.catalog 1.2 (01.02.2024)
## Languages english polski
## Codeset polski 5
## SimpleCatConfig CharsPerLine 40
## TARGET C english "include/sample.h"
## TARGET CATALOG polski "catalogs/polski/" Optimize
## TARGET GO english "locale/strings.go"
MSG_HELLO
Hello
Cześć
;
MSG_UIN
UIN:
Numer GG:
;
MSG_OK
OK
OK
;
MSG_AVATARS_HELP
Switch on/off supporting avatars.\n(Needs restart and "bigger" bandwidth)
Włącza/wyłącza obsługę awatarów.\n(Wymaga ponownego uruchomienia)
;
`

// BufferCloser is an in-memory io.WriteCloser that records Close.
type BufferCloser struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func (b *BufferCloser) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *BufferCloser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *BufferCloser) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buf.Bytes()...)
}

func (b *BufferCloser) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// FailingWriteCloser fails Write and Close with the configured errors.
type FailingWriteCloser struct {
	WriteErr error
	CloseErr error
	closed   bool
}

func (f *FailingWriteCloser) Write(p []byte) (int, error) {
	if f.WriteErr != nil {
		return 0, f.WriteErr
	}
	return len(p), nil
}

func (f *FailingWriteCloser) Close() error {
	f.closed = true
	return f.CloseErr
}

func (f *FailingWriteCloser) Closed() bool {
	return f.closed
}
