package catcomp

import (
	"io"
	"os"
	"path/filepath"
)

//go:generate mockgen -source=$GOFILE -package mock_catcomp -destination=test/mock/$GOFILE

// Sink creates the destination files of generated artifacts.
type Sink interface {
	Create(path string) (io.WriteCloser, error)
}

// DirSink writes artifacts below Root, creating parent directories as needed.
// Absolute artifact paths are used as they are.
type DirSink struct {
	Root string
}

func (s DirSink) Create(path string) (io.WriteCloser, error) {
	if !filepath.IsAbs(path) && s.Root != "" {
		path = filepath.Join(s.Root, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.Create(path)
}
