package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
)

// fileSource opens the configured CSV export from the local filesystem.
type fileSource struct{ path string }

func newFileSource(path string) *fileSource { return &fileSource{path: path} }

// Open returns a reader for the file. A canceled context short-circuits
// before touching the filesystem; open failures keep errors.Is/As working
// (e.g. errors.Is(err, os.ErrNotExist)).
func (s *fileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	return f, nil
}
