// Package ingest turns files and streams into documents for analysis.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/atikulmunna/logreader/internal/model"
)

// ErrTooLarge is returned when input exceeds the configured byte limit.
var ErrTooLarge = errors.New("input exceeds size limit")

// ReadFile reads a whole file as a document. A maxBytes of zero or less
// disables the limit.
func ReadFile(path string, maxBytes int64) (model.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if maxBytes > 0 {
		if info, err := f.Stat(); err == nil && info.Size() > maxBytes {
			return model.Document{}, fmt.Errorf("%s: %w (%d bytes, limit %d)", path, ErrTooLarge, info.Size(), maxBytes)
		}
	}
	return Read(f, path, maxBytes)
}

// Read consumes r as a document named source. Files can grow between the
// size check and the read, so the limit is enforced on the bytes read too.
func Read(r io.Reader, source string, maxBytes int64) (model.Document, error) {
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return model.Document{}, fmt.Errorf("read %s: %w", source, err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return model.Document{}, fmt.Errorf("%s: %w (limit %d)", source, ErrTooLarge, maxBytes)
	}
	return model.Document{Source: source, Content: string(data)}, nil
}
