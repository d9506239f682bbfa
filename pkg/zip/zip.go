// Package zip bundles generated assets into a single downloadable archive.
package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// Entry is one file inside the bundle.
type Entry struct {
	Filename string
	Data     []byte
}

// Bundle writes all entries into an in-memory zip archive.
func Bundle(entries []Entry) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, entry := range entries {
		w, err := zw.Create(entry.Filename)
		if err != nil {
			return nil, fmt.Errorf("zip: create %s: %w", entry.Filename, err)
		}
		if _, err := w.Write(entry.Data); err != nil {
			return nil, fmt.Errorf("zip: write %s: %w", entry.Filename, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
