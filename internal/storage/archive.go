// Package storage archives completed retouch results on the local
// filesystem. Archiving is best-effort: the engine treats failures here as
// log-worthy, never as batch failures.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

const thumbnailEdge = 256

// Archive persists result images and small preview thumbnails under a base
// directory, one folder per run.
type Archive struct {
	basePath string
}

// NewArchive ensures the base directory exists.
func NewArchive(basePath string) (*Archive, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &Archive{basePath: basePath}, nil
}

// BasePath returns the configured root directory.
func (a *Archive) BasePath() string {
	if a == nil {
		return ""
	}
	return a.basePath
}

// SaveResult writes the result bytes for one completed item and, when the
// payload decodes as an image, a PNG thumbnail next to it. It returns the
// relative key of the stored result.
func (a *Archive) SaveResult(ctx context.Context, runID, itemID string, data []byte, mime string) (string, error) {
	if a == nil {
		return "", errors.New("storage: no archive configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key, err := resultKey(runID, itemID, mime)
	if err != nil {
		return "", err
	}

	fullPath := filepath.Join(a.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure run directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write result: %w", err)
	}

	if thumb, ok := renderThumbnail(data); ok {
		thumbPath := strings.TrimSuffix(fullPath, filepath.Ext(fullPath)) + ".thumb.png"
		if err := os.WriteFile(thumbPath, thumb, 0o644); err != nil {
			return key, fmt.Errorf("storage: write thumbnail: %w", err)
		}
	}
	return key, nil
}

func renderThumbnail(data []byte) ([]byte, bool) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false
	}
	thumb := imaging.Fit(img, thumbnailEdge, thumbnailEdge, imaging.Lanczos)
	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}

// resultKey builds a clean relative key and rejects path traversal in ids.
func resultKey(runID, itemID, mime string) (string, error) {
	runID = strings.TrimSpace(runID)
	itemID = strings.TrimSpace(itemID)
	if runID == "" || itemID == "" {
		return "", errors.New("storage: run and item ids are required")
	}
	key := fmt.Sprintf("results/%s/%s%s", runID, itemID, extensionForMIME(mime))
	cleaned := filepath.ToSlash(filepath.Clean(key))
	if cleaned != key || strings.Contains(key, "..") {
		return "", errors.New("storage: invalid key")
	}
	return key, nil
}

func extensionForMIME(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
