package credits

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type fileBalance struct {
	Remaining int `json:"remaining"`
}

// FileStore keeps the balance in a small JSON file. It is the default store
// for local and single-user deployments.
type FileStore struct {
	path string
}

// NewFileStore validates the target path and ensures its directory exists.
func NewFileStore(path string) (*FileStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("credits: file store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("credits: ensure state directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Load(ctx context.Context) (int, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("credits: read state file: %w", err)
	}
	var b fileBalance
	if err := json.Unmarshal(raw, &b); err != nil {
		return 0, false, fmt.Errorf("credits: decode state file: %w", err)
	}
	return b.Remaining, true, nil
}

func (s *FileStore) Save(ctx context.Context, remaining int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(fileBalance{Remaining: remaining})
	if err != nil {
		return fmt.Errorf("credits: encode state file: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("credits: write state file: %w", err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
