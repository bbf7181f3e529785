package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/existflow/focusboard/internal/model"
)

// FileStore keeps the aggregate as a single JSON document.
type FileStore struct {
	path string
}

// NewFileStore stores data at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the document location.
func (f *FileStore) Path() string { return f.path }

// Save writes atomically through a temp file in the same directory.
func (f *FileStore) Save(_ context.Context, data model.AppData) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".focusboard-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, f.path)
}

func (f *FileStore) Load(context.Context) (model.AppData, bool, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return model.AppData{}, false, nil
	}
	if err != nil {
		return model.AppData{}, false, err
	}

	var data model.AppData
	if err := json.Unmarshal(raw, &data); err != nil {
		return model.AppData{}, false, fmt.Errorf("corrupt data file %s: %w", f.path, err)
	}
	data.Normalize()
	return data, true, nil
}
