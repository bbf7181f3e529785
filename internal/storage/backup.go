package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/existflow/focusboard/internal/model"
)

// BackupFileName returns the suggested name for a backup taken at now.
func BackupFileName(now time.Time) string {
	return fmt.Sprintf("focusboard-backup-%s.json", now.Format(model.DateLayout))
}

// Export writes data as indented JSON.
func Export(w io.Writer, data model.AppData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// Import reads a backup and fills in defaults for missing fields.
func Import(r io.Reader) (model.AppData, error) {
	var data model.AppData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return model.AppData{}, fmt.Errorf("invalid backup: %w", err)
	}
	data.Normalize()
	return data, nil
}
