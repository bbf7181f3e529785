package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/existflow/focusboard/internal/db"
	"github.com/existflow/focusboard/internal/model"
)

const lastSavedKey = "last_saved_at"

// SQLiteStore persists one kv row per top-level field of the aggregate,
// so a partially written database still loads with defaults for the rest.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore wraps an open database.
func NewSQLiteStore(database *db.DB) *SQLiteStore {
	return &SQLiteStore{db: database}
}

// OpenSQLite opens the database at path and wraps it.
func OpenSQLite(path string) (*SQLiteStore, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	return NewSQLiteStore(database), nil
}

// DB exposes the underlying database.
func (s *SQLiteStore) DB() *db.DB { return s.db }

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Save(ctx context.Context, data model.AppData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return err
	}

	values := make(map[string]string, len(fields))
	for k, v := range fields {
		values[k] = string(v)
	}
	if err := s.db.PutAll(ctx, values); err != nil {
		return err
	}
	return s.db.SetSyncState(ctx, lastSavedKey, time.Now().UTC().Format(time.RFC3339))
}

// LastSaved returns when the aggregate was last written, zero if never.
func (s *SQLiteStore) LastSaved(ctx context.Context) (time.Time, error) {
	v, err := s.db.GetSyncState(ctx, lastSavedKey)
	if err != nil || v == "" {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, v)
}

func (s *SQLiteStore) Load(ctx context.Context) (model.AppData, bool, error) {
	values, err := s.db.GetAll(ctx)
	if err != nil {
		return model.AppData{}, false, err
	}
	if len(values) == 0 {
		return model.AppData{}, false, nil
	}

	var data model.AppData
	for k, v := range values {
		doc := fmt.Sprintf("{%q:%s}", k, v)
		if err := json.Unmarshal([]byte(doc), &data); err != nil {
			return model.AppData{}, false, fmt.Errorf("corrupt value for %s: %w", k, err)
		}
	}
	data.Normalize()
	return data, true, nil
}
