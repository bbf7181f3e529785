package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/existflow/focusboard/internal/config"
	"github.com/existflow/focusboard/internal/logger"
)

// DataFileName is the FileStore document name inside the data directory.
const DataFileName = "app-data.json"

// Backend is an opened adapter with its cleanup.
type Backend struct {
	Adapter
	closers []func() error
}

// Close releases database handles.
func (b *Backend) Close() error {
	var first error
	for _, c := range b.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open builds the configured backend, chained with the fallback backend
// when one is set. A primary that cannot be opened is skipped with a
// warning as long as the fallback opens.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	b := &Backend{}
	var adapters []Adapter

	for _, name := range []string{cfg.Storage, cfg.Fallback} {
		if name == "" {
			continue
		}
		a, closer, err := openOne(ctx, cfg, name)
		if err != nil {
			logger.Warn("Storage backend unavailable", logger.F("backend", name), logger.Err(err))
			continue
		}
		adapters = append(adapters, a)
		if closer != nil {
			b.closers = append(b.closers, closer)
		}
	}

	switch len(adapters) {
	case 0:
		return nil, ErrNoBackend
	case 1:
		b.Adapter = adapters[0]
	default:
		b.Adapter = NewFallback(adapters...)
	}
	return b, nil
}

func openOne(ctx context.Context, cfg *config.Config, name string) (Adapter, func() error, error) {
	switch name {
	case config.BackendFile:
		return NewFileStore(filepath.Join(cfg.DataDir, DataFileName)), nil, nil
	case config.BackendSQLite:
		s, err := OpenSQLite(filepath.Join(cfg.DataDir, "focusboard.db"))
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("postgres backend needs database_url")
		}
		p, err := OpenPostgres(ctx, cfg.DatabaseURL, cfg.Profile)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	case config.BackendMemory:
		return NewMemory(), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", name)
}
