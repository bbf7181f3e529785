package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/existflow/focusboard/internal/model"
)

const migrationPostgres = `
CREATE TABLE IF NOT EXISTS focusboard_data (
    profile TEXT PRIMARY KEY,
    data JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// PostgresStore keeps one JSONB document per profile.
type PostgresStore struct {
	db      *sql.DB
	profile string
}

// OpenPostgres connects to dsn and creates the table if needed.
func OpenPostgres(ctx context.Context, dsn, profile string) (*PostgresStore, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if _, err := sqlDB.ExecContext(ctx, migrationPostgres); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if profile == "" {
		profile = "default"
	}
	return &PostgresStore{db: sqlDB, profile: profile}, nil
}

func (p *PostgresStore) Close() error { return p.db.Close() }

func (p *PostgresStore) Save(ctx context.Context, data model.AppData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO focusboard_data (profile, data, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (profile) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		p.profile, string(raw))
	return err
}

func (p *PostgresStore) Load(ctx context.Context) (model.AppData, bool, error) {
	var raw []byte
	err := p.db.QueryRowContext(ctx, `SELECT data FROM focusboard_data WHERE profile = $1`, p.profile).Scan(&raw)
	if err == sql.ErrNoRows {
		return model.AppData{}, false, nil
	}
	if err != nil {
		return model.AppData{}, false, err
	}

	var data model.AppData
	if err := json.Unmarshal(raw, &data); err != nil {
		return model.AppData{}, false, fmt.Errorf("corrupt document for %s: %w", p.profile, err)
	}
	data.Normalize()
	return data, true, nil
}
