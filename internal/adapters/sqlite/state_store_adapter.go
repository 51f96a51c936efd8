package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const createTable = `CREATE TABLE IF NOT EXISTS app_state (
	slice      TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// StateStoreAdapter хранит срезы состояния в локальном файле SQLite.
type StateStoreAdapter struct {
	db  *sql.DB
	now func() time.Time
}

// NewStateStoreAdapter открывает (или создаёт) базу по пути path.
func NewStateStoreAdapter(ctx context.Context, path string) (*StateStoreAdapter, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("SQLiteStateStore: failed to open %s: %w", path, err)
	}
	// Один писатель: SQLite всё равно сериализует запись
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("SQLiteStateStore: failed to create table: %w", err)
	}
	return &StateStoreAdapter{db: db, now: time.Now}, nil
}

func (a *StateStoreAdapter) Load(ctx context.Context) (map[string][]byte, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT slice, payload FROM app_state`)
	if err != nil {
		return nil, fmt.Errorf("SQLiteStateStore: failed to query state: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var slice string
		var payload []byte
		if err := rows.Scan(&slice, &payload); err != nil {
			return nil, fmt.Errorf("SQLiteStateStore: failed to scan slice: %w", err)
		}
		out[slice] = payload
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("SQLiteStateStore: error during rows iteration: %w", err)
	}
	return out, nil
}

func (a *StateStoreAdapter) Save(ctx context.Context, slice string, payload []byte) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO app_state (slice, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(slice) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		slice, payload, a.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("SQLiteStateStore: failed to save slice %s: %w", slice, err)
	}
	return nil
}

func (a *StateStoreAdapter) Delete(ctx context.Context, slice string) error {
	if _, err := a.db.ExecContext(ctx, `DELETE FROM app_state WHERE slice = ?`, slice); err != nil {
		return fmt.Errorf("SQLiteStateStore: failed to delete slice %s: %w", slice, err)
	}
	return nil
}

func (a *StateStoreAdapter) Close() error {
	return a.db.Close()
}
