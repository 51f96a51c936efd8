package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StateStoreAdapter хранит срезы состояния клиента в PostgreSQL.
// Пригодится, когда одно состояние делят несколько машин пользователя.
type StateStoreAdapter struct {
	pool      *pgxpool.Pool
	profileID string
}

// NewStateStoreAdapter создаёт таблицу при необходимости. profileID
// разделяет состояния разных профилей в одной базе.
func NewStateStoreAdapter(ctx context.Context, pool *pgxpool.Pool, profileID string) (*StateStoreAdapter, error) {
	_, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS app_state (
		profile_id VARCHAR(64) NOT NULL,
		slice      VARCHAR(64) NOT NULL,
		payload    JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (profile_id, slice)
	)`)
	if err != nil {
		return nil, fmt.Errorf("PostgresStateStore: failed to ensure table: %w", err)
	}
	return &StateStoreAdapter{pool: pool, profileID: profileID}, nil
}

func (a *StateStoreAdapter) Load(ctx context.Context) (map[string][]byte, error) {
	rows, err := a.pool.Query(ctx, `SELECT slice, payload::text FROM app_state WHERE profile_id = $1`, a.profileID)
	if err != nil {
		return nil, fmt.Errorf("PostgresStateStore: failed to query state: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var slice, payload string
		if err := rows.Scan(&slice, &payload); err != nil {
			return nil, fmt.Errorf("PostgresStateStore: failed to scan slice: %w", err)
		}
		out[slice] = []byte(payload)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("PostgresStateStore: error during rows iteration: %w", err)
	}
	return out, nil
}

func (a *StateStoreAdapter) Save(ctx context.Context, slice string, payload []byte) error {
	_, err := a.pool.Exec(ctx,
		`INSERT INTO app_state (profile_id, slice, payload, updated_at)
		 VALUES ($1, $2, $3::jsonb, now())
		 ON CONFLICT (profile_id, slice) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		a.profileID, slice, string(payload),
	)
	if err != nil {
		return fmt.Errorf("PostgresStateStore: failed to save slice %s: %w", slice, err)
	}
	return nil
}

func (a *StateStoreAdapter) Delete(ctx context.Context, slice string) error {
	_, err := a.pool.Exec(ctx, `DELETE FROM app_state WHERE profile_id = $1 AND slice = $2`, a.profileID, slice)
	if err != nil {
		return fmt.Errorf("PostgresStateStore: failed to delete slice %s: %w", slice, err)
	}
	return nil
}

// Close закрывает пул.
func (a *StateStoreAdapter) Close() error {
	a.pool.Close()
	return nil
}
