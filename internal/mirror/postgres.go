// Package mirror replicates local collections into a remote PostgreSQL store.
package mirror

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/lib/pq"

	"github.com/benvon/questlog/internal/storage"
)

var tables = map[storage.Collection]string{
	storage.CollectionTasks:         "mirror_tasks",
	storage.CollectionCategories:    "mirror_categories",
	storage.CollectionProfile:       "mirror_profile",
	storage.CollectionDailyMissions: "mirror_daily_missions",
	storage.CollectionPreferences:   "mirror_preferences",
}

// Row is one mirrored record
type Row struct {
	ID          string
	Payload     []byte
	SyncVersion int64
}

// Result summarizes one collection sync
type Result struct {
	Upserted int
	Skipped  int
	Pruned   int
}

// PostgresMirror upserts records keyed by id; a row is only overwritten by a
// payload with an equal or higher sync_version
type PostgresMirror struct {
	db *sql.DB
}

// Open connects to dsn and verifies the connection
func Open(ctx context.Context, dsn string) (*PostgresMirror, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return &PostgresMirror{db: db}, nil
}

// NewPostgresMirror wraps an existing connection pool
func NewPostgresMirror(db *sql.DB) *PostgresMirror {
	return &PostgresMirror{db: db}
}

// TableFor returns the mirror table of a collection
func TableFor(c storage.Collection) (string, error) {
	t, ok := tables[c]
	if !ok {
		return "", fmt.Errorf("collection %q is not mirrored", c)
	}
	return t, nil
}

// EnsureSchema creates the mirror tables when missing
func (m *PostgresMirror) EnsureSchema(ctx context.Context) error {
	for _, c := range storage.Collections {
		table := tables[c]
		stmt := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id           TEXT PRIMARY KEY,
				payload      JSONB NOT NULL,
				sync_version BIGINT NOT NULL DEFAULT 0,
				synced_at    TIMESTAMPTZ NOT NULL DEFAULT now()
			)`, pq.QuoteIdentifier(table))
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create %s: %w", table, err)
		}
	}
	return nil
}

// Sync mirrors the full local contents of a collection: every record is
// upserted and rows missing locally are pruned
func (m *PostgresMirror) Sync(ctx context.Context, c storage.Collection, records map[string][]byte) (Result, error) {
	table, err := TableFor(c)
	if err != nil {
		return Result{}, err
	}
	rows, err := RowsFrom(records)
	if err != nil {
		return Result{}, err
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	upsert := fmt.Sprintf(`
		INSERT INTO %[1]s (id, payload, sync_version, synced_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE
		SET payload = EXCLUDED.payload, sync_version = EXCLUDED.sync_version, synced_at = now()
		WHERE %[1]s.sync_version <= EXCLUDED.sync_version`, pq.QuoteIdentifier(table))

	var res Result
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
		out, err := tx.ExecContext(ctx, upsert, r.ID, string(r.Payload), r.SyncVersion)
		if err != nil {
			return Result{}, fmt.Errorf("failed to upsert %s/%s: %w", c, r.ID, err)
		}
		if n, _ := out.RowsAffected(); n > 0 {
			res.Upserted++
		} else {
			res.Skipped++
		}
	}

	prune := fmt.Sprintf(`DELETE FROM %s WHERE NOT (id = ANY($1))`, pq.QuoteIdentifier(table))
	out, err := tx.ExecContext(ctx, prune, pq.Array(ids))
	if err != nil {
		return Result{}, fmt.Errorf("failed to prune %s: %w", c, err)
	}
	if n, _ := out.RowsAffected(); n > 0 {
		res.Pruned = int(n)
	}

	if err := tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("failed to commit %s sync: %w", c, err)
	}
	return res, nil
}

// Fetch reads every mirrored row of a collection ordered by id
func (m *PostgresMirror) Fetch(ctx context.Context, c storage.Collection) ([]Row, error) {
	table, err := TableFor(c)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`SELECT id, payload, sync_version FROM %s ORDER BY id`, pq.QuoteIdentifier(table))
	rs, err := m.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer func() { _ = rs.Close() }()

	var out []Row
	for rs.Next() {
		var r Row
		if err := rs.Scan(&r.ID, &r.Payload, &r.SyncVersion); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		out = append(out, r)
	}
	return out, rs.Err()
}

// HealthCheck pings the database
func (m *PostgresMirror) HealthCheck(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

// Close closes the connection pool
func (m *PostgresMirror) Close() error {
	return m.db.Close()
}

// RowsFrom converts stored records into mirror rows sorted by id, reading
// sync_version from each JSON payload (absent means 0)
func RowsFrom(records map[string][]byte) ([]Row, error) {
	rows := make([]Row, 0, len(records))
	for id, payload := range records {
		var v struct {
			SyncVersion int64 `json:"sync_version"`
		}
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, fmt.Errorf("failed to decode record %s: %w", id, err)
		}
		rows = append(rows, Row{ID: id, Payload: payload, SyncVersion: v.SyncVersion})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}
