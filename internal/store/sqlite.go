package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/rickgao/hitstreak/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id TEXT PRIMARY KEY,
	fetched_at INTEGER NOT NULL,
	source TEXT NOT NULL,
	record_count INTEGER NOT NULL,
	records BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS snapshots_fetched_at ON snapshots (fetched_at DESC);
`

// SQLiteStore keeps the most recent snapshots in a local SQLite file.
// Records are stored as one JSON document per snapshot.
type SQLiteStore struct {
	db   *sql.DB
	keep int
}

// OpenSQLite opens (or creates) the database at path and keeps at most keep snapshots.
func OpenSQLite(ctx context.Context, path string, keep int) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// One writer at a time; WAL lets readers proceed.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	if keep < 1 {
		keep = 1
	}
	return &SQLiteStore{db: db, keep: keep}, nil
}

// Save implements SnapshotStore.
func (s *SQLiteStore) Save(ctx context.Context, snap model.Snapshot) error {
	records, err := json.Marshal(snap.Records)
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, fetched_at, source, record_count, records)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`, snap.ID.String(), snap.FetchedAt.UnixMicro(), snap.Source, len(snap.Records), records)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM snapshots WHERE id NOT IN (
			SELECT id FROM snapshots ORDER BY fetched_at DESC LIMIT ?
		)
	`, s.keep)
	if err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Latest implements SnapshotStore.
func (s *SQLiteStore) Latest(ctx context.Context) (model.Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, fetched_at, source, records
		FROM snapshots
		ORDER BY fetched_at DESC
		LIMIT 1
	`)

	var (
		id        string
		fetchedAt int64
		snap      model.Snapshot
		records   []byte
	)
	if err := row.Scan(&id, &fetchedAt, &snap.Source, &records); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Snapshot{}, ErrNotFound
		}
		return model.Snapshot{}, fmt.Errorf("query latest snapshot: %w", err)
	}

	var err error
	if snap.ID, err = uuid.Parse(id); err != nil {
		return model.Snapshot{}, fmt.Errorf("parse snapshot id: %w", err)
	}
	snap.FetchedAt = time.UnixMicro(fetchedAt).UTC()
	if err := json.Unmarshal(records, &snap.Records); err != nil {
		return model.Snapshot{}, fmt.Errorf("decode records: %w", err)
	}

	return snap, nil
}

// List implements SnapshotStore.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]model.SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fetched_at, source, record_count
		FROM snapshots
		ORDER BY fetched_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var infos []model.SnapshotInfo
	for rows.Next() {
		var (
			id        string
			fetchedAt int64
			info      model.SnapshotInfo
		)
		if err := rows.Scan(&id, &fetchedAt, &info.Source, &info.Count); err != nil {
			return nil, err
		}
		if info.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse snapshot id: %w", err)
		}
		info.FetchedAt = time.UnixMicro(fetchedAt).UTC()
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return infos, nil
}

// Close implements SnapshotStore.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
