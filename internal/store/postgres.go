package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/hitstreak/internal/model"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS streak_snapshots (
	id UUID PRIMARY KEY,
	fetched_at TIMESTAMPTZ NOT NULL,
	source TEXT NOT NULL,
	record_count INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS streak_snapshots_fetched_at ON streak_snapshots (fetched_at DESC);

CREATE TABLE IF NOT EXISTS streak_records (
	snapshot_id UUID NOT NULL REFERENCES streak_snapshots (id) ON DELETE CASCADE,
	rank INTEGER NOT NULL,
	player_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	team TEXT NOT NULL,
	position TEXT NOT NULL,
	current_streak INTEGER NOT NULL,
	season_best INTEGER NOT NULL,
	games_with_hit INTEGER NOT NULL,
	last_15 INTEGER NOT NULL,
	games_logged INTEGER NOT NULL,
	games_played INTEGER NOT NULL,
	at_bats INTEGER NOT NULL,
	hits INTEGER NOT NULL,
	walks INTEGER NOT NULL,
	singles INTEGER NOT NULL,
	doubles INTEGER NOT NULL,
	triples INTEGER NOT NULL,
	home_runs INTEGER NOT NULL,
	avg DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (snapshot_id, player_id)
);
`

// PostgresStore keeps every snapshot in PostgreSQL, one row per record.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an open pool. The store owns the pool and closes it.
func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the snapshot tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}
	return nil
}

// recordRow is one streak_records row.
type recordRow struct {
	Rank int
	model.PlayerStreakRecord
}

// toRecordRows numbers records in display order starting at 1.
func toRecordRows(records []model.PlayerStreakRecord) []recordRow {
	rows := make([]recordRow, len(records))
	for i, r := range records {
		rows[i] = recordRow{Rank: i + 1, PlayerStreakRecord: r}
	}
	return rows
}

// Save implements SnapshotStore. The header and all records are written in one transaction.
func (s *PostgresStore) Save(ctx context.Context, snap model.Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `
		INSERT INTO streak_snapshots (id, fetched_at, source, record_count)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`, snap.ID, snap.FetchedAt, snap.Source, len(snap.Records))
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return nil
	}

	if err := batchInsertRecords(ctx, tx, snap.ID, toRecordRows(snap.Records)); err != nil {
		return fmt.Errorf("insert records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// batchInsertRecords inserts record rows using pgx.Batch.
func batchInsertRecords(ctx context.Context, tx pgx.Tx, id uuid.UUID, rows []recordRow) error {
	if len(rows) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range rows {
		b := r.Batting
		batch.Queue(`
			INSERT INTO streak_records (snapshot_id, rank, player_id, name, team, position,
				current_streak, season_best, games_with_hit, last_15, games_logged,
				games_played, at_bats, hits, walks, singles, doubles, triples, home_runs, avg)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		`, id, r.Rank, r.PlayerID, r.Name, r.Team, r.Position,
			r.CurrentStreak, r.SeasonBest, r.GamesWithHit, r.Last15, r.GamesLogged,
			b.GamesPlayed, b.AtBats, b.Hits, b.Walks, b.Singles, b.Doubles, b.Triples, b.HomeRuns, b.Average)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}

	return nil
}

// Latest implements SnapshotStore.
func (s *PostgresStore) Latest(ctx context.Context) (model.Snapshot, error) {
	var (
		snap model.Snapshot
		id   string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id::text, fetched_at, source
		FROM streak_snapshots
		ORDER BY fetched_at DESC
		LIMIT 1
	`).Scan(&id, &snap.FetchedAt, &snap.Source)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Snapshot{}, ErrNotFound
		}
		return model.Snapshot{}, fmt.Errorf("query latest snapshot: %w", err)
	}

	if snap.ID, err = uuid.Parse(id); err != nil {
		return model.Snapshot{}, fmt.Errorf("parse snapshot id: %w", err)
	}
	snap.FetchedAt = snap.FetchedAt.UTC()

	rows, err := s.pool.Query(ctx, `
		SELECT player_id, name, team, position,
			current_streak, season_best, games_with_hit, last_15, games_logged,
			games_played, at_bats, hits, walks, singles, doubles, triples, home_runs, avg
		FROM streak_records
		WHERE snapshot_id = $1
		ORDER BY rank
	`, snap.ID)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("query records: %w", err)
	}

	snap.Records, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.PlayerStreakRecord, error) {
		var r model.PlayerStreakRecord
		b := &r.Batting
		err := row.Scan(&r.PlayerID, &r.Name, &r.Team, &r.Position,
			&r.CurrentStreak, &r.SeasonBest, &r.GamesWithHit, &r.Last15, &r.GamesLogged,
			&b.GamesPlayed, &b.AtBats, &b.Hits, &b.Walks, &b.Singles, &b.Doubles, &b.Triples, &b.HomeRuns, &b.Average)
		return r, err
	})
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("scan records: %w", err)
	}

	return snap, nil
}

// List implements SnapshotStore.
func (s *PostgresStore) List(ctx context.Context, limit int) ([]model.SnapshotInfo, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, fetched_at, source, record_count
		FROM streak_snapshots
		ORDER BY fetched_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.SnapshotInfo, error) {
		var (
			info      model.SnapshotInfo
			id        string
			fetchedAt time.Time
		)
		if err := row.Scan(&id, &fetchedAt, &info.Source, &info.Count); err != nil {
			return info, err
		}
		info.FetchedAt = fetchedAt.UTC()
		var err error
		info.ID, err = uuid.Parse(id)
		return info, err
	})
}

// Close implements SnapshotStore.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
