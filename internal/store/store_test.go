package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/hitstreak/internal/config"
	"github.com/rickgao/hitstreak/internal/model"
)

func testSnapshot(fetchedAt time.Time, names ...string) model.Snapshot {
	records := make([]model.PlayerStreakRecord, len(names))
	for i, name := range names {
		records[i] = model.PlayerStreakRecord{
			PlayerID:      100 + i,
			Name:          name,
			Team:          "SEA",
			Position:      "CF",
			CurrentStreak: 10 - i,
			SeasonBest:    12,
			GamesWithHit:  30,
			Last15:        11,
			GamesLogged:   40,
			Batting: model.BattingLine{
				GamesPlayed: 40, AtBats: 160, Hits: 52, Walks: 12,
				Singles: 40, Doubles: 8, Triples: 1, HomeRuns: 3, Average: 0.325,
			},
		}
	}
	return model.NewSnapshot(records, fetchedAt)
}

// exerciseStore runs the behaviour every SnapshotStore must share.
func exerciseStore(t *testing.T, s SnapshotStore) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Latest(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Latest() on empty store error = %v, want ErrNotFound", err)
	}

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	older := testSnapshot(base, "Julio Rodriguez")
	newer := testSnapshot(base.Add(time.Hour), "Cal Raleigh", "Julio Rodriguez")

	for _, snap := range []model.Snapshot{newer, older} {
		if err := s.Save(ctx, snap); err != nil {
			t.Fatalf("Save() failed: %v", err)
		}
	}

	// Saving the same snapshot again is a no-op.
	if err := s.Save(ctx, newer); err != nil {
		t.Fatalf("Save() duplicate failed: %v", err)
	}

	got, err := s.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest() failed: %v", err)
	}
	if diff := cmp.Diff(newer, got); diff != "" {
		t.Errorf("Latest() mismatch (-want +got):\n%s", diff)
	}

	infos, err := s.List(ctx, 10)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	want := []model.SnapshotInfo{newer.Info(), older.Info()}
	if diff := cmp.Diff(want, infos); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "streaks.db"), 10)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer s.Close()

	exerciseStore(t, s)
}

func TestSQLiteStore_Prune(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "streaks.db"), 2)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer s.Close()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	var saved []model.Snapshot
	for i := range 4 {
		snap := testSnapshot(base.Add(time.Duration(i)*time.Hour), "Player")
		saved = append(saved, snap)
		if err := s.Save(ctx, snap); err != nil {
			t.Fatalf("Save() failed: %v", err)
		}
	}

	infos, err := s.List(ctx, 10)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("len(List()) = %d, want 2", len(infos))
	}
	if infos[0].ID != saved[3].ID || infos[1].ID != saved[2].ID {
		t.Errorf("kept %v, %v, want the two newest", infos[0].ID, infos[1].ID)
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "streaks.db")

	s, err := OpenSQLite(ctx, path, 5)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	snap := testSnapshot(time.Date(2025, 7, 4, 18, 30, 0, 0, time.UTC), "Bobby Witt Jr.")
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	s.Close()

	s, err = OpenSQLite(ctx, path, 5)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	got, err := s.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest() failed: %v", err)
	}
	if got.ID != snap.ID || !got.FetchedAt.Equal(snap.FetchedAt) {
		t.Errorf("Latest() = %v at %v, want %v at %v", got.ID, got.FetchedAt, snap.ID, snap.FetchedAt)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("none", func(t *testing.T) {
		s, err := Open(ctx, config.StorageConfig{Driver: config.DriverNone}, nil)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		if s != nil {
			t.Errorf("Open(none) = %T, want nil", s)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := config.StorageConfig{
			Driver:     config.DriverSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "streaks.db"),
			Keep:       3,
		}
		s, err := Open(ctx, cfg, nil)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		defer s.Close()
		if _, ok := s.(*SQLiteStore); !ok {
			t.Errorf("Open(sqlite) = %T, want *SQLiteStore", s)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, err := Open(ctx, config.StorageConfig{Driver: "redis"}, nil); err == nil {
			t.Error("expected error, got nil")
		}
	})
}

func TestToRecordRows(t *testing.T) {
	snap := testSnapshot(time.Now(), "A", "B", "C")
	rows := toRecordRows(snap.Records)

	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}
	for i, r := range rows {
		if r.Rank != i+1 {
			t.Errorf("rows[%d].Rank = %d, want %d", i, r.Rank, i+1)
		}
		if r.Name != snap.Records[i].Name {
			t.Errorf("rows[%d].Name = %q, want %q", i, r.Name, snap.Records[i].Name)
		}
	}
}

// TestPostgresStore runs against a live database when STREAKS_TEST_POSTGRES_URL is set.
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("STREAKS_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("STREAKS_TEST_POSTGRES_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	s := NewPostgres(pool)
	defer s.Close()

	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if _, err := pool.Exec(ctx, "TRUNCATE streak_snapshots CASCADE"); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	exerciseStore(t, s)
}
