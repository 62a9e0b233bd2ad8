package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate())
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Migrate())
}

func TestSettings(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.GetSetting(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.SetSetting(ctx, "theme", "dark"))
	value, err := db.GetSetting(ctx, "theme")
	require.NoError(t, err)
	require.Equal(t, "dark", value)

	// Upsert replaces the previous value.
	require.NoError(t, db.SetSetting(ctx, "theme", "light"))
	value, err = db.GetSetting(ctx, "theme")
	require.NoError(t, err)
	require.Equal(t, "light", value)
}

func TestForeignKeyCascade(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	conn := db.Conn()

	_, err := conn.ExecContext(ctx, `INSERT INTO movies (id, path) VALUES ('m1', '/library/x.mkv')`)
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, `INSERT INTO source_records (movie_id, source_id, position, payload) VALUES ('m1', 'tmdb', 0, '{}')`)
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, `INSERT INTO canonical_records (movie_id, payload) VALUES ('m1', '{}')`)
	require.NoError(t, err)

	_, err = conn.ExecContext(ctx, `DELETE FROM movies WHERE id = 'm1'`)
	require.NoError(t, err)

	var count int
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM source_records`).Scan(&count))
	require.Zero(t, count, "source records should cascade on movie delete")
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM canonical_records`).Scan(&count))
	require.Zero(t, count, "canonical records should cascade on movie delete")
}
