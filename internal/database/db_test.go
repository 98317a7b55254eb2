package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T, name string) *DB {
	t.Helper()
	db, err := New(Config{Path: filepath.Join(t.TempDir(), name+".db"), Name: name})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNew_CreatesDirectoryAndResolvesPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dir")
	db, err := New(Config{Path: filepath.Join(dir, "store.db"), Profile: ProfileAppend, Name: NameStore})
	require.NoError(t, err)
	defer db.Close()

	assert.True(t, filepath.IsAbs(db.Path()))
	assert.Equal(t, NameStore, db.Name())
	assert.NoError(t, db.HealthCheck(context.Background()))
}

func TestBuildConnectionString(t *testing.T) {
	appendConn := buildConnectionString("/x.db", ProfileAppend)
	assert.Contains(t, appendConn, "journal_mode(WAL)")
	assert.Contains(t, appendConn, "synchronous(FULL)")

	standard := buildConnectionString("/x.db", ProfileStandard)
	assert.Contains(t, standard, "synchronous(NORMAL)")
	assert.Contains(t, standard, "busy_timeout(5000)")
}

func TestMigrate_JournalSchemaIsIdempotent(t *testing.T) {
	db := newDB(t, NameJournal)

	require.NoError(t, db.Migrate())
	require.NoError(t, db.Migrate())

	var name string
	err := db.Conn().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='sync_runs'").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "sync_runs", name)
}

func TestMigrate_UnknownNameIsNoop(t *testing.T) {
	db := newDB(t, NameStore)
	assert.NoError(t, db.Migrate())
}

func TestWithTransaction(t *testing.T) {
	db := newDB(t, "tx")
	_, err := db.Conn().Exec("CREATE TABLE t (v INTEGER)")
	require.NoError(t, err)

	count := func() int {
		var n int
		require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM t").Scan(&n))
		return n
	}

	err = WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO t VALUES (1)")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count())

	boom := errors.New("boom")
	err = WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		_, _ = tx.Exec("INSERT INTO t VALUES (2)")
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, count())

	err = WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		_, _ = tx.Exec("INSERT INTO t VALUES (3)")
		panic("bad")
	})
	assert.ErrorContains(t, err, "panic in transaction")
	assert.Equal(t, 1, count())

	assert.Error(t, WithTransaction(nil, func(*sql.Tx) error { return nil }))
}

func TestSnapshotTo(t *testing.T) {
	db := newDB(t, NameStore)
	_, err := db.Conn().Exec("CREATE TABLE candles (figi TEXT); INSERT INTO candles VALUES ('A'), ('B')")
	require.NoError(t, err)

	target := filepath.Join(t.TempDir(), "snap", "store.db")
	require.NoError(t, db.SnapshotTo(context.Background(), target))

	snap, err := New(Config{Path: target, Name: "snapshot"})
	require.NoError(t, err)
	defer snap.Close()

	var n int
	require.NoError(t, snap.Conn().QueryRow("SELECT COUNT(*) FROM candles").Scan(&n))
	assert.Equal(t, 2, n)

	// Existing targets are refused.
	assert.Error(t, db.SnapshotTo(context.Background(), target))
}

func TestGetStats(t *testing.T) {
	db := newDB(t, NameStore)
	stats, err := db.GetStats(context.Background())
	require.NoError(t, err)
	assert.Positive(t, stats.PageSize)
}
