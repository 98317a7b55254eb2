package reliability

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/investsync/internal/database"
	testingutil "github.com/aristath/investsync/internal/testing"
)

type memoryObjects struct {
	objects   map[string][]byte
	deleteErr map[string]error
	deleted   []string
}

func newMemoryObjects(keys ...string) *memoryObjects {
	m := &memoryObjects{objects: map[string][]byte{}, deleteErr: map[string]error{}}
	for _, k := range keys {
		m.objects[k] = []byte("x")
	}
	return m
}

func (m *memoryObjects) Upload(_ context.Context, key string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memoryObjects) List(_ context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	for k, v := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, ObjectInfo{Key: k, SizeBytes: int64(len(v))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *memoryObjects) Delete(_ context.Context, key string) error {
	if err := m.deleteErr[key]; err != nil {
		return err
	}
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

type stubPruner struct {
	cutoff time.Time
	err    error
}

func (p *stubPruner) Prune(_ context.Context, cutoff time.Time) (int64, error) {
	p.cutoff = cutoff
	return 3, p.err
}

func seededStore(t *testing.T) *database.DB {
	t.Helper()
	db := testingutil.NewTestDBWithSchema(t, "store",
		`CREATE TABLE candles (map TEXT, close REAL); INSERT INTO candles VALUES ('a', 1.5);`)
	return db
}

func TestBackupService_CreateAndUpload(t *testing.T) {
	db := seededStore(t)
	objects := newMemoryObjects()
	svc := NewBackupService(db, objects, t.TempDir(), "investsync/", 7, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 14, 30, 22, 0, time.UTC) }

	info, err := svc.CreateAndUpload(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "investsync/store-2026-03-01-143022.db.gz", info.Key)
	assert.True(t, strings.HasPrefix(info.Checksum, "sha256:"))
	require.Contains(t, objects.objects, info.Key)
	assert.Equal(t, int64(len(objects.objects[info.Key])), info.SizeBytes)

	gz, err := gzip.NewReader(bytes.NewReader(objects.objects[info.Key]))
	require.NoError(t, err)
	raw, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("SQLite format 3\x00")))
}

func TestBackupService_ListBackupsNewestFirst(t *testing.T) {
	db := seededStore(t)
	objects := newMemoryObjects(
		"investsync/store-2026-01-01-000000.db.gz",
		"investsync/store-2026-01-03-000000.db.gz",
		"investsync/store-2026-01-02-000000.db.gz",
		"investsync/store-garbage.db.gz",
		"investsync/other-2026-01-04-000000.db.gz",
	)
	svc := NewBackupService(db, objects, t.TempDir(), "investsync/", 7, zerolog.Nop())

	backups, err := svc.ListBackups(context.Background())
	require.NoError(t, err)
	require.Len(t, backups, 3)
	assert.Equal(t, "investsync/store-2026-01-03-000000.db.gz", backups[0].Key)
	assert.Equal(t, "investsync/store-2026-01-01-000000.db.gz", backups[2].Key)
}

func TestBackupService_RotateKeepsNewest(t *testing.T) {
	db := seededStore(t)
	objects := newMemoryObjects(
		"p/store-2026-01-01-000000.db.gz",
		"p/store-2026-01-02-000000.db.gz",
		"p/store-2026-01-03-000000.db.gz",
		"p/store-2026-01-04-000000.db.gz",
	)
	objects.deleteErr["p/store-2026-01-01-000000.db.gz"] = errors.New("denied")
	svc := NewBackupService(db, objects, t.TempDir(), "p/", 2, zerolog.Nop())

	deleted, err := svc.Rotate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, deleted)
	assert.Equal(t, []string{"p/store-2026-01-02-000000.db.gz"}, objects.deleted)
	assert.Contains(t, objects.objects, "p/store-2026-01-04-000000.db.gz")
	assert.Contains(t, objects.objects, "p/store-2026-01-03-000000.db.gz")
}

func TestBackupService_RotateDisabled(t *testing.T) {
	db := seededStore(t)
	objects := newMemoryObjects("p/store-2026-01-01-000000.db.gz")
	svc := NewBackupService(db, objects, t.TempDir(), "p/", 0, zerolog.Nop())

	deleted, err := svc.Rotate(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.Empty(t, objects.deleted)
}

func TestMaintenanceService_Run(t *testing.T) {
	db := seededStore(t)
	pruner := &stubPruner{}
	now := time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC)
	svc := NewMaintenanceService([]*database.DB{db}, pruner, 24*time.Hour, zerolog.Nop())
	svc.now = func() time.Time { return now }

	require.NoError(t, svc.Run(context.Background()))
	assert.Equal(t, now.Add(-24*time.Hour), pruner.cutoff)
}

func TestMaintenanceService_PruneError(t *testing.T) {
	db := seededStore(t)
	svc := NewMaintenanceService([]*database.DB{db}, &stubPruner{err: errors.New("locked")}, time.Hour, zerolog.Nop())

	err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locked")
}

func TestMaintenanceService_ClosedDatabaseHalts(t *testing.T) {
	db := seededStore(t)
	require.NoError(t, db.Close())
	pruner := &stubPruner{}
	svc := NewMaintenanceService([]*database.DB{db}, pruner, time.Hour, zerolog.Nop())

	assert.Error(t, svc.Run(context.Background()))
	assert.True(t, pruner.cutoff.IsZero())
}
