package store

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/investsync/internal/domain"
	testingutil "github.com/aristath/investsync/internal/testing"
)

var candleLayout = []domain.Column{
	{Name: "figi", Type: domain.ColumnText, Indexed: true},
	{Name: "time", Type: domain.ColumnTime},
	{Name: "volume", Type: domain.ColumnInt},
	{Name: "open", Type: domain.ColumnFloat},
	{Name: "map", Type: domain.ColumnText, Indexed: true},
}

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db := testingutil.NewTestDB(t, "store")
	s := NewSQLiteStore(db, zerolog.Nop())
	require.NoError(t, s.EnsureTable(context.Background(), "candles", candleLayout))
	return s
}

func candleBatch(figi string, minutes ...int) domain.Batch {
	b := domain.NewBatch("figi", "time", "volume", "open", "map")
	base := time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)
	for _, m := range minutes {
		ts := base.Add(time.Duration(m) * time.Minute)
		b.Append(figi, ts, int64(10), 100.5, figi+ts.Format("2006-01-02 15:04:05"))
	}
	return b
}

func TestSQLiteStore_AppendAndReadScopedKeys(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	require.NoError(t, s.AppendRows(ctx, "candles", candleBatch("A", 0, 1)))
	require.NoError(t, s.AppendRows(ctx, "candles", candleBatch("B", 0)))

	all, err := s.ReadKeys(ctx, "candles", "map")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	scoped, err := s.ReadKeys(ctx, "candles", "map", domain.Filter{Column: "figi", Value: "A"})
	require.NoError(t, err)
	assert.Equal(t, domain.NewKeySet("A2024-03-01 07:00:00", "A2024-03-01 07:01:00"), scoped)

	n, err := s.Count(ctx, "candles")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestSQLiteStore_NullsAndEmptyBatch(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	b := domain.NewBatch("figi", "map")
	b.Append("A", nil)
	b.Append(nil, "K")
	require.NoError(t, s.AppendRows(ctx, "candles", b))
	require.NoError(t, s.AppendRows(ctx, "candles", domain.Batch{}))

	keys, err := s.ReadKeys(ctx, "candles", "map")
	require.NoError(t, err)
	assert.Equal(t, domain.NewKeySet("K"), keys)
}

func TestSQLiteStore_AppendIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	b := candleBatch("A", 0)
	b.Columns = append(b.Columns, "missing_column")
	b.Rows[0] = append(b.Rows[0], "x")

	assert.Error(t, s.AppendRows(ctx, "candles", b))
	n, err := s.Count(ctx, "candles")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSQLiteStore_EnsureTableAddsColumns(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	wider := append([]domain.Column{}, candleLayout...)
	wider = append(wider, domain.Column{Name: "close", Type: domain.ColumnFloat})
	require.NoError(t, s.EnsureTable(ctx, "candles", wider))
	require.NoError(t, s.EnsureTable(ctx, "candles", wider))

	cols, err := s.tableColumns(ctx, "candles")
	require.NoError(t, err)
	assert.Contains(t, cols, "close")
}

func TestSQLiteStore_RejectsUnsafeIdentifiers(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	_, err := s.ReadKeys(ctx, `candles"; DROP TABLE candles; --`, "map")
	assert.Error(t, err)

	_, err = s.ReadKeys(ctx, "candles", "map", domain.Filter{Column: "figi OR 1=1", Value: "A"})
	assert.Error(t, err)

	assert.Error(t, s.EnsureTable(ctx, "bad name", candleLayout))

	// Values are bound, so hostile content is just data.
	scoped, err := s.ReadKeys(ctx, "candles", "map", domain.Filter{Column: "figi", Value: "' OR '1'='1"})
	require.NoError(t, err)
	assert.Empty(t, scoped)
}

func TestSQLiteStore_MissingTableIsError(t *testing.T) {
	s := newSQLiteStore(t)
	_, err := s.ReadKeys(context.Background(), "nope", "map")
	assert.Error(t, err)
}

func TestValidateIdent(t *testing.T) {
	for _, ok := range []string{"instruments", "candles_1m", "_x", "Map"} {
		assert.NoError(t, ValidateIdent(ok), ok)
	}
	for _, bad := range []string{"", "1abc", "a-b", "a b", `a"b`, "tinkoff.instruments"} {
		assert.Error(t, ValidateIdent(bad), bad)
	}
}
