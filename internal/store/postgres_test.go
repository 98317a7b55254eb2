package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/investsync/internal/domain"
)

func TestEnsureTableSQL(t *testing.T) {
	stmts := ensureTableSQL("candles", candleLayout)

	require.Len(t, stmts, 1+len(candleLayout)+2)
	assert.Equal(t,
		`CREATE TABLE IF NOT EXISTS "candles" ("figi" TEXT, "time" TIMESTAMP, "volume" BIGINT, "open" DOUBLE PRECISION, "map" TEXT)`,
		stmts[0])
	assert.Equal(t, `ALTER TABLE "candles" ADD COLUMN IF NOT EXISTS "figi" TEXT`, stmts[1])
	assert.Equal(t, `CREATE INDEX IF NOT EXISTS "idx_candles_figi" ON "candles" ("figi")`, stmts[len(stmts)-2])
	assert.Equal(t, `CREATE INDEX IF NOT EXISTS "idx_candles_map" ON "candles" ("map")`, stmts[len(stmts)-1])
}

func TestReadKeysSQL(t *testing.T) {
	query, args := readKeysSQL("candles", "map", []domain.Filter{
		{Column: "figi", Value: "BBG000HS77T5"},
		{Column: "volume", Value: int64(5)},
	})

	assert.Equal(t, `SELECT DISTINCT "map" FROM "candles" WHERE "map" IS NOT NULL AND "figi" = $1 AND "volume" = $2`, query)
	assert.Equal(t, []any{"BBG000HS77T5", int64(5)}, args)
}

func TestIndexNameIsBounded(t *testing.T) {
	long := "a_very_long_table_name_that_goes_on_and_on_and_on"
	assert.LessOrEqual(t, len(indexName(long, "another_long_column_name")), 63)
}

// TestPostgresStore_Integration runs against a live server when
// TEST_POSTGRES_DSN is set.
func TestPostgresStore_Integration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dsn, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	table := "candles_it_" + time.Now().Format("150405")
	require.NoError(t, s.EnsureTable(ctx, table, candleLayout))
	t.Cleanup(func() {
		_, _ = s.pool.Exec(context.Background(), "DROP TABLE IF EXISTS "+quotePG(table))
	})

	require.NoError(t, s.AppendRows(ctx, table, candleBatch("A", 0, 1)))
	require.NoError(t, s.AppendRows(ctx, table, candleBatch("B", 0)))

	keys, err := s.ReadKeys(ctx, table, "map", domain.Filter{Column: "figi", Value: "A"})
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}
