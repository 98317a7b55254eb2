package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/aristath/investsync/internal/domain"
)

// PostgresStore keeps synced tables in PostgreSQL and appends with COPY
type PostgresStore struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewPostgresStore connects a pool to dsn
func NewPostgresStore(ctx context.Context, dsn string, log zerolog.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return &PostgresStore{
		pool: pool,
		log:  log.With().Str("store", "postgres").Logger(),
	}, nil
}

func quotePG(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func postgresType(t domain.ColumnType) string {
	switch t {
	case domain.ColumnFloat:
		return "DOUBLE PRECISION"
	case domain.ColumnInt:
		return "BIGINT"
	case domain.ColumnBool:
		return "BOOLEAN"
	case domain.ColumnTime:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

// ensureTableSQL returns the statements that create table and bring its
// columns and indexes up to date.
func ensureTableSQL(table string, columns []domain.Column) []string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = quotePG(c.Name) + " " + postgresType(c.Type)
	}

	stmts := []string{fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quotePG(table), strings.Join(defs, ", "))}
	for _, c := range columns {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s",
			quotePG(table), quotePG(c.Name), postgresType(c.Type)))
	}
	for _, c := range columns {
		if c.Indexed {
			stmts = append(stmts, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
				quotePG(indexName(table, c.Name)), quotePG(table), quotePG(c.Name)))
		}
	}
	return stmts
}

// readKeysSQL builds the scoped distinct-key query with $n placeholders.
func readKeysSQL(table, keyColumn string, filters []domain.Filter) (string, []any) {
	query := fmt.Sprintf("SELECT DISTINCT %s FROM %s WHERE %s IS NOT NULL",
		quotePG(keyColumn), quotePG(table), quotePG(keyColumn))
	args := make([]any, 0, len(filters))
	for i, f := range filters {
		query += fmt.Sprintf(" AND %s = $%d", quotePG(f.Column), i+1)
		args = append(args, f.Value)
	}
	return query, args
}

// EnsureTable creates table and adds missing columns in one transaction.
func (s *PostgresStore) EnsureTable(ctx context.Context, table string, columns []domain.Column) error {
	names := []string{table}
	for _, c := range columns {
		names = append(names, c.Name)
	}
	if err := validateAll(names...); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx pgx.Tx) error {
		for _, stmt := range ensureTableSQL(table, columns) {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("failed to ensure table %s: %w", table, err)
			}
		}
		return nil
	})
}

// ReadKeys returns the distinct non-null keyColumn values of table
// matching every filter.
func (s *PostgresStore) ReadKeys(ctx context.Context, table, keyColumn string, filters ...domain.Filter) (domain.KeySet, error) {
	if err := validateAll(append([]string{table, keyColumn}, filterColumns(filters)...)...); err != nil {
		return nil, err
	}

	query, args := readKeysSQL(table, keyColumn, filters)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read keys of %s: %w", table, err)
	}

	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to read keys of %s: %w", table, err)
	}
	return domain.NewKeySet(keys...), nil
}

// AppendRows copies the batch into table inside a transaction.
func (s *PostgresStore) AppendRows(ctx context.Context, table string, batch domain.Batch) error {
	if batch.Empty() {
		return nil
	}
	if err := validateAll(append([]string{table}, batch.Columns...)...); err != nil {
		return err
	}

	var copied int64
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, batch.Columns, pgx.CopyFromRows(batch.Rows))
		copied = n
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to append %d rows to %s: %w", batch.Len(), table, err)
	}

	s.log.Debug().Str("table", table).Int64("rows", copied).Msg("Copied rows")
	return nil
}

func (s *PostgresStore) inTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	return fn(tx)
}

// Ping checks the connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
