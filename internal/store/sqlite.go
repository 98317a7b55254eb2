package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/investsync/internal/database"
	"github.com/aristath/investsync/internal/domain"
)

// SQLiteStore keeps synced tables in a local SQLite database
type SQLiteStore struct {
	db  *database.DB
	log zerolog.Logger
}

// NewSQLiteStore creates a store on an open database
func NewSQLiteStore(db *database.DB, log zerolog.Logger) *SQLiteStore {
	return &SQLiteStore{
		db:  db,
		log: log.With().Str("store", "sqlite").Logger(),
	}
}

// DB returns the underlying database.
func (s *SQLiteStore) DB() *database.DB {
	return s.db
}

func quoteSQLite(name string) string {
	return `"` + name + `"`
}

func sqliteType(t domain.ColumnType) string {
	switch t {
	case domain.ColumnFloat:
		return "REAL"
	case domain.ColumnInt, domain.ColumnBool:
		return "INTEGER"
	case domain.ColumnTime:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

// EnsureTable creates table with columns and adds any columns missing from
// an existing table.
func (s *SQLiteStore) EnsureTable(ctx context.Context, table string, columns []domain.Column) error {
	if err := ValidateIdent(table); err != nil {
		return err
	}
	for _, c := range columns {
		if err := ValidateIdent(c.Name); err != nil {
			return err
		}
	}

	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = quoteSQLite(c.Name) + " " + sqliteType(c.Type)
	}
	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteSQLite(table), strings.Join(defs, ", "))
	if _, err := s.db.Conn().ExecContext(ctx, create); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	existing, err := s.tableColumns(ctx, table)
	if err != nil {
		return err
	}
	for _, c := range columns {
		if _, ok := existing[c.Name]; ok {
			continue
		}
		alter := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", quoteSQLite(table), quoteSQLite(c.Name), sqliteType(c.Type))
		if _, err := s.db.Conn().ExecContext(ctx, alter); err != nil {
			return fmt.Errorf("failed to add column %s.%s: %w", table, c.Name, err)
		}
		s.log.Info().Str("table", table).Str("column", c.Name).Msg("Added column")
	}

	for _, c := range columns {
		if !c.Indexed {
			continue
		}
		index := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
			quoteSQLite(indexName(table, c.Name)), quoteSQLite(table), quoteSQLite(c.Name))
		if _, err := s.db.Conn().ExecContext(ctx, index); err != nil {
			return fmt.Errorf("failed to index %s.%s: %w", table, c.Name, err)
		}
	}
	return nil
}

func (s *SQLiteStore) tableColumns(ctx context.Context, table string) (map[string]struct{}, error) {
	rows, err := s.db.Conn().QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s: %w", table, err)
		}
		cols[name] = struct{}{}
	}
	return cols, rows.Err()
}

// ReadKeys returns the distinct non-null keyColumn values of table
// matching every filter.
func (s *SQLiteStore) ReadKeys(ctx context.Context, table, keyColumn string, filters ...domain.Filter) (domain.KeySet, error) {
	if err := validateAll(append([]string{table, keyColumn}, filterColumns(filters)...)...); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT DISTINCT %s FROM %s WHERE %s IS NOT NULL",
		quoteSQLite(keyColumn), quoteSQLite(table), quoteSQLite(keyColumn))
	args := make([]any, 0, len(filters))
	for _, f := range filters {
		query += " AND " + quoteSQLite(f.Column) + " = ?"
		args = append(args, f.Value)
	}

	rows, err := s.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read keys of %s: %w", table, err)
	}
	defer rows.Close()

	keys := domain.NewKeySet()
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key of %s: %w", table, err)
		}
		keys.Add(key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read keys of %s: %w", table, err)
	}
	return keys, nil
}

// AppendRows inserts the batch in one transaction.
func (s *SQLiteStore) AppendRows(ctx context.Context, table string, batch domain.Batch) error {
	if batch.Empty() {
		return nil
	}
	if err := validateAll(append([]string{table}, batch.Columns...)...); err != nil {
		return err
	}

	quoted := make([]string, len(batch.Columns))
	marks := make([]string, len(batch.Columns))
	for i, c := range batch.Columns {
		quoted[i] = quoteSQLite(c)
		marks[i] = "?"
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteSQLite(table), strings.Join(quoted, ", "), strings.Join(marks, ", "))

	err := database.WithTransactionContext(ctx, s.db.Conn(), func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insert)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, row := range batch.Rows {
			if _, err := stmt.ExecContext(ctx, row...); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append %d rows to %s: %w", batch.Len(), table, err)
	}

	s.log.Debug().Str("table", table).Int("rows", batch.Len()).Msg("Appended rows")
	return nil
}

// Count returns the number of rows in table.
func (s *SQLiteStore) Count(ctx context.Context, table string) (int64, error) {
	if err := ValidateIdent(table); err != nil {
		return 0, err
	}
	var n int64
	if err := s.db.Conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteSQLite(table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
