package domain

import "context"

// Store is the analytical store collaborator. Identifiers are passed as
// parameters and never interpolated as values.
type Store interface {
	// ReadKeys returns the distinct keyColumn values of table, optionally
	// scoped by equality filters.
	ReadKeys(ctx context.Context, table, keyColumn string, filters ...Filter) (KeySet, error)
	// AppendRows writes the whole batch or nothing.
	AppendRows(ctx context.Context, table string, batch Batch) error
}

// TableEnsurer creates a table when it is missing.
type TableEnsurer interface {
	EnsureTable(ctx context.Context, table string, columns []Column) error
}
