// Package store implements the analytical store on SQLite and PostgreSQL.
//
// Table and column names come from configuration, so every identifier is
// validated and quoted; values are always bound as parameters.
package store

import (
	"fmt"
	"regexp"

	"github.com/aristath/investsync/internal/domain"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// ValidateIdent rejects names that are not plain SQL identifiers.
func ValidateIdent(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}

func validateAll(names ...string) error {
	for _, n := range names {
		if err := ValidateIdent(n); err != nil {
			return err
		}
	}
	return nil
}

func filterColumns(filters []domain.Filter) []string {
	out := make([]string, len(filters))
	for i, f := range filters {
		out[i] = f.Column
	}
	return out
}

// indexName derives a stable index name for table.column.
func indexName(table, column string) string {
	name := "idx_" + table + "_" + column
	if len(name) > 63 {
		name = name[:63]
	}
	return name
}
