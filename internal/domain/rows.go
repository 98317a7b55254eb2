package domain

// ColumnType is the abstract storage type of a projected column. Store
// backends map it onto their own dialect.
type ColumnType int

const (
	ColumnText ColumnType = iota
	ColumnFloat
	ColumnInt
	ColumnBool
	ColumnTime
)

// Column describes one column of a projected table. Indexed columns are
// used in key reads and get a secondary index where the store supports it.
type Column struct {
	Name    string
	Type    ColumnType
	Indexed bool
}

// Filter scopes a key read to rows where Column equals Value.
type Filter struct {
	Column string
	Value  any
}

// KeySet is the set of identity keys already persisted in a table.
type KeySet map[string]struct{}

// NewKeySet builds a set from the given keys.
func NewKeySet(keys ...string) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether key is in the set.
func (s KeySet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Add inserts key into the set.
func (s KeySet) Add(key string) {
	s[key] = struct{}{}
}

// Batch is a set of flat rows sharing one column layout. Rows[i][j] is the
// value of Columns[j]; a nil value is stored as NULL.
type Batch struct {
	Columns []string
	Rows    [][]any
}

// NewBatch returns an empty batch with the given column layout.
func NewBatch(columns ...string) Batch {
	return Batch{Columns: columns}
}

// Len returns the number of rows.
func (b Batch) Len() int {
	return len(b.Rows)
}

// Empty reports whether the batch carries no rows.
func (b Batch) Empty() bool {
	return len(b.Rows) == 0
}

// ColumnIndex returns the position of name in the layout, or -1.
func (b Batch) ColumnIndex(name string) int {
	for i, c := range b.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Append adds a row. The row must follow the batch column layout.
func (b *Batch) Append(row ...any) {
	b.Rows = append(b.Rows, row)
}

// Keys returns the string value of keyColumn for every row.
func (b Batch) Keys(keyColumn string) []string {
	idx := b.ColumnIndex(keyColumn)
	if idx < 0 {
		return nil
	}
	keys := make([]string, 0, len(b.Rows))
	for _, row := range b.Rows {
		k, _ := row[idx].(string)
		keys = append(keys, k)
	}
	return keys
}

// Exclude returns the rows whose keyColumn value is not in existing. Rows
// repeating a key already kept earlier in the same batch are dropped too;
// the second return value counts those in-batch duplicates.
func (b Batch) Exclude(keyColumn string, existing KeySet) (Batch, int) {
	out := Batch{Columns: b.Columns}
	idx := b.ColumnIndex(keyColumn)
	if idx < 0 {
		return out, 0
	}

	seen := make(KeySet, len(b.Rows))
	duplicates := 0
	for _, row := range b.Rows {
		k, _ := row[idx].(string)
		if existing.Has(k) {
			continue
		}
		if seen.Has(k) {
			duplicates++
			continue
		}
		seen.Add(k)
		out.Rows = append(out.Rows, row)
	}
	return out, duplicates
}

// Set overwrites column name with value on every row.
func (b Batch) Set(name string, value any) {
	idx := b.ColumnIndex(name)
	if idx < 0 {
		return
	}
	for _, row := range b.Rows {
		row[idx] = value
	}
}

// Map rewrites every value of column name through fn.
func (b Batch) Map(name string, fn func(any) any) {
	idx := b.ColumnIndex(name)
	if idx < 0 {
		return
	}
	for _, row := range b.Rows {
		row[idx] = fn(row[idx])
	}
}

// Concat joins batches with different layouts into one. The resulting layout
// is the union of columns in first-seen order; missing values are nil.
func Concat(batches ...Batch) Batch {
	var columns []string
	pos := make(map[string]int)
	for _, b := range batches {
		for _, c := range b.Columns {
			if _, ok := pos[c]; !ok {
				pos[c] = len(columns)
				columns = append(columns, c)
			}
		}
	}

	out := Batch{Columns: columns}
	for _, b := range batches {
		for _, row := range b.Rows {
			merged := make([]any, len(columns))
			for j, c := range b.Columns {
				merged[pos[c]] = row[j]
			}
			out.Rows = append(out.Rows, merged)
		}
	}
	return out
}
