package sqlplus

import (
	"bytes"
	"encoding/json"
)

// Row is an ordered mapping of column name to cell value. All rows of one
// Result share the same columns in the same order.
type Row struct {
	columns []string
	values  []any
}

func newRow(columns []string, values []any) Row {
	return Row{columns: columns, values: values}
}

// NewRow builds a row from parallel column and value slices. It returns false
// when the lengths differ.
func NewRow(columns []string, values []any) (Row, bool) {
	if len(columns) != len(values) {
		return Row{}, false
	}
	return newRow(append([]string(nil), columns...), append([]any(nil), values...)), true
}

// Len returns the number of columns.
func (r Row) Len() int { return len(r.columns) }

// Columns returns a copy of the column names in source order.
func (r Row) Columns() []string { return append([]string(nil), r.columns...) }

// Values returns a copy of the cell values in column order.
func (r Row) Values() []any { return append([]any(nil), r.values...) }

// Value returns the i-th cell value.
func (r Row) Value(i int) any { return r.values[i] }

// Get returns the value of the named column. Column names are matched
// exactly, as sqlplus emitted them.
func (r Row) Get(column string) (any, bool) {
	for i, c := range r.columns {
		if c == column {
			return r.values[i], true
		}
	}
	return nil, false
}

// Map returns the row as an unordered map.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.columns))
	for i, c := range r.columns {
		m[c] = r.values[i]
	}
	return m
}

// MarshalJSON encodes the row as a JSON object keeping column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Result is the ordered sequence of rows produced by one invocation.
type Result struct {
	rows []Row
}

// NewResult wraps rows into a Result.
func NewResult(rows ...Row) Result {
	return Result{rows: append([]Row(nil), rows...)}
}

// Len returns the number of rows.
func (r Result) Len() int { return len(r.rows) }

// Empty reports whether the invocation produced no rows.
func (r Result) Empty() bool { return len(r.rows) == 0 }

// Row returns the i-th row.
func (r Result) Row(i int) Row { return r.rows[i] }

// Rows returns a copy of the rows in source order.
func (r Result) Rows() []Row { return append([]Row(nil), r.rows...) }

// Columns returns the column names of the result, or nil when it is empty.
func (r Result) Columns() []string {
	if len(r.rows) == 0 {
		return nil
	}
	return r.rows[0].Columns()
}

// MarshalJSON encodes the result as an array of ordered objects.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.rows == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.rows)
}
