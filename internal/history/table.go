package history

import "slices"

// Column names of the history file.
const (
	ColTimestamp = "日時"
	ColOperator  = "担当者ID"
	ColSection   = "セクション"
	ColItem      = "項目"
	ColMachine   = "号機"
	ColState     = "状態"
	ColComment   = "コメント"
)

// TimestampLayout is how submit times are written.
const TimestampLayout = "2006-01-02 15:04:05"

// Table is the whole history file in memory: a header and string rows,
// every row exactly len(Columns) wide.
type Table struct {
	Columns []string
	Rows    [][]string
}

func (t Table) Empty() bool {
	return len(t.Columns) == 0 && len(t.Rows) == 0
}

func (t Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of col, or -1.
func (t Table) Index(col string) int {
	return slices.Index(t.Columns, col)
}

// Value returns row[col], empty when the column is absent.
func (t Table) Value(row int, col string) string {
	i := t.Index(col)
	if i < 0 || row < 0 || row >= len(t.Rows) {
		return ""
	}
	return t.Rows[row][i]
}

// Filter returns a table holding the rows for which keep is true.
func (t Table) Filter(keep func(row []string) bool) Table {
	out := Table{Columns: slices.Clone(t.Columns)}
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Append adds records after the existing rows. Existing columns keep their
// order; columns only the new records use are appended in the order given
// by cols. Missing cells are empty.
func (t Table) Append(cols []string, records []map[string]string) Table {
	out := Table{Columns: slices.Clone(t.Columns)}
	for _, c := range cols {
		if !slices.Contains(out.Columns, c) {
			out.Columns = append(out.Columns, c)
		}
	}
	width := len(out.Columns)
	for _, r := range t.Rows {
		out.Rows = append(out.Rows, pad(r, width))
	}
	for _, rec := range records {
		row := make([]string, width)
		for i, c := range out.Columns {
			row[i] = rec[c]
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func pad(row []string, width int) []string {
	if len(row) >= width {
		return row[:width]
	}
	out := make([]string, width)
	copy(out, row)
	return out
}
