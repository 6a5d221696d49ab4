package parser

import "github.com/snak3gh0st/projetustgov/pkg/models"

// Table is the normalized tabular shape every source file is parsed into.
// All values are text at this stage; type coercion happens in the record
// validator so dirty source data cannot break the read.
type Table struct {
	Path    string
	Entity  models.EntityType
	Columns []string
	Rows    []map[string]string
}

// HasColumn reports whether the table exposes the named column
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// RenameColumn renames a column in place, across the header and every row.
// A no-op when from is absent or to already exists.
func (t *Table) RenameColumn(from, to string) {
	if from == to || !t.HasColumn(from) || t.HasColumn(to) {
		return
	}
	for i, c := range t.Columns {
		if c == from {
			t.Columns[i] = to
			break
		}
	}
	for _, row := range t.Rows {
		if v, ok := row[from]; ok {
			row[to] = v
			delete(row, from)
		}
	}
}

// RowCount returns the number of data rows
func (t *Table) RowCount() int {
	return len(t.Rows)
}
