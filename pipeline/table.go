package pipeline

// Table holds row-aligned input data: Rows[i][j] is the value of column
// Columns[j] for job i.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// Empty reports whether t has no columns.
func (t Table) Empty() bool { return len(t.Columns) == 0 }

// Column returns a copy of the values of column name.
func (t Table) Column(name string) ([]string, bool) {
	idx := -1

	for i, c := range t.Columns {
		if c == name {
			idx = i

			break
		}
	}

	if idx < 0 {
		return nil, false
	}

	col := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			col[i] = row[idx]
		}
	}

	return col, true
}

// Row returns the values of row i keyed by column.
func (t Table) Row(i int) map[string]string {
	row := make(map[string]string, len(t.Columns))

	for j, c := range t.Columns {
		if i < len(t.Rows) && j < len(t.Rows[i]) {
			row[c] = t.Rows[i][j]
		}
	}

	return row
}

// MakeTable builds a table from columns of equal length. It returns
// [ErrRaggedTable] if the lengths differ.
func MakeTable(columns []string, values [][]string) (Table, error) {
	t := Table{Columns: columns}

	if len(values) == 0 {
		return t, nil
	}

	n := len(values[0])
	for j, col := range values {
		if len(col) != n {
			return Table{}, ErrRaggedTable.Wrapf(
				"column %q has %d values, want %d", columns[j], len(col), n,
			)
		}
	}

	t.Rows = make([][]string, n)
	for i := range n {
		t.Rows[i] = make([]string, len(values))
		for j := range values {
			t.Rows[i][j] = values[j][i]
		}
	}

	return t, nil
}
