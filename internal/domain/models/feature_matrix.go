package models

import "fmt"

// FeatureMatrix is a dense, column-named table aligned with a price series.
// After the builder's fill pass no cell is NaN; it is the exclusive input to
// ensemble training.
type FeatureMatrix struct {
	Columns []string
	Rows    [][]float64
}

// NumRows returns the row count.
func (m *FeatureMatrix) NumRows() int { return len(m.Rows) }

// NumCols returns the column count.
func (m *FeatureMatrix) NumCols() int { return len(m.Columns) }

// Empty reports whether the matrix has no rows or no columns.
func (m *FeatureMatrix) Empty() bool {
	return m == nil || len(m.Rows) == 0 || len(m.Columns) == 0
}

// ColumnIndex returns the index of a named column.
func (m *FeatureMatrix) ColumnIndex(name string) (int, bool) {
	for i, c := range m.Columns {
		if c == name {
			return i, true
		}
	}
	return 0, false
}

// Column returns a copy of a named column.
func (m *FeatureMatrix) Column(name string) ([]float64, error) {
	idx, ok := m.ColumnIndex(name)
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	out := make([]float64, len(m.Rows))
	for i, row := range m.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Select returns a new matrix restricted to the given columns, in the given
// order. Inference uses this to restore the exact column layout seen at fit
// time instead of trusting positional alignment.
func (m *FeatureMatrix) Select(names []string) (*FeatureMatrix, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		j, ok := m.ColumnIndex(name)
		if !ok {
			return nil, fmt.Errorf("column %q not found", name)
		}
		idx[i] = j
	}
	out := &FeatureMatrix{Columns: append([]string(nil), names...)}
	out.Rows = make([][]float64, len(m.Rows))
	for r, row := range m.Rows {
		sel := make([]float64, len(idx))
		for i, j := range idx {
			sel[i] = row[j]
		}
		out.Rows[r] = sel
	}
	return out, nil
}

// Drop returns a new matrix without the named column.
func (m *FeatureMatrix) Drop(name string) (*FeatureMatrix, error) {
	if _, ok := m.ColumnIndex(name); !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	keep := make([]string, 0, len(m.Columns)-1)
	for _, c := range m.Columns {
		if c != name {
			keep = append(keep, c)
		}
	}
	return m.Select(keep)
}

// LastRow returns a copy of the final row.
func (m *FeatureMatrix) LastRow() []float64 {
	if len(m.Rows) == 0 {
		return nil
	}
	return append([]float64(nil), m.Rows[len(m.Rows)-1]...)
}
