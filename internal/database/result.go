package database

// Result is the in-memory table a statement produced: driver-ordered
// column names and rows aligned to them. Every row has exactly
// len(Columns) values. An empty Result is a valid outcome, distinct from
// no execution having been attempted.
type Result struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

func (r Result) RowCount() int {
	return len(r.Rows)
}

// ColumnCount is zero for an empty result set, mirroring how callers
// report "no data" even when the driver announced column metadata.
func (r Result) ColumnCount() int {
	if len(r.Rows) == 0 {
		return 0
	}
	return len(r.Columns)
}

// Preview returns a bounded copy of the result for display surfaces.
// The underlying rows are shared, not duplicated.
func (r Result) Preview(n int) Result {
	if n < 0 {
		n = 0
	}
	if n >= len(r.Rows) {
		return r
	}
	return Result{Columns: r.Columns, Rows: r.Rows[:n]}
}
