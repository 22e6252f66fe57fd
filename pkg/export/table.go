// Package export renders tabular report data into downloadable formats.
package export

// Table is ordered tabular export content. Each row must have one cell per
// column.
type Table struct {
	Columns []string
	Rows    [][]string
}
