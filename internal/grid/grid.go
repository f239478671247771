// Package grid holds the table representation every pipeline stage consumes and produces.
package grid

import (
	"fmt"
	"slices"
)

// Grid is an immutable table of string cells with a named header.
//
// Cells live in one row-major arena and rows are addressed by their offset into it,
// so slicing rows shares the arena and only column operations allocate new cells.
// Methods never modify the receiver; they return a new Grid.
type Grid struct {
	header []string
	arena  []string
	rows   []int
}

// MalformedTableError is returned when a row's cell count differs from the header's.
type MalformedTableError struct {
	Row   int
	Cells int
	Width int
}

func (e *MalformedTableError) Error() string {
	return fmt.Sprintf("malformed table: row %d has %d cells, header has %d", e.Row, e.Cells, e.Width)
}

// New builds a Grid out of a header and rows.
func New(header []string, rows [][]string) (Grid, error) {
	width := len(header)
	g := Grid{
		header: slices.Clone(header),
		arena:  make([]string, 0, width*len(rows)),
		rows:   make([]int, 0, len(rows)),
	}
	for i, row := range rows {
		if len(row) != width {
			return Grid{}, &MalformedTableError{Row: i, Cells: len(row), Width: width}
		}
		g.rows = append(g.rows, len(g.arena))
		g.arena = append(g.arena, row...)
	}
	return g, nil
}

func (g Grid) Width() int {
	return len(g.header)
}

func (g Grid) Len() int {
	return len(g.rows)
}

// Header returns a copy of the column names.
func (g Grid) Header() []string {
	return slices.Clone(g.header)
}

func (g Grid) ColumnName(col int) string {
	return g.header[col]
}

// ColumnIndex returns the index of the first column called name, or -1.
func (g Grid) ColumnIndex(name string) int {
	return slices.Index(g.header, name)
}

func (g Grid) Cell(row, col int) string {
	return g.arena[g.rows[row]+col]
}

// Row returns a copy of the cells of a row.
func (g Grid) Row(row int) []string {
	offset := g.rows[row]
	return slices.Clone(g.arena[offset : offset+len(g.header)])
}

// Rows returns a copy of every row.
func (g Grid) Rows() [][]string {
	out := make([][]string, len(g.rows))
	for i := range g.rows {
		out[i] = g.Row(i)
	}
	return out
}

// Slice returns the rows in [from, to), sharing cell storage with g.
func (g Grid) Slice(from, to int) Grid {
	return Grid{
		header: g.header,
		arena:  g.arena,
		rows:   g.rows[from:to:to],
	}
}

// Head returns at most the first n rows.
func (g Grid) Head(n int) Grid {
	return g.Slice(0, min(n, g.Len()))
}

// RenameColumn returns a Grid whose column col is called name.
func (g Grid) RenameColumn(col int, name string) Grid {
	header := slices.Clone(g.header)
	header[col] = name
	return Grid{
		header: header,
		arena:  g.arena,
		rows:   g.rows,
	}
}

// Select returns a Grid made of the given columns, in the given order.
func (g Grid) Select(cols []int) Grid {
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = g.header[c]
	}

	arena := make([]string, 0, len(cols)*len(g.rows))
	rows := make([]int, len(g.rows))
	for r, offset := range g.rows {
		rows[r] = len(arena)
		for _, c := range cols {
			arena = append(arena, g.arena[offset+c])
		}
	}

	return Grid{header: header, arena: arena, rows: rows}
}

// MapColumns returns a Grid where fn has been applied to every cell of the given columns.
func (g Grid) MapColumns(cols []int, fn func(string) string) Grid {
	width := len(g.header)
	mapped := make([]bool, width)
	for _, c := range cols {
		mapped[c] = true
	}

	arena := make([]string, 0, width*len(g.rows))
	rows := make([]int, len(g.rows))
	for r, offset := range g.rows {
		rows[r] = len(arena)
		for c := 0; c < width; c++ {
			value := g.arena[offset+c]
			if mapped[c] {
				value = fn(value)
			}
			arena = append(arena, value)
		}
	}

	return Grid{header: slices.Clone(g.header), arena: arena, rows: rows}
}
