package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var headerColor = color.New(color.Bold)

// Table renders rows of values as aligned columns. Column widths are
// computed from the widest cell, cells are left-justified and joined by
// tabs, matching the traditional terse cloud-CLI listing style.
type Table struct {
	header []string
	rows   [][]string
}

// Header sets the column titles.
func (t *Table) Header(columns ...string) {
	t.header = columns
}

// Row appends one row; values are stringified with fmt.Sprint.
func (t *Table) Row(values ...any) {
	row := make([]string, len(values))
	for i, v := range values {
		row[i] = fmt.Sprint(v)
	}
	t.rows = append(t.rows, row)
}

// Render writes the aligned table to w.
func (t *Table) Render(w io.Writer) {
	all := make([][]string, 0, len(t.rows)+1)
	if len(t.header) > 0 {
		all = append(all, t.header)
	}
	all = append(all, t.rows...)
	if len(all) == 0 {
		return
	}

	widths := make([]int, 0)
	for _, row := range all {
		for i, cell := range row {
			if i == len(widths) {
				widths = append(widths, 0)
			}
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	for n, row := range all {
		cells := make([]string, len(row))
		for i, cell := range row {
			// The last column is not padded to keep lines short.
			if i < len(row)-1 {
				cell += strings.Repeat(" ", widths[i]-len(cell))
			}
			cells[i] = cell
		}
		line := strings.Join(cells, "\t")
		if n == 0 && len(t.header) > 0 {
			headerColor.Fprintln(w, line)
			continue
		}
		fmt.Fprintln(w, line)
	}
}
