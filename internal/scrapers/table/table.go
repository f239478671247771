// Package table turns the first HTML table of a document into a grid.Grid, expanding
// spanned cells the way spreadsheet importers do.
package table

import (
	"fmt"
	"strconv"
	"strings"

	"asthma-pipeline/internal/grid"
	"asthma-pipeline/lib/htmlutil"
	"asthma-pipeline/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// UnnamedPrefix starts the name given to header cells that carry no text.
const UnnamedPrefix = "Unnamed"

// spans larger than this are treated as malformed markup and clamped
const maxSpan = 1000

type NoTableFoundError struct{}

func (NoTableFoundError) Error() string {
	return "no table found in document"
}

// Locate parses markup and materializes its first table.
func Locate(markup string) (grid.Grid, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return grid.Grid{}, fmt.Errorf("parse html: %w", err)
	}
	return LocateDocument(doc)
}

func LocateDocument(doc *goquery.Document) (grid.Grid, error) {
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return grid.Grid{}, NoTableFoundError{}
	}
	return FromSelection(table)
}

type tableRow struct {
	tr     *goquery.Selection
	inHead bool
}

// direct rows of the table, nested tables are left alone
func collectRows(table *goquery.Selection) []tableRow {
	var rows []tableRow
	table.Children().Each(func(_ int, child *goquery.Selection) {
		switch goquery.NodeName(child) {
		case "tr":
			rows = append(rows, tableRow{tr: child})
		case "thead", "tbody", "tfoot":
			inHead := goquery.NodeName(child) == "thead"
			child.ChildrenFiltered("tr").Each(func(_ int, tr *goquery.Selection) {
				rows = append(rows, tableRow{tr: tr, inHead: inHead})
			})
		}
	})
	return rows
}

// headerIndex returns the row holding column names or -1.
func headerIndex(rows []tableRow) int {
	for i, row := range rows {
		if row.inHead {
			return i
		}
	}
	for i, row := range rows {
		cells := row.tr.ChildrenFiltered("th, td")
		if cells.Length() == 0 {
			continue
		}
		if cells.Length() == cells.Filter("th").Length() {
			return i
		}
		return -1
	}
	return -1
}

func spanAttr(cell *goquery.Selection, name string) int {
	raw, ok := cell.Attr(name)
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return min(n, maxSpan)
}

type carried struct {
	text      string
	remaining int
}

// expand resolves colspan and rowspan into a dense row-major slice.
func expand(rows []tableRow) [][]string {
	out := make([][]string, 0, len(rows))
	pending := map[int]carried{}

	for _, row := range rows {
		var cells []string
		take := func(col int) bool {
			c, ok := pending[col]
			if !ok {
				return false
			}
			cells = append(cells, c.text)
			c.remaining--
			if c.remaining == 0 {
				delete(pending, col)
			} else {
				pending[col] = c
			}
			return true
		}

		row.tr.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
			for take(len(cells)) {
			}
			text := htmlutil.Text(cell)
			colspan := spanAttr(cell, "colspan")
			rowspan := spanAttr(cell, "rowspan")
			for k := 0; k < colspan; k++ {
				if rowspan > 1 {
					pending[len(cells)] = carried{text: text, remaining: rowspan - 1}
				}
				cells = append(cells, text)
			}
		})

		// cells carried past the end of this row's own cells
		for {
			last := -1
			for col := range pending {
				last = max(last, col)
			}
			if last < len(cells) {
				break
			}
			if !take(len(cells)) {
				cells = append(cells, "")
			}
		}

		out = append(out, cells)
	}
	return out
}

func dedupe(names []string) []string {
	seen := map[string]int{}
	out := make([]string, len(names))
	for i, name := range names {
		n, ok := seen[name]
		if !ok {
			seen[name] = 1
			out[i] = name
			continue
		}
		candidate := fmt.Sprintf("%s.%d", name, n)
		for {
			if _, taken := seen[candidate]; !taken {
				break
			}
			n++
			candidate = fmt.Sprintf("%s.%d", name, n)
		}
		seen[name] = n + 1
		seen[candidate] = 1
		out[i] = candidate
	}
	return out
}

// FromSelection materializes a single table element.
func FromSelection(table *goquery.Selection) (grid.Grid, error) {
	rows := collectRows(table)
	expanded := expand(rows)

	var header []string
	body := expanded
	if hi := headerIndex(rows); hi >= 0 {
		header = expanded[hi]
		body = append(append([][]string{}, expanded[:hi]...), expanded[hi+1:]...)
	}

	width := len(header)
	for _, row := range body {
		width = max(width, len(row))
	}

	// column names are looked up by exact text, so nbsp and line breaks are folded here;
	// body cells keep them for the cleaning stage
	names := make([]string, width)
	for i := 0; i < width; i++ {
		var name string
		if i < len(header) {
			name = textutil.CollapseWhitespace(textutil.ReplaceAlternateSpaces(header[i]))
		}
		if name != "" {
			names[i] = name
			continue
		}
		names[i] = fmt.Sprintf("%s: %d", UnnamedPrefix, i)
	}
	names = dedupe(names)

	padded := make([][]string, len(body))
	for i, row := range body {
		if len(row) < width {
			row = append(row, make([]string, width-len(row))...)
		}
		padded[i] = row
	}

	return grid.New(names, padded)
}
