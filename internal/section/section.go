// Package section isolates a labelled block of rows from a grid whose sections are only
// delimited by a marker row.
package section

import (
	"fmt"
	"strings"

	"asthma-pipeline/internal/components/assert"
	"asthma-pipeline/internal/components/telemetry"
	"asthma-pipeline/internal/grid"
	"asthma-pipeline/lib/textutil"
)

const (
	report_extractor_find_boundary = "extractor.find-boundary"
	report_extractor_rows          = "extractor.rows"
)

type SectionNotFoundError struct {
	Label string
}

func (e *SectionNotFoundError) Error() string {
	return fmt.Sprintf("no row labelled %q found in the first column", e.Label)
}

// FindBoundary returns the index of every row whose first cell equals label, ignoring
// case and surrounding whitespace.
func FindBoundary(g grid.Grid, label string) ([]int, error) {
	if g.Width() == 0 {
		return nil, &SectionNotFoundError{Label: label}
	}
	var matches []int
	for i, n := 0, g.Len(); i < n; i++ {
		if textutil.EqualLabel(g.Cell(i, 0), label) {
			matches = append(matches, i)
		}
	}
	if len(matches) == 0 {
		return nil, &SectionNotFoundError{Label: label}
	}
	return matches, nil
}

// Tail returns the rows strictly after boundary.
func Tail(g grid.Grid, boundary int) grid.Grid {
	return g.Slice(boundary+1, g.Len())
}

// IsTitleRow reports whether every cell of row is the label, as produced by a title cell
// spanning the whole table.
func IsTitleRow(row []string, label string) bool {
	if len(row) == 0 {
		return false
	}
	first := strings.TrimSpace(row[0])
	for _, cell := range row[1:] {
		if strings.TrimSpace(cell) != first {
			return false
		}
	}
	return textutil.EqualLabel(first, label)
}

type Options struct {
	Label string
	// When the first column's name starts with PlaceholderPrefix it is renamed to
	// CategoryColumn.
	PlaceholderPrefix string
	CategoryColumn    string
}

type Extractor struct {
	opts Options
	tel  telemetry.API
}

func NewExtractor(opts Options, tel telemetry.API) Extractor {
	assert.NotNil(tel)
	assert.NotEmptyStr(opts.Label)
	return Extractor{
		opts: opts,
		tel:  telemetry.NewScopedAPI("section", tel),
	}
}

// Extract returns the rows under the first marker row, without a repeated title row.
// A marker on the last row gives an empty grid.
func (e Extractor) Extract(g grid.Grid) (grid.Grid, error) {
	matches, err := FindBoundary(g, e.opts.Label)
	if err != nil {
		return grid.Grid{}, err
	}
	section := Tail(g, matches[0])
	titleRow := section.Len() > 0 && IsTitleRow(section.Row(0), e.opts.Label)
	if titleRow {
		section = section.Slice(1, section.Len())
	}

	// the title row repeats the label, it is not a second marker
	extra := matches[1:]
	if titleRow && len(extra) > 0 && extra[0] == matches[0]+1 {
		extra = extra[1:]
	}
	if len(extra) > 0 {
		e.tel.ReportWarning(report_extractor_find_boundary, "multiple marker rows, using the first", matches)
	}

	if e.opts.PlaceholderPrefix != "" &&
		e.opts.CategoryColumn != "" &&
		strings.HasPrefix(section.ColumnName(0), e.opts.PlaceholderPrefix) {
		section = section.RenameColumn(0, e.opts.CategoryColumn)
	}

	e.tel.ReportCount(report_extractor_rows, int64(section.Len()))
	return section, nil
}
