package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"asthma-pipeline/lib/textutil"
)

const (
	CategoryColumn = "SDI Category"
	DeathsColumn   = "Number of deaths (thousands)"
	CasesColumn    = "Number of prevalent cases (thousands)"

	// the name the pipeline writes, renamed on load
	genericCategoryColumn = "Category"
	globalCategory        = "global"
)

var ErrMissingCategory = errors.New(`dataset has no "SDI Category" column`)

// Measure is a coerced numeric cell, Valid is false when the cell did not parse.
type Measure struct {
	Value float64
	Valid bool
}

func (m Measure) String() string {
	if !m.Valid {
		return "NaN"
	}
	return strconv.FormatFloat(m.Value, 'f', -1, 64)
}

type Record struct {
	Category string
	Deaths   Measure
	Cases    Measure
}

type Dataset struct {
	Records []Record
}

var groupedThousands = regexp.MustCompile(`^[+-]?[0-9]{1,3}(,[0-9]{3})+(\.[0-9]+)?$`)

// ParseMeasure strips spaces and parses s as a float. A comma is read as a thousands
// separator when it groups digits by three and as a decimal point otherwise, the middle
// dot is always a decimal point.
func ParseMeasure(s string) Measure {
	s = textutil.StripSpaces(s)
	s = strings.ReplaceAll(s, "·", ".")
	s = strings.ReplaceAll(s, "−", "-")
	if groupedThousands.MatchString(s) {
		s = strings.ReplaceAll(s, ",", "")
	} else {
		s = strings.Replace(s, ",", ".", 1)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Measure{}
	}
	return Measure{Value: v, Valid: true}
}

// Load reads the pipeline's CSV output.
func Load(r io.Reader) (Dataset, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return Dataset{}, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return Dataset{}, ErrMissingCategory
	}

	header := rows[0]
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == genericCategoryColumn {
			name = CategoryColumn
		}
		header[i] = name
	}

	index := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		return -1
	}
	categoryIdx := index(CategoryColumn)
	if categoryIdx < 0 {
		return Dataset{}, ErrMissingCategory
	}
	deathsIdx := index(DeathsColumn)
	casesIdx := index(CasesColumn)

	measure := func(row []string, idx int) Measure {
		if idx < 0 || idx >= len(row) {
			return Measure{}
		}
		return ParseMeasure(row[idx])
	}

	out := Dataset{Records: make([]Record, 0, len(rows)-1)}
	for _, row := range rows[1:] {
		record := Record{
			Deaths: measure(row, deathsIdx),
			Cases:  measure(row, casesIdx),
		}
		if categoryIdx < len(row) {
			record.Category = row[categoryIdx]
		}
		out.Records = append(out.Records, record)
	}
	return out, nil
}

func LoadFile(path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, err
	}
	defer f.Close()
	return Load(f)
}

func isGlobal(category string) bool {
	return textutil.EqualLabel(category, globalCategory)
}

// Global returns the aggregate row.
func (d Dataset) Global() (Record, error) {
	for _, r := range d.Records {
		if isGlobal(r.Category) {
			return r, nil
		}
	}
	return Record{}, fmt.Errorf("dataset has no %q row", globalCategory)
}

// Breakdown returns every row except the aggregate.
func (d Dataset) Breakdown() []Record {
	out := make([]Record, 0, len(d.Records))
	for _, r := range d.Records {
		if !isGlobal(r.Category) {
			out = append(out, r)
		}
	}
	return out
}
