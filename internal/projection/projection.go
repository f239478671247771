package projection

import (
	"fmt"
	"strings"

	"asthma-pipeline/internal/grid"

	"github.com/antzucaro/matchr"
)

// DefaultColumns are the columns the dashboard reads.
var DefaultColumns = []string{
	"Category",
	"Number of deaths (thousands)",
	"Number of prevalent cases (thousands)",
}

// below this similarity a header is not worth suggesting
const suggestionThreshold = 0.7

type MissingColumnsError struct {
	Missing []string
	// Suggestions maps a missing column to the most similar available header.
	Suggestions map[string]string
}

func (e *MissingColumnsError) Error() string {
	parts := make([]string, len(e.Missing))
	for i, name := range e.Missing {
		suggestion, ok := e.Suggestions[name]
		if ok {
			parts[i] = fmt.Sprintf("%q (did you mean %q?)", name, suggestion)
			continue
		}
		parts[i] = fmt.Sprintf("%q", name)
	}
	return fmt.Sprintf("missing required columns: %s", strings.Join(parts, ", "))
}

func closest(name string, header []string) (string, bool) {
	mostSimilar := ""
	var similarity float64
	for _, candidate := range header {
		sim := matchr.JaroWinkler(name, candidate, false)
		if sim > similarity {
			similarity = sim
			mostSimilar = candidate
		}
	}
	return mostSimilar, similarity >= suggestionThreshold
}

// Project returns a grid holding exactly the required columns in the required order.
func Project(g grid.Grid, required []string) (grid.Grid, error) {
	header := g.Header()
	cols := make([]int, 0, len(required))
	var missing []string
	for _, name := range required {
		idx := g.ColumnIndex(name)
		if idx < 0 {
			missing = append(missing, name)
			continue
		}
		cols = append(cols, idx)
	}

	if len(missing) > 0 {
		err := &MissingColumnsError{
			Missing:     missing,
			Suggestions: map[string]string{},
		}
		for _, name := range missing {
			if suggestion, ok := closest(name, header); ok {
				err.Suggestions[name] = suggestion
			}
		}
		return grid.Grid{}, err
	}

	return g.Select(cols), nil
}
