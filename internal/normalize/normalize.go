// Package normalize reduces composite numeric cells such as "397 (363 to 439)" to the
// single value the dataset keeps, the upper bound of the interval.
package normalize

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"asthma-pipeline/internal/components/assert"
	"asthma-pipeline/internal/components/telemetry"
	"asthma-pipeline/internal/grid"
	"asthma-pipeline/lib/textutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	report_normalizer_outcomes = "normalizer.outcomes"
)

var meter = otel.Meter("asthma-pipeline/normalize")
var outcomeCounter, _ = meter.Int64Counter(
	"normalize.outcomes",
	metric.WithDescription("normalized cells by outcome"),
)

type Kind int

const (
	// Matched means an interval was found and its upper bound kept.
	Matched Kind = iota
	// FallbackPrefix means the cell had a parenthetical that did not parse, the text
	// before it was kept.
	FallbackPrefix
	// Verbatim means the cell had no parenthetical at all.
	Verbatim
)

func (k Kind) String() string {
	switch k {
	case Matched:
		return "matched"
	case FallbackPrefix:
		return "fallback_prefix"
	case Verbatim:
		return "verbatim"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type Outcome struct {
	Kind  Kind
	Value string
}

type Options struct {
	// single characters accepted between the integer and fractional digits
	DecimalSeparators []string
	// single characters accepted as a leading sign
	MinusSigns []string
}

func DefaultOptions() Options {
	return Options{
		DecimalSeparators: []string{".", ",", "·"},
		MinusSigns:        []string{"-", "−"},
	}
}

// charClass renders a regexp character class matching any of chars.
func charClass(chars []string) string {
	var out strings.Builder
	out.WriteByte('[')
	for _, c := range chars {
		for _, r := range c {
			switch r {
			case '\\', ']', '[', '^', '-':
				out.WriteByte('\\')
			}
			out.WriteRune(r)
		}
	}
	out.WriteByte(']')
	return out.String()
}

// Pattern builds the interval expression: an opening parenthesis, anything, the token
// "to", optional whitespace, a signed decimal and a closing parenthesis.
func Pattern(opts Options) (*regexp.Regexp, error) {
	number := `[0-9]+`
	if len(opts.DecimalSeparators) > 0 {
		number += `(?:` + charClass(opts.DecimalSeparators) + `[0-9]+)?`
	}
	if len(opts.MinusSigns) > 0 {
		number = charClass(opts.MinusSigns) + `?` + number
	}
	return regexp.Compile(`\(.*?to\s*(` + number + `)\)`)
}

type Normalizer struct {
	pattern *regexp.Regexp
	tel     telemetry.API
}

func New(opts Options, tel telemetry.API) (Normalizer, error) {
	assert.NotNil(tel)
	pattern, err := Pattern(opts)
	if err != nil {
		return Normalizer{}, fmt.Errorf("build interval pattern: %w", err)
	}
	return Normalizer{
		pattern: pattern,
		tel:     telemetry.NewScopedAPI("normalize", tel),
	}, nil
}

// Cell normalizes a single cell, it never fails.
func (n Normalizer) Cell(cell string) Outcome {
	cell = textutil.ReplaceAlternateSpaces(cell)

	matches := n.pattern.FindAllStringSubmatch(cell, -1)
	if len(matches) > 0 {
		last := matches[len(matches)-1]
		return Outcome{Kind: Matched, Value: strings.TrimSpace(last[1])}
	}

	if before, _, found := strings.Cut(cell, "("); found {
		return Outcome{Kind: FallbackPrefix, Value: strings.TrimSpace(before)}
	}

	return Outcome{Kind: Verbatim, Value: strings.TrimSpace(cell)}
}

// Grid normalizes every column but the first.
func (n Normalizer) Grid(ctx context.Context, g grid.Grid) grid.Grid {
	cols := make([]int, 0, max(g.Width()-1, 0))
	for i := 1; i < g.Width(); i++ {
		cols = append(cols, i)
	}

	counts := map[Kind]int64{}
	out := g.MapColumns(cols, func(cell string) string {
		outcome := n.Cell(cell)
		counts[outcome.Kind]++
		return outcome.Value
	})

	for _, kind := range []Kind{Matched, FallbackPrefix, Verbatim} {
		n.tel.ReportCount(fmt.Sprintf("%s.%s", report_normalizer_outcomes, kind), counts[kind])
		outcomeCounter.Add(ctx, counts[kind], metric.WithAttributes(attribute.String("kind", kind.String())))
	}
	if counts[FallbackPrefix] > 0 {
		n.tel.ReportWarning(report_normalizer_outcomes, "cells with an unparsed parenthetical", counts[FallbackPrefix])
	}

	return out
}
