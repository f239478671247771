package normalize

import (
	"context"
	"testing"

	"asthma-pipeline/internal/components/telemetry"
	"asthma-pipeline/internal/grid"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func newNormalizer(t *testing.T, opts Options) (Normalizer, *telemetry.MemoryAPI) {
	t.Helper()
	tel := telemetry.NewMemoryAPI()
	n, err := New(opts, tel)
	require.NoError(t, err)
	return n, tel
}

func TestCell(t *testing.T) {
	n, _ := newNormalizer(t, DefaultOptions())

	table := []struct {
		cell     string
		expected Outcome
	}{
		{cell: "397 (363 to 439)", expected: Outcome{Kind: Matched, Value: "439"}},
		{cell: "12.5 (10,1 to 14·2)", expected: Outcome{Kind: Matched, Value: "14·2"}},
		{cell: "0·5 (−1·2 to −0·3)", expected: Outcome{Kind: Matched, Value: "−0·3"}},
		{cell: "3 (1 to -2)", expected: Outcome{Kind: Matched, Value: "-2"}},
		{cell: "3 (1 to2)", expected: Outcome{Kind: Matched, Value: "2"}},
		{cell: "3 (1 to 4)", expected: Outcome{Kind: Matched, Value: "4"}},
		{cell: "10 (8 to 12) (9 to 11)", expected: Outcome{Kind: Matched, Value: "11"}},
		{cell: "250 (no interval)", expected: Outcome{Kind: FallbackPrefix, Value: "250"}},
		{cell: "358 198 (323 134 to 393 466)", expected: Outcome{Kind: FallbackPrefix, Value: "358 198"}},
		{cell: "(to be confirmed)", expected: Outcome{Kind: FallbackPrefix, Value: ""}},
		{cell: "88", expected: Outcome{Kind: Verbatim, Value: "88"}},
		{cell: "  88 ", expected: Outcome{Kind: Verbatim, Value: "88"}},
		{cell: "", expected: Outcome{Kind: Verbatim, Value: ""}},
	}

	for _, test := range table {
		require.Equal(t, test.expected, n.Cell(test.cell), test.cell)
	}
}

func TestCellRestrictedSeparators(t *testing.T) {
	n, _ := newNormalizer(t, Options{DecimalSeparators: []string{"."}, MinusSigns: []string{"-"}})

	require.Equal(t, Outcome{Kind: Matched, Value: "14.2"}, n.Cell("12 (10 to 14.2)"))
	require.Equal(t, Outcome{Kind: FallbackPrefix, Value: "12"}, n.Cell("12 (10 to 14·2)"))
	require.Equal(t, Outcome{Kind: FallbackPrefix, Value: "12"}, n.Cell("12 (10 to −4)"))
}

func TestPatternEscapesClassCharacters(t *testing.T) {
	pattern, err := Pattern(Options{DecimalSeparators: []string{"]", "^"}, MinusSigns: []string{"-", "\\"}})
	require.NoError(t, err)
	require.Equal(t, []string{"(1 to \\3]5)", "\\3]5"}, pattern.FindStringSubmatch("(1 to \\3]5)"))
}

func TestGrid(t *testing.T) {
	g, err := grid.New(
		[]string{"Category", "Deaths", "Cases"},
		[][]string{
			{"Global (all)", "397 (363 to 439)", "250 (no interval)"},
			{"High SDI", "88", "60 (55 to 65)"},
		},
	)
	require.NoError(t, err)

	n, tel := newNormalizer(t, DefaultOptions())
	out := n.Grid(context.Background(), g)

	expected := [][]string{
		{"Global (all)", "439", "250"},
		{"High SDI", "88", "65"},
	}
	if diff := cmp.Diff(expected, out.Rows()); diff != "" {
		t.Fatal(diff)
	}
	require.Equal(t, "397 (363 to 439)", g.Cell(0, 1))

	matched, ok := tel.Count("normalize: normalizer.outcomes.matched")
	require.True(t, ok)
	require.Equal(t, int64(2), matched)
	fallback, _ := tel.Count("normalize: normalizer.outcomes.fallback_prefix")
	require.Equal(t, int64(1), fallback)
	verbatim, _ := tel.Count("normalize: normalizer.outcomes.verbatim")
	require.Equal(t, int64(1), verbatim)
	require.Len(t, tel.Warnings(), 1)
}

func TestKindString(t *testing.T) {
	require.Equal(t, "matched", Matched.String())
	require.Equal(t, "fallback_prefix", FallbackPrefix.String())
	require.Equal(t, "verbatim", Verbatim.String())
	require.Equal(t, "Kind(7)", Kind(7).String())
}
