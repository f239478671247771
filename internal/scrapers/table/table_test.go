package table

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestLocateNoTable(t *testing.T) {
	_, err := Locate("<html><body><p>nothing here</p></body></html>")
	require.True(t, errors.As(err, &NoTableFoundError{}))
}

func TestLocateFirstTableOnly(t *testing.T) {
	g, err := Locate(`
		<table><thead><tr><th>first</th></tr></thead><tbody><tr><td>1</td></tr></tbody></table>
		<table><thead><tr><th>second</th></tr></thead><tbody><tr><td>2</td></tr></tbody></table>
	`)
	require.NoError(t, err)
	require.Equal(t, []string{"first"}, g.Header())
	require.Equal(t, [][]string{{"1"}}, g.Rows())
}

func TestLocateSpansAndUnnamed(t *testing.T) {
	g, err := Locate(`
		<table>
			<thead>
				<tr><th></th><th>Number of deaths (thousands)</th><th>Number of prevalent cases (thousands)</th></tr>
			</thead>
			<tbody>
				<tr><td>COPD</td><td>3197 (3093 to 3301)</td><td>174 483 (162 000 to 188 000)</td></tr>
				<tr><td>Asthma</td><td></td><td></td></tr>
				<tr><td colspan="3">Asthma</td></tr>
				<tr><td rowspan="2">High  SDI</td><td>22 (20 to 25)</td><td>60 000 (55 000 to 65 000)</td></tr>
				<tr><td>23 (21 to 26)</td><td>61 000 (56 000 to 66 000)</td></tr>
			</tbody>
		</table>
	`)
	require.NoError(t, err)

	require.Equal(t, []string{
		"Unnamed: 0",
		"Number of deaths (thousands)",
		"Number of prevalent cases (thousands)",
	}, g.Header())

	expected := [][]string{
		{"COPD", "3197 (3093 to 3301)", "174 483 (162 000 to 188 000)"},
		{"Asthma", "", ""},
		{"Asthma", "Asthma", "Asthma"},
		{"High SDI", "22 (20 to 25)", "60 000 (55 000 to 65 000)"},
		{"High SDI", "23 (21 to 26)", "61 000 (56 000 to 66 000)"},
	}
	if diff := cmp.Diff(expected, g.Rows()); diff != "" {
		t.Fatal(diff)
	}
}

func TestLocatePreservesNonBreakingSpaces(t *testing.T) {
	g, err := Locate("<table><tr><th>a</th></tr><tr><td>358&nbsp;198 (1 000 to 2 000)</td></tr></table>")
	require.NoError(t, err)
	require.Equal(t, "358\u00a0198 (1 000 to 2 000)", g.Cell(0, 0))
}

func TestLocateNormalizesHeaderSpaces(t *testing.T) {
	g, err := Locate(`<table>
		<thead><tr>
			<th>&nbsp;</th>
			<th>Number of prevalent cases&nbsp;(thousands)</th>
			<th>Number of deaths
				(thousands)</th>
		</tr></thead>
		<tbody><tr><td>Asthma</td><td>358&nbsp;198</td><td>461</td></tr></tbody>
	</table>`)
	require.NoError(t, err)
	require.Equal(t, []string{
		"Unnamed: 0",
		"Number of prevalent cases (thousands)",
		"Number of deaths (thousands)",
	}, g.Header())
	require.Equal(t, 1, g.ColumnIndex("Number of prevalent cases (thousands)"))
	require.Equal(t, "358\u00a0198", g.Cell(0, 1))
}

func TestLocateHeaderFromLeadingThRow(t *testing.T) {
	g, err := Locate(`<table>
		<tr><th>Category</th><th>Value</th><th>Value</th><th></th></tr>
		<tr><td>a</td><td>1</td></tr>
	</table>`)
	require.NoError(t, err)
	require.Equal(t, []string{"Category", "Value", "Value.1", "Unnamed: 3"}, g.Header())
	require.Equal(t, [][]string{{"a", "1", "", ""}}, g.Rows())
}

func TestLocateWithoutHeader(t *testing.T) {
	g, err := Locate(`<table>
		<tr><td>a</td><td>1</td></tr>
		<tr><td>b</td><td>2</td><td>extra</td></tr>
	</table>`)
	require.NoError(t, err)
	require.Equal(t, []string{"Unnamed: 0", "Unnamed: 1", "Unnamed: 2"}, g.Header())
	require.Equal(t, [][]string{{"a", "1", ""}, {"b", "2", "extra"}}, g.Rows())
}

func TestLocateRowspanPastRowEnd(t *testing.T) {
	g, err := Locate(`<table>
		<tr><th>a</th><th>b</th><th>c</th></tr>
		<tr><td>1</td><td>2</td><td rowspan="2">tail</td></tr>
		<tr><td>3</td><td>4</td></tr>
	</table>`)
	require.NoError(t, err)
	require.Equal(t, [][]string{{"1", "2", "tail"}, {"3", "4", "tail"}}, g.Rows())
}

func TestDedupe(t *testing.T) {
	require.Equal(t,
		[]string{"a", "a.1", "a.2", "b", "a.1.1"},
		dedupe([]string{"a", "a", "a", "b", "a.1"}),
	)
}
