package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"asthma-pipeline/internal/components/telemetry"
	"asthma-pipeline/internal/dataset"
	"asthma-pipeline/internal/projection"
	"asthma-pipeline/internal/scrapers/fetch"
	"asthma-pipeline/internal/scrapers/table"
	"asthma-pipeline/internal/section"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const burdenTable = `<html><body>
<div class="caption">Table 1: Deaths and prevalent cases</div>
<table>
	<thead>
		<tr>
			<th></th>
			<th>Number of deaths (thousands)</th>
			<th>Percentage change in age-standardised death rate</th>
			<th>Number of prevalent cases (thousands)</th>
		</tr>
	</thead>
	<tbody>
		<tr><td colspan="4">COPD</td></tr>
		<tr><td>Global</td><td>3197 (3093 to 3301)</td><td>−41·9 (−45·0 to −39·0)</td><td>174 483 (162 000 to 188 000)</td></tr>
		<tr><td>Asthma</td><td></td><td></td><td></td></tr>
		<tr><td colspan="4">Asthma</td></tr>
		<tr><td>Global</td><td>397 (363 to 439)</td><td>−58·8 (−61·5 to −55·6)</td><td>358 (323 to 393)</td></tr>
		<tr><td>High SDI</td><td>22 (20 to 25)</td><td>−37·9 (−44·1 to −31·9)</td><td>60 (55 to 65)</td></tr>
		<tr><td>Low SDI</td><td>88·5 (70·2 to 108·1)</td><td>−55·6 (−64·4 to −46·0)</td><td>40&nbsp;(36 to 44)</td></tr>
	</tbody>
</table>
</body></html>`

func serve(t *testing.T, status int, body string) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server.URL
}

func testConfig(t *testing.T, url string) Config {
	config := DefaultConfig()
	config.Source.URL = url
	config.Output.CSV = filepath.Join(t.TempDir(), "asthma.csv")
	return config
}

func newPipeline(t *testing.T, config Config) (Pipeline, *telemetry.MemoryAPI) {
	t.Helper()
	tel := telemetry.NewMemoryAPI()
	p, err := New(config, fetch.NewFetcher(fetch.Options{UserAgent: config.Source.UserAgent}, tel), tel)
	require.NoError(t, err)
	return p, tel
}

func TestRunEndToEnd(t *testing.T) {
	config := testConfig(t, serve(t, http.StatusOK, burdenTable))
	config.Output.XLSX = filepath.Join(t.TempDir(), "asthma.xlsx")
	config.Output.SQLite.File = filepath.Join(t.TempDir(), "asthma.db")

	p, tel := newPipeline(t, config)
	res, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 7, res.Table.Len())
	require.Equal(t, 3, res.Section.Len())
	require.Equal(t, projection.DefaultColumns, res.Projected.Header())

	expected := [][]string{
		{"Global", "439", "393"},
		{"High SDI", "25", "65"},
		{"Low SDI", "108·1", "44"},
	}
	if diff := cmp.Diff(expected, res.Projected.Rows()); diff != "" {
		t.Fatal(diff)
	}

	contents, err := os.ReadFile(config.Output.CSV)
	require.NoError(t, err)
	require.Equal(t,
		"Category,Number of deaths (thousands),Number of prevalent cases (thousands)\n"+
			"Global,439,393\n"+
			"High SDI,25,65\n"+
			"Low SDI,108·1,44\n",
		string(contents),
	)

	ds, err := dataset.LoadFile(config.Output.CSV)
	require.NoError(t, err)
	global, err := ds.Global()
	require.NoError(t, err)
	require.Equal(t, dataset.Measure{Value: 439, Valid: true}, global.Deaths)
	require.Equal(t, dataset.Measure{Value: 393, Valid: true}, global.Cases)
	require.Len(t, ds.Breakdown(), 2)

	_, err = os.Stat(config.Output.XLSX)
	require.NoError(t, err)

	db, err := config.Output.SQLite.OpenDB()
	require.NoError(t, err)
	defer db.Close()
	var count int
	require.NoError(t, db.QueryRow(`select count(*) from "asthma_burden"`).Scan(&count))
	require.Equal(t, 3, count)

	n, ok := tel.Count("pipeline: pipeline.run")
	require.True(t, ok)
	require.Equal(t, int64(3), n)
	require.Empty(t, tel.Broken())
}

func TestRunHeaderWithNonBreakingSpace(t *testing.T) {
	body := strings.Replace(burdenTable,
		"<th>Number of prevalent cases (thousands)</th>",
		"<th>Number of prevalent cases&nbsp;(thousands)</th>", 1)
	config := testConfig(t, serve(t, http.StatusOK, body))

	p, tel := newPipeline(t, config)
	res, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, projection.DefaultColumns, res.Projected.Header())
	require.Equal(t, []string{"Global", "439", "393"}, res.Projected.Row(0))
	require.Empty(t, tel.Broken())
}

func TestRunWithCSVDisabled(t *testing.T) {
	config := testConfig(t, serve(t, http.StatusOK, burdenTable))
	config.Output.DisableCSV = true
	config.Output.XLSX = filepath.Join(t.TempDir(), "asthma.xlsx")

	p, _ := newPipeline(t, config)
	res, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, res.Projected.Len())

	_, err = os.Stat(config.Output.CSV)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(config.Output.XLSX)
	require.NoError(t, err)
}

func TestRunFailuresWriteNothing(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "non-success status",
			status: http.StatusForbidden,
			check: func(t *testing.T, err error) {
				var target *fetch.FetchError
				require.True(t, errors.As(err, &target))
				require.Equal(t, http.StatusForbidden, target.StatusCode)
			},
		},
		{
			name:   "no table",
			status: http.StatusOK,
			body:   "<html><body><p>moved</p></body></html>",
			check: func(t *testing.T, err error) {
				require.True(t, errors.As(err, &table.NoTableFoundError{}))
			},
		},
		{
			name:   "no asthma section",
			status: http.StatusOK,
			body:   "<table><tr><th>a</th></tr><tr><td>COPD</td></tr></table>",
			check: func(t *testing.T, err error) {
				var target *section.SectionNotFoundError
				require.True(t, errors.As(err, &target))
			},
		},
		{
			name:   "missing column",
			status: http.StatusOK,
			body: `<table>
				<tr><th></th><th>Number of prevalent cases (thousands)</th></tr>
				<tr><td>Asthma</td><td></td></tr>
				<tr><td>Global</td><td>358 (323 to 393)</td></tr>
			</table>`,
			check: func(t *testing.T, err error) {
				var target *projection.MissingColumnsError
				require.True(t, errors.As(err, &target))
				require.Equal(t, []string{"Number of deaths (thousands)"}, target.Missing)
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := testConfig(t, serve(t, test.status, test.body))
			p, tel := newPipeline(t, config)

			_, err := p.Run(context.Background())
			require.Error(t, err)
			test.check(t, err)

			_, statErr := os.Stat(config.Output.CSV)
			require.True(t, os.IsNotExist(statErr))
			require.NotEmpty(t, tel.Broken())
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "asthma.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{
		source: { url: "http://localhost:8080/table" },
		output: { xlsx: "asthma.xlsx" },
	}`), 0600))

	config, err := LoadConfig(path, true)
	require.NoError(t, err)

	expected := DefaultConfig()
	expected.Source.URL = "http://localhost:8080/table"
	expected.Output.XLSX = "asthma.xlsx"
	if diff := cmp.Diff(expected, config); diff != "" {
		t.Fatal(diff)
	}
}

func TestLoadConfigDisableCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asthma.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{
		output: { disable_csv: true, xlsx: "asthma.xlsx" },
	}`), 0600))

	config, err := LoadConfig(path, true)
	require.NoError(t, err)
	require.Equal(t, DefaultOutputCSV, config.Output.CSV)
	require.Equal(t, "", config.Output.CSVPath())
	require.Equal(t, "asthma.xlsx", config.Output.XLSX)
}

func TestLoadConfigMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asthma.json5")

	config, err := LoadConfig(path, false)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), config)

	_, err = LoadConfig(path, true)
	require.ErrorIs(t, err, fs.ErrNotExist)
	require.ErrorContains(t, err, path)
}
