package commands

import (
	"bytes"
	"strings"
	"testing"

	"asthma-pipeline/internal/dataset"

	"github.com/stretchr/testify/require"
)

func TestRenderSummary(t *testing.T) {
	ds, err := dataset.Load(strings.NewReader(
		"Category,Number of deaths (thousands),Number of prevalent cases (thousands)\n" +
			"Global,439,393\n" +
			"High SDI,25,65\n" +
			"Low SDI,108·1,44\n",
	))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, renderSummary(&out, ds))

	rendered := out.String()
	require.Contains(t, rendered, "Total deaths in 2015: 439 thousand")
	require.Contains(t, rendered, "Total prevalent cases in 2015: 393 thousand")
	require.Contains(t, rendered, "High SDI")
	require.Contains(t, rendered, "133.10")
	require.Contains(t, rendered, "Low SDI (81.2%)")
	require.Contains(t, rendered, "High SDI (59.6%)")
}

func TestRenderSummaryWithoutGlobal(t *testing.T) {
	ds, err := dataset.Load(strings.NewReader("SDI Category,Number of deaths (thousands)\nHigh SDI,1\n"))
	require.NoError(t, err)

	var out bytes.Buffer
	require.Error(t, renderSummary(&out, ds))
}
