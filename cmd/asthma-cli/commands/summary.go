package commands

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"asthma-pipeline/internal/dataset"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var summaryInput *string

func init() {
	summaryInput = summaryCmd.Flags().String("input", "", "The dataset to summarize, defaults to the configured csv output.")
	rootCmd.AddCommand(summaryCmd)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func renderSummary(out io.Writer, ds dataset.Dataset) error {
	global, err := ds.Global()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Total deaths in 2015: %s thousand\n", global.Deaths)
	fmt.Fprintf(out, "Total prevalent cases in 2015: %s thousand\n", global.Cases)

	breakdown := newTable(out)
	breakdown.SetTitle("Breakdown by SDI category")
	breakdown.AppendHeader(table.Row{dataset.CategoryColumn, dataset.DeathsColumn, dataset.CasesColumn})
	for _, r := range ds.Breakdown() {
		breakdown.AppendRow(table.Row{r.Category, r.Deaths, r.Cases})
	}
	breakdown.Render()

	summary, err := ds.Summarize()
	if err != nil {
		return err
	}
	stats := newTable(out)
	stats.SetTitle("Breakdown statistics")
	stats.AppendHeader(table.Row{"Measure", "Count", "Sum", "Mean", "Median", "Max", "Largest share"})
	for _, m := range []dataset.MeasureSummary{summary.Deaths, summary.Cases} {
		categories := make([]string, 0, len(m.Shares))
		for category := range m.Shares {
			categories = append(categories, category)
		}
		slices.Sort(categories)
		largest := ""
		for _, category := range categories {
			if largest == "" || m.Shares[category] > m.Shares[largest] {
				largest = category
			}
		}
		stats.AppendRow(table.Row{
			m.Name,
			m.Count,
			formatFloat(m.Sum),
			formatFloat(m.Mean),
			formatFloat(m.Median),
			formatFloat(m.Max),
			fmt.Sprintf("%s (%.1f%%)", largest, m.Shares[largest]*100),
		})
	}
	stats.Render()
	return nil
}

var summaryCmd = &cobra.Command{
	Use:   "summary [--input <path/to/dataset.csv>]",
	Short: "Loads the dataset the way the dashboard does and prints its totals.",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := *summaryInput
		if path == "" {
			path = config.Output.CSVPath()
		}
		if path == "" {
			return errors.New("csv output is disabled, pass --input")
		}
		ds, err := dataset.LoadFile(path)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		return renderSummary(cmd.OutOrStdout(), ds)
	},
}
