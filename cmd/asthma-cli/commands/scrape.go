package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"asthma-pipeline/internal/components/chrono"
	"asthma-pipeline/internal/components/telemetry"
	"asthma-pipeline/internal/pipeline"
	otelsetup "asthma-pipeline/lib/telemetry"

	"github.com/spf13/cobra"
)

const perfStatsInterval = 30 * time.Second

var (
	preview  *bool
	schedule *string
)

func init() {
	preview = scrapeCmd.Flags().Bool("preview", false, "Print the first rows of every stage.")
	schedule = scrapeCmd.Flags().String("schedule", "", "A cron spec, when set the dataset is rebuilt on that schedule until interrupted.")
	rootCmd.AddCommand(scrapeCmd)
}

func scrapeOnce(ctx context.Context, p pipeline.Pipeline, out io.Writer) error {
	t1 := time.Now()
	res, err := p.Run(ctx)
	if err != nil {
		return err
	}
	t2 := time.Now()

	if *preview {
		renderGrid(out, "Full table", res.Table.Head(10))
		renderGrid(out, "Asthma section", res.Section.Head(5))
		renderGrid(out, "Normalized", res.Normalized.Head(5))
		renderGrid(out, "Dataset", res.Projected.Head(5))
	}

	slog.Info(
		"dataset written",
		"rows", res.Projected.Len(),
		"csv", config.Output.CSVPath(),
		"seconds", t2.Sub(t1).Seconds(),
	)
	return nil
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--preview] [--schedule <cron spec>]",
	Short: "Fetches the burden table, extracts the asthma section and writes the dataset.",
	RunE: func(cmd *cobra.Command, args []string) error {
		tel := telemetry.SlogAPI{}

		fetcher, err := newFetcher(tel)
		if err != nil {
			return err
		}
		p, err := pipeline.New(config, fetcher, tel)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if *schedule == "" {
			return scrapeOnce(ctx, p, cmd.OutOrStdout())
		}

		err = otelsetup.InstrumentPerfStats(ctx, perfStatsInterval)
		if err != nil {
			return fmt.Errorf("instrument perf stats: %w", err)
		}

		scheduler := chrono.NewStandardCron(nil, tel)
		defer scheduler.Stop()
		err = scheduler.Cron(*schedule, func() {
			err := scrapeOnce(ctx, p, cmd.OutOrStdout())
			if err != nil {
				slog.Error("scheduled scrape failed", "err", err)
			}
		})
		if err != nil {
			return err
		}

		slog.Info("waiting for schedule", "spec", *schedule)
		<-ctx.Done()
		return nil
	},
}
