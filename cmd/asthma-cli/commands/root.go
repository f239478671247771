package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"asthma-pipeline/internal/components/telemetry"
	"asthma-pipeline/internal/grid"
	"asthma-pipeline/internal/pipeline"
	"asthma-pipeline/internal/scrapers/fetch"
	"asthma-pipeline/lib/restyutil"
	otelsetup "asthma-pipeline/lib/telemetry"
	"asthma-pipeline/lib/util/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "asthma.json5"

var (
	configPath *string
	verbose    *bool
	dumpHttp   *string

	config    pipeline.Config
	providers otelsetup.Telemetry
)

var rootCmd = &cobra.Command{
	Use:           "asthma-cli",
	Short:         "asthma-cli builds the asthma burden dataset from the published GBD table.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(*verbose)

		var err error
		providers, err = otelsetup.SetupFromEnv(cmd.Context(), "asthma-cli")
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}

		config, err = pipeline.LoadConfig(*configPath, cmd.Flags().Changed("config"))
		return err
	},
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", defaultConfigPath, "The json5 config file, defaults are used when the default file does not exist.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging.")
	dumpHttp = rootCmd.PersistentFlags().String("dump-http", "", "Write every HTTP exchange to this directory.")
}

// finish flushes tel whether or not the command failed and joins both errors.
func finish(ctx context.Context, runErr error, tel otelsetup.Telemetry) error {
	err := tel.Shutdown(context.WithoutCancel(ctx))
	if err != nil {
		err = fmt.Errorf("shutdown telemetry: %w", err)
	}
	return errors.Join(runErr, err)
}

func ExecuteContext(ctx context.Context) {
	err := finish(ctx, rootCmd.ExecuteContext(ctx), providers)
	if err != nil {
		serviceutil.Fatal("asthma-cli failed", err)
	}
}

func newFetcher(tel telemetry.API) (fetch.Fetcher, error) {
	opts := fetch.Options{
		UserAgent:        config.Source.UserAgent,
		CloudflareBypass: config.Source.CloudflareBypass,
	}
	if *dumpHttp != "" {
		output, err := restyutil.NewFilesystemOutput(*dumpHttp)
		if err != nil {
			return fetch.Fetcher{}, fmt.Errorf("prepare --dump-http directory: %w", err)
		}
		opts.Output = output
	}
	return fetch.NewFetcher(opts, tel), nil
}

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func renderGrid(out io.Writer, title string, g grid.Grid) {
	t := newTable(out)
	t.SetTitle(title)

	header := table.Row{}
	for _, name := range g.Header() {
		header = append(header, name)
	}
	t.AppendHeader(header)

	for _, row := range g.Rows() {
		r := table.Row{}
		for _, cell := range row {
			r = append(r, cell)
		}
		t.AppendRow(r)
	}
	t.Render()
}
