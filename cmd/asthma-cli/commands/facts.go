package commands

import (
	"fmt"

	"asthma-pipeline/internal/components/telemetry"
	"asthma-pipeline/internal/scrapers/who"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(factsCmd)
}

var factsCmd = &cobra.Command{
	Use:   "facts",
	Short: "Prints the sections of the WHO asthma fact sheet.",
	RunE: func(cmd *cobra.Command, args []string) error {
		tel := telemetry.SlogAPI{}
		fetcher, err := newFetcher(tel)
		if err != nil {
			return err
		}

		client := who.NewClient(fetcher, config.Facts.URL, tel)
		facts, err := client.GetFacts(cmd.Context(), config.Facts.Sections)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, section := range config.Facts.Sections {
			content, ok := facts[section]
			if !ok {
				continue
			}
			fmt.Fprintf(out, "\n**%s**\n%s\n", section, content)
		}
		return nil
	},
}
