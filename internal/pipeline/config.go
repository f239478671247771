package pipeline

import (
	"errors"
	"fmt"
	"io/fs"

	"asthma-pipeline/internal/normalize"
	"asthma-pipeline/internal/projection"
	"asthma-pipeline/internal/scrapers/fetch"
	"asthma-pipeline/internal/scrapers/table"
	"asthma-pipeline/internal/scrapers/who"
	"asthma-pipeline/lib/configutil"
	configlibsql "asthma-pipeline/lib/configutil/libsql"

	"dario.cat/mergo"
)

const (
	DefaultTableURL    = "https://pmc.ncbi.nlm.nih.gov/articles/PMC5573769/table/tbl1/"
	DefaultOutputCSV   = "table_1_asthma_final_two_columns.csv"
	DefaultSQLiteTable = "asthma_burden"
)

type SourceConfig struct {
	URL              string `json:"url"`
	UserAgent        string `json:"user_agent"`
	CloudflareBypass bool   `json:"cloudflare_bypass"`
}

type SectionConfig struct {
	Label             string `json:"label"`
	PlaceholderPrefix string `json:"placeholder_prefix"`
	CategoryColumn    string `json:"category_column"`
}

type NormalizeConfig struct {
	DecimalSeparators []string `json:"decimal_separators"`
	MinusSigns        []string `json:"minus_signs"`
}

type OutputConfig struct {
	CSV         string              `json:"csv"`
	DisableCSV  bool                `json:"disable_csv"`
	XLSX        string              `json:"xlsx"`
	SQLite      configlibsql.Struct `json:"sqlite"`
	SQLiteTable string              `json:"sqlite_table"`
}

// CSVPath is where the csv is written or "" when it is turned off. An empty CSV is
// refilled from the defaults, so only DisableCSV turns it off.
func (o OutputConfig) CSVPath() string {
	if o.DisableCSV {
		return ""
	}
	return o.CSV
}

type FactsConfig struct {
	URL      string   `json:"url"`
	Sections []string `json:"sections"`
}

type Config struct {
	Source    SourceConfig    `json:"source"`
	Section   SectionConfig   `json:"section"`
	Normalize NormalizeConfig `json:"normalize"`
	Columns   []string        `json:"columns"`
	Output    OutputConfig    `json:"output"`
	Facts     FactsConfig     `json:"facts"`
}

func DefaultConfig() Config {
	normalizeOpts := normalize.DefaultOptions()
	return Config{
		Source: SourceConfig{
			URL:       DefaultTableURL,
			UserAgent: fetch.DefaultUserAgent,
		},
		Section: SectionConfig{
			Label:             "asthma",
			PlaceholderPrefix: table.UnnamedPrefix,
			CategoryColumn:    "Category",
		},
		Normalize: NormalizeConfig{
			DecimalSeparators: normalizeOpts.DecimalSeparators,
			MinusSigns:        normalizeOpts.MinusSigns,
		},
		Columns: append([]string{}, projection.DefaultColumns...),
		Output: OutputConfig{
			CSV:         DefaultOutputCSV,
			SQLiteTable: DefaultSQLiteTable,
		},
		Facts: FactsConfig{
			URL:      who.DefaultURL,
			Sections: append([]string{}, who.DefaultSections...),
		},
	}
}

// LoadConfig reads path (and its .local override) and fills everything it leaves unset
// from DefaultConfig. A missing file is only an error when required is set.
func LoadConfig(path string, required bool) (Config, error) {
	config, err := configutil.ReadConfig[Config](path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, err
	}

	err = mergo.Merge(&config, DefaultConfig())
	if err != nil {
		return Config{}, fmt.Errorf("merge config defaults: %w", err)
	}
	return config, nil
}
